// Package types provides shared type definitions for the Lumina query engine.
//
// This package defines the domain records used across the engine: catalog
// items, item type descriptors, aliases, and ranked search results.
//
// # Core Types
//
// CatalogItem represents a launchable target (application, file, URL,
// command line) together with its usage-feedback counters:
//
//	item := &types.CatalogItem{
//	    ID:   "app:code",
//	    Type: types.TypeApp,
//	    Name: "Visual Studio Code",
//	    Path: "/usr/bin/code",
//	}
//
// Alias represents a user-defined shortcut that expands to a command, with
// optional trailing-argument chaining:
//
//	alias g -> "google", type web
//	input "g rust language" resolves to "google rust language"
//
// # Errors
//
// Absence is never an error in this package's contract: lookups signal a
// missing row with ErrNotFound or a boolean, and callers are expected to
// treat it as an ordinary outcome. Validation errors (ErrEmptyName,
// ErrEmptyCommand, ErrAlreadyExists) are surfaced synchronously for
// user-triggered mutations.
package types
