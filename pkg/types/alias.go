package types

import "time"

// Alias type keys. The type governs how trailing arguments are handled during
// resolution: apps ignore them, everything else chains them onto the command.
const (
	AliasApp     = "app"
	AliasWeb     = "web"
	AliasCommand = "command"
	AliasSearch  = "search"
)

// Alias is a user-defined shortcut from a short name to a command.
type Alias struct {
	ID          string // Generated at creation, stable for the alias lifetime
	Name        string // Unique, canonicalized to lowercase
	Command     string // Expansion target
	Type        string
	Description string
	CreatedAt   time.Time
	UseCount    int64
}

// AliasUpdate carries the mutable alias fields for an update. Nil fields are
// left unchanged.
type AliasUpdate struct {
	Command     *string
	Type        *string
	Description *string
}

// Resolution is the outcome of resolving an input string against the alias
// table.
type Resolution struct {
	Resolved string // Fully expanded command, arguments included
	Alias    Alias  // Snapshot of the matched alias
	HasArgs  bool   // True when the input carried trailing arguments
}
