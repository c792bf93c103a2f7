package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lidayx/lumina-engine/pkg/types"
)

func TestUpsertItemRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	item := &types.CatalogItem{
		ID:             "app-calc",
		Type:           types.TypeApp,
		Name:           "Calculator",
		NameEn:         "Calculator",
		NameCn:         "计算器",
		Path:           "/usr/bin/calc",
		Description:    "Desktop calculator",
		Category:       "utilities",
		SearchKeywords: "calc math",
	}
	require.NoError(t, s.UpsertItem(ctx, item))

	got, err := s.GetItemByID(ctx, "app-calc")
	require.NoError(t, err)
	assert.Equal(t, "Calculator", got.Name)
	assert.Equal(t, "计算器", got.NameCn)
	assert.Equal(t, "calc math", got.SearchKeywords)
	assert.Equal(t, int64(0), got.LaunchCount)
	assert.Nil(t, got.LastUsed)
	assert.False(t, got.IndexedAt.IsZero())
}

func TestUpsertItemPreservesUsage(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertItem(ctx, testItem("app-1", types.TypeApp, "Editor")))
	require.NoError(t, s.UpdateItemUsage(ctx, "app-1"))
	require.NoError(t, s.UpdateItemUsage(ctx, "app-1"))

	// Reindex with updated display fields.
	updated := testItem("app-1", types.TypeApp, "Editor Pro")
	updated.Description = "updated"
	require.NoError(t, s.UpsertItem(ctx, updated))

	got, err := s.GetItemByID(ctx, "app-1")
	require.NoError(t, err)
	assert.Equal(t, "Editor Pro", got.Name)
	assert.Equal(t, "updated", got.Description)
	assert.Equal(t, int64(2), got.LaunchCount)
	assert.InDelta(t, 2*types.UsageScoreIncrement, got.Score, 1e-9)
	require.NotNil(t, got.LastUsed)
}

func TestUpsertItemLeavesInputUntouched(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	item := testItem("app-1", types.TypeApp, "Editor")
	require.NoError(t, s.UpsertItem(ctx, item))

	// The default index timestamp lands in the row, not in the caller's struct.
	assert.True(t, item.IndexedAt.IsZero())
	got, err := s.GetItemByID(ctx, "app-1")
	require.NoError(t, err)
	assert.False(t, got.IndexedAt.IsZero())
}

func TestSearchItemsLiteralMetacharacters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	juice := testItem("juice", types.TypeApp, "100% Juice")
	underscore := testItem("snake", types.TypeFile, "a_b notes")
	plain := testItem("plain", types.TypeApp, "Plain App")
	require.NoError(t, s.BatchUpsertItems(ctx, []*types.CatalogItem{juice, underscore, plain}))

	// "%" and "_" in the query are literals, not wildcards.
	results, err := s.SearchItems(ctx, "100%", "")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "juice", results[0].ID)

	results, err = s.SearchItems(ctx, "a_b", "")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "snake", results[0].ID)
}

func TestUpsertItemValidation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.UpsertItem(ctx, testItem("", types.TypeApp, "X"))
	assert.ErrorIs(t, err, types.ErrEmptyID)

	err = s.UpsertItem(ctx, testItem("x", "", "X"))
	assert.ErrorIs(t, err, types.ErrEmptyType)

	err = s.UpsertItem(ctx, testItem("x", types.TypeApp, ""))
	assert.ErrorIs(t, err, types.ErrEmptyName)
}

func TestBatchUpsertItems(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	items := make([]*types.CatalogItem, 0, 20)
	for i := 0; i < 20; i++ {
		items = append(items, testItem(fmt.Sprintf("item-%d", i), types.TypeFile, fmt.Sprintf("File %d", i)))
	}
	require.NoError(t, s.BatchUpsertItems(ctx, items))

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 20, stats.TotalItems)

	// Empty batch is a no-op.
	require.NoError(t, s.BatchUpsertItems(ctx, nil))
}

func TestBatchUpsertItemsRollsBackOnInvalid(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	items := []*types.CatalogItem{
		testItem("good-1", types.TypeApp, "Good"),
		testItem("", types.TypeApp, "Bad"),
	}
	err := s.BatchUpsertItems(ctx, items)
	require.ErrorIs(t, err, types.ErrEmptyID)

	// Nothing from the failed batch persists.
	_, err = s.GetItemByID(ctx, "good-1")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestGetItemByIDNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetItemByID(context.Background(), "missing")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestListItemsOrdering(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	low := testItem("low", types.TypeApp, "Low")
	mid := testItem("mid", types.TypeApp, "Mid")
	high := testItem("high", types.TypeApp, "High")
	other := testItem("other", types.TypeFile, "Other")
	require.NoError(t, s.BatchUpsertItems(ctx, []*types.CatalogItem{low, mid, high, other}))

	require.NoError(t, s.UpdateItemUsage(ctx, "high"))
	require.NoError(t, s.UpdateItemUsage(ctx, "high"))
	require.NoError(t, s.UpdateItemUsage(ctx, "mid"))

	all, err := s.ListItems(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "high", all[0].ID)
	assert.Equal(t, "mid", all[1].ID)

	apps, err := s.ListItems(ctx, types.TypeApp)
	require.NoError(t, err)
	require.Len(t, apps, 3)
	for _, it := range apps {
		assert.Equal(t, types.TypeApp, it.Type)
	}
}

func TestSearchItemsPrefixBeforeSubstring(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// "scal" only matches Calculator as a substring; "cal" is a prefix of
	// both Calculator and Calendar.
	calc := testItem("calc", types.TypeApp, "Calculator")
	cal := testItem("cal", types.TypeApp, "Calendar")
	rescale := testItem("rescale", types.TypeApp, "Rescale Tool")
	require.NoError(t, s.BatchUpsertItems(ctx, []*types.CatalogItem{calc, cal, rescale}))

	// Calendar launched more often than Calculator.
	require.NoError(t, s.UpdateItemUsage(ctx, "cal"))
	require.NoError(t, s.UpdateItemUsage(ctx, "cal"))

	results, err := s.SearchItems(ctx, "cal", "")
	require.NoError(t, err)
	require.Len(t, results, 3)
	// Prefix hits first, usage breaks the tie among them.
	assert.Equal(t, "cal", results[0].ID)
	assert.Equal(t, "calc", results[1].ID)
	assert.Equal(t, "rescale", results[2].ID)
}

func TestSearchItemsTieBreakChain(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// All three are prefix hits for "cal"; accumulated score decides first,
	// then launch count among equals.
	calculator := testItem("calculator", types.TypeApp, "Calculator")
	calculator.Score = 5
	cal := testItem("cal", types.TypeApp, "Cal")
	cal.Score = 1
	cal.LaunchCount = 3
	calendar := testItem("calendar", types.TypeApp, "Calendar")
	calendar.Score = 1
	require.NoError(t, s.BatchUpsertItems(ctx, []*types.CatalogItem{calculator, cal, calendar}))

	results, err := s.SearchItems(ctx, "cal", "")
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "calculator", results[0].ID)
	assert.Equal(t, "cal", results[1].ID)
	assert.Equal(t, "calendar", results[2].ID)
}

func TestSearchItemsKeywordPrefix(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	kw := testItem("kw", types.TypeApp, "Image Viewer")
	kw.SearchKeywords = "photo picture"
	plain := testItem("plain", types.TypeApp, "Telephoto Manager")
	require.NoError(t, s.BatchUpsertItems(ctx, []*types.CatalogItem{kw, plain}))
	require.NoError(t, s.UpdateItemUsage(ctx, "plain"))

	results, err := s.SearchItems(ctx, "photo", "")
	require.NoError(t, err)
	require.Len(t, results, 2)
	// Keyword-prefix hit outranks the higher-usage substring hit.
	assert.Equal(t, "kw", results[0].ID)
}

func TestSearchItemsMatchesAllFields(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	wechat := testItem("wechat", types.TypeApp, "WeChat")
	wechat.NameCn = "微信"
	byDesc := testItem("bydesc", types.TypeApp, "Notes")
	byDesc.Description = "quick scratchpad"
	require.NoError(t, s.BatchUpsertItems(ctx, []*types.CatalogItem{wechat, byDesc}))

	results, err := s.SearchItems(ctx, "微信", "")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "wechat", results[0].ID)

	results, err = s.SearchItems(ctx, "scratchpad", "")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "bydesc", results[0].ID)
}

func TestSearchItemsLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	items := make([]*types.CatalogItem, 0, SearchLimit+10)
	for i := 0; i < SearchLimit+10; i++ {
		items = append(items, testItem(fmt.Sprintf("doc-%d", i), types.TypeFile, fmt.Sprintf("Document %d", i)))
	}
	require.NoError(t, s.BatchUpsertItems(ctx, items))

	results, err := s.SearchItems(ctx, "document", "")
	require.NoError(t, err)
	assert.Len(t, results, SearchLimit)
}

func TestSearchItemsEmptyQuery(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.UpsertItem(ctx, testItem("a", types.TypeApp, "A")))

	results, err := s.SearchItems(ctx, "   ", "")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchItemsTypeFilter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.BatchUpsertItems(ctx, []*types.CatalogItem{
		testItem("a", types.TypeApp, "Report"),
		testItem("f", types.TypeFile, "Report.pdf"),
	}))

	results, err := s.SearchItems(ctx, "report", types.TypeFile)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "f", results[0].ID)
}

func TestUpdateItemUsageMissing(t *testing.T) {
	s := newTestStore(t)
	err := s.UpdateItemUsage(context.Background(), "missing")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestDeleteItem(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertItem(ctx, testItem("a", types.TypeApp, "A")))
	require.NoError(t, s.DeleteItem(ctx, "a"))
	_, err := s.GetItemByID(ctx, "a")
	assert.ErrorIs(t, err, types.ErrNotFound)

	// Deleting a missing id is not an error.
	assert.NoError(t, s.DeleteItem(ctx, "a"))
}

func TestClearItemsByType(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.BatchUpsertItems(ctx, []*types.CatalogItem{
		testItem("a1", types.TypeApp, "A1"),
		testItem("a2", types.TypeApp, "A2"),
		testItem("f1", types.TypeFile, "F1"),
	}))

	n, err := s.ClearItemsByType(ctx, types.TypeApp)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalItems)
}

func TestClearOldItemsRetention(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	old := time.Now().AddDate(0, 0, -30)
	staleGone := testItem("stale-gone", types.TypeApp, "Stale Gone")
	staleGone.IndexedAt = old
	staleKept := testItem("stale-kept", types.TypeApp, "Stale Kept")
	staleKept.IndexedAt = old
	fresh := testItem("fresh", types.TypeApp, "Fresh")
	require.NoError(t, s.BatchUpsertItems(ctx, []*types.CatalogItem{staleGone, staleKept, fresh}))

	// stale-kept is still in the current snapshot, so only stale-gone ages out.
	n, err := s.ClearOldItems(ctx, []string{"stale-kept", "fresh"}, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = s.GetItemByID(ctx, "stale-gone")
	assert.ErrorIs(t, err, types.ErrNotFound)
	_, err = s.GetItemByID(ctx, "stale-kept")
	assert.NoError(t, err)
	_, err = s.GetItemByID(ctx, "fresh")
	assert.NoError(t, err)
}

func TestClearOldItemsDefaultWindow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	recent := testItem("recent", types.TypeApp, "Recent")
	recent.IndexedAt = time.Now().AddDate(0, 0, -3)
	require.NoError(t, s.UpsertItem(ctx, recent))

	// maxAgeDays <= 0 falls back to the default window; a 3-day-old item stays.
	n, err := s.ClearOldItems(ctx, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.BatchUpsertItems(ctx, []*types.CatalogItem{
		testItem("a1", types.TypeApp, "A1"),
		testItem("a2", types.TypeApp, "A2"),
		testItem("f1", types.TypeFile, "F1"),
	}))

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalItems)
	require.Len(t, stats.TypeStats, 2)
	assert.Equal(t, types.TypeApp, stats.TypeStats[0].Type)
	assert.Equal(t, 2, stats.TypeStats[0].Count)
}

func TestListTypesSeeded(t *testing.T) {
	s := newTestStore(t)

	listed, err := s.ListTypes(context.Background())
	require.NoError(t, err)
	require.Len(t, listed, 8)
	assert.Equal(t, types.TypeApp, listed[0].Type)
	assert.Equal(t, "Applications", listed[0].Label)
	assert.Equal(t, types.TypeCustom, listed[7].Type)
}
