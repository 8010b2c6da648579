package pinning

import (
	"context"
	"errors"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matheus3301/dialogs/internal/dialog"
)

type commit struct {
	key   dialog.Key
	order []int64
}

type fakeCommitter struct {
	commits []commit
	err     error
}

func (f *fakeCommitter) CommitPinnedOrder(_ context.Context, key dialog.Key, order []int64) error {
	f.commits = append(f.commits, commit{key: key, order: slices.Clone(order)})
	return f.err
}

func pinnedList(t *testing.T, key dialog.Key) *dialog.List {
	t.Helper()
	l, err := dialog.NewList(key, []dialog.Dialog{
		{ID: 100, Variant: dialog.Promoted, PinnedOrder: 1},
		{ID: 1, PinnedOrder: 1},
		{ID: 2, PinnedOrder: 2},
		{ID: 3, PinnedOrder: 3},
		{ID: 4, PinnedOrder: 4},
		{ID: 5},
		{ID: 6},
	})
	require.NoError(t, err)
	return l
}

func TestDropRequiresEditMode(t *testing.T) {
	c := New(&fakeCommitter{}, nil)
	l := pinnedList(t, dialog.FolderKey(0))

	assert.ErrorIs(t, c.OnDrop(l, 1, 2), ErrNotEditing)
	assert.False(t, c.CanDrag(dialog.Dialog{ID: 1, PinnedOrder: 1}))
}

func TestCanDrag(t *testing.T) {
	c := New(&fakeCommitter{}, nil)
	c.SetEditMode(context.Background(), true)

	assert.True(t, c.CanDrag(dialog.Dialog{ID: 1, PinnedOrder: 1}))
	assert.False(t, c.CanDrag(dialog.Dialog{ID: 5}))
	assert.False(t, c.CanDrag(dialog.Dialog{ID: 100, Variant: dialog.Promoted, PinnedOrder: 1}))
}

func TestDropRejections(t *testing.T) {
	c := New(&fakeCommitter{}, nil)
	c.SetEditMode(context.Background(), true)
	l := pinnedList(t, dialog.FolderKey(0))

	assert.ErrorIs(t, c.OnDrop(l, 5, 1), ErrNotDraggable, "unpinned row")
	assert.ErrorIs(t, c.OnDrop(l, 0, 1), ErrNotDraggable, "promoted row")
	assert.ErrorIs(t, c.OnDrop(l, 1, 5), ErrOutsidePrefix)
	assert.ErrorIs(t, c.OnDrop(l, 1, 0), ErrOutsidePrefix)
	assert.Empty(t, c.Dirty())
}

// Any sequence of drops keeps the pinned set, keeps it contiguous after the
// promoted row and keeps orders dense and increasing.
func TestDropKeepsPinnedPrefixInvariant(t *testing.T) {
	c := New(&fakeCommitter{}, nil)
	c.SetEditMode(context.Background(), true)
	l := pinnedList(t, dialog.FilterKey(3))
	before := l.PinnedIDs()
	slices.Sort(before)

	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 200; i++ {
		from := 1 + rng.IntN(4)
		to := 1 + rng.IntN(4)
		require.NoError(t, c.OnDrop(l, from, to))

		start, end := l.PinnedPrefix()
		require.Equal(t, 1, start)
		require.Equal(t, 5, end)
		for j := start; j < end; j++ {
			d, _ := l.At(j)
			require.Equal(t, j-start+1, d.PinnedOrder)
		}
		got := l.PinnedIDs()
		slices.Sort(got)
		require.Equal(t, before, got)
	}
	tail := l.IDs()[5:]
	assert.Equal(t, []int64{5, 6}, tail)
}

func TestSingleConsolidatedCommit(t *testing.T) {
	fc := &fakeCommitter{}
	c := New(fc, nil)
	ctx := context.Background()
	filter := pinnedList(t, dialog.FilterKey(3))
	folder := pinnedList(t, dialog.FolderKey(0))

	c.SetEditMode(ctx, true)
	require.NoError(t, c.OnDrop(filter, 1, 4))
	require.NoError(t, c.OnDrop(filter, 1, 2))
	require.NoError(t, c.OnDrop(folder, 4, 1))
	assert.Empty(t, fc.commits, "nothing is written while dragging")

	assert.Equal(t, 2, c.SetEditMode(ctx, false))
	require.Len(t, fc.commits, 2)
	assert.Equal(t, dialog.FolderKey(0), fc.commits[0].key)
	assert.Equal(t, []int64{4, 1, 2, 3}, fc.commits[0].order)
	assert.Equal(t, dialog.FilterKey(3), fc.commits[1].key)
	assert.Equal(t, []int64{3, 2, 4, 1}, fc.commits[1].order)

	assert.Equal(t, 0, c.SetEditMode(ctx, false))
	assert.Len(t, fc.commits, 2)
}

func TestCommitFailureIsDropped(t *testing.T) {
	fc := &fakeCommitter{err: errors.New("offline")}
	c := New(fc, nil)
	ctx := context.Background()
	l := pinnedList(t, dialog.FolderKey(0))

	c.SetEditMode(ctx, true)
	require.NoError(t, c.OnDrop(l, 1, 2))
	c.SetEditMode(ctx, false)

	assert.Len(t, fc.commits, 1)
	assert.Empty(t, c.Dirty())
}

func TestOverlay(t *testing.T) {
	c := New(&fakeCommitter{}, nil)
	c.SetEditMode(context.Background(), true)
	key := dialog.FolderKey(0)
	l := pinnedList(t, key)
	require.NoError(t, c.OnDrop(l, 4, 1))

	reloaded := pinnedList(t, key)
	c.Overlay(reloaded)
	assert.Equal(t, []int64{4, 1, 2, 3}, reloaded.PinnedIDs())

	changed, err := dialog.NewList(key, []dialog.Dialog{{ID: 1, PinnedOrder: 1}, {ID: 2}})
	require.NoError(t, err)
	c.Overlay(changed)
	assert.Empty(t, c.Dirty())
}
