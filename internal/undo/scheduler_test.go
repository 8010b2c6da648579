package undo

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matheus3301/dialogs/internal/action"
	"github.com/matheus3301/dialogs/internal/dialog"
	"github.com/matheus3301/dialogs/internal/reconcile"
)

var key = dialog.FolderKey(dialog.FolderPrimary)

type fakeLive struct{ list *dialog.List }

func (f *fakeLive) Live(dialog.Key) *dialog.List { return f.list }

type nopRenderer struct{}

func (nopRenderer) InsertAt(dialog.Key, int, dialog.Dialog) {}
func (nopRenderer) RemoveAt(dialog.Key, int)                {}
func (nopRenderer) ChangeAt(dialog.Key, int, dialog.Dialog) {}
func (nopRenderer) ReloadAll(dialog.Key)                    {}

type fakeCommitter struct {
	got []action.Pending
	err error
}

func (f *fakeCommitter) CommitAction(_ context.Context, a action.Pending) error {
	f.got = append(f.got, a)
	return f.err
}

type timers struct {
	fns     []func()
	stopped []bool
}

func (tm *timers) after(_ time.Duration, f func()) func() bool {
	i := len(tm.fns)
	tm.fns = append(tm.fns, f)
	tm.stopped = append(tm.stopped, false)
	return func() bool {
		was := tm.stopped[i]
		tm.stopped[i] = true
		return !was
	}
}

// fire runs timer i even if it was stopped, like a timer that already
// fired before Stop was called.
func (tm *timers) fire(i int) { tm.fns[i]() }

type fixture struct {
	s   *Scheduler
	rc  *reconcile.Controller
	c   *fakeCommitter
	tm  *timers
	now time.Time
}

func setup(t *testing.T, ids ...int64) *fixture {
	t.Helper()
	items := make([]dialog.Dialog, len(ids))
	for i, id := range ids {
		items[i] = dialog.Dialog{ID: id, Title: fmt.Sprintf("chat %d", id)}
	}
	l, err := dialog.NewList(key, items)
	require.NoError(t, err)

	f := &fixture{c: &fakeCommitter{}, tm: &timers{}, now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	f.rc = reconcile.New(&fakeLive{list: l}, nopRenderer{}, nil, nil)
	f.s = New(f.rc, f.c, nil, 5*time.Second, nil, nil,
		WithAfterFunc(f.tm.after),
		WithNow(func() time.Time { return f.now }))
	return f
}

func ids(ds []dialog.Dialog) []int64 {
	out := make([]int64, len(ds))
	for i, d := range ds {
		out[i] = d.ID
	}
	return out
}

func TestScheduleRemovesAndCancelRestores(t *testing.T) {
	f := setup(t, 1, 2, 3, 4, 5)

	tok := NewToken(action.New(action.Archive, key, 4, 2), nil)
	f.s.Schedule(tok)

	assert.Equal(t, Armed, tok.State)
	assert.Equal(t, f.now.Add(5*time.Second), tok.Deadline)
	assert.Equal(t, []int64{1, 3, 5}, ids(f.rc.Dialogs(key)))
	require.Len(t, tok.Removed, 2)
	assert.Equal(t, 1, tok.Removed[0].Index)
	assert.Equal(t, 3, tok.Removed[1].Index)
	assert.True(t, f.s.Hidden(key, 2))
	assert.True(t, f.s.Hidden(key, 4))

	require.NoError(t, f.s.Cancel(key))
	assert.Equal(t, Cancelled, tok.State)
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, ids(f.rc.Dialogs(key)))
	assert.Equal(t, "chat 4", f.rc.Dialogs(key)[3].Title)
	assert.False(t, f.s.Hidden(key, 2))
	assert.Nil(t, f.s.Armed(key))
	assert.Empty(t, f.c.got, "cancel must not write to the source")
	assert.True(t, f.tm.stopped[0])
}

func TestSecondScheduleCommitsFirst(t *testing.T) {
	f := setup(t, 1, 2, 3)

	first := NewToken(action.New(action.Delete, key, 1), nil)
	second := NewToken(action.New(action.Archive, key, 3), nil)
	f.s.Schedule(first)
	f.s.Schedule(second)

	assert.Equal(t, Committed, first.State)
	assert.Equal(t, Armed, second.State)
	assert.Same(t, second, f.s.Armed(key))
	require.Len(t, f.c.got, 1)
	assert.Equal(t, first.Action.ID, f.c.got[0].ID)
	assert.Equal(t, []int64{2}, ids(f.rc.Dialogs(key)))
}

func TestTokensOfDifferentListsAreIndependent(t *testing.T) {
	f := setup(t, 1, 2)
	other := dialog.FilterKey(7)

	a := NewToken(action.New(action.Clear, key, 1), nil)
	b := NewToken(action.New(action.Clear, other, 1), nil)
	f.s.Schedule(a)
	f.s.Schedule(b)

	assert.Equal(t, Armed, a.State)
	assert.Equal(t, Armed, b.State)
	assert.Empty(t, f.c.got)
}

func TestExpiryCommits(t *testing.T) {
	f := setup(t, 1, 2, 3)

	tok := NewToken(action.New(action.Archive, key, 2), "payload")
	f.s.Schedule(tok)
	f.tm.fire(0)

	assert.Equal(t, Committed, tok.State)
	require.Len(t, f.c.got, 1)
	assert.Equal(t, action.Archive, f.c.got[0].Kind)
	assert.Nil(t, f.s.Armed(key))

	// Committed rows stay hidden until the source drops them.
	assert.True(t, f.s.Hidden(key, 2))
	f.s.Settle(key, func(id int64) bool { return id == 2 })
	assert.True(t, f.s.Hidden(key, 2))
	f.s.Settle(key, func(int64) bool { return false })
	assert.False(t, f.s.Hidden(key, 2))
}

func TestLateExpiryAfterCancelIsIgnored(t *testing.T) {
	f := setup(t, 1, 2)

	tok := NewToken(action.New(action.Delete, key, 1), nil)
	f.s.Schedule(tok)
	require.NoError(t, f.s.Cancel(key))
	f.tm.fire(0)

	assert.Equal(t, Cancelled, tok.State)
	assert.Empty(t, f.c.got)
}

func TestExpiryIsPostedToOwner(t *testing.T) {
	f := setup(t, 1, 2)
	var queued []func()
	f.s.post = func(fn func()) { queued = append(queued, fn) }

	tok := NewToken(action.New(action.Delete, key, 1), nil)
	f.s.Schedule(tok)
	f.tm.fire(0)
	assert.Equal(t, Armed, tok.State, "expiry must wait for the owner")

	require.Len(t, queued, 1)
	queued[0]()
	assert.Equal(t, Committed, tok.State)
}

func TestCommitFailureIsNotRolledBack(t *testing.T) {
	f := setup(t, 1, 2, 3)
	f.c.err = errors.New("network down")

	tok := NewToken(action.New(action.Delete, key, 3), nil)
	f.s.Schedule(tok)
	require.NoError(t, f.s.Commit(key))

	assert.Equal(t, Committed, tok.State)
	assert.True(t, f.s.Hidden(key, 3))
	assert.Equal(t, []int64{1, 2}, ids(f.rc.Dialogs(key)))
}

func TestClearRemovesNoRow(t *testing.T) {
	f := setup(t, 1, 2)

	tok := NewToken(action.New(action.Clear, key, 2), nil)
	f.s.Schedule(tok)

	assert.Empty(t, tok.Removed)
	assert.False(t, f.rc.Frozen(key))
	assert.Equal(t, []int64{1, 2}, ids(f.rc.Dialogs(key)))
	require.NoError(t, f.s.Cancel(key))
	assert.Empty(t, f.c.got)
}

func TestNothingArmed(t *testing.T) {
	f := setup(t, 1)
	assert.ErrorIs(t, f.s.Cancel(key), ErrNotArmed)
	assert.ErrorIs(t, f.s.Commit(key), ErrNotArmed)
}

func TestCommitAll(t *testing.T) {
	f := setup(t, 1, 2)
	f.s.Schedule(NewToken(action.New(action.Delete, key, 1), nil))
	f.s.Schedule(NewToken(action.New(action.Clear, dialog.FilterKey(2), 2), nil))

	f.s.CommitAll()
	assert.Len(t, f.c.got, 2)
	assert.Nil(t, f.s.Armed(key))
}
