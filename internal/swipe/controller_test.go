package swipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matheus3301/dialogs/internal/action"
	"github.com/matheus3301/dialogs/internal/dialog"
	"github.com/matheus3301/dialogs/internal/eligibility"
)

var list = dialog.FolderKey(dialog.FolderPrimary)

func row(d dialog.Dialog) Row {
	return Row{List: list, Index: 0, Dialog: d}
}

func ec() eligibility.Context {
	return eligibility.Context{SelfID: 777, PinLimit: 5}
}

func TestCommitThresholds(t *testing.T) {
	tests := []struct {
		name      string
		dx, v     float64
		committed bool
	}{
		{"47.5% slow", -190, 200, true},
		{"37.5% escape velocity", -150, -4000, true},
		{"25% slow", -100, -1000, false},
		{"37.5% fast the wrong way", -150, 4000, false},
		{"exactly 45%", -180, 0, true},
		{"no displacement", 0, -5000, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(DefaultConfig())
			require.NoError(t, c.OnGestureStart(row(dialog.Dialog{ID: 1})))

			out, err := c.OnGestureEnd(tt.dx, tt.v, 400, ec())
			require.NoError(t, err)
			assert.Equal(t, tt.committed, out.Committed)
			if tt.committed {
				assert.Equal(t, Committed, c.State())
			} else {
				assert.Equal(t, Cancelled, c.State())
			}
		})
	}
}

func TestCommittedSwipeProducesAction(t *testing.T) {
	c := New(DefaultConfig())
	require.NoError(t, c.OnGestureStart(row(dialog.Dialog{ID: 42})))

	out, err := c.OnGestureEnd(-300, 0, 400, ec())
	require.NoError(t, err)
	require.True(t, out.Dispatch())
	assert.Equal(t, action.Archive, out.Action.Kind)
	assert.Equal(t, []int64{42}, out.Action.Targets)
	assert.Equal(t, list, out.Action.List)
}

func TestRightSwipeTogglesRead(t *testing.T) {
	c := New(DefaultConfig())
	require.NoError(t, c.OnGestureStart(row(dialog.Dialog{ID: 1})))

	out, err := c.OnGestureEnd(300, 0, 400, ec())
	require.NoError(t, err)
	require.True(t, out.Dispatch())
	assert.Equal(t, action.Read, out.Intent)
	assert.Equal(t, action.Unread, out.Action.Kind)
}

func TestCommittedButIneligible(t *testing.T) {
	c := New(DefaultConfig())
	require.NoError(t, c.OnGestureStart(row(dialog.Dialog{ID: 777})))

	out, err := c.OnGestureEnd(-300, 0, 400, ec())
	require.NoError(t, err)
	assert.True(t, out.Committed)
	assert.False(t, out.Dispatch())
	assert.ErrorIs(t, out.Err, eligibility.ErrSelfArchive)
}

func TestDisabledDirectionCancels(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RightAction = action.None
	c := New(cfg)
	require.NoError(t, c.OnGestureStart(row(dialog.Dialog{ID: 1})))

	assert.Equal(t, Progress{}, c.OnGestureUpdate(300, 400))
	out, err := c.OnGestureEnd(300, 5000, 400, ec())
	require.NoError(t, err)
	assert.False(t, out.Committed)
}

func TestGestureStartRejections(t *testing.T) {
	t.Run("promoted row", func(t *testing.T) {
		c := New(DefaultConfig())
		err := c.OnGestureStart(row(dialog.Dialog{ID: 1, Variant: dialog.Promoted}))
		assert.ErrorIs(t, err, ErrRejected)
	})
	t.Run("multi-select on a row that cannot be reordered", func(t *testing.T) {
		c := New(DefaultConfig())
		c.SetMultiSelect(true)
		assert.ErrorIs(t, c.OnGestureStart(row(dialog.Dialog{ID: 1})), ErrRejected)

		r := row(dialog.Dialog{ID: 1, PinnedOrder: 1})
		r.Reorderable = true
		assert.NoError(t, c.OnGestureStart(r))
	})
	t.Run("pin swipe during tab switch", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.LeftAction = action.Pin
		c := New(cfg)
		c.SetTabSwitching(true)
		assert.ErrorIs(t, c.OnGestureStart(row(dialog.Dialog{ID: 1})), ErrRejected)

		c.SetTabSwitching(false)
		assert.NoError(t, c.OnGestureStart(row(dialog.Dialog{ID: 1})))
	})
	t.Run("pin bound to the right during tab switch", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.RightAction = action.Pin
		c := New(cfg)
		c.SetTabSwitching(true)
		assert.ErrorIs(t, c.OnGestureStart(row(dialog.Dialog{ID: 1})), ErrRejected)
	})
}

func TestUpdateIsPure(t *testing.T) {
	c := New(DefaultConfig())
	require.NoError(t, c.OnGestureStart(row(dialog.Dialog{ID: 1})))

	p := c.OnGestureUpdate(-600, 400)
	assert.Equal(t, -400.0, p.Offset)
	assert.Equal(t, 1.0, p.Fraction)
	assert.Equal(t, Left, p.Direction)
	assert.True(t, p.Armed)

	p = c.OnGestureUpdate(-100, 400)
	assert.False(t, p.Armed)
	assert.Equal(t, Tracking, c.State())
}

func TestEndWithoutStart(t *testing.T) {
	c := New(DefaultConfig())
	_, err := c.OnGestureEnd(-300, 0, 400, ec())
	assert.ErrorIs(t, err, ErrNoGesture)

	require.NoError(t, c.OnGestureStart(row(dialog.Dialog{ID: 1})))
	c.Cancel()
	_, err = c.OnGestureEnd(-300, 0, 400, ec())
	assert.ErrorIs(t, err, ErrNoGesture)
}
