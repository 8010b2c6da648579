// Package swipe recognizes horizontal swipes on list rows and turns a
// completed swipe into a single-target action.
package swipe

import (
	"errors"
	"math"

	"github.com/matheus3301/dialogs/internal/action"
	"github.com/matheus3301/dialogs/internal/dialog"
	"github.com/matheus3301/dialogs/internal/eligibility"
)

var (
	// ErrRejected is returned by OnGestureStart when the row cannot be swiped.
	ErrRejected = errors.New("no gesture")
	// ErrNoGesture is returned when a gesture call arrives without a tracked gesture.
	ErrNoGesture = errors.New("no gesture in progress")
)

// State is the state of the current gesture.
type State uint8

const (
	Idle State = iota
	Tracking
	Committed
	Cancelled
)

// Direction is the horizontal direction of a swipe.
type Direction int8

const (
	NoDirection Direction = 0
	Left        Direction = -1
	Right       Direction = 1
)

func directionOf(dx float64) Direction {
	switch {
	case dx < 0:
		return Left
	case dx > 0:
		return Right
	}
	return NoDirection
}

// Config holds the commit thresholds and the action bound to each direction.
type Config struct {
	CommitFraction float64 // share of the row width that commits on release
	EscapeVelocity float64 // px/s in the swipe direction that commits regardless of distance
	LeftAction     action.Kind
	RightAction    action.Kind
}

// DefaultConfig returns the stock thresholds with archive on a left swipe.
func DefaultConfig() Config {
	return Config{
		CommitFraction: 0.45,
		EscapeVelocity: 3500,
		LeftAction:     action.Archive,
		RightAction:    action.Read,
	}
}

// Row is the row a gesture starts on.
type Row struct {
	List        dialog.Key
	Index       int
	Dialog      dialog.Dialog
	Reorderable bool // may be dragged in multi-select mode
}

// Progress describes a gesture in flight.
type Progress struct {
	Offset    float64 // clamped displacement to draw the row at
	Fraction  float64 // |Offset| / row width
	Direction Direction
	Intent    action.Kind
	Armed     bool // a slow release here would commit
}

// Outcome is the result of a finished gesture.
type Outcome struct {
	Committed bool
	Row       Row
	Intent    action.Kind
	Action    action.Pending // set when Committed and Err is nil
	Err       error          // eligibility failure of a committed gesture
}

// Dispatch reports whether the outcome carries an action to dispatch.
func (o Outcome) Dispatch() bool { return o.Committed && o.Err == nil }

// Controller tracks one gesture at a time for a list view.
type Controller struct {
	cfg          Config
	multiSelect  bool
	tabSwitching bool

	state State
	row   Row
}

// New creates a controller with cfg.
func New(cfg Config) *Controller {
	return &Controller{cfg: cfg}
}

// SetConfig replaces the thresholds and bound actions.
func (c *Controller) SetConfig(cfg Config) { c.cfg = cfg }

// SetMultiSelect toggles multi-select mode.
func (c *Controller) SetMultiSelect(on bool) { c.multiSelect = on }

// SetTabSwitching reports whether a tab-switch gesture owns the current touch sequence.
func (c *Controller) SetTabSwitching(on bool) { c.tabSwitching = on }

// State returns the state of the current gesture.
func (c *Controller) State() State { return c.state }

// Row returns the row of the current gesture.
func (c *Controller) Row() Row { return c.row }

// OnGestureStart begins tracking a swipe on row.
func (c *Controller) OnGestureStart(row Row) error {
	switch {
	case c.multiSelect && !row.Reorderable:
		return ErrRejected
	case row.Dialog.Synthetic():
		return ErrRejected
	case c.tabSwitching && (c.cfg.LeftAction == action.Pin || c.cfg.RightAction == action.Pin):
		return ErrRejected
	}
	c.state = Tracking
	c.row = row
	return nil
}

func (c *Controller) intent(dir Direction) action.Kind {
	switch dir {
	case Left:
		return c.cfg.LeftAction
	case Right:
		return c.cfg.RightAction
	}
	return action.None
}

// OnGestureUpdate computes how to draw the row for displacement dx. It has
// no side effects.
func (c *Controller) OnGestureUpdate(dx, rowWidth float64) Progress {
	dir := directionOf(dx)
	intent := c.intent(dir)
	if c.state != Tracking || intent == action.None || rowWidth <= 0 {
		return Progress{}
	}
	offset := math.Max(-rowWidth, math.Min(rowWidth, dx))
	frac := math.Abs(offset) / rowWidth
	return Progress{
		Offset:    offset,
		Fraction:  frac,
		Direction: dir,
		Intent:    intent,
		Armed:     frac >= c.cfg.CommitFraction,
	}
}

// Cancel abandons the current gesture. Nothing has been applied yet, so
// there is nothing to undo.
func (c *Controller) Cancel() {
	if c.state == Tracking {
		c.state = Cancelled
	}
}

// OnGestureEnd finishes the gesture released at dx with velocity (px/s,
// signed like dx). A committed gesture is resolved against ec before an
// action is produced.
func (c *Controller) OnGestureEnd(dx, velocity, rowWidth float64, ec eligibility.Context) (Outcome, error) {
	if c.state != Tracking {
		return Outcome{}, ErrNoGesture
	}
	row := c.row
	dir := directionOf(dx)
	intent := c.intent(dir)
	if intent == action.None || !c.commits(dx, velocity, rowWidth) {
		c.state = Cancelled
		return Outcome{Row: row, Intent: intent}, nil
	}

	c.state = Committed
	out := Outcome{Committed: true, Row: row, Intent: intent}
	ec.Dialog = row.Dialog
	kind, err := eligibility.Resolve(intent, ec)
	if err != nil {
		out.Err = err
		return out, nil
	}
	out.Action = action.New(kind, row.List, row.Dialog.ID)
	return out, nil
}

func (c *Controller) commits(dx, velocity, rowWidth float64) bool {
	if rowWidth > 0 && math.Abs(dx)/rowWidth >= c.cfg.CommitFraction {
		return true
	}
	return directionOf(velocity) == directionOf(dx) && math.Abs(velocity) >= c.cfg.EscapeVelocity
}
