package tui

import (
	"errors"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/dialogs/internal/action"
	"github.com/matheus3301/dialogs/internal/swipe"
	"github.com/matheus3301/dialogs/internal/tui/keys"
	"github.com/matheus3301/dialogs/internal/tui/views"
	"github.com/matheus3301/dialogs/internal/undo"
)

// Keyboard stand-ins for touch gestures. A swipe travels fraction of the
// row width; a flick is short but faster than any escape velocity.
const (
	swipeFraction = 0.6
	nudgeFraction = 0.2
	flickFraction = 0.1
	flickVelocity = 10000 // px/s
)

func (a *App) setupBindings() {
	a.registry.AddGlobal(&keys.Binding{
		Key: tcell.KeyRune, Rune: 'q', Label: "q", Description: "quit", Visible: true,
		Handler: func() { a.app.Stop() },
	})
	a.registry.AddGlobal(&keys.Binding{
		Key: tcell.KeyRune, Rune: '?', Label: "?", Description: "help", Visible: true,
		Handler: func() {
			a.pages.SwitchToPage("help")
			a.app.SetFocus(a.help)
		},
	})
	a.registry.AddGlobal(&keys.Binding{
		Key: tcell.KeyTab, Label: "tab", Description: "next list", Visible: true,
		Handler: func() { a.switchTab((a.active + 1) % len(a.tabs)) },
	})
	a.registry.AddGlobal(&keys.Binding{
		Key: tcell.KeyRune, Rune: 'e', Label: "e", Description: "edit pins", Visible: true,
		Handler: a.toggleEdit,
	})

	list := []*keys.Binding{
		{Key: tcell.KeyRune, Rune: 'h', Label: "h", Description: "swipe left", Visible: true,
			Handler: func() { a.swipe(-1, swipeFraction, 0) }},
		{Key: tcell.KeyRune, Rune: 'l', Label: "l", Description: "swipe right", Visible: true,
			Handler: func() { a.swipe(1, swipeFraction, 0) }},
		{Key: tcell.KeyRune, Rune: 'H', Handler: func() { a.swipe(-1, flickFraction, -flickVelocity) }},
		{Key: tcell.KeyRune, Rune: 'L', Handler: func() { a.swipe(1, flickFraction, flickVelocity) }},
		{Key: tcell.KeyRune, Rune: 'y', Handler: func() { a.swipe(-1, nudgeFraction, 0) }},
		{Key: tcell.KeyRune, Rune: 'u', Label: "u", Description: "undo", Visible: true,
			Handler: a.undo},
		{Key: tcell.KeyRune, Rune: ' ', Label: "space", Description: "select", Visible: true,
			Handler: a.toggleSelected},
		{Key: tcell.KeyRune, Rune: ':', Label: ":", Description: "command", Visible: true,
			Handler: a.openPrompt},
		{Key: tcell.KeyEscape, Handler: a.clearSelection},
	}
	for _, b := range list {
		a.registry.Add("list", b)
	}

	a.registry.Add("edit", &keys.Binding{
		Key: tcell.KeyRune, Rune: 'J', Label: "J", Description: "move down", Visible: true,
		Handler: func() { a.move(1) },
	})
	a.registry.Add("edit", &keys.Binding{
		Key: tcell.KeyRune, Rune: 'K', Label: "K", Description: "move up", Visible: true,
		Handler: func() { a.move(-1) },
	})
	a.registry.Add("edit", &keys.Binding{Key: tcell.KeyEscape, Handler: a.toggleEdit})
}

// rowWidth is the width a swipe is measured against.
func (a *App) rowWidth() float64 {
	_, _, w, _ := a.list.GetInnerRect()
	if w <= 0 {
		return 80
	}
	return float64(w)
}

// background runs f off the UI goroutine and flashes its error.
func (a *App) background(f func() error) {
	e := a.eng()
	if e == nil {
		return
	}
	go func() {
		if err := f(); err != nil {
			a.queueDraw(func() { a.flash.Err(err) })
		}
	}()
}

// swipe plays a swipe on the selected row: the row is drawn at its
// displacement for one animation frame, then released.
func (a *App) swipe(dir, fraction, velocity float64) {
	key, index := a.activeKey(), a.list.Cursor()
	if index < 0 {
		return
	}
	w := a.rowWidth()
	dx := dir * fraction * w
	a.background(func() error {
		e := a.eng()
		if err := e.BeginSwipe(a.ctx, key, index); err != nil {
			if errors.Is(err, swipe.ErrRejected) {
				return errors.New("this row cannot be swiped")
			}
			return err
		}
		p, err := e.UpdateSwipe(a.ctx, dx, w)
		if err != nil {
			return err
		}
		a.queueDraw(func() {
			a.swipeMark = &views.SwipeMark{Index: index, Progress: p}
			a.redraw()
		})

		released := make(chan struct{})
		a.after(a.anim, func() { close(released) })
		select {
		case <-released:
		case <-a.ctx.Done():
			return e.CancelSwipe(a.ctx)
		}

		out, err := e.EndSwipe(a.ctx, dx, velocity, w)
		a.queueDraw(func() {
			a.swipeMark = nil
			switch {
			case err != nil:
				a.flash.Err(err)
			case !out.Committed:
				a.flash.Info("Swipe cancelled")
			case out.Err != nil:
				a.flash.Warn(fmt.Sprintf("Cannot %s: %v", out.Intent, out.Err))
			}
			a.redraw()
		})
		return nil
	})
}

func (a *App) undo() {
	key := a.activeKey()
	a.background(func() error {
		err := a.eng().Undo(a.ctx, key)
		if errors.Is(err, undo.ErrNotArmed) {
			a.queueDraw(func() { a.flash.Info("Nothing to undo") })
			return nil
		}
		return err
	})
}

// refreshUndo shows or hides the undo offer of the shown list. It runs
// on the UI goroutine.
func (a *App) refreshUndo() {
	key := a.activeKey()
	a.background(func() error {
		tok, ok, err := a.eng().Armed(a.ctx, key)
		if err != nil {
			return err
		}
		a.queueDraw(func() {
			if ok && key == a.activeKey() {
				a.flash.Undo(undoText(tok), tok.Deadline)
			} else {
				a.flash.ClearUndo()
			}
			a.flashBar.Update(a.flash.GetMessage(), time.Now())
		})
		return nil
	})
}

func undoText(tok undo.Token) string {
	n := len(tok.Action.Targets)
	noun := "chat"
	if n != 1 {
		noun = "chats"
	}
	verb := map[action.Kind]string{
		action.Archive:   "Archived",
		action.Unarchive: "Unarchived",
		action.Delete:    "Deleted",
		action.Clear:     "Cleared",
		action.Block:     "Blocked",
	}[tok.Action.Kind]
	if verb == "" {
		verb = tok.Action.Kind.String()
	}
	return fmt.Sprintf("%s %d %s", verb, n, noun)
}

func (a *App) toggleSelected() {
	index := a.list.Cursor()
	rows := a.rows[a.activeKey()]
	if index < 0 || index >= len(rows) {
		return
	}
	id := rows[index].ID
	if a.selected[id] {
		delete(a.selected, id)
	} else {
		a.selected[id] = true
	}
	on := len(a.selected) > 0
	a.background(func() error { return a.eng().SetMultiSelect(a.ctx, on) })
	a.redraw()
}

func (a *App) clearSelection() {
	if len(a.selected) == 0 {
		return
	}
	clear(a.selected)
	a.background(func() error { return a.eng().SetMultiSelect(a.ctx, false) })
	a.redraw()
}

// targets returns the selected rows in list order, or the row under the cursor.
func (a *App) targets() []int64 {
	rows := a.rows[a.activeKey()]
	var ids []int64
	for _, d := range rows {
		if a.selected[d.ID] {
			ids = append(ids, d.ID)
		}
	}
	if len(ids) == 0 {
		if i := a.list.Cursor(); i >= 0 && i < len(rows) {
			ids = append(ids, rows[i].ID)
		}
	}
	return ids
}

func (a *App) runCommand(cmd Command) {
	switch cmd.Name {
	case "q", "quit":
		a.app.Stop()
		return
	case "h", "help":
		a.pages.SwitchToPage("help")
		a.app.SetFocus(a.help)
		return
	}
	kind, err := cmd.Kind()
	if err != nil {
		a.flash.Err(err)
		a.redraw()
		return
	}
	ids := a.targets()
	if len(ids) == 0 {
		return
	}
	key := a.activeKey()
	a.clearSelection()
	a.background(func() error {
		return a.eng().Dispatch(a.ctx, action.New(kind, key, ids...))
	})
}

func (a *App) toggleEdit() {
	on := !a.editing
	a.editing = on
	a.redraw()
	a.background(func() error {
		n, err := a.eng().SetEditMode(a.ctx, on)
		if err != nil {
			return err
		}
		if n > 0 {
			a.queueDraw(func() { a.flash.Info("Pinned order saved") })
		}
		return nil
	})
}

// move drags the selected pinned row by delta rows.
func (a *App) move(delta int) {
	key := a.activeKey()
	from := a.list.Cursor()
	to := from + delta
	if from < 0 || to < 0 || to >= len(a.rows[key]) {
		return
	}
	a.background(func() error {
		if err := a.eng().Drop(a.ctx, key, from, to); err != nil {
			return err
		}
		a.queueDraw(func() { a.list.Select(to, 0) })
		return nil
	})
}

// switchTab shows tab i. The switch counts as a tab gesture for its duration.
func (a *App) switchTab(i int) {
	if i < 0 || i >= len(a.tabs) || i == a.active {
		return
	}
	a.active = i
	a.clearSelection()
	a.flash.ClearUndo()
	key := a.activeKey()
	a.redraw()
	a.background(func() error {
		e := a.eng()
		if err := e.SetTabSwitching(a.ctx, true); err != nil {
			return err
		}
		defer func() { _ = e.SetTabSwitching(a.ctx, false) }()
		if err := e.Do(a.ctx, func() { a.ReloadAll(key) }); err != nil {
			return err
		}
		p, err := e.Phase(a.ctx, key)
		if err != nil {
			return err
		}
		a.queueDraw(func() { a.status.SetPhase(string(p)) })
		return nil
	})
	a.refreshUndo()
}
