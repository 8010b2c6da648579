// Package tui is the terminal view of the dialog lists. It renders what
// the engine tells it to and turns keys into gestures.
package tui

import (
	"context"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/dialogs/internal/bus"
	"github.com/matheus3301/dialogs/internal/dialog"
	"github.com/matheus3301/dialogs/internal/engine"
	"github.com/matheus3301/dialogs/internal/reconcile"
	"github.com/matheus3301/dialogs/internal/status"
	"github.com/matheus3301/dialogs/internal/tui/keys"
	"github.com/matheus3301/dialogs/internal/tui/ui"
	"github.com/matheus3301/dialogs/internal/tui/views"
	"github.com/rivo/tview"
	"go.uber.org/zap"
)

// Tab is one list the view can show.
type Tab struct {
	Title string
	Key   dialog.Key
}

// DefaultTabs returns the primary and archive folders.
func DefaultTabs() []Tab {
	return []Tab{
		{Title: "Chats", Key: dialog.FolderKey(dialog.FolderPrimary)},
		{Title: "Archive", Key: dialog.FolderKey(dialog.FolderArchive)},
	}
}

// Options configures the view.
type Options struct {
	Account string
	Tabs    []Tab // empty = DefaultTabs
	Bus     *bus.Bus
	Logger  *zap.Logger
}

// App is the main TUI application shell.
type App struct {
	app      *tview.Application
	theme    *ui.Theme
	pages    *tview.Pages
	bottom   *tview.Pages
	tabBar   *ui.Tabs
	list     *views.DialogList
	help     *views.HelpView
	status   *views.StatusBar
	flash    *ui.FlashModel
	flashBar *ui.FlashBar
	menu     *ui.Menu
	prompt   *ui.Prompt
	registry *keys.Registry

	bus    *bus.Bus
	logger *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	engine Engine

	queue     *renderQueue
	queueDraw func(func())
	after     func(time.Duration, func())
	anim      time.Duration

	// Owned by the UI goroutine.
	tabs       []Tab
	active     int
	rows       map[dialog.Key][]dialog.Dialog
	highlights map[dialog.Key]map[int]bool
	running    int
	selected   map[int64]bool
	editing    bool
	swipeMark  *views.SwipeMark
}

// New creates the TUI application.
func New(opts Options) *App {
	ctx, cancel := context.WithCancel(context.Background())
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if len(opts.Tabs) == 0 {
		opts.Tabs = DefaultTabs()
	}
	theme := ui.DefaultTheme()

	a := &App{
		app:        tview.NewApplication(),
		theme:      theme,
		pages:      tview.NewPages(),
		bottom:     tview.NewPages(),
		tabBar:     ui.NewTabs(theme),
		list:       views.NewDialogList(theme),
		help:       views.NewHelpView(theme),
		status:     views.NewStatusBar(),
		flash:      ui.NewFlashModel(),
		flashBar:   ui.NewFlashBar(theme),
		menu:       ui.NewMenu(theme),
		prompt:     ui.NewPrompt(theme),
		registry:   keys.NewRegistry(),
		bus:        opts.Bus,
		logger:     opts.Logger,
		ctx:        ctx,
		cancel:     cancel,
		queue:      newRenderQueue(),
		after:      defaultAfter,
		anim:       180 * time.Millisecond,
		tabs:       opts.Tabs,
		rows:       make(map[dialog.Key][]dialog.Dialog),
		highlights: make(map[dialog.Key]map[int]bool),
		selected:   make(map[int64]bool),
	}
	a.queueDraw = func(f func()) { a.app.QueueUpdateDraw(f) }

	a.status.SetAccount(opts.Account)
	a.status.SetStatus(string(status.Booting))
	a.status.SetPhase(string(reconcile.PhaseIdle))
	a.setupBindings()
	a.setupLayout()
	a.redraw()
	return a
}

// SetTabs replaces the lists the view switches between. Call before Run.
func (a *App) SetTabs(tabs []Tab) {
	if len(tabs) == 0 {
		return
	}
	a.tabs = tabs
	a.active = 0
	a.redraw()
}

// Attach connects the view to a running engine.
func (a *App) Attach(e *engine.Engine) {
	a.attach(e)
}

func (a *App) attach(e Engine) {
	a.mu.Lock()
	a.engine = e
	a.mu.Unlock()

	go a.drain(a.ctx)
	if a.bus != nil {
		a.watch(a.ctx)
	}
	a.resync(a.activeKey())
}

func (a *App) eng() Engine {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.engine
}

func (a *App) activeKey() dialog.Key {
	return a.tabs[a.active].Key
}

func (a *App) scope() string {
	if a.editing {
		return "edit"
	}
	return "list"
}

func (a *App) setupLayout() {
	a.pages.AddPage("list", a.list, true, true)
	a.pages.AddPage("help", a.help, true, false)
	a.bottom.AddPage("menu", a.menu, true, true)
	a.bottom.AddPage("prompt", a.prompt, true, false)

	a.prompt.SetOnSubmit(func(text string) {
		a.closePrompt()
		a.runCommand(ParseCommand(text))
	})
	a.prompt.SetOnCancel(a.closePrompt)

	root := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.tabBar, 1, 0, false).
		AddItem(a.pages, 0, 1, true).
		AddItem(a.flashBar, 1, 0, false).
		AddItem(a.bottom, 3, 0, false).
		AddItem(a.status, 1, 0, false)

	a.app.SetRoot(root, true)
	a.app.SetFocus(a.list)

	a.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		// Let text input widgets handle all keys normally.
		if _, ok := a.app.GetFocus().(*tview.InputField); ok {
			return event
		}

		if page, _ := a.pages.GetFrontPage(); page == "help" {
			if event.Key() == tcell.KeyEscape || event.Rune() == 'q' || event.Rune() == '?' {
				a.pages.SwitchToPage("list")
				a.app.SetFocus(a.list)
			}
			return nil
		}

		if event.Key() == tcell.KeyRune && event.Rune() >= '1' && event.Rune() <= '9' {
			a.switchTab(int(event.Rune() - '1'))
			return nil
		}

		if a.registry.HandleEvent(a.scope(), event) {
			return nil
		}
		return event
	})
}

func (a *App) openPrompt() {
	a.bottom.SwitchToPage("prompt")
	a.app.SetFocus(a.prompt)
}

func (a *App) closePrompt() {
	a.bottom.SwitchToPage("menu")
	a.app.SetFocus(a.list)
}

// redraw runs on the UI goroutine.
func (a *App) redraw() {
	key := a.activeKey()
	marks := views.Marks{Selected: a.selected, Highlight: a.highlights[key]}
	if a.swipeMark != nil {
		marks.Swipe = a.swipeMark
	}
	a.list.Update(a.tabs[a.active].Title, a.rows[key], marks)
	a.list.SetEditing(a.editing)

	titles := make([]string, len(a.tabs))
	for i, t := range a.tabs {
		titles[i] = t.Title
	}
	a.tabBar.Update(titles, a.active)

	hints := a.registry.Hints(a.scope())
	menu := make([]ui.MenuHint, 0, len(hints))
	for _, h := range hints {
		menu = append(menu, ui.MenuHint{Key: h.Label, Description: h.Description})
	}
	a.menu.Update(menu)

	a.flashBar.Update(a.flash.GetMessage(), time.Now())
	a.status.SetEditing(a.editing)
	a.status.SetSelected(len(a.selected))
}

// watch follows daemon, undo and freeze-cycle events.
func (a *App) watch(ctx context.Context) {
	undoCh, unsubUndo := a.bus.Subscribe("undo.", 16)
	daemonCh, unsubDaemon := a.bus.Subscribe("daemon.", 16)
	phaseCh, unsubPhase := a.bus.Subscribe(bus.PhaseChanged, 64)
	failCh, unsubFail := a.bus.Subscribe(bus.ActionCommitFailed, 16)

	go func() {
		defer unsubUndo()
		defer unsubDaemon()
		defer unsubPhase()
		defer unsubFail()
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-undoCh:
				a.queueDraw(a.refreshUndo)
			case evt := <-daemonCh:
				if c, ok := evt.Payload.(status.StatusChange); ok {
					a.queueDraw(func() { a.status.SetStatus(string(c.To)) })
				}
			case evt := <-phaseCh:
				if c, ok := evt.Payload.(reconcile.PhaseChange); ok {
					a.queueDraw(func() {
						if c.List == a.activeKey() {
							a.status.SetPhase(string(c.To))
						}
					})
				}
			case evt := <-failCh:
				a.logger.Warn("commit failed", zap.Any("result", evt.Payload))
				a.queueDraw(func() { a.flash.Warn("An action could not be saved") })
			case <-ticker.C:
				a.queueDraw(func() {
					a.flashBar.Update(a.flash.GetMessage(), time.Now())
					a.status.SetSelected(len(a.selected))
				})
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Run starts the TUI application. It blocks until the user quits.
func (a *App) Run() error {
	defer a.cancel()
	return a.app.Run()
}

// Stop gracefully shuts down the TUI.
func (a *App) Stop() {
	a.cancel()
	a.app.Stop()
}
