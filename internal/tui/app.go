package tui

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/roach88/waggle/internal/beeminder"
	"github.com/roach88/waggle/internal/reconcile"
)

// Remote is the API surface the interactive editor needs.
type Remote interface {
	Goals(ctx context.Context) ([]beeminder.GoalSummary, error)
	Datapoints(ctx context.Context, goal string, opts beeminder.DatapointsOptions) ([]beeminder.Datapoint, error)
	reconcile.RemoteStore
}

type statusKind int

const (
	statusInfo statusKind = iota
	statusSuccess
	statusError
)

type status struct {
	kind statusKind
	text string
	when time.Time
}

const statusTTL = 4 * time.Second

type mainMode int

const (
	modeNormal mainMode = iota
	modeFilter
	modeInlineAdd
)

// App owns the terminal and drives the two screens. All cursor and scroll
// state lives here; the Session underneath holds only domain state.
type App struct {
	Store      Remote
	Differ     *reconcile.Differ
	Logger     *zap.Logger
	Location   *time.Location
	Now        func() time.Time
	FetchLimit int

	screen tcell.Screen

	goals    []beeminder.GoalSummary
	filtered []int
	selected int
	filter   string
	mode     mainMode
	buffer   string

	session   *Session
	cursorRow int
	cursorCol int
	scroll    int
	editBuf   *string

	status status
}

// Run takes over the terminal until the user quits.
func (a *App) Run(ctx context.Context) error {
	if a.Now == nil {
		a.Now = time.Now
	}
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("open terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init terminal: %w", err)
	}
	a.screen = screen
	defer screen.Fini()

	if err := a.refreshGoals(ctx); err != nil {
		a.setStatus(statusError, err.Error())
	}

	for {
		a.draw()
		switch ev := screen.PollEvent().(type) {
		case *tcell.EventResize:
			screen.Sync()
		case *tcell.EventKey:
			if a.handleKey(ctx, ev) {
				return nil
			}
		}
	}
}

func (a *App) handleKey(ctx context.Context, ev *tcell.EventKey) bool {
	if a.session != nil {
		a.handleDetailKey(ctx, ev)
		return false
	}
	return a.handleMainKey(ctx, ev)
}

func (a *App) handleMainKey(ctx context.Context, ev *tcell.EventKey) bool {
	switch a.mode {
	case modeFilter:
		a.handleBufferKey(ev, func(text string) {
			a.filter = text
			a.refreshFiltered()
		}, func() {
			a.filter = ""
			a.refreshFiltered()
		})
		// Filtering is live: update on every keystroke too.
		if a.mode == modeFilter {
			a.filter = a.buffer
			a.refreshFiltered()
		}
		return false
	case modeInlineAdd:
		a.handleBufferKey(ev, func(text string) {
			a.submitInlineAdd(ctx, text)
		}, nil)
		return false
	}

	switch {
	case ev.Key() == tcell.KeyEnter:
		if a.currentGoal() != nil {
			a.mode = modeInlineAdd
			a.buffer = ""
		}
	case ev.Rune() == 'q':
		return true
	case ev.Rune() == 'r':
		if err := a.refreshGoals(ctx); err != nil {
			a.setStatus(statusError, err.Error())
		} else {
			a.setStatus(statusInfo, "goals refreshed")
		}
	case ev.Rune() == 'j' || ev.Key() == tcell.KeyDown:
		a.moveSelection(1)
	case ev.Rune() == 'k' || ev.Key() == tcell.KeyUp:
		a.moveSelection(-1)
	case ev.Rune() == '/':
		a.mode = modeFilter
		a.buffer = a.filter
	case ev.Rune() == 'e':
		a.openDetail(ctx)
	}
	return false
}

// handleBufferKey drives the one-line text prompts on the main screen.
func (a *App) handleBufferKey(ev *tcell.EventKey, submit func(string), cancel func()) {
	switch ev.Key() {
	case tcell.KeyEscape:
		a.mode = modeNormal
		a.buffer = ""
		if cancel != nil {
			cancel()
		}
	case tcell.KeyEnter:
		text := a.buffer
		a.mode = modeNormal
		a.buffer = ""
		submit(text)
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(a.buffer) > 0 {
			runes := []rune(a.buffer)
			a.buffer = string(runes[:len(runes)-1])
		}
	case tcell.KeyRune:
		if ev.Modifiers()&tcell.ModCtrl == 0 {
			a.buffer += string(ev.Rune())
		}
	}
}

func (a *App) handleDetailKey(ctx context.Context, ev *tcell.EventKey) {
	s := a.session

	if a.editBuf != nil {
		switch ev.Key() {
		case tcell.KeyEscape:
			a.editBuf = nil
		case tcell.KeyEnter:
			err := s.CommitEdit(a.cursorRow, Columns[a.cursorCol], *a.editBuf)
			if err != nil {
				// Keep the buffer so the input can be fixed in place.
				a.setStatus(statusError, err.Error())
				return
			}
			a.editBuf = nil
		case tcell.KeyBackspace, tcell.KeyBackspace2:
			if len(*a.editBuf) > 0 {
				runes := []rune(*a.editBuf)
				*a.editBuf = string(runes[:len(runes)-1])
			}
		case tcell.KeyRune:
			if ev.Modifiers()&tcell.ModCtrl == 0 {
				*a.editBuf += string(ev.Rune())
			}
		}
		return
	}

	switch {
	case ev.Key() == tcell.KeyEscape:
		if s.RequestDiscard() {
			a.session = nil
			return
		}
		a.setStatus(statusInfo, "unsaved changes, press Esc again to discard")
	case ev.Rune() == 'j' || ev.Key() == tcell.KeyDown:
		a.moveCursorRow(1)
	case ev.Rune() == 'k' || ev.Key() == tcell.KeyUp:
		a.moveCursorRow(-1)
	case ev.Rune() == 'h' || ev.Key() == tcell.KeyLeft:
		a.moveCursorCol(-1)
	case ev.Rune() == 'l' || ev.Key() == tcell.KeyRight:
		a.moveCursorCol(1)
	case ev.Key() == tcell.KeyEnter:
		if buf, ok := s.BeginEdit(a.cursorRow, Columns[a.cursorCol]); ok {
			a.editBuf = &buf
		}
	case ev.Rune() == 'n':
		a.cursorRow = s.InsertRow()
		a.scroll = 0
	case ev.Rune() == 'd':
		s.ToggleDelete(a.cursorRow)
	case ev.Rune() == 's':
		a.saveDetail(ctx)
	}
}

func (a *App) saveDetail(ctx context.Context) {
	s := a.session
	plan := s.Plan(a.Differ)
	if plan.Empty() {
		a.setStatus(statusInfo, "no changes to save")
		return
	}

	a.setStatus(statusInfo, "saving: "+plan.Summary())
	progress, err := reconcile.Apply(ctx, a.Store, s.Goal, plan)
	if err != nil {
		a.Logger.Warn("save stopped partway",
			zap.String("goal", s.Goal),
			zap.String("progress", progress.String()),
			zap.Error(err))
		a.setStatus(statusError, err.Error())
		return
	}

	a.setStatus(statusSuccess, "saved: "+progress.String())
	a.session = nil
	if err := a.refreshGoals(ctx); err != nil {
		a.setStatus(statusError, err.Error())
	}
}

func (a *App) openDetail(ctx context.Context) {
	goal := a.currentGoal()
	if goal == nil {
		return
	}
	fetched, err := a.Store.Datapoints(ctx, goal.Slug, beeminder.DatapointsOptions{
		Sort:  "timestamp",
		Count: a.FetchLimit,
	})
	if err != nil {
		a.setStatus(statusError, err.Error())
		return
	}
	a.session = NewSession(goal.Slug, goal.Title, fetched, a.Now, a.Location)
	a.cursorRow = 0
	a.cursorCol = 0
	a.scroll = 0
	a.editBuf = nil
}

func (a *App) submitInlineAdd(ctx context.Context, text string) {
	goal := a.currentGoal()
	if goal == nil {
		return
	}
	value, comment, err := parseQuickAdd(text)
	if err != nil {
		a.setStatus(statusError, err.Error())
		return
	}

	now := a.Now()
	_, err = a.Store.CreateDatapoint(ctx, goal.Slug, beeminder.CreateDatapoint{
		Value:     value,
		Timestamp: &now,
		Comment:   comment,
		RequestID: a.Differ.NewRequestID(),
	})
	if err != nil {
		a.setStatus(statusError, err.Error())
		return
	}
	a.setStatus(statusSuccess, fmt.Sprintf("added %s to %s", strconv.FormatFloat(value, 'g', -1, 64), goal.Slug))
	if err := a.refreshGoals(ctx); err != nil {
		a.setStatus(statusError, err.Error())
	}
}

// parseQuickAdd splits "VALUE [COMMENT...]" input from the inline prompt.
func parseQuickAdd(text string) (float64, string, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return 0, "", fmt.Errorf("expected VALUE [COMMENT]")
	}
	value, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, "", fmt.Errorf("%q is not a number", fields[0])
	}
	return value, strings.Join(fields[1:], " "), nil
}

func (a *App) refreshGoals(ctx context.Context) error {
	goals, err := a.Store.Goals(ctx)
	if err != nil {
		return fmt.Errorf("fetch goals: %w", err)
	}
	// Most urgent first.
	sort.SliceStable(goals, func(i, j int) bool { return goals[i].Safebuf < goals[j].Safebuf })
	a.goals = goals
	a.refreshFiltered()
	return nil
}

func (a *App) refreshFiltered() {
	a.filtered = a.filtered[:0]
	needle := strings.ToLower(a.filter)
	for i, g := range a.goals {
		if needle == "" ||
			strings.Contains(strings.ToLower(g.Slug), needle) ||
			strings.Contains(strings.ToLower(g.Title), needle) {
			a.filtered = append(a.filtered, i)
		}
	}
	if a.selected >= len(a.filtered) {
		a.selected = len(a.filtered) - 1
	}
	if a.selected < 0 {
		a.selected = 0
	}
}

func (a *App) currentGoal() *beeminder.GoalSummary {
	if len(a.filtered) == 0 || a.selected >= len(a.filtered) {
		return nil
	}
	return &a.goals[a.filtered[a.selected]]
}

func (a *App) moveSelection(delta int) {
	if len(a.filtered) == 0 {
		return
	}
	a.selected = clampIndex(a.selected+delta, len(a.filtered)-1)
}

func (a *App) moveCursorRow(delta int) {
	if a.session.Len() == 0 {
		return
	}
	a.cursorRow = clampIndex(a.cursorRow+delta, a.session.Len()-1)
}

func (a *App) moveCursorCol(delta int) {
	a.cursorCol = clampIndex(a.cursorCol+delta, len(Columns)-1)
}

func clampIndex(next, max int) int {
	if next < 0 {
		return 0
	}
	if next > max {
		return max
	}
	return next
}

func (a *App) setStatus(kind statusKind, text string) {
	a.status = status{kind: kind, text: text, when: a.Now()}
}
