package tui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
)

var (
	styleDefault  = tcell.StyleDefault
	styleHeader   = tcell.StyleDefault.Bold(true)
	styleSelected = tcell.StyleDefault.Reverse(true)
	styleDeleted  = tcell.StyleDefault.StrikeThrough(true).Dim(true)
	styleError    = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleSuccess  = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	stylePrompt   = tcell.StyleDefault.Bold(true)
)

func (a *App) draw() {
	a.screen.Clear()
	if a.session != nil {
		a.drawDetail()
	} else {
		a.drawMain()
	}
	a.drawStatus()
	a.screen.Show()
}

func (a *App) drawMain() {
	width, height := a.screen.Size()
	a.drawText(0, 0, width, styleHeader, fmt.Sprintf("  %-20s %6s  %-30s %s", "GOAL", "BUFFER", "TITLE", "LIMSUM"))

	visible := height - 3
	if visible < 1 {
		visible = 1
	}
	top := 0
	if a.selected >= visible {
		top = a.selected - visible + 1
	}

	for i := 0; i < visible && top+i < len(a.filtered); i++ {
		g := a.goals[a.filtered[top+i]]
		style := styleDefault
		if top+i == a.selected {
			style = styleSelected
		}
		line := fmt.Sprintf("  %-20s %5dd  %-30s %s", g.Slug, g.Safebuf, truncate(g.Title, 30), g.Limsum)
		a.drawText(0, 1+i, width, style, line)
	}

	switch a.mode {
	case modeFilter:
		a.drawText(0, height-2, width, stylePrompt, "/"+a.buffer)
	case modeInlineAdd:
		goal := a.currentGoal()
		slug := ""
		if goal != nil {
			slug = goal.Slug
		}
		a.drawText(0, height-2, width, stylePrompt, fmt.Sprintf("add to %s (VALUE [COMMENT]): %s", slug, a.buffer))
	default:
		a.drawText(0, height-2, width, styleDefault.Dim(true),
			"j/k move  enter add  e edit  / filter  r refresh  q quit")
	}
}

func (a *App) drawDetail() {
	s := a.session
	width, height := a.screen.Size()

	title := fmt.Sprintf(" %s  %s", s.Goal, s.Title)
	if s.Dirty() {
		title += "  [modified]"
	}
	a.drawText(0, 0, width, styleHeader, title)
	a.drawText(0, 1, width, styleHeader,
		fmt.Sprintf("   %-19s  %10s  %s", ColTimestamp.Label(), ColValue.Label(), ColComment.Label()))

	visible := height - 4
	if visible < 1 {
		visible = 1
	}
	if a.cursorRow < a.scroll {
		a.scroll = a.cursorRow
	}
	if a.cursorRow >= a.scroll+visible {
		a.scroll = a.cursorRow - visible + 1
	}

	for i := 0; i < visible && a.scroll+i < s.Len(); i++ {
		row := a.scroll + i
		a.drawDetailRow(2+i, row, width)
	}

	if a.editBuf != nil {
		prompt := fmt.Sprintf("%s: %s", Columns[a.cursorCol].Label(), *a.editBuf)
		a.drawText(0, height-2, width, stylePrompt, prompt)
	} else {
		a.drawText(0, height-2, width, styleDefault.Dim(true),
			"j/k/h/l move  enter edit  n new  d delete  s save  esc back")
	}
}

func (a *App) drawDetailRow(y, row, width int) {
	s := a.session
	deleted := s.Rows()[row].Deleted

	x := 0
	x = a.drawCell(x, y, s.Marker(row)+" ", styleDefault, false)
	for ci, col := range Columns {
		text := s.CellText(row, col)
		switch col {
		case ColTimestamp:
			text = fmt.Sprintf("%-19s  ", text)
		case ColValue:
			text = fmt.Sprintf("%10s  ", text)
		}
		style := styleDefault
		if deleted {
			style = styleDeleted
		}
		cursor := row == a.cursorRow && ci == a.cursorCol
		x = a.drawCell(x, y, text, style, cursor)
		if x >= width {
			break
		}
	}
}

func (a *App) drawCell(x, y int, text string, style tcell.Style, cursor bool) int {
	if cursor {
		style = styleSelected
	}
	for _, r := range text {
		a.screen.SetContent(x, y, r, nil, style)
		x++
	}
	return x
}

func (a *App) drawStatus() {
	if a.status.text == "" || a.Now().Sub(a.status.when) > statusTTL {
		return
	}
	width, height := a.screen.Size()
	style := styleDefault
	switch a.status.kind {
	case statusError:
		style = styleError
	case statusSuccess:
		style = styleSuccess
	}
	a.drawText(0, height-1, width, style, a.status.text)
}

func (a *App) drawText(x, y, maxWidth int, style tcell.Style, text string) {
	for _, r := range text {
		if x >= maxWidth {
			return
		}
		a.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
