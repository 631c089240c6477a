package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/pushpanel/internal/controller"
	"github.com/five82/pushpanel/internal/logtail"
)

const (
	// activityLines is how much of the log tail is scanned for entries.
	activityLines = 200
	activityShown = 5
)

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder

	// Header line 1: logo + state
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	// Header line 2: command bar
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")

	b.WriteString(m.renderPanel())
	b.WriteString("\n")
	b.WriteString(m.renderStatus())

	if activity := m.renderActivity(); activity != "" {
		b.WriteString("\n\n")
		b.WriteString(activity)
	}

	return b.String()
}

// renderPanel renders the focus ring top to bottom: each control, with the
// input it reads from placed just above it.
func (m Model) renderPanel() string {
	styles := m.theme.Styles()
	current, _ := m.focusedItem()

	var rows []string
	for _, item := range m.focusItems() {
		focused := item == current
		if item.isInput() {
			rows = append(rows, m.renderInput(item.input, focused, styles))
			continue
		}
		rows = append(rows, m.renderControl(item.control, focused, styles))
	}

	body := lipgloss.JoinVertical(lipgloss.Left, rows...)
	return lipgloss.NewStyle().Padding(1, 2).Render(body)
}

func (m Model) renderControl(id controller.ControlID, focused bool, styles Styles) string {
	cv, ok := m.snapshot.Control(id)
	if !ok {
		return ""
	}
	style := styles.Control
	switch {
	case !cv.Enabled:
		style = styles.ControlDisabled
	case focused:
		style = styles.ControlFocused
	}
	label := cv.Label
	if label == "" {
		label = string(id)
	}
	return style.Width(34).Render(label)
}

func (m Model) renderInput(id controller.InputID, focused bool, styles Styles) string {
	idx := m.inputIndex(id)
	if idx < 0 {
		return ""
	}
	view, _ := m.snapshot.Input(id)

	labelStyle := styles.MutedText
	if focused {
		labelStyle = styles.AccentText.Bold(true)
	}
	if !view.Enabled {
		labelStyle = styles.FaintText
	}

	line := labelStyle.Render(inputLabel(id)) + " " + m.inputs[idx].model.View()
	if view.Invalid {
		line += "  " + styles.DangerText.Render(fmt.Sprintf("%s is required", id))
	}
	return lipgloss.NewStyle().PaddingLeft(1).Render(line)
}

func inputLabel(id controller.InputID) string {
	switch id {
	case controller.InputName:
		return "Name"
	case controller.InputMessage:
		return "Message"
	}
	return string(id)
}

// renderStatus renders the result of the latest action.
func (m Model) renderStatus() string {
	styles := m.theme.Styles()
	snap := m.snapshot

	switch {
	case m.pending > 0:
		return styles.WarningText.Render("Working...")
	case snap.LastError != nil:
		msg := truncate(snap.LastError.Error(), maxInt(m.width-10, 20))
		line := styles.DangerText.Render("ERROR") + " " + styles.DangerText.Render(msg)
		if snap.IsDegraded() {
			line += "  " + styles.MutedText.Render(fmt.Sprintf("(%d failures in a row)", snap.ConsecutiveFailures))
		}
		return line
	case !snap.LastUpdated.IsZero():
		return styles.SuccessText.Render("OK") + " " +
			styles.MutedText.Render(fmt.Sprintf("%s at %s", snap.LastAction, snap.LastUpdated.Format("15:04:05")))
	}
	return ""
}

// renderActivity lists the latest info-or-higher log entries.
func (m Model) renderActivity() string {
	var shown []logtail.Entry
	for i := len(m.activity) - 1; i >= 0 && len(shown) < activityShown; i-- {
		if m.activity[i].Level == "debug" {
			continue
		}
		shown = append(shown, m.activity[i])
	}
	if len(shown) == 0 {
		return ""
	}

	styles := m.theme.Styles()
	lines := []string{styles.MutedText.Bold(true).Render("Recent activity")}
	for i := len(shown) - 1; i >= 0; i-- {
		e := shown[i]
		levelStyle := styles.InfoText
		switch e.Level {
		case "warn":
			levelStyle = styles.WarningText
		case "error", "dpanic", "panic", "fatal":
			levelStyle = styles.DangerText
		}
		line := styles.FaintText.Render(e.Time.Format("15:04:05")) + " " +
			levelStyle.Render(fmt.Sprintf("%-5s", strings.ToUpper(e.Level))) + " " +
			styles.Text.Render(e.Message)
		if e.Error != "" {
			line += " " + styles.MutedText.Render(truncate(e.Error, maxInt(m.width-len(e.Message)-24, 20)))
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
