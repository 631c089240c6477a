package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// renderHeader renders the status bar: logo, panel state, server and
// refresh health.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	if !m.snapshot.HasState {
		return m.renderConnectingHeader(styles, bg)
	}

	compact := m.width < 90
	var parts []string
	parts = append(parts, bg.Render("pushpanel", styles.Logo))
	parts = append(parts, m.stateBadge(styles))

	maxURL := 40
	if compact {
		maxURL = 24
	}
	parts = append(parts,
		bg.Render("Server:", styles.MutedText)+bg.Space()+
			bg.Render(truncateMiddle(m.serverURL, maxURL), styles.Text),
	)

	if ts := m.formatTimestamp(); ts != "" {
		parts = append(parts, bg.Render(ts, styles.MutedText))
	}

	if err := m.snapshot.RefreshError; err != nil {
		parts = append(parts,
			bg.Render("REFRESH", styles.WarningText.Bold(true))+bg.Space()+
				bg.Render(classifyConnectionError(err), styles.WarningText),
		)
	}

	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Surface)).
		Foreground(lipgloss.Color(m.theme.Text)).
		Width(m.width).
		Render(bg.Join(parts, "  "))
}

// renderConnectingHeader is shown until the first reconcile lands.
func (m Model) renderConnectingHeader(styles Styles, bg BgStyle) string {
	sep := bg.Spaces(2)

	if err := m.snapshot.RefreshError; err != nil {
		last := "soon"
		if !m.snapshot.LastRefresh.IsZero() {
			last = m.snapshot.LastRefresh.Format("15:04:05")
		}
		parts := []string{
			bg.Render("pushpanel", styles.Logo),
			bg.Render("BROWSER "+classifyConnectionError(err), styles.DangerText.Bold(true)),
			bg.Render("Retrying...", styles.WarningText.Bold(true)),
			bg.Render(last, styles.MutedText),
		}
		return styles.Header.Width(m.width).Render(bg.Join(parts, sep))
	}

	return styles.Header.Width(m.width).Render(
		bg.Render("pushpanel", styles.Logo) + sep +
			bg.Render("Reading registration...", styles.WarningText.Bold(true)),
	)
}

// stateBadge renders the panel state, or "busy" while actions are running.
func (m Model) stateBadge(styles Styles) string {
	status := m.snapshot.State.String()
	if m.pending > 0 {
		status = "busy"
	}
	return styles.StatusStyle(status).Render(strings.ToUpper(status))
}

// formatTimestamp formats the last update time with relative indicator.
func (m Model) formatTimestamp() string {
	if m.lastUpdated.IsZero() {
		return ""
	}

	timeSince := time.Since(m.lastUpdated)
	timeStr := m.lastUpdated.Format("15:04:05")

	if timeSince < time.Minute {
		timeStr += " (now)"
	} else if timeSince < time.Hour {
		timeStr += fmt.Sprintf(" (%dm ago)", int(timeSince.Minutes()))
	} else if timeSince < 24*time.Hour {
		timeStr += fmt.Sprintf(" (%dh ago)", int(timeSince.Hours()))
	}

	return timeStr
}

// classifyConnectionError returns a short description of the error.
func classifyConnectionError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"):
		return "OFFLINE"
	case strings.Contains(msg, "no such host"):
		return "HOST NOT FOUND"
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline exceeded"):
		return "TIMEOUT"
	default:
		return "ERROR"
	}
}

// renderCommandBar renders the key hints for the current focus.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	var bindings []key.Binding
	if m.focusedInput() >= 0 {
		bindings = []key.Binding{m.keys.Activate, m.keys.Escape, m.keys.Next, m.keys.Quit}
	} else {
		bindings = []key.Binding{
			m.keys.Register, m.keys.Subscribe, m.keys.TestPush,
			m.keys.Next, m.keys.Activate, m.keys.Reconcile, m.keys.Help,
		}
	}

	segments := helpLine(bindings, bg, styles)
	segments = append(segments,
		bg.Render("T", styles.AccentText)+bg.Sep(":")+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).Render(strings.Join(segments, bg.Spaces(2)))
}

// truncate truncates a string to max length with ellipsis.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

// truncateMiddle truncates a string in the middle, preserving start and end.
func truncateMiddle(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	if max <= 5 {
		return s[:max]
	}
	// Keep more of the end (host and port) than the scheme
	endLen := (max - 3) * 2 / 3
	startLen := max - 3 - endLen
	return s[:startLen] + "..." + s[len(s)-endLen:]
}
