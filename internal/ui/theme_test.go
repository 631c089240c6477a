package ui

import (
	"testing"

	"github.com/five82/pushpanel/internal/controller"
)

func TestThemeNames(t *testing.T) {
	names := ThemeNames()
	if len(names) != 3 {
		t.Fatalf("ThemeNames() returned %d names, want 3", len(names))
	}
	if names[0] != "Nightfox" || names[1] != "Kanagawa" || names[2] != "Slate" {
		t.Fatalf("ThemeNames() = %v, want [Nightfox Kanagawa Slate]", names)
	}
}

func TestNextTheme(t *testing.T) {
	if got := NextTheme("Nightfox"); got != "Kanagawa" {
		t.Fatalf("NextTheme(Nightfox) = %q, want Kanagawa", got)
	}
	if got := NextTheme("Slate"); got != "Nightfox" {
		t.Fatalf("NextTheme(Slate) = %q, want Nightfox", got)
	}
	if got := NextTheme("Unknown"); got != "Nightfox" {
		t.Fatalf("NextTheme(Unknown) = %q, want Nightfox", got)
	}
}

func TestGetTheme(t *testing.T) {
	for _, name := range ThemeNames() {
		if got := GetTheme(name).Name; got != name {
			t.Fatalf("GetTheme(%s).Name = %q", name, got)
		}
	}
	if got := GetTheme("Unknown").Name; got != "Nightfox" {
		t.Fatalf("GetTheme(Unknown).Name = %q, want Nightfox fallback", got)
	}
}

func TestThemesColorEveryPanelState(t *testing.T) {
	states := []controller.UIState{
		controller.Unregistered,
		controller.RegisteredUnsubscribed,
		controller.RegisteredSubscribed,
		controller.RegisteredSubscribedTestable,
	}
	for _, name := range ThemeNames() {
		th := GetTheme(name)
		for _, st := range states {
			if th.StatusColors[st.String()] == "" {
				t.Fatalf("%s theme has no color for %q", name, st)
			}
		}
		if th.StatusColors["busy"] == "" {
			t.Fatalf("%s theme has no busy color", name)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("hello world", 8); got != "hello..." {
		t.Fatalf("truncate = %q, want hello...", got)
	}
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("truncate = %q, want short", got)
	}
	if got := truncateMiddle("http://notifications.example.com:3000", 20); len(got) != 20 {
		t.Fatalf("truncateMiddle length = %d, want 20 (%q)", len(got), got)
	}
}
