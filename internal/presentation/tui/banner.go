package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner writes the colloquy banner and version to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	lines := []struct{ text, color string }{
		{`             _ _                         `, "#818cf8"},
		{`  ___ ___   | | | ___   __ _ _   _ _   _ `, "#a78bfa"},
		{` / __/ _ \  | | |/ _ \ / _' | | | | | | |`, "#c084fc"},
		{`| (_| (_) | | | | (_) | (_| | |_| | |_| |`, "#e879f9"},
		{` \___\___/  |_|_|\___/ \__, |\__,_|\__, |`, "#f472b6"},
		{`                          |_|      |___/ `, "#fb7185"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, termenv.String("  v"+strings.TrimSpace(version)).Faint())
	fmt.Fprintln(w)
}

// Speaker prefixes an assistant message with a coloured marker.
func Speaker(msg string) string {
	p := termenv.ColorProfile()
	return termenv.String("●").Foreground(p.Color("#a78bfa")).String() + " " + msg
}
