package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text, color string
}{
	{"                 _                      ", "#34d399"},
	{"  _ __ ___  ___ | |__   __ _ _ __   ___ ", "#2dd4bf"},
	{" | '__/ _ \\/ __|| '_ \\ / _` | '_ \\ / _ \\", "#22d3ee"},
	{" | | |  __/\\__ \\| | | | (_| | |_) |  __/", "#38bdf8"},
	{" |_|  \\___||___/|_| |_|\\__,_| .__/ \\___|", "#60a5fa"},
	{"                            |_|         ", "#818cf8"},
}

// PrintBanner writes the reshape banner followed by the version.
func PrintBanner(w io.Writer, version string) {
	p := termenv.NewOutput(w).Profile
	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, termenv.String("  v"+version).Faint())
	fmt.Fprintln(w)
}
