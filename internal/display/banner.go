package display

import (
	_ "embed"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
)

//go:embed banner.txt
var bannerArt string

const bannerTagline = "flour · water · salt · time"

// RenderBanner centres the startup art for the terminal and hangs the
// tagline off its right edge. Widths are measured in cells rather than
// bytes so the middots in the tagline don't skew the alignment.
func RenderBanner() string {
	cols := terminalColumns()

	art := strings.Split(strings.TrimRight(bannerArt, "\n"), "\n")
	artW := 0
	for _, line := range art {
		if w := lipgloss.Width(line); w > artW {
			artW = w
		}
	}

	indent := 0
	if cols > artW {
		indent = (cols - artW) / 2
	}
	margin := strings.Repeat(" ", indent)

	var b strings.Builder
	for _, line := range art {
		b.WriteString(margin)
		b.WriteString(BannerStyle.Render(line))
		b.WriteByte('\n')
	}

	tagPad := indent + artW - lipgloss.Width(bannerTagline)
	if tagPad < 0 {
		tagPad = 0
	}
	b.WriteString(strings.Repeat(" ", tagPad))
	b.WriteString(BannerStyle.Render(bannerTagline))
	b.WriteByte('\n')
	return b.String()
}

func terminalColumns() int {
	if w, _, err := term.GetSize(os.Stdout.Fd()); err == nil && w > 0 {
		return w
	}
	return 80
}
