package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/openfare/openfare-rs/pkg/pkgid"
)

var (
	colorCyan  = lipgloss.Color("36")  // Teal - headings
	colorGreen = lipgloss.Color("35")  // Green - lock present
	colorDim   = lipgloss.Color("240") // Dim gray - muted text
	colorWhite = lipgloss.Color("255") // Bright white - values
)

var (
	styleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleValue = lipgloss.NewStyle().Foreground(colorWhite)
	styleLock  = lipgloss.NewStyle().Foreground(colorGreen)
	styleDim   = lipgloss.NewStyle().Foreground(colorDim)
)

// writeSummary renders a human-readable view of a resolution result.
// It is written to stderr on request only; stdout stays reserved for
// the JSON protocol.
func writeSummary(w io.Writer, title string, locks pkgid.PackageLocks) {
	fmt.Fprintln(w, styleTitle.Render(title))

	if locks.PrimaryPackage != nil {
		fmt.Fprintf(w, "%s %s\n",
			styleDim.Render("primary:"),
			styleValue.Render(locks.PrimaryPackage.String())+lockMarker(locks.PrimaryPackageLock != nil),
		)
	} else {
		fmt.Fprintf(w, "%s %s\n", styleDim.Render("primary:"), styleDim.Render("unknown"))
	}

	if len(locks.DependenciesLocks) == 0 {
		fmt.Fprintln(w, styleDim.Render("no dependencies resolved"))
		return
	}

	withLocks := 0
	for _, p := range locks.DependenciesLocks.SortedPackages() {
		hasLock := locks.DependenciesLocks[p] != nil
		if hasLock {
			withLocks++
		}
		fmt.Fprintf(w, "  %s%s\n", styleValue.Render(p.String()), lockMarker(hasLock))
	}
	fmt.Fprintln(w, styleDim.Render(fmt.Sprintf("%d dependencies, %d with lock records", len(locks.DependenciesLocks), withLocks)))
}

func lockMarker(hasLock bool) string {
	if hasLock {
		return " " + styleLock.Render("[lock]")
	}
	return ""
}
