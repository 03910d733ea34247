// Package output renders API results as terminal tables.
package output

import (
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// ColorMode selects when ANSI colors are written.
type ColorMode int

const (
	ColorAuto ColorMode = iota
	ColorAlways
	ColorNever
)

// ParseColorMode maps "always" and "never"; anything else is auto.
func ParseColorMode(s string) ColorMode {
	switch s {
	case "always":
		return ColorAlways
	case "never":
		return ColorNever
	default:
		return ColorAuto
	}
}

type sprintf func(format string, a ...any) string

// Colors holds one formatter per kind of cell.
type Colors struct {
	Time     sprintf
	Delay    sprintf
	Late     sprintf
	OnTime   sprintf
	Line     sprintf
	Platform sprintf
	Canceled sprintf
	Header   sprintf
	Muted    sprintf
	High     sprintf
	Medium   sprintf
}

// NewColors builds the formatters for mode. ColorAuto enables colors only
// when stdout is a terminal.
func NewColors(mode ColorMode) *Colors {
	useColors := false
	switch mode {
	case ColorAlways:
		useColors = true
		color.NoColor = false
	case ColorAuto:
		fd := os.Stdout.Fd()
		useColors = isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}

	if !useColors {
		plain := color.New()
		plain.DisableColor()
		p := plain.SprintfFunc()
		return &Colors{
			Time: p, Delay: p, Late: p, OnTime: p, Line: p, Platform: p,
			Canceled: p, Header: p, Muted: p, High: p, Medium: p,
		}
	}

	return &Colors{
		Time:     color.New(color.FgWhite, color.Bold).SprintfFunc(),
		Delay:    color.New(color.FgYellow).SprintfFunc(),
		Late:     color.New(color.FgRed, color.Bold).SprintfFunc(),
		OnTime:   color.New(color.FgGreen).SprintfFunc(),
		Line:     color.New(color.FgCyan, color.Bold).SprintfFunc(),
		Platform: color.New(color.FgMagenta).SprintfFunc(),
		Canceled: color.New(color.FgRed, color.Bold).SprintfFunc(),
		Header:   color.New(color.FgWhite, color.Bold).SprintfFunc(),
		Muted:    color.New(color.FgHiBlack).SprintfFunc(),
		High:     color.New(color.FgRed, color.Bold).SprintfFunc(),
		Medium:   color.New(color.FgYellow, color.Bold).SprintfFunc(),
	}
}

// FormatDelay renders a delay in a fixed 4-column cell. Ten minutes or more
// is highlighted as late.
func (c *Colors) FormatDelay(delay *int) string {
	if delay == nil || *delay <= 0 {
		return "    "
	}
	if *delay >= 10 {
		return c.Late("%+4d", *delay)
	}
	return c.Delay("%+4d", *delay)
}
