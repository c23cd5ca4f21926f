package alert

import (
	"fmt"
	"html/template"
	"io"

	"github.com/fatih/color"
)

// Terminal writes alerts to a terminal. Each alert is one line; there is no
// way to take back a line, so replacing means printing the next one.
type Terminal struct {
	W io.Writer
}

var (
	errorMarker   = color.New(color.FgRed, color.Bold).SprintFunc()
	successMarker = color.New(color.FgGreen, color.Bold).SprintFunc()
)

func (t Terminal) Replace(fragment template.HTML) {
	fmt.Fprintln(t.W, string(fragment))
}

func (t Terminal) ReplaceMessage(kind Kind, message string) {
	marker := errorMarker("✗ error:")
	if kind == Success {
		marker = successMarker("✓")
	}
	fmt.Fprintln(t.W, marker, message)
}
