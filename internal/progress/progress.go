// Package progress draws a single-line progress bar for batch runs.
package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

const (
	defaultWidth = 80
	minBarWidth  = 10
)

// Bar is a progress bar redrawn in place with carriage returns. A Bar
// writing to something other than a terminal draws nothing. It is safe for
// concurrent use.
type Bar struct {
	mu      sync.Mutex
	w       io.Writer
	label   string
	total   int
	done    int
	width   int
	enabled bool
}

// New creates a bar for total steps. Drawing is enabled only when w is a
// terminal.
func New(w io.Writer, label string, total int) *Bar {
	enabled, width := false, defaultWidth
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		enabled = true
		if cols, _, err := term.GetSize(int(f.Fd())); err == nil && cols > 0 {
			width = cols
		}
	}
	return newBar(w, label, total, width, enabled)
}

// NewForced creates a bar that always draws, using a fixed line width.
func NewForced(w io.Writer, label string, total, width int) *Bar {
	return newBar(w, label, total, width, true)
}

func newBar(w io.Writer, label string, total, width int, enabled bool) *Bar {
	b := &Bar{w: w, label: label, total: total, width: width, enabled: enabled}
	b.draw()
	return b
}

// Increment advances the bar by one step.
func (b *Bar) Increment() {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.done < b.total {
		b.done++
	}
	b.drawLocked()
}

// Done returns the number of completed steps.
func (b *Bar) Done() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.done
}

// Finish ends the progress line.
func (b *Bar) Finish() {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.enabled {
		fmt.Fprintln(b.w)
	}
}

func (b *Bar) draw() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.drawLocked()
}

func (b *Bar) drawLocked() {
	if !b.enabled {
		return
	}
	fmt.Fprintf(b.w, "\r%s", b.render())
}

// render formats the bar as "label  50% |#####     | 5/10".
func (b *Bar) render() string {
	pct := 100
	if b.total > 0 {
		pct = b.done * 100 / b.total
	}
	counter := fmt.Sprintf("%d/%d", b.done, b.total)
	prefix := fmt.Sprintf("%s %3d%% ", b.label, pct)

	barWidth := b.width - len(prefix) - len(counter) - 3
	if barWidth < minBarWidth {
		barWidth = minBarWidth
	}
	filled := barWidth
	if b.total > 0 {
		filled = barWidth * b.done / b.total
	}
	return prefix + "|" + strings.Repeat("#", filled) + strings.Repeat(" ", barWidth-filled) + "| " + counter
}
