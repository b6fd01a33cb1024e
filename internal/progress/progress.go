// Package progress reports the advance of long loops.
package progress

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
)

// Reporter receives one Step per processed item and a final Terminate.
type Reporter interface {
	Step()
	Terminate()
}

// Progress draws a percentage line when w is a terminal and logs start and
// completion otherwise.
type Progress struct {
	name     string
	total    int
	interval int // redraw every interval percent

	done    int
	lastPct int
	start   time.Time

	w      io.Writer
	tty    bool
	logger *slog.Logger
}

// New creates a reporter for total items.
func New(total int, name string, interval int, w io.Writer, logger *slog.Logger) *Progress {
	if interval <= 0 {
		interval = 1
	}
	p := &Progress{
		name:     name,
		total:    total,
		interval: interval,
		lastPct:  -interval,
		start:    time.Now(),
		w:        w,
		tty:      isTerminal(w),
		logger:   logger.With("component", "progress"),
	}
	p.logger.Debug("started", "task", name, "total", total)
	return p
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Step records one processed item.
func (p *Progress) Step() {
	p.done++
	pct := p.percent()
	if pct-p.lastPct >= p.interval {
		p.lastPct = pct
		p.draw(pct)
	}
}

// Terminate finishes the line and logs the elapsed time.
func (p *Progress) Terminate() {
	if p.tty {
		p.draw(100)
		_, _ = fmt.Fprintln(p.w)
	}
	p.logger.Info("finished", "task", p.name, "items", p.done, "elapsed", time.Since(p.start).Round(time.Millisecond).String())
}

func (p *Progress) percent() int {
	if p.total <= 0 {
		return 100
	}
	return min(100, p.done*100/p.total)
}

func (p *Progress) draw(pct int) {
	if !p.tty {
		return
	}
	_, _ = fmt.Fprintf(p.w, "\r%s: %d%% (%s/%s)", p.name, pct,
		humanize.Comma(int64(p.done)), humanize.Comma(int64(p.total)))
}

// Nop discards progress.
type Nop struct{}

func (Nop) Step()      {}
func (Nop) Terminate() {}
