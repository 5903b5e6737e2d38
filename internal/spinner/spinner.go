// Package spinner draws a progress indicator with elapsed time while a
// long computation such as an Elo bootstrap runs.
package spinner

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

var frames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const interval = 80 * time.Millisecond

// Start displays an animated spinner followed by message and the elapsed
// time on w. Call the returned function to stop the spinner and clear the
// line; it is safe to call more than once.
func Start(w io.Writer, message string) (stop func()) {
	done := make(chan struct{})
	cleared := make(chan struct{})
	var stopOnce sync.Once
	began := time.Now()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		width := 0
		for i := 0; ; i++ {
			select {
			case <-done:
				fmt.Fprintf(w, "\r%s\r", strings.Repeat(" ", width)) //nolint:errcheck
				close(cleared)
				return
			case <-ticker.C:
				line := Frame(i, message, time.Since(began))
				width = max(width, runewidth.StringWidth(line))
				fmt.Fprintf(w, "\r%s", line) //nolint:errcheck
			}
		}
	}()
	return func() {
		stopOnce.Do(func() {
			close(done)
		})
		<-cleared
	}
}

// StartIfTerminal starts a spinner on f only when f is a terminal, so
// piped and redirected output stays clean. The returned stop is never nil.
func StartIfTerminal(f *os.File, message string) (stop func()) {
	if f == nil || !term.IsTerminal(int(f.Fd())) {
		return func() {}
	}
	return Start(f, message)
}

// Frame renders the i-th animation frame.
func Frame(i int, message string, elapsed time.Duration) string {
	return fmt.Sprintf("%s %s (%s)", frames[i%len(frames)], message, elapsed.Truncate(100*time.Millisecond))
}
