package tui

import (
	"fmt"
	"io"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// StatusLine animates a single in-place line while a long step runs, such
// as downloading the installer. Stop prints a final line with the elapsed
// time so the record stays in scrollback.
type StatusLine struct {
	w       io.Writer
	message string
	start   time.Time
	every   time.Duration

	mu      sync.Mutex
	stopped bool
	done    chan struct{}
	exited  chan struct{}
}

// StartStatusLine begins animating msg on w.
func StartStatusLine(w io.Writer, msg string) *StatusLine {
	sl := &StatusLine{
		w:       w,
		message: msg,
		start:   time.Now(),
		every:   100 * time.Millisecond,
		done:    make(chan struct{}),
		exited:  make(chan struct{}),
	}
	go sl.loop()
	return sl
}

// Stop ends the animation. Calling it more than once is harmless.
func (sl *StatusLine) Stop() {
	sl.mu.Lock()
	if sl.stopped {
		sl.mu.Unlock()
		return
	}
	sl.stopped = true
	sl.mu.Unlock()

	close(sl.done)
	<-sl.exited
	fmt.Fprintf(sl.w, "\r\033[K%s (%s)\n", sl.message, formatElapsed(time.Since(sl.start)))
}

func (sl *StatusLine) loop() {
	defer close(sl.exited)
	ticker := time.NewTicker(sl.every)
	defer ticker.Stop()

	for tick := 0; ; tick++ {
		select {
		case <-sl.done:
			return
		case <-ticker.C:
			frame := spinnerFrames[tick%len(spinnerFrames)]
			fmt.Fprintf(sl.w, "\r\033[K%s %s (%s)", frame, sl.message, formatElapsed(time.Since(sl.start)))
		}
	}
}

func formatElapsed(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < 10*time.Second:
		return fmt.Sprintf("%.1fs", d.Seconds())
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
}
