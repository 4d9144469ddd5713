package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

const spinnerInterval = 80 * time.Millisecond

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// spin runs fn while animating msg on out. Nothing is drawn when out is not
// a terminal, so piped output stays clean.
func spin(ctx context.Context, out io.Writer, msg string, fn func() error) error {
	if !isTerminal(out) {
		return fn()
	}
	ctx, cancel := context.WithCancel(ctx)
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		animate(ctx, out, msg)
	}()
	err := fn()
	cancel()
	<-stopped
	return err
}

// animate redraws msg with the next frame until ctx is done, then blanks
// the line.
func animate(ctx context.Context, out io.Writer, msg string) {
	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()
	defer fmt.Fprintf(out, "\r%s\r", strings.Repeat(" ", lipgloss.Width(msg)+2))

	for i := 0; ; i++ {
		frame := spinnerFrames[i%len(spinnerFrames)]
		fmt.Fprintf(out, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(msg))
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}
