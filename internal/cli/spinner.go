package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/matzehuels/topodraw/pkg/errors"
)

// stage names the pipeline step a spinner is waiting on.
type stage string

const (
	stageLayout    stage = "Layout"
	stageRender    stage = "Render"
	stageVisualize stage = "Visualization"
	stageSweep     stage = "Sweep"
)

// verbs are shown while a stage runs, followed by its subject.
var verbs = map[stage]string{
	stageLayout:    "Computing layout for",
	stageRender:    "Rendering",
	stageVisualize: "Rendering diagram from",
	stageSweep:     "Sweeping",
}

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner animates a status line on w while one pipeline stage runs. It
// stops on its own when the parent context is cancelled.
type Spinner struct {
	w       io.Writer
	stage   stage
	message string
	parent  context.Context
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
	mu      sync.Mutex
}

// newSpinner returns a spinner for st writing to c.Err.
func (c *CLI) newSpinner(ctx context.Context, st stage, subject string) *Spinner {
	return newSpinner(ctx, c.Err, st, subject)
}

func newSpinner(ctx context.Context, w io.Writer, st stage, subject string) *Spinner {
	sctx, cancel := context.WithCancel(ctx)
	msg := verbs[st]
	if subject != "" {
		msg += " " + subject
	}
	return &Spinner{
		w:       w,
		stage:   st,
		message: msg + "...",
		parent:  ctx,
		ctx:     sctx,
		cancel:  cancel,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Start begins the animation.
func (s *Spinner) Start() {
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				s.clearLine()
				return
			case <-s.done:
				return
			case <-ticker.C:
				frame := spinnerFrames[i%len(spinnerFrames)]
				s.mu.Lock()
				fmt.Fprintf(s.w, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(s.message))
				s.mu.Unlock()
			}
		}
	}()
}

// Stop halts the animation and clears the line. Safe to call repeatedly.
func (s *Spinner) Stop() {
	s.cancel()
	s.once.Do(func() { close(s.done) })
	<-s.stopped
	s.clearLine()
}

func (s *Spinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", len(s.message)+4))
}

// StopWithSuccess stops the spinner and prints msg.
func (s *Spinner) StopWithSuccess(msg string) {
	s.Stop()
	printSuccess("%s", msg)
}

// StopWithError stops the spinner and reports which stage failed and why.
func (s *Spinner) StopWithError(err error) {
	s.Stop()
	printError("%s", failure(s.stage, err))
}

// Cancelled reports whether the parent context ended.
func (s *Spinner) Cancelled() bool {
	return s.parent.Err() != nil
}

// failure formats a stage error as "<stage> failed: <message> (<code>)".
func failure(st stage, err error) string {
	msg := fmt.Sprintf("%s failed: %s", st, errors.UserMessage(err))
	if code := errors.GetCode(err); code != "" {
		msg += fmt.Sprintf(" (%s)", code)
	}
	return msg
}
