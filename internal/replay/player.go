package replay

import (
	"context"
	"fmt"
	"time"

	"github.com/dshills/minui/internal/dom/htmldom"
	"github.com/dshills/minui/internal/event/dispatch"
	"github.com/dshills/minui/internal/logging"
)

// StatsSource reports cumulative handler statistics.
type StatsSource interface {
	Stats() (dispatch.Stats, bool)
}

// StepResult is the outcome of one step.
type StepResult struct {
	Index  int
	Step   Step
	Target string

	// Err is set when the step was skipped.
	Err error

	// Stopped reports whether a handler stopped propagation.
	Stopped bool

	// Handled and Failed count handler runs during the step. They are only
	// filled when the player has a stats source.
	Handled uint64
	Failed  uint64

	Duration time.Duration
}

// OK reports whether the step was delivered.
func (r StepResult) OK() bool {
	return r.Err == nil
}

func (r StepResult) String() string {
	target := r.Target
	if target == "" {
		target = r.Step.Target
	}
	if r.Err != nil {
		return fmt.Sprintf("#%d %s %s: skipped: %v", r.Index, r.Step.Type, target, r.Err)
	}
	return fmt.Sprintf("#%d %s %s: handled=%d failed=%d stopped=%t", r.Index, r.Step.Type, target, r.Handled, r.Failed, r.Stopped)
}

// Report collects step results.
type Report struct {
	Steps []StepResult
}

// Delivered returns the number of delivered steps.
func (r Report) Delivered() int {
	n := 0
	for _, s := range r.Steps {
		if s.OK() {
			n++
		}
	}
	return n
}

// Skipped returns the number of skipped steps.
func (r Report) Skipped() int {
	return len(r.Steps) - r.Delivered()
}

// Player fires replay steps at a document.
type Player struct {
	doc    *htmldom.Document
	stats  StatsSource
	logger *logging.Logger
}

// Option configures a Player.
type Option func(*Player)

// WithStats fills per-step handler counts from src.
func WithStats(src StatsSource) Option {
	return func(p *Player) {
		p.stats = src
	}
}

// WithLogger sets the player's logger.
func WithLogger(l *logging.Logger) Option {
	return func(p *Player) {
		p.logger = l
	}
}

// NewPlayer creates a player for doc.
func NewPlayer(doc *htmldom.Document, opts ...Option) *Player {
	p := &Player{
		doc:    doc,
		logger: logging.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.WithComponent("replay")
	return p
}

// Play fires every step in order. When ctx is done the remaining steps are
// reported with its error.
func (p *Player) Play(ctx context.Context, s *Script) Report {
	report := Report{Steps: make([]StepResult, 0, len(s.Steps))}
	for i, step := range s.Steps {
		if err := ctx.Err(); err != nil {
			report.Steps = append(report.Steps, StepResult{Index: i, Step: step, Err: err})
			continue
		}
		res := p.step(ctx, i, step)
		if res.Err != nil {
			p.logger.WithField("step", i).Warn("skipped: %v", res.Err)
		} else {
			p.logger.WithField("step", i).Debug("%s", res)
		}
		report.Steps = append(report.Steps, res)
	}
	return report
}

func (p *Player) step(ctx context.Context, i int, step Step) StepResult {
	res := StepResult{Index: i, Step: step}

	t, err := step.eventType()
	if err != nil {
		res.Err = err
		return res
	}

	var target *htmldom.Element
	if step.OnDocument() {
		res.Target = DocumentTarget
	} else {
		target, err = p.doc.QuerySelector(step.Target)
		if err != nil {
			res.Err = err
			return res
		}
		if target == nil {
			res.Err = fmt.Errorf("%w: %q", ErrUnresolved, step.Target)
			return res
		}
		res.Target = target.String()
	}

	before, haveStats := p.snapshot()
	start := time.Now()
	ev := p.doc.Dispatch(ctx, target, t, step.Detail)
	res.Duration = time.Since(start)
	res.Stopped = ev.PropagationStopped()

	if after, ok := p.snapshot(); ok && haveStats {
		res.Handled = after.Dispatched - before.Dispatched
		res.Failed = (after.Failed + after.Panicked) - (before.Failed + before.Panicked)
	}
	return res
}

func (p *Player) snapshot() (dispatch.Stats, bool) {
	if p.stats == nil {
		return dispatch.Stats{}, false
	}
	return p.stats.Stats()
}
