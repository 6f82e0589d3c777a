// Package workflow runs the six-stage blog generation pipeline: topic
// discovery, outline planning, research, drafting, editing and publishing.
// Each run is reported as a stream of progress events and its final post is
// cached under the verbatim input.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dusk-indust/quill/internal/cache"
	"github.com/dusk-indust/quill/internal/executor"
)

// ErrInvalidPolicy is returned by New when a stage without a fallback is
// configured to degrade.
var ErrInvalidPolicy = errors.New("workflow: invalid stage policy")

// Controller drives the pipeline. It is safe for concurrent Generate calls.
type Controller struct {
	exec     executor.Executor
	store    cache.Store
	log      *zap.Logger
	personas map[Stage]executor.Persona
	policies map[Stage]Policy
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

// WithPersonas overrides stage personas. Empty fields keep their defaults.
func WithPersonas(personas map[Stage]executor.Persona) Option {
	return func(c *Controller) {
		for s, p := range personas {
			c.personas[s] = p.Merge(c.personas[s])
		}
	}
}

// WithPolicies overrides stage failure policies.
func WithPolicies(policies map[Stage]Policy) Option {
	return func(c *Controller) {
		for s, p := range policies {
			c.policies[s] = p
		}
	}
}

// New builds a Controller. A nil store selects an in-memory cache.
func New(exec executor.Executor, store cache.Store, opts ...Option) (*Controller, error) {
	if exec == nil {
		return nil, errors.New("workflow: executor is required")
	}
	if store == nil {
		store = cache.NewMemStore(cache.DefaultSessionID)
	}
	c := &Controller{
		exec:     exec,
		store:    store,
		log:      zap.NewNop(),
		personas: make(map[Stage]executor.Persona, StageCount),
		policies: DefaultPolicies(),
	}
	for name, p := range executor.DefaultPersonas() {
		if s, err := ParseStage(name); err == nil {
			c.personas[s] = p
		}
	}
	for _, opt := range opts {
		opt(c)
	}
	for s, p := range c.policies {
		if p != PolicyAbort && p != PolicyDegrade {
			return nil, fmt.Errorf("%w: stage %s: %q", ErrInvalidPolicy, s, p)
		}
		if p == PolicyDegrade && !HasFallback(s) {
			return nil, fmt.Errorf("%w: stage %s has no fallback and cannot degrade", ErrInvalidPolicy, s)
		}
	}
	return c, nil
}

// Cached returns the stored post for input without running anything.
func (c *Controller) Cached(ctx context.Context, input string) (string, bool, error) {
	return c.store.Get(ctx, input)
}

// Generate starts a run for input and returns its event stream. With
// useCache set, a cached post short-circuits the run into a single
// workflow_completed event. Otherwise every stage runs and the result
// overwrites any cached post.
//
// Generate never fails; every outcome is reported as an event. Cancelling
// ctx or closing the stream stops the run at its next emission point.
func (c *Controller) Generate(ctx context.Context, input string, useCache bool) *Stream {
	ctx, cancel := context.WithCancel(ctx)
	ch := make(chan Event)
	done := make(chan struct{})

	e := &emitter{ctx: ctx, ch: ch, runID: uuid.NewString()}
	log := c.log.With(zap.String("run_id", e.runID))

	go func() {
		defer close(done)
		defer cancel()
		defer close(ch)
		c.execute(ctx, e, log, input, useCache)
	}()

	return &Stream{events: ch, cancel: cancel, done: done}
}

// execute is the generic stage loop. It returns when the terminal event has
// been delivered or the consumer has gone away.
func (c *Controller) execute(ctx context.Context, e *emitter, log *zap.Logger, input string, useCache bool) {
	log.Info("starting blog post generation", zap.String("input", input), zap.Bool("use_cache", useCache))

	if useCache {
		post, ok, err := c.store.Get(ctx, input)
		switch {
		case err != nil:
			log.Warn("cache read failed, running pipeline", zap.Error(err))
		case ok:
			log.Info("using cached blog post")
			e.send(Event{Kind: EventWorkflowCompleted, Content: post, Cached: true, Message: "Using cached blog post"})
			return
		}
	}

	r := &run{input: input}
	for _, d := range pipeline {
		stageLog := log.With(zap.Stringer("stage", d.stage))
		if !e.send(Event{Kind: EventStageStarted, Stage: d.stage, Message: StepMessage(d.stage, d.step)}) {
			return
		}

		summary, err := c.runStage(ctx, d, r)
		if err == nil {
			stageLog.Info(summary)
			ev := Event{Kind: EventStageCompleted, Stage: d.stage, Message: summary}
			if d.stage == StageResearch {
				ev.References = len(r.references)
			}
			if !e.send(ev) {
				return
			}
			continue
		}

		serr := &StageError{Stage: d.stage, Err: err}
		if c.policies[d.stage] == PolicyDegrade && d.fallback != nil {
			d.fallback(r)
			stageLog.Warn(d.degraded, zap.Error(serr))
			if !e.send(Event{Kind: EventStageDegraded, Stage: d.stage, Message: d.degraded, Error: serr.Error(), Err: serr}) {
				return
			}
			continue
		}

		stageLog.Error(d.failure, zap.Error(serr))
		e.send(Event{Kind: EventWorkflowFailed, Stage: d.stage, Message: d.failure, Error: serr.Error(), Err: serr})
		return
	}

	if ctx.Err() != nil {
		return
	}
	final := r.final()
	if err := c.store.Put(ctx, input, final.String()); err != nil {
		log.Error("caching blog post failed", zap.Error(err))
	} else {
		log.Info("cached blog post", zap.String("input", input))
	}
	e.send(Event{Kind: EventWorkflowCompleted, Content: final.String(), Message: "Blog post ready"})
}

// runStage makes the single executor call for d and decodes its output.
func (c *Controller) runStage(ctx context.Context, d stageDef, r *run) (string, error) {
	task := executor.Task{
		Stage:       d.stage.String(),
		Persona:     c.personas[d.stage],
		Description: d.describe(r),
		Schema:      d.schema,
		Input:       r.input,
	}
	if d.material != nil {
		task.Material = d.material(r).String()
	}

	res, err := c.exec.Execute(ctx, task)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrExecutor, err)
	}
	summary, err := d.accept(r, res)
	if err != nil {
		return "", outputError(err)
	}
	return summary, nil
}

// emitter delivers events for one run.
type emitter struct {
	ctx   context.Context
	ch    chan<- Event
	runID string
}

// send stamps and delivers ev. It reports false if the consumer has gone
// away.
func (e *emitter) send(ev Event) bool {
	ev.RunID = e.runID
	ev.Time = time.Now()
	select {
	case e.ch <- ev:
		return true
	case <-e.ctx.Done():
		return false
	}
}
