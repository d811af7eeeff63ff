package mutor

import (
	"context"
	"fmt"

	"github.com/go-drift/mutor/pkg/config"
	"github.com/go-drift/mutor/pkg/core"
	"github.com/go-drift/mutor/pkg/errors"
	"github.com/go-drift/mutor/pkg/reactive"
	"github.com/go-drift/mutor/pkg/render"
	"github.com/go-drift/mutor/pkg/telemetry"
)

// App ties the reactive runtime to a render target.
type App struct {
	rt       *reactive.Runtime
	owner    *core.Owner
	renderer render.Renderer
	root     render.Node
	tree     *render.Tree
	logger   *telemetry.Logger
	metrics  *telemetry.Metrics

	maxPasses int
	names     map[string]string
	mounted   []*core.Instance
}

// Option configures an App.
type Option func(*App)

// WithRenderer renders into r, attaching mounted roots under root.
func WithRenderer(r render.Renderer, root render.Node) Option {
	return func(a *App) {
		a.renderer = r
		a.root = root
		a.tree, _ = r.(*render.Tree)
	}
}

// WithLogger sets the logger.
func WithLogger(l *telemetry.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(a *App) {
		a.metrics = m
	}
}

// WithMaxPasses bounds the passes of a single flush.
func WithMaxPasses(n int) Option {
	return func(a *App) {
		a.maxPasses = n
	}
}

// WithAttributeNames replaces the attribute-name translation table.
func WithAttributeNames(table map[string]string) Option {
	return func(a *App) {
		a.names = table
	}
}

// New creates an app. Without WithRenderer it renders into a fresh
// render.Tree.
func New(opts ...Option) *App {
	a := &App{logger: telemetry.Nop()}
	for _, opt := range opts {
		opt(a)
	}
	if a.renderer == nil {
		a.tree = render.NewTree()
		a.renderer = a.tree
		a.root = a.tree.Root()
	}
	a.rt = reactive.NewRuntime(
		reactive.WithLogger(a.logger.Component("reactive")),
		reactive.WithMetrics(a.metrics),
		reactive.WithMaxPasses(a.maxPasses),
	)
	var ownerOpts []core.Option
	if a.names != nil {
		ownerOpts = append(ownerOpts, core.WithAttributeNames(a.names))
	}
	a.owner = core.NewOwner(a.rt, a.renderer, ownerOpts...)
	return a
}

// NewFromConfig creates an app whose logger, metrics and pass limit follow
// cfg, and routes error reports through the app's logger.
func NewFromConfig(cfg *config.Config, opts ...Option) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	logger, err := telemetry.NewLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to open log output: %w", err)
	}
	errors.SetHandler(&errors.LogHandler{Verbose: cfg.Errors.Verbose, Logger: logger.Zerolog()})

	base := []Option{
		WithLogger(logger),
		WithMetrics(telemetry.NewMetrics(cfg.Metrics)),
		WithMaxPasses(cfg.Scheduler.MaxPasses),
	}
	return New(append(base, opts...)...), nil
}

// Runtime returns the reactive runtime.
func (a *App) Runtime() *reactive.Runtime {
	return a.rt
}

// Owner returns the component owner.
func (a *App) Owner() *core.Owner {
	return a.owner
}

// Root returns the node mounted roots attach to.
func (a *App) Root() render.Node {
	return a.root
}

// Tree returns the in-memory tree, or nil when rendering elsewhere.
func (a *App) Tree() *render.Tree {
	return a.tree
}

// Logger returns the app logger.
func (a *App) Logger() *telemetry.Logger {
	return a.logger
}

// Metrics returns the metrics collector, which may be nil.
func (a *App) Metrics() *telemetry.Metrics {
	return a.metrics
}

// Mount mounts desc under target, or under the app root when target is nil.
func (a *App) Mount(desc any, target render.Node) (*core.Instance, error) {
	if target == nil {
		target = a.root
	}
	inst, err := a.owner.Mount(desc, target)
	if err != nil {
		return nil, err
	}
	a.mounted = append(a.mounted, inst)
	return inst, nil
}

// Mounted returns the live instances mounted through the app.
func (a *App) Mounted() []*core.Instance {
	out := make([]*core.Instance, 0, len(a.mounted))
	for _, inst := range a.mounted {
		if inst.State() != core.Destroyed {
			out = append(out, inst)
		}
	}
	return out
}

// Reactive wraps state for observation. See reactive.Runtime.Reactive.
func (a *App) Reactive(state any) any {
	return a.rt.Reactive(state)
}

// Object wraps m for observation.
func (a *App) Object(m map[string]any) *reactive.Object {
	return a.rt.Object(m)
}

// List wraps the sequence behind p for observation.
func (a *App) List(p *[]any) *reactive.List {
	return a.rt.List(p)
}

// Effect registers a side effect. See reactive.Runtime.Effect.
func (a *App) Effect(fn any) (*reactive.Effect, error) {
	return a.rt.Effect(fn)
}

// Destroy unmounts inst and its subtree.
func (a *App) Destroy(inst *core.Instance) {
	a.owner.Destroy(inst)
	for i, m := range a.mounted {
		if m == inst {
			a.mounted = append(a.mounted[:i], a.mounted[i+1:]...)
			break
		}
	}
}

// Close destroys every instance mounted through the app.
func (a *App) Close() {
	for len(a.mounted) > 0 {
		a.Destroy(a.mounted[len(a.mounted)-1])
	}
}

// Flush propagates pending writes and returns the number of passes run.
func (a *App) Flush() int {
	return a.rt.Flush()
}

// Dispatch schedules fn on the goroutine running Run. It is safe to call
// from any goroutine.
func (a *App) Dispatch(fn func()) bool {
	return a.rt.Scheduler().Dispatch(fn)
}

// Run processes dispatched callbacks, flushing after each one, until ctx is
// done.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info().Msg("app loop started")
	err := a.rt.Scheduler().Run(ctx)
	a.logger.Info().Err(err).Msg("app loop stopped")
	return err
}

// Do runs fn on the app loop and waits for it to finish. It fails when ctx
// ends first, for example because Run is not being called.
func (a *App) Do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	a.Dispatch(func() {
		defer close(done)
		fn()
	})
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stats is a snapshot of the runtime's bookkeeping.
type Stats struct {
	Instances        int `json:"instances" yaml:"instances"`
	Wrappers         int `json:"wrappers" yaml:"wrappers"`
	ComponentEntries int `json:"componentEntries" yaml:"component_entries"`
	EffectEntries    int `json:"effectEntries" yaml:"effect_entries"`
	Pending          int `json:"pending" yaml:"pending"`
}

// Stats reports the current bookkeeping sizes. Call it from the app loop.
func (a *App) Stats() Stats {
	return Stats{
		Instances:        a.owner.Live(),
		Wrappers:         a.rt.Wrappers(),
		ComponentEntries: a.rt.Components().Len(),
		EffectEntries:    a.rt.Effects().Len(),
		Pending:          a.rt.Scheduler().Pending(),
	}
}
