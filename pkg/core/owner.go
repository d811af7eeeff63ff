package core

import (
	"github.com/go-drift/mutor/pkg/reactive"
	"github.com/go-drift/mutor/pkg/render"
	"github.com/go-drift/mutor/pkg/telemetry"
)

// Owner mounts and destroys instances against one renderer and runtime.
type Owner struct {
	rt       *reactive.Runtime
	renderer render.Renderer
	names    map[string]string
	logger   *telemetry.Logger
	metrics  *telemetry.Metrics
	live     int
}

// Option configures an Owner.
type Option func(*Owner)

// WithAttributeNames replaces the attribute-name translation table.
func WithAttributeNames(table map[string]string) Option {
	return func(o *Owner) {
		o.names = table
	}
}

// NewOwner creates an owner. Logging and metrics follow the runtime's.
func NewOwner(rt *reactive.Runtime, r render.Renderer, opts ...Option) *Owner {
	o := &Owner{
		rt:       rt,
		renderer: r,
		names:    render.AttributeNames,
		logger:   rt.Logger().Component("core"),
		metrics:  rt.Metrics(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Runtime returns the reactive runtime.
func (o *Owner) Runtime() *reactive.Runtime {
	return o.rt
}

// Renderer returns the render target.
func (o *Owner) Renderer() render.Renderer {
	return o.renderer
}

// Live returns the number of mounted, not yet destroyed instances.
func (o *Owner) Live() int {
	return o.live
}

// Mount builds an instance for desc and attaches its node under target when
// target is non-nil. Contract violations while initializing desc or any of
// its descendants are returned; nothing stays mounted in that case.
func (o *Owner) Mount(desc any, target render.Node) (*Instance, error) {
	in, err := o.mount(desc, nil)
	if err != nil {
		return nil, err
	}
	if target != nil && in.node != nil {
		o.renderer.AppendChild(target, in.node)
	}
	o.logger.Debug().Str("tag", in.desc.Tag).Int("live", o.live).Msg("mounted")
	return in, nil
}

// Destroy unmounts inst and its subtree. Destroying an instance twice is a
// no-op.
func (o *Owner) Destroy(inst *Instance) {
	if inst == nil || inst.state == Destroyed {
		return
	}
	count := 0
	stack := []*Instance{inst}
	for len(stack) > 0 {
		in := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if in.state == Destroyed {
			continue
		}
		wasMounted := in.state == Mounted
		in.state = Destroyed
		count++

		if in.desc.OnDestroy != nil && wasMounted {
			in.desc.OnDestroy(in)
		}
		o.rt.Release(in, in.claims)
		in.claims = reactive.Claims{}
		in.removeListeners()
		if in.node != nil {
			o.renderer.RemoveNode(in.node)
		}
		for i := len(in.children) - 1; i >= 0; i-- {
			if child := in.children[i]; child != nil {
				stack = append(stack, child)
			}
		}
		in.children = nil
		if wasMounted {
			o.live--
			o.metrics.InstanceDestroyed()
		}
	}
	o.logger.Debug().Int("instances", count).Int("live", o.live).Msg("destroyed")
}
