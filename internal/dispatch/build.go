package dispatch

import (
	"context"
	"fmt"
	"strconv"

	"dispatchgen/internal/registry"
	"dispatchgen/internal/trace"
)

// Build derives the dispatch target for one registry document.
func Build(ctx context.Context, reg *registry.Registry, opts Options) (*Target, error) {
	if reg == nil {
		return nil, fmt.Errorf("missing registry")
	}
	tracer := trace.FromContext(ctx)
	parent := trace.CurrentSpan(ctx).SpanID
	span := trace.Begin(tracer, trace.ScopePhase, "dispatch:"+reg.Name, parent)

	t := newTarget(reg)
	for i := range reg.Commands {
		f := newFunction(&reg.Commands[i])
		t.funcs[f.Name] = f
	}
	if err := t.synthesize(reg); err != nil {
		span.End("error")
		return nil, err
	}
	dropped := t.applyExclusion(opts.Exclude)
	if err := t.resolveAliases(); err != nil {
		span.End("error")
		return nil, err
	}
	if err := t.applyBootstrap(opts.Bootstrap); err != nil {
		span.End("error")
		return nil, err
	}
	for _, name := range opts.Wrapped {
		if f, ok := t.funcs[name]; ok {
			f.Wrapped = true
		}
	}
	if err := t.enumerate(); err != nil {
		span.End("error")
		return nil, err
	}
	t.sortFunctions()

	span.WithExtra("functions", strconv.Itoa(len(t.funcs))).
		WithExtra("providers", strconv.Itoa(len(t.providers))).
		WithExtra("excluded", strconv.Itoa(len(dropped)))
	span.End("")
	return t, nil
}
