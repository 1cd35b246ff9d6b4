package pipeline

import (
	"context"

	"github.com/matzehuels/clusterflow/pkg/diagram"
	"github.com/matzehuels/clusterflow/pkg/errors"
	"github.com/matzehuels/clusterflow/pkg/layout"
	"github.com/matzehuels/clusterflow/pkg/layout/dot"
	"github.com/matzehuels/clusterflow/pkg/render"
)

// NewEngine returns the flat layout engine registered under name.
func NewEngine(name string) (layout.Engine, error) {
	switch name {
	case "", "layered":
		return layout.NewLayered(), nil
	case "dot":
		return dot.New(), nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown engine %q", name)
	}
}

// Layout renders d with resolved options. It does not touch the cache.
func Layout(ctx context.Context, d *diagram.Diagram, opts Options) (*render.Result, error) {
	engine, err := NewEngine(opts.Engine)
	if err != nil {
		return nil, err
	}
	return render.Render(ctx, d, render.Options{
		Engine:      engine,
		Logger:      opts.Logger,
		NodeSpacing: opts.NodeSpacing,
		RankSpacing: opts.RankSpacing,
		TitleMargin: opts.titleMargin,
	})
}
