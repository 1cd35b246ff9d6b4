package pipeline

import (
	"fmt"

	"github.com/matzehuels/clusterflow/pkg/diagram"
	"github.com/matzehuels/clusterflow/pkg/render"
	"github.com/matzehuels/clusterflow/pkg/render/sink"
)

// Artifacts serializes a render in the requested formats. l must be the
// export of res.
func Artifacts(res *render.Result, l *diagram.Layout, formats []string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(formats))
	for _, format := range formats {
		switch format {
		case FormatJSON:
			data, err := diagram.MarshalLayout(l)
			if err != nil {
				return nil, fmt.Errorf("render %s: %w", format, err)
			}
			out[format] = data
		case FormatSVG:
			out[format] = sink.RenderSVG(res)
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}
	}
	return out, nil
}
