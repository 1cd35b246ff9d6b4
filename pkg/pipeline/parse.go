package pipeline

import (
	stderrors "errors"
	"io"
	"io/fs"

	"github.com/matzehuels/clusterflow/pkg/diagram"
	"github.com/matzehuels/clusterflow/pkg/errors"
)

// ReadInput reads a diagram from path, or from stdin when path is "-".
func ReadInput(path string, stdin io.Reader) (*diagram.Diagram, error) {
	var (
		d   *diagram.Diagram
		err error
	)
	if path == "-" {
		d, err = diagram.ReadDiagram(stdin)
	} else {
		d, err = diagram.ReadDiagramFile(path)
	}
	switch {
	case err == nil:
		return d, nil
	case stderrors.Is(err, fs.ErrNotExist):
		return nil, errors.Wrap(errors.ErrCodeNotFound, err, "input %s", path)
	default:
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read diagram")
	}
}
