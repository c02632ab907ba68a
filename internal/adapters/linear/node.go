package linear

import (
	"context"
	"io"
	"os"

	"github.com/grindlemire/graft"
	"go.trai.ch/letterpress/internal/core/ports"
	"go.trai.ch/letterpress/internal/ui/output"
)

// Factory builds a renderer per run, once the output mode is known.
type Factory struct {
	stdout io.Writer
	stderr io.Writer
}

// NewFactory creates a Factory writing to stdout and stderr. Nil writers
// select the process streams.
func NewFactory(stdout, stderr io.Writer) *Factory {
	return &Factory{stdout: stdout, stderr: stderr}
}

// Renderer returns a new Renderer for mode.
func (f *Factory) Renderer(mode output.Mode) ports.Renderer {
	return NewRenderer(f.stdout, f.stderr, mode)
}

// NodeID is the unique identifier for the renderer factory Graft node.
const NodeID graft.ID = "adapter.linear"

func init() {
	graft.Register(graft.Node[*Factory]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Factory, error) {
			return NewFactory(os.Stdout, os.Stderr), nil
		},
	})
}
