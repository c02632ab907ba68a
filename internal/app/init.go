package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/letterpress/internal/adapters/config"
	"go.trai.ch/letterpress/internal/core/domain"
	"go.trai.ch/zerr"
)

// Init writes the default pipeline file into dir. An existing file is only
// replaced when force is set.
func (a *App) Init(dir string, force bool) error {
	path := filepath.Join(dir, domain.PipelineFileName)

	_, err := os.Stat(path)
	switch {
	case err == nil && !force:
		return zerr.With(domain.ErrConfigExists, "path", path)
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", path)
	}

	if err := os.WriteFile(path, config.DefaultPipeline, domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrDestinationWriteFailed.Error()), "path", path)
	}

	_, err = fmt.Fprintf(a.stdout, "Created %s\n", path)
	return err
}
