package scheduler_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.trai.ch/zerr"
)

func taskMeta(t *testing.T, err error) any {
	t.Helper()
	var zErr *zerr.Error
	require.True(t, errors.As(err, &zErr))
	return zErr.Metadata()["task"]
}
