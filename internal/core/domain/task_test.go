package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/letterpress/internal/core/domain"
)

func TestNewTask(t *testing.T) {
	task, err := domain.NewTask("jsmin", "main", nil, []domain.FileMapping{
		{Src: []string{"a.js", "b.js"}, Dest: "out.js"},
		{Src: []string{"c.js"}, Dest: "c.min.js"},
	})
	require.NoError(t, err)

	assert.Equal(t, "jsmin:main", task.Name)
	assert.NotNil(t, task.Options)
	assert.Equal(t, []string{"a.js", "b.js", "c.js"}, task.Sources())
	assert.Equal(t, "jsmin:main (2 file mapping(s))", task.String())
}

func TestNewTask_InvalidNames(t *testing.T) {
	for _, tc := range []struct{ kind, target string }{
		{"", "main"},
		{"jsmin", ""},
		{"js min", "main"},
		{"jsmin", "a:b"},
	} {
		_, err := domain.NewTask(tc.kind, tc.target, nil, nil)
		assert.ErrorContains(t, err, domain.ErrInvalidTaskName.Error(), "%q:%q", tc.kind, tc.target)
	}
}

func TestSplitTaskName(t *testing.T) {
	kind, target := domain.SplitTaskName("banner:css")
	assert.Equal(t, "banner", kind)
	assert.Equal(t, "css", target)

	kind, target = domain.SplitTaskName("banner")
	assert.Equal(t, "banner", kind)
	assert.Empty(t, target)
}

func TestEnv(t *testing.T) {
	locs := map[string]string{"src": "src"}
	env := domain.NewEnv("/project/", locs)
	locs["src"] = "mutated"

	src, ok := env.Location("src")
	require.True(t, ok)
	assert.Equal(t, "src", src)
	assert.Equal(t, "/project", env.Root())
	assert.Equal(t, "/project/dist/a.css", env.Abs("dist/a.css"))
	assert.Equal(t, "/tmp/x", env.Abs("/tmp/x"))
}

func TestTaskStatus_Terminal(t *testing.T) {
	assert.False(t, domain.StatusPending.Terminal())
	assert.False(t, domain.StatusRunning.Terminal())
	assert.True(t, domain.StatusCompleted.Terminal())
	assert.True(t, domain.StatusFailed.Terminal())
}
