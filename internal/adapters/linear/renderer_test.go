package linear_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/letterpress/internal/adapters/linear"
	"go.trai.ch/letterpress/internal/ui/output"
)

func TestRenderer_TaskLifecycle(t *testing.T) {
	var stdout, stderr bytes.Buffer
	r := linear.NewRenderer(&stdout, &stderr, output.ModePlain)

	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	r.OnPlanEmit([]string{"concat:js", "jsmin:js"}, []string{"js"})
	r.OnTaskStart("s1", "", "concat:js", start)
	r.OnTaskLog("s1", []byte("3 files con"))
	r.OnTaskLog("s1", []byte("catenated\npartial"))
	r.OnTaskComplete("s1", start.Add(100*time.Millisecond), nil)

	r.OnTaskStart("s2", "", "jsmin:js", start.Add(100*time.Millisecond))
	r.OnTaskComplete("s2", start.Add(400*time.Millisecond), errors.New("syntax error"))
	require.NoError(t, r.Stop())

	assert.Equal(t, "[concat:js] 3 files concatenated\n[concat:js] partial\n", stdout.String())

	want := strings.Join([]string{
		"Running 2 task(s) for js",
		"[concat:js] Starting...",
		"[concat:js] ✓ Completed in 100ms",
		"[jsmin:js] Starting...",
		"[jsmin:js] ✗ Failed after 300ms: syntax error",
		"",
		"Execution Time",
		"  concat:js     100ms  ▇▇▇▇▇▇▇▇▇▇ 25%",
		"  jsmin:js      300ms  ▇▇▇▇▇▇▇▇▇▇▇▇▇▇▇▇▇▇▇▇▇▇▇▇▇▇▇▇▇▇ 75%",
		"  Total         400ms",
		"",
	}, "\n")
	assert.Equal(t, want, stderr.String())
}

func TestRenderer_IgnoresUnknownSpans(t *testing.T) {
	var stdout, stderr bytes.Buffer
	r := linear.NewRenderer(&stdout, &stderr, output.ModePlain)

	r.OnTaskLog("missing", []byte("hello\n"))
	r.OnTaskComplete("missing", time.Now(), nil)
	require.NoError(t, r.Stop())

	assert.Empty(t, stdout.String())
	assert.Empty(t, stderr.String(), "no summary without completed tasks")
}

func TestRenderer_StopFlushesAndIsIdempotent(t *testing.T) {
	var stdout, stderr bytes.Buffer
	r := linear.NewRenderer(&stdout, &stderr, output.ModePlain)

	r.OnTaskStart("s1", "", "exec:watch", time.Now())
	r.OnTaskLog("s1", []byte("no newline"))
	require.NoError(t, r.Stop())
	require.NoError(t, r.Stop())

	assert.Equal(t, "[exec:watch] no newline\n", stdout.String())
}

func TestFactory_Renderer(t *testing.T) {
	var stdout, stderr bytes.Buffer
	r := linear.NewFactory(&stdout, &stderr).Renderer(output.ModePlain)

	r.OnPlanEmit([]string{"a:b"}, []string{"a"})
	assert.Equal(t, "Running 1 task(s) for a\n", stderr.String())
}
