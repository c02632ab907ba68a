package watcher_test

import (
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/letterpress/internal/adapters/watcher"
)

func TestDebouncer_CoalescesBurst(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var calls [][]string
		d := watcher.NewDebouncer(100*time.Millisecond, func(paths []string) {
			calls = append(calls, paths)
		})

		d.Add("/project/src/static/js/app.js")
		time.Sleep(50 * time.Millisecond)
		d.Add("/project/src/index.html")
		d.Add("/project/src/static/js/app.js")

		// The second burst restarted the window.
		time.Sleep(80 * time.Millisecond)
		synctest.Wait()
		assert.Empty(t, calls)

		time.Sleep(50 * time.Millisecond)
		synctest.Wait()
		assert.Equal(t, [][]string{{"/project/src/index.html", "/project/src/static/js/app.js"}}, calls)
	})
}

func TestDebouncer_SeparateWindows(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var calls [][]string
		d := watcher.NewDebouncer(100*time.Millisecond, func(paths []string) {
			calls = append(calls, paths)
		})

		d.Add("a.less")
		time.Sleep(150 * time.Millisecond)
		synctest.Wait()

		d.Add("b.less")
		time.Sleep(150 * time.Millisecond)
		synctest.Wait()

		assert.Equal(t, [][]string{{"a.less"}, {"b.less"}}, calls)
	})
}

func TestDebouncer_Flush(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var calls [][]string
		d := watcher.NewDebouncer(time.Hour, func(paths []string) {
			calls = append(calls, paths)
		})

		d.Flush()
		assert.Empty(t, calls, "nothing pending")

		d.Add("main.less")
		d.Flush()
		assert.Equal(t, [][]string{{"main.less"}}, calls)

		// The stopped timer never fires.
		time.Sleep(2 * time.Hour)
		synctest.Wait()
		assert.Len(t, calls, 1)
	})
}

func TestDebouncer_NilCallback(t *testing.T) {
	synctest.Test(t, func(_ *testing.T) {
		d := watcher.NewDebouncer(10*time.Millisecond, nil)
		d.Add("x")
		time.Sleep(20 * time.Millisecond)
		synctest.Wait()
		d.Flush()
	})
}
