package tools

import (
	"regexp"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"go.trai.ch/letterpress/internal/core/domain"
	"go.trai.ch/zerr"
)

var engineNames = map[string]api.EngineName{
	"chrome":  api.EngineChrome,
	"edge":    api.EngineEdge,
	"firefox": api.EngineFirefox,
	"ie":      api.EngineIE,
	"ios":     api.EngineIOS,
	"node":    api.EngineNode,
	"opera":   api.EngineOpera,
	"safari":  api.EngineSafari,
}

var browserPattern = regexp.MustCompile(`^([a-z]+)(\d+(?:\.\d+)*)$`)

// DefaultBrowsers is used when a task sets no browsers option.
var DefaultBrowsers = []string{"chrome58", "edge16", "firefox57", "safari11"}

// parseEngines turns entries such as "ie8" or "safari11.1" into esbuild engines.
func parseEngines(browsers []string) ([]api.Engine, error) {
	engines := make([]api.Engine, 0, len(browsers))
	for _, b := range browsers {
		m := browserPattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(b)))
		if m == nil {
			return nil, zerr.With(zerr.With(domain.ErrInvalidOption, "option", "browsers"), "value", b)
		}
		name, ok := engineNames[m[1]]
		if !ok {
			return nil, zerr.With(zerr.With(domain.ErrInvalidOption, "option", "browsers"), "value", b)
		}
		engines = append(engines, api.Engine{Name: name, Version: m[2]})
	}
	return engines, nil
}

func formatMessages(msgs []api.Message, kind api.MessageKind) []string {
	formatted := api.FormatMessages(msgs, api.FormatMessagesOptions{Kind: kind})
	for i, f := range formatted {
		formatted[i] = strings.TrimRight(f, "\n")
	}
	return formatted
}
