package app

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/letterpress/internal/adapters/detector"
	"go.trai.ch/letterpress/internal/core/domain"
	"go.trai.ch/letterpress/internal/ui/output"
	"go.trai.ch/letterpress/internal/ui/style"
	"go.trai.ch/zerr"
)

// ListOptions configuration for the List method.
type ListOptions struct {
	ConfigPath string
	OutputMode string
}

// List prints the tasks, aliases and watch targets of the pipeline in
// declaration order. Aliases show the tasks they expand to.
func (a *App) List(opts ListOptions) error {
	pipeline, err := a.configLoader.Load(opts.ConfigPath)
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}
	mode, err := detector.ResolveMode(detector.DetectEnvironment(), opts.OutputMode)
	if err != nil {
		return err
	}
	return writeListing(a.stdout, pipeline, mode)
}

func writeListing(w io.Writer, pipeline *domain.Pipeline, mode output.Mode) error {
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(output.ProfileFor(mode))
	heading := r.NewStyle().Bold(true).Foreground(style.Teal)
	name := r.NewStyle().Foreground(style.Ink).Bold(true)
	dim := r.NewStyle().Foreground(style.Slate)

	var b strings.Builder

	tasks := pipeline.Tasks()
	b.WriteString(heading.Render("Tasks") + "\n")
	width := 0
	for _, t := range tasks {
		width = max(width, len(t.Name))
	}
	for _, t := range tasks {
		fmt.Fprintf(&b, "  %s%s  %s\n", name.Render(t.Name), strings.Repeat(" ", width-len(t.Name)), dim.Render(describeFiles(t)))
	}

	aliases := pipeline.Aliases()
	if len(aliases) > 0 {
		b.WriteString("\n" + heading.Render("Aliases") + "\n")
		width = 0
		for _, al := range aliases {
			width = max(width, len(al.Name))
		}
		for _, al := range aliases {
			fmt.Fprintf(&b, "  %s%s  %s\n", name.Render(al.Name), strings.Repeat(" ", width-len(al.Name)), strings.Join(al.Entries, ", "))

			expanded, err := pipeline.Expand(al.Name)
			if err != nil {
				fmt.Fprintf(&b, "  %s  %s %s\n", strings.Repeat(" ", width), style.Cross, err.Error())
				continue
			}
			names := make([]string, len(expanded))
			for i, t := range expanded {
				names[i] = t.Name
			}
			fmt.Fprintf(&b, "  %s  %s\n", strings.Repeat(" ", width), dim.Render(style.Arrow+" "+strings.Join(names, ", ")))
		}
	}

	if targets := pipeline.WatchTargets(); len(targets) > 0 {
		b.WriteString("\n" + heading.Render("Watch") + "\n")
		for _, wt := range targets {
			fmt.Fprintf(&b, "  %s  %s %s %s\n", name.Render(wt.Name), strings.Join(wt.Files, ", "), style.Arrow, strings.Join(wt.Tasks, ", "))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func describeFiles(t *domain.Task) string {
	srcs := t.Sources()
	switch len(srcs) {
	case 0:
		return ""
	case 1:
		return srcs[0]
	default:
		return fmt.Sprintf("%s (+%d)", srcs[0], len(srcs)-1)
	}
}
