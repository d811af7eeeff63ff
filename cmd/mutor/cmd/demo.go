package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/mutor/pkg/mutor"
)

// demoReport is the outcome of one scenario run.
type demoReport struct {
	Scenario  string             `json:"scenario" yaml:"scenario"`
	Steps     int                `json:"steps" yaml:"steps"`
	Passes    int                `json:"passes" yaml:"passes"`
	Stats     mutor.Stats        `json:"stats" yaml:"stats"`
	Tree      string             `json:"tree,omitempty" yaml:"tree,omitempty"`
	Instances mutor.InstanceNode `json:"instances" yaml:"instances"`
}

func init() {
	RegisterCommand(func(o *options) *cobra.Command {
		var (
			steps  int
			format string
		)
		c := &cobra.Command{
			Use:   "demo [scenario]",
			Short: "Run a demo scenario and print the result",
			Long: fmt.Sprintf(`Mount a demo component tree, advance it step by step and print the
rendered tree.

Scenarios (default: counter):
%s  all      every scenario in turn

Formats:
  text   the render tree followed by runtime counters
  yaml   a report with the instance tree
  json   the same report as JSON`, scenarioHelp()),
			Args: cobra.MaximumNArgs(1),
			RunE: func(c *cobra.Command, args []string) error {
				name := "counter"
				if len(args) == 1 {
					name = args[0]
				}
				return runDemo(c.OutOrStdout(), o, name, steps, format)
			},
		}
		c.Flags().IntVarP(&steps, "steps", "n", 3, "number of steps to run")
		c.Flags().StringVarP(&format, "format", "f", "text", "output format (text, yaml, json)")
		return c
	})
}

func runDemo(w io.Writer, o *options, name string, steps int, format string) error {
	switch format {
	case "text", "yaml", "json":
	default:
		return fmt.Errorf("unknown format %q (use text, yaml or json)", format)
	}
	if steps < 0 {
		return fmt.Errorf("steps must not be negative, got %d", steps)
	}

	var selected []scenario
	if name == "all" {
		for _, n := range scenarioNames() {
			selected = append(selected, scenarios[n])
		}
	} else {
		s, ok := scenarios[name]
		if !ok {
			return fmt.Errorf("unknown scenario %q (available: %s, all)", name, strings.Join(scenarioNames(), ", "))
		}
		selected = append(selected, s)
	}

	cfg, err := o.loadConfig()
	if err != nil {
		return err
	}

	var reports []demoReport
	for _, s := range selected {
		app, err := mutor.NewFromConfig(cfg)
		if err != nil {
			return err
		}
		report, err := playScenario(app, s, steps)
		app.Close()
		if err != nil {
			return fmt.Errorf("scenario %s: %w", s.name, err)
		}
		reports = append(reports, report)
	}
	return writeReports(w, reports, format)
}

func playScenario(app *mutor.App, s scenario, steps int) (demoReport, error) {
	st, err := s.mount(app)
	if err != nil {
		return demoReport{}, err
	}
	passes := 0
	for i := 0; i < steps; i++ {
		st.step(app, i)
		passes += app.Flush()
	}
	app.Logger().Info().Str("scenario", s.name).Int("steps", steps).Int("passes", passes).Msg("scenario finished")

	report := demoReport{
		Scenario:  s.name,
		Steps:     steps,
		Passes:    passes,
		Stats:     app.Stats(),
		Instances: mutor.InstanceTree(st.root()),
	}
	if tree := app.Tree(); tree != nil {
		report.Tree = tree.String()
	}
	return report, nil
}

func writeReports(w io.Writer, reports []demoReport, format string) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		for _, r := range reports {
			if err := enc.Encode(r); err != nil {
				return err
			}
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		for _, r := range reports {
			if err := enc.Encode(r); err != nil {
				return err
			}
		}
		return nil
	}
	for _, r := range reports {
		fmt.Fprintf(w, "# %s (%d steps, %d passes)\n", r.Scenario, r.Steps, r.Passes)
		fmt.Fprint(w, r.Tree)
		fmt.Fprintf(w, "instances=%d wrappers=%d components=%d effects=%d\n",
			r.Stats.Instances, r.Stats.Wrappers, r.Stats.ComponentEntries, r.Stats.EffectEntries)
	}
	return nil
}
