package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"peertech.de/keel/pkg/apply"
	"peertech.de/keel/pkg/config"
	"peertech.de/keel/pkg/graph"
	"peertech.de/keel/pkg/manifest"
	manifeststarlark "peertech.de/keel/pkg/manifest/starlark"
	manifestyaml "peertech.de/keel/pkg/manifest/yaml"
	"peertech.de/keel/pkg/plan"
	"peertech.de/keel/pkg/report"
	"peertech.de/keel/pkg/resource"
)

var configFile string
var logLevel string
var stateFile string
var targetFile string
var changed []string

func main() {
	rootCmd := &cobra.Command{
		Use:           "keelctl",
		Short:         "Dependency-ordered reconciliation planner",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(logLevel)
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"Path to optional YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&stateFile, "state", "",
		"Path to the manifest describing what currently exists")
	rootCmd.PersistentFlags().StringVar(&targetFile, "target", "",
		"Path to the manifest describing what should exist")
	rootCmd.PersistentFlags().StringSliceVar(&changed, "changed", nil,
		"Names of resources that must be destroyed and recreated even though\n"+
			"they appear in both manifests")

	rootCmd.AddCommand(cmdPlan())
	rootCmd.AddCommand(cmdApply())
	rootCmd.AddCommand(cmdGraph())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", prettifyError(err))
		os.Exit(1)
	}
}

func cmdPlan() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan [specifiers...]",
		Short: "Compute the ordered create/delete sequence without applying it",
		Long: `Plan compares the current-state manifest against the target manifest and
prints the ordered operation sequence ("+name" to create, "-name" to delete)
that transforms one into the other. Positional specifiers restrict planning
to the given resource names; by default every known name is planned.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setupConfig()
			if err != nil {
				return err
			}

			p, _, _, err := setupPlanner(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			pl, err := p.Plan(args...)
			if err != nil {
				return err
			}

			for _, token := range pl.Tokens() {
				fmt.Println(token)
			}

			return nil
		},
	}

	return cmd
}

func cmdApply() *cobra.Command {
	var (
		dryRun  bool
		emoji   bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "apply [specifiers...]",
		Short: "Compute the plan and execute it via the resource hooks",
		Long: `Apply computes the same plan as 'plan' and then executes it strictly in
order, running each resource's create_cmd/delete_cmd hook. Execution stops at
the first failure; the remaining operations are skipped.

WARNING: This command runs the hook commands on your system.
Always run 'plan' first to review the sequence.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			cfg, err := setupConfig()
			if err != nil {
				return err
			}
			if timeout == 0 && cfg.CommandTimeout > 0 {
				timeout = time.Duration(cfg.CommandTimeout)
			}

			p, state, target, err := setupPlanner(ctx, cfg)
			if err != nil {
				return err
			}

			pl, err := p.Plan(args...)
			if err != nil {
				return err
			}

			var reporter report.Reporter = report.PlainReporter{}
			if emoji {
				reporter = report.EmojiReporter{}
			}

			execOpts := []apply.CommandOption{}
			if timeout > 0 {
				execOpts = append(execOpts, apply.WithCommandTimeout(timeout))
			}

			a := apply.NewApplier(state, target,
				apply.WithExecutor(apply.NewCommandExecutor(execOpts...)),
				apply.WithReporter(reporter),
			)

			summary := a.Run(ctx, pl, dryRun)
			if summary.Error != nil {
				return summary.Error
			}
			if !summary.Success {
				return fmt.Errorf("apply failed: %d of %d operations applied, %d skipped",
					summary.AppliedCount, summary.TotalCount, summary.SkippedCount)
			}

			log.Info().
				Int("applied", summary.AppliedCount).
				Int("total", summary.TotalCount).
				Msg("Apply finished")
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false,
		"Report the operations without executing any hook")
	cmd.Flags().BoolVar(&emoji, "emoji", false,
		"Use the emoji reporter for progress output")
	cmd.Flags().DurationVar(&timeout, "timeout", 0,
		"Timeout for a single hook command (defaults to the config file value, then 30s)")

	return cmd
}

func cmdGraph() *cobra.Command {
	var which string

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Emit the derived dependency graphs as Graphviz DOT",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setupConfig()
			if err != nil {
				return err
			}

			p, _, _, err := setupPlanner(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			switch which {
			case "consumers":
				p.ConsumerGraph().AsDot(os.Stdout, "consumers")
			case "tools":
				p.ToolGraph().AsDot(os.Stdout, "tools")
			case "union":
				graph.Union(p.ConsumerGraph(), p.ToolGraph()).AsDot(os.Stdout, "resources")
			default:
				return fmt.Errorf("unknown graph %q (want consumers, tools or union)", which)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&which, "graph", "union",
		"Which graph to emit: consumers, tools or union")

	return cmd
}

func setupLogging(level string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	return nil
}

func setupConfig() (*config.Config, error) {
	path := configFile
	required := path != ""
	if path == "" {
		path = config.DefaultPath()
	}

	cfg, err := config.Load(path, required)
	if err != nil {
		return nil, err
	}

	// Flags override the file
	if stateFile != "" {
		cfg.StateManifest = stateFile
	}
	if targetFile != "" {
		cfg.TargetManifest = targetFile
	}
	if len(changed) > 0 {
		cfg.Changed = changed
	}

	if cfg.StateManifest == "" {
		return nil, fmt.Errorf("no state manifest given (--state or config file)")
	}
	if cfg.TargetManifest == "" {
		return nil, fmt.Errorf("no target manifest given (--target or config file)")
	}

	return cfg, nil
}

func setupPlanner(ctx context.Context, cfg *config.Config) (*plan.Planner, resource.Collection, resource.Collection, error) {
	state, err := loadManifest(ctx, cfg.StateManifest)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading state manifest: %w", err)
	}

	target, err := loadManifest(ctx, cfg.TargetManifest)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading target manifest: %w", err)
	}

	log.Debug().
		Int("state", len(state)).
		Int("target", len(target)).
		Int("changed", len(cfg.Changed)).
		Msg("Manifests loaded")

	return plan.NewPlanner(state, target, cfg.Changed), state, target, nil
}

func loadManifest(ctx context.Context, path string) (resource.Collection, error) {
	var loader manifest.Loader

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		loader = &manifestyaml.Loader{}
	case ".star":
		loader = &manifeststarlark.Loader{}
	default:
		return nil, fmt.Errorf("unsupported manifest file extension: %s", path)
	}

	return loader.Load(ctx, path)
}

func prettifyError(err error) string {
	// Traverse wrapped errors and build a list
	type unwrapper interface {
		Unwrap() error
	}

	var parts []string
	current := err
	for current != nil {
		parts = append(parts, current.Error())

		if u, ok := current.(unwrapper); ok {
			current = u.Unwrap()
		} else {
			break
		}
	}

	// Return the top-level message + root cause
	if len(parts) == 1 {
		return parts[0]
	}

	return fmt.Sprintf("%s\n- %s", parts[0], parts[len(parts)-1])
}
