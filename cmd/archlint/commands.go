package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/archlint/core/internal/compiler"
	"github.com/archlint/core/internal/dfr"
	"github.com/archlint/core/internal/engine"
	"github.com/archlint/core/internal/models"
	"github.com/archlint/core/internal/parser"
)

const compilationErrorName = "CompilationError"

func (c *cli) validateCmd() *cobra.Command {
	var (
		format        string
		engineVersion string
		pretty        bool
	)
	cmd := &cobra.Command{
		Use:   "validate <plan-file>",
		Short: "Validate a plan and print its report",
		Long: `Validate a plan file and print the Deterministic Failure Report as JSON.

Use "-" to read the plan from stdin. Exit status is 0 when the plan passes,
1 when it has violations or cannot be compiled, and 2 on input or internal
errors.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := c.loadPlan(args[0], format)
			if err != nil {
				return err
			}

			var opts []engine.Option
			if engineVersion != "" {
				opts = append(opts, engine.WithVersion(engineVersion))
			}
			eng := engine.New(opts...)

			start := time.Now()
			report, err := eng.Validate(plan)
			var cerr *compiler.Error
			switch {
			case errors.As(err, &cerr):
				c.logger.Debug("plan compilation failed", zap.String("rule_code", string(cerr.Code)))
				if werr := c.writeJSON(models.CompilationFailure{
					Error:         compilationErrorName,
					Code:          string(cerr.Code),
					Detail:        cerr.Msg,
					EngineVersion: eng.Version(),
				}, pretty); werr != nil {
					return werr
				}
				return &exitError{code: ExitFail}
			case err != nil:
				return &exitError{code: ExitError, err: fmt.Errorf("internal error: %w", err)}
			}

			c.logger.Debug("validation complete",
				zap.String("plan_hash", report.PlanHash),
				zap.String("engine_version", report.EngineVersion),
				zap.Int("violations", len(report.Violations)),
				zap.Duration("duration", time.Since(start)))
			if err := c.writeJSON(report, pretty); err != nil {
				return err
			}
			if !report.Passed {
				return &exitError{code: ExitFail}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "plan format: json or yaml (default: from file extension)")
	cmd.Flags().StringVar(&engineVersion, "engine-version", "", "override the engine version stamped on the report")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent JSON output")
	return cmd
}

func (c *cli) hashCmd() *cobra.Command {
	var (
		format    string
		canonical bool
	)
	cmd := &cobra.Command{
		Use:   "hash <plan-file>",
		Short: "Print the plan hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := c.loadPlan(args[0], format)
			if err != nil {
				return err
			}
			text, err := dfr.CanonicalPlan(plan)
			if err != nil {
				return &exitError{code: ExitError, err: err}
			}
			hash, err := dfr.PlanHash(plan)
			if err != nil {
				return &exitError{code: ExitError, err: err}
			}
			fmt.Fprintln(c.stdout, hash)
			if canonical {
				fmt.Fprintln(c.stdout, string(text))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "plan format: json or yaml (default: from file extension)")
	cmd.Flags().BoolVar(&canonical, "canonical", false, "also print the canonical plan text")
	return cmd
}

func (c *cli) rulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List the active rule ids",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, id := range engine.New().Rules() {
				fmt.Fprintln(c.stdout, id)
			}
		},
	}
}

func (c *cli) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the engine version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(c.stdout, "engine %s (ruleset %s)\n", engine.New().Version(), engine.RulesetRevision)
		},
	}
}

// loadPlan reads, decodes and schema-checks a plan. "-" reads stdin.
func (c *cli) loadPlan(path, format string) (*models.Plan, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(c.stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &exitError{code: ExitError, err: fmt.Errorf("file not found: %s", path)}
		}
		return nil, &exitError{code: ExitError, err: err}
	}

	f := parser.FormatFromPath(path)
	if format != "" {
		if f, err = parser.ParseFormat(format); err != nil {
			return nil, &exitError{code: ExitError, err: err}
		}
	}

	plan, err := parser.Load(data, f)
	if err != nil {
		return nil, &exitError{code: ExitError, err: fmt.Errorf("invalid plan: %w", err)}
	}
	c.logger.Debug("plan loaded", zap.String("path", path), zap.String("format", string(f)))
	return plan, nil
}

func (c *cli) writeJSON(v any, pretty bool) error {
	enc := json.NewEncoder(c.stdout)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return &exitError{code: ExitError, err: fmt.Errorf("write output: %w", err)}
	}
	return nil
}
