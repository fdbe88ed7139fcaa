// Package main is the archlint command line: validate plans, print plan
// hashes and list the active rules without running the HTTP service.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/archlint/core/internal/logging"
)

// Exit codes.
const (
	ExitPass  = 0
	ExitFail  = 1
	ExitError = 2
)

// exitError carries a process exit code out of a command. A nil err means
// the message was already written.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

type cli struct {
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
	verbose bool
	logger  *zap.Logger
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func execute(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	c := &cli{stdin: stdin, stdout: stdout, stderr: stderr, logger: zap.NewNop()}
	root := c.rootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if err == nil {
		return ExitPass
	}
	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintln(stderr, "Error:", ee.err)
		}
		return ee.code
	}
	// Usage errors from cobra itself.
	fmt.Fprintln(stderr, "Error:", err)
	return ExitError
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "archlint",
		Short:         "Deterministic architecture plan validator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !c.verbose {
				return nil
			}
			logger, err := logging.New("debug", "console")
			if err != nil {
				return &exitError{code: ExitError, err: err}
			}
			c.logger = logger
			return nil
		},
	}
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log pipeline steps to stderr")

	root.AddCommand(
		c.validateCmd(),
		c.hashCmd(),
		c.rulesCmd(),
		c.versionCmd(),
	)
	return root
}
