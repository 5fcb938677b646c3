package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"jobalert/internal/config"
	"jobalert/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const app = "jobalert"

type streams struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

// exitError carries a process exit code. msg, when set, is printed to
// stderr as is.
type exitError struct {
	code int
	msg  string
	err  error
}

func (e *exitError) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	return e.msg
}

func (e *exitError) Unwrap() error { return e.err }

func exitf(code int, format string, args ...any) error {
	return &exitError{code: code, msg: fmt.Sprintf(format, args...)}
}

func newRootCmd(s streams) *cobra.Command {
	root := &cobra.Command{
		Use:           app,
		Short:         "jobalert polls ATS job boards and mails a report of matching openings",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("config", "", "a YAML config file (environment and .env take precedence)")
	root.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	root.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	root.SetIn(s.in)
	root.SetOut(s.out)
	root.SetErr(s.err)

	root.AddCommand(newRunCmd(s), newInitCmd(s), newSecretsCmd(s))
	return root
}

func execute(args []string, s streams) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(s)
	root.SetArgs(args)
	return exitCode(root.ExecuteContext(ctx), s.err)
}

func exitCode(err error, stderr io.Writer) int {
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		if ee.msg != "" {
			fmt.Fprintln(stderr, ee.msg)
		} else if ee.err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", ee.err)
		}
		return ee.code
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return 1
}

func newLogger(cmd *cobra.Command) (*zap.Logger, error) {
	debug, _ := cmd.Flags().GetBool("debug")
	json, _ := cmd.Flags().GetBool("json")
	return logger.New(json, debug)
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	file, _ := cmd.Flags().GetString("config")
	return config.Load(config.LoadOptions{File: file, Flags: cmd.Flags()})
}
