package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sakif/password-analyzer/internal/config"
)

// cli holds the global flags and, once a command runs, the wired
// application.
type cli struct {
	dataDir  string
	logLevel string
	envFile  string

	app   *App
	stdin *bufio.Reader
}

// NewRootCmd creates the root command for the password-analyzer CLI.
func NewRootCmd() *cobra.Command {
	cmd, _ := newRootCmd()
	return cmd
}

// run executes one command line and releases the application afterwards,
// whether or not the command failed.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cmd, c := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if cerr := c.close(); err == nil {
		err = cerr
	}
	return err
}

func newRootCmd() (*cobra.Command, *cli) {
	c := &cli{}

	cmd := &cobra.Command{
		Use:   "password-analyzer",
		Short: "Password Analyzer - check, score and (pretend to) crack passwords",
		Long: `Password Analyzer scores passwords with three strategies, simulates
dictionary and brute force attacks against them, and keeps a small local
account with a profile, settings and a simulated secure chat.

Nothing is really cracked and nothing leaves this machine unless a mail,
Redis or object storage server is configured.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.open(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&c.dataDir, "data-dir", "", "data directory (default $XDG_DATA_HOME/password-analyzer)")
	cmd.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "log level: debug, info, warn or error")
	cmd.PersistentFlags().StringVar(&c.envFile, "env-file", "", "load environment variables from this file")

	cmd.AddCommand(c.newAuthCmd())
	cmd.AddCommand(c.newProfileCmd())
	cmd.AddCommand(c.newSettingsCmd())
	cmd.AddCommand(c.newAnalyzeCmd())
	cmd.AddCommand(c.newChatCmd())
	cmd.AddCommand(c.newAdminCmd())

	return cmd, c
}

// open loads the configuration, applies the global flags and wires the
// application.
func (c *cli) open(cmd *cobra.Command) error {
	cfg, err := config.Load(c.envFile)
	if err != nil {
		return err
	}
	if c.dataDir != "" {
		cfg.DataDir = c.dataDir
	}
	if c.logLevel != "" {
		level, err := config.ParseLevel(c.logLevel)
		if err != nil {
			return err
		}
		cfg.LogLevel = level
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.LogLevel}))

	app, err := NewApp(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	c.app = app
	c.stdin = bufio.NewReader(cmd.InOrStdin())
	return nil
}

func (c *cli) close() error {
	if c.app == nil {
		return nil
	}
	err := c.app.Close()
	c.app = nil
	return err
}

// readLine reads one line from stdin, without the line ending. Prompts go
// to stderr so stdout stays clean for --json.
func (c *cli) readLine(cmd *cobra.Command, prompt string) (string, error) {
	if prompt != "" {
		fmt.Fprint(cmd.ErrOrStderr(), prompt)
	}
	line, err := c.stdin.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", fmt.Errorf("reading %s: no input", strings.TrimSuffix(strings.TrimSpace(prompt), ":"))
		}
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// passwordArg returns args[0] when given, otherwise a line from stdin.
func (c *cli) passwordArg(cmd *cobra.Command, args []string, prompt string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	return c.readLine(cmd, prompt)
}
