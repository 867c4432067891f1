package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/briamv/qacli/internal/domain"
)

var (
	version = "dev"
	commit  = "none"
)

const (
	formatTree = "tree"
	formatJSON = "json"
)

// options are the flags shared by the gate, doctor and plan commands.
type options struct {
	path       string
	configFile string
	mode       string
	scope      string
	dimension  string
	fast       bool
	verbose    bool
	format     string
	jobs       int
	logFormat  string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "qa",
		Short: "Run the project's quality gate",
		Long: "qa runs formatters, linters, test runners, type checkers and security scanners\n" +
			"across the frontend, backend and infra parts of a repository and reports one verdict.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGate(cmd, opts)
		},
	}

	f := cmd.PersistentFlags()
	f.StringVar(&opts.path, "path", ".", "Project path")
	f.StringVar(&opts.configFile, "config", "", "Config file (default <path>/.qa.yaml)")
	f.StringVar(&opts.mode, "mode", "", "Plan mode: fast, automatic, scope, dod, dimension")
	f.StringVar(&opts.scope, "scope", "", "Scope: frontend, backend, infra, all")
	f.StringVar(&opts.dimension, "dimension", "", "Run a single dimension: format, lint, test, security, build, data")
	f.BoolVar(&opts.fast, "fast", false, "Format and lint changed files only")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "List every violation and log at debug level")
	f.StringVar(&opts.format, "format", formatTree, "Output format: tree or json")
	f.IntVarP(&opts.jobs, "jobs", "j", 0, "Tools run concurrently per dimension (default from config)")
	f.StringVar(&opts.logFormat, "log-format", "text", "Log format on stderr: text or json")

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return domain.NewError(domain.ErrCodeInvalidFlag, err.Error()).
			WithSuggestions("run 'qa --help' for usage")
	})

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newDoctorCmd(opts))
	cmd.AddCommand(newPlanCmd(opts))
	cmd.AddCommand(newToolsCmd(opts))
	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newMCPCmd(opts))
	return cmd
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

// Execute runs the CLI against os.Args. Interrupts cancel the run; tools in
// flight are recorded as failed.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	if err != nil {
		printError(os.Stderr, err)
	}
	return err
}

// ExitCode maps an Execute error onto the process exit status: 0 on
// success, 2 for usage and configuration errors, 1 for everything else.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var qe *domain.Error
	if errors.As(err, &qe) && qe.IsConfig() {
		return 2
	}
	return 1
}

func printError(w io.Writer, err error) {
	fmt.Fprintln(w, "Error:", err)
}
