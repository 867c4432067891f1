package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/briamv/qacli/internal/adapters/outbound/jsonreport"
	"github.com/briamv/qacli/internal/adapters/outbound/tui"
	"github.com/briamv/qacli/internal/domain"
	"github.com/briamv/qacli/internal/domain/report"
)

func runGate(cmd *cobra.Command, opts *options) error {
	if err := opts.validateFormat(); err != nil {
		return err
	}
	a, err := opts.build(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	outcome, err := a.run.Run(cmd.Context(), opts.runArgs(a.projectPath))
	if err != nil {
		return err
	}
	rep := outcome.Report

	out := cmd.OutOrStdout()
	if opts.format == formatJSON {
		if err := jsonreport.WriteReport(out, rep); err != nil {
			return err
		}
	} else {
		fmt.Fprint(out, tui.RenderReport(rep, tui.Options{
			Width:          outputWidth(out),
			Verbose:        opts.verbose,
			GroupThreshold: a.cfg.GroupThreshold,
		}))
	}

	if report.ExitCode(rep) != 0 {
		return domain.NewError(domain.ErrCodeGateFailed,
			fmt.Sprintf("quality gate failed: %d of %d tools failed",
				rep.Summary.Failed, rep.Summary.Passed+rep.Summary.Failed))
	}
	return nil
}

func outputWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok {
		return tui.TerminalWidth(f)
	}
	return tui.DefaultWidth
}
