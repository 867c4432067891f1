package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/briamv/qacli/internal/adapters/outbound/jsonreport"
	"github.com/briamv/qacli/internal/adapters/outbound/tui"
	"github.com/briamv/qacli/internal/application"
)

func newDoctorCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check which tools the selected plan needs and whether they are usable",
		Long: "Probe every tool the plan selected by --mode, --scope, --dimension and --fast would run,\n" +
			"and report versions, detection methods and missing environment variables.\n" +
			"Exits non-zero when a critical tool is unavailable.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := opts.validateFormat(); err != nil {
				return err
			}
			a, err := opts.build(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			p, env, err := a.run.Doctor(cmd.Context(), opts.runArgs(a.projectPath))
			if err != nil {
				return err
			}

			if opts.format == formatJSON {
				if err := jsonreport.Write(cmd.OutOrStdout(), env); err != nil {
					return err
				}
			} else {
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderEnvironment(env, a.cfg))
			}
			return application.RequireCritical(p, env, a.cfg)
		},
	}
}
