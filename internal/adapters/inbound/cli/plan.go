package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/briamv/qacli/internal/adapters/outbound/jsonreport"
	"github.com/briamv/qacli/internal/adapters/outbound/tui"
)

func newPlanCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Print the execution plan without running anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := opts.validateFormat(); err != nil {
				return err
			}
			a, err := opts.build(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			p, err := a.run.Plan(opts.runArgs(a.projectPath))
			if err != nil {
				return err
			}

			if opts.format == formatJSON {
				return jsonreport.Write(cmd.OutOrStdout(), p)
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderPlan(p))
			return nil
		},
	}
}
