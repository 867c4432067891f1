package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/briamv/qacli/internal/adapters/outbound/jsonreport"
	"github.com/briamv/qacli/internal/adapters/outbound/tui"
	"github.com/briamv/qacli/internal/adapters/outbound/wrappers"
	"github.com/briamv/qacli/internal/domain"
)

func newToolsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the tool catalog with dimensions and categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := opts.validateFormat(); err != nil {
				return err
			}
			_, cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			rows := toolRows(cfg)
			if opts.format == formatJSON {
				return jsonreport.Write(cmd.OutOrStdout(), rows)
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderTools(rows))
			return nil
		},
	}
}

func toolRows(cfg domain.ProjectConfig) []tui.ToolRow {
	var rows []tui.ToolRow
	for _, tool := range domain.AllTools() {
		if cfg.IsDisabled(tool) {
			continue
		}
		desc, _ := cfg.Descriptor(tool)
		rows = append(rows, tui.ToolRow{
			Tool:        tool,
			Category:    string(wrappers.CategoryOf(tool)),
			Dimensions:  domain.DimensionsFor(tool),
			Critical:    desc.Critical,
			Description: desc.Description,
		})
	}
	return rows
}
