package cli

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	mcpadapter "github.com/briamv/qacli/internal/adapters/inbound/mcp"
)

func newMCPCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "MCP server commands",
		Long:  "Commands for running the qa MCP (Model Context Protocol) server.",
	}
	cmd.AddCommand(newMCPServeCmd(opts))
	return cmd
}

func newMCPServeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the qa MCP server (stdio)",
		Long: "Start the qa MCP server using stdio transport. Coding assistants can inspect the plan,\n" +
			"check the environment and run the quality gate for the project given by --path.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logOut := cmd.ErrOrStderr()
			factory := func(projectPath string) (mcpadapter.Gate, error) {
				o := *opts
				o.path = projectPath
				a, err := o.build(logOut)
				if err != nil {
					return nil, err
				}
				return a.run, nil
			}
			s := mcpadapter.NewQAMCPServer(opts.path, factory)
			return server.ServeStdio(s)
		},
	}
}
