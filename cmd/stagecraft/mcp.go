package main

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/hazyhaar/stagecraft/output/tools"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the record tools over MCP on stdio",
	Long: `Mcp exposes stagecraft_record_summary and stagecraft_generate to an MCP
client on stdin/stdout. Logs go to stderr.`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().StringP("filename", "f", "", "default record file (default stagecraft.json)")

	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, map[string]string{"filename": "store.path"})
	if err != nil {
		return err
	}

	srv := mcp.NewServer(&mcp.Implementation{Name: "stagecraft", Version: version}, nil)
	tools.New(cfg.ToolsConfig(logger)).RegisterMCP(srv)

	logger.Info("mcp: serving on stdio", "record", cfg.Store.Path)
	return srv.Run(cmd.Context(), &mcp.StdioTransport{})
}
