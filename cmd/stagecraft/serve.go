package main

import (
	"github.com/spf13/cobra"

	"github.com/hazyhaar/stagecraft/output/tools"
	"github.com/hazyhaar/stagecraft/preview"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Preview a stagecraft export in the browser",
	Long: `Serve renders the handout of the record on every request, so a new
export shows up on reload. Screenshots referenced by the record are served
under /shots/.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default "+preview.DefaultAddr+")")
	serveCmd.Flags().StringP("filename", "f", "", "record file (default stagecraft.json)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, map[string]string{
		"addr":     "serve.addr",
		"filename": "store.path",
	})
	if err != nil {
		return err
	}
	svc := tools.New(cfg.ToolsConfig(logger))
	return preview.New(svc, cfg.PreviewConfig(logger)).ListenAndServe(cmd.Context())
}
