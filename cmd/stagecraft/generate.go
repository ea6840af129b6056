package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hazyhaar/stagecraft/output/tools"
)

func newGenerateCmd(format, what, argName string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate-" + format + " [" + argName + "]",
		Short: "Generate " + what + " from a stagecraft export",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, format, args)
		},
	}
	cmd.Flags().StringP("filename", "f", "", "record file (default stagecraft.json)")
	cmd.Flags().String("run-id", "", "run to read (sqlite records only, default latest)")
	cmd.Flags().String("title", "", "document title")
	return cmd
}

func init() {
	rootCmd.AddCommand(
		newGenerateCmd("pdf", "a PDF", "pdf-filename"),
		newGenerateCmd("pptx", "a PPTX presentation", "pptx-filename"),
		newGenerateCmd("handout", "an HTML handout", "html-filename"),
	)
}

func runGenerate(cmd *cobra.Command, format string, args []string) error {
	cfg, err := loadConfig(cmd, map[string]string{
		"filename": "store.path",
		"run-id":   "store.run_id",
		"title":    "output.title",
	})
	if err != nil {
		return err
	}

	req := tools.GenerateRequest{Format: format, Record: cfg.Store.Path}
	if len(args) == 1 {
		req.Output = args[0]
	}

	res, err := tools.New(cfg.ToolsConfig(logger)).Generate(cmd.Context(), req)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d pages written to %s\n", res.Format, res.Pages, res.Output)
	return nil
}
