package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/hazyhaar/stagecraft/output/tools"
	"github.com/hazyhaar/stagecraft/store"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print what a stagecraft record holds",
	Args:  cobra.NoArgs,
	RunE:  runSummary,
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List the export runs kept in an sqlite record",
	Args:  cobra.NoArgs,
	RunE:  runRuns,
}

func init() {
	summaryCmd.Flags().StringP("filename", "f", "", "record file (default stagecraft.json)")
	summaryCmd.Flags().String("run-id", "", "run to read (sqlite records only, default latest)")
	runsCmd.Flags().StringP("filename", "f", "", "sqlite record file")

	rootCmd.AddCommand(summaryCmd, runsCmd)
}

func runSummary(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, map[string]string{
		"filename": "store.path",
		"run-id":   "store.run_id",
	})
	if err != nil {
		return err
	}

	sum, err := tools.New(cfg.ToolsConfig(logger)).Summarize(cmd.Context(), cfg.Store.Path)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(sum)
}

func runRuns(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, map[string]string{"filename": "store.path"})
	if err != nil {
		return err
	}
	if store.FormatOf(cfg.Store.Path) != store.FormatSQLite {
		return fmt.Errorf("runs: %s is not an sqlite record", cfg.Store.Path)
	}

	st, err := store.OpenSQLite(cfg.Store.Path, cfg.StoreOptions(logger))
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.Runs(cmd.Context())
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tCHECKPOINTS\tUNITS\tUPDATED")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", r.ID, r.Checkpoints, r.Units, r.UpdatedAt.Format(time.RFC3339))
	}
	return tw.Flush()
}
