package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hazyhaar/stagecraft/capture"
	"github.com/hazyhaar/stagecraft/notes"
	"github.com/hazyhaar/stagecraft/reveal"
	"github.com/hazyhaar/stagecraft/store"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Create a stagecraft export",
	Long: `Export opens the presentation in Chrome, screenshots the first slide,
then advances fragment by fragment until the last slide. After every step
the record is written to --filename, so an interrupted export keeps what it
captured so far.

A --filename ending in .db or .sqlite keeps every checkpoint of every run.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().String("url", "", "presentation URL (default "+reveal.DefaultURL+")")
	exportCmd.Flags().StringP("filename", "f", "", "record file (default stagecraft.json)")
	exportCmd.Flags().String("out-dir", "", "directory for screenshots (default current directory)")
	exportCmd.Flags().Bool("include-final", false, "also record the last slide's notes and links")
	exportCmd.Flags().String("run-id", "", "run id to append to (sqlite records only)")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, map[string]string{
		"url":           "browser.url",
		"filename":      "store.path",
		"out-dir":       "capture.out_dir",
		"include-final": "capture.include_final",
		"run-id":        "store.run_id",
	})
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	st, err := store.Open(cfg.Store.Path, cfg.StoreOptions(logger))
	if err != nil {
		return err
	}
	defer st.Close()

	sess, err := reveal.Open(ctx, cfg.RevealConfig(logger))
	if err != nil {
		return err
	}
	defer sess.Close()

	conv := notes.New(cfg.NotesConfig(logger))
	ctrl := capture.New(sess.Surface, cfg.CaptureConfig(conv.Func(), logger))

	sum, err := ctrl.Walk(ctx, st)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	// A deck too short to close any unit still gets a record file.
	if sum.Units == 0 {
		if err := st.Persist(ctx, ctrl.Record()); err != nil {
			return fmt.Errorf("export: %w", err)
		}
	}

	if s, ok := st.(*store.SQLiteStore); ok {
		fmt.Fprintf(cmd.OutOrStdout(), "run %s\n", s.RunID())
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d screenshots, %d units (%d slides, %d fragments) written to %s\n",
		sum.Screenshots, sum.Units, sum.Positions, sum.Fragments, cfg.Store.Path)
	return nil
}
