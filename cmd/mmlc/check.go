package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mml/internal/diag"
	"mml/internal/driver"
)

var checkCmd = &cobra.Command{
	Use:   "check [path]",
	Short: "Run the semantic pipeline and report diagnostics",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}

		maxDiags, _ := cmd.Flags().GetInt("max-diagnostics")
		jobs, _ := cmd.Flags().GetInt("jobs")

		fileSet, results, err := driver.CompileDir(cmd.Context(), dir, driver.Options{
			MaxDiagnostics: maxDiags,
			Jobs:           jobs,
		})
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Fprintf(os.Stderr, "no %s files under %s\n", driver.ASTSuffix, dir)
			return nil
		}

		renderer := &diag.Renderer{Files: fileSet, Color: colorEnabled(cmd)}
		merged := driver.MergeDiagnostics(results)
		renderer.RenderAll(os.Stderr, merged)

		failed := 0
		for _, res := range results {
			if res.Module == nil {
				failed++
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d modules failed", failed, len(results))
		}
		fmt.Fprintf(os.Stderr, "checked %d modules, no errors\n", len(results))
		return nil
	},
}
