package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mml/internal/diag"
	"mml/internal/driver"
	"mml/internal/interp"
	"mml/internal/source"
)

var runCmd = &cobra.Command{
	Use:   "run <module" + driver.ASTSuffix + ">",
	Short: "Compile one module and evaluate its entry point",
	Long:  `run feeds the resolved module to the reference interpreter and prints the entry point's value.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		entry, _ := cmd.Flags().GetString("entry")
		if entry == "" {
			if manifest, ok, err := loadProjectManifest("."); err == nil && ok {
				entry = manifest.entryPoint()
			} else {
				entry = "main"
			}
		}
		maxDiags, _ := cmd.Flags().GetInt("max-diagnostics")

		fileSet := source.NewFileSet()
		raw, fileID, err := driver.LoadModule(fileSet, args[0])
		if err != nil {
			return err
		}
		res := driver.CompileModule(raw, driver.Options{MaxDiagnostics: maxDiags})
		res.FileID = fileID

		if res.Module == nil {
			renderer := &diag.Renderer{Files: fileSet, Color: colorEnabled(cmd)}
			renderer.RenderAll(os.Stderr, res.Bag)
			return fmt.Errorf("module has errors; nothing to run")
		}

		value, err := interp.Interpret(res.Module, entry)
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, value)
		return nil
	},
}

func init() {
	runCmd.Flags().String("entry", "", "entry point name (default from mml.toml, else \"main\")")
}
