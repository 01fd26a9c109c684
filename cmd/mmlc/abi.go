package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"mml/internal/abi"
)

var abiCmd = &cobra.Command{
	Use:   "abi",
	Short: "Show how native struct types lower under a target's calling convention",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		manifest, ok, err := loadProjectManifest(".")
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%s", noManifestMessage)
		}
		layouts, err := manifest.structLayouts()
		if err != nil {
			return err
		}

		target, _ := cmd.Flags().GetString("target")
		if target == "" {
			target = manifest.target()
		}
		strategy, err := abi.NewStrategy(target, layouts)
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stdout, "target %s (ptr %d bytes)\n", strategy.Target.Triple, strategy.Target.PtrSize)
		for _, name := range layouts.Names() {
			fields, _ := layouts.Fields(name)
			size, _ := layouts.SizeOf(name, strategy.Target)
			agg := abi.AggregateType(name)
			params := strategy.LowerParamTypes([]abi.Type{agg})
			rule := strategy.RuleNameFor(name)
			if rule == "" {
				rule = "opaque"
			}
			fmt.Fprintf(os.Stdout, "%-12s {%s} %3d bytes  rule=%-13s params=(%s)  sret=%t\n",
				name, joinFields(fields), size, rule, joinTypes(params), strategy.NeedsSret(agg))
		}
		return nil
	},
}

func init() {
	abiCmd.Flags().String("target", "", "target architecture (default from mml.toml)")
}

func joinFields(fields []abi.FieldKind) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f.String()
	}
	return strings.Join(parts, ", ")
}

func joinTypes(ts []abi.Type) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}
