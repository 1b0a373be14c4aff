// Counts command for the worldtool CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OnlyWorlds/worldtool/pkg/record"
)

var countsCmd = &cobra.Command{
	Use:   "counts",
	Short: "Count records per type in the active world",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tk := newToolkit()
		counts := tk.client.Counts(cmd.Context())

		if flagJSON {
			printJSON(counts)
			return nil
		}

		for _, recordType := range record.Types() {
			n, ok := counts[recordType]
			if !ok {
				continue
			}
			if n < 0 {
				fmt.Printf("%-14s ?\n", recordType)
				continue
			}
			fmt.Printf("%-14s %d\n", recordType, n)
		}
		return nil
	},
}
