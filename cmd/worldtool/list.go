// List command for the worldtool CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// listFilters holds repeated --filter key=value pairs.
var listFilters []string

var listCmd = &cobra.Command{
	Use:   "list <type>",
	Short: "List records of one type in the active world",
	Long: `List records of one type in the active world.

Examples:
  worldtool list character
  worldtool list location --filter name=Rivermoot
  worldtool list event --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		recordType := args[0]
		checkType(recordType)

		filters, err := parseFieldArgs(listFilters)
		if err != nil {
			fmt.Fprintln(os.Stderr, "list:", err)
			os.Exit(exitUserError)
		}

		tk := newToolkit()
		records, err := tk.client.List(cmd.Context(), recordType, filters)
		if err != nil {
			fail("list", err)
		}

		store, storeErr := openStore()
		if storeErr == nil {
			defer store.Close()
			for _, r := range records {
				cacheLocally(store, recordType, r)
			}
		}

		if flagJSON {
			printJSON(records)
			return nil
		}

		for _, r := range records {
			fmt.Printf("%s  %s\n", r.ID(), r.Name())
		}
		fmt.Printf("%d %s record(s)\n", len(records), recordType)
		return nil
	},
}

func init() {
	listCmd.Flags().StringArrayVar(&listFilters, "filter", nil, "filter as field=value (repeatable)")
}
