// Get command for the worldtool CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/OnlyWorlds/worldtool/pkg/record"
)

// getOffline reads from the local cache instead of the remote API.
var getOffline bool

var getCmd = &cobra.Command{
	Use:   "get <type> <id>",
	Short: "Fetch one record by type and id",
	Long: `Fetch one record by type and id.

Examples:
  worldtool get character 018f3c8e-2b7a-7c3d-9f4e-1a2b3c4d5e6f
  worldtool get location 018f3c8e-0000-7000-8000-000000000001 --json
  worldtool get character 018f3c8e-2b7a-7c3d-9f4e-1a2b3c4d5e6f --offline`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		recordType, id := args[0], args[1]
		checkType(recordType)
		if !record.IsRecordID(id) {
			fmt.Fprintf(os.Stderr, "get: %q: %s\n", id, record.ErrInvalidID)
			os.Exit(exitUserError)
		}

		store, err := openStore()
		if err != nil {
			fail("get", err)
		}
		defer store.Close()

		if getOffline {
			r, err := store.GetRecord(recordType, id)
			if err != nil {
				if errors.Is(err, record.ErrNotFound) {
					fmt.Fprintf(os.Stderr, "get: %s %s not in local cache\n", recordType, id)
					os.Exit(exitUserError)
				}
				fail("get", err)
			}
			printRecord(r)
			return nil
		}

		tk := newToolkit()
		r, err := tk.client.Get(cmd.Context(), recordType, id)
		if err != nil {
			fail("get", err)
		}

		cacheLocally(store, recordType, r)
		printRecord(r)
		return nil
	},
}

func init() {
	getCmd.Flags().BoolVar(&getOffline, "offline", false, "read from the local cache only")
}
