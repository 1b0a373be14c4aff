// Delete command for the worldtool CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/OnlyWorlds/worldtool/pkg/record"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <type> <id>",
	Short: "Delete a record",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		recordType, id := args[0], args[1]
		checkType(recordType)
		if !record.IsRecordID(id) {
			fmt.Fprintf(os.Stderr, "delete: %q: %s\n", id, record.ErrInvalidID)
			os.Exit(exitUserError)
		}

		tk := newToolkit()
		if err := tk.client.Delete(cmd.Context(), recordType, id); err != nil {
			fail("delete", err)
		}

		store, storeErr := openStore()
		if storeErr == nil {
			defer store.Close()
			if err := store.DeleteRecord(recordType, id); err != nil {
				fmt.Fprintln(os.Stderr, "warning: local cache:", err)
			}
		}

		fmt.Printf("Deleted %s: %s\n", recordType, id)
		return nil
	},
}
