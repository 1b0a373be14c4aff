// Repair command for the worldtool CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/OnlyWorlds/worldtool/internal/integrity"
	"github.com/OnlyWorlds/worldtool/pkg/record"
)

var repairCmd = &cobra.Command{
	Use:   "repair <type> <id>",
	Short: "Strip dangling references from a record",
	Long: `Strip dangling references from a record.

Every reference field is probed against the live API. References to
deleted records are removed: single references become null, list
references drop the dead ids. The record is saved only when something
changed.

Examples:
  worldtool repair character 018f3c8e-2b7a-7c3d-9f4e-1a2b3c4d5e6f`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		recordType, id := args[0], args[1]
		checkType(recordType)
		if !record.IsRecordID(id) {
			fmt.Fprintf(os.Stderr, "repair: %q: %s\n", id, record.ErrInvalidID)
			os.Exit(exitUserError)
		}

		tk := newToolkit()
		r, err := tk.client.Get(cmd.Context(), recordType, id)
		if err != nil {
			fail("repair", err)
		}

		checker := integrity.New(tk.client, tk.engine, tk.resolver, tk.codec, tk.client, slog.Default())
		repaired, err := checker.Repair(cmd.Context(), r, recordType)
		if err != nil {
			fail("repair", err)
		}

		store, storeErr := openStore()
		if storeErr == nil {
			defer store.Close()
			cacheLocally(store, recordType, repaired)
		}

		if flagJSON {
			printJSON(repaired)
			return nil
		}
		fmt.Printf("Repaired %s: %s\n", recordType, id)
		return nil
	},
}
