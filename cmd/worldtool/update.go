// Update command for the worldtool CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/OnlyWorlds/worldtool/internal/autosave"
	"github.com/OnlyWorlds/worldtool/pkg/record"
)

var updateCmd = &cobra.Command{
	Use:   "update <type> <id> <field=value>...",
	Short: "Update fields on an existing record",
	Long: `Update fields on an existing record.

Values are coerced to the field's inferred kind: bools accept yes/no
spellings, list and multi-reference fields split on commas (reference
entries must be record ids), object fields parse as JSON.

Examples:
  worldtool update character 018f3c8e-2b7a-7c3d-9f4e-1a2b3c4d5e6f age=41
  worldtool update location 018f3c8e-0000-7000-8000-000000000001 tags=river,trade`,
	Args: cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		recordType, id := args[0], args[1]
		checkType(recordType)
		if !record.IsRecordID(id) {
			fmt.Fprintf(os.Stderr, "update: %q: %s\n", id, record.ErrInvalidID)
			os.Exit(exitUserError)
		}

		fields, err := parseFieldArgs(args[2:])
		if err != nil {
			fmt.Fprintln(os.Stderr, "update:", err)
			os.Exit(exitUserError)
		}

		tk := newToolkit()
		r, err := tk.client.Get(cmd.Context(), recordType, id)
		if err != nil {
			fail("update", err)
		}

		// Route the edit through a session so values pass the same
		// coercion and merge path interactive editing uses.
		session := autosave.NewSession(tk.client, tk.engine, tk.codec, recordType, r)
		defer session.Teardown()

		for name, value := range fields {
			session.Edit(name, value)
		}
		if err := session.SaveNow(cmd.Context()); err != nil {
			fail("update", err)
		}

		saved := session.Record()
		store, storeErr := openStore()
		if storeErr == nil {
			defer store.Close()
			cacheLocally(store, recordType, saved)
		}

		if flagJSON {
			printJSON(saved)
			return nil
		}
		fmt.Printf("Updated %s: %s\n", recordType, id)
		return nil
	},
}
