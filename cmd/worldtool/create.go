// Create command for the worldtool CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/OnlyWorlds/worldtool/pkg/record"
)

var (
	createName   string
	createFields []string
)

var createCmd = &cobra.Command{
	Use:   "create <type>",
	Short: "Create a new record in the active world",
	Long: `Create a new record in the active world.

The record gets a generated id and the active world id. Extra fields
are coerced to their schema kinds before the save.

Examples:
  worldtool create character --name Eryndor
  worldtool create location --name Rivermoot --field description="A ford town"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		recordType := args[0]
		checkType(recordType)

		fields, err := parseFieldArgs(createFields)
		if err != nil {
			fmt.Fprintln(os.Stderr, "create:", err)
			os.Exit(exitUserError)
		}

		tk := newToolkit()

		worldID, err := tk.client.CurrentWorldID(cmd.Context())
		if err != nil {
			fail("create", err)
		}

		r := record.New(createName, worldID)
		for name, value := range fields {
			r[name] = value
		}

		created, err := tk.client.Create(cmd.Context(), recordType, r)
		if err != nil {
			fail("create", err)
		}

		store, storeErr := openStore()
		if storeErr == nil {
			defer store.Close()
			cacheLocally(store, recordType, created)
		}

		if flagJSON {
			printJSON(created)
			return nil
		}
		fmt.Printf("Created %s: %s\n", recordType, created.ID())
		return nil
	},
}

func init() {
	createCmd.Flags().StringVar(&createName, "name", "", "record name (required)")
	createCmd.Flags().StringArrayVar(&createFields, "field", nil, "extra field as field=value (repeatable)")

	createCmd.MarkFlagRequired("name")
}
