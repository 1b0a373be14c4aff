// Link command for the worldtool CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/OnlyWorlds/worldtool/internal/guard"
	"github.com/OnlyWorlds/worldtool/pkg/record"
)

// linkForce accepts cross-world links without the interactive check.
var linkForce bool

var linkCmd = &cobra.Command{
	Use:   "link <type> <id> <field> <target-type> <target-id>",
	Short: "Link one record to another through a reference field",
	Long: `Link one record to another through a reference field.

The target is fetched and the worlds of both records are compared.
Records without any world context cannot be linked; a cross-world link
needs --force.

Single-reference fields are overwritten; list-reference fields gain the
target id if it is not already present.

Examples:
  worldtool link character <id> birthplace location <location-id>
  worldtool link character <id> friends character <other-id> --force`,
	Args: cobra.ExactArgs(5),
	RunE: func(cmd *cobra.Command, args []string) error {
		recordType, id, field, targetType, targetID := args[0], args[1], args[2], args[3], args[4]
		checkType(recordType)
		checkType(targetType)
		for _, rid := range []string{id, targetID} {
			if !record.IsRecordID(rid) {
				fmt.Fprintf(os.Stderr, "link: %q: %s\n", rid, record.ErrInvalidID)
				os.Exit(exitUserError)
			}
		}

		tk := newToolkit()
		source, err := tk.client.Get(cmd.Context(), recordType, id)
		if err != nil {
			fail("link", err)
		}
		target, err := tk.client.Get(cmd.Context(), targetType, targetID)
		if err != nil {
			fail("link", err)
		}

		g := guard.New(tk.client)
		ok := g.ValidateLink(cmd.Context(), source, target, func(sourceWorld, targetWorld string) bool {
			if linkForce {
				return true
			}
			fmt.Fprintf(os.Stderr, "link: target lives in world %s, source in %s (use --force to link anyway)\n", targetWorld, sourceWorld)
			return false
		})
		if !ok {
			os.Exit(exitUserError)
		}

		// Decide single vs list from the field's schema, falling back
		// to what the record currently holds.
		fs := tk.engine.Infer(field, source[field])
		updated := source.Clone()
		switch fs.Kind {
		case record.MultiRef:
			ids := record.RefIDs(source[field])
			merged := make([]any, 0, len(ids)+1)
			for _, existing := range ids {
				if existing == targetID {
					fmt.Printf("%s already linked via %s\n", targetID, field)
					return nil
				}
				merged = append(merged, existing)
			}
			updated[field] = append(merged, targetID)
		default:
			updated[field] = targetID
		}

		patch := tk.codec.ToWire(updated, field)
		saved, err := tk.client.Update(cmd.Context(), recordType, id, patch)
		if err != nil {
			fail("link", err)
		}

		store, storeErr := openStore()
		if storeErr == nil {
			defer store.Close()
			cacheLocally(store, recordType, saved)
		}

		if flagJSON {
			printJSON(saved)
			return nil
		}
		fmt.Printf("Linked %s -> %s via %s\n", id, targetID, field)
		return nil
	},
}

func init() {
	linkCmd.Flags().BoolVar(&linkForce, "force", false, "allow links across worlds")
}
