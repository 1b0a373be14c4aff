// Export command for the worldtool CLI.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// exportOut names the output file; empty means stdout.
var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export every record in the active world as JSON",
	Long: `Export every record in the active world as JSON.

All record types are fetched concurrently. Types that fail to load are
exported as empty lists so one bad endpoint does not sink the whole
export.

Examples:
  worldtool export
  worldtool export --out world.json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tk := newToolkit()
		all := tk.client.FetchAll(cmd.Context())

		out, err := json.MarshalIndent(all, "", "  ")
		if err != nil {
			fmt.Fprintln(os.Stderr, "export: marshal JSON:", err)
			os.Exit(exitSysError)
		}

		if exportOut == "" {
			fmt.Println(string(out))
			return nil
		}

		if err := os.WriteFile(exportOut, append(out, '\n'), 0o644); err != nil {
			fmt.Fprintln(os.Stderr, "export:", err)
			os.Exit(exitSysError)
		}

		total := 0
		for _, records := range all {
			total += len(records)
		}
		fmt.Printf("Exported %d record(s) to %s\n", total, exportOut)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file (default: stdout)")
}
