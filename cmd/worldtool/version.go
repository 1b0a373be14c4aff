// Version command for the worldtool CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OnlyWorlds/worldtool/pkg/worldtool"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the worldtool version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("worldtool", worldtool.Version)
	},
}
