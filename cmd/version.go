// cmd/version.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  "Print the version number of soundmatch",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("soundmatch v0.1.0")
		fmt.Println("Music identification and enrichment tool")
		fmt.Println("Finds similar royalty-free tracks for an identified song")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
