package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/calctools/tipyconv/pkg/dump"
)

// dumpCmd represents the dump command
var dumpCmd = &cobra.Command{
	Use:   "dump <file.8xv>",
	Short: "Print the fields of a calculator variable file",
	Long: `Print every field of a calculator variable container in a readable
form: header bytes, sizes, the variable name, the embedded filename if
any, the source and the checksum. Useful for inspecting files that the
calculator or the converter rejects.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}
		return dump.Fields(os.Stdout, data)
	},
}

func init() {
	rootCmd.AddCommand(dumpCmd)
}
