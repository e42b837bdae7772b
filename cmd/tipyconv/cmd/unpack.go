package cmd

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/calctools/tipyconv/pkg/convert"
)

var (
	unpackOut   string
	unpackForce bool
)

// unpackCmd represents the unpack command
var unpackCmd = &cobra.Command{
	Use:   "unpack [file.8xv]",
	Short: "Unpack a calculator variable back into a source file",
	Long: `Unpack a calculator variable container back into a Python source file.

With no argument the file path is read from standard input. When the
container embeds a long filename it is used for the output; otherwise
the output name is inferred from the input path.

Example:
  tipyconv unpack GAME.8xv`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := pathFromArgs(args)
		if err != nil {
			return err
		}

		conv := convert.New(afero.NewOsFs())
		out, rec, err := conv.Unpack(path, unpackOut, unpackForce || cfg.Overwrite)
		if err != nil {
			return err
		}

		fmt.Printf("wrote %s (%s, %d bytes)\n", out, rec.VarNameString(), len(rec.Source))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(unpackCmd)
	unpackCmd.Flags().StringVarP(&unpackOut, "output", "o", "", "output path (default: embedded filename or inferred)")
	unpackCmd.Flags().BoolVarP(&unpackForce, "force", "f", false, "overwrite an existing output file")
}
