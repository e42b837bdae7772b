package cmd

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/calctools/tipyconv/pkg/convert"
)

var (
	packOut      string
	packVarName  string
	packInfo     string
	packFilename string
	packForce    bool
)

// packCmd represents the pack command
var packCmd = &cobra.Command{
	Use:   "pack [file.py]",
	Short: "Pack a Python source file into a calculator variable",
	Long: `Pack a Python source file into a calculator variable container.

With no argument the file path is read from standard input. The
on-calculator name is derived from the file name unless --name is given.

Example:
  tipyconv pack game.py
  tipyconv pack game.py -n GAME -o build/GAME.8xv`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := pathFromArgs(args)
		if err != nil {
			return err
		}

		opts := convert.Options{
			VarName:      packVarName,
			Info:         packInfo,
			LongFilename: packFilename,
			Force:        packForce || cfg.Overwrite,
		}
		if opts.VarName == "" {
			opts.VarName = cfg.DefaultVarName
		}
		if opts.Info == "" {
			opts.Info = cfg.Info
		}

		conv := convert.New(afero.NewOsFs())
		out, err := conv.Pack(path, packOut, opts)
		if err != nil {
			return err
		}

		fmt.Printf("wrote %s\n", out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(packCmd)
	packCmd.Flags().StringVarP(&packOut, "output", "o", "", "output path (default: inferred from the input)")
	packCmd.Flags().StringVarP(&packVarName, "name", "n", "", "on-calculator variable name")
	packCmd.Flags().StringVar(&packInfo, "info", "", "free-form info field text")
	packCmd.Flags().StringVar(&packFilename, "filename", "", "long filename to embed (default: none)")
	packCmd.Flags().BoolVarP(&packForce, "force", "f", false, "overwrite an existing output file")
}
