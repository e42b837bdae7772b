package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/segmentio/ksuid"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/calctools/tipyconv/pkg/archive"
	"github.com/calctools/tipyconv/pkg/convert"
	"github.com/calctools/tipyconv/pkg/tipy"
)

var (
	archiveDir      string
	archiveGetOut   string
	archiveGetForce bool
)

// archiveCmd represents the archive command
var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Manage the local archive of packed programs",
	Long: `Manage a local archive of packed programs, similar to the archived
variables area on the calculator itself. Programs are stored packed and
checksum-verified on every read.`,
}

var archiveAddCmd = &cobra.Command{
	Use:   "add <file>",
	Short: "Add a source file or container to the archive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, err := loadRecord(args[0])
		if err != nil {
			return err
		}

		a, err := openArchive()
		if err != nil {
			return err
		}
		defer a.Close()

		id, err := a.Add(rec)
		if err != nil {
			return err
		}

		fmt.Printf("archived %s as %s\n", rec.VarNameString(), id)
		return nil
	},
}

var archiveGetCmd = &cobra.Command{
	Use:   "get <id-or-name>",
	Short: "Write an archived program back out as a source file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openArchive()
		if err != nil {
			return err
		}
		defer a.Close()

		rec, err := lookupRecord(a, args[0])
		if err != nil {
			return err
		}

		out := archiveGetOut
		if out == "" {
			if name := convert.SafeFilename(rec.LongFilename); name != "" {
				out = name
			} else {
				out = strings.ToLower(rec.VarNameString()) + ".py"
			}
		}
		if err := writeSourceFile(out, rec.Source, archiveGetForce || cfg.Overwrite); err != nil {
			return err
		}

		fmt.Printf("wrote %s\n", out)
		return nil
	},
}

var archiveListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived programs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openArchive()
		if err != nil {
			return err
		}
		defer a.Close()

		entries, err := a.List()
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("archive is empty")
			return nil
		}

		for _, e := range entries {
			line := fmt.Sprintf("%s  %-8s  %6d bytes", e.ID, e.VarName, e.SourceSize)
			if e.LongFilename != "" {
				line += "  " + e.LongFilename
			}
			fmt.Println(line)
		}
		return nil
	},
}

var archiveRemoveCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Remove an archived program",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := ksuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid archive id %q: %w", args[0], err)
		}

		a, err := openArchive()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Remove(&id); err != nil {
			return err
		}

		fmt.Printf("removed %s\n", id)
		return nil
	},
}

func openArchive() (*archive.Archive, error) {
	dir := archiveDir
	if dir == "" {
		dir = cfg.ArchiveDir
	}
	return archive.Open(dir)
}

// loadRecord builds a record from either a source file or an existing
// container, sniffed the same way the converter does.
func loadRecord(path string) (*tipy.Record, error) {
	conv := convert.New(afero.NewOsFs())
	format, err := conv.Sniff(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if format == convert.FormatContainer {
		return tipy.NewCodec().Decode(data)
	}
	return tipy.NewRecord(data, convert.VarNameFromPath(path)), nil
}

// writeSourceFile writes extracted source with the same overwrite rule
// pack and unpack apply.
func writeSourceFile(path string, data []byte, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists, not overwriting", path)
		} else if !os.IsNotExist(err) {
			return err
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write source file: %w", err)
	}
	return nil
}

func lookupRecord(a *archive.Archive, key string) (*tipy.Record, error) {
	if id, err := ksuid.Parse(key); err == nil {
		return a.Get(&id)
	}
	return a.GetByName(key)
}

func init() {
	rootCmd.AddCommand(archiveCmd)
	archiveCmd.AddCommand(archiveAddCmd)
	archiveCmd.AddCommand(archiveGetCmd)
	archiveCmd.AddCommand(archiveListCmd)
	archiveCmd.AddCommand(archiveRemoveCmd)

	archiveCmd.PersistentFlags().StringVarP(&archiveDir, "archive-dir", "d", "", "archive directory (default from config)")
	archiveGetCmd.Flags().StringVarP(&archiveGetOut, "output", "o", "", "output path (default: embedded filename or derived)")
	archiveGetCmd.Flags().BoolVarP(&archiveGetForce, "force", "f", false, "overwrite an existing output file")
}
