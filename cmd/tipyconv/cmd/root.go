package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/calctools/tipyconv/pkg/config"
)

var (
	cfgFile string
	verbose bool
	cfg     *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tipyconv",
	Short: "Convert TI calculator Python files to and from source files",
	Long: `tipyconv converts Python programs between plain source files and the
binary variable containers a TI graphing calculator stores them in.

Pack a source file to send it to the calculator, unpack a container to
get the source back, or dump a container to inspect its fields.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			path = config.GetDefaultConfigPath()
		}
		switch {
		case config.ConfigExists(path):
			loaded, err := config.LoadConfig(path)
			if err != nil {
				return err
			}
			cfg = loaded
		case cfgFile != "":
			return fmt.Errorf("config file does not exist: %s", cfgFile)
		default:
			cfg = config.DefaultConfig()
		}

		if level, err := log.ParseLevel(cfg.Logging.Level); err == nil {
			log.SetLevel(level)
		}
		if verbose {
			log.SetLevel(log.DebugLevel)
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.config/tipyconv/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// pathFromArgs returns the positional path argument, prompting on stdin
// when none was given.
func pathFromArgs(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}

	fmt.Print("enter file path: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read file path: %w", err)
	}
	path := strings.TrimSpace(line)
	if path == "" {
		return "", errors.New("no file path given")
	}
	return path, nil
}
