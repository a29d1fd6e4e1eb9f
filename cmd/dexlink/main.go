package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/dhamidi/dexlink/config"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	verbosity int
	logFile   string
	configDir string

	cfg *config.Config
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:          "dexlink",
		Short:        "Assemble the invokedynamic constant sections of a dex file from class files",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	rootCmd.PersistentFlags().CountVarP(&opts.verbosity, "verbose", "v", "increase log verbosity (repeatable)")
	rootCmd.PersistentFlags().StringVar(&opts.logFile, "log", "", "write logs to this file instead of stderr")
	rootCmd.PersistentFlags().StringVarP(&opts.configDir, "config", "C", ".", "directory to search upwards for "+config.FileName)

	rootCmd.AddCommand(newBuildCmd(opts))
	rootCmd.AddCommand(newDumpCmd(opts))
	rootCmd.AddCommand(newLayoutCmd(opts))

	return rootCmd
}

// load reads the configuration and sets up logging. Flags given on the
// command line win over the file.
func (o *globalOptions) load(cmd *cobra.Command) error {
	cfg, err := config.FindAndLoad(o.configDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	o.cfg = cfg

	verbosity := cfg.Log.Verbosity
	if cmd.Flags().Changed("verbose") {
		verbosity = o.verbosity
	}
	logFile := cfg.LogFile()
	if o.logFile != "" {
		logFile = &o.logFile
	}
	commonlog.Configure(verbosity, logFile)

	if cfg.Dir != "" {
		commonlog.GetLogger("dexlink").Debugf("using %s in %s", config.FileName, cfg.Dir)
	}
	return nil
}
