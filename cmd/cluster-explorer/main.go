// Command cluster-explorer serves a dashboard for exploring a clustered song
// dataset and prints text summaries of its clusters.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/justestif/go-music-cluster-explorer/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app carries the settings shared by every subcommand.
type app struct {
	v          *viper.Viper
	configFile string
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	cmd := &cobra.Command{
		Use:           "cluster-explorer",
		Short:         "Explore clusters of songs by audio features",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "path to a YAML config file")
	flags.String("data", config.DefaultDataPath, "path to the clustered song CSV")
	flags.String("log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	bindFlag(a.v, config.KeyData, flags.Lookup("data"))
	bindFlag(a.v, config.KeyLogLevel, flags.Lookup("log-level"))

	cmd.AddCommand(newServeCmd(a), newSummaryCmd(a))
	return cmd
}

// load resolves the merged settings once flags have been parsed.
func (a *app) load() (*config.Config, error) {
	cfg, err := config.Load(a.v, a.configFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}
