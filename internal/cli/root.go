package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/evewatch/evewatch/internal/config"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "evewatch",
	Short: "Suricata alert history engine",
	Long: `evewatch tails a Suricata EVE JSON log into a durable, deduplicated,
size-bounded alert history and serves it to dashboards over HTTP.`,
	Version: "0.1.0",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml or /etc/evewatch/config.yaml)")
}

func initConfig() {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not load config: %v\n", err)
		os.Exit(1)
	}
}
