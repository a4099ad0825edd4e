package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/evewatch/evewatch/internal/seeder"
)

var (
	seedCount     int
	seedTypes     []string
	seedSpread    time.Duration
	seedMalformed int
	seedSeed      int64
	seedPath      string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Append synthetic EVE events to a log file",
	Long: `Generates realistic Suricata EVE JSON lines (alerts and non-alert
event types) and appends them to a log file, so the engine can be
demoed and load-tested without a running sensor.`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().IntVar(&seedCount, "count", 100, "number of well-formed events to append")
	seedCmd.Flags().StringSliceVar(&seedTypes, "types", []string{"alert", "flow", "dns"}, "event types to cycle through")
	seedCmd.Flags().DurationVar(&seedSpread, "spread", time.Hour, "spread sensor timestamps across this window ending now")
	seedCmd.Flags().IntVar(&seedMalformed, "malformed", 0, "number of garbage lines to interleave")
	seedCmd.Flags().Int64Var(&seedSeed, "seed", 0, "random seed (0 = time-based)")
	seedCmd.Flags().StringVar(&seedPath, "path", "", "target log file (default: engine.eve_path from config)")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	path := seedPath
	if path == "" {
		path = cfg.Engine.EvePath
	}

	written, err := seeder.Run(seeder.NewGenerator(seedSeed), seeder.Options{
		Path:      path,
		Count:     seedCount,
		Types:     seedTypes,
		Spread:    seedSpread,
		Malformed: seedMalformed,
	})
	if err != nil {
		return fmt.Errorf("seed %s: %w", path, err)
	}

	fmt.Printf("Appended %d lines to %s\n", written, path)
	return nil
}
