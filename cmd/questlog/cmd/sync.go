package cmd

import (
	"github.com/spf13/cobra"

	"github.com/questlog/questlog"
	"github.com/questlog/questlog/internal/config"
	"github.com/questlog/questlog/internal/sources/hltb"
	"github.com/questlog/questlog/internal/sources/igdb"
	"github.com/questlog/questlog/internal/store/notion"
	"github.com/questlog/questlog/internal/transport"
	"github.com/questlog/questlog/pkg/constants"
	"github.com/questlog/questlog/pkg/match"
)

var (
	workers      int
	outputFormat string
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile the tracking database against the catalogs",
	Long: `Sync loads every record from the tracking database, looks each game up
in the configured catalogs, and writes back changed fields. Ambiguous
matches are reported with their candidate sets for manual resolution.`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().IntVarP(&workers, "workers", "w", 0, "concurrent record workers (default from config)")
	syncCmd.Flags().StringVarP(&outputFormat, "output", "o", "table", "report format: table, yaml, json")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	if workers > 0 {
		cfg.Workers = workers
	}

	store, err := notion.New(notion.Config{
		Token:      cfg.Notion.Token,
		DatabaseID: cfg.Notion.DatabaseID,
	}, transport.NewRateLimiter(cfg.Notion.RateLimit, constants.BurstSize))
	if err != nil {
		return err
	}

	igdbClient := igdb.New(igdb.Config{
		ClientID:     cfg.IGDB.ClientID,
		ClientSecret: cfg.IGDB.ClientSecret,
	}, transport.NewRateLimiter(cfg.IGDB.RateLimit, constants.BurstSize))

	hltbClient := hltb.New(hltb.Config{},
		transport.NewRateLimiter(cfg.HLTB.RateLimit, constants.BurstSize))

	client, err := questlog.New(
		questlog.WithStore(store),
		questlog.WithSources(igdbClient, hltbClient),
		questlog.WithWorkers(cfg.Workers),
		questlog.WithMatcherConfig(match.Config{
			Floor:        cfg.MatchFloor,
			Margin:       cfg.MatchMargin,
			HintBoost:    cfg.HintBoost,
			MaxAmbiguous: cfg.MaxAmbiguous,
		}),
	)
	if err != nil {
		return err
	}

	result, err := client.Reconcile(cmd.Context())
	if err != nil {
		return err
	}

	return writeReport(result, outputFormat)
}
