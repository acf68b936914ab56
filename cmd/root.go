// Package cmd holds the CLI entry points.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zsyp1996/childrenlanguagescreeningline-bot/internal/config"
	"github.com/zsyp1996/childrenlanguagescreeningline-bot/internal/itembank"
)

var rootCmd = &cobra.Command{
	Use:   "screenbot",
	Short: "LINE bot for early childhood language screening",
	Long:  "Screenbot — a LINE chat bot that screens language development for children under three and reports a percentile band.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd, args)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(bankCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// openSource builds the configured item bank source. The returned
// cleanup is a no-op for sources without a connection to close.
func openSource(cfg config.ItemBank) (itembank.Source, func(), error) {
	switch cfg.Driver {
	case config.BankCSV:
		return itembank.NewCSVSource(cfg.Path), func() {}, nil
	case config.BankHTTP:
		return itembank.NewHTTPSource(cfg.URL), func() {}, nil
	case config.BankSQLite:
		src, err := itembank.OpenSQLiteSource(cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		return src, func() { src.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown item bank driver %q", cfg.Driver)
}

// loadBank loads the item bank from the configured source.
func loadBank(ctx context.Context, cfg config.ItemBank) (*itembank.Bank, error) {
	src, cleanup, err := openSource(cfg)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	return itembank.Load(ctx, src)
}
