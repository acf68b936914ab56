package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zsyp1996/childrenlanguagescreeningline-bot/internal/config"
	"github.com/zsyp1996/childrenlanguagescreeningline-bot/internal/itembank"
	"github.com/zsyp1996/childrenlanguagescreeningline-bot/internal/scoring"
)

var bankCmd = &cobra.Command{
	Use:   "bank",
	Short: "Inspect and manage the screening item bank",
}

var bankCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Load the item bank and verify group composition",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromEnv()

		bank, err := loadBank(cmd.Context(), cfg.ItemBank)
		if err != nil {
			return err
		}

		fmt.Printf("Loaded %d items from the %s source.\n\n", bank.Len(), cfg.ItemBank.Driver)
		fmt.Printf("%-6s  %-6s  %s\n", "Group", "Items", "Expected")

		problems := 0
		for g := 1; g <= scoring.GroupCount; g++ {
			got := len(bank.QuestionsForGroup(g))
			want := scoring.GroupTotal(g)
			mark := ""
			if got != want {
				mark = "  ← mismatch"
				problems++
			}
			fmt.Printf("%-6d  %-6d  %d%s\n", g, got, want, mark)
		}

		if problems > 0 {
			return fmt.Errorf("%d group(s) do not match the scoring tables", problems)
		}
		fmt.Println("\nAll groups match the scoring tables.")
		return nil
	},
}

var bankSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Copy the item bank from the configured source into SQLite",
	Long:  "Reads items from the csv or http source and writes them into the SQLite database at ITEM_BANK_DSN, replacing its contents.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromEnv()
		if cfg.ItemBank.Driver == config.BankSQLite {
			return fmt.Errorf("seeding from sqlite into itself; set ITEM_BANK_DRIVER to csv or http")
		}

		src, cleanup, err := openSource(cfg.ItemBank)
		if err != nil {
			return err
		}
		defer cleanup()

		dst, err := itembank.OpenSQLiteSource(cfg.ItemBank.DSN)
		if err != nil {
			return err
		}
		defer dst.Close()

		n, err := dst.Seed(cmd.Context(), src)
		if err != nil {
			return fmt.Errorf("seed item bank: %w", err)
		}

		fmt.Printf("Seeded %d rows into %s.\n", n, cfg.ItemBank.DSN)
		return nil
	},
}

func init() {
	bankCmd.AddCommand(bankCheckCmd)
	bankCmd.AddCommand(bankSeedCmd)
}
