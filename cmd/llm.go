package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zsyp1996/childrenlanguagescreeningline-bot/internal/llm"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect the LLM provider configuration",
}

var llmCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Send a test prompt to the configured provider",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		provider, err := llm.NewProviderFromEnv(ctx)
		if err != nil {
			return fmt.Errorf("configure LLM provider: %w", err)
		}

		resp, err := provider.Generate(ctx, llm.Request{
			Messages:  []llm.Message{{Role: llm.RoleUser, Content: "請回覆「準備就緒」四個字。"}},
			MaxTokens: 16,
		})
		if err != nil {
			return fmt.Errorf("test prompt failed: %w", err)
		}

		fmt.Printf("Model:    %s\n", resp.Model)
		fmt.Printf("Tokens:   %d in / %d out\n", resp.Usage.InputTokens, resp.Usage.OutputTokens)
		fmt.Printf("Response: %s\n", resp.Text())
		return nil
	},
}

func init() {
	llmCmd.AddCommand(llmCheckCmd)
}
