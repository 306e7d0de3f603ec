package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dfuchss/deltabot/internal/config"
	"github.com/dfuchss/deltabot/internal/nlu"
)

// classify runs a single text through the configured classifier. Handy for
// tuning the threshold without connecting any channel.
func newClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <text>...",
		Short: "Classify a text with the configured NLU service",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(paths.Config)
			if err != nil {
				return err
			}
			if cfg.NLU.Endpoint == "" {
				return fmt.Errorf("nlu.endpoint is not configured")
			}

			client := nlu.NewHTTPClient(nlu.ClientConfig{
				Endpoint: cfg.NLU.Endpoint,
				AppID:    cfg.NLU.AppID,
				Key:      cfg.NLU.Key,
			}, log)

			text := strings.Join(args, " ")
			intents, entities, err := client.Recognize(cmd.Context(), text)
			if err != nil {
				return err
			}

			fmt.Printf("Query: %s\n", text)
			fmt.Printf("Intents (%d):\n", len(intents))
			for _, in := range intents {
				marker := " "
				if in.Score > cfg.NLU.Threshold {
					marker = "*"
				}
				fmt.Printf("  %s %s\n", marker, in)
			}
			fmt.Printf("Entities (%d):\n", len(entities))
			for _, e := range entities {
				fmt.Printf("    %s\n", e)
			}
			return nil
		},
	}
}
