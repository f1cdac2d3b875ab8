package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check API health and the current subscription",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			health, err := apiClient.Health(ctx)
			if err != nil {
				return fmt.Errorf("API unreachable: %w", err)
			}
			fmt.Printf("API:          %s\n", health.Status)

			sub, err := apiClient.Subscription(ctx)
			if err != nil {
				fmt.Printf("Subscription: (error: %v)\n", err)
				return nil
			}
			fmt.Printf("Subscription: %s (%s)\n", sub.Plan, sub.Status)
			return nil
		},
	}
}
