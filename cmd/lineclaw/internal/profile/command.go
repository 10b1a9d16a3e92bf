package profile

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tinyland-inc/lineclaw/cmd/lineclaw/internal"
)

func NewProfileCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "profile <mid> [mid...]",
		Aliases: []string{"p"},
		Short:   "Look up user profiles by MID",
		Args:    cobra.MinimumNArgs(1),
		Example: "  lineclaw profile uUSER1 uUSER2",
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := internal.LoadConfig()
			if err != nil {
				return fmt.Errorf("error loading config: %w", err)
			}
			client, err := internal.NewClient(cfg)
			if err != nil {
				return fmt.Errorf("error creating client: %w", err)
			}

			resp, err := client.GetUserProfile(context.Background(), args)
			if err != nil {
				return err
			}

			fmt.Printf("✓ %d of %d profiles\n", resp.Count, resp.Total)
			for _, contact := range resp.Contacts {
				fmt.Printf("  • %s (%s)\n", contact.DisplayName, contact.MID)
				if contact.StatusMessage != "" {
					fmt.Printf("    %s\n", contact.StatusMessage)
				}
				if contact.PictureURL != "" {
					fmt.Printf("    %s\n", contact.PictureURL)
				}
			}
			return nil
		},
	}
}
