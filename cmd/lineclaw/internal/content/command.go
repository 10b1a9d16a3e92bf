package content

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tinyland-inc/lineclaw/cmd/lineclaw/internal"
	"github.com/tinyland-inc/lineclaw/pkg/linebot"
)

func NewContentCommand() *cobra.Command {
	var preview bool
	var output string

	cmd := &cobra.Command{
		Use:   "content <message-id>",
		Short: "Download the binary content of a received message",
		Args:  cobra.ExactArgs(1),
		Example: `  lineclaw content m-12345 --output photo.jpg
  lineclaw content m-12345 --preview --output thumb.jpg`,
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := internal.LoadConfig()
			if err != nil {
				return fmt.Errorf("error loading config: %w", err)
			}
			client, err := internal.NewClient(cfg)
			if err != nil {
				return fmt.Errorf("error creating client: %w", err)
			}

			ctx := context.Background()
			var mc *linebot.MessageContent
			if preview {
				mc, err = client.GetPreviewMessageContent(ctx, args[0])
			} else {
				mc, err = client.GetMessageContent(ctx, args[0])
			}
			if err != nil {
				return err
			}
			defer mc.Close()

			out := os.Stdout
			if output != "" {
				out, err = os.Create(output)
				if err != nil {
					return fmt.Errorf("error creating output file: %w", err)
				}
				defer out.Close()
			}

			written, err := io.Copy(out, mc)
			if err != nil {
				return fmt.Errorf("error downloading content: %w", err)
			}

			if output != "" {
				fmt.Printf("✓ Wrote %d bytes (%s) to %s\n", written, mc.ContentType(), output)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&preview, "preview", false, "Download the preview-sized content instead")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")

	return cmd
}
