package send

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tinyland-inc/lineclaw/cmd/lineclaw/internal"
	"github.com/tinyland-inc/lineclaw/pkg/linebot"
)

func NewSendCommand() *cobra.Command {
	var to []string

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a message to one or more users",
		Example: `  lineclaw send text --to uUSER "hello"
  lineclaw send image --to uUSER --url https://example.com/a.jpg --preview https://example.com/a_s.jpg
  lineclaw send sticker --to uUSER --package 1 --sticker 2
  lineclaw send multi --to uUSER --text "first" --text "second"`,
	}

	cmd.PersistentFlags().StringSliceVar(&to, "to", nil, "Recipient user MIDs (repeatable)")

	cmd.AddCommand(
		newTextCommand(&to),
		newImageCommand(&to),
		newVideoCommand(&to),
		newAudioCommand(&to),
		newLocationCommand(&to),
		newStickerCommand(&to),
		newRichCommand(&to),
		newMultiCommand(&to),
	)

	return cmd
}

func runSend(to []string, fn func(ctx context.Context, client *linebot.Client) (*linebot.EventResponse, error)) error {
	if len(to) == 0 {
		return fmt.Errorf("at least one --to recipient is required")
	}

	cfg, err := internal.LoadConfig()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	client, err := internal.NewClient(cfg)
	if err != nil {
		return fmt.Errorf("error creating client: %w", err)
	}

	resp, err := fn(context.Background(), client)
	if err != nil {
		return err
	}

	fmt.Printf("✓ Sent (message id: %s)\n", resp.MessageID)
	if len(resp.Failed) > 0 {
		fmt.Printf("⚠ Failed recipients: %s\n", strings.Join(resp.Failed, ", "))
	}
	return nil
}

func newTextCommand(to *[]string) *cobra.Command {
	return &cobra.Command{
		Use:   "text <message>",
		Short: "Send a text message",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runSend(*to, func(ctx context.Context, client *linebot.Client) (*linebot.EventResponse, error) {
				return client.SendText(ctx, *to, args[0])
			})
		},
	}
}

func newImageCommand(to *[]string) *cobra.Command {
	var url, preview string

	cmd := &cobra.Command{
		Use:   "image",
		Short: "Send an image by URL",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runSend(*to, func(ctx context.Context, client *linebot.Client) (*linebot.EventResponse, error) {
				return client.SendImage(ctx, *to, url, preview)
			})
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "Original content URL")
	cmd.Flags().StringVar(&preview, "preview", "", "Preview image URL")
	cmd.MarkFlagRequired("url")
	cmd.MarkFlagRequired("preview")
	return cmd
}

func newVideoCommand(to *[]string) *cobra.Command {
	var url, preview string

	cmd := &cobra.Command{
		Use:   "video",
		Short: "Send a video by URL",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runSend(*to, func(ctx context.Context, client *linebot.Client) (*linebot.EventResponse, error) {
				return client.SendVideo(ctx, *to, url, preview)
			})
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "Original content URL")
	cmd.Flags().StringVar(&preview, "preview", "", "Preview image URL")
	cmd.MarkFlagRequired("url")
	cmd.MarkFlagRequired("preview")
	return cmd
}

func newAudioCommand(to *[]string) *cobra.Command {
	var url, length string

	cmd := &cobra.Command{
		Use:   "audio",
		Short: "Send an audio clip by URL",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runSend(*to, func(ctx context.Context, client *linebot.Client) (*linebot.EventResponse, error) {
				return client.SendAudio(ctx, *to, url, length)
			})
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "Original content URL")
	cmd.Flags().StringVar(&length, "length", "", "Audio duration in milliseconds")
	cmd.MarkFlagRequired("url")
	cmd.MarkFlagRequired("length")
	return cmd
}

func newLocationCommand(to *[]string) *cobra.Command {
	var title, address string
	var lat, lon float64

	cmd := &cobra.Command{
		Use:   "location <text>",
		Short: "Send a location pin",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runSend(*to, func(ctx context.Context, client *linebot.Client) (*linebot.EventResponse, error) {
				return client.SendLocation(ctx, *to, args[0], title, address, lat, lon)
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Location title")
	cmd.Flags().StringVar(&address, "address", "", "Street address")
	cmd.Flags().Float64Var(&lat, "lat", 0, "Latitude")
	cmd.Flags().Float64Var(&lon, "lon", 0, "Longitude")
	return cmd
}

func newStickerCommand(to *[]string) *cobra.Command {
	var packageID, stickerID string

	cmd := &cobra.Command{
		Use:   "sticker",
		Short: "Send a sticker",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runSend(*to, func(ctx context.Context, client *linebot.Client) (*linebot.EventResponse, error) {
				return client.SendSticker(ctx, *to, packageID, stickerID)
			})
		},
	}
	cmd.Flags().StringVar(&packageID, "package", "", "Sticker package id")
	cmd.Flags().StringVar(&stickerID, "sticker", "", "Sticker id")
	cmd.MarkFlagRequired("package")
	cmd.MarkFlagRequired("sticker")
	return cmd
}

func newRichCommand(to *[]string) *cobra.Command {
	var downloadURL, altText, markupPath string

	cmd := &cobra.Command{
		Use:   "rich",
		Short: "Send a rich message from a markup JSON file",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			data, err := os.ReadFile(markupPath)
			if err != nil {
				return fmt.Errorf("error reading markup file: %w", err)
			}
			var markup linebot.RichMessage
			if err := json.Unmarshal(data, &markup); err != nil {
				return fmt.Errorf("error parsing markup file: %w", err)
			}
			return runSend(*to, func(ctx context.Context, client *linebot.Client) (*linebot.EventResponse, error) {
				return client.SendRichMessage(ctx, *to, downloadURL, altText, &markup)
			})
		},
	}
	cmd.Flags().StringVar(&downloadURL, "download-url", "", "Base URL of the rich message image")
	cmd.Flags().StringVar(&altText, "alt-text", "", "Fallback text for clients without rich message support")
	cmd.Flags().StringVar(&markupPath, "markup", "", "Path to the markup JSON file")
	cmd.MarkFlagRequired("download-url")
	cmd.MarkFlagRequired("alt-text")
	cmd.MarkFlagRequired("markup")
	return cmd
}

func newMultiCommand(to *[]string) *cobra.Command {
	var texts []string
	var stickers []string

	cmd := &cobra.Command{
		Use:   "multi",
		Short: "Send several messages as one event",
		Args:  cobra.NoArgs,
		Example: `  lineclaw send multi --to uUSER --text "first" --text "second"
  lineclaw send multi --to uUSER --text "look" --sticker 1:2`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runSend(*to, func(ctx context.Context, client *linebot.Client) (*linebot.EventResponse, error) {
				builder := client.NewMultipleMessageBuilder()
				for _, text := range texts {
					builder.AddText(text)
				}
				for _, s := range stickers {
					packageID, stickerID, ok := strings.Cut(s, ":")
					if !ok {
						return nil, fmt.Errorf("invalid --sticker %q, expected package:sticker", s)
					}
					builder.AddSticker(packageID, stickerID)
				}
				if len(builder.Contents()) == 0 {
					return nil, fmt.Errorf("nothing to send, add --text or --sticker")
				}
				return builder.Send(ctx, *to)
			})
		},
	}
	cmd.Flags().StringArrayVar(&texts, "text", nil, "Text message (repeatable)")
	cmd.Flags().StringArrayVar(&stickers, "sticker", nil, "Sticker as package:sticker (repeatable)")
	return cmd
}
