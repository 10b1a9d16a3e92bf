package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tinyland-inc/lineclaw/cmd/lineclaw/internal"
	"github.com/tinyland-inc/lineclaw/cmd/lineclaw/internal/content"
	"github.com/tinyland-inc/lineclaw/cmd/lineclaw/internal/gateway"
	"github.com/tinyland-inc/lineclaw/cmd/lineclaw/internal/profile"
	"github.com/tinyland-inc/lineclaw/cmd/lineclaw/internal/send"
	"github.com/tinyland-inc/lineclaw/cmd/lineclaw/internal/version"
)

func NewLineclawCommand() *cobra.Command {
	short := fmt.Sprintf("%s lineclaw - LINE trial bot gateway v%s\n\n", internal.Logo, internal.GetVersion())

	cmd := &cobra.Command{
		Use:     "lineclaw",
		Short:   short,
		Example: "lineclaw gateway",
	}

	cmd.AddCommand(
		gateway.NewGatewayCommand(),
		send.NewSendCommand(),
		profile.NewProfileCommand(),
		content.NewContentCommand(),
		version.NewVersionCommand(),
	)

	return cmd
}

func main() {
	cmd := NewLineclawCommand()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
