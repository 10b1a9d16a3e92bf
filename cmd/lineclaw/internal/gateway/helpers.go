package gateway

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/tinyland-inc/lineclaw/cmd/lineclaw/internal"
	"github.com/tinyland-inc/lineclaw/pkg/bus"
	"github.com/tinyland-inc/lineclaw/pkg/channels"
	"github.com/tinyland-inc/lineclaw/pkg/echo"
	"github.com/tinyland-inc/lineclaw/pkg/logger"
)

func gatewayCmd(debug bool) error {
	if debug {
		logger.SetLevel(logger.DEBUG)
		fmt.Println("🔍 Debug mode enabled")
	}

	cfg, err := internal.LoadConfig()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	client, err := internal.NewClient(cfg)
	if err != nil {
		return fmt.Errorf("error creating client: %w", err)
	}

	msgBus := bus.NewMessageBus()

	channelManager, err := channels.NewManager(cfg, client, msgBus)
	if err != nil {
		return fmt.Errorf("error creating channel manager: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	responder := echo.NewResponder(msgBus)
	go responder.Run(ctx)

	logger.InfoCF("gateway", "Gateway starting", map[string]any{
		"host":     cfg.Gateway.Host,
		"port":     cfg.Gateway.Port,
		"channels": channelManager.EnabledChannels(),
	})

	if err := channelManager.StartAll(ctx); err != nil {
		return fmt.Errorf("error starting channels: %w", err)
	}

	fmt.Printf("✓ Channels enabled: %s\n", strings.Join(channelManager.EnabledChannels(), ", "))
	fmt.Printf("✓ Gateway started on %s:%d\n", cfg.Gateway.Host, cfg.Gateway.Port)
	fmt.Printf("✓ Webhook at http://%s:%d%s, health at /health and /ready\n",
		cfg.Gateway.Host, cfg.Gateway.Port, cfg.Gateway.WebhookPath)
	fmt.Println("Press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	<-sigChan

	fmt.Println("\nShutting down...")
	cancel()
	channelManager.StopAll(context.Background())
	msgBus.Close()
	fmt.Println("✓ Gateway stopped")

	return nil
}
