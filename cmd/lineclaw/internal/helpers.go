package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/tinyland-inc/lineclaw/pkg/config"
	"github.com/tinyland-inc/lineclaw/pkg/linebot"
)

const Logo = "💬"

var (
	version   = "dev"
	gitCommit string
	buildTime string
	goVersion string
)

func GetConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".lineclaw", "config.json")
}

func LoadConfig() (*config.Config, error) {
	return config.LoadConfig(GetConfigPath())
}

// NewClient builds a linebot client from the loaded config.
func NewClient(cfg *config.Config) (*linebot.Client, error) {
	return linebot.New(linebot.ChannelSettings{
		ChannelID:          cfg.Line.ChannelID,
		ChannelSecret:      cfg.Line.ChannelSecret,
		ChannelMID:         cfg.Line.ChannelMID,
		Endpoint:           cfg.Line.APIEndpoint,
		EventChannelID:     cfg.Line.EventChannelID,
		SendEventType:      cfg.Line.SendEventType,
		MultiSendEventType: cfg.Line.MultiSendEventType,
		ConnectTimeout:     time.Duration(cfg.Line.ConnectTimeoutMS) * time.Millisecond,
		ReadTimeout:        time.Duration(cfg.Line.ReadTimeoutMS) * time.Millisecond,
	})
}

// FormatVersion returns the version string with optional git commit
func FormatVersion() string {
	v := version
	if gitCommit != "" {
		v += fmt.Sprintf(" (git: %s)", gitCommit)
	}
	return v
}

// FormatBuildInfo returns build time and go version info
func FormatBuildInfo() (string, string) {
	build := buildTime
	goVer := goVersion
	if goVer == "" {
		goVer = runtime.Version()
	}
	return build, goVer
}

// GetVersion returns the version string
func GetVersion() string {
	return version
}
