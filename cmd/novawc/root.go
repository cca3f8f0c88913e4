package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/tfufuz1/NovaDE-sub008/comp"
	"github.com/tfufuz1/NovaDE-sub008/config"
)

// Version is set during build.
var Version = "0.1.0-dev"

var (
	flagConfig    string
	flagSocket    string
	flagBackend   string
	flagRenderer  string
	flagLayout    string
	flagLogLevel  string
	flagReadyFD   int
	flagReadyFile string
)

var rootCmd = &cobra.Command{
	Use:   "novawc",
	Short: "novawc is a small Wayland compositor",
	Long: `novawc serves the Wayland core protocol together with xdg-shell,
layer-shell, foreign-toplevel management, and primary selection.
Clients connect over the socket it prints at startup; the backend
and window layout are picked in the configuration file or by flag.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s\n" .Version}}`)

	f := rootCmd.Flags()
	f.StringVarP(&flagConfig, "config", "c", "", "configuration file")
	f.StringVar(&flagSocket, "socket", "", "socket name or absolute path to listen on")
	f.StringVar(&flagBackend, "backend", "", "backend to drive")
	f.StringVar(&flagRenderer, "renderer", "", "renderer to draw with")
	f.StringVar(&flagLayout, "layout", "", "window layout, floating or tiling")
	f.StringVar(&flagLogLevel, "log-level", "", "log level")
	f.IntVar(&flagReadyFD, "ready-fd", -1, "fd the display name is written to once ready")
	f.StringVar(&flagReadyFile, "ready-file", "", "file the display name is written to once ready")
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "novawc",
	})
	if lvl, err := log.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(lvl)
	}

	c, err := comp.New(comp.Options{Config: cfg, Logger: logger})
	if err != nil {
		return err
	}
	defer c.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return c.Run(ctx)
}

// applyFlags lets command line flags override file and environment
// settings.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	set := cmd.Flags().Changed
	if set("socket") {
		cfg.Socket = flagSocket
	}
	if set("backend") {
		cfg.Backend = flagBackend
	}
	if set("renderer") {
		cfg.Renderer = flagRenderer
	}
	if set("layout") {
		cfg.Layout = flagLayout
	}
	if set("log-level") {
		cfg.LogLevel = flagLogLevel
	}
	if set("ready-fd") {
		cfg.ReadyFD = flagReadyFD
	}
	if set("ready-file") {
		cfg.ReadyFile = flagReadyFile
	}
}
