package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	configPath string
	cfg        *Config
	logCloser  interface{ Close() error }
)

var rootCmd = &cobra.Command{
	Use:           "evac-planner",
	Short:         "Evacuation routing over segmented floor plans",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = LoadConfig(configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("path-mode") {
			cfg.PathMode, _ = cmd.Flags().GetString("path-mode")
			if err := cfg.Validate(); err != nil {
				return err
			}
		}
		logCloser = cfg.Log.SetLogger()
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve graphs to the annotation UI over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("addr") {
			cfg.HTTPAddr, _ = cmd.Flags().GetString("addr")
		}
		if cmd.Flags().Changed("nats-url") {
			cfg.NATSURL, _ = cmd.Flags().GetString("nats-url")
		}

		publisher, err := NewPublisher(cfg.NATSURL)
		if err != nil {
			return err
		}
		defer publisher.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		log.Println("========================================")
		log.Println("🚀 Evacuation Route Planner Server")
		log.Println("========================================")
		log.Printf("Server starting on %s\n", cfg.HTTPAddr)
		log.Println("")
		log.Println("Endpoints:")
		log.Println("  POST   /graphs               - Detect graph from panoptic + confidence PNGs")
		log.Println("  GET    /graphs/{id}          - Renderable state (?highlight=1,2)")
		log.Println("  GET    /graphs/{id}/lines    - Graph as GeoJSON")
		log.Println("  POST   /graphs/{id}/commands - Apply an edit command")
		log.Println("  POST   /graphs/{id}/route    - Route every node to its nearest exit")
		log.Println("  DELETE /graphs/{id}          - Drop a graph")
		log.Println("  GET    /health               - Check server status")
		log.Println("")
		if cfg.NATSURL != "" {
			log.Printf("Publishing events to %s\n", cfg.NATSURL)
		}
		log.Printf("Path mode: %s\n", cfg.PathMode)
		log.Println("CORS enabled for all origins")
		log.Println("========================================")

		return NewServer(cfg, publisher).ListenAndServe(ctx)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv("EVAC_CONFIG"), "TOML config file")
	rootCmd.PersistentFlags().String("path-mode", "", "path reconstruction: greedy or predecessor")

	serveCmd.Flags().String("addr", "", "HTTP listen address (overrides http_addr)")
	serveCmd.Flags().String("nats-url", "", "NATS server for change events (overrides nats_url)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routeCmd)
}

// execute runs the root command and closes the log file whether or not the
// command failed. Cobra skips post-run hooks after a RunE error.
func execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if logCloser != nil {
		log.SetOutput(os.Stderr)
		logCloser.Close()
		logCloser = nil
	}
	return err
}

func main() {
	if err := execute(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
