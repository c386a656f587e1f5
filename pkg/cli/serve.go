package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mcsuka/xml-xsd-json/pkg/config"
	"github.com/mcsuka/xml-xsd-json/pkg/gateway"
)

// serveFlags holds the flags of the serve command. Zero values leave the
// configuration file setting in place.
type serveFlags struct {
	configPath string
	host       string
	port       int
	logFile    string
}

var serveOpts serveFlags

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST to SOAP gateway",
	Long: `Start the REST to SOAP gateway.

Every configured service is loaded before the listener opens: its WSDL is
read, the operation resolved and both translators built. The OpenAPI
document of all services is served at GET /oas.json and metrics in
Prometheus text format at GET /metrics.

The server stops gracefully on SIGINT or SIGTERM.`,
	Example: `  rest2soap serve
  rest2soap serve --config gateway.yaml --port 9090
  rest2soap serve --log-level debug --log-file gateway.log`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runServe(ctx, &serveOpts, cmd.ErrOrStderr())
	},
}

func runServe(ctx context.Context, f *serveFlags, stderr io.Writer) error {
	cfg, err := loadServeConfig(f)
	if err != nil {
		return err
	}

	outputs := []io.Writer{stderr}
	if f.logFile != "" {
		file, err := os.OpenFile(f.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer func() { _ = file.Close() }()
		outputs = append(outputs, file)
	}
	log, err := newLogger(cfg.Log, outputs...)
	if err != nil {
		return err
	}

	g, err := gateway.New(ctx, cfg, gateway.WithLogger(log))
	if err != nil {
		return err
	}
	if err := gateway.NewServer(cfg.Server, g, log).Run(ctx); err != nil {
		return err
	}
	log.Info("gateway stopped")
	return nil
}

// loadServeConfig loads the configuration and applies flag overrides.
func loadServeConfig(f *serveFlags) (*config.Config, error) {
	cfg, err := loadConfig(f.configPath)
	if err != nil {
		return nil, err
	}
	if f.host != "" {
		cfg.Server.Host = f.host
	}
	if f.port != 0 {
		cfg.Server.Port = f.port
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadConfig loads path, or the discovered configuration file when path is
// empty.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		discovered, err := config.Discover()
		if err != nil {
			return nil, err
		}
		path = discovered
	}
	return config.LoadFile(path)
}

func init() {
	fl := serveCmd.Flags()
	fl.StringVarP(&serveOpts.configPath, "config", "c", "", "Configuration file (default: discovered)")
	fl.StringVar(&serveOpts.host, "host", "", "Listen host (overrides server.host)")
	fl.IntVarP(&serveOpts.port, "port", "p", 0, "Listen port (overrides server.port)")
	fl.StringVar(&serveOpts.logFile, "log-file", "", "Also write logs to this file")
	rootCmd.AddCommand(serveCmd)
}
