package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcsuka/xml-xsd-json/pkg/config"
	"github.com/mcsuka/xml-xsd-json/pkg/logging"
)

var (
	// Persistent flags available to all subcommands
	logLevel   string
	logFormat  string
	jsonOutput bool

	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "rest2soap",
	Short: "rest2soap exposes SOAP operations as JSON REST endpoints",
	Long: `rest2soap is a REST to SOAP gateway. Each configured service maps a REST
endpoint to a WSDL operation; JSON requests are translated to SOAP envelopes
shaped by the operation's XML Schema, and SOAP responses back to JSON.

The translators are also available offline through the translate, schema
and validate commands.

The configuration file is taken from --config, $REST2SOAP_CONFIG, or the
first of rest2soap.yaml, rest2soap.yml, rest2soap.json in the working
directory.`,
	SilenceUsage:  true,
	SilenceErrors: true, // We handle errors in Execute()
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides the config file)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: text or json (overrides the config file)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output command results in JSON format")
}

// newLogger builds a logger from the config file settings, overridden by
// --log-level and --log-format. Every output receives every record.
func newLogger(cfg config.LogConfig, outputs ...io.Writer) (*slog.Logger, error) {
	if logLevel != "" {
		cfg.Level = logLevel
	}
	if logFormat != "" {
		cfg.Format = logFormat
	}
	lc, err := logging.Parse(cfg.Level, cfg.Format)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFlag, err)
	}
	lc.Outputs = outputs
	return logging.New(lc), nil
}
