package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mcsuka/xml-xsd-json/pkg/config"
	"github.com/mcsuka/xml-xsd-json/pkg/gateway"
	"github.com/mcsuka/xml-xsd-json/pkg/jsonschema"
	"github.com/mcsuka/xml-xsd-json/pkg/transcode"
	"github.com/mcsuka/xml-xsd-json/pkg/xsd"
)

type validateFlags struct {
	schema     schemaFlags
	input      string
	configPath string
	services   bool
}

var validateOpts validateFlags

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a JSON payload against a schema, or a configuration file",
	Long: `Validate a JSON payload against the JSON Schema rendered from an XML Schema
root, i.e. check that it is a well shaped request or response of the JSON
side of the gateway. The translators themselves never reject input.

With --config the configuration file is validated instead. --services also
loads every service, which reads each WSDL and resolves its operation.`,
	Example: `  rest2soap validate --xsd Order.xsd --root Order --input order.json
  rest2soap validate --wsdl eCommerce.wsdl --operation PlaceOrder < order.json
  rest2soap validate --config rest2soap.yaml --services`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if validateOpts.configPath != "" || !validateOpts.schema.isSet() {
			return runValidateConfig(cmd.Context(), &validateOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		}
		log, err := newLogger(config.LogConfig{}, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		return runValidatePayload(cmd.Context(), &validateOpts, log, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func runValidatePayload(ctx context.Context, f *validateFlags, log *slog.Logger, stdin io.Reader, stdout io.Writer) error {
	node, err := f.schema.load(ctx, log)
	if err != nil {
		return err
	}
	validator, err := jsonschema.NewValidator(jsonschema.NewRenderer(jsonschema.WithLogger(log)).Document(node))
	if err != nil {
		return err
	}
	data, err := readInput(f.input, stdin)
	if err != nil {
		return err
	}
	result, err := validator.ValidateBytes(data)
	if err != nil {
		return err
	}

	err = printResult(stdout, result, func() error {
		if result.Valid {
			_, err := fmt.Fprintln(stdout, "valid")
			return err
		}
		for _, e := range result.Errors {
			fmt.Fprintf(stdout, "  %s\n", e)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if !result.Valid {
		return fmt.Errorf("%w: %d error(s)", ErrValidationFailed, len(result.Errors))
	}
	return nil
}

// ConfigValidationOutput is the JSON output of 'validate --config'.
type ConfigValidationOutput struct {
	Valid    bool     `json:"valid"`
	Path     string   `json:"path"`
	Services []string `json:"services"`
}

func runValidateConfig(ctx context.Context, f *validateFlags, stdout, stderr io.Writer) error {
	path := f.configPath
	if path == "" {
		discovered, err := config.Discover()
		if err != nil {
			return err
		}
		path = discovered
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		return err
	}

	if f.services {
		log, err := newLogger(cfg.Log, stderr)
		if err != nil {
			return err
		}
		fallback, err := transcode.ParseChoiceFallback(cfg.Translation.ChoiceFallback)
		if err != nil {
			return err
		}
		loader := gateway.NewLoader(xsd.NewCache(xsd.WithLogger(log)), nil, fallback, log)
		if _, err := loader.LoadAll(ctx, cfg.Services); err != nil {
			return fmt.Errorf("%w: %w", ErrValidationFailed, err)
		}
	}

	out := ConfigValidationOutput{Valid: true, Path: path, Services: make([]string, 0, len(cfg.Services))}
	for _, s := range cfg.Services {
		out.Services = append(out.Services, s.Name)
	}
	return printResult(stdout, out, func() error {
		_, err := fmt.Fprintf(stdout, "%s: valid, %d service(s)\n", path, len(out.Services))
		return err
	})
}

func init() {
	validateOpts.schema.register(validateCmd)
	fl := validateCmd.Flags()
	fl.StringVarP(&validateOpts.input, "input", "i", "", "JSON payload file (default: stdin)")
	fl.StringVarP(&validateOpts.configPath, "config", "c", "", "Validate this configuration file")
	fl.BoolVar(&validateOpts.services, "services", false, "With --config, also load every service WSDL and operation")
	validateCmd.MarkFlagsMutuallyExclusive("config", "xsd")
	validateCmd.MarkFlagsMutuallyExclusive("config", "wsdl")
	rootCmd.AddCommand(validateCmd)
}
