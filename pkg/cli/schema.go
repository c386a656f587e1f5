package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mcsuka/xml-xsd-json/pkg/cli/internal/output"
	"github.com/mcsuka/xml-xsd-json/pkg/config"
	"github.com/mcsuka/xml-xsd-json/pkg/gateway"
	"github.com/mcsuka/xml-xsd-json/pkg/jsonschema"
	"github.com/mcsuka/xml-xsd-json/pkg/transcode"
	"github.com/mcsuka/xml-xsd-json/pkg/wsdl"
	"github.com/mcsuka/xml-xsd-json/pkg/xsd"
)

var (
	dumpSchema       schemaFlags
	jsonSchemaSchema schemaFlags
	oasConfigPath    string
	operationsWSDL   string
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Inspect XML Schemas, WSDLs and the generated OpenAPI document",
}

var schemaDumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print the parsed schema tree",
	Long: `Print the parsed schema tree, one node per line. Elements show their
cardinality and scalar type; attributes are prefixed with @ and indicators
are shown as [ sequence|choice|all ... ].`,
	Example: `  rest2soap schema dump --xsd Order.xsd --root Order
  rest2soap schema dump --wsdl eCommerce.wsdl --operation GetProduct --response`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := newLogger(config.LogConfig{}, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		return runSchemaDump(cmd.Context(), &dumpSchema, log, cmd.OutOrStdout())
	},
}

var schemaJSONSchemaCmd = &cobra.Command{
	Use:   "jsonschema",
	Short: "Print the JSON Schema of the JSON side of a schema root",
	Example: `  rest2soap schema jsonschema --xsd Order.xsd --root Order`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := newLogger(config.LogConfig{}, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		return runSchemaJSONSchema(cmd.Context(), &jsonSchemaSchema, log, cmd.OutOrStdout())
	},
}

var schemaOASCmd = &cobra.Command{
	Use:   "oas",
	Short: "Print the OpenAPI document of the configured services",
	Long: `Print the OpenAPI document the gateway serves at /oas.json, without
starting the server. Every service WSDL must be reachable.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(oasConfigPath)
		if err != nil {
			return err
		}
		log, err := newLogger(cfg.Log, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		return runSchemaOAS(cmd.Context(), cfg, log, cmd.OutOrStdout())
	},
}

var schemaOperationsCmd = &cobra.Command{
	Use:   "operations",
	Short: "List the operations of a WSDL",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSchemaOperations(cmd.Context(), operationsWSDL, cmd.OutOrStdout())
	},
}

func runSchemaDump(ctx context.Context, f *schemaFlags, log *slog.Logger, w io.Writer) error {
	node, err := f.load(ctx, log)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, node.DumpTree())
	return err
}

func runSchemaJSONSchema(ctx context.Context, f *schemaFlags, log *slog.Logger, w io.Writer) error {
	node, err := f.load(ctx, log)
	if err != nil {
		return err
	}
	doc := jsonschema.NewRenderer(jsonschema.WithLogger(log)).Document(node)
	return output.JSON(w, doc)
}

func runSchemaOAS(ctx context.Context, cfg *config.Config, log *slog.Logger, w io.Writer) error {
	fallback, err := transcode.ParseChoiceFallback(cfg.Translation.ChoiceFallback)
	if err != nil {
		return err
	}
	loader := gateway.NewLoader(xsd.NewCache(xsd.WithLogger(log)), nil, fallback, log)
	services, err := loader.LoadAll(ctx, cfg.Services)
	if err != nil {
		return err
	}
	doc := gateway.OpenAPI(services, jsonschema.NewRenderer(jsonschema.WithLogger(log)))
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal OpenAPI document: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// OperationOutput is one row of 'schema operations'.
type OperationOutput struct {
	Name     string `json:"name"`
	Version  string `json:"soapVersion"`
	Action   string `json:"soapAction"`
	Request  string `json:"request"`
	Response string `json:"response,omitempty"`
	Address  string `json:"address,omitempty"`
}

func runSchemaOperations(ctx context.Context, location string, w io.Writer) error {
	if location == "" {
		return fmt.Errorf("%w: --wsdl is required", ErrInvalidFlag)
	}
	defs, err := wsdl.Load(ctx, location)
	if err != nil {
		return err
	}

	var rows []OperationOutput
	for _, name := range defs.Operations() {
		op, err := defs.Operation(name)
		if err != nil {
			return err
		}
		rows = append(rows, OperationOutput{
			Name:     op.Name,
			Version:  string(op.Version),
			Action:   op.SOAPAction,
			Request:  op.Request.String(),
			Response: op.Response.String(),
			Address:  op.Address,
		})
	}

	return printResult(w, rows, func() error {
		tw := output.Table(w)
		fmt.Fprintln(tw, "OPERATION\tSOAP\tACTION\tREQUEST\tRESPONSE")
		for _, r := range rows {
			response := r.Response
			if response == "" {
				response = "-"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.Name, r.Version, r.Action, r.Request, response)
		}
		return tw.Flush()
	})
}

func init() {
	dumpSchema.register(schemaDumpCmd)
	jsonSchemaSchema.register(schemaJSONSchemaCmd)
	schemaOASCmd.Flags().StringVarP(&oasConfigPath, "config", "c", "", "Configuration file (default: discovered)")
	schemaOperationsCmd.Flags().StringVar(&operationsWSDL, "wsdl", "", "WSDL file or URL")

	schemaCmd.AddCommand(schemaDumpCmd, schemaJSONSchemaCmd, schemaOASCmd, schemaOperationsCmd)
	rootCmd.AddCommand(schemaCmd)
}
