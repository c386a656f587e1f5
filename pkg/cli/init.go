package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/mcsuka/xml-xsd-json/internal/matching"
	"github.com/mcsuka/xml-xsd-json/pkg/config"
	"github.com/mcsuka/xml-xsd-json/pkg/wsdl"
)

type initFlags struct {
	output   string
	force    bool
	defaults bool
}

var initOpts initFlags

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter configuration file",
	Long: `Create a starter configuration file with one service.

Without --defaults a short wizard asks for the WSDL, the operation and the
REST endpoint to expose. When the WSDL can be read the operation is picked
from a list and the target URL defaults to the address of its port.`,
	Example: `  rest2soap init
  rest2soap init --defaults -o gateway.yaml
  rest2soap init --output rest2soap.json --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInit(cmd.Context(), &initOpts, cmd.OutOrStdout(), promptService)
	},
}

// servicePrompt asks for the listen port and the first service.
type servicePrompt func(ctx context.Context) (int, config.Service, error)

func runInit(ctx context.Context, f *initFlags, stdout io.Writer, prompt servicePrompt) error {
	if _, err := os.Stat(f.output); err == nil && !f.force {
		return fmt.Errorf("%w: %s\n\nUse --force to overwrite", ErrFileExists, f.output)
	}

	cfg := config.Default()
	if f.defaults {
		cfg.Services = []config.Service{exampleService()}
	} else {
		port, svc, err := prompt(ctx)
		if err != nil {
			return err
		}
		cfg.Server.Port = port
		cfg.Services = []config.Service{svc}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.SaveFile(f.output, cfg); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Created %s\n\n", f.output)
	fmt.Fprintln(stdout, "Next steps:")
	fmt.Fprintf(stdout, "  rest2soap validate --config %s --services\n", f.output)
	fmt.Fprintf(stdout, "  rest2soap serve --config %s\n", f.output)
	return nil
}

func exampleService() config.Service {
	return config.Service{
		Name:        "getProduct",
		Description: "Look up a product by id",
		TargetURL:   "http://localhost:8090/soap/ecommerce",
		RestPath:    "/products/{productId}",
		RestMethod:  http.MethodGet,
		WSDL:        "http://localhost:8090/ecommerce?wsdl",
		Operation:   "GetProduct",
		Parameters: []config.Parameter{{
			Name:     "productId",
			In:       config.InPath,
			Required: true,
			Schema:   map[string]string{"type": "string"},
			JSONPath: []string{"ProductId"},
		}},
	}
}

// pathParameters declares every template parameter of restPath.
func pathParameters(restPath string) ([]config.Parameter, error) {
	tmpl, err := matching.ParseTemplate(restPath)
	if err != nil {
		return nil, err
	}
	var params []config.Parameter
	for _, name := range tmpl.Params() {
		params = append(params, config.Parameter{Name: name, In: config.InPath, Required: true})
	}
	return params, nil
}

func required(what string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New(what + " is required")
		}
		return nil
	}
}

func promptService(ctx context.Context) (int, config.Service, error) {
	portStr := strconv.Itoa(config.Default().Server.Port)
	var svc config.Service

	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Which port should the gateway listen on?").
				Value(&portStr).
				Validate(func(s string) error {
					p, err := strconv.Atoi(s)
					if err != nil || p < 1 || p > 65535 {
						return errors.New("port must be 1-65535")
					}
					return nil
				}),
			huh.NewInput().
				Title("Where is the WSDL?").
				Description("A URL, or a file path relative to the configuration file").
				Placeholder("http://localhost:8090/ecommerce?wsdl").
				Value(&svc.WSDL).
				Validate(required("WSDL")),
		),
	).RunWithContext(ctx)
	if err != nil {
		return 0, svc, err
	}
	port, _ := strconv.Atoi(portStr)

	operation := huh.NewInput().
		Title("Which operation should be exposed?").
		Value(&svc.Operation).
		Validate(required("operation"))
	var ops []string
	defs, loadErr := wsdl.Load(ctx, svc.WSDL)
	if loadErr == nil {
		ops = defs.Operations()
	}
	group := huh.NewGroup(operation)
	if len(ops) > 0 {
		group = huh.NewGroup(
			huh.NewSelect[string]().
				Title("Which operation should be exposed?").
				Options(huh.NewOptions(ops...)...).
				Value(&svc.Operation),
		)
	}
	if err := huh.NewForm(group).RunWithContext(ctx); err != nil {
		return 0, svc, err
	}

	svc.Name = strings.ToLower(svc.Operation[:1]) + svc.Operation[1:]
	svc.RestMethod = http.MethodPost
	if defs != nil {
		if op, err := defs.Operation(svc.Operation); err == nil {
			svc.TargetURL = op.Address
		}
	}

	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Service name").
				Value(&svc.Name).
				Validate(required("name")),
			huh.NewInput().
				Title("REST path").
				Description("Segments like {id} become path parameters").
				Placeholder("/orders/{orderId}").
				Value(&svc.RestPath).
				Validate(func(s string) error {
					_, err := matching.ParseTemplate(s)
					return err
				}),
			huh.NewSelect[string]().
				Title("REST method").
				Options(
					huh.NewOption("GET", http.MethodGet),
					huh.NewOption("POST", http.MethodPost),
					huh.NewOption("PUT", http.MethodPut),
					huh.NewOption("PATCH", http.MethodPatch),
					huh.NewOption("DELETE", http.MethodDelete),
				).
				Value(&svc.RestMethod),
			huh.NewInput().
				Title("SOAP endpoint URL").
				Placeholder("http://localhost:8090/soap/ecommerce").
				Value(&svc.TargetURL).
				Validate(required("SOAP endpoint URL")),
		),
	).RunWithContext(ctx)
	if err != nil {
		return 0, svc, err
	}

	svc.Parameters, err = pathParameters(svc.RestPath)
	return port, svc, err
}

func init() {
	fl := initCmd.Flags()
	fl.StringVarP(&initOpts.output, "output", "o", "rest2soap.yaml", "Output file, JSON for a .json extension")
	fl.BoolVar(&initOpts.force, "force", false, "Overwrite an existing file")
	fl.BoolVar(&initOpts.defaults, "defaults", false, "Write an example service without prompting")
	rootCmd.AddCommand(initCmd)
}
