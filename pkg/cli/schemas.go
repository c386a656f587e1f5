package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcsuka/xml-xsd-json/pkg/wsdl"
	"github.com/mcsuka/xml-xsd-json/pkg/xsd"
)

// schemaFlags selects a schema root from a standalone XSD or from a schema
// embedded in a WSDL.
type schemaFlags struct {
	xsdPath   string
	wsdlPath  string
	namespace string
	root      string
	operation string
	response  bool
}

func (f *schemaFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.xsdPath, "xsd", "", "XSD file or URL")
	fl.StringVar(&f.wsdlPath, "wsdl", "", "WSDL file or URL")
	fl.StringVar(&f.namespace, "ns", "", "Target namespace of the WSDL embedded schema (default: the only one)")
	fl.StringVar(&f.root, "root", "", "Root element, or a slash separated path below one")
	fl.StringVar(&f.operation, "operation", "", "WSDL operation whose request element is the root")
	fl.BoolVar(&f.response, "response", false, "Use the response element of --operation")
	cmd.MarkFlagsMutuallyExclusive("xsd", "wsdl")
	cmd.MarkFlagsMutuallyExclusive("root", "operation")
}

func (f *schemaFlags) isSet() bool {
	return f.xsdPath != "" || f.wsdlPath != ""
}

// load parses the selected schema root.
func (f *schemaFlags) load(ctx context.Context, log *slog.Logger) (*xsd.Node, error) {
	cache := xsd.NewCache(xsd.WithLogger(log))
	switch {
	case f.wsdlPath != "":
		defs, err := wsdl.Load(ctx, f.wsdlPath)
		if err != nil {
			return nil, err
		}
		element, err := f.element(defs)
		if err != nil {
			return nil, err
		}
		return defs.ParseElement(ctx, cache, element)
	case f.xsdPath != "":
		if f.root == "" {
			return nil, fmt.Errorf("%w: --root is required with --xsd", ErrInvalidFlag)
		}
		p, err := cache.Get(ctx, f.xsdPath, xsd.NewFileSource())
		if err != nil {
			return nil, err
		}
		return p.Parse(ctx, f.root)
	default:
		return nil, ErrMissingSchema
	}
}

// element resolves the root element within a WSDL.
func (f *schemaFlags) element(defs *wsdl.Definitions) (wsdl.QName, error) {
	if f.operation != "" {
		op, err := defs.Operation(f.operation)
		if err != nil {
			return wsdl.QName{}, err
		}
		if !f.response {
			return op.Request, nil
		}
		if op.Response.IsZero() {
			return wsdl.QName{}, fmt.Errorf("%w: operation %s is one-way", ErrInvalidFlag, op.Name)
		}
		return op.Response, nil
	}
	if f.root == "" {
		return wsdl.QName{}, fmt.Errorf("%w: --root or --operation is required with --wsdl", ErrInvalidFlag)
	}

	ns := f.namespace
	if ns == "" {
		namespaces := defs.Namespaces()
		if len(namespaces) != 1 {
			return wsdl.QName{}, fmt.Errorf("%w: --ns is required, the WSDL embeds %d schemas (%s)",
				ErrInvalidFlag, len(namespaces), strings.Join(namespaces, ", "))
		}
		ns = namespaces[0]
	}
	return wsdl.QName{Namespace: ns, Local: f.root}, nil
}

// readInput reads a file, or stdin when path is empty or "-".
func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return data, nil
}
