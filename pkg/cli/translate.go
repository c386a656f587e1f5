package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/beevik/etree"
	"github.com/spf13/cobra"

	"github.com/mcsuka/xml-xsd-json/pkg/config"
	"github.com/mcsuka/xml-xsd-json/pkg/soap"
	"github.com/mcsuka/xml-xsd-json/pkg/transcode"
)

type json2xmlFlags struct {
	schema         schemaFlags
	input          string
	noSchema       bool
	choiceFallback string
	soapVersion    string
	pretty         bool
}

type xml2jsonFlags struct {
	schema           schemaFlags
	input            string
	noSchema         bool
	ignoreAttributes bool
	envelope         bool
	pretty           bool
}

var (
	json2xmlOpts json2xmlFlags
	xml2jsonOpts xml2jsonFlags
)

var translateCmd = &cobra.Command{
	Use:   "translate",
	Short: "Translate documents between JSON and XML",
	Long: `Translate documents between JSON and XML using the same translators as the
gateway. The schema root is selected with --xsd and --root, or with --wsdl
and either --root (plus --ns when the WSDL embeds several schemas) or
--operation.`,
}

var json2xmlCmd = &cobra.Command{
	Use:   "json2xml",
	Short: "Translate a JSON document to XML",
	Example: `  # Schema guided, element order and namespaces follow the XSD
  rest2soap translate json2xml --xsd Order.xsd --root Order --input order.json

  # Build the SOAP request of a WSDL operation
  rest2soap translate json2xml --wsdl eCommerce.wsdl --operation PlaceOrder --soap 1.1 < order.json

  # Without a schema, elements are named after the JSON keys
  rest2soap translate json2xml --no-schema --root order --ns urn:orders --input order.json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := newLogger(config.LogConfig{}, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		return runJSONToXML(cmd.Context(), &json2xmlOpts, log, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

var xml2jsonCmd = &cobra.Command{
	Use:   "xml2json",
	Short: "Translate an XML document to JSON",
	Example: `  # Schema guided, leaf values are typed by the XSD
  rest2soap translate xml2json --xsd Order.xsd --root Order --input order.xml

  # Translate the body of a SOAP response
  rest2soap translate xml2json --wsdl eCommerce.wsdl --operation GetProduct --response --envelope < response.xml

  # Without a schema every leaf is a string
  rest2soap translate xml2json --no-schema --ignore-attributes --input fault.xml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := newLogger(config.LogConfig{}, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		return runXMLToJSON(cmd.Context(), &xml2jsonOpts, log, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func runJSONToXML(ctx context.Context, f *json2xmlFlags, log *slog.Logger, stdin io.Reader, stdout io.Writer) error {
	data, err := readInput(f.input, stdin)
	if err != nil {
		return err
	}
	v, err := transcode.ParseJSON(data)
	if err != nil {
		return err
	}

	var doc *etree.Document
	if f.noSchema {
		if f.schema.root == "" {
			return fmt.Errorf("%w: --root is required with --no-schema", ErrInvalidFlag)
		}
		doc = transcode.NewJSONToXML(nil).TranslateGeneric(v, f.schema.root, f.schema.namespace)
	} else {
		fallback, err := transcode.ParseChoiceFallback(f.choiceFallback)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidFlag, err)
		}
		node, err := f.schema.load(ctx, log)
		if err != nil {
			return err
		}
		doc, err = transcode.NewJSONToXML(node, transcode.WithChoiceFallback(fallback)).Translate(v)
		if err != nil {
			return err
		}
	}

	if f.soapVersion != "" {
		version, err := parseSOAPVersion(f.soapVersion)
		if err != nil {
			return err
		}
		doc = soap.Envelope(doc.Root(), version)
	}
	out, err := transcode.WriteXML(doc, f.pretty)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, out)
	return err
}

func runXMLToJSON(ctx context.Context, f *xml2jsonFlags, log *slog.Logger, stdin io.Reader, stdout io.Writer) error {
	data, err := readInput(f.input, stdin)
	if err != nil {
		return err
	}

	var root *etree.Element
	if f.envelope {
		msg, err := soap.ParseEnvelope(data)
		if err != nil {
			return err
		}
		if msg.Payload == nil {
			return errors.New("SOAP body is empty")
		}
		root = msg.Payload
	} else {
		doc, err := transcode.ParseXML(data)
		if err != nil {
			return err
		}
		root = doc.Root()
	}

	translator := transcode.NewXMLToJSON(nil, transcode.WithIgnoreAttributes(f.ignoreAttributes))
	if !f.noSchema {
		node, err := f.schema.load(ctx, log)
		if err != nil {
			return err
		}
		translator = transcode.NewXMLToJSON(node, transcode.WithIgnoreAttributes(f.ignoreAttributes))
	}
	v, err := translator.Translate(root)
	if err != nil {
		return err
	}

	var out []byte
	if f.pretty {
		out, err = transcode.MarshalIndent(v, "  ")
	} else {
		out, err = transcode.Marshal(v)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, string(out))
	return err
}

func parseSOAPVersion(s string) (soap.Version, error) {
	switch soap.Version(s) {
	case soap.SOAP11, soap.SOAP12:
		return soap.Version(s), nil
	}
	return "", fmt.Errorf("%w: SOAP version %q (must be 1.1 or 1.2)", ErrInvalidFlag, s)
}

func init() {
	json2xmlOpts.schema.register(json2xmlCmd)
	fl := json2xmlCmd.Flags()
	fl.StringVarP(&json2xmlOpts.input, "input", "i", "", "Input file (default: stdin)")
	fl.BoolVar(&json2xmlOpts.noSchema, "no-schema", false, "Name elements after the JSON keys instead of following a schema")
	fl.StringVar(&json2xmlOpts.choiceFallback, "choice-fallback", "first", "Unmatched mandatory choice: first or none")
	fl.StringVar(&json2xmlOpts.soapVersion, "soap", "", "Wrap the result in a SOAP envelope: 1.1 or 1.2")
	fl.BoolVar(&json2xmlOpts.pretty, "pretty", false, "Indent the output")

	xml2jsonOpts.schema.register(xml2jsonCmd)
	fl = xml2jsonCmd.Flags()
	fl.StringVarP(&xml2jsonOpts.input, "input", "i", "", "Input file (default: stdin)")
	fl.BoolVar(&xml2jsonOpts.noSchema, "no-schema", false, "Translate without a schema, every leaf becomes a string")
	fl.BoolVar(&xml2jsonOpts.ignoreAttributes, "ignore-attributes", false, "Drop XML attributes")
	fl.BoolVar(&xml2jsonOpts.envelope, "envelope", false, "Input is a SOAP envelope, translate its body payload")
	fl.BoolVar(&xml2jsonOpts.pretty, "pretty", false, "Indent the output")

	translateCmd.AddCommand(json2xmlCmd, xml2jsonCmd)
	rootCmd.AddCommand(translateCmd)
}
