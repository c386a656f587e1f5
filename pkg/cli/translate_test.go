package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcsuka/xml-xsd-json/pkg/logging"
	"github.com/mcsuka/xml-xsd-json/pkg/transcode"
	"github.com/mcsuka/xml-xsd-json/pkg/wsdl"
)

const ecommerceNS = "http://example.com/ecommerce/schema"

var (
	orderXSD      = filepath.Join("testdata", "Order.xsd")
	ecommerceWSDL = filepath.Join("testdata", "eCommerce.wsdl")
)

func TestRunJSONToXML(t *testing.T) {
	tests := []struct {
		name  string
		flags json2xmlFlags
		stdin string
		want  string
	}{
		{
			name:  "xsd",
			flags: json2xmlFlags{schema: schemaFlags{xsdPath: orderXSD, root: "Order"}, input: filepath.Join("testdata", "order.json")},
			want: `<ns0:Order xmlns:ns0="urn:example">` +
				`<ns0:OrderId>24252542</ns0:OrderId>` +
				`<ns0:CustomerName>Joe</ns0:CustomerName>` +
				`<ns0:Products><ns0:Product><ns0:ProductId>prod-001</ns0:ProductId><ns0:ProductName>Red Apple</ns0:ProductName><ns0:Price>1.5</ns0:Price></ns0:Product></ns0:Products>` +
				`</ns0:Order>`,
		},
		{
			name:  "wsdl operation in a SOAP envelope",
			flags: json2xmlFlags{schema: schemaFlags{wsdlPath: ecommerceWSDL, operation: "GetProduct"}, soapVersion: "1.1"},
			stdin: `{"ProductId":"P1"}`,
			want: `<?xml version="1.0" encoding="UTF-8"?>` +
				`<SOAP-ENV:Envelope xmlns:SOAP-ENV="http://schemas.xmlsoap.org/soap/envelope/"><SOAP-ENV:Body>` +
				`<ns0:ProductReference xmlns:ns0="` + ecommerceNS + `"><ns0:ProductId>P1</ns0:ProductId></ns0:ProductReference>` +
				`</SOAP-ENV:Body></SOAP-ENV:Envelope>`,
		},
		{
			name:  "wsdl root with the only namespace",
			flags: json2xmlFlags{schema: schemaFlags{wsdlPath: ecommerceWSDL, root: "ProductReference"}},
			stdin: `{"ProductId":"P2"}`,
			want:  `<ns0:ProductReference xmlns:ns0="` + ecommerceNS + `"><ns0:ProductId>P2</ns0:ProductId></ns0:ProductReference>`,
		},
		{
			name:  "no schema",
			flags: json2xmlFlags{schema: schemaFlags{root: "order", namespace: "urn:o"}, noSchema: true},
			stdin: `{"id":7,"tags":["a","b"]}`,
			want:  `<pfx:order xmlns:pfx="urn:o"><id>7</id><tags>a</tags><tags>b</tags></pfx:order>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := runJSONToXML(context.Background(), &tt.flags, logging.Nop(), strings.NewReader(tt.stdin), &out)
			require.NoError(t, err)
			assert.Equal(t, tt.want+"\n", out.String())
		})
	}
}

func TestRunJSONToXML_Errors(t *testing.T) {
	tests := []struct {
		name    string
		flags   json2xmlFlags
		stdin   string
		wantErr error
	}{
		{name: "no schema source", stdin: `{}`, wantErr: ErrMissingSchema},
		{name: "no-schema without root", flags: json2xmlFlags{noSchema: true}, stdin: `{}`, wantErr: ErrInvalidFlag},
		{name: "xsd without root", flags: json2xmlFlags{schema: schemaFlags{xsdPath: orderXSD}}, stdin: `{}`, wantErr: ErrInvalidFlag},
		{
			name:    "soap version",
			flags:   json2xmlFlags{schema: schemaFlags{xsdPath: orderXSD, root: "Order"}, soapVersion: "2.0"},
			stdin:   `{}`,
			wantErr: ErrInvalidFlag,
		},
		{
			name:    "choice fallback",
			flags:   json2xmlFlags{schema: schemaFlags{xsdPath: orderXSD, root: "Order"}, choiceFallback: "last"},
			stdin:   `{}`,
			wantErr: ErrInvalidFlag,
		},
		{
			name:    "malformed JSON",
			flags:   json2xmlFlags{schema: schemaFlags{xsdPath: orderXSD, root: "Order"}},
			stdin:   `{"OrderId":`,
			wantErr: transcode.ErrMalformedInput,
		},
		{
			name:    "unknown operation",
			flags:   json2xmlFlags{schema: schemaFlags{wsdlPath: ecommerceWSDL, operation: "Cancel"}},
			stdin:   `{}`,
			wantErr: wsdl.ErrOperationNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := runJSONToXML(context.Background(), &tt.flags, logging.Nop(), strings.NewReader(tt.stdin), &out)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, out.String())
		})
	}

	t.Run("missing input file", func(t *testing.T) {
		f := json2xmlFlags{noSchema: true, input: filepath.Join(t.TempDir(), "none.json")}
		err := runJSONToXML(context.Background(), &f, logging.Nop(), strings.NewReader(""), &bytes.Buffer{})
		assert.ErrorContains(t, err, "failed to read input")
	})
}

func TestRunXMLToJSON(t *testing.T) {
	tests := []struct {
		name  string
		flags xml2jsonFlags
		stdin string
		want  string
	}{
		{
			name:  "xsd",
			flags: xml2jsonFlags{schema: schemaFlags{xsdPath: orderXSD, root: "Order"}, input: filepath.Join("testdata", "order.xml")},
			want:  `{"OrderId":"24252542","CustomerName":"Joe","Products":{"Product":[{"ProductId":"prod-001","ProductName":"Red Apple","Price":1.5}]}}`,
		},
		{
			name: "wsdl response envelope",
			flags: xml2jsonFlags{
				schema:   schemaFlags{wsdlPath: ecommerceWSDL, operation: "GetProduct", response: true},
				input:    filepath.Join("testdata", "product-response.xml"),
				envelope: true,
			},
			want: `{"ProductId":"P1","ProductName":"Red Apple","Price":1.50,"InStock":true}`,
		},
		{
			name:  "no schema",
			flags: xml2jsonFlags{noSchema: true},
			stdin: `<Fault><faultcode>SOAP-ENV:Client</faultcode><faultstring>Forbidden</faultstring></Fault>`,
			want:  `{"faultcode":"SOAP-ENV:Client","faultstring":"Forbidden"}`,
		},
		{
			name:  "no schema ignoring attributes",
			flags: xml2jsonFlags{noSchema: true, ignoreAttributes: true},
			stdin: `<r a="1"><b>2</b></r>`,
			want:  `{"b":"2"}`,
		},
		{
			name:  "pretty",
			flags: xml2jsonFlags{noSchema: true, pretty: true},
			stdin: `<r><b>2</b></r>`,
			want:  "{\n  \"b\": \"2\"\n}",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := runXMLToJSON(context.Background(), &tt.flags, logging.Nop(), strings.NewReader(tt.stdin), &out)
			require.NoError(t, err)
			assert.Equal(t, tt.want+"\n", out.String())
		})
	}
}

func TestRunXMLToJSON_Errors(t *testing.T) {
	tests := []struct {
		name    string
		flags   xml2jsonFlags
		stdin   string
		wantMsg string
	}{
		{name: "malformed", flags: xml2jsonFlags{noSchema: true}, stdin: `<r>`, wantMsg: "malformed"},
		{name: "empty body", flags: xml2jsonFlags{noSchema: true, envelope: true},
			stdin:   `<e:Envelope xmlns:e="http://schemas.xmlsoap.org/soap/envelope/"><e:Body/></e:Envelope>`,
			wantMsg: "SOAP body is empty"},
		{name: "unknown namespace", flags: xml2jsonFlags{schema: schemaFlags{wsdlPath: ecommerceWSDL, root: "Product", namespace: "urn:missing"}},
			stdin:   `<Product/>`,
			wantMsg: "urn:missing"},
		{name: "coercion", flags: xml2jsonFlags{schema: schemaFlags{xsdPath: orderXSD, root: "Order"}},
			stdin:   `<o:Order xmlns:o="urn:example"><o:Products><o:Product><o:Price>cheap</o:Price></o:Product></o:Products></o:Order>`,
			wantMsg: "cheap"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := runXMLToJSON(context.Background(), &tt.flags, logging.Nop(), strings.NewReader(tt.stdin), &bytes.Buffer{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestParseSOAPVersion(t *testing.T) {
	v, err := parseSOAPVersion("1.2")
	require.NoError(t, err)
	assert.Equal(t, "1.2", string(v))

	_, err = parseSOAPVersion("")
	assert.ErrorIs(t, err, ErrInvalidFlag)
}
