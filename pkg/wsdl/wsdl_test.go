package wsdl

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcsuka/xml-xsd-json/pkg/soap"
	"github.com/mcsuka/xml-xsd-json/pkg/transcode"
	"github.com/mcsuka/xml-xsd-json/pkg/xsd"
)

const ecommerceNS = "http://example.com/ecommerce/schema"

func loadTestWSDL(t *testing.T, name string) *Definitions {
	t.Helper()
	defs, err := Load(context.Background(), filepath.Join("testdata", name))
	require.NoError(t, err, "failed to load test WSDL %s", name)
	return defs
}

func TestLoad_ECommerce(t *testing.T) {
	defs := loadTestWSDL(t, "eCommerce.wsdl")

	assert.Equal(t, "ECommerceService", defs.Name)
	assert.Equal(t, "http://example.com/ecommerce", defs.TargetNamespace)
	assert.Equal(t, []string{"GetProduct", "PlaceOrder"}, defs.Operations())
	assert.Equal(t, []string{ecommerceNS}, defs.Namespaces())
	require.Len(t, defs.Messages, 4)
	require.Len(t, defs.Bindings, 1)
	assert.Equal(t, soap.SOAP11, defs.Bindings[0].Version)
	assert.Equal(t, QName{Namespace: "http://example.com/ecommerce", Local: "ECommercePortType"}, defs.Bindings[0].Type)

	msg, ok := defs.Message("PlaceOrderRequest")
	require.True(t, ok)
	assert.Equal(t, QName{Namespace: ecommerceNS, Local: "Order"}, msg.Parts[0].Element)
}

func TestDefinitions_Operation(t *testing.T) {
	defs := loadTestWSDL(t, "eCommerce.wsdl")

	tests := []struct {
		name     string
		action   string
		request  string
		response string
	}{
		{"GetProduct", "http://example.com/ecommerce/GetProduct", "ProductReference", "Product"},
		{"PlaceOrder", "http://example.com/ecommerce/PlaceOrder", "Order", "OrderConfirmation"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op, err := defs.Operation(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.action, op.SOAPAction)
			assert.Equal(t, soap.SOAP11, op.Version)
			assert.Equal(t, "document", op.Style)
			assert.Equal(t, QName{Namespace: ecommerceNS, Local: tt.request}, op.Request)
			assert.Equal(t, QName{Namespace: ecommerceNS, Local: tt.response}, op.Response)
			assert.Equal(t, "http://localhost:8090/soap/ecommerce", op.Address)
		})
	}

	_, err := defs.Operation("CancelOrder")
	assert.ErrorIs(t, err, ErrOperationNotFound)
}

func TestDefinitions_SOAP12(t *testing.T) {
	defs := loadTestWSDL(t, "Calculator12.wsdl")

	op, err := defs.Operation("Add")
	require.NoError(t, err)
	assert.Equal(t, soap.SOAP12, op.Version)
	assert.Equal(t, "urn:calc:Add", op.SOAPAction)
	assert.Equal(t, "http://calc.example.com/soap12", op.Address)
	assert.Equal(t, "{urn:calc:types}Add", op.Request.String())
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(context.Background(), "testdata/missing.wsdl")
	var werr *Error
	require.True(t, errors.As(err, &werr))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(context.Background(), "testdata/NotWSDL.xml")
	require.True(t, errors.As(err, &werr))
	assert.Contains(t, err.Error(), "<catalog>")

	_, err = Parse([]byte("<definitions"), "inline")
	require.True(t, errors.As(err, &werr))
	assert.Equal(t, "inline", werr.Location)
}

func TestLoad_HTTP(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "eCommerce.wsdl"))
	require.NoError(t, err)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/xml")
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	defs, err := Load(context.Background(), srv.URL+"/ecommerce?wsdl", WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/ecommerce?wsdl", defs.Location)
	assert.Equal(t, []string{"GetProduct", "PlaceOrder"}, defs.Operations())
}

func TestSource_EmbeddedSchemas(t *testing.T) {
	ctx := context.Background()
	defs := loadTestWSDL(t, "eCommerce.wsdl")
	cache := xsd.NewCache()

	op, err := defs.Operation("PlaceOrder")
	require.NoError(t, err)
	order, err := defs.ParseElement(ctx, cache, op.Request)
	require.NoError(t, err)
	assert.Equal(t, "Order", order.Name())
	assert.Equal(t, ecommerceNS, order.Namespace())

	product := order.Child("Products").Child("Product")
	require.NotNil(t, product)
	assert.Equal(t, xsd.Unbounded, product.MaxOccurs())
	assert.Equal(t, xsd.Double, product.Child("Price").Type())

	// both operations share one parser for the namespace
	_, err = defs.ParseElement(ctx, cache, QName{Namespace: ecommerceNS, Local: "ProductReference"})
	require.NoError(t, err)
	assert.Equal(t, 1, cache.Len())

	_, err = defs.ParseElement(ctx, cache, QName{Namespace: "urn:unknown", Local: "x"})
	assert.ErrorIs(t, err, xsd.ErrDocumentSource)
}

func TestSource_ImportBetweenEmbeddedSchemas(t *testing.T) {
	ctx := context.Background()
	defs := loadTestWSDL(t, "Calculator12.wsdl")
	cache := xsd.NewCache()

	op, err := defs.Operation("Add")
	require.NoError(t, err)
	add, err := defs.ParseElement(ctx, cache, op.Request)
	require.NoError(t, err)
	assert.Equal(t, 2, cache.Len())

	a := add.Child("operands").Child("a")
	require.NotNil(t, a)
	assert.Equal(t, xsd.Integer, a.Type())
	assert.False(t, a.IsQualified())

	doc, err := transcode.NewJSONToXML(add).TranslateBytes([]byte(`{"operands":{"b":2,"a":1}}`))
	require.NoError(t, err)
	out, err := doc.WriteToString()
	require.NoError(t, err)
	assert.Equal(t,
		`<ns0:Add xmlns:ns0="urn:calc:types"><ns0:operands><a>1</a><b>2</b></ns0:operands></ns0:Add>`,
		out)
}

func TestSource_CacheKeyIsScopedToWSDL(t *testing.T) {
	ctx := context.Background()
	cache := xsd.NewCache()

	first := loadTestWSDL(t, "eCommerce.wsdl")
	second, err := Parse(mustRead(t, "eCommerce.wsdl"), "copy-of-ecommerce.wsdl")
	require.NoError(t, err)

	_, err = first.ParseElement(ctx, cache, QName{Namespace: ecommerceNS, Local: "Order"})
	require.NoError(t, err)
	_, err = second.ParseElement(ctx, cache, QName{Namespace: ecommerceNS, Local: "Order"})
	require.NoError(t, err)
	assert.Equal(t, 2, cache.Len())

	assert.NotContains(t, first.Source().Prefixes(), "")
	assert.Equal(t, ecommerceNS, first.Source().Prefixes()["ec"])
}

func mustRead(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return data
}
