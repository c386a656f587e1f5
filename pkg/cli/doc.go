// Package cli provides the command-line interface for rest2soap.
//
// Commands:
//   - serve: Run the REST to SOAP gateway
//   - translate json2xml|xml2json: Run the translators on a document
//   - schema dump|jsonschema|oas|operations: Inspect schemas, WSDLs and the OpenAPI document
//   - validate: Validate a JSON payload against a schema, or a configuration file
//   - init: Create a starter configuration file
//   - version: Show rest2soap version
//
// Schema roots are selected with --xsd and --root, or with --wsdl and either
// --operation (plus --response for the output message) or --root and --ns.
//
// Usage:
//
//	rest2soap serve --config rest2soap.yaml
//	rest2soap translate json2xml --wsdl eCommerce.wsdl --operation PlaceOrder --soap 1.1 < order.json
//	rest2soap translate xml2json --no-schema --input fault.xml
//	rest2soap schema dump --xsd Order.xsd --root Order
//	rest2soap schema oas > openapi.json
//	rest2soap validate --xsd Order.xsd --root Order --input order.json
package cli
