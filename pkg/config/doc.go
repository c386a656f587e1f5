// Package config loads and validates the rest2soap configuration.
//
// A configuration holds the inbound server settings, the outbound SOAP
// client settings, logging, translation policies and the list of services.
// Each service binds a REST method and path template to an operation of a
// WSDL document:
//
//	server:
//	  port: 8080
//	  maxPoolSize: 8
//	services:
//	  - name: getProduct
//	    restMethod: GET
//	    restPath: /products/{productId}
//	    targetUrl: http://localhost:8090/soap/ecommerce
//	    wsdl: eCommerce.wsdl
//	    operation: GetProduct
//	    parameters:
//	      - name: productId
//	        in: path
//	        jsonPath: [ProductId]
//	serviceFiles:
//	  - services/**/*.yaml
//
// Documents are YAML or JSON. ${VAR} and ${VAR:-default} references are
// expanded from the environment before parsing. The raw document is checked
// against an embedded JSON Schema, then decoded over Default and checked by
// Config.Validate.
package config
