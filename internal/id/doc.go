// Package id provides correlation identifiers for gateway requests.
//
// A request keeps the X-Correlation-Id it arrived with; otherwise a random
// UUID is generated. The identifier is logged and forwarded to the SOAP
// backend.
package id
