// Package matching routes REST requests to services.
//
// A Template is a path such as "/orders/{orderId}/items" whose {name}
// segments match exactly one path segment each. A Router selects, among the
// routes whose method and template match a request, the most specific one:
// literal segments score higher than parameters, so "/orders/latest" wins
// over "/orders/{orderId}". Score constants are defined in scores.go.
//
// ParseQuery reads query strings the way the gateway injects them: a key
// without "=" is a flag with the value "true".
package matching
