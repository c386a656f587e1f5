package config

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mcsuka/xml-xsd-json/internal/matching"
	"github.com/mcsuka/xml-xsd-json/pkg/logging"
	"github.com/mcsuka/xml-xsd-json/pkg/transcode"
)

// ValidationError is a single configuration problem.
type ValidationError struct {
	Path    string // Config path, e.g., "services[0].restPath"
	Message string
}

func (e ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// ValidationResult collects configuration problems.
type ValidationResult struct {
	Errors []ValidationError
}

// IsValid returns true if there are no validation errors.
func (r *ValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}

// Error returns a combined error message.
func (r *ValidationResult) Error() string {
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

// AddError adds a validation error.
func (r *ValidationResult) AddError(path, message string) {
	r.Errors = append(r.Errors, ValidationError{Path: path, Message: message})
}

var validMethods = map[string]bool{
	http.MethodGet:    true,
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
}

// reservedPaths are served by the gateway itself on GET.
var reservedPaths = map[string]string{
	"/oas.json": "the OpenAPI document",
	"/metrics":  "metrics",
}

var validTypes = map[string]bool{
	"string":  true,
	"integer": true,
	"number":  true,
	"boolean": true,
}

// Validate checks the settings and every service. The returned error wraps
// ErrInvalidConfig.
func (c *Config) Validate() error {
	result := c.Check()
	if result.IsValid() {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, result.Error())
}

// Check returns every problem found in c.
func (c *Config) Check() *ValidationResult {
	result := &ValidationResult{}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		result.AddError("server.port", fmt.Sprintf("invalid port %d, must be 1-65535", c.Server.Port))
	}
	if c.Server.MaxPoolSize < 2 {
		result.AddError("server.maxPoolSize", "must be at least 2")
	}
	if c.Client.MaxPoolSize < 2 {
		result.AddError("client.maxPoolSize", "must be at least 2")
	}
	for _, d := range []struct {
		path  string
		value time.Duration
	}{
		{"server.readTimeout", c.Server.ReadTimeout},
		{"server.writeTimeout", c.Server.WriteTimeout},
		{"server.shutdownTimeout", c.Server.ShutdownTimeout},
		{"client.keepAlive", c.Client.KeepAlive},
		{"client.connectTimeout", c.Client.ConnectTimeout},
		{"client.requestTimeout", c.Client.RequestTimeout},
	} {
		if d.value < 0 {
			result.AddError(d.path, "must not be negative")
		}
	}
	if _, ok := logging.LookupLevel(c.Log.Level); !ok {
		result.AddError("log.level", fmt.Sprintf("unknown level %q", c.Log.Level))
	}
	if _, ok := logging.LookupFormat(c.Log.Format); !ok {
		result.AddError("log.format", fmt.Sprintf("unknown format %q", c.Log.Format))
	}
	if _, err := transcode.ParseChoiceFallback(c.Translation.ChoiceFallback); err != nil {
		result.AddError("translation.choiceFallback", err.Error())
	}

	names := map[string]bool{}
	routes := map[string]string{}
	for i := range c.Services {
		validateService(&c.Services[i], fmt.Sprintf("services[%d]", i), names, routes, result)
	}
	return result
}

func validateService(s *Service, path string, names map[string]bool, routes map[string]string, result *ValidationResult) {
	if s.Name == "" {
		result.AddError(path+".name", "required")
	} else {
		if names[s.Name] {
			result.AddError(path+".name", fmt.Sprintf("duplicate service name %q", s.Name))
		}
		names[s.Name] = true
	}

	if s.TargetURL == "" {
		result.AddError(path+".targetUrl", "required")
	} else if u, err := url.Parse(s.TargetURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		result.AddError(path+".targetUrl", fmt.Sprintf("invalid URL %q, must be http or https", s.TargetURL))
	}
	if s.WSDL == "" {
		result.AddError(path+".wsdl", "required")
	}
	if s.Operation == "" {
		result.AddError(path+".operation", "required")
	}

	method := strings.ToUpper(s.RestMethod)
	if !validMethods[method] {
		result.AddError(path+".restMethod", fmt.Sprintf("unsupported method %q", s.RestMethod))
	}

	tmpl, err := matching.ParseTemplate(s.RestPath)
	if err != nil {
		result.AddError(path+".restPath", err.Error())
	} else {
		if what, ok := reservedPaths[tmpl.Pattern()]; ok && method == http.MethodGet {
			result.AddError(path+".restPath", fmt.Sprintf("GET %s is reserved for %s", tmpl.Pattern(), what))
		}
		key := method + " " + tmpl.Pattern()
		if other, ok := routes[key]; ok {
			result.AddError(path+".restPath", fmt.Sprintf("%s %s is already served by %q", method, s.RestPath, other))
		}
		routes[key] = s.Name
	}

	for i, p := range s.Parameters {
		ppath := fmt.Sprintf("%s.parameters[%d]", path, i)
		if p.Name == "" {
			result.AddError(ppath+".name", "required")
		}
		switch p.In {
		case InPath:
			if tmpl != nil && !tmpl.Has(p.Name) {
				result.AddError(ppath+".name", fmt.Sprintf("path parameter %q does not appear in %s", p.Name, s.RestPath))
			}
		case InQuery, InHeader:
		default:
			result.AddError(ppath+".in", fmt.Sprintf("invalid location %q, must be path, query or header", p.In))
		}
		if p.MultiValue && p.In != InQuery {
			result.AddError(ppath+".multiValue", "only query parameters can have multiple values")
		}
		if !validTypes[p.Type()] {
			result.AddError(ppath+".schema.type", fmt.Sprintf("unsupported type %q", p.Type()))
		}
		for _, key := range p.JSONPath {
			if key == "" {
				result.AddError(ppath+".jsonPath", "keys must not be empty")
			}
		}
	}
}
