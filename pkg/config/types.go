package config

import "time"

// Parameter locations.
const (
	InPath   = "path"
	InQuery  = "query"
	InHeader = "header"
)

// Config is the gateway configuration.
type Config struct {
	Server      ServerConfig      `json:"server" yaml:"server"`
	Client      ClientConfig      `json:"client" yaml:"client"`
	Log         LogConfig         `json:"log" yaml:"log"`
	Translation TranslationConfig `json:"translation" yaml:"translation"`

	// Services lists the REST endpoints inline.
	Services []Service `json:"services,omitempty" yaml:"services,omitempty"`

	// ServiceFiles lists glob patterns, relative to the configuration file,
	// of files holding further services.
	ServiceFiles []string `json:"serviceFiles,omitempty" yaml:"serviceFiles,omitempty"`
}

// ServerConfig configures the inbound REST server.
type ServerConfig struct {
	Host string `json:"host" yaml:"host"`
	Port int    `json:"port" yaml:"port"`

	// MaxPoolSize bounds the number of requests handled concurrently.
	MaxPoolSize int `json:"maxPoolSize" yaml:"maxPoolSize"`

	ReadTimeout     time.Duration `json:"readTimeout" yaml:"readTimeout"`
	WriteTimeout    time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `json:"shutdownTimeout" yaml:"shutdownTimeout"`
}

// ClientConfig configures the outbound SOAP client.
type ClientConfig struct {
	// MaxPoolSize bounds the connections per SOAP host.
	MaxPoolSize    int           `json:"maxPoolSize" yaml:"maxPoolSize"`
	KeepAlive      time.Duration `json:"keepAlive" yaml:"keepAlive"`
	ConnectTimeout time.Duration `json:"connectTimeout" yaml:"connectTimeout"`
	RequestTimeout time.Duration `json:"requestTimeout" yaml:"requestTimeout"`
}

// LogConfig selects the logger.
type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

// TranslationConfig holds translator policies.
type TranslationConfig struct {
	// ChoiceFallback is "first" or "none".
	ChoiceFallback string `json:"choiceFallback" yaml:"choiceFallback"`
}

// Service maps one REST endpoint to a SOAP operation.
type Service struct {
	Name        string      `json:"name" yaml:"name"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	TargetURL   string      `json:"targetUrl" yaml:"targetUrl"`
	RestPath    string      `json:"restPath" yaml:"restPath"`
	RestMethod  string      `json:"restMethod" yaml:"restMethod"`
	WSDL        string      `json:"wsdl" yaml:"wsdl"`
	Operation   string      `json:"operation" yaml:"operation"`
	Parameters  []Parameter `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// Parameter is a path, query or header value injected into the request
// body before translation.
type Parameter struct {
	Name        string `json:"name" yaml:"name"`
	In          string `json:"in" yaml:"in"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Required    bool   `json:"required,omitempty" yaml:"required,omitempty"`

	// MultiValue collects repeated query values into an array.
	MultiValue bool `json:"multiValue,omitempty" yaml:"multiValue,omitempty"`

	// Schema holds OpenAPI keywords. Its type selects the JSON type the
	// value is coerced to.
	Schema map[string]string `json:"schema,omitempty" yaml:"schema,omitempty"`

	// JSONPath is the key path of the value in the request body. It
	// defaults to the parameter name.
	JSONPath []string `json:"jsonPath,omitempty" yaml:"jsonPath,omitempty"`
}

// Type returns the declared schema type, or "string".
func (p Parameter) Type() string {
	if t := p.Schema["type"]; t != "" {
		return t
	}
	return "string"
}

// Path returns the body key path of the value.
func (p Parameter) Path() []string {
	if len(p.JSONPath) > 0 {
		return p.JSONPath
	}
	return []string{p.Name}
}

// Default returns a Config with every setting at its default.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			MaxPoolSize:     8,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Client: ClientConfig{
			MaxPoolSize:    4,
			KeepAlive:      time.Second,
			ConnectTimeout: 5 * time.Second,
			RequestTimeout: 30 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Translation: TranslationConfig{
			ChoiceFallback: "first",
		},
	}
}
