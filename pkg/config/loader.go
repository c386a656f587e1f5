package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// Common errors for configuration loading/saving.
var (
	ErrFileNotFound     = errors.New("configuration file not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidJSON      = errors.New("invalid JSON syntax")
	ErrInvalidYAML      = errors.New("invalid YAML syntax")
	ErrEmptyFile        = errors.New("configuration file is empty")
	ErrInvalidConfig    = errors.New("invalid configuration")
)

// DiscoveryOrder lists the file names looked up in the working directory
// when no configuration path is given.
var DiscoveryOrder = []string{
	"rest2soap.yaml",
	"rest2soap.yml",
	"rest2soap.json",
}

// EnvConfig names the environment variable holding a configuration path.
const EnvConfig = "REST2SOAP_CONFIG"

// envVarPattern matches ${VAR_NAME} or ${VAR_NAME:-default}
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// LoadFile reads a configuration file, merges it over Default, appends the
// services of its serviceFiles and validates the result.
//
// Relative wsdl locations of services are resolved against the directory
// of the file that declares them.
func LoadFile(path string) (*Config, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}

	cfg, err := parse(data, path)
	if err != nil {
		return nil, err
	}

	baseDir := filepath.Dir(path)
	resolveWSDL(cfg.Services, baseDir)
	for _, pattern := range cfg.ServiceFiles {
		services, err := loadServiceGlob(pattern, baseDir)
		if err != nil {
			return nil, err
		}
		cfg.Services = append(cfg.Services, services...)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse reads a configuration document without touching the file system.
// Service files are not expanded.
func Parse(data []byte) (*Config, error) {
	cfg, err := parse(data, "")
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parse(data []byte, path string) (*Config, error) {
	expanded := []byte(ExpandEnvVars(string(data)))

	if isJSON(path) && !json.Valid(expanded) {
		return nil, fmt.Errorf("%w in file: %s", ErrInvalidJSON, path)
	}
	if err := ValidateDocument(expanded); err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(expanded, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}
	return cfg, nil
}

func readFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}
	return data, nil
}

func isJSON(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".json"
}

// serviceFile is the content of a service file: either a list of services
// or a document with a services key.
type serviceFile struct {
	Services []Service `yaml:"services"`
}

// loadServiceGlob loads services from the files matching pattern, in
// lexical order. A pattern without matches is not an error.
func loadServiceGlob(pattern, baseDir string) ([]Service, error) {
	if !filepath.IsAbs(pattern) {
		pattern = filepath.Join(baseDir, pattern)
	}
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("expanding glob pattern %q: %w", pattern, err)
	}
	sort.Strings(matches)

	var result []Service
	for _, match := range matches {
		services, err := loadServiceFile(match)
		if err != nil {
			rel, relErr := filepath.Rel(baseDir, match)
			if relErr != nil {
				rel = match
			}
			return nil, fmt.Errorf("loading %s: %w", rel, err)
		}
		result = append(result, services...)
	}
	return result, nil
}

func loadServiceFile(path string) ([]Service, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	expanded := []byte(ExpandEnvVars(string(data)))
	if isJSON(path) && !json.Valid(expanded) {
		return nil, fmt.Errorf("%w in file: %s", ErrInvalidJSON, path)
	}

	var node yaml.Node
	if err := yaml.Unmarshal(expanded, &node); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}
	if len(node.Content) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}

	var services []Service
	switch doc := node.Content[0]; doc.Kind {
	case yaml.SequenceNode:
		err = doc.Decode(&services)
	default:
		var file serviceFile
		err = doc.Decode(&file)
		services = file.Services
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}
	resolveWSDL(services, filepath.Dir(path))
	return services, nil
}

func resolveWSDL(services []Service, baseDir string) {
	for i := range services {
		loc := services[i].WSDL
		if loc == "" || strings.Contains(loc, "://") || filepath.IsAbs(loc) {
			continue
		}
		services[i].WSDL = filepath.Join(baseDir, loc)
	}
}

// Discover finds a configuration file through REST2SOAP_CONFIG or in the
// current directory.
func Discover() (string, error) {
	if envPath := os.Getenv(EnvConfig); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath, nil
		}
		return "", fmt.Errorf("%w: %s points to %s", ErrFileNotFound, EnvConfig, envPath)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting current directory: %w", err)
	}
	for _, name := range DiscoveryOrder {
		path := filepath.Join(cwd, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: run 'rest2soap init' to create one, or specify --config", ErrFileNotFound)
}

// SaveFile writes cfg as YAML, or JSON for a .json path, using an atomic
// rename. Parent directories are created.
func SaveFile(path string, cfg *Config) error {
	if cfg == nil {
		return errors.New("config cannot be nil")
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if isJSON(path) {
		// durations keep their string form by going through YAML
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		if data, err = json.MarshalIndent(doc, "", "  "); err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		data = append(data, '\n')
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}
	return nil
}

// ExpandEnvVars expands environment variables in the input string.
// Supports ${VAR_NAME} and ${VAR_NAME:-default} syntax.
func ExpandEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		submatch := envVarPattern.FindStringSubmatch(match)
		if len(submatch) < 2 {
			return match
		}
		if val := os.Getenv(submatch[1]); val != "" {
			return val
		}
		if len(submatch) >= 3 {
			return submatch[2]
		}
		return ""
	})
}
