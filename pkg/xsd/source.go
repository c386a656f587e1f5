package xsd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/net/html/charset"
)

// DocumentSource loads schema documents for a Parser.
type DocumentSource interface {
	// Load returns the parsed document at location.
	Load(ctx context.Context, location string) (*etree.Document, error)

	// Prefixes returns namespace prefixes declared outside the loaded
	// document, e.g. on the definitions element of a WSDL.
	Prefixes() map[string]string
}

// CacheKeyer is implemented by sources whose locations are only unique
// within the source, such as namespaces inside one WSDL.
type CacheKeyer interface {
	CacheKey(location string) string
}

// FileSource loads standalone XSD documents from file paths, file:// URLs
// and http(s):// URLs.
type FileSource struct {
	client *http.Client
}

// FileSourceOption configures a FileSource.
type FileSourceOption func(*FileSource)

// WithHTTPClient sets the client used for http(s) locations.
func WithHTTPClient(c *http.Client) FileSourceOption {
	return func(s *FileSource) {
		s.client = c
	}
}

// NewFileSource creates a FileSource.
func NewFileSource(opts ...FileSourceOption) *FileSource {
	s := &FileSource{client: http.DefaultClient}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load implements DocumentSource.
func (s *FileSource) Load(ctx context.Context, location string) (*etree.Document, error) {
	data, err := ReadLocation(ctx, s.client, location)
	if err != nil {
		return nil, &DocumentSourceError{Location: location, Cause: err}
	}
	doc, err := ParseXML(data)
	if err != nil {
		return nil, &DocumentSourceError{Location: location, Cause: err}
	}
	return doc, nil
}

// Prefixes implements DocumentSource. Standalone schemas declare their own.
func (s *FileSource) Prefixes() map[string]string {
	return nil
}

// ReadLocation reads the bytes behind a file path or URL.
func ReadLocation(ctx context.Context, client *http.Client, location string) ([]byte, error) {
	switch {
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		if client == nil {
			client = http.DefaultClient
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
		if err != nil {
			return nil, err
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		defer func() { _ = resp.Body.Close() }()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
		}
		return io.ReadAll(resp.Body)
	case strings.HasPrefix(location, "file://"):
		return os.ReadFile(strings.TrimPrefix(location, "file://"))
	default:
		return os.ReadFile(location)
	}
}

// ParseXML parses an XML document, honouring non UTF-8 encoding
// declarations.
func ParseXML(data []byte) (*etree.Document, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charset.NewReaderLabel
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, err
	}
	if doc.Root() == nil {
		return nil, errors.New("document has no root element")
	}
	return doc, nil
}
