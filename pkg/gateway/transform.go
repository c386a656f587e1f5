package gateway

import (
	"fmt"
	"net/http"

	"github.com/mcsuka/xml-xsd-json/pkg/soap"
	"github.com/mcsuka/xml-xsd-json/pkg/transcode"
)

// Response is a REST response produced from a SOAP response.
type Response struct {
	Status int
	Body   []byte
}

// BuildRequest translates a JSON request value into the SOAP envelope of
// the service operation.
func (s *Service) BuildRequest(v any) ([]byte, error) {
	doc, err := s.toXML.Translate(v)
	if err != nil {
		return nil, fmt.Errorf("translate request: %w", err)
	}
	return soap.Marshal(doc.Root(), s.Operation.Version)
}

// TranslateResponse turns a SOAP response into a REST response.
//
// A 200 response carrying a body payload is translated along the response
// schema; when the result is null or an empty object the status becomes
// 404. Any other response, faults included, is translated without schema
// and keeps its status.
func (s *Service) TranslateResponse(status int, data []byte) (*Response, error) {
	msg, err := soap.ParseEnvelope(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackend, err)
	}

	if status == http.StatusOK && msg.IsEnvelope() && msg.Payload != nil {
		v, err := s.toJSON.Translate(msg.Payload)
		if err != nil {
			return nil, fmt.Errorf("translate response: %w", err)
		}
		if isEmpty(v) {
			status = http.StatusNotFound
		}
		return encodeResponse(status, v)
	}

	root := msg.Payload
	if msg.IsEnvelope() && root == nil {
		root = msg.Envelope
	}
	v, err := transcode.NewXMLToJSON(nil, transcode.WithIgnoreAttributes(true)).Translate(root)
	if err != nil {
		return nil, fmt.Errorf("translate response: %w", err)
	}
	return encodeResponse(status, v)
}

func encodeResponse(status int, v any) (*Response, error) {
	body, err := transcode.Marshal(v)
	if err != nil {
		return nil, err
	}
	return &Response{Status: status, Body: body}, nil
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	obj, ok := v.(*transcode.Object)
	return ok && obj.Len() == 0
}
