// Package soap encodes and decodes SOAP 1.1 envelopes exchanged with the controller.
package soap

import (
	"bytes"
	"encoding/xml"
	"io"

	"github.com/cockroachdb/errors"
)

// EnvelopeNamespace is the SOAP 1.1 envelope namespace.
const EnvelopeNamespace = "http://schemas.xmlsoap.org/soap/envelope/"

type requestEnvelope struct {
	XMLName xml.Name    `xml:"soap:Envelope"`
	SoapNS  string      `xml:"xmlns:soap,attr"`
	Body    requestBody `xml:"soap:Body"`
}

type requestBody struct {
	Payload any
}

type responseEnvelope struct {
	XMLName xml.Name     `xml:"http://schemas.xmlsoap.org/soap/envelope/ Envelope"`
	Body    responseBody `xml:"http://schemas.xmlsoap.org/soap/envelope/ Body"`
}

type responseBody struct {
	Fault   *Fault `xml:"http://schemas.xmlsoap.org/soap/envelope/ Fault"`
	Content []byte `xml:",innerxml"`
}

// Marshal wraps payload into a SOAP envelope. The payload must be a struct
// whose XMLName names the operation element.
func Marshal(payload any) ([]byte, error) {
	if payload == nil {
		return nil, errors.New("soap payload is required")
	}

	env := requestEnvelope{
		SoapNS: EnvelopeNamespace,
		Body:   requestBody{Payload: payload},
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	if err := xml.NewEncoder(&buf).Encode(env); err != nil {
		return nil, errors.Wrap(err, "failed to encode SOAP envelope")
	}

	return buf.Bytes(), nil
}

// Unmarshal decodes a SOAP envelope and stores the first element of its body
// in out. A fault in the body is returned as a *Fault error.
func Unmarshal(data []byte, out any) error {
	var env responseEnvelope
	if err := xml.Unmarshal(data, &env); err != nil {
		return errors.Wrap(err, "failed to decode SOAP envelope")
	}

	if env.Body.Fault != nil {
		return env.Body.Fault
	}

	if len(bytes.TrimSpace(env.Body.Content)) == 0 {
		return errors.New("empty SOAP body")
	}

	if err := xml.Unmarshal(env.Body.Content, out); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty SOAP body")
		}
		return errors.Wrap(err, "failed to decode SOAP body")
	}

	return nil
}
