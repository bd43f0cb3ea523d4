// Package jsonutil wraps github.com/go-json-experiment/json behind an
// encoding/json-shaped API. Report bundles and API payloads can be large
// (tens of thousands of findings), so the faster encoder is used everywhere
// instead of mixing both libraries across the tree.
package jsonutil

import (
	"io"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// Unmarshal parses the JSON-encoded data and stores the result in v.
func Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// Marshal returns the JSON encoding of v.
func Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// MarshalIndent returns the JSON encoding of v indented with indent.
// The prefix argument exists for encoding/json signature parity and is
// ignored.
func MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	return json.Marshal(v, jsontext.WithIndent(indent))
}

// Valid reports whether data is a valid JSON encoding.
func Valid(data []byte) bool {
	return jsontext.Value(data).IsValid()
}

// Encoder is a streaming encoder with encoding/json.Encoder semantics:
// one value per Encode call, trailing newline included.
type Encoder struct {
	w      io.Writer
	indent string
}

// NewStreamEncoder returns an encoder writing to w.
func NewStreamEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// SetIndent formats each subsequent value with the given indentation.
// The prefix argument is ignored, matching MarshalIndent.
func (e *Encoder) SetIndent(prefix, indent string) {
	e.indent = indent
}

// Encode writes the JSON encoding of v followed by a newline.
func (e *Encoder) Encode(v any) error {
	var err error
	if e.indent != "" {
		err = json.MarshalWrite(e.w, v, jsontext.WithIndent(e.indent))
	} else {
		err = json.MarshalWrite(e.w, v)
	}
	if err != nil {
		return err
	}
	_, err = e.w.Write([]byte{'\n'})
	return err
}

// Decoder is a streaming decoder with encoding/json.Decoder semantics.
type Decoder struct {
	r io.Reader
}

// NewStreamDecoder returns a decoder reading from r.
func NewStreamDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r}
}

// Decode reads the next JSON value from the stream into v.
func (d *Decoder) Decode(v any) error {
	return json.UnmarshalRead(d.r, v)
}
