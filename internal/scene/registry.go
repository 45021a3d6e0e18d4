package scene

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/drawing-board/backend/internal/models"
)

// Format is one serialized form of a scene document.
type Format interface {
	Name() string
	Extension() string
	MIMEType() string
	// Sniff reports whether data looks like this format.
	Sniff(data []byte) bool
	Encode(s models.Scene) ([]byte, error)
	Decode(data []byte) (models.Scene, error)
}

// Registry holds the document formats and detects which one an upload uses.
type Registry struct {
	formats []Format
}

var defaultRegistry = NewRegistry()

func NewRegistry() *Registry {
	return &Registry{
		formats: []Format{
			jsonFormat{},
			msgpackFormat{},
		},
	}
}

// DefaultRegistry returns the shared registry.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Register adds a format. Formats registered later are sniffed last.
func (r *Registry) Register(f Format) {
	r.formats = append(r.formats, f)
}

// Detect returns the first format whose sniffer accepts data.
func (r *Registry) Detect(data []byte) (Format, error) {
	for _, f := range r.formats {
		if f.Sniff(data) {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w: unrecognized document format", ErrMalformedDocument)
}

// ByName returns a format by its name, case-insensitively.
func (r *Registry) ByName(name string) (Format, error) {
	name = strings.ToLower(name)
	for _, f := range r.formats {
		if strings.ToLower(f.Name()) == name {
			return f, nil
		}
	}
	return nil, fmt.Errorf("document format not found: %s", name)
}

// Names lists the registered formats in sniffing order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.formats))
	for i, f := range r.formats {
		names[i] = f.Name()
	}
	return names
}

// DecodeAny detects the format of data and decodes it.
func (r *Registry) DecodeAny(data []byte) (models.Scene, Format, error) {
	f, err := r.Detect(data)
	if err != nil {
		return models.Scene{}, nil, err
	}
	s, err := f.Decode(data)
	if err != nil {
		return models.Scene{}, f, err
	}
	return s, f, nil
}

type jsonFormat struct{}

func (jsonFormat) Name() string      { return "json" }
func (jsonFormat) Extension() string { return ".json" }
func (jsonFormat) MIMEType() string  { return "application/json" }

func (jsonFormat) Sniff(data []byte) bool {
	trimmed := bytes.TrimLeft(data, " \t\r\n\xef\xbb\xbf")
	return len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[')
}

func (jsonFormat) Encode(s models.Scene) ([]byte, error) { return Encode(s) }

func (jsonFormat) Decode(data []byte) (models.Scene, error) {
	return Decode(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")))
}

type msgpackFormat struct{}

func (msgpackFormat) Name() string      { return "msgpack" }
func (msgpackFormat) Extension() string { return ".msgpack" }
func (msgpackFormat) MIMEType() string  { return "application/x-msgpack" }

// Sniff accepts the three msgpack map headers: fixmap, map16 and map32.
func (msgpackFormat) Sniff(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	b := data[0]
	return (b >= 0x80 && b <= 0x8f) || b == 0xde || b == 0xdf
}

func (msgpackFormat) Encode(s models.Scene) ([]byte, error) { return EncodeMsgpack(s) }

func (msgpackFormat) Decode(data []byte) (models.Scene, error) { return DecodeMsgpack(data) }
