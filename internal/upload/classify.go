// Package upload reads and classifies files posted to a board.
package upload

import (
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/drawing-board/backend/internal/scene"
	"github.com/h2non/filetype"
)

// DefaultMaxSize caps uploads when no limit is configured.
const DefaultMaxSize = 20 << 20

// ErrTooLarge is returned when an upload (or its decompressed form) exceeds the limit.
var ErrTooLarge = errors.New("upload exceeds size limit")

// Kind is what an uploaded file turned out to be.
type Kind string

const (
	KindDocument Kind = "document"
	KindImage    Kind = "image"
	KindUnknown  Kind = "unknown"
)

// Classification describes a sniffed upload.
type Classification struct {
	Kind      Kind   `json:"kind"`
	MIMEType  string `json:"mimeType"`
	Extension string `json:"extension"`
}

// Classify sniffs data by content, never by filename. Images are recognized
// by magic bytes, documents by the scene format registry.
func Classify(data []byte, formats *scene.Registry) Classification {
	if filetype.IsImage(data) {
		kind, err := filetype.Match(data)
		if err == nil && kind != filetype.Unknown {
			return Classification{Kind: KindImage, MIMEType: kind.MIME.Value, Extension: kind.Extension}
		}
	}
	if formats == nil {
		formats = scene.DefaultRegistry()
	}
	if f, err := formats.Detect(data); err == nil {
		return Classification{Kind: KindDocument, MIMEType: f.MIMEType(), Extension: f.Extension()}
	}
	return Classification{Kind: KindUnknown, MIMEType: "application/octet-stream"}
}

// ReadFile reads a multipart file into memory, enforcing limit (0 means
// DefaultMaxSize). Gzip-compressed uploads are decompressed under the same limit.
func ReadFile(fh *multipart.FileHeader, limit int64) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("opening upload: %w", err)
	}
	defer f.Close()
	return Read(f, limit)
}

// Read is ReadFile for an arbitrary reader.
func Read(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		limit = DefaultMaxSize
	}
	data, err := readLimited(r, limit)
	if err != nil {
		return nil, err
	}
	if !filetype.Is(data, "gz") {
		return data, nil
	}

	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("opening gzip upload: %w", err)
	}
	defer zr.Close()
	return readLimited(zr, limit)
}

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, limit)
	}
	return data, nil
}
