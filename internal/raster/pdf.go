package raster

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/jung-kurt/gofpdf"
)

// ExportPDF wraps the flattened image in a single-page PDF whose page is
// exactly the image size, one point per pixel.
func (e *Exporter) ExportPDF(buf image.Image, title string) ([]byte, string, error) {
	if err := CheckBuffer(buf); err != nil {
		return nil, "", err
	}
	img := ToNRGBA(buf)
	w, h := float64(img.Rect.Dx()), float64(img.Rect.Dy())

	var encoded bytes.Buffer
	if err := png.Encode(&encoded, img); err != nil {
		return nil, "", fmt.Errorf("encoding page image: %w", err)
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: w, Ht: h},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	if title == "" {
		title = e.label
	}
	pdf.SetTitle(title, true)
	pdf.SetCreator("drawing-board", true)
	pdf.AddPage()

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("board", opts, &encoded)
	pdf.ImageOptions("board", 0, 0, w, h, false, opts, 0, "")

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, "", fmt.Errorf("writing pdf: %w", err)
	}
	return out.Bytes(), e.Filename(".pdf"), nil
}
