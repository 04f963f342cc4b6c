// Package textextract identifies uploaded compliance documents and reads
// what it can from them.
package textextract

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"strings"

	"github.com/ledongthuc/pdf"
)

var ErrUnsupportedType = errors.New("unsupported file type")

type Kind string

const (
	KindPDF  Kind = "pdf"
	KindPNG  Kind = "png"
	KindJPEG Kind = "jpeg"
)

// Document is what an upload was found to contain.
type Document struct {
	Kind        Kind
	ContentType string
	Ext         string
	Pages       int
	Width       int
	Height      int
	Text        string
}

// SupportedTypes lists the accepted content types.
func SupportedTypes() []string {
	return []string{"application/pdf", "image/png", "image/jpeg"}
}

// Inspect sniffs data and parses it enough to reject corrupt files. The
// declared content type of the upload is ignored.
func Inspect(data []byte) (*Document, error) {
	switch http.DetectContentType(data) {
	case "application/pdf":
		return inspectPDF(data)
	case "image/png":
		return inspectImage(data, KindPNG, "image/png", "png")
	case "image/jpeg":
		return inspectImage(data, KindJPEG, "image/jpeg", "jpg")
	}
	return nil, ErrUnsupportedType
}

func inspectPDF(data []byte) (*Document, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open PDF: %w", err)
	}

	numPages := reader.NumPage()
	if numPages < 1 {
		return nil, fmt.Errorf("PDF has no pages")
	}

	var buf strings.Builder
	for i := 1; i <= numPages && buf.Len() < 4096; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		buf.WriteString(text)
		buf.WriteString("\n")
	}

	return &Document{
		Kind:        KindPDF,
		ContentType: "application/pdf",
		Ext:         "pdf",
		Pages:       numPages,
		Text:        strings.TrimSpace(buf.String()),
	}, nil
}

func inspectImage(data []byte, kind Kind, contentType, ext string) (*Document, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", kind, err)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return nil, fmt.Errorf("%s has no pixels", kind)
	}
	return &Document{
		Kind:        kind,
		ContentType: contentType,
		Ext:         ext,
		Pages:       1,
		Width:       cfg.Width,
		Height:      cfg.Height,
	}, nil
}
