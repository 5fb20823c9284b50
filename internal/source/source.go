// Package source opens an infographic from an image or PDF file.
package source

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// Source yields one or more pages as images. Infographics use page 0; extra
// pages are only rendered by batch runs that ask for them.
type Source interface {
	PageCount() int
	Dimensions(index int) (width, height int, err error)
	Render(index int, dpi int) (image.Image, error)
	Close() error
}

// Open picks a source by file extension.
func Open(path string) (Source, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return NewPDFSource(path)
	case ".png", ".jpg", ".jpeg", ".webp":
		return NewImageSource(path)
	default:
		return nil, fmt.Errorf("unsupported input %s", path)
	}
}

// Load opens path and renders its first page.
func Load(path string, dpi int) (image.Image, error) {
	src, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	if src.PageCount() == 0 {
		return nil, fmt.Errorf("%s has no pages", path)
	}
	return src.Render(0, dpi)
}

// PDFSource растеризует страницы PDF через go-fitz (MuPDF).
type PDFSource struct {
	doc  *fitz.Document
	path string
}

func NewPDFSource(path string) (*PDFSource, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	return &PDFSource{doc: doc, path: path}, nil
}

func (s *PDFSource) PageCount() int {
	return s.doc.NumPage()
}

// Dimensions возвращает размер страницы в пунктах.
func (s *PDFSource) Dimensions(index int) (int, int, error) {
	rect, err := s.doc.Bound(index)
	if err != nil {
		return 0, 0, err
	}
	return rect.Dx(), rect.Dy(), nil
}

func (s *PDFSource) Render(index int, dpi int) (image.Image, error) {
	if index < 0 || index >= s.doc.NumPage() {
		return nil, fmt.Errorf("page %d out of range", index)
	}
	if dpi <= 0 {
		dpi = 150
	}
	return s.doc.ImageDPI(index, float64(dpi))
}

func (s *PDFSource) Close() error {
	return s.doc.Close()
}
