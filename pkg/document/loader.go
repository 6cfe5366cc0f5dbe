package document

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

var ErrUnsupportedFormat = errors.New("unsupported document format")

// pageBreak separates pages in plain text exports.
const pageBreak = "\f"

// Loader reads reference documents into an ordered list of page texts.
type Loader struct{}

func NewLoader() *Loader {
	return &Loader{}
}

// LoadPages returns the pages of every path in order. PDF files yield one
// entry per page; text files are split on form feeds.
func (l *Loader) LoadPages(paths []string) ([]string, error) {
	var pages []string
	for _, path := range paths {
		var (
			filePages []string
			err       error
		)
		switch strings.ToLower(filepath.Ext(path)) {
		case ".pdf":
			filePages, err = loadPDF(path)
		case ".txt", ".md":
			filePages, err = loadText(path)
		default:
			err = fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
		}
		if err != nil {
			return nil, err
		}
		pages = append(pages, filePages...)
	}
	return pages, nil
}

func loadPDF(path string) ([]string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	pages := make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("read page %d of %s: %w", i, path, err)
		}
		pages = append(pages, text)
	}
	return pages, nil
}

func loadText(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	content := strings.ReplaceAll(string(raw), "\r\n", "\n")
	return strings.Split(content, pageBreak), nil
}
