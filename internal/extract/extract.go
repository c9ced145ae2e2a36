// Package extract turns local PDF files into embedding-ready text units.
//
// It uses ledongthuc/pdf (pure Go, no CGO) for text extraction and
// tiktoken-go for token-aware truncation of oversized pages.
package extract

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pkoukk/tiktoken-go"

	"github.com/docstackhq/docvec/internal/errors"
	"github.com/docstackhq/docvec/internal/store"
)

const defaultEncoding = "cl100k_base"

// Outcome is the result of extracting one document. Exactly one of Units or
// Skip is meaningful: a non-empty Skip means the document produced no units
// and says why.
type Outcome struct {
	Units []store.Unit
	Skip  string
}

// Skipped reports whether the document yielded no units.
func (o Outcome) Skipped() bool {
	return o.Skip != ""
}

// Extractor extracts per-page text units from PDF files.
type Extractor struct {
	maxPageTokens int
	encoder       *tiktoken.Tiktoken
	logger        *slog.Logger
}

// Options configures an Extractor.
type Options struct {
	// MaxPageTokens caps the token count of a single page's content.
	// Zero disables truncation.
	MaxPageTokens int

	// Encoding is the tiktoken encoding used for truncation.
	// Defaults to cl100k_base.
	Encoding string
}

// New creates an Extractor. The tiktoken encoder is only initialized when
// truncation is enabled.
func New(opts Options) (*Extractor, error) {
	e := &Extractor{
		maxPageTokens: opts.MaxPageTokens,
		logger:        slog.Default().With("component", "extract"),
	}

	if opts.MaxPageTokens > 0 {
		encoding := opts.Encoding
		if encoding == "" {
			encoding = defaultEncoding
		}
		encoder, err := tiktoken.GetEncoding(encoding)
		if err != nil {
			return nil, errors.ConfigError(fmt.Sprintf("unknown token encoding %q", encoding), err)
		}
		e.encoder = encoder
	}

	return e, nil
}

// Extract reads the PDF at path and returns one unit per non-blank page.
// A document that cannot be opened, or whose pages are all blank or
// unreadable, yields a skip outcome rather than an error; only the encoder
// misbehaving is reported as an error.
func (e *Extractor) Extract(path string) (Outcome, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		e.logger.Warn("failed to open pdf", "path", path, "error", err)
		return Outcome{Skip: fmt.Sprintf("unreadable pdf: %v", err)}, nil
	}
	defer func() { _ = f.Close() }()

	title := documentTitle(r, path)

	var units []store.Unit
	numPages := r.NumPage()
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			e.logger.Warn("failed to extract page", "path", path, "page", i, "error", err)
			continue
		}

		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		text, truncated := e.truncate(text)
		if truncated {
			e.logger.Debug("truncated oversized page",
				"path", path, "page", i, "max_tokens", e.maxPageTokens)
		}

		units = append(units, store.Unit{
			Content: text,
			Title:   title,
			Page:    i,
			Source:  path,
		})
	}

	if len(units) == 0 {
		return Outcome{Skip: "no extractable text (scanned or image-based)"}, nil
	}

	return Outcome{Units: units}, nil
}

// truncate caps text at maxPageTokens, re-decoding the kept prefix so the
// result stays valid at a token boundary.
func (e *Extractor) truncate(text string) (string, bool) {
	if e.encoder == nil || e.maxPageTokens <= 0 {
		return text, false
	}

	tokens := e.encoder.Encode(text, nil, nil)
	if len(tokens) <= e.maxPageTokens {
		return text, false
	}

	return e.encoder.Decode(tokens[:e.maxPageTokens]), true
}

// documentTitle prefers the Title entry of the PDF Info dictionary, falling
// back to the file name without extension.
func documentTitle(r *pdf.Reader, path string) string {
	info := r.Trailer().Key("Info")
	if !info.IsNull() {
		if title := strings.TrimSpace(info.Key("Title").Text()); title != "" {
			return title
		}
	}

	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
