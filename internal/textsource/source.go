package textsource

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	pdf "github.com/ledongthuc/pdf"

	"vega/internal/config"
)

// Source turns a contract PDF into plain text. The embedded text layer is
// preferred; a document whose trimmed text stays under MinTextChars is
// treated as scan-only and every page goes through rasterization plus OCR.
// Extraction errors are fatal to the run and never retried.
type Source struct {
	cfg     config.Config
	runner  Runner
	pdfText func(blob []byte) (string, error)
}

func New(cfg config.Config) *Source {
	return &Source{cfg: cfg, runner: execRunner{}, pdfText: extractTextLayer}
}

func (s *Source) Text(ctx context.Context, blob []byte) (string, error) {
	text, err := s.pdfText(blob)
	if err != nil {
		return "", fmt.Errorf("extract pdf text layer: %w", err)
	}
	if len(strings.TrimSpace(text)) >= s.cfg.MinTextChars {
		return text, nil
	}
	return s.ocr(ctx, blob)
}

func extractTextLayer(blob []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(blob), int64(len(blob)))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		b.WriteString(text)
	}
	return b.String(), nil
}

// ocr rasterizes every page with pdftoppm and recognizes each image with
// tesseract, one recognized segment per line, pages in order.
func (s *Source) ocr(ctx context.Context, blob []byte) (string, error) {
	tmpDir, err := os.MkdirTemp("", "vega-ocr-*")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(tmpDir)

	pdfPath := filepath.Join(tmpDir, "contract.pdf")
	if err := os.WriteFile(pdfPath, blob, 0o644); err != nil {
		return "", err
	}

	prefix := filepath.Join(tmpDir, "page")
	_, errb, err := s.runner.Run(ctx, s.cfg.PdftoppmBin, "-r", strconv.Itoa(s.cfg.OCRDPI), "-png", pdfPath, prefix)
	if err != nil {
		return "", fmt.Errorf("rasterize pdf: %w (%s)", err, strings.TrimSpace(string(errb)))
	}

	pages, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(pages)
	if len(pages) == 0 {
		return "", fmt.Errorf("rasterize pdf: no pages rendered")
	}

	var b strings.Builder
	for _, img := range pages {
		out, errb, err := s.runner.Run(ctx, s.cfg.TesseractBin, img, "stdout", "-l", s.cfg.OCRLang)
		if err != nil {
			return "", fmt.Errorf("ocr %s: %w (%s)", filepath.Base(img), err, strings.TrimSpace(string(errb)))
		}
		b.WriteString(strings.TrimRight(string(out), "\n"))
		b.WriteString("\n")
	}
	return b.String(), nil
}
