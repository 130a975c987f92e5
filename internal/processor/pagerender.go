// pagerender.go - Rasterizes uploaded documents into ordered page images

package processor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
)

// PDF, JPEG and PNG magic bytes for source detection
var (
	pdfMagic  = []byte("%PDF")
	jpegMagic = []byte{0xFF, 0xD8, 0xFF}
	pngMagic  = []byte{0x89, 0x50, 0x4E, 0x47}
)

// SourceKind discriminates between a paginated document and an
// already-rasterized image upload.
type SourceKind int

const (
	SourceUnknown SourceKind = iota
	SourcePDF
	SourceImage
)

// PageImage is one rasterized page. The sequence handed to the extraction
// orchestrator preserves source page order and is capped at the configured
// page limit.
type PageImage struct {
	Number   int    // 1-based page number
	Data     []byte // encoded pixel buffer
	MIMEType string
	Width    int
	Height   int
}

// DetectSourceKind inspects magic bytes to classify an upload.
func DetectSourceKind(raw []byte) SourceKind {
	if len(raw) < 4 {
		return SourceUnknown
	}
	switch {
	case bytes.HasPrefix(raw, pdfMagic):
		return SourcePDF
	case bytes.HasPrefix(raw, jpegMagic), bytes.HasPrefix(raw, pngMagic):
		return SourceImage
	default:
		return SourceUnknown
	}
}

// RenderPages converts raw document bytes into an ordered page-image
// sequence truncated to the first maxPages pages. PDFs are rendered through
// pdftoppm at the given DPI; image uploads become a single page.
func RenderPages(ctx context.Context, raw []byte, kind SourceKind, maxPages, dpi int) ([]PageImage, error) {
	if maxPages <= 0 {
		maxPages = 5
	}
	if dpi <= 0 {
		dpi = 200
	}

	switch kind {
	case SourcePDF:
		return renderPDF(ctx, raw, maxPages, dpi)
	case SourceImage:
		page, err := decodeImagePage(raw)
		if err != nil {
			return nil, err
		}
		return []PageImage{page}, nil
	default:
		return nil, errors.New("unsupported upload type: expected PDF, PNG or JPEG")
	}
}

// renderPDF shells out to pdftoppm, collecting the rendered pages in source
// order from a temp directory.
func renderPDF(ctx context.Context, raw []byte, maxPages, dpi int) ([]PageImage, error) {
	workDir, err := os.MkdirTemp("", "guarantee-pages-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	pdfPath := filepath.Join(workDir, "upload.pdf")
	if err := os.WriteFile(pdfPath, raw, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write upload: %w", err)
	}

	prefix := filepath.Join(workDir, "page")
	args := []string{
		"-png",
		"-r", strconv.Itoa(dpi),
		"-f", "1",
		"-l", strconv.Itoa(maxPages),
		pdfPath,
		prefix,
	}
	cmd := exec.CommandContext(ctx, "pdftoppm", args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("pdftoppm failed: %w (%s)", err, strings.TrimSpace(stderr.String()))
	}

	matches, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, errors.New("no rendered pages found")
	}
	sort.Slice(matches, func(i, j int) bool {
		return PageIndexFromName(matches[i]) < PageIndexFromName(matches[j])
	})
	if len(matches) > maxPages {
		matches = matches[:maxPages]
	}

	pages := make([]PageImage, 0, len(matches))
	for i, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read rendered page: %w", err)
		}
		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to decode rendered page %d: %w", i+1, err)
		}
		pages = append(pages, PageImage{
			Number:   i + 1,
			Data:     data,
			MIMEType: "image/png",
			Width:    cfg.Width,
			Height:   cfg.Height,
		})
	}
	return pages, nil
}

// decodeImagePage normalizes an image upload into a single PNG page.
func decodeImagePage(raw []byte) (PageImage, error) {
	img, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return PageImage{}, fmt.Errorf("failed to decode image upload: %w", err)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return PageImage{}, fmt.Errorf("failed to encode page: %w", err)
	}

	bounds := img.Bounds()
	return PageImage{
		Number:   1,
		Data:     buf.Bytes(),
		MIMEType: "image/png",
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
	}, nil
}

// PageIndexFromName extracts the numeric page suffix pdftoppm appends
// ("page-3.png" -> 3). Unparseable names sort last.
func PageIndexFromName(name string) int {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	idx := strings.LastIndex(base, "-")
	if idx == -1 {
		return int(^uint(0) >> 1)
	}
	n, err := strconv.Atoi(base[idx+1:])
	if err != nil {
		return int(^uint(0) >> 1)
	}
	return n
}
