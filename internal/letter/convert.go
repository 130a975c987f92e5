// convert.go - Word to PDF conversion via LibreOffice

package letter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// ErrConverterUnavailable signals that no LibreOffice binary is installed.
// Callers fall back to offering the Word document only.
var ErrConverterUnavailable = errors.New("document converter unavailable: soffice/libreoffice not found")

const convertTimeout = 60 * time.Second

// ConvertToPDF converts filled .docx bytes to PDF through a headless
// LibreOffice run. This collaborator sits strictly downstream of a
// successful extraction and never panics; every failure mode is an explicit
// error.
func ConvertToPDF(ctx context.Context, docxBytes []byte) ([]byte, error) {
	soffice, err := exec.LookPath("soffice")
	if err != nil {
		soffice, err = exec.LookPath("libreoffice")
	}
	if err != nil {
		return nil, ErrConverterUnavailable
	}

	workDir, err := os.MkdirTemp("", "guarantee-letter-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	docxPath := filepath.Join(workDir, "letter.docx")
	if err := os.WriteFile(docxPath, docxBytes, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write letter: %w", err)
	}

	convertCtx, cancel := context.WithTimeout(ctx, convertTimeout)
	defer cancel()

	cmd := exec.CommandContext(convertCtx, soffice,
		"--headless", "--convert-to", "pdf", "--outdir", workDir, docxPath)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("pdf conversion failed: %w (%s)", err, strings.TrimSpace(stderr.String()))
	}

	pdfBytes, err := os.ReadFile(filepath.Join(workDir, "letter.pdf"))
	if err != nil {
		return nil, fmt.Errorf("converted pdf not found: %w", err)
	}
	return pdfBytes, nil
}
