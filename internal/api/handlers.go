// handlers.go - HTTP handlers for guarantee extraction, field review, and letter generation.

package api

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bosocmputer/guarantee_letter_gemini/configs"
	"github.com/bosocmputer/guarantee_letter_gemini/internal/ai"
	"github.com/bosocmputer/guarantee_letter_gemini/internal/common"
	"github.com/bosocmputer/guarantee_letter_gemini/internal/fingerprint"
	"github.com/bosocmputer/guarantee_letter_gemini/internal/letter"
	"github.com/bosocmputer/guarantee_letter_gemini/internal/processor"
	"github.com/bosocmputer/guarantee_letter_gemini/internal/session"
	"github.com/gin-gonic/gin"
)

// MAX_UPLOAD_BYTES caps uploaded documents at 20MB. Guarantee letters are a
// handful of pages; anything larger is almost certainly the wrong file.
const MAX_UPLOAD_BYTES = 20 << 20

var (
	orchestrator *ai.Orchestrator
	sessions     *session.Store
)

// Init wires the handler dependencies. Must be called before routing.
func Init(orch *ai.Orchestrator, store *session.Store) {
	orchestrator = orch
	sessions = store
}

// UpdateFieldsRequest is the JSON body for the manual field-edit endpoint.
type UpdateFieldsRequest struct {
	SessionID string             `json:"session_id" binding:"required"`
	Fields    ai.GuaranteeFields `json:"fields"`
}

// LetterRequest is the JSON body for the letter generation endpoint.
type LetterRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}

// ExtractHandler handles POST /api/v1/guarantees/extract.
// It accepts a multipart upload (PDF or image), renders it to pages, runs the
// AI field extraction with model fallback, and stores the result in the
// caller's review session. Re-uploading byte-identical content short-circuits
// to the stored fields without spending any tokens.
func ExtractHandler(c *gin.Context) {
	// Step 1: Parse the multipart form
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "file is required",
			"details": err.Error(),
		})
		return
	}
	if fileHeader.Size > MAX_UPLOAD_BYTES {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": fmt.Sprintf("file exceeds maximum size of %dMB", MAX_UPLOAD_BYTES>>20),
		})
		return
	}

	guaranteeType, err := ai.ParseGuaranteeType(c.PostForm("guarantee_type"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":    err.Error(),
			"expected": `"tender_bond" or "performance_bond"`,
		})
		return
	}

	sessionID := c.PostForm("session_id")
	if sessionID == "" {
		sessionID = session.NewSessionID()
	}

	reqCtx := common.NewRequestContext(sessionID)

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":      "failed to open uploaded file",
			"details":    err.Error(),
			"request_id": reqCtx.RequestID,
		})
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":      "failed to read uploaded file",
			"details":    err.Error(),
			"request_id": reqCtx.RequestID,
		})
		return
	}
	if len(raw) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "uploaded file is empty",
			"request_id": reqCtx.RequestID,
		})
		return
	}

	reqCtx.LogInfo("📥 Upload received: %s (%d bytes) | Type: %s", fileHeader.Filename, len(raw), guaranteeType)

	// Step 2: Fingerprint gate - skip extraction when the same bytes were
	// already processed in this session
	reqCtx.StartStep("fingerprint_gate")
	fp := fingerprint.Of(raw)
	prev, hasSession := sessions.Get(sessionID)
	if hasSession && !fingerprint.ShouldExtract(fp, prev.LastFingerprint) {
		reqCtx.EndStep("skipped", nil, nil)
		reqCtx.LogInfo("♻️  Same document fingerprint - returning stored fields without re-extraction")
		c.JSON(http.StatusOK, gin.H{
			"status":         "success",
			"cached":         true,
			"session_id":     sessionID,
			"guarantee_type": string(prev.GuaranteeType),
			"fields":         prev.Fields.ToMap(),
			"metadata": gin.H{
				"request_id":   reqCtx.RequestID,
				"processed_at": time.Now().Format(time.RFC3339),
			},
		})
		return
	}
	reqCtx.EndStep("success", nil, nil)

	// Step 3: Detect source type from magic bytes
	kind := processor.DetectSourceKind(raw)
	if kind == processor.SourceUnknown {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "unsupported file type",
			"details":    "upload must be a PDF, JPEG, or PNG document",
			"request_id": reqCtx.RequestID,
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Minute)
	defer cancel()

	// Step 4: Render the document to page images
	reqCtx.StartStep("render_pages")
	pages, err := processor.RenderPages(ctx, raw, kind, configs.MAX_PAGES, configs.RENDER_DPI)
	if err != nil {
		reqCtx.EndStep("failed", nil, err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":      "failed to render document pages",
			"details":    err.Error(),
			"request_id": reqCtx.RequestID,
		})
		return
	}
	reqCtx.LogInfo("✓ Rendered %d page(s)", len(pages))
	reqCtx.EndStep("success", nil, nil)

	// Step 5: Enhance pages for better OCR accuracy
	if configs.ENABLE_IMAGE_PREPROCESSING {
		reqCtx.StartStep("preprocess_pages")
		pages = processor.PreprocessPages(pages, configs.MAX_IMAGE_DIMENSION)
		reqCtx.EndStep("success", nil, nil)
	}

	// Step 6: Run extraction with model fallback
	reqCtx.StartStep("extract_fields")
	fields, usage, err := orchestrator.Extract(ctx, reqCtx, guaranteeType, pages)
	if err != nil {
		reqCtx.EndStep("failed", usage, err)

		var extractionErr *ai.ExtractionFailedError
		if errors.As(err, &extractionErr) {
			c.JSON(http.StatusBadGateway, gin.H{
				"status":     "error",
				"error":      ai.BuildUserFriendlyError(extractionErr),
				"session_id": sessionID,
				"request_id": reqCtx.RequestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":      "extraction failed",
			"details":    err.Error(),
			"session_id": sessionID,
			"request_id": reqCtx.RequestID,
		})
		return
	}
	reqCtx.EndStep("success", usage, nil)

	// The letter is always dated the day it is generated, regardless of what
	// the model read off the document.
	fields.Date = time.Now().Format("02/01/2006")

	// Step 7: Store the result for this review session
	sessions.Put(sessionID, session.State{
		Fields:          fields,
		GuaranteeType:   guaranteeType,
		LastFingerprint: fp,
	})

	summary := reqCtx.GetSummary()
	metadata := gin.H{
		"request_id":   reqCtx.RequestID,
		"processed_at": time.Now().Format(time.RFC3339),
		"duration_sec": summary["total_duration_sec"],
		"pages":        len(pages),
		"token_usage":  summary["token_usage"],
	}
	if configs.SHOW_STATUS {
		metadata["step_breakdown"] = summary["step_breakdown"]
	}

	c.JSON(http.StatusOK, gin.H{
		"status":         "success",
		"cached":         false,
		"session_id":     sessionID,
		"guarantee_type": string(guaranteeType),
		"fields":         fields.ToMap(),
		"fingerprint":    string(fp),
		"metadata":       metadata,
	})
}

// UpdateFieldsHandler handles PUT /api/v1/guarantees/fields.
// The submitted field set replaces the stored one wholesale - edits are never
// merged with the previous extraction.
func UpdateFieldsHandler(c *gin.Context) {
	var req UpdateFieldsRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":    "invalid request format",
			"details":  err.Error(),
			"expected": "JSON with session_id and fields object",
		})
		return
	}

	state, ok := sessions.Get(req.SessionID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "session not found or expired - extract a document first",
		})
		return
	}

	state.Fields = req.Fields
	sessions.Put(req.SessionID, state)

	c.JSON(http.StatusOK, gin.H{
		"status":     "success",
		"session_id": req.SessionID,
		"fields":     state.Fields.ToMap(),
	})
}

// LetterHandler handles POST /api/v1/guarantees/letter.
// It builds the bilingual confirmation letter from the session's current
// fields, fills the Word template, and converts it to PDF when a converter
// is installed. A missing converter degrades to a warning, not an error.
func LetterHandler(c *gin.Context) {
	var req LetterRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":    "invalid request format",
			"details":  err.Error(),
			"expected": "JSON with session_id",
		})
		return
	}

	state, ok := sessions.Get(req.SessionID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "session not found or expired - extract a document first",
		})
		return
	}

	reqCtx := common.NewRequestContext(req.SessionID)
	var warnings []string

	// Step 1: Build the plain-text bilingual letter
	reqCtx.StartStep("build_letter")
	english, arabic := letter.BuildLetterParts(state.Fields, state.GuaranteeType)
	reqCtx.EndStep("success", nil, nil)

	// Step 2: Fill the Word template for this guarantee type
	reqCtx.StartStep("fill_template")
	docxBytes, err := letter.FillTemplate(state.Fields, state.GuaranteeType, configs.TEMPLATE_DIR)
	if err != nil {
		reqCtx.EndStep("failed", nil, err)
		reqCtx.LogWarning("Word template unavailable: %v", err)
		warnings = append(warnings, fmt.Sprintf("word template unavailable: %v", err))
	} else {
		reqCtx.EndStep("success", nil, nil)
	}

	// Step 3: Convert the filled document to PDF (best effort)
	var pdfBytes []byte
	if len(docxBytes) > 0 {
		reqCtx.StartStep("convert_to_pdf")
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Minute)
		defer cancel()

		pdfBytes, err = letter.ConvertToPDF(ctx, docxBytes)
		if err != nil {
			reqCtx.EndStep("failed", nil, err)
			if errors.Is(err, letter.ErrConverterUnavailable) {
				reqCtx.LogWarning("PDF conversion skipped: %v", err)
				warnings = append(warnings, "pdf conversion unavailable: install LibreOffice (soffice) to enable it")
			} else {
				reqCtx.LogWarning("PDF conversion failed: %v", err)
				warnings = append(warnings, fmt.Sprintf("pdf conversion failed: %v", err))
			}
			pdfBytes = nil
		} else {
			reqCtx.EndStep("success", nil, nil)
		}
	}

	response := gin.H{
		"status":     "success",
		"session_id": req.SessionID,
		"letter": gin.H{
			"english":  english,
			"arabic":   arabic,
			"combined": letter.BuildLetter(state.Fields, state.GuaranteeType),
		},
		"request_id": reqCtx.RequestID,
	}
	if len(docxBytes) > 0 {
		response["docx_base64"] = base64.StdEncoding.EncodeToString(docxBytes)
	}
	if len(pdfBytes) > 0 {
		response["pdf_base64"] = base64.StdEncoding.EncodeToString(pdfBytes)
	}
	if len(warnings) > 0 {
		response["warnings"] = warnings
	}

	c.JSON(http.StatusOK, response)
}
