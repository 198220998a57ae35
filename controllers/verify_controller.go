package controllers

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"verifix/middlewares"
	"verifix/models"
	"verifix/services"
	"verifix/structs"

	"github.com/gin-gonic/gin"
)

// slack on top of the file limit for multipart boundaries and the type field
const multipartOverhead = 1 << 20

// DocumentVerifier is the upstream OCR relay
type DocumentVerifier interface {
	Verify(ctx context.Context, req models.VerificationRequest) (models.VerificationResult, error)
}

type VerifyController struct {
	verifier  DocumentVerifier
	logs      services.VerificationLogStore
	maxUpload int64
	now       func() time.Time
}

// NewVerifyController wires the relay. logs may be nil; maxUpload <= 0 disables the size check.
func NewVerifyController(verifier DocumentVerifier, logs services.VerificationLogStore, maxUpload int64) *VerifyController {
	return &VerifyController{
		verifier:  verifier,
		logs:      logs,
		maxUpload: maxUpload,
		now:       time.Now,
	}
}

func (vc *VerifyController) Verify(c *gin.Context) {
	if vc.maxUpload > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, vc.maxUpload+multipartOverhead)
	}

	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "File too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}

	files := form.File[structs.UploadFileField]
	switch {
	case len(files) == 0:
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	case len(files) > 1:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only one file may be uploaded"})
		return
	}
	fh := files[0]
	if vc.maxUpload > 0 && fh.Size > vc.maxUpload {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File too large"})
		return
	}

	var declared string
	if v := form.Value[structs.UploadTypeField]; len(v) > 0 {
		declared = strings.ToLower(strings.TrimSpace(v[0]))
	}
	docType, ok := models.ParseDocumentType(declared)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid document type"})
		return
	}

	f, err := fh.Open()
	if err != nil {
		log.Printf("Verify: failed to open upload %q: %v", fh.Filename, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	data, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		log.Printf("Verify: failed to read upload %q: %v", fh.Filename, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}

	req := models.VerificationRequest{
		FileBytes:    data,
		FileName:     fh.Filename,
		MimeType:     fh.Header.Get("Content-Type"),
		DeclaredType: docType,
	}

	result, err := vc.verifier.Verify(c.Request.Context(), req)
	if err != nil {
		log.Printf("Verify error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error", "details": err.Error()})
		return
	}

	vc.record(c, req, result)
	c.JSON(http.StatusOK, result)
}

// record appends to the verification log; failures never reach the caller
func (vc *VerifyController) record(c *gin.Context, req models.VerificationRequest, result models.VerificationResult) {
	if vc.logs == nil {
		return
	}
	entry := services.NewVerificationLog(req, result, middlewares.CurrentUser(c), vc.now())
	if err := vc.logs.Append(c.Request.Context(), entry); err != nil {
		log.Printf("Verify: failed to record %s: %v", entry.ID, err)
	}
}
