package structs

import (
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"
)

// Multipart field names of a document upload
const (
	UploadFileField = "file"
	UploadTypeField = "type"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// WriteUploadFile adds the document part with its original filename and content type.
// Quotes and backslashes in the filename are escaped the way mime/multipart reads them back.
func WriteUploadFile(w *multipart.Writer, fileName, mimeType string, data []byte) error {
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		UploadFileField, quoteEscaper.Replace(fileName)))
	h.Set("Content-Type", mimeType)

	part, err := w.CreatePart(h)
	if err != nil {
		return fmt.Errorf("creating file part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("writing file part: %w", err)
	}
	return nil
}
