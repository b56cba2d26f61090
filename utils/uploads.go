package utils

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"agroadmin/forms"
	"agroadmin/models"
)

const (
	maxUploadMemory = 32 << 20
	// every image at its size limit plus room for the text fields
	maxUploadBody = forms.MaxImages*forms.MaxImageBytes + 1<<20
)

// ParseForm parses a multipart or urlencoded request body. Multipart bodies are capped at
// maxUploadBody.
func ParseForm(w http.ResponseWriter, r *http.Request) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
		return r.ParseMultipartForm(maxUploadMemory)
	}
	return r.ParseForm()
}

// RespondWithFormError answers a failed ParseForm: 413 for an oversized body, 400 otherwise.
func RespondWithFormError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		RespondWithError(w, http.StatusRequestEntityTooLarge, "validation",
			fmt.Sprintf("Uploads are limited to %d images of %d MB each", forms.MaxImages, forms.MaxImageBytes>>20), "none")
		return
	}
	RespondWithError(w, http.StatusBadRequest, "validation", "Invalid form data", "none")
}

// ReadUploads loads every file under formKey into memory. At most one byte past the image
// size limit is read per file, which is enough for the size rule to reject it. The content
// type is always sniffed from the data; the browser's declared type is ignored.
func ReadUploads(r *http.Request, formKey string) ([]models.Upload, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	files := r.MultipartForm.File[formKey]
	out := make([]models.Upload, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
		}
		data, err := io.ReadAll(io.LimitReader(f, forms.MaxImageBytes+1))
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", fh.Filename, err)
		}
		ct := http.DetectContentType(data)
		if i := strings.IndexByte(ct, ';'); i >= 0 {
			ct = ct[:i]
		}
		out = append(out, models.Upload{Name: fh.Filename, ContentType: ct, Data: data})
	}
	return out, nil
}
