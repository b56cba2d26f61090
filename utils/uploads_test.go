package utils

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"agroadmin/forms"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func multipartRequest(t *testing.T, files map[string][]byte, declared string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("title", "Neem Oil")
	for name, data := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="images"; filename=%q`, name))
		h.Set("Content-Type", declared)
		part, err := mw.CreatePart(h)
		if err != nil {
			t.Fatal(err)
		}
		part.Write(data)
	}
	mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/admin/products", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestReadUploadsSniffsContent(t *testing.T) {
	req := multipartRequest(t, map[string][]byte{
		"fake.png": []byte("just some text pretending to be a picture"),
	}, "image/png")
	if err := ParseForm(httptest.NewRecorder(), req); err != nil {
		t.Fatal(err)
	}
	got, err := ReadUploads(req, "images")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ContentType != "text/plain" {
		t.Fatalf("uploads = %+v", got)
	}
	if errs := forms.ValidateProduct(forms.ProductForm{Title: "Neem Oil", Category: "Oils", Price: "10", Quantity: "1"}, got); errs["images"] == "" {
		t.Fatal("text file accepted as an image")
	}
}

func TestReadUploadsRealPNG(t *testing.T) {
	req := multipartRequest(t, map[string][]byte{"leaf.png": pngHeader}, "application/octet-stream")
	if err := ParseForm(httptest.NewRecorder(), req); err != nil {
		t.Fatal(err)
	}
	got, _ := ReadUploads(req, "images")
	if len(got) != 1 || got[0].ContentType != "image/png" {
		t.Fatalf("uploads = %+v", got)
	}
}

func TestReadUploadsStopsPastSizeLimit(t *testing.T) {
	big := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, forms.MaxImageBytes+1024)...)
	req := multipartRequest(t, map[string][]byte{"big.png": big}, "image/png")
	if err := ParseForm(httptest.NewRecorder(), req); err != nil {
		t.Fatal(err)
	}
	got, _ := ReadUploads(req, "images")
	if len(got) != 1 || got[0].Size() != forms.MaxImageBytes+1 {
		t.Fatalf("read %d bytes", got[0].Size())
	}
}

type zeros struct{}

func (zeros) Read(p []byte) (int, error) {
	clear(p)
	return len(p), nil
}

func TestParseFormRejectsOversizedBody(t *testing.T) {
	const boundary = "agroadminboundary"
	body := io.MultiReader(
		strings.NewReader("--"+boundary+"\r\nContent-Disposition: form-data; name=\"images\"; filename=\"huge.png\"\r\nContent-Type: image/png\r\n\r\n"),
		io.LimitReader(zeros{}, maxUploadBody+1<<20),
		strings.NewReader("\r\n--"+boundary+"--\r\n"),
	)
	req := httptest.NewRequest(http.MethodPost, "/admin/products", body)
	req.Header.Set("Content-Type", "multipart/form-data; boundary="+boundary)
	rr := httptest.NewRecorder()

	err := ParseForm(rr, req)
	var tooLarge *http.MaxBytesError
	if !errors.As(err, &tooLarge) {
		t.Fatalf("err = %v", err)
	}
	RespondWithFormError(rr, err)
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d", rr.Code)
	}
}
