package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/brunobiangulo/outliner"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	engine, err := outliner.New(outliner.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	return NewServer(engine, nil)
}

func uploadRequest(t *testing.T, field, filename, content string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/extract", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestServer_Health(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestServer_Extract(t *testing.T) {
	srv := newTestServer(t)

	req := uploadRequest(t, "document", "notes.txt",
		"PROJECT BRIEF\nplain body text\nmore body text\n\fNEXT STEPS\nfollow-up items\n")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body)
	}
	if rec.Header().Get("X-Extraction-Fallback") != "" {
		t.Error("successful extraction must not set the fallback header")
	}

	var res outliner.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if res.Title != "PROJECT BRIEF" {
		t.Errorf("Title = %q, want %q", res.Title, "PROJECT BRIEF")
	}
	if res.Outline == nil {
		t.Error("outline must never be null")
	}
}

func TestServer_ExtractFallback(t *testing.T) {
	srv := newTestServer(t)

	// Unsupported extension: the response is still a 200 with a
	// well-formed empty body, flagged by the fallback header.
	req := uploadRequest(t, "document", "archive.rar", "binary junk")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Header().Get("X-Extraction-Fallback") != "true" {
		t.Error("fallback extraction must set X-Extraction-Fallback")
	}

	var res outliner.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if res.Title != "" || len(res.Outline) != 0 {
		t.Errorf("fallback body = %+v, want the empty contract", res)
	}
}

func TestServer_ExtractMissingUpload(t *testing.T) {
	srv := newTestServer(t)

	req := uploadRequest(t, "wrongfield", "notes.txt", "text")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
