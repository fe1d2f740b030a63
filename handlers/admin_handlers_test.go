package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"restaurant-pos/logger"

	"github.com/gin-gonic/gin"
)

func uploadRequest(t *testing.T, filename string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", filename)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = part.Write([]byte("fake image bytes"))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadImageHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	dir := filepath.Join(t.TempDir(), "uploads")

	r := gin.New()
	r.POST("/upload", func(c *gin.Context) {
		UploadImageHandler(c, dir, logger.Discard())
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "nasi-goreng.PNG"))
	if w.Code != http.StatusCreated {
		t.Fatalf("status %d body %s", w.Code, w.Body.String())
	}

	var resp struct {
		ImageURL string `json:"image_url"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(resp.ImageURL, "/uploads/") || !strings.HasSuffix(resp.ImageURL, ".png") {
		t.Fatalf("unexpected image url %q", resp.ImageURL)
	}
	if _, err := os.Stat(filepath.Join(dir, strings.TrimPrefix(resp.ImageURL, "/uploads/"))); err != nil {
		t.Fatalf("uploaded file missing: %v", err)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "menu.gif"))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("gif upload: status %d", w.Code)
	}
}
