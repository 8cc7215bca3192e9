package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/devbush/subtranslate/internal/application"
	"github.com/devbush/subtranslate/internal/domain"
)

const testSubtitle = "1\n00:00:00,000 --> 00:00:01,000\nHalo\n\n"

type fakeProcessor struct {
	mu        sync.Mutex
	calls     int
	lastInput string
	lastOpts  application.ProcessOptions
	inputSeen bool
	err       error
}

func (f *fakeProcessor) Process(ctx context.Context, inputPath string, opts application.ProcessOptions) (*application.ProcessResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastInput = inputPath
	f.lastOpts = opts
	_, statErr := os.Stat(inputPath)
	f.inputSeen = statErr == nil

	if f.err != nil {
		return nil, f.err
	}
	if err := os.WriteFile(opts.OutputPath, []byte(testSubtitle), 0644); err != nil {
		return nil, err
	}
	return &application.ProcessResult{
		ID:              opts.RequestID,
		Transcript:      &domain.Transcript{Text: "Hello", Language: "en"},
		Document:        domain.Document{Cues: []domain.Cue{{Index: 1, Text: "Halo"}}},
		Subtitle:        testSubtitle,
		SubtitlePath:    opts.OutputPath,
		FullTranslation: "Halo",
		Report:          application.BuildReport("en", "Hello", "Halo"),
	}, nil
}

func newTestServer(t *testing.T, p Processor) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	return NewServer(p, Options{
		OutputDir:      t.TempDir(),
		UploadDir:      t.TempDir(),
		TargetLanguage: "id",
		SourceLanguage: "auto",
		Model:          "base",
	})
}

func uploadRequest(t *testing.T, filename string, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		if err != nil {
			t.Fatal(err)
		}
		_, _ = fw.Write([]byte("fake media"))
	}
	for k, v := range fields {
		_ = mw.WriteField(k, v)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/translate", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response %q: %v", w.Body.String(), err)
	}
	return resp
}

func TestTranslateAndDownload(t *testing.T) {
	p := &fakeProcessor{}
	s := newTestServer(t, p)

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, uploadRequest(t, "talk.mp3", map[string]string{"target": "fr"}))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	resp := decode(t, w)
	data, ok := resp.Data.(map[string]any)
	if !ok {
		t.Fatalf("data = %#v", resp.Data)
	}
	if data["language"] != "en" || data["language_name"] != "English" {
		t.Errorf("language fields = %v, %v", data["language"], data["language_name"])
	}
	if !strings.HasPrefix(data["report"].(string), "Detected language: en (English)") {
		t.Errorf("report = %q", data["report"])
	}

	if p.lastOpts.TargetLanguage != "fr" || p.lastOpts.SourceLanguage != "auto" {
		t.Errorf("languages = %s -> %s", p.lastOpts.SourceLanguage, p.lastOpts.TargetLanguage)
	}
	if p.lastOpts.Origin != "web" || p.lastOpts.RequestID != data["id"] {
		t.Errorf("opts = %+v", p.lastOpts)
	}
	if !p.inputSeen {
		t.Error("upload was not stored before processing")
	}
	if _, err := os.Stat(p.lastInput); !os.IsNotExist(err) {
		t.Error("upload not removed after processing")
	}

	url := data["subtitle_url"].(string)
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, url, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("download status = %d", w.Code)
	}
	if w.Body.String() != testSubtitle {
		t.Errorf("download body = %q", w.Body.String())
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment") || !strings.Contains(cd, ".srt") {
		t.Errorf("Content-Disposition = %q", cd)
	}
}

func TestTranslateRejectsUnsupportedExtension(t *testing.T) {
	p := &fakeProcessor{}
	s := newTestServer(t, p)

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, uploadRequest(t, "voice.wav", nil))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if msg := decode(t, w).Message; !strings.Contains(msg, "unsupported file format") {
		t.Errorf("message = %q", msg)
	}
	if p.calls != 0 {
		t.Errorf("processor called %d times, want 0", p.calls)
	}

	entries, _ := os.ReadDir(s.opts.UploadDir)
	if len(entries) != 0 {
		t.Errorf("upload dir has %d entries, want 0", len(entries))
	}
}

func TestTranslateMissingFile(t *testing.T) {
	s := newTestServer(t, &fakeProcessor{})

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, uploadRequest(t, "", map[string]string{"target": "id"}))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestTranslateProcessingError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"translation", domain.ErrTranslationFailed, http.StatusInternalServerError},
		{"language", domain.ErrInvalidLanguage, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakeProcessor{err: tt.err}
			s := newTestServer(t, p)

			w := httptest.NewRecorder()
			s.Handler().ServeHTTP(w, uploadRequest(t, "clip.mp4", nil))

			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
			if msg := decode(t, w).Message; !strings.HasPrefix(msg, "processing failed: ") {
				t.Errorf("message = %q", msg)
			}
			if _, err := os.Stat(p.lastOpts.OutputPath); !errors.Is(err, os.ErrNotExist) {
				t.Error("subtitle written for failed request")
			}
		})
	}
}

func TestSubtitleNotFound(t *testing.T) {
	s := newTestServer(t, &fakeProcessor{})

	tests := []struct {
		path   string
		status int
	}{
		{"/api/subtitles/not-a-uuid", http.StatusBadRequest},
		{"/api/subtitles/3f1b6c1e-9a43-4c1d-8f0e-2d6b7f1b9a10", http.StatusNotFound},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
		if w.Code != tt.status {
			t.Errorf("GET %s = %d, want %d", tt.path, w.Code, tt.status)
		}
	}
}

func TestIndexAndHealth(t *testing.T) {
	s := newTestServer(t, &fakeProcessor{})

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("index status = %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Open Source AI Subtitle Translator") {
		t.Error("index missing title")
	}
	if !strings.Contains(body, `<option value="id" selected>Indonesian (id)</option>`) {
		t.Error("default target not selected")
	}
	if !strings.Contains(body, `accept=".mp3,.mp4"`) {
		t.Error("file input does not accept the supported extensions")
	}

	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if w.Code != http.StatusOK || decode(t, w).Code != 200 {
		t.Errorf("health = %d %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Errorf("metrics status = %d", w.Code)
	}
}

func TestSubtitlePath(t *testing.T) {
	s := &Server{opts: Options{OutputDir: "/srv/out"}}
	if got := s.subtitlePath("abc"); got != filepath.Join("/srv/out", "abc.srt") {
		t.Errorf("subtitlePath() = %s", got)
	}
}
