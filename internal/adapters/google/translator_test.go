package google

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{
			name: "single sentence",
			body: `[[["Halo dunia.","Hello world.",null,null,10]],null,"en"]`,
			want: "Halo dunia.",
		},
		{
			name: "several sentences",
			body: `[[["Halo dunia. ","Hello world. ",null,null,10],["Apa kabar?","How are you?",null,null,10]],null,"en"]`,
			want: "Halo dunia. Apa kabar?",
		},
		{
			name: "transliteration row skipped",
			body: `[[["Konnichiwa","Hello",null,null,1],[null,null,"konnichiwa"]],null,"en"]`,
			want: "Konnichiwa",
		},
		{name: "not json", body: `<html>`, wantErr: true},
		{name: "empty", body: `[]`, wantErr: true},
		{name: "no sentences", body: `[null,null,"en"]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseResponse([]byte(tt.body))
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseResponse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseResponse() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTranslate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.URL.Path != "/translate_a/single" || q.Get("client") != "gtx" || q.Get("dt") != "t" {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		if q.Get("sl") != "auto" || q.Get("tl") != "id" {
			http.Error(w, "bad languages", http.StatusBadRequest)
			return
		}
		_, _ = io.WriteString(w, `[[["[id] `+q.Get("q")+`","x",null,null,1]],null,"en"]`)
	}))
	defer srv.Close()

	tr := NewTranslator(5*time.Second, WithBaseURL(srv.URL+"/"))
	got, err := tr.Translate(context.Background(), "Hello & bye", "", "id")
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if got != "[id] Hello & bye" {
		t.Errorf("Translate() = %q", got)
	}
}

func TestTranslateStatusErrors(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{http.StatusTooManyRequests, "rate limited"},
		{http.StatusServiceUnavailable, "HTTP 503"},
	}

	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))

		tr := NewTranslator(time.Second, WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
		_, err := tr.Translate(context.Background(), "Hello", "en", "id")
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("status %d: error = %v, want %q", tt.status, err, tt.want)
		}
		srv.Close()
	}
}

func TestTranslateBlank(t *testing.T) {
	tr := NewTranslator(time.Second, WithBaseURL("http://127.0.0.1:0"))
	got, err := tr.Translate(context.Background(), " \n ", "en", "id")
	if err != nil || got != "" {
		t.Errorf("Translate() = %q, %v", got, err)
	}
}

func TestTranslateCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[[["x","y"]]]`)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tr := NewTranslator(time.Second, WithBaseURL(srv.URL))
	if _, err := tr.Translate(ctx, "Hello", "en", "id"); err == nil {
		t.Error("Translate() error = nil for cancelled context")
	}
}
