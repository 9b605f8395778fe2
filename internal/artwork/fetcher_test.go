package artwork

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestHTTPFetcherFetch(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        []byte
		statusCode  int
		wantErr     string
		wantLen     int
	}{
		{
			name:        "valid image",
			contentType: "image/jpeg",
			body:        []byte("fake-image-data"),
			statusCode:  http.StatusOK,
			wantLen:     15,
		},
		{
			name:        "not found",
			contentType: "image/jpeg",
			statusCode:  http.StatusNotFound,
			wantErr:     "unexpected status code: 404",
		},
		{
			name:        "wrong content type",
			contentType: "text/html",
			body:        []byte("<html>"),
			statusCode:  http.StatusOK,
			wantErr:     "url is not an image",
		},
		{
			name:        "oversized body is truncated at the limit",
			contentType: "image/png",
			body:        []byte(strings.Repeat("a", maxImageSize+1024)),
			statusCode:  http.StatusOK,
			wantLen:     maxImageSize,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				w.WriteHeader(tt.statusCode)
				w.Write(tt.body)
			}))
			defer srv.Close()

			f := NewHTTPFetcher(zap.NewNop())
			data, err := f.Fetch(context.Background(), srv.URL)

			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(data) != tt.wantLen {
				t.Errorf("expected %d bytes, got %d", tt.wantLen, len(data))
			}
		})
	}
}

func TestHTTPFetcherCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte("data"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := NewHTTPFetcher(zap.NewNop())
	if _, err := f.Fetch(ctx, srv.URL); err == nil {
		t.Error("expected an error for a cancelled context")
	}
}
