package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGet_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello"))
	}))
	defer server.Close()

	client := New(nil)
	defer client.Close()

	resp, err := client.Get(context.Background(), server.URL, nil)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", resp.StatusCode)
	}
	if string(resp.Body) != "hello" {
		t.Errorf("Body = %q, want %q", resp.Body, "hello")
	}
}

func TestDo_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream broken"))
	}))
	defer server.Close()

	client := New(nil)
	defer client.Close()

	_, err := client.Get(context.Background(), server.URL, nil)
	if err == nil {
		t.Fatal("Get() error = nil, want *HTTPError")
	}

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("Get() error = %T, want *HTTPError", err)
	}
	if httpErr.StatusCode != http.StatusBadGateway {
		t.Errorf("StatusCode = %d, want 502", httpErr.StatusCode)
	}
	if string(httpErr.Body) != "upstream broken" {
		t.Errorf("Body = %q, want %q", httpErr.Body, "upstream broken")
	}
}

func TestDo_DefaultUserAgent(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
	}))
	defer server.Close()

	client := New(&Config{UserAgent: "test-agent/2.0", Transport: DefaultTransportConfig()})
	defer client.Close()

	if _, err := client.Get(context.Background(), server.URL, nil); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if gotUA != "test-agent/2.0" {
		t.Errorf("User-Agent = %q, want %q", gotUA, "test-agent/2.0")
	}
}

func TestDo_CustomHeadersOverrideDefault(t *testing.T) {
	var gotUA, gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotContentType = r.Header.Get("Content-Type")
	}))
	defer server.Close()

	client := New(nil)
	defer client.Close()

	headers := map[string]string{
		"User-Agent":   "Mozilla/5.0",
		"Content-Type": "application/json",
	}
	_, err := client.Do(context.Background(), http.MethodPost, server.URL, strings.NewReader("{}"), headers)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if gotUA != "Mozilla/5.0" {
		t.Errorf("User-Agent = %q, want %q", gotUA, "Mozilla/5.0")
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q, want %q", gotContentType, "application/json")
	}
}
