package awsclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestClient_PutObjectSignsRequest(t *testing.T) {
	var gotAuth, gotDate, gotHash string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/docs/contract.pdf" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		gotDate = r.Header.Get("X-Amz-Date")
		gotHash = r.Header.Get("X-Amz-Content-Sha256")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := New(srv.URL, "us-east-1", "AKIDEXAMPLE", "secret").
		WithClock(func() time.Time { return time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC) })

	if err := client.PutObject(context.Background(), "docs", "contract.pdf", []byte("payload")); err != nil {
		t.Fatalf("put object: %v", err)
	}
	if string(gotBody) != "payload" {
		t.Fatalf("expected payload body, got %q", gotBody)
	}
	if gotDate != "20260501T080000Z" {
		t.Fatalf("unexpected amz date %q", gotDate)
	}
	if gotHash == "" {
		t.Fatal("expected content sha256 header")
	}
	if !strings.HasPrefix(gotAuth, "AWS4-HMAC-SHA256 Credential=AKIDEXAMPLE/20260501/us-east-1/s3/aws4_request") {
		t.Fatalf("unexpected authorization header %q", gotAuth)
	}
	if !strings.Contains(gotAuth, "SignedHeaders=host;x-amz-content-sha256;x-amz-date") {
		t.Fatalf("missing signed headers in %q", gotAuth)
	}
}

func TestClient_GetObjectNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := New(srv.URL, "us-east-1", "AKIDEXAMPLE", "secret")
	if _, err := client.GetObject(context.Background(), "docs", "missing.pdf"); !errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("expected ErrObjectNotFound, got %v", err)
	}
}

func TestClient_SurfacesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("AccessDenied"))
	}))
	defer srv.Close()

	client := New(srv.URL, "us-east-1", "AKIDEXAMPLE", "secret")
	err := client.PutObject(context.Background(), "docs", "contract.pdf", []byte("x"))
	if err == nil || !strings.Contains(err.Error(), "status 403") {
		t.Fatalf("expected status 403 error, got %v", err)
	}
}
