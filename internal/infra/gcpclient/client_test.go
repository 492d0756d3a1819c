package gcpclient

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAccessSecret(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/projects/proj-1/secrets/signing-key/versions/latest:access" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("missing bearer token")
		}
		json.NewEncoder(w).Encode(map[string]any{
			"payload": map[string]string{
				"data": base64.StdEncoding.EncodeToString([]byte("key-material")),
			},
		})
	}))
	defer srv.Close()

	client := New(srv.URL, "proj-1", "tok")
	raw, err := client.AccessSecret(context.Background(), "signing-key")
	if err != nil {
		t.Fatalf("access secret: %v", err)
	}
	if string(raw) != "key-material" {
		t.Fatalf("unexpected payload %q", raw)
	}
}

func TestAccessSecretNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := New(srv.URL, "proj-1", "tok")
	if _, err := client.AccessSecret(context.Background(), "missing"); !errors.Is(err, ErrSecretNotFound) {
		t.Fatalf("expected ErrSecretNotFound, got %v", err)
	}
}

func TestAddSecretVersion(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/projects/proj-1/secrets/signing-key:addVersion" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotBody, _ = io.ReadAll(r.Body)
		w.Write([]byte("{}"))
	}))
	defer srv.Close()

	client := New(srv.URL, "proj-1", "tok")
	if err := client.AddSecretVersion(context.Background(), "signing-key", []byte("key-material")); err != nil {
		t.Fatalf("add secret version: %v", err)
	}
	var req struct {
		Payload struct {
			Data string `json:"data"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(gotBody, &req); err != nil {
		t.Fatalf("decode request: %v", err)
	}
	decoded, _ := base64.StdEncoding.DecodeString(req.Payload.Data)
	if string(decoded) != "key-material" {
		t.Fatalf("unexpected payload %q", decoded)
	}
}
