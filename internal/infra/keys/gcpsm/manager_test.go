package gcpsm

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"docvault/internal/infra/gcpclient"
)

// fakeSecretManager serves access and addVersion for a single secret.
type fakeSecretManager struct {
	mu      sync.Mutex
	payload []byte
}

func (f *fakeSecretManager) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		switch {
		case strings.HasSuffix(r.URL.Path, ":access"):
			if f.payload == nil {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			json.NewEncoder(w).Encode(map[string]any{
				"payload": map[string]string{
					"data": base64.StdEncoding.EncodeToString(f.payload),
				},
			})
		case strings.HasSuffix(r.URL.Path, ":addVersion"):
			var body struct {
				Payload struct {
					Data string `json:"data"`
				} `json:"payload"`
			}
			json.NewDecoder(r.Body).Decode(&body)
			raw, err := base64.StdEncoding.DecodeString(body.Payload.Data)
			if err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			f.payload = raw
			w.Write([]byte(`{}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func newTestManager(t *testing.T, srvURL string) *Manager {
	t.Helper()
	mgr, err := NewManager(gcpclient.New(srvURL, "proj", "token"), "docvault-signing-key")
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return mgr
}

func TestSign_ProvisionsKeyOnFirstUse(t *testing.T) {
	fake := &fakeSecretManager{}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	mgr := newTestManager(t, srv.URL)
	digest := sha256.Sum256([]byte("contract"))
	sig, ref, err := mgr.Sign(context.Background(), digest[:])
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if !strings.HasPrefix(ref, "gcp:") {
		t.Fatalf("key reference = %q, want gcp: prefix", ref)
	}
	if fake.payload == nil {
		t.Fatal("expected key to be written to secret manager")
	}

	ok, err := mgr.Verify(context.Background(), digest[:], sig, ref)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !ok {
		t.Fatal("expected signature to verify")
	}
}

func TestVerify_SecondManagerSharesKey(t *testing.T) {
	fake := &fakeSecretManager{}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	first := newTestManager(t, srv.URL)
	digest := sha256.Sum256([]byte("contract"))
	sig, ref, err := first.Sign(context.Background(), digest[:])
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	// A fresh manager simulating another replica resolves the same key.
	second := newTestManager(t, srv.URL)
	ok, err := second.Verify(context.Background(), digest[:], sig, ref)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !ok {
		t.Fatal("expected signature from first replica to verify on second")
	}
}

func TestVerify_ForeignKeyReference(t *testing.T) {
	fake := &fakeSecretManager{}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	mgr := newTestManager(t, srv.URL)
	digest := sha256.Sum256([]byte("contract"))
	sig, _, err := mgr.Sign(context.Background(), digest[:])
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	ok, err := mgr.Verify(context.Background(), digest[:], sig, "vault:deadbeef")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if ok {
		t.Fatal("expected foreign key reference to be rejected")
	}
}

func TestSign_SecretManagerUnreachable(t *testing.T) {
	mgr := newTestManager(t, "http://127.0.0.1:1")
	digest := sha256.Sum256([]byte("contract"))
	if _, _, err := mgr.Sign(context.Background(), digest[:]); err == nil {
		t.Fatal("expected error when secret manager is unreachable")
	}
}
