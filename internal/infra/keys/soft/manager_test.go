package soft

import (
	"context"
	"crypto/sha256"
	"testing"
)

func TestSignVerify_RoundTrip(t *testing.T) {
	m := NewManager()
	digest := sha256.Sum256([]byte("document content"))

	sig, ref, err := m.Sign(context.Background(), digest[:])
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if ref == "" {
		t.Fatal("expected a key reference")
	}

	ok, err := m.Verify(context.Background(), digest[:], sig, ref)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !ok {
		t.Fatal("expected signature to verify")
	}
}

func TestVerify_CorruptedSignature(t *testing.T) {
	m := NewManager()
	digest := sha256.Sum256([]byte("document content"))

	sig, ref, err := m.Sign(context.Background(), digest[:])
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	sig[0] ^= 0xff

	ok, err := m.Verify(context.Background(), digest[:], sig, ref)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if ok {
		t.Fatal("expected corrupted signature to fail")
	}
}

func TestVerify_UnknownKeyRef(t *testing.T) {
	m := NewManager()
	digest := sha256.Sum256([]byte("document content"))
	sig, _, err := m.Sign(context.Background(), digest[:])
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	ok, err := m.Verify(context.Background(), digest[:], sig, "soft:deadbeef0000")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if ok {
		t.Fatal("expected unknown key ref to fail verification")
	}
}

func TestSign_LazyProvisionOnce(t *testing.T) {
	m := NewManager()
	digest := sha256.Sum256([]byte("document content"))

	_, ref1, err := m.Sign(context.Background(), digest[:])
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	_, ref2, err := m.Sign(context.Background(), digest[:])
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if ref1 != ref2 {
		t.Fatalf("expected stable key reference, got %s and %s", ref1, ref2)
	}
}
