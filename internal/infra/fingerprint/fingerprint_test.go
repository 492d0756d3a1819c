package fingerprint

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestDigest_Deterministic(t *testing.T) {
	svc := NewService()
	first, err := svc.Digest(strings.NewReader("the quick brown fox"))
	if err != nil {
		t.Fatalf("digest: %v", err)
	}
	second, err := svc.Digest(strings.NewReader("the quick brown fox"))
	if err != nil {
		t.Fatalf("digest: %v", err)
	}
	if first != second {
		t.Fatalf("expected identical digests, got %s and %s", first, second)
	}
	if len(first) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(first))
	}
}

func TestDigest_DistinguishesContent(t *testing.T) {
	svc := NewService()
	a, err := svc.Digest(strings.NewReader("content A"))
	if err != nil {
		t.Fatalf("digest: %v", err)
	}
	b, err := svc.Digest(strings.NewReader("content B"))
	if err != nil {
		t.Fatalf("digest: %v", err)
	}
	if a == b {
		t.Fatal("expected different digests for different content")
	}
}

func TestDigest_LargeInputMatchesBytes(t *testing.T) {
	svc := NewService()
	content := bytes.Repeat([]byte("docvault"), 50_000)
	streamed, err := svc.Digest(bytes.NewReader(content))
	if err != nil {
		t.Fatalf("digest: %v", err)
	}
	if streamed != svc.DigestBytes(content) {
		t.Fatal("streamed digest should match in-memory digest")
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("disk on fire")
}

func TestDigest_ReadFailure(t *testing.T) {
	svc := NewService()
	if _, err := svc.Digest(failingReader{}); err == nil {
		t.Fatal("expected error from failing reader")
	}
}

func TestDecodeDigest(t *testing.T) {
	svc := NewService()
	digest := svc.DigestBytes([]byte("payload"))
	raw, err := DecodeDigest(digest)
	if err != nil {
		t.Fatalf("decode digest: %v", err)
	}
	if len(raw) != 32 {
		t.Fatalf("expected 32 bytes, got %d", len(raw))
	}
	if _, err := DecodeDigest("zz"); err == nil {
		t.Fatal("expected error for invalid hex")
	}
	if _, err := DecodeDigest("abcd"); err == nil {
		t.Fatal("expected error for short digest")
	}
}
