package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
)

// chunkSize keeps memory constant regardless of input size.
const chunkSize = 32 * 1024

// Service computes content fingerprints.
type Service struct{}

func NewService() *Service {
	return &Service{}
}

// Digest streams content in fixed-size chunks into SHA-256 and returns the
// lowercase hex fingerprint. A read failure returns an error and never a
// partial digest.
func (s *Service) Digest(r io.Reader) (string, error) {
	h := sha256.New()
	buf := make([]byte, chunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read content: %w", err)
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// DigestBytes fingerprints an in-memory payload.
func (s *Service) DigestBytes(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// DecodeDigest parses a hex fingerprint back into raw bytes for signing.
func DecodeDigest(digest string) ([]byte, error) {
	raw, err := hex.DecodeString(digest)
	if err != nil {
		return nil, fmt.Errorf("invalid digest encoding: %w", err)
	}
	if len(raw) != sha256.Size {
		return nil, fmt.Errorf("invalid digest length: %d", len(raw))
	}
	return raw, nil
}
