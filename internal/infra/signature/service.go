package signature

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"docvault/internal/domain"
	"docvault/internal/infra/fingerprint"

	"go.uber.org/zap"
)

// Service binds digests to signer identities. The backend is chosen once at
// construction: a KeyManager for real RSA signatures, or the echo fallback
// when no key service is available. Verification never depends on which
// backend is currently configured; it dispatches on the algorithm recorded
// in the block.
type Service struct {
	keys    domain.KeyManager
	timeout time.Duration
	logger  *zap.Logger
}

// NewService builds the secure backend. Key-service failures during signing
// surface as ErrSigningUnavailable; they are never silently downgraded.
func NewService(keys domain.KeyManager, timeout time.Duration, logger *zap.Logger) *Service {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		keys:    keys,
		timeout: timeout,
		logger:  logger.With(zap.String("component", "signature_service")),
	}
}

// NewEchoService builds the degraded fallback backend. The "signature" is
// the digest itself and carries no cryptographic guarantee; blocks it
// produces are marked insecure.
func NewEchoService(logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		logger: logger.With(zap.String("component", "signature_service"), zap.Bool("fallback", true)),
	}
}

// Secure reports whether the configured backend produces real signatures.
func (s *Service) Secure() bool {
	return s.keys != nil
}

func (s *Service) Sign(ctx context.Context, digest string, signer string) (domain.SignatureBlock, error) {
	if s.keys == nil {
		s.logger.Warn("signing with fallback backend, no cryptographic guarantee",
			zap.String("signer", signer))
		return domain.SignatureBlock{
			Bytes:         []byte(digest),
			Algorithm:     domain.SignatureAlgEcho,
			Signer:        signer,
			BackendSecure: false,
		}, nil
	}

	raw, err := fingerprint.DecodeDigest(digest)
	if err != nil {
		return domain.SignatureBlock{}, err
	}
	signCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	sig, keyRef, err := s.keys.Sign(signCtx, raw)
	if err != nil {
		return domain.SignatureBlock{}, fmt.Errorf("%w: %v", domain.ErrSigningUnavailable, err)
	}
	return domain.SignatureBlock{
		Bytes:         sig,
		Algorithm:     domain.SignatureAlgRS256,
		Signer:        signer,
		KeyReference:  keyRef,
		BackendSecure: true,
	}, nil
}

func (s *Service) Verify(ctx context.Context, digest string, block domain.SignatureBlock) (bool, error) {
	switch block.Algorithm {
	case domain.SignatureAlgEcho:
		// Replay the identical non-cryptographic check that produced it.
		return bytes.Equal(block.Bytes, []byte(digest)), nil
	case domain.SignatureAlgRS256:
		if s.keys == nil {
			return false, fmt.Errorf("%w: no key manager configured", domain.ErrSigningUnavailable)
		}
		raw, err := fingerprint.DecodeDigest(digest)
		if err != nil {
			return false, err
		}
		verifyCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		ok, err := s.keys.Verify(verifyCtx, raw, block.Bytes, block.KeyReference)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return false, fmt.Errorf("%w: %v", domain.ErrSigningUnavailable, err)
			}
			return false, err
		}
		return ok, nil
	default:
		// An algorithm this service never produced cannot be trusted.
		return false, nil
	}
}

// Info renders a human-readable description of a signature block.
func Info(block domain.SignatureBlock) string {
	if block.BackendSecure {
		return "Signed by " + block.Signer + " (RS256, key " + block.KeyReference + ")"
	}
	return "Signed by " + block.Signer + " (fallback mode, not cryptographically verified)"
}
