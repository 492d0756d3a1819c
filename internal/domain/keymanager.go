package domain

import "context"

// KeyManager performs asymmetric signing against a managed key. Sign returns
// the signature and a reference to the key that produced it so verification
// can resolve the same key later. Implementations may be remote; callers
// bound every call with a context deadline.
type KeyManager interface {
	Sign(ctx context.Context, digest []byte) (sig []byte, keyRef string, err error)
	Verify(ctx context.Context, digest []byte, sig []byte, keyRef string) (bool, error)
}
