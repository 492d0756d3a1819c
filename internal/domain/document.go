package domain

import "time"

// SignatureAlgorithm tags how a SignatureBlock was produced. Verification
// dispatches on this tag alone; it never probes backend availability.
type SignatureAlgorithm string

const (
	// SignatureAlgRS256 is RSASSA-PKCS1v15 over the SHA-256 digest with a
	// 2048-bit key held by a key manager.
	SignatureAlgRS256 SignatureAlgorithm = "RS256"
	// SignatureAlgEcho is the degraded fallback: the "signature" is the
	// digest itself. It proves nothing cryptographically and is recorded as
	// insecure so verification replays the same echo check.
	SignatureAlgEcho SignatureAlgorithm = "ECHO_FALLBACK"
)

// SignatureBlock binds a digest to the identity that registered it.
// Invariant: BackendSecure == (Algorithm == SignatureAlgRS256).
type SignatureBlock struct {
	Bytes         []byte
	Algorithm     SignatureAlgorithm
	Signer        string
	KeyReference  string
	BackendSecure bool
}

// DocumentRecord is the registered state of one logical document name.
// At most one live record exists per name; re-registration overwrites.
type DocumentRecord struct {
	Name         string
	Digest       string
	Signature    *SignatureBlock
	Owner        string
	RegisteredAt time.Time
}

// DocumentFilter narrows registry listings.
type DocumentFilter struct {
	Owner string
}
