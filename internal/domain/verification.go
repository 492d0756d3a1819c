package domain

// VerificationOutcome classifies a verification run. Tamper dominates
// signature status: a hash mismatch is reported as Tampered even when the
// stored signature would also have failed.
type VerificationOutcome string

const (
	OutcomeAuthentic            VerificationOutcome = "AUTHENTIC"
	OutcomeAuthenticNoSignature VerificationOutcome = "AUTHENTIC_NO_SIGNATURE"
	OutcomeSignatureInvalid     VerificationOutcome = "SIGNATURE_INVALID"
	OutcomeTampered             VerificationOutcome = "TAMPERED"
	OutcomeNotFound             VerificationOutcome = "NOT_FOUND"
	OutcomeFailed               VerificationOutcome = "FAILED"
)

// DigestPrefixLen is how much of a digest may appear in alert metadata.
// Alerts never carry the full fingerprint.
const DigestPrefixLen = 12

// TruncateDigest shortens a digest for alert metadata.
func TruncateDigest(digest string) string {
	if len(digest) <= DigestPrefixLen {
		return digest
	}
	return digest[:DigestPrefixLen] + "..."
}
