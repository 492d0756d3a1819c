package domain

import "time"

type AlertSeverity string

const (
	SeverityInfo     AlertSeverity = "info"
	SeverityWarning  AlertSeverity = "warning"
	SeverityCritical AlertSeverity = "critical"
)

type AlertType string

const (
	AlertDocumentTampered   AlertType = "document_tampered"
	AlertDocumentRegistered AlertType = "document_registered"
	AlertSignatureInvalid   AlertType = "signature_invalid"
	AlertUnauthorizedAccess AlertType = "unauthorized_access"
	AlertAccountDeactivated AlertType = "account_deactivated"
)

// MailboxCapacity bounds each recipient's mailbox. Enqueueing past the cap
// evicts the oldest alerts first.
const MailboxCapacity = 100

type Alert struct {
	ID        string            `json:"id"`
	Recipient string            `json:"recipient"`
	Type      AlertType         `json:"type"`
	Severity  AlertSeverity     `json:"severity"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	Read      bool              `json:"read"`
}

// NewTamperAlert reports a hash mismatch on a registered document. Both
// digests are truncated so the alert never leaks the full fingerprint.
func NewTamperAlert(recipient, name, storedDigest, uploadedDigest string) Alert {
	return Alert{
		Recipient: recipient,
		Type:      AlertDocumentTampered,
		Severity:  SeverityCritical,
		Title:     "Document tampering detected",
		Message:   "The document '" + name + "' no longer matches its registered fingerprint.",
		Metadata: map[string]string{
			"document":        name,
			"stored_digest":   TruncateDigest(storedDigest),
			"uploaded_digest": TruncateDigest(uploadedDigest),
		},
	}
}

// NewSignatureInvalidAlert reports a signature that no longer verifies for
// content whose digest still matches.
func NewSignatureInvalidAlert(recipient, name, signer string) Alert {
	return Alert{
		Recipient: recipient,
		Type:      AlertSignatureInvalid,
		Severity:  SeverityCritical,
		Title:     "Invalid document signature",
		Message:   "The signature for '" + name + "' (signed by " + signer + ") failed verification.",
		Metadata: map[string]string{
			"document":        name,
			"original_signer": signer,
		},
	}
}

// NewRegisteredAlert confirms a successful registration to the owner.
func NewRegisteredAlert(recipient, name, signer string) Alert {
	return Alert{
		Recipient: recipient,
		Type:      AlertDocumentRegistered,
		Severity:  SeverityInfo,
		Title:     "Document registered",
		Message:   "Document '" + name + "' was registered and signed.",
		Metadata: map[string]string{
			"document":  name,
			"signed_by": signer,
		},
	}
}

// NewUnauthorizedAlert records a denied privileged action for the actor.
func NewUnauthorizedAlert(recipient, attemptedAction string) Alert {
	return Alert{
		Recipient: recipient,
		Type:      AlertUnauthorizedAccess,
		Severity:  SeverityWarning,
		Title:     "Unauthorized action attempted",
		Message:   "Attempted to " + attemptedAction + " without the required permission.",
		Metadata: map[string]string{
			"attempted_action": attemptedAction,
		},
	}
}
