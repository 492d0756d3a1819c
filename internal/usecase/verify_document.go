package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"docvault/internal/domain"
	"docvault/internal/infra/auth/rbac"
)

type VerifyDocumentRequest struct {
	Name    string
	Content io.Reader
	Actor   domain.User
}

type VerifyDocumentResponse struct {
	Outcome        domain.VerificationOutcome
	HashMatch      bool
	SignatureValid *bool // nil when the record carries no signature
	UploadedDigest string
	Record         *domain.DocumentRecord
}

// VerifyDocument recomputes the fingerprint of uploaded content and
// classifies it against the registered record. One audit event is
// appended per run, whatever the outcome.
type VerifyDocument struct {
	Guard        Guard
	Fingerprints Fingerprinter
	Signatures   SignatureService
	Registry     DocumentRepository
	Audit        AuditLog
	Alerts       AlertMailbox
	Notify       Notifier // optional out-of-band copy of critical alerts
	Policy       AlertPolicy
	Logger       *zap.Logger
	Now          func() time.Time
}

func (uc *VerifyDocument) Execute(ctx context.Context, req VerifyDocumentRequest) (*VerifyDocumentResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: document name is required", domain.ErrInvalidInput)
	}
	if req.Content == nil {
		return nil, fmt.Errorf("%w: document content is required", domain.ErrInvalidInput)
	}
	if err := uc.Guard.Require(req.Actor, rbac.CapVerifyDocuments); err != nil {
		notifyDenied(ctx, uc.Alerts, req.Actor, "verify "+name)
		return nil, err
	}

	uploaded, err := uc.Fingerprints.Digest(req.Content)
	if err != nil {
		return nil, errors.Join(err, uc.audit(ctx, name, req.Actor, domain.OutcomeFailed))
	}

	record, err := uc.Registry.Get(ctx, name)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			resp := &VerifyDocumentResponse{Outcome: domain.OutcomeNotFound, UploadedDigest: uploaded}
			return resp, uc.audit(ctx, name, req.Actor, domain.OutcomeNotFound)
		}
		return nil, errors.Join(err, uc.audit(ctx, name, req.Actor, domain.OutcomeFailed))
	}

	resp := &VerifyDocumentResponse{
		HashMatch:      uploaded == record.Digest,
		UploadedDigest: uploaded,
		Record:         record,
	}

	switch {
	case !resp.HashMatch:
		// Tamper dominates: the stored signature's validity cannot
		// change this classification, so it is not consulted.
		resp.Outcome = domain.OutcomeTampered
		uc.raise(ctx, req.Actor, record, domain.NewTamperAlert("", name, record.Digest, uploaded))
	case record.Signature == nil:
		resp.Outcome = domain.OutcomeAuthenticNoSignature
	default:
		valid, err := uc.Signatures.Verify(ctx, record.Digest, *record.Signature)
		if err != nil {
			return nil, errors.Join(err, uc.audit(ctx, name, req.Actor, domain.OutcomeFailed))
		}
		resp.SignatureValid = &valid
		if valid {
			resp.Outcome = domain.OutcomeAuthentic
		} else {
			resp.Outcome = domain.OutcomeSignatureInvalid
			uc.raise(ctx, req.Actor, record, domain.NewSignatureInvalidAlert("", name, record.Signature.Signer))
		}
	}

	return resp, uc.audit(ctx, name, req.Actor, resp.Outcome)
}

// raise fans a critical alert out to the recipients the policy names.
// Alert delivery is best effort and never alters the classification.
func (uc *VerifyDocument) raise(ctx context.Context, actor domain.User, record *domain.DocumentRecord, alert domain.Alert) {
	if uc.Alerts == nil {
		return
	}
	recipients := []string{record.Owner}
	switch uc.Policy {
	case AlertCaller:
		recipients = []string{actor.Username}
	case AlertBoth:
		if actor.Username != record.Owner {
			recipients = append(recipients, actor.Username)
		}
	}
	for _, recipient := range recipients {
		if recipient == "" {
			continue
		}
		alert.Recipient = recipient
		queued, err := uc.Alerts.Enqueue(ctx, recipient, alert)
		if err != nil {
			uc.logger().Warn("alert enqueue failed",
				zap.String("recipient", recipient),
				zap.String("document", alert.Metadata["document"]),
				zap.Error(err),
			)
			continue
		}
		if uc.Notify != nil {
			if err := uc.Notify.Notify(ctx, queued); err != nil {
				uc.logger().Warn("alert notification failed", zap.String("recipient", recipient), zap.Error(err))
			}
		}
	}
}

func (uc *VerifyDocument) audit(ctx context.Context, name string, actor domain.User, outcome domain.VerificationOutcome) error {
	_, err := uc.Audit.Append(ctx, domain.AuditEvent{
		Document:  name,
		Action:    domain.AuditActionVerify,
		Outcome:   string(outcome),
		Actor:     actor.Username,
		CreatedAt: uc.now(),
	})
	if err != nil {
		return fmt.Errorf("audit append failed: %w", err)
	}
	return nil
}

func (uc *VerifyDocument) now() time.Time {
	if uc.Now != nil {
		return uc.Now()
	}
	return time.Now().UTC()
}

func (uc *VerifyDocument) logger() *zap.Logger {
	if uc.Logger != nil {
		return uc.Logger
	}
	return zap.NewNop()
}
