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

type RegisterDocumentRequest struct {
	Name    string
	Content io.Reader
	Actor   domain.User
}

type RegisterDocumentResponse struct {
	Record domain.DocumentRecord
	Secure bool
}

// RegisterDocument fingerprints uploaded content, obtains a signature
// over the digest, and upserts the record. The upsert is unconditional:
// re-registering a name overwrites the previous record, last write wins.
type RegisterDocument struct {
	Guard        Guard
	Fingerprints Fingerprinter
	Signatures   SignatureService
	Registry     DocumentRepository
	Blobs        ObjectStore // optional; nil keeps metadata only
	Audit        AuditLog
	Alerts       AlertMailbox
	Logger       *zap.Logger
	Now          func() time.Time
}

func (uc *RegisterDocument) Execute(ctx context.Context, req RegisterDocumentRequest) (*RegisterDocumentResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: document name is required", domain.ErrInvalidInput)
	}
	if req.Content == nil {
		return nil, fmt.Errorf("%w: document content is required", domain.ErrInvalidInput)
	}
	if err := uc.Guard.Require(req.Actor, rbac.CapRegisterDocuments); err != nil {
		notifyDenied(ctx, uc.Alerts, req.Actor, "register "+name)
		return nil, err
	}

	digest, err := uc.digestAndStore(ctx, name, req.Content)
	if err != nil {
		return nil, errors.Join(err, uc.auditFailure(ctx, name, domain.AuditActionRegister))
	}

	block, err := uc.Signatures.Sign(ctx, digest, req.Actor.Username)
	if err != nil {
		// No partial registration: drop the stored payload and abort.
		uc.discardBlob(ctx, name)
		return nil, errors.Join(err, uc.auditFailure(ctx, name, domain.AuditActionRegister))
	}

	now := uc.now()
	record := domain.DocumentRecord{
		Name:         name,
		Digest:       digest,
		Signature:    &block,
		Owner:        req.Actor.Username,
		RegisteredAt: now,
	}
	if err := uc.Registry.Upsert(ctx, record); err != nil {
		uc.discardBlob(ctx, name)
		return nil, errors.Join(err, uc.auditFailure(ctx, name, domain.AuditActionRegister))
	}

	resp := &RegisterDocumentResponse{Record: record, Secure: block.BackendSecure}

	if _, err := uc.Audit.Append(ctx, domain.AuditEvent{
		Document:  name,
		Action:    domain.AuditActionRegister,
		Outcome:   "REGISTERED",
		Actor:     req.Actor.Username,
		CreatedAt: now,
	}); err != nil {
		// The record is stored; the caller gets both facts.
		return resp, fmt.Errorf("document registered but audit append failed: %w", err)
	}

	if uc.Alerts != nil {
		if _, err := uc.Alerts.Enqueue(ctx, record.Owner, domain.NewRegisteredAlert(record.Owner, name, req.Actor.Username)); err != nil {
			uc.logger().Warn("registration alert enqueue failed", zap.String("document", name), zap.Error(err))
		}
	}
	return resp, nil
}

// digestAndStore hashes the content in a single pass, streaming it into
// the object store at the same time when one is configured.
func (uc *RegisterDocument) digestAndStore(ctx context.Context, name string, content io.Reader) (string, error) {
	if uc.Blobs == nil {
		return uc.Fingerprints.Digest(content)
	}
	pr, pw := io.Pipe()
	storeErr := make(chan error, 1)
	go func() {
		err := uc.Blobs.Put(ctx, name, pr)
		// Unblocks the tee writer when Put bails before draining.
		pr.CloseWithError(err)
		storeErr <- err
	}()
	digest, err := uc.Fingerprints.Digest(io.TeeReader(content, pw))
	pw.CloseWithError(err)
	if serr := <-storeErr; serr != nil && err == nil {
		err = serr
	}
	if err != nil {
		return "", err
	}
	return digest, nil
}

func (uc *RegisterDocument) discardBlob(ctx context.Context, name string) {
	if uc.Blobs == nil {
		return
	}
	if err := uc.Blobs.Delete(ctx, name); err != nil && !errors.Is(err, domain.ErrNotFound) {
		uc.logger().Warn("stale payload cleanup failed", zap.String("document", name), zap.Error(err))
	}
}

func (uc *RegisterDocument) auditFailure(ctx context.Context, name string, action domain.AuditAction) error {
	_, err := uc.Audit.Append(ctx, domain.AuditEvent{
		Document:  name,
		Action:    action,
		Outcome:   string(domain.OutcomeFailed),
		CreatedAt: uc.now(),
	})
	if err != nil {
		return fmt.Errorf("audit append failed: %w", err)
	}
	return nil
}

func (uc *RegisterDocument) now() time.Time {
	if uc.Now != nil {
		return uc.Now()
	}
	return time.Now().UTC()
}

func (uc *RegisterDocument) logger() *zap.Logger {
	if uc.Logger != nil {
		return uc.Logger
	}
	return zap.NewNop()
}
