package usecase

import (
	"context"
	"fmt"
	"io"

	"docvault/internal/domain"
)

type fakeRegistry struct {
	records   map[string]domain.DocumentRecord
	upsertErr error
	getErr    error
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{records: map[string]domain.DocumentRecord{}}
}

func (f *fakeRegistry) Upsert(ctx context.Context, rec domain.DocumentRecord) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.records[rec.Name] = rec
	return nil
}

func (f *fakeRegistry) Get(ctx context.Context, name string) (*domain.DocumentRecord, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	rec, ok := f.records[name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &rec, nil
}

func (f *fakeRegistry) List(ctx context.Context, filter domain.DocumentFilter) ([]domain.DocumentRecord, error) {
	var out []domain.DocumentRecord
	for _, rec := range f.records {
		if filter.Owner != "" && rec.Owner != filter.Owner {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (f *fakeRegistry) Delete(ctx context.Context, name string) error {
	if _, ok := f.records[name]; !ok {
		return domain.ErrNotFound
	}
	delete(f.records, name)
	return nil
}

type fakeAudit struct {
	events []domain.AuditEvent
	fail   error
}

func (f *fakeAudit) Append(ctx context.Context, event domain.AuditEvent) (domain.AuditEvent, error) {
	if f.fail != nil {
		return domain.AuditEvent{}, f.fail
	}
	event.ID = fmt.Sprintf("evt-%d", len(f.events)+1)
	f.events = append(f.events, event)
	return event, nil
}

func (f *fakeAudit) Recent(ctx context.Context, document string, limit int) ([]domain.AuditEvent, error) {
	var out []domain.AuditEvent
	for i := len(f.events) - 1; i >= 0 && len(out) < limit; i-- {
		if document != "" && f.events[i].Document != document {
			continue
		}
		out = append(out, f.events[i])
	}
	return out, nil
}

type fakeMailbox struct {
	byRecipient map[string][]domain.Alert
	fail        error
}

func newFakeMailbox() *fakeMailbox {
	return &fakeMailbox{byRecipient: map[string][]domain.Alert{}}
}

func (f *fakeMailbox) Enqueue(ctx context.Context, recipient string, alert domain.Alert) (domain.Alert, error) {
	if f.fail != nil {
		return domain.Alert{}, f.fail
	}
	alert.ID = fmt.Sprintf("alert-%d", len(f.byRecipient[recipient])+1)
	alert.Recipient = recipient
	f.byRecipient[recipient] = append(f.byRecipient[recipient], alert)
	return alert, nil
}

func (f *fakeMailbox) List(ctx context.Context, recipient string, unreadOnly bool) ([]domain.Alert, error) {
	var out []domain.Alert
	for _, a := range f.byRecipient[recipient] {
		if unreadOnly && a.Read {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeMailbox) MarkRead(ctx context.Context, recipient, alertID string) error {
	for i, a := range f.byRecipient[recipient] {
		if a.ID == alertID {
			f.byRecipient[recipient][i].Read = true
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeMailbox) MarkAllRead(ctx context.Context, recipient string) (int, error) {
	count := 0
	for i, a := range f.byRecipient[recipient] {
		if !a.Read {
			f.byRecipient[recipient][i].Read = true
			count++
		}
	}
	return count, nil
}

func (f *fakeMailbox) Clear(ctx context.Context, recipient string) (int, error) {
	count := len(f.byRecipient[recipient])
	delete(f.byRecipient, recipient)
	return count, nil
}

type fakeSignatures struct {
	secure    bool
	signErr   error
	verifyOK  bool
	verifyErr error
	signed    int
}

func (f *fakeSignatures) Sign(ctx context.Context, digest string, signer string) (domain.SignatureBlock, error) {
	if f.signErr != nil {
		return domain.SignatureBlock{}, f.signErr
	}
	f.signed++
	if f.secure {
		return domain.SignatureBlock{
			Bytes:         []byte("rsa-sig-over-" + digest),
			Algorithm:     domain.SignatureAlgRS256,
			Signer:        signer,
			KeyReference:  "soft:test",
			BackendSecure: true,
		}, nil
	}
	return domain.SignatureBlock{
		Bytes:     []byte(digest),
		Algorithm: domain.SignatureAlgEcho,
		Signer:    signer,
	}, nil
}

func (f *fakeSignatures) Verify(ctx context.Context, digest string, block domain.SignatureBlock) (bool, error) {
	if f.verifyErr != nil {
		return false, f.verifyErr
	}
	return f.verifyOK, nil
}

func (f *fakeSignatures) Secure() bool { return f.secure }

type fakeStore struct {
	blobs   map[string][]byte
	putErr  error
	deleted []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{blobs: map[string][]byte{}}
}

func (f *fakeStore) Put(ctx context.Context, name string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if f.putErr != nil {
		return f.putErr
	}
	f.blobs[name] = data
	return nil
}

func (f *fakeStore) Get(ctx context.Context, name string) (io.ReadCloser, error) {
	data, ok := f.blobs[name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return io.NopCloser(newByteReader(data)), nil
}

func (f *fakeStore) Delete(ctx context.Context, name string) error {
	f.deleted = append(f.deleted, name)
	if _, ok := f.blobs[name]; !ok {
		return domain.ErrNotFound
	}
	delete(f.blobs, name)
	return nil
}

type byteReader struct {
	data []byte
	pos  int
}

func newByteReader(data []byte) *byteReader { return &byteReader{data: data} }

func (r *byteReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	n := copy(p, r.data[r.pos:])
	r.pos += n
	return n, nil
}

type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (fakeHasher) Verify(hash, password string) bool { return hash == "hashed:"+password }

type fakeTokens struct{}

func (fakeTokens) Issue(username string, role domain.Role) (string, error) {
	return "token-" + username, nil
}

type fakeUsers struct {
	byName map[string]domain.User
}

func newFakeUsers(seed ...domain.User) *fakeUsers {
	f := &fakeUsers{byName: map[string]domain.User{}}
	for _, u := range seed {
		f.byName[u.Username] = u
	}
	return f
}

func (f *fakeUsers) Create(ctx context.Context, user domain.User) error {
	if _, ok := f.byName[user.Username]; ok {
		return domain.ErrUserExists
	}
	f.byName[user.Username] = user
	return nil
}

func (f *fakeUsers) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, ok := f.byName[username]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &user, nil
}

func (f *fakeUsers) Update(ctx context.Context, user domain.User) error {
	if _, ok := f.byName[user.Username]; !ok {
		return domain.ErrNotFound
	}
	f.byName[user.Username] = user
	return nil
}

func activeUser(name string, role domain.Role) domain.User {
	return domain.User{Username: name, Role: role, Active: true}
}
