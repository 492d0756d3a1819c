package soft

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"errors"
	"sync"
)

const keyBits = 2048

// Manager holds a process-local RSA signing key, provisioned lazily on the
// first Sign call. Keys do not survive a restart; use the vault manager when
// signatures must verify across processes.
type Manager struct {
	mu  sync.Mutex
	key *rsa.PrivateKey
	kid string
}

func NewManager() *Manager {
	return &Manager{}
}

// NewManagerWithKey injects a pre-generated key, mainly for tests.
func NewManagerWithKey(key *rsa.PrivateKey) (*Manager, error) {
	if key == nil {
		return nil, errors.New("key is required")
	}
	kid, err := keyID(&key.PublicKey)
	if err != nil {
		return nil, err
	}
	return &Manager{key: key, kid: kid}, nil
}

func (m *Manager) Sign(ctx context.Context, digest []byte) ([]byte, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	key, kid, err := m.ensureKey()
	if err != nil {
		return nil, "", err
	}
	sig, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, digest)
	if err != nil {
		return nil, "", err
	}
	return sig, "soft:" + kid, nil
}

func (m *Manager) Verify(ctx context.Context, digest []byte, sig []byte, keyRef string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.Lock()
	key := m.key
	kid := m.kid
	m.mu.Unlock()
	if key == nil || keyRef != "soft:"+kid {
		// A reference this manager never issued cannot verify.
		return false, nil
	}
	if err := rsa.VerifyPKCS1v15(&key.PublicKey, crypto.SHA256, digest, sig); err != nil {
		return false, nil
	}
	return true, nil
}

func (m *Manager) ensureKey() (*rsa.PrivateKey, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.key != nil {
		return m.key, m.kid, nil
	}
	key, err := rsa.GenerateKey(rand.Reader, keyBits)
	if err != nil {
		return nil, "", err
	}
	kid, err := keyID(&key.PublicKey)
	if err != nil {
		return nil, "", err
	}
	m.key = key
	m.kid = kid
	return key, kid, nil
}

func keyID(pub *rsa.PublicKey) (string, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(der)
	return hex.EncodeToString(sum[:6]), nil
}
