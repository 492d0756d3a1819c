package vault

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"errors"
	"strings"
	"sync"

	"docvault/internal/config"
	"docvault/internal/infra/vaultclient"
)

const keyBits = 2048

// Manager signs with an RSA key stored in Vault KV. The key is provisioned
// lazily: the first Sign against an empty path generates a 2048-bit key and
// writes it back, so every replica converges on the same key material.
type Manager struct {
	client *vaultclient.Client
	path   string

	mu     sync.Mutex
	cached *rsa.PrivateKey
	kid    string
}

type storedKey struct {
	Alg           string `json:"alg"`
	KID           string `json:"kid"`
	PrivateKeyPEM string `json:"private_key_pem"`
}

func NewManager(client *vaultclient.Client, path string) (*Manager, error) {
	if client == nil {
		return nil, errors.New("vault client is required")
	}
	if path == "" {
		return nil, errors.New("vault key path is required")
	}
	return &Manager{client: client, path: path}, nil
}

func NewManagerFromConfig(cfg config.Config) (*Manager, error) {
	if cfg.VaultAddr == "" || cfg.VaultToken == "" {
		return nil, errors.New("VAULT_ADDR and VAULT_TOKEN are required")
	}
	return NewManager(vaultclient.New(cfg.VaultAddr, cfg.VaultToken), cfg.VaultKeyPath)
}

func (m *Manager) Sign(ctx context.Context, digest []byte) ([]byte, string, error) {
	key, kid, err := m.ensureKey(ctx)
	if err != nil {
		return nil, "", err
	}
	sig, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, digest)
	if err != nil {
		return nil, "", err
	}
	return sig, "vault:" + kid, nil
}

func (m *Manager) Verify(ctx context.Context, digest []byte, sig []byte, keyRef string) (bool, error) {
	key, kid, err := m.ensureKey(ctx)
	if err != nil {
		return false, err
	}
	if !strings.HasPrefix(keyRef, "vault:") || strings.TrimPrefix(keyRef, "vault:") != kid {
		return false, nil
	}
	if err := rsa.VerifyPKCS1v15(&key.PublicKey, crypto.SHA256, digest, sig); err != nil {
		return false, nil
	}
	return true, nil
}

func (m *Manager) ensureKey(ctx context.Context) (*rsa.PrivateKey, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cached != nil {
		return m.cached, m.kid, nil
	}

	var stored storedKey
	err := m.client.ReadKV(ctx, m.path, &stored)
	switch {
	case err == nil:
		key, kid, err := parseStoredKey(stored)
		if err != nil {
			return nil, "", err
		}
		m.cached, m.kid = key, kid
		return key, kid, nil
	case errors.Is(err, vaultclient.ErrSecretNotFound):
		return m.provision(ctx)
	default:
		return nil, "", err
	}
}

func (m *Manager) provision(ctx context.Context) (*rsa.PrivateKey, string, error) {
	key, err := rsa.GenerateKey(rand.Reader, keyBits)
	if err != nil {
		return nil, "", err
	}
	kid, err := keyID(&key.PublicKey)
	if err != nil {
		return nil, "", err
	}
	pemBytes := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	err = m.client.WriteKV(ctx, m.path, storedKey{
		Alg:           "RS256",
		KID:           kid,
		PrivateKeyPEM: string(pemBytes),
	})
	if err != nil {
		return nil, "", err
	}
	m.cached, m.kid = key, kid
	return key, kid, nil
}

func parseStoredKey(stored storedKey) (*rsa.PrivateKey, string, error) {
	if stored.Alg != "" && !strings.EqualFold(stored.Alg, "RS256") {
		return nil, "", errors.New("unsupported key algorithm")
	}
	block, _ := pem.Decode([]byte(stored.PrivateKeyPEM))
	if block == nil {
		return nil, "", errors.New("invalid private key PEM")
	}
	key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, "", err
	}
	kid := stored.KID
	if kid == "" {
		kid, err = keyID(&key.PublicKey)
		if err != nil {
			return nil, "", err
		}
	}
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
