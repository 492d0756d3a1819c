// Package gcpsm signs with an RSA key held in GCP Secret Manager. Same
// provisioning contract as the Vault manager: the key is generated on
// first use and written back so replicas converge.
package gcpsm

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"encoding/json"
	"encoding/pem"
	"errors"
	"strings"
	"sync"

	"docvault/internal/config"
	"docvault/internal/infra/gcpclient"
)

const keyBits = 2048

type Manager struct {
	client   *gcpclient.Client
	secretID string

	mu     sync.Mutex
	cached *rsa.PrivateKey
	kid    string
}

type storedKey struct {
	Alg           string `json:"alg"`
	KID           string `json:"kid"`
	PrivateKeyPEM string `json:"private_key_pem"`
}

func NewManager(client *gcpclient.Client, secretID string) (*Manager, error) {
	if client == nil {
		return nil, errors.New("gcp client is required")
	}
	if secretID == "" {
		return nil, errors.New("gcp secret id is required")
	}
	return &Manager{client: client, secretID: secretID}, nil
}

func NewManagerFromConfig(cfg config.Config) (*Manager, error) {
	client, err := gcpclient.NewFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return NewManager(client, cfg.GCPSigningSecretID)
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
	return sig, "gcp:" + kid, nil
}

func (m *Manager) Verify(ctx context.Context, digest []byte, sig []byte, keyRef string) (bool, error) {
	key, kid, err := m.ensureKey(ctx)
	if err != nil {
		return false, err
	}
	if !strings.HasPrefix(keyRef, "gcp:") || strings.TrimPrefix(keyRef, "gcp:") != kid {
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

	raw, err := m.client.AccessSecret(ctx, m.secretID)
	switch {
	case err == nil:
		var stored storedKey
		if err := json.Unmarshal(raw, &stored); err != nil {
			return nil, "", err
		}
		key, kid, err := parseStoredKey(stored)
		if err != nil {
			return nil, "", err
		}
		m.cached, m.kid = key, kid
		return key, kid, nil
	case errors.Is(err, gcpclient.ErrSecretNotFound):
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
	payload, err := json.Marshal(storedKey{
		Alg:           "RS256",
		KID:           kid,
		PrivateKeyPEM: string(pemBytes),
	})
	if err != nil {
		return nil, "", err
	}
	if err := m.client.AddSecretVersion(ctx, m.secretID, payload); err != nil {
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
