// Package awsclient is a minimal S3 REST client with SigV4 request
// signing. It covers the object operations the service needs and avoids
// pulling in the full AWS SDK.
package awsclient

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"docvault/internal/config"
)

type Client struct {
	endpoint   string
	region     string
	accessKey  string
	secretKey  string
	httpClient *http.Client
	now        func() time.Time
}

func New(endpoint, region, accessKey, secretKey string) *Client {
	return &Client{
		endpoint:   strings.TrimRight(endpoint, "/"),
		region:     region,
		accessKey:  accessKey,
		secretKey:  secretKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		now:        time.Now,
	}
}

func NewFromConfig(cfg config.Config) (*Client, error) {
	if cfg.AWSAccessKeyID == "" || cfg.AWSSecretAccessKey == "" {
		return nil, errors.New("AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY are required")
	}
	region := cfg.AWSRegion
	if region == "" {
		region = "us-east-1"
	}
	endpoint := cfg.S3Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://s3.%s.amazonaws.com", region)
	}
	return New(endpoint, region, cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey), nil
}

// WithClock overrides the signing clock. Tests use it to pin signatures.
func (c *Client) WithClock(now func() time.Time) *Client {
	c.now = now
	return c
}

func (c *Client) PutObject(ctx context.Context, bucket, key string, payload []byte) error {
	resp, err := c.do(ctx, http.MethodPut, bucket, key, payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return checkStatus(resp, http.StatusOK)
}

func (c *Client) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	resp, err := c.do(ctx, http.MethodGet, bucket, key, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, ErrObjectNotFound
	}
	if err := checkStatus(resp, http.StatusOK); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

func (c *Client) DeleteObject(ctx context.Context, bucket, key string) error {
	resp, err := c.do(ctx, http.MethodDelete, bucket, key, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return ErrObjectNotFound
	}
	return checkStatus(resp, http.StatusNoContent, http.StatusOK)
}

var ErrObjectNotFound = errors.New("object not found")

func (c *Client) do(ctx context.Context, method, bucket, key string, payload []byte) (*http.Response, error) {
	if c == nil || c.endpoint == "" || c.accessKey == "" || c.secretKey == "" {
		return nil, errors.New("aws client missing configuration")
	}
	if bucket == "" || key == "" {
		return nil, errors.New("bucket and key are required")
	}
	target := fmt.Sprintf("%s/%s/%s", c.endpoint, bucket, url.PathEscape(key))
	req, err := http.NewRequestWithContext(ctx, method, target, strings.NewReader(string(payload)))
	if err != nil {
		return nil, err
	}
	c.sign(req, payload)
	return c.httpClient.Do(req)
}

// sign applies AWS Signature Version 4 for the s3 service.
func (c *Client) sign(req *http.Request, payload []byte) {
	t := c.now().UTC()
	amzDate := t.Format("20060102T150405Z")
	dateStamp := t.Format("20060102")
	payloadHash := hex.EncodeToString(sha256sum(payload))

	req.Header.Set("Host", req.URL.Host)
	req.Header.Set("X-Amz-Date", amzDate)
	req.Header.Set("X-Amz-Content-Sha256", payloadHash)

	signedNames := []string{"host", "x-amz-content-sha256", "x-amz-date"}
	sort.Strings(signedNames)
	var canonHeaders strings.Builder
	for _, name := range signedNames {
		value := req.Header.Get(name)
		if name == "host" {
			value = req.URL.Host
		}
		canonHeaders.WriteString(name + ":" + strings.TrimSpace(value) + "\n")
	}
	signedHeaders := strings.Join(signedNames, ";")

	canonicalRequest := strings.Join([]string{
		req.Method,
		req.URL.EscapedPath(),
		req.URL.RawQuery,
		canonHeaders.String(),
		signedHeaders,
		payloadHash,
	}, "\n")

	scope := strings.Join([]string{dateStamp, c.region, "s3", "aws4_request"}, "/")
	stringToSign := strings.Join([]string{
		"AWS4-HMAC-SHA256",
		amzDate,
		scope,
		hex.EncodeToString(sha256sum([]byte(canonicalRequest))),
	}, "\n")

	signingKey := hmacSHA256([]byte("AWS4"+c.secretKey), dateStamp)
	signingKey = hmacSHA256(signingKey, c.region)
	signingKey = hmacSHA256(signingKey, "s3")
	signingKey = hmacSHA256(signingKey, "aws4_request")
	signature := hex.EncodeToString(hmacSHA256(signingKey, stringToSign))

	req.Header.Set("Authorization", fmt.Sprintf(
		"AWS4-HMAC-SHA256 Credential=%s/%s, SignedHeaders=%s, Signature=%s",
		c.accessKey, scope, signedHeaders, signature,
	))
}

func checkStatus(resp *http.Response, want ...int) error {
	for _, code := range want {
		if resp.StatusCode == code {
			return nil
		}
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("s3 request failed: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
}

func sha256sum(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}

func hmacSHA256(key []byte, data string) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(data))
	return mac.Sum(nil)
}
