package gcs

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

const storageHost = "https://storage.googleapis.com"

// SignedURL mints a signed PUT URL for direct browser uploads. The caller
// must send the exact Content-Type the URL was signed for.
func (c *Client) SignedURL(bucket, object, contentType string, expires time.Duration) (string, error) {
	return c.signURL("PUT", bucket, object, contentType, expires)
}

// SignedReadURL mints a signed GET URL for time-limited downloads.
func (c *Client) SignedReadURL(bucket, object string, expires time.Duration) (string, error) {
	return c.signURL("GET", bucket, object, "", expires)
}

func (c *Client) signURL(verb, bucket, object, contentType string, expires time.Duration) (string, error) {
	if c == nil {
		return "", errors.New("gcs client not initialized")
	}
	if c.signerKey == nil || c.signerEmail == "" {
		return "", errors.New("signing requires service account credentials")
	}
	if bucket == "" {
		bucket = c.defaultBucket
	}
	if bucket == "" {
		return "", errors.New("bucket is required")
	}
	object = strings.TrimPrefix(object, "/")
	if object == "" {
		return "", errors.New("object key is required")
	}
	if expires <= 0 {
		return "", errors.New("expiry must be positive")
	}

	expiresAt := time.Now().Add(expires).Unix()
	resource := fmt.Sprintf("/%s/%s", bucket, object)
	toSign := fmt.Sprintf("%s\n\n%s\n%d\n%s", verb, contentType, expiresAt, resource)

	digest := sha256.Sum256([]byte(toSign))
	sig, err := rsa.SignPKCS1v15(rand.Reader, c.signerKey, crypto.SHA256, digest[:])
	if err != nil {
		return "", fmt.Errorf("signing url: %w", err)
	}

	query := url.Values{}
	query.Set("GoogleAccessId", c.signerEmail)
	query.Set("Expires", fmt.Sprintf("%d", expiresAt))
	query.Set("Signature", base64.StdEncoding.EncodeToString(sig))

	return fmt.Sprintf("%s/%s/%s?%s",
		storageHost,
		url.PathEscape(bucket),
		escapeObjectPath(object),
		query.Encode(),
	), nil
}

func escapeObjectPath(object string) string {
	parts := strings.Split(object, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
