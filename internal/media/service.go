package media

import (
	"fmt"
	"path"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/onestoplease/onestoplease-backend/pkg/config"
	"github.com/onestoplease/onestoplease-backend/pkg/enums"
	pkgerrors "github.com/onestoplease/onestoplease-backend/pkg/errors"
)

const objectKeyPrefix = "contributions"

type urlSigner interface {
	SignedURL(bucket, object, contentType string, expires time.Duration) (string, error)
	SignedReadURL(bucket, object string, expires time.Duration) (string, error)
}

// Service mints presigned GCS URLs for contribution images and bill documents.
// Object bytes never pass through the API; clients upload straight to the bucket.
type Service interface {
	PresignUpload(userID uuid.UUID, input PresignInput) (*PresignOutput, error)
	PresignDownload(userID uuid.UUID, objectKey string) (*DownloadOutput, error)
}

// PresignInput models the payload required to request an upload URL.
type PresignInput struct {
	Kind      enums.MediaKind `json:"kind" validate:"required"`
	MimeType  string          `json:"mime_type" validate:"required"`
	FileName  string          `json:"file_name" validate:"required"`
	SizeBytes int64           `json:"size_bytes" validate:"required,gt=0"`
}

// PresignOutput contains the upload target returned to the client.
type PresignOutput struct {
	ObjectKey    string    `json:"object_key"`
	SignedPUTURL string    `json:"signed_put_url"`
	ContentType  string    `json:"content_type"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// DownloadOutput contains a time-limited read URL for a stored object.
type DownloadOutput struct {
	ObjectKey    string    `json:"object_key"`
	SignedGETURL string    `json:"signed_get_url"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type service struct {
	signer         urlSigner
	bucket         string
	uploadTTL      time.Duration
	downloadTTL    time.Duration
	maxUploadBytes int64
}

// NewService constructs a media service backed by the provided URL signer.
func NewService(signer urlSigner, gcsCfg config.GCSConfig, mediaCfg config.MediaConfig) (Service, error) {
	if signer == nil {
		return nil, fmt.Errorf("url signer required")
	}
	if gcsCfg.BucketName == "" {
		return nil, fmt.Errorf("gcs bucket required")
	}
	if gcsCfg.UploadURLExpiry <= 0 || gcsCfg.DownloadURLExpiry <= 0 {
		return nil, fmt.Errorf("url expiries must be positive")
	}
	if mediaCfg.MaxUploadMB <= 0 {
		return nil, fmt.Errorf("max upload size must be positive")
	}
	return &service{
		signer:         signer,
		bucket:         gcsCfg.BucketName,
		uploadTTL:      gcsCfg.UploadURLExpiry,
		downloadTTL:    gcsCfg.DownloadURLExpiry,
		maxUploadBytes: int64(mediaCfg.MaxUploadMB) * 1024 * 1024,
	}, nil
}

func (s *service) PresignUpload(userID uuid.UUID, input PresignInput) (*PresignOutput, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user identity missing")
	}
	if !input.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid media kind")
	}

	fileName := strings.TrimSpace(input.FileName)
	if fileName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file_name is required")
	}
	if input.SizeBytes <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "size_bytes must be positive")
	}
	if input.SizeBytes > s.maxUploadBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("size_bytes must be at most %d", s.maxUploadBytes))
	}

	mimeType, err := sniffMimeType(input.MimeType)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "mime_type is invalid")
	}
	if !isAllowedMime(input.Kind, mimeType) {
		msg := fmt.Sprintf("%s uploads accept %s only", input.Kind, allowedMimeDescription(input.Kind))
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msg)
	}

	objectKey := buildObjectKey(userID, input.Kind, fileName)
	signedURL, err := s.signer.SignedURL(s.bucket, objectKey, mimeType, s.uploadTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sign upload url")
	}

	return &PresignOutput{
		ObjectKey:    objectKey,
		SignedPUTURL: signedURL,
		ContentType:  mimeType,
		ExpiresAt:    time.Now().Add(s.uploadTTL),
	}, nil
}

// PresignDownload signs a read URL. Keys are namespaced per user; callers may
// only read objects under their own prefix, so the key owner is checked here
// rather than in the handler.
func (s *service) PresignDownload(userID uuid.UUID, objectKey string) (*DownloadOutput, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user identity missing")
	}
	key := strings.TrimSpace(objectKey)
	if key == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "object_key is required")
	}
	if strings.Contains(key, "..") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "object_key is invalid")
	}
	if !strings.HasPrefix(key, fmt.Sprintf("%s/%s/", objectKeyPrefix, userID)) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "object belongs to another user")
	}

	signedURL, err := s.signer.SignedReadURL(s.bucket, key, s.downloadTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sign download url")
	}

	return &DownloadOutput{
		ObjectKey:    key,
		SignedGETURL: signedURL,
		ExpiresAt:    time.Now().Add(s.downloadTTL),
	}, nil
}

func buildObjectKey(userID uuid.UUID, kind enums.MediaKind, fileName string) string {
	objectID := uuid.New()
	cleanName := sanitizeFileName(fileName)
	if cleanName == "" {
		cleanName = objectID.String()
	}
	return fmt.Sprintf("%s/%s/%s/%s/%s", objectKeyPrefix, userID, kind, objectID, cleanName)
}

func sanitizeFileName(name string) string {
	if name == "" {
		return ""
	}
	clean := path.Base(strings.TrimSpace(name))
	if clean == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(clean))
	for _, r := range clean {
		switch {
		case r == '/' || r == '\\' || unicode.IsControl(r):
			continue
		case unicode.IsSpace(r):
			b.WriteRune('-')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "-_.")
}
