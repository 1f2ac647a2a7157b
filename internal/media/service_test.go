package media

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/onestoplease/onestoplease-backend/pkg/config"
	"github.com/onestoplease/onestoplease-backend/pkg/enums"
	pkgerrors "github.com/onestoplease/onestoplease-backend/pkg/errors"
)

type stubSigner struct {
	url          string
	err          error
	lastBucket   string
	lastObject   string
	lastMimeType string
}

func (s *stubSigner) SignedURL(bucket, object, contentType string, expires time.Duration) (string, error) {
	s.lastBucket = bucket
	s.lastObject = object
	s.lastMimeType = contentType
	if s.err != nil {
		return "", s.err
	}
	return s.url, nil
}

func (s *stubSigner) SignedReadURL(bucket, object string, expires time.Duration) (string, error) {
	s.lastBucket = bucket
	s.lastObject = object
	if s.err != nil {
		return "", s.err
	}
	return s.url, nil
}

func newTestMediaService(t *testing.T, signer *stubSigner) Service {
	t.Helper()
	svc, err := NewService(signer,
		config.GCSConfig{
			BucketName:        "osl-media",
			UploadURLExpiry:   15 * time.Minute,
			DownloadURLExpiry: time.Hour,
		},
		config.MediaConfig{MaxUploadMB: 10},
	)
	if err != nil {
		t.Fatalf("new media service: %v", err)
	}
	return svc
}

func TestPresignUploadNamespacesKeyPerUser(t *testing.T) {
	t.Parallel()

	signer := &stubSigner{url: "https://signed.example/put"}
	svc := newTestMediaService(t, signer)
	userID := uuid.New()

	out, err := svc.PresignUpload(userID, PresignInput{
		Kind:      enums.MediaKindImage,
		MimeType:  "image/png",
		FileName:  "living room.png",
		SizeBytes: 2048,
	})
	if err != nil {
		t.Fatalf("presign upload: %v", err)
	}

	wantPrefix := fmt.Sprintf("contributions/%s/image/", userID)
	if !strings.HasPrefix(out.ObjectKey, wantPrefix) {
		t.Fatalf("expected key under %q, got %q", wantPrefix, out.ObjectKey)
	}
	if !strings.HasSuffix(out.ObjectKey, "/living-room.png") {
		t.Fatalf("expected sanitized file name, got %q", out.ObjectKey)
	}
	if signer.lastBucket != "osl-media" || signer.lastObject != out.ObjectKey {
		t.Fatalf("signer called with bucket=%q object=%q", signer.lastBucket, signer.lastObject)
	}
	if out.ContentType != "image/png" {
		t.Fatalf("expected normalized content type, got %q", out.ContentType)
	}
}

func TestPresignUploadRejectsMimeForKind(t *testing.T) {
	t.Parallel()

	svc := newTestMediaService(t, &stubSigner{url: "https://signed.example/put"})

	_, err := svc.PresignUpload(uuid.New(), PresignInput{
		Kind:      enums.MediaKindImage,
		MimeType:  "application/pdf",
		FileName:  "doc.pdf",
		SizeBytes: 2048,
	})
	if err == nil {
		t.Fatalf("expected mime rejection")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestPresignUploadBillAcceptsPDFAndImages(t *testing.T) {
	t.Parallel()

	svc := newTestMediaService(t, &stubSigner{url: "https://signed.example/put"})

	for _, mimeType := range []string{"application/pdf", "image/jpeg"} {
		_, err := svc.PresignUpload(uuid.New(), PresignInput{
			Kind:      enums.MediaKindBill,
			MimeType:  mimeType,
			FileName:  "bill",
			SizeBytes: 2048,
		})
		if err != nil {
			t.Fatalf("presign bill %s: %v", mimeType, err)
		}
	}
}

func TestPresignUploadEnforcesSizeCap(t *testing.T) {
	t.Parallel()

	svc := newTestMediaService(t, &stubSigner{url: "https://signed.example/put"})

	_, err := svc.PresignUpload(uuid.New(), PresignInput{
		Kind:      enums.MediaKindImage,
		MimeType:  "image/png",
		FileName:  "big.png",
		SizeBytes: 11 * 1024 * 1024,
	})
	if err == nil {
		t.Fatalf("expected size rejection")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestPresignDownloadRejectsForeignKeys(t *testing.T) {
	t.Parallel()

	signer := &stubSigner{url: "https://signed.example/get"}
	svc := newTestMediaService(t, signer)
	owner := uuid.New()
	other := uuid.New()

	key := fmt.Sprintf("contributions/%s/image/%s/photo.png", owner, uuid.New())
	if _, err := svc.PresignDownload(owner, key); err != nil {
		t.Fatalf("owner download: %v", err)
	}

	_, err := svc.PresignDownload(other, key)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for foreign key, got %v", err)
	}
}

func TestPresignDownloadRejectsTraversal(t *testing.T) {
	t.Parallel()

	svc := newTestMediaService(t, &stubSigner{url: "https://signed.example/get"})
	userID := uuid.New()

	_, err := svc.PresignDownload(userID, fmt.Sprintf("contributions/%s/../escape", userID))
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
