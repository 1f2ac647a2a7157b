package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/onestoplease/onestoplease-backend/internal/media"
	"github.com/onestoplease/onestoplease-backend/pkg/enums"
)

type testMediaService struct {
	presignFn  func(userID uuid.UUID, input media.PresignInput) (*media.PresignOutput, error)
	downloadFn func(userID uuid.UUID, objectKey string) (*media.DownloadOutput, error)
}

func (s *testMediaService) PresignUpload(userID uuid.UUID, input media.PresignInput) (*media.PresignOutput, error) {
	if s.presignFn != nil {
		return s.presignFn(userID, input)
	}
	return &media.PresignOutput{}, nil
}

func (s *testMediaService) PresignDownload(userID uuid.UUID, objectKey string) (*media.DownloadOutput, error) {
	if s.downloadFn != nil {
		return s.downloadFn(userID, objectKey)
	}
	return &media.DownloadOutput{}, nil
}

func TestMediaPresignRequiresAuthContext(t *testing.T) {
	svc := &testMediaService{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/media/presign",
		strings.NewReader(`{"media_kind":"image","mime_type":"image/png","file_name":"a.png","size_bytes":1}`))
	resp := httptest.NewRecorder()

	MediaPresign(svc, testLogger()).ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestMediaPresignParsesKind(t *testing.T) {
	var captured media.PresignInput
	var capturedUser uuid.UUID
	svc := &testMediaService{
		presignFn: func(userID uuid.UUID, input media.PresignInput) (*media.PresignOutput, error) {
			capturedUser = userID
			captured = input
			return &media.PresignOutput{ObjectKey: "contributions/x"}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/media/presign",
		strings.NewReader(`{"media_kind":"bill","mime_type":"application/pdf","file_name":"invoice.pdf","size_bytes":2048}`))
	req, userID := withClaims(req, enums.RoleUser, nil)
	resp := httptest.NewRecorder()

	MediaPresign(svc, testLogger()).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if capturedUser != userID {
		t.Fatalf("expected user %s got %s", userID, capturedUser)
	}
	if captured.Kind != enums.MediaKindBill {
		t.Fatalf("unexpected kind %s", captured.Kind)
	}
}

func TestMediaPresignRejectsUnknownKind(t *testing.T) {
	svc := &testMediaService{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/media/presign",
		strings.NewReader(`{"media_kind":"video","mime_type":"video/mp4","file_name":"clip.mp4","size_bytes":1}`))
	req, _ = withClaims(req, enums.RoleUser, nil)
	resp := httptest.NewRecorder()

	MediaPresign(svc, testLogger()).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestMediaPresignDownloadPassesKey(t *testing.T) {
	var capturedKey string
	svc := &testMediaService{
		downloadFn: func(userID uuid.UUID, objectKey string) (*media.DownloadOutput, error) {
			capturedKey = objectKey
			return &media.DownloadOutput{ObjectKey: objectKey}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/media/presign-download",
		strings.NewReader(`{"object_key":"contributions/u/image/k/file.png"}`))
	req, _ = withClaims(req, enums.RoleUser, nil)
	resp := httptest.NewRecorder()

	MediaPresignDownload(svc, testLogger()).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if capturedKey != "contributions/u/image/k/file.png" {
		t.Fatalf("unexpected key %s", capturedKey)
	}
}
