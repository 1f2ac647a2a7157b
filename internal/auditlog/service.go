package auditlog

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/onestoplease/onestoplease-backend/pkg/db/models"
	pkgerrors "github.com/onestoplease/onestoplease-backend/pkg/errors"
	"github.com/onestoplease/onestoplease-backend/pkg/pagination"
)

// Service exposes the read side of the audit log to the admin console.
type Service interface {
	List(ctx context.Context, params pagination.Params) (*EntryList, error)
	ListByContribution(ctx context.Context, contributionID uuid.UUID, params pagination.Params) (*EntryList, error)
	ListByActor(ctx context.Context, actorID uuid.UUID, params pagination.Params) (*EntryList, error)
}

type service struct {
	repo Repository
}

// NewService wires the audit read service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("auditlog service requires repository")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, params pagination.Params) (*EntryList, error) {
	entries, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list audit entries")
	}
	return buildPage(entries, params), nil
}

func (s *service) ListByContribution(ctx context.Context, contributionID uuid.UUID, params pagination.Params) (*EntryList, error) {
	if contributionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "contribution id required")
	}
	entries, err := s.repo.ListByContribution(ctx, contributionID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list audit entries")
	}
	return buildPage(entries, params), nil
}

func (s *service) ListByActor(ctx context.Context, actorID uuid.UUID, params pagination.Params) (*EntryList, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor id required")
	}
	entries, err := s.repo.ListByActor(ctx, actorID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list audit entries")
	}
	return buildPage(entries, params), nil
}

func buildPage(entries []models.ContributionAuditLog, params pagination.Params) *EntryList {
	limit := pagination.NormalizeLimit(params.Limit)
	next := ""
	if len(entries) > limit {
		entries = entries[:limit]
		last := entries[len(entries)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	dtos := make([]EntryDTO, 0, len(entries))
	for _, entry := range entries {
		dtos = append(dtos, FromModel(entry))
	}
	return &EntryList{Entries: dtos, NextCursor: next}
}
