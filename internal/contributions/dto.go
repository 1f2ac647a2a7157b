package contributions

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/onestoplease/onestoplease-backend/pkg/db/models"
	"github.com/onestoplease/onestoplease-backend/pkg/enums"
)

// CreateContributionInput carries the contributor submission fields.
// ActorEmail comes from the authenticated token and feeds the audit entry.
type CreateContributionInput struct {
	UserID           uuid.UUID
	ActorEmail       string
	ContactName      string
	ContactPhone     string
	Address          string
	Landmark         *string
	LocationLink     *string
	Pincode          string
	ProductName      string
	Description      *string
	ContributionType enums.ContributionType
	ImageURLs        []string
	BillURL          *string
	Attributes       map[string]string
	ExpectedPrice    *decimal.Decimal
	WarrantyCovered  bool
	WarrantyStart    *time.Time
	WarrantyEnd      *time.Time
}

// ContributionDTO is the projection returned from all read and transition
// operations. AssignedAgentName is resolved from the agent directory at read
// time; only the id is persisted.
type ContributionDTO struct {
	ID                uuid.UUID                `json:"id"`
	UserID            uuid.UUID                `json:"user_id"`
	ContactName       string                   `json:"contact_name"`
	ContactPhone      string                   `json:"contact_phone"`
	Address           string                   `json:"address"`
	Landmark          *string                  `json:"landmark,omitempty"`
	LocationLink      *string                  `json:"location_link,omitempty"`
	Pincode           string                   `json:"pincode"`
	ProductName       string                   `json:"product_name"`
	Description       *string                  `json:"description,omitempty"`
	ContributionType  enums.ContributionType   `json:"contribution_type"`
	ImageURLs         []string                 `json:"image_urls"`
	BillURL           *string                  `json:"bill_url,omitempty"`
	Attributes        map[string]string        `json:"attributes"`
	ExpectedPrice     *decimal.Decimal         `json:"expected_price,omitempty"`
	WarrantyCovered   bool                     `json:"warranty_covered"`
	WarrantyStart     *time.Time               `json:"warranty_start,omitempty"`
	WarrantyEnd       *time.Time               `json:"warranty_end,omitempty"`
	Status            enums.ContributionStatus `json:"status"`
	AssignedAgentID   *uuid.UUID               `json:"assigned_agent_id,omitempty"`
	AssignedAgentName *string                  `json:"assigned_agent_name,omitempty"`
	RejectionReason   *enums.RejectionReason   `json:"rejection_reason,omitempty"`
	CreatedAt         time.Time                `json:"created_at"`
	UpdatedAt         time.Time                `json:"updated_at"`
}

// ContributionList wraps a page of contributions plus the next page cursor.
type ContributionList struct {
	Contributions []ContributionDTO `json:"contributions"`
	NextCursor    string            `json:"next_cursor,omitempty"`
}

// FromModel converts a persisted contribution into its DTO projection,
// resolving the assignee display name from the supplied lookup when present.
func FromModel(contribution models.Contribution, agentNames map[uuid.UUID]string) ContributionDTO {
	attributes := map[string]string(contribution.Attributes)
	if attributes == nil {
		attributes = map[string]string{}
	}
	imageURLs := []string(contribution.ImageURLs)
	if imageURLs == nil {
		imageURLs = []string{}
	}

	dto := ContributionDTO{
		ID:               contribution.ID,
		UserID:           contribution.UserID,
		ContactName:      contribution.ContactName,
		ContactPhone:     contribution.ContactPhone,
		Address:          contribution.Address,
		Landmark:         contribution.Landmark,
		LocationLink:     contribution.LocationLink,
		Pincode:          contribution.Pincode,
		ProductName:      contribution.ProductName,
		Description:      contribution.Description,
		ContributionType: contribution.ContributionType,
		ImageURLs:        imageURLs,
		BillURL:          contribution.BillURL,
		Attributes:       attributes,
		ExpectedPrice:    contribution.ExpectedPrice,
		WarrantyCovered:  contribution.WarrantyCovered,
		WarrantyStart:    contribution.WarrantyStart,
		WarrantyEnd:      contribution.WarrantyEnd,
		Status:           contribution.Status,
		AssignedAgentID:  contribution.AssignedAgentID,
		RejectionReason:  contribution.RejectionReason,
		CreatedAt:        contribution.CreatedAt,
		UpdatedAt:        contribution.UpdatedAt,
	}
	if contribution.AssignedAgentID != nil && agentNames != nil {
		if name, ok := agentNames[*contribution.AssignedAgentID]; ok {
			dto.AssignedAgentName = &name
		}
	}
	return dto
}
