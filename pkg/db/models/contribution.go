package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	dbtypes "github.com/onestoplease/onestoplease-backend/pkg/db/types"
	"github.com/onestoplease/onestoplease-backend/pkg/enums"
)

// Contribution is a product a user offers for sale or rent.
//
// Status, AssignedAgentID and RejectionReason move together:
// pending rows carry neither an assignee nor a reason, and only rejected
// rows carry a reason. Transitions are guarded with conditional updates so
// concurrent writers cannot skip a state.
type Contribution struct {
	ID               uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID           uuid.UUID                `gorm:"column:user_id;type:uuid;not null;index"`
	ContactName      string                   `gorm:"column:contact_name;not null"`
	ContactPhone     string                   `gorm:"column:contact_phone;not null"`
	Address          string                   `gorm:"column:address;not null"`
	Landmark         *string                  `gorm:"column:landmark"`
	LocationLink     *string                  `gorm:"column:location_link"`
	Pincode          string                   `gorm:"column:pincode;not null"`
	ProductName      string                   `gorm:"column:product_name;not null"`
	Description      *string                  `gorm:"column:description"`
	ContributionType enums.ContributionType   `gorm:"column:contribution_type;type:contribution_type_enum;not null"`
	ImageURLs        pq.StringArray           `gorm:"column:image_urls;type:text[];not null;default:ARRAY[]::text[]"`
	BillURL          *string                  `gorm:"column:bill_url"`
	Attributes       dbtypes.StringMap        `gorm:"column:attributes;type:jsonb;not null;default:'{}'"`
	ExpectedPrice    *decimal.Decimal         `gorm:"column:expected_price;type:numeric(12,2)"`
	WarrantyCovered  bool                     `gorm:"column:warranty_covered;not null;default:false"`
	WarrantyStart    *time.Time               `gorm:"column:warranty_start"`
	WarrantyEnd      *time.Time               `gorm:"column:warranty_end"`
	Status           enums.ContributionStatus `gorm:"column:status;type:contribution_status_enum;not null;default:'pending';index"`
	AssignedAgentID  *uuid.UUID               `gorm:"column:assigned_agent_id;type:uuid;index"`
	RejectionReason  *enums.RejectionReason   `gorm:"column:rejection_reason;type:rejection_reason_enum"`
	CreatedAt        time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
