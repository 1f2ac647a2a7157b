package models

import (
	"time"

	"github.com/google/uuid"
)

// Admin is the back-office operator profile attached to a user account.
type Admin struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	Name      string    `gorm:"column:name;not null"`
	Email     string    `gorm:"column:email;type:text;not null;uniqueIndex"`
	Phone     *string   `gorm:"column:phone"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
