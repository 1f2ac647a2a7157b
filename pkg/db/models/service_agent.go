package models

import (
	"time"

	"github.com/google/uuid"
)

// ServiceAgent is the field-agent profile attached to a user account.
// LoggedIn and LastActive back the attendance tracker: LastActive is touched
// on every authenticated request and the timeout job flips LoggedIn off.
type ServiceAgent struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID     uuid.UUID  `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	Name       string     `gorm:"column:name;not null"`
	Email      string     `gorm:"column:email;type:text;not null;uniqueIndex"`
	Phone      *string    `gorm:"column:phone"`
	LoggedIn   bool       `gorm:"column:logged_in;not null;default:false"`
	LastActive *time.Time `gorm:"column:last_active"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
}
