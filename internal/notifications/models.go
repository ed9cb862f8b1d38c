package notifications

import (
	"time"

	"gorm.io/datatypes"

	"campus-find/lostfound-backend/internal/users"
)

// Notification is a persisted event for one user, also pushed over the
// websocket hub when the user is connected.
type Notification struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"not null;index" json:"userId"`
	User      *users.User    `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID" json:"-"`
	Event     string         `gorm:"not null" json:"event"`
	Payload   datatypes.JSON `json:"payload"`
	Read      bool           `gorm:"not null;default:false" json:"read"`
	CreatedAt time.Time      `json:"createdAt"`
}

func (Notification) TableName() string { return "notifications" }
