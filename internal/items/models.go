package items

import (
	"time"

	"gorm.io/datatypes"

	"campus-find/lostfound-backend/internal/users"
	"campus-find/lostfound-backend/pkg/workflows"
)

type Type string

const (
	TypeLost  Type = "lost"
	TypeFound Type = "found"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusClaimed  Status = "claimed"
	StatusReturned Status = "returned"
	StatusClosed   Status = "closed"
)

// StatusMachine is the item lifecycle. Returned and closed are terminal.
func StatusMachine() *workflows.StateMachine[Status] {
	return workflows.New(map[Status][]Status{
		StatusActive:  {StatusClaimed, StatusClosed},
		StatusClaimed: {StatusReturned, StatusClosed},
	})
}

// Question is an owner-supplied verification question with its correct
// answer. Set once at creation, immutable afterwards.
type Question struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// ContactInfo is the reporter's free-form contact block, disclosed only
// through approved claims.
type ContactInfo struct {
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
	Other string `json:"other,omitempty"`
}

// Item is a lost or found report. Questions and Contact never serialize on
// the public surface; handlers expose sanitized views.
type Item struct {
	ID          uint                              `gorm:"primaryKey" json:"id"`
	ReporterID  uint                              `gorm:"not null;index" json:"reporterId"`
	Reporter    *users.User                       `gorm:"constraint:OnDelete:CASCADE;foreignKey:ReporterID" json:"-"`
	Type        Type                              `gorm:"type:varchar(8);not null;index" json:"type"`
	Status      Status                            `gorm:"type:varchar(16);not null;default:'active';index" json:"status"`
	Title       string                            `gorm:"not null" json:"title"`
	Description string                            `json:"description"`
	Category    string                            `gorm:"index" json:"category"`
	Location    string                            `gorm:"index" json:"location"`
	OccurredOn  string                            `json:"occurredOn"`
	Images      datatypes.JSONSlice[string]       `json:"images"`
	Contact     datatypes.JSONType[ContactInfo]   `json:"-"`
	Questions   datatypes.JSONSlice[Question]     `json:"-"`
	Verified    bool                              `gorm:"not null;default:false" json:"verified"`
	Views       int64                             `gorm:"not null;default:0" json:"views"`
	CreatedAt   time.Time                         `json:"createdAt"`
	UpdatedAt   time.Time                         `json:"updatedAt"`
}

func (Item) TableName() string { return "items" }

// PublicView is an Item plus the question prompts, with answers stripped.
type PublicView struct {
	Item
	QuestionPrompts []string `json:"questions"`
}

// Public returns the claimant-facing view of the item.
func (i *Item) Public() PublicView {
	prompts := make([]string, 0, len(i.Questions))
	for _, q := range i.Questions {
		prompts = append(prompts, q.Question)
	}
	return PublicView{Item: *i, QuestionPrompts: prompts}
}
