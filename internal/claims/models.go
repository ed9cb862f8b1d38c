package claims

import (
	"time"

	"gorm.io/datatypes"

	"campus-find/lostfound-backend/internal/items"
	"campus-find/lostfound-backend/internal/users"
)

// Status is the claim lifecycle state. The string values are wire-visible
// and must stay stable for client compatibility.
type Status string

const (
	StatusPendingVerification Status = "pending_verification"
	StatusAwaitingProof       Status = "awaiting_proof"
	StatusProofSubmitted      Status = "proof_submitted"
	StatusApproved            Status = "approved"
	StatusCompleted           Status = "completed"
	StatusRejected            Status = "rejected"
)

// Terminal reports whether no further transition can leave s.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusRejected:
		return true
	default:
		return false
	}
}

// AnswerComparison is the per-question audit record snapshotted at
// submission time, kept for display and dispute resolution.
type AnswerComparison struct {
	Question        string  `json:"question"`
	CorrectAnswer   string  `json:"correctAnswer"`
	SubmittedAnswer string  `json:"submittedAnswer"`
	Correct         bool    `json:"correct"`
	Similarity      float64 `json:"similarity"`
}

// Claim is a student's assertion of ownership over one item. At most one
// claim exists per (item, claimant) pair, enforced by the unique index.
type Claim struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	ItemID     uint        `gorm:"not null;index:idx_claims_item_claimant,unique,priority:1" json:"itemId"`
	Item       *items.Item `gorm:"constraint:OnDelete:CASCADE;foreignKey:ItemID" json:"-"`
	ClaimantID uint        `gorm:"not null;index:idx_claims_item_claimant,unique,priority:2" json:"claimantId"`
	Claimant   *users.User `gorm:"constraint:OnDelete:CASCADE;foreignKey:ClaimantID" json:"-"`
	OwnerID    uint        `gorm:"not null;index" json:"ownerId"`

	Status          Status                                  `gorm:"type:varchar(24);not null;index" json:"status"`
	Answers         datatypes.JSONSlice[AnswerComparison]   `json:"answers"`
	CorrectCount    int                                     `gorm:"not null" json:"correctCount"`
	TotalCount      int                                     `gorm:"not null" json:"totalCount"`
	Accuracy        int                                     `gorm:"not null" json:"accuracy"`
	ProofPath       string                                  `json:"proofPath,omitempty"`
	ProofVerified   bool                                    `gorm:"not null;default:false" json:"proofVerified"`
	ContactRevealed bool                                    `gorm:"not null;default:false" json:"contactRevealed"`
	RejectReason    string                                  `json:"rejectReason,omitempty"`

	SubmittedAt      time.Time  `gorm:"autoCreateTime" json:"submittedAt"`
	ProofSubmittedAt *time.Time `json:"proofSubmittedAt,omitempty"`
	ApprovedAt       *time.Time `json:"approvedAt,omitempty"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

func (Claim) TableName() string { return "claims" }

// ContactDetails is the disclosure payload returned once a claim is
// approved: each party sees how to reach the other.
type ContactDetails struct {
	ItemContact items.ContactInfo `json:"itemContact"`
	Name        string            `json:"name"`
	Email       string            `json:"email"`
	Phone       string            `json:"phone,omitempty"`
}
