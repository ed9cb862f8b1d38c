package claims

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"campus-find/lostfound-backend/internal/apperrors"
	"campus-find/lostfound-backend/internal/items"
	"campus-find/lostfound-backend/internal/users"
)

// Notifier delivers best-effort event pushes. Failures never fail the
// triggering request.
type Notifier interface {
	Notify(ctx context.Context, userID uint, event string, payload map[string]any)
}

// Notification event names.
const (
	EventClaimSubmitted = "claim_submitted"
	EventProofSubmitted = "proof_submitted"
	EventClaimApproved  = "claim_approved"
	EventClaimRejected  = "claim_rejected"
	EventClaimCompleted = "claim_completed"
)

type Service interface {
	Submit(ctx context.Context, claimantID, itemID uint, answers []string) (*Claim, error)
	SubmitProof(ctx context.Context, claimID, callerID uint, proofPath string) (*Claim, error)
	VerifyProof(ctx context.Context, claimID, callerID uint, verified bool) (*Claim, error)
	Approve(ctx context.Context, claimID, callerID uint) (*Claim, error)
	Reject(ctx context.Context, claimID, callerID uint, reason string) (*Claim, error)
	Complete(ctx context.Context, claimID, callerID uint) (*Claim, error)
	Contact(ctx context.Context, claimID, callerID uint) (*ContactDetails, error)
	Get(ctx context.Context, claimID, callerID uint) (*Claim, error)
	ListMine(ctx context.Context, claimantID uint, offset, limit int) ([]Claim, int64, error)
	ListForMyItems(ctx context.Context, ownerID uint, offset, limit int) ([]Claim, int64, error)
}

type claimService struct {
	repo        Repository
	itemsRepo   items.Repository
	usersRepo   users.Repository
	itemMachine interface {
		CanTransition(from, to items.Status) bool
	}
	notifier Notifier
	logger   *zap.Logger
}

func NewService(repo Repository, itemsRepo items.Repository, usersRepo users.Repository, notifier Notifier, logger *zap.Logger) Service {
	return &claimService{
		repo:        repo,
		itemsRepo:   itemsRepo,
		usersRepo:   usersRepo,
		itemMachine: items.StatusMachine(),
		notifier:    notifier,
		logger:      logger,
	}
}

func (s *claimService) Submit(ctx context.Context, claimantID, itemID uint, answers []string) (*Claim, error) {
	item, err := s.itemsRepo.GetByID(ctx, itemID)
	if err != nil {
		s.logger.Error("failed to load item for claim", zap.Error(err), zap.Uint("item_id", itemID))
		return nil, apperrors.Storage()
	}
	if item == nil || !item.Verified || item.Status != items.StatusActive {
		return nil, apperrors.NotFound("item is not available for claims")
	}
	if item.ReporterID == claimantID {
		return nil, apperrors.SelfClaim()
	}

	eval, err := Evaluate(item.Questions, answers)
	if err != nil {
		return nil, err
	}

	claim := &Claim{
		ItemID:       itemID,
		ClaimantID:   claimantID,
		OwnerID:      item.ReporterID,
		Status:       initialStatus(eval.Outcome),
		Answers:      datatypes.NewJSONSlice(eval.Answers),
		CorrectCount: eval.CorrectCount,
		TotalCount:   eval.Total,
		Accuracy:     eval.Accuracy,
	}

	if err := s.repo.Create(ctx, claim); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.DuplicateClaim()
		}
		s.logger.Error("failed to create claim", zap.Error(err), zap.Uint("item_id", itemID))
		return nil, apperrors.Storage()
	}

	s.notifier.Notify(ctx, claim.OwnerID, EventClaimSubmitted, map[string]any{
		"claimId": claim.ID,
		"itemId":  claim.ItemID,
		"status":  claim.Status,
	})
	return claim, nil
}

func (s *claimService) SubmitProof(ctx context.Context, claimID, callerID uint, proofPath string) (*Claim, error) {
	claim, err := s.load(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if claim.ClaimantID != callerID {
		return nil, apperrors.Authorization("only the claimant can submit proof for this claim")
	}
	if !canTransition(claim.Status, StatusProofSubmitted) {
		return nil, apperrors.StateConflict("this claim is not awaiting proof")
	}

	now := time.Now()
	claim.ProofPath = proofPath
	claim.ProofSubmittedAt = &now
	claim.ProofVerified = false
	claim.Status = StatusProofSubmitted

	if err := s.repo.Update(ctx, claim); err != nil {
		s.logger.Error("failed to store proof reference", zap.Error(err), zap.Uint("claim_id", claimID))
		return nil, apperrors.Storage()
	}

	s.notifier.Notify(ctx, claim.OwnerID, EventProofSubmitted, map[string]any{
		"claimId": claim.ID,
		"itemId":  claim.ItemID,
	})
	return claim, nil
}

func (s *claimService) VerifyProof(ctx context.Context, claimID, callerID uint, verified bool) (*Claim, error) {
	claim, err := s.load(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if claim.OwnerID != callerID {
		return nil, apperrors.Authorization("only the item owner can verify proof")
	}
	if claim.Status != StatusProofSubmitted {
		return nil, apperrors.StateConflict("no proof is pending verification on this claim")
	}

	if !verified {
		claim.ProofVerified = false
		claim.Status = StatusRejected
		claim.RejectReason = "proof rejected by item owner"
		if err := s.repo.Update(ctx, claim); err != nil {
			s.logger.Error("failed to reject proof", zap.Error(err), zap.Uint("claim_id", claimID))
			return nil, apperrors.Storage()
		}
		s.notifier.Notify(ctx, claim.ClaimantID, EventClaimRejected, map[string]any{
			"claimId": claim.ID,
			"itemId":  claim.ItemID,
			"reason":  claim.RejectReason,
		})
		return claim, nil
	}

	claim.ProofVerified = true
	return s.approve(ctx, claim)
}

func (s *claimService) Approve(ctx context.Context, claimID, callerID uint) (*Claim, error) {
	claim, err := s.load(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if claim.OwnerID != callerID {
		return nil, apperrors.Authorization("only the item owner can approve this claim")
	}
	if !canTransition(claim.Status, StatusApproved) {
		return nil, apperrors.StateConflict("claim cannot be approved from status '" + string(claim.Status) + "'")
	}
	return s.approve(ctx, claim)
}

// approve finalizes the approval: claim approved with contact disclosure,
// item marked claimed, both under one transaction.
func (s *claimService) approve(ctx context.Context, claim *Claim) (*Claim, error) {
	item, err := s.itemsRepo.GetByID(ctx, claim.ItemID)
	if err != nil {
		s.logger.Error("failed to load item for approval", zap.Error(err), zap.Uint("claim_id", claim.ID))
		return nil, apperrors.Storage()
	}
	if item == nil {
		return nil, apperrors.NotFound("item no longer exists")
	}
	if !s.itemMachine.CanTransition(item.Status, items.StatusClaimed) {
		return nil, apperrors.StateConflict("item has already been claimed or closed")
	}

	now := time.Now()
	claim.Status = StatusApproved
	claim.ContactRevealed = true
	claim.ApprovedAt = &now

	if err := s.repo.UpdateWithItemStatus(ctx, claim, items.StatusClaimed); err != nil {
		s.logger.Error("failed to approve claim", zap.Error(err), zap.Uint("claim_id", claim.ID))
		return nil, apperrors.Storage()
	}

	s.notifier.Notify(ctx, claim.ClaimantID, EventClaimApproved, map[string]any{
		"claimId": claim.ID,
		"itemId":  claim.ItemID,
	})
	return claim, nil
}

func (s *claimService) Reject(ctx context.Context, claimID, callerID uint, reason string) (*Claim, error) {
	claim, err := s.load(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if claim.OwnerID != callerID {
		return nil, apperrors.Authorization("only the item owner can reject this claim")
	}
	if !canTransition(claim.Status, StatusRejected) {
		return nil, apperrors.StateConflict("claim cannot be rejected from status '" + string(claim.Status) + "'")
	}

	claim.Status = StatusRejected
	claim.RejectReason = reason

	if err := s.repo.Update(ctx, claim); err != nil {
		s.logger.Error("failed to reject claim", zap.Error(err), zap.Uint("claim_id", claimID))
		return nil, apperrors.Storage()
	}

	s.notifier.Notify(ctx, claim.ClaimantID, EventClaimRejected, map[string]any{
		"claimId": claim.ID,
		"itemId":  claim.ItemID,
		"reason":  reason,
	})
	return claim, nil
}

func (s *claimService) Complete(ctx context.Context, claimID, callerID uint) (*Claim, error) {
	claim, err := s.load(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if claim.ClaimantID != callerID && claim.OwnerID != callerID {
		return nil, apperrors.Authorization("only the claimant or the item owner can mark this claim complete")
	}
	if !canTransition(claim.Status, StatusCompleted) {
		return nil, apperrors.StateConflict("only approved claims can be completed")
	}

	now := time.Now()
	claim.Status = StatusCompleted
	claim.CompletedAt = &now

	if err := s.repo.UpdateWithItemStatus(ctx, claim, items.StatusReturned); err != nil {
		s.logger.Error("failed to complete claim", zap.Error(err), zap.Uint("claim_id", claimID))
		return nil, apperrors.Storage()
	}

	for _, userID := range []uint{claim.ClaimantID, claim.OwnerID} {
		s.notifier.Notify(ctx, userID, EventClaimCompleted, map[string]any{
			"claimId": claim.ID,
			"itemId":  claim.ItemID,
		})
	}
	return claim, nil
}

func (s *claimService) Contact(ctx context.Context, claimID, callerID uint) (*ContactDetails, error) {
	claim, err := s.load(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if !claim.ContactRevealed || (claim.ClaimantID != callerID && claim.OwnerID != callerID) {
		return nil, apperrors.Authorization("contact information is only available for approved claims")
	}

	// Each party gets the other party's details.
	counterpartID := claim.OwnerID
	if callerID == claim.OwnerID {
		counterpartID = claim.ClaimantID
	}

	counterpart, err := s.usersRepo.GetByID(ctx, counterpartID)
	if err != nil {
		s.logger.Error("failed to load counterpart", zap.Error(err), zap.Uint("claim_id", claimID))
		return nil, apperrors.Storage()
	}
	if counterpart == nil {
		return nil, apperrors.NotFound("the other party's account no longer exists")
	}

	details := &ContactDetails{
		Name:  counterpart.FullName,
		Email: counterpart.Email,
		Phone: counterpart.Phone,
	}

	// The item's free-form contact block belongs to the owner; share it
	// with the claimant only.
	if callerID == claim.ClaimantID {
		item, err := s.itemsRepo.GetByID(ctx, claim.ItemID)
		if err != nil {
			s.logger.Error("failed to load item contact", zap.Error(err), zap.Uint("claim_id", claimID))
			return nil, apperrors.Storage()
		}
		if item != nil {
			details.ItemContact = item.Contact.Data()
		}
	}
	return details, nil
}

func (s *claimService) Get(ctx context.Context, claimID, callerID uint) (*Claim, error) {
	claim, err := s.load(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if claim.ClaimantID != callerID && claim.OwnerID != callerID {
		return nil, apperrors.Authorization("you are not a party to this claim")
	}
	return claim, nil
}

func (s *claimService) ListMine(ctx context.Context, claimantID uint, offset, limit int) ([]Claim, int64, error) {
	list, total, err := s.repo.ListByClaimant(ctx, claimantID, offset, limit)
	if err != nil {
		s.logger.Error("failed to list claims", zap.Error(err))
		return nil, 0, apperrors.Storage()
	}
	return list, total, nil
}

func (s *claimService) ListForMyItems(ctx context.Context, ownerID uint, offset, limit int) ([]Claim, int64, error) {
	list, total, err := s.repo.ListByOwner(ctx, ownerID, offset, limit)
	if err != nil {
		s.logger.Error("failed to list claims for owned items", zap.Error(err))
		return nil, 0, apperrors.Storage()
	}
	return list, total, nil
}

func (s *claimService) load(ctx context.Context, claimID uint) (*Claim, error) {
	claim, err := s.repo.GetByID(ctx, claimID)
	if err != nil {
		s.logger.Error("failed to load claim", zap.Error(err), zap.Uint("claim_id", claimID))
		return nil, apperrors.Storage()
	}
	if claim == nil {
		return nil, apperrors.NotFound("claim not found")
	}
	return claim, nil
}
