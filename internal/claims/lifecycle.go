package claims

// initialStatus maps the evaluator's aggregate decision to the claim's
// starting state. Strong and partial matches both pass through the proof
// gate; strong matches are never auto-approved.
func initialStatus(outcome Outcome) Status {
	switch outcome {
	case OutcomeStrong, OutcomePartial:
		return StatusAwaitingProof
	default:
		return StatusPendingVerification
	}
}

// canTransition is the closed transition table. Anything not listed here is
// rejected with a state conflict.
func canTransition(from, to Status) bool {
	switch from {
	case StatusPendingVerification:
		return to == StatusApproved || to == StatusRejected
	case StatusAwaitingProof:
		return to == StatusProofSubmitted || to == StatusApproved || to == StatusRejected
	case StatusProofSubmitted:
		// Re-uploads replace the pending proof.
		return to == StatusProofSubmitted || to == StatusApproved || to == StatusRejected
	case StatusApproved:
		return to == StatusCompleted
	case StatusCompleted, StatusRejected:
		return false
	default:
		return false
	}
}
