package models

// ThesisStatus represents the review lifecycle state of a thesis
type ThesisStatus string

const (
	StatusDraft         ThesisStatus = "DRAFT"
	StatusSubmitted     ThesisStatus = "SUBMITTED"
	StatusUnderReview   ThesisStatus = "UNDER_REVIEW"
	StatusNeedsRevision ThesisStatus = "NEEDS_REVISION"
	StatusApproved      ThesisStatus = "APPROVED"
	StatusRejected      ThesisStatus = "REJECTED"
)

// validTransitions is the single source of truth for status transitions.
// Every transition check in the application goes through CanTransitionTo.
var validTransitions = map[ThesisStatus][]ThesisStatus{
	StatusDraft:         {StatusSubmitted},
	StatusSubmitted:     {StatusUnderReview},
	StatusUnderReview:   {StatusNeedsRevision, StatusApproved, StatusRejected},
	StatusNeedsRevision: {StatusSubmitted},
	StatusApproved:      {}, // terminal
	StatusRejected:      {}, // terminal
}

// AllStatuses lists every defined thesis status.
func AllStatuses() []ThesisStatus {
	return []ThesisStatus{
		StatusDraft, StatusSubmitted, StatusUnderReview,
		StatusNeedsRevision, StatusApproved, StatusRejected,
	}
}

// IsValid reports whether the status is one of the defined states.
func (s ThesisStatus) IsValid() bool {
	_, ok := validTransitions[s]
	return ok
}

// IsTerminal reports whether the status has no outgoing transitions.
func (s ThesisStatus) IsTerminal() bool {
	next, ok := validTransitions[s]
	return ok && len(next) == 0
}

// CanTransitionTo reports whether moving from s to target is a legal
// transition per the fixed transition table.
func (s ThesisStatus) CanTransitionTo(target ThesisStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}
