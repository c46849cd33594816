package auth

import (
	"fmt"

	"thesisflow/internal/app/models"
	"thesisflow/internal/pkg/apperrors"
)

// Policy answers authorization questions about theses and feedback. All
// checks are pure functions over already-loaded models, so services load
// the entities once and decide locally instead of re-querying.
type Policy struct{}

// NewPolicy creates a new Policy
func NewPolicy() *Policy {
	return &Policy{}
}

// CanAccessThesis checks if the user may read the thesis. Students see their
// own theses, advisors see theses assigned to them, admins see everything.
func (p *Policy) CanAccessThesis(user *models.User, thesis *models.Thesis) bool {
	switch user.RoleType {
	case models.RoleAdmin:
		return true
	case models.RoleStudent:
		return thesis.StudentID == user.ID
	case models.RoleAdvisor:
		return thesis.IsAssignedTo(user.ID)
	}
	return false
}

// ValidateThesisAccess validates read access or returns a permission error
func (p *Policy) ValidateThesisAccess(user *models.User, thesis *models.Thesis) error {
	if !p.CanAccessThesis(user, thesis) {
		return apperrors.NewForbiddenError("you don't have access to this thesis")
	}
	return nil
}

// CanUpdateThesisContent checks if the user may edit title, description or
// file. Only the owning student can, and only while the thesis is editable
// (DRAFT or NEEDS_REVISION).
func (p *Policy) CanUpdateThesisContent(user *models.User, thesis *models.Thesis) bool {
	if user.RoleType != models.RoleStudent || thesis.StudentID != user.ID {
		return false
	}
	return thesis.Status == models.StatusDraft || thesis.Status == models.StatusNeedsRevision
}

// ValidateThesisContentUpdate validates edit access or returns an error
// distinguishing "not yours" from "wrong status".
func (p *Policy) ValidateThesisContentUpdate(user *models.User, thesis *models.Thesis) error {
	if user.RoleType != models.RoleStudent || thesis.StudentID != user.ID {
		return apperrors.NewForbiddenError("only the thesis owner can modify it")
	}
	if thesis.Status != models.StatusDraft && thesis.Status != models.StatusNeedsRevision {
		return &apperrors.CustomError{
			Err:     apperrors.ErrThesisNotEditable,
			Message: fmt.Sprintf("thesis cannot be modified while %s", thesis.Status),
		}
	}
	return nil
}

// CanTransitionStatus checks if the user may request the given status
// transition. Role gates only; whether the transition itself is legal is the
// entity's job.
//   - students: SUBMITTED only, on their own thesis
//   - advisors: UNDER_REVIEW, NEEDS_REVISION, APPROVED, REJECTED on theses
//     assigned to them
//   - admins: any target
func (p *Policy) CanTransitionStatus(user *models.User, thesis *models.Thesis, target models.ThesisStatus) bool {
	switch user.RoleType {
	case models.RoleAdmin:
		return true
	case models.RoleStudent:
		return thesis.StudentID == user.ID && target == models.StatusSubmitted
	case models.RoleAdvisor:
		if !thesis.IsAssignedTo(user.ID) {
			return false
		}
		switch target {
		case models.StatusUnderReview, models.StatusNeedsRevision,
			models.StatusApproved, models.StatusRejected:
			return true
		}
	}
	return false
}

// ValidateStatusTransition validates transition access or returns a
// permission error
func (p *Policy) ValidateStatusTransition(user *models.User, thesis *models.Thesis, target models.ThesisStatus) error {
	if !p.CanTransitionStatus(user, thesis, target) {
		return apperrors.NewForbiddenError(
			fmt.Sprintf("your role does not permit setting status %s on this thesis", target))
	}
	return nil
}

// CanProvideFeedback checks if the user may create feedback on the thesis.
// Advisors may review theses that are unassigned or assigned to them, but
// never someone else's assignment. The thesis must be in a reviewable state.
func (p *Policy) CanProvideFeedback(user *models.User, thesis *models.Thesis) bool {
	if user.RoleType != models.RoleAdvisor {
		return false
	}
	if thesis.HasAdvisor() && !thesis.IsAssignedTo(user.ID) {
		return false
	}
	return thesis.Status == models.StatusSubmitted || thesis.Status == models.StatusUnderReview
}

// ValidateFeedbackCreation validates feedback creation or returns an error
// distinguishing role, assignment and status failures.
func (p *Policy) ValidateFeedbackCreation(user *models.User, thesis *models.Thesis) error {
	if user.RoleType != models.RoleAdvisor {
		return apperrors.NewForbiddenError("only advisors can provide feedback")
	}
	if thesis.HasAdvisor() && !thesis.IsAssignedTo(user.ID) {
		return apperrors.NewForbiddenError("this thesis is assigned to another advisor")
	}
	if thesis.Status != models.StatusSubmitted && thesis.Status != models.StatusUnderReview {
		return &apperrors.CustomError{
			Err:     apperrors.ErrThesisNotEditable,
			Message: fmt.Sprintf("feedback cannot be provided while the thesis is %s", thesis.Status),
		}
	}
	return nil
}

// CanModifyFeedback checks if the user may update the feedback record: its
// authoring advisor, or an admin.
func (p *Policy) CanModifyFeedback(user *models.User, feedback *models.Feedback) bool {
	if user.RoleType == models.RoleAdmin {
		return true
	}
	return user.RoleType == models.RoleAdvisor && feedback.AdvisorID == user.ID
}

// ValidateFeedbackModification validates feedback updates or returns a
// permission error
func (p *Policy) ValidateFeedbackModification(user *models.User, feedback *models.Feedback) error {
	if !p.CanModifyFeedback(user, feedback) {
		return apperrors.NewForbiddenError("only the feedback author or an admin can modify it")
	}
	return nil
}

// CanDeleteThesis checks if the user may remove a thesis entirely. Deletion
// destroys the review history, so it is reserved for admins.
func (p *Policy) CanDeleteThesis(user *models.User) bool {
	return user.RoleType == models.RoleAdmin
}

// ValidateThesisDeletion validates deletion access or returns a permission
// error
func (p *Policy) ValidateThesisDeletion(user *models.User) error {
	if !p.CanDeleteThesis(user) {
		return apperrors.NewForbiddenError("only admins can delete a thesis")
	}
	return nil
}

// CanAssignAdvisor checks if the user may assign an advisor to the thesis.
// Admins assign anyone; advisors may claim a thesis for themselves.
func (p *Policy) CanAssignAdvisor(user *models.User, advisorID int64) bool {
	switch user.RoleType {
	case models.RoleAdmin:
		return true
	case models.RoleAdvisor:
		return user.ID == advisorID
	}
	return false
}

// ValidateAdvisorAssignment validates assignment access or returns a
// permission error
func (p *Policy) ValidateAdvisorAssignment(user *models.User, advisorID int64) error {
	if !p.CanAssignAdvisor(user, advisorID) {
		return apperrors.NewForbiddenError("advisors can only assign themselves to a thesis")
	}
	return nil
}
