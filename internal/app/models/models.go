package models

// RoleType defines the user role type
type RoleType string

const (
	RoleStudent RoleType = "STUDENT"
	RoleAdvisor RoleType = "ADVISOR"
	RoleAdmin   RoleType = "ADMIN"
)

// IsValid reports whether the role is one of the defined roles.
func (r RoleType) IsValid() bool {
	switch r {
	case RoleStudent, RoleAdvisor, RoleAdmin:
		return true
	}
	return false
}

// ThesisType distinguishes draft submissions from final submissions
type ThesisType string

const (
	ThesisTypeDraft ThesisType = "DRAFT"
	ThesisTypeFinal ThesisType = "FINAL"
)

// IsValid reports whether the thesis type is one of the defined types.
func (t ThesisType) IsValid() bool {
	return t == ThesisTypeDraft || t == ThesisTypeFinal
}
