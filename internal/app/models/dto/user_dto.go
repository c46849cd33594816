package dto

import (
	"time"

	"thesisflow/internal/app/models"
)

// UserResponse represents basic user information
type UserResponse struct {
	ID            int64     `json:"id"`
	Email         string    `json:"email"`
	FirstName     string    `json:"firstName"`
	LastName      string    `json:"lastName"`
	RoleType      string    `json:"roleType" enums:"STUDENT,ADVISOR,ADMIN"`
	StudentNumber *string   `json:"studentNumber,omitempty"`
	Department    *string   `json:"department,omitempty"`
	IsActive      bool      `json:"isActive"`
	EmailVerified bool      `json:"emailVerified"`
	CreatedAt     time.Time `json:"createdAt"`
}

// FromUser converts a models.User to a UserResponse
func FromUser(user *models.User) UserResponse {
	if user == nil {
		return UserResponse{}
	}
	return UserResponse{
		ID:            user.ID,
		Email:         user.Email,
		FirstName:     user.FirstName,
		LastName:      user.LastName,
		RoleType:      string(user.RoleType),
		StudentNumber: user.StudentNumber,
		Department:    user.Department,
		IsActive:      user.IsActive,
		EmailVerified: user.EmailVerified,
		CreatedAt:     user.CreatedAt,
	}
}

// UserListResponse represents a paginated list of users
type UserListResponse struct {
	Users      []UserResponse `json:"users"`
	Pagination PaginationInfo `json:"pagination"`
}

// SystemStatsResponse aggregates platform counts for the admin dashboard
type SystemStatsResponse struct {
	TotalUsers     int            `json:"totalUsers"`
	UsersByRole    map[string]int `json:"usersByRole"`
	TotalTheses    int            `json:"totalTheses"`
	ThesesByStatus map[string]int `json:"thesesByStatus"`
}

// UserFilterRequest represents user list filter parameters
type UserFilterRequest struct {
	RoleType *string `form:"roleType,omitempty" binding:"omitempty,oneof=STUDENT ADVISOR ADMIN"`
	IsActive *bool   `form:"isActive,omitempty"`
	Page     int     `form:"page,default=1" binding:"min=1"`
	PageSize int     `form:"pageSize,default=10" binding:"min=1,max=100"`
}
