// AngelaMos | 2026
// dto.go

package user

import (
	"time"
)

type ProfileResponse struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	EmailVerified bool       `json:"email_verified"`
	Avatar        *string    `json:"avatar,omitempty"`
	Role          string     `json:"role"`
	Subscribed    bool       `json:"subscribed"`
	PeriodEnd     *time.Time `json:"current_period_end,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type UserListResponse struct {
	Users []ProfileResponse `json:"users"`
	Total int               `json:"total"`
}

type ListUsersParams struct {
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Search   string `json:"search"`
	Role     string `json:"role"`
}

func (p *ListUsersParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *ListUsersParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToProfileResponse(u *User) ProfileResponse {
	return ProfileResponse{
		ID:            u.ID,
		Email:         u.Email,
		EmailVerified: u.EmailVerified,
		Avatar:        u.Avatar,
		Role:          u.Role,
		Subscribed:    u.IsSubscribed(),
		PeriodEnd:     u.StripeCurrentPeriodEnd,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

func ToProfileResponseList(users []User) []ProfileResponse {
	responses := make([]ProfileResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, ToProfileResponse(&u))
	}
	return responses
}
