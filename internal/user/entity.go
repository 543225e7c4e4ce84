// AngelaMos | 2026
// entity.go

package user

import (
	"time"
)

type User struct {
	ID                     string     `db:"id"`
	Email                  string     `db:"email"`
	EmailVerified          bool       `db:"email_verified"`
	PasswordHash           *string    `db:"password_hash"`
	Avatar                 *string    `db:"avatar"`
	StripeCustomerID       *string    `db:"stripe_customer_id"`
	StripeSubscriptionID   *string    `db:"stripe_subscription_id"`
	StripePriceID          *string    `db:"stripe_price_id"`
	StripeCurrentPeriodEnd *time.Time `db:"stripe_current_period_end"`
	Role                   string     `db:"role"`
	CreatedAt              time.Time  `db:"created_at"`
	UpdatedAt              time.Time  `db:"updated_at"`
}

// HasPassword reports whether the account can authenticate with a
// password. OAuth-only accounts have no hash.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

func (u *User) IsSubscribed() bool {
	return u.StripeSubscriptionID != nil &&
		u.StripeCurrentPeriodEnd != nil &&
		u.StripeCurrentPeriodEnd.After(time.Now())
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

const (
	RoleBasic     = "basic"
	RolePremium   = "premium"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

func ValidRole(role string) bool {
	switch role {
	case RoleBasic, RolePremium, RoleModerator, RoleAdmin:
		return true
	}
	return false
}
