// AngelaMos | 2026
// entity_test.go

package user

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

func TestHasPassword(t *testing.T) {
	assert.False(t, (&User{}).HasPassword())
	assert.False(t, (&User{PasswordHash: strPtr("")}).HasPassword())
	assert.True(t, (&User{PasswordHash: strPtr("$argon2id$...")}).HasPassword())
}

func TestIsSubscribed(t *testing.T) {
	future := timePtr(time.Now().Add(24 * time.Hour))
	past := timePtr(time.Now().Add(-24 * time.Hour))

	t.Run("no subscription", func(t *testing.T) {
		assert.False(t, (&User{}).IsSubscribed())
	})

	t.Run("active period", func(t *testing.T) {
		u := &User{
			StripeSubscriptionID:   strPtr("sub_123"),
			StripeCurrentPeriodEnd: future,
		}
		assert.True(t, u.IsSubscribed())
	})

	t.Run("lapsed period", func(t *testing.T) {
		u := &User{
			StripeSubscriptionID:   strPtr("sub_123"),
			StripeCurrentPeriodEnd: past,
		}
		assert.False(t, u.IsSubscribed())
	})

	t.Run("period without subscription id", func(t *testing.T) {
		u := &User{StripeCurrentPeriodEnd: future}
		assert.False(t, u.IsSubscribed())
	})
}

func TestValidRole(t *testing.T) {
	for _, role := range []string{RoleBasic, RolePremium, RoleModerator, RoleAdmin} {
		assert.True(t, ValidRole(role), role)
	}
	assert.False(t, ValidRole(""))
	assert.False(t, ValidRole("superuser"))
}

func TestListUsersParamsNormalize(t *testing.T) {
	p := &ListUsersParams{Page: 0, PageSize: 0}
	p.Normalize()
	assert.Equal(t, 1, p.Page)
	assert.Positive(t, p.PageSize)
	assert.Equal(t, 0, p.Offset())

	p = &ListUsersParams{Page: 3, PageSize: 20}
	p.Normalize()
	assert.Equal(t, 40, p.Offset())
}
