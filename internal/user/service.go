// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/BuildAppolis/Nexus-Forge/internal/auth"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetByID(
	ctx context.Context,
	id string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) GetByEmail(
	ctx context.Context,
	email string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) ExistsByEmail(
	ctx context.Context,
	email string,
) (bool, error) {
	return s.repo.ExistsByEmail(ctx, email)
}

// Create registers a password account. Email verification starts false
// and is flipped only by the verify-email flow.
func (s *Service) Create(
	ctx context.Context,
	email, passwordHash string,
) (*auth.UserInfo, error) {
	user := &User{
		ID:            uuid.New().String(),
		Email:         email,
		EmailVerified: false,
		PasswordHash:  &passwordHash,
		Role:          RoleBasic,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) MarkEmailVerified(ctx context.Context, userID string) error {
	return s.repo.SetEmailVerified(ctx, userID)
}

func (s *Service) UpdatePassword(
	ctx context.Context,
	userID, passwordHash string,
) error {
	return s.repo.UpdatePassword(ctx, userID, passwordHash)
}

func (s *Service) LinkSubscription(
	ctx context.Context,
	userID, customerID, subscriptionID, priceID string,
	currentPeriodEnd time.Time,
) error {
	return s.repo.LinkSubscription(ctx, userID, SubscriptionFields{
		CustomerID:       customerID,
		SubscriptionID:   subscriptionID,
		PriceID:          priceID,
		CurrentPeriodEnd: currentPeriodEnd,
	})
}

func (s *Service) RenewSubscription(
	ctx context.Context,
	userID, priceID string,
	currentPeriodEnd time.Time,
) error {
	return s.repo.RenewSubscription(ctx, userID, priceID, currentPeriodEnd)
}

func (s *Service) StripeCustomerID(
	ctx context.Context,
	userID string,
) (string, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}

	if user.StripeCustomerID == nil {
		return "", nil
	}
	return *user.StripeCustomerID, nil
}

func (s *Service) Profile(
	ctx context.Context,
	id string,
) (*ProfileResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	profile := ToProfileResponse(user)
	return &profile, nil
}

func (s *Service) List(
	ctx context.Context,
	params ListUsersParams,
) (*UserListResponse, error) {
	users, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	return &UserListResponse{
		Users: ToProfileResponseList(users),
		Total: total,
	}, nil
}

func toUserInfo(u *User) *auth.UserInfo {
	info := &auth.UserInfo{
		ID:            u.ID,
		Email:         u.Email,
		EmailVerified: u.EmailVerified,
		Role:          u.Role,
	}
	if u.PasswordHash != nil {
		info.PasswordHash = *u.PasswordHash
	}
	return info
}
