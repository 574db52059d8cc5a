package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"slotbook/internal/database"
	"slotbook/internal/domain"
	"slotbook/internal/events"
	"slotbook/internal/models"
	"slotbook/internal/token"
)

// RegisterRequest carries a signup. LoginID, nickname and phone number
// must all be unused; PrivacyAgree is mandatory.
type RegisterRequest struct {
	LoginID      string `json:"login_id"`
	Password     string `json:"password"`
	Nickname     string `json:"nickname"`
	PhoneNumber  string `json:"phone_number"`
	PrivacyAgree bool   `json:"privacy_agree"`
	PRAgree      bool   `json:"pr_agree"`
}

type LoginRequest struct {
	LoginID  string `json:"login_id"`
	Password string `json:"password"`
}

// UserService owns the account lifecycle and the token flows built on
// it.
type UserService struct {
	store  domain.Store
	hasher domain.PasswordHasher
	tokens *token.Manager
	events domain.EventPublisher
	logger *zerolog.Logger
}

func NewUserService(store domain.Store, hasher domain.PasswordHasher, tokens *token.Manager, publisher domain.EventPublisher, logger *zerolog.Logger) *UserService {
	return &UserService{
		store:  store,
		hasher: hasher,
		tokens: tokens,
		events: publisher,
		logger: logger,
	}
}

// Register creates an enabled account with the user role. Login id,
// nickname and phone number are checked for reuse before the insert;
// the store's unique indexes close the race.
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	if req.LoginID == "" || req.Password == "" || req.Nickname == "" || req.PhoneNumber == "" {
		return nil, fmt.Errorf("%w: login id, password, nickname and phone number are required", ErrInvalidInput)
	}
	if !req.PrivacyAgree {
		return nil, fmt.Errorf("%w: privacy agreement is required", ErrInvalidInput)
	}

	if existing, err := s.store.FindUserByInfo(ctx, req.LoginID, req.Nickname, req.PhoneNumber); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, database.ErrDuplicateUserInfo
	}

	digest, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		LoginID:      req.LoginID,
		Password:     digest,
		Nickname:     req.Nickname,
		PhoneNumber:  req.PhoneNumber,
		Provider:     models.ProviderApplication,
		Roles:        []string{models.RoleUser},
		Enabled:      true,
		PrivacyAgree: req.PrivacyAgree,
		PRAgree:      req.PRAgree,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	if s.events != nil {
		_ = s.events.PublishJSON(events.EventUserRegistered, events.UserEventPayload{UserID: user.ID, LoginID: user.LoginID})
	}
	if s.logger != nil {
		s.logger.Info().Int64("user_id", user.ID).Msg("user registered")
	}
	return user, nil
}

// Login verifies credentials and mints a token pair. Wrong login id
// and wrong password collapse into the same error so the endpoint does
// not reveal which accounts exist.
func (s *UserService) Login(ctx context.Context, req LoginRequest) (token.Pair, error) {
	user, err := s.store.GetUserByLoginID(ctx, req.LoginID)
	if err != nil {
		return token.Pair{}, database.ErrInvalidCredentials
	}
	if !user.Enabled {
		return token.Pair{}, database.ErrUserDisabled
	}
	if !s.hasher.Verify(req.Password, user.Password) {
		return token.Pair{}, database.ErrInvalidCredentials
	}

	pair, err := s.tokens.IssuePair(user.ID, user.Roles)
	if err != nil {
		return token.Pair{}, fmt.Errorf("issue token pair: %w", err)
	}
	if s.logger != nil {
		s.logger.Info().Int64("user_id", user.ID).Msg("user logged in")
	}
	return pair, nil
}

// Refresh validates a refresh token and rotates the whole pair. Roles
// are re-read from the store, so a role change takes effect on the
// next rotation even though refresh tokens carry identity only.
func (s *UserService) Refresh(ctx context.Context, rawRefresh string) (token.Pair, error) {
	claims, err := s.tokens.Validate(rawRefresh, token.KindRefresh)
	if err != nil {
		return token.Pair{}, err
	}

	user, err := s.store.GetUserByID(ctx, claims.Subject)
	if err != nil {
		return token.Pair{}, err
	}
	if !user.Enabled {
		return token.Pair{}, database.ErrUserDisabled
	}

	pair, err := s.tokens.IssuePair(user.ID, user.Roles)
	if err != nil {
		return token.Pair{}, fmt.Errorf("issue token pair: %w", err)
	}
	return pair, nil
}

// Deactivate disables the actor's own account after a password
// recheck. Existing tokens keep validating until expiry; the identity
// resolver rejects them because the account is no longer enabled.
func (s *UserService) Deactivate(ctx context.Context, actor models.Actor, password string) error {
	if !actor.IsMember() {
		return ErrMemberRequired
	}
	if !s.hasher.Verify(password, actor.Member.Password) {
		return database.ErrInvalidCredentials
	}

	affected, err := s.store.DeactivateUser(ctx, actor.Member.ID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return database.ErrUserNotFound
	}

	if s.events != nil {
		_ = s.events.PublishJSON(events.EventUserDeactivated, events.UserEventPayload{UserID: actor.Member.ID, LoginID: actor.Member.LoginID})
	}
	if s.logger != nil {
		s.logger.Info().Int64("user_id", actor.Member.ID).Msg("user deactivated")
	}
	return nil
}
