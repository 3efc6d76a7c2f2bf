// Package userauth verifies panel credentials and administers login
// accounts. Authentication answers with a single error for every failure
// mode so callers cannot probe which usernames exist.
package userauth

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/painelhub/painelcore/internal/common/apperrors"
	"github.com/painelhub/painelcore/internal/painelsrv/db"
	"github.com/painelhub/painelcore/internal/painelsrv/db/dberror"
	"github.com/painelhub/painelcore/internal/painelsrv/db/models"
)

var (
	// ErrInvalidInput rejects a call before any storage work happens.
	ErrInvalidInput apperrors.Error = apperrors.New("invalid account input")

	// ErrInvalidLogin is the single answer for an unknown user, a wrong
	// password or an unusable stored hash.
	ErrInvalidLogin apperrors.Error = apperrors.New("invalid username or password")
)

var validate = validator.New()

// GlobalStamper records a successful login across the whole catalog. The
// catalog service satisfies it.
type GlobalStamper interface {
	RecordGlobalAccess(ctx context.Context, user string) error
}

// Service verifies credentials and administers accounts. Safe for
// concurrent use.
type Service struct {
	credentials db.CredentialStore
	accounts    db.AccountStore
	stamper     GlobalStamper
}

// NewService builds the credential service. stamper may be nil when login
// stamping is not wanted.
func NewService(credentials db.CredentialStore, accounts db.AccountStore, stamper GlobalStamper) *Service {
	return &Service{credentials: credentials, accounts: accounts, stamper: stamper}
}

// Authenticate verifies a username/password pair. On success it returns the
// account with the hash cleared, then stamps global access; a stamp failure
// is logged rather than returned so a slow access log never blocks a login.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.UserAccount, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidInput.Msg("username and password are required")
	}

	account, err := s.credentials.LookupByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, dberror.ErrNotFound) {
			return nil, ErrInvalidLogin
		}
		return nil, err
	}

	if strings.TrimSpace(account.PasswordHash) == "" {
		log.Ctx(ctx).Warn().Str("user", username).Msg("account has no stored password hash")
		return nil, ErrInvalidLogin
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			log.Ctx(ctx).Warn().Err(err).Str("user", username).Msg("stored password hash is not comparable")
		}
		return nil, ErrInvalidLogin
	}

	account.PasswordHash = ""

	if s.stamper != nil {
		if err := s.stamper.RecordGlobalAccess(ctx, username); err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("user", username).Msg("failed to record global access after login")
		}
	}
	return account, nil
}

// ListAccounts returns every account, newest first, without hashes.
func (s *Service) ListAccounts(ctx context.Context) ([]models.UserAccount, error) {
	return s.accounts.ListAccounts(ctx)
}

type accountInput struct {
	Username    string `validate:"required"`
	DisplayName string `validate:"required"`
	Role        string `validate:"oneof=admin user"`
	Password    string `validate:"required,min=4"`
}

// CreateAccount hashes the password and inserts the account. The returned
// value carries the generated ID and no hash.
func (s *Service) CreateAccount(ctx context.Context, username, displayName, role, password string) (*models.UserAccount, error) {
	in := accountInput{
		Username:    strings.TrimSpace(username),
		DisplayName: strings.TrimSpace(displayName),
		Role:        normalizeRole(role),
		Password:    password,
	}
	if err := validate.Struct(in); err != nil {
		return nil, ErrInvalidInput.Err(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrInvalidInput.MsgErr("could not hash password", err)
	}

	account := &models.UserAccount{
		Username:     in.Username,
		DisplayName:  in.DisplayName,
		Role:         in.Role,
		PasswordHash: string(hash),
	}
	if err := s.accounts.CreateAccount(ctx, account); err != nil {
		return nil, err
	}

	log.Ctx(ctx).Info().Str("user", account.Username).Str("role", account.Role).Msg("account created")
	account.PasswordHash = ""
	return account, nil
}

type accountUpdate struct {
	Username string `validate:"required"`
	Role     string `validate:"oneof=admin user"`
	Password string `validate:"omitempty,min=4"`
}

// UpdateAccount sets the role and, when newPassword is non-empty, replaces
// the stored hash.
func (s *Service) UpdateAccount(ctx context.Context, username, role, newPassword string) error {
	in := accountUpdate{
		Username: strings.TrimSpace(username),
		Role:     normalizeRole(role),
		Password: newPassword,
	}
	if err := validate.Struct(in); err != nil {
		return ErrInvalidInput.Err(err)
	}

	hash := ""
	if in.Password != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return ErrInvalidInput.MsgErr("could not hash password", err)
		}
		hash = string(h)
	}

	if err := s.accounts.UpdateAccount(ctx, in.Username, in.Role, hash); err != nil {
		return err
	}
	log.Ctx(ctx).Info().Str("user", in.Username).Str("role", in.Role).
		Bool("password_changed", hash != "").Msg("account updated")
	return nil
}

// DeleteAccount removes one account. Access history survives: the log's
// foreign key points at products, not users.
func (s *Service) DeleteAccount(ctx context.Context, username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return ErrInvalidInput.Msg("username is required")
	}
	if err := s.accounts.DeleteAccount(ctx, username); err != nil {
		return err
	}
	log.Ctx(ctx).Info().Str("user", username).Msg("account deleted")
	return nil
}

func normalizeRole(role string) string {
	return strings.ToLower(strings.TrimSpace(role))
}
