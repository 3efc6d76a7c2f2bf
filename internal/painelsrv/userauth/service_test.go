package userauth

import (
	"context"
	"testing"

	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/painelhub/painelcore/internal/painelsrv/db/dberror"
	"github.com/painelhub/painelcore/internal/painelsrv/db/models"
)

type fakeCredentials struct {
	byUsername map[string]models.UserAccount
	lookups    int
	failWith   error
}

func (f *fakeCredentials) LookupByUsername(_ context.Context, username string) (*models.UserAccount, error) {
	f.lookups++
	if f.failWith != nil {
		return nil, f.failWith
	}
	account, ok := f.byUsername[username]
	if !ok {
		return nil, dberror.ErrNotFound.Msg("user " + username)
	}
	copied := account
	return &copied, nil
}

type fakeAccounts struct {
	created []models.UserAccount
	updated []models.UserAccount
	deleted []string
}

func (f *fakeAccounts) ListAccounts(context.Context) ([]models.UserAccount, error) {
	return f.created, nil
}

func (f *fakeAccounts) CreateAccount(_ context.Context, account *models.UserAccount) error {
	account.ID = int64(len(f.created) + 1)
	f.created = append(f.created, *account)
	return nil
}

func (f *fakeAccounts) UpdateAccount(_ context.Context, username, role, passwordHash string) error {
	f.updated = append(f.updated, models.UserAccount{Username: username, Role: role, PasswordHash: passwordHash})
	return nil
}

func (f *fakeAccounts) DeleteAccount(_ context.Context, username string) error {
	f.deleted = append(f.deleted, username)
	return nil
}

type fakeStamper struct {
	users    []string
	failWith error
}

func (f *fakeStamper) RecordGlobalAccess(_ context.Context, user string) error {
	f.users = append(f.users, user)
	return f.failWith
}

func testCtx() context.Context {
	return log.Logger.WithContext(context.Background())
}

func hashFor(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestAuthenticateSuccess(t *testing.T) {
	creds := &fakeCredentials{byUsername: map[string]models.UserAccount{
		"regina": {ID: 7, Username: "regina", DisplayName: "Regina", Role: models.RoleAdmin, PasswordHash: hashFor(t, "s3cret")},
	}}
	stamper := &fakeStamper{}
	svc := NewService(creds, &fakeAccounts{}, stamper)

	account, err := svc.Authenticate(testCtx(), " regina ", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, int64(7), account.ID)
	assert.Equal(t, "Regina", account.DisplayName)
	assert.True(t, account.IsAdmin())
	assert.Empty(t, account.PasswordHash, "hash must not leave the service")
	assert.Equal(t, []string{"regina"}, stamper.users)
}

func TestAuthenticateFailuresAreIndistinguishable(t *testing.T) {
	creds := &fakeCredentials{byUsername: map[string]models.UserAccount{
		"ana":   {Username: "ana", PasswordHash: hashFor(t, "right")},
		"bruno": {Username: "bruno", PasswordHash: "   "},
	}}
	stamper := &fakeStamper{}
	svc := NewService(creds, &fakeAccounts{}, stamper)

	_, unknownErr := svc.Authenticate(testCtx(), "nobody", "whatever")
	_, wrongErr := svc.Authenticate(testCtx(), "ana", "wrong")
	_, blankHashErr := svc.Authenticate(testCtx(), "bruno", "anything")

	assert.ErrorIs(t, unknownErr, ErrInvalidLogin)
	assert.ErrorIs(t, wrongErr, ErrInvalidLogin)
	assert.ErrorIs(t, blankHashErr, ErrInvalidLogin)
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())
	assert.Equal(t, wrongErr.Error(), blankHashErr.Error())
	assert.Empty(t, stamper.users, "failed logins must not stamp access")
}

func TestAuthenticateRequiresInput(t *testing.T) {
	creds := &fakeCredentials{}
	svc := NewService(creds, &fakeAccounts{}, &fakeStamper{})

	_, err := svc.Authenticate(testCtx(), "  ", "pw")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Authenticate(testCtx(), "ana", "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	assert.Zero(t, creds.lookups, "invalid input must be rejected before storage")
}

func TestAuthenticateStampFailureDoesNotFailLogin(t *testing.T) {
	creds := &fakeCredentials{byUsername: map[string]models.UserAccount{
		"ana": {Username: "ana", PasswordHash: hashFor(t, "pw1234")},
	}}
	stamper := &fakeStamper{failWith: dberror.ErrDatabase.Msg("access log down")}
	svc := NewService(creds, &fakeAccounts{}, stamper)

	account, err := svc.Authenticate(testCtx(), "ana", "pw1234")
	require.NoError(t, err)
	assert.Equal(t, "ana", account.Username)
	assert.Equal(t, []string{"ana"}, stamper.users)
}

func TestAuthenticateStoreErrorPropagates(t *testing.T) {
	creds := &fakeCredentials{failWith: dberror.ErrDatabase.Msg("connection lost")}
	svc := NewService(creds, &fakeAccounts{}, &fakeStamper{})

	_, err := svc.Authenticate(testCtx(), "ana", "pw")
	assert.ErrorIs(t, err, dberror.ErrDatabase)
	assert.NotErrorIs(t, err, ErrInvalidLogin, "storage faults must stay distinguishable")
}

func TestAuthenticateWorksWithoutStamper(t *testing.T) {
	creds := &fakeCredentials{byUsername: map[string]models.UserAccount{
		"ana": {Username: "ana", PasswordHash: hashFor(t, "pw1234")},
	}}
	svc := NewService(creds, &fakeAccounts{}, nil)

	_, err := svc.Authenticate(testCtx(), "ana", "pw1234")
	require.NoError(t, err)
}

func TestCreateAccountHashesPassword(t *testing.T) {
	accounts := &fakeAccounts{}
	svc := NewService(&fakeCredentials{}, accounts, nil)

	account, err := svc.CreateAccount(testCtx(), " regina ", "Regina Souza", " Admin ", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, int64(1), account.ID)
	assert.Equal(t, "regina", account.Username)
	assert.Equal(t, models.RoleAdmin, account.Role)
	assert.Empty(t, account.PasswordHash)

	require.Len(t, accounts.created, 1)
	stored := accounts.created[0]
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("s3cret")))
	assert.Error(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("other")))
}

func TestCreateAccountValidation(t *testing.T) {
	tests := []struct {
		name        string
		username    string
		displayName string
		role        string
		password    string
	}{
		{"blank username", "   ", "Ana", "user", "pw1234"},
		{"blank display name", "ana", "", "user", "pw1234"},
		{"unknown role", "ana", "Ana", "root", "pw1234"},
		{"short password", "ana", "Ana", "user", "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accounts := &fakeAccounts{}
			svc := NewService(&fakeCredentials{}, accounts, nil)

			_, err := svc.CreateAccount(testCtx(), tt.username, tt.displayName, tt.role, tt.password)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Empty(t, accounts.created)
		})
	}
}

func TestUpdateAccountPasswordOptional(t *testing.T) {
	accounts := &fakeAccounts{}
	svc := NewService(&fakeCredentials{}, accounts, nil)

	require.NoError(t, svc.UpdateAccount(testCtx(), "ana", "admin", ""))
	require.Len(t, accounts.updated, 1)
	assert.Empty(t, accounts.updated[0].PasswordHash, "empty password must keep the stored hash")

	require.NoError(t, svc.UpdateAccount(testCtx(), "ana", "user", "newpass"))
	require.Len(t, accounts.updated, 2)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(accounts.updated[1].PasswordHash), []byte("newpass")))
}

func TestUpdateAccountValidation(t *testing.T) {
	accounts := &fakeAccounts{}
	svc := NewService(&fakeCredentials{}, accounts, nil)

	assert.ErrorIs(t, svc.UpdateAccount(testCtx(), "ana", "root", ""), ErrInvalidInput)
	assert.ErrorIs(t, svc.UpdateAccount(testCtx(), "ana", "user", "abc"), ErrInvalidInput)
	assert.ErrorIs(t, svc.UpdateAccount(testCtx(), "", "user", ""), ErrInvalidInput)
	assert.Empty(t, accounts.updated)
}

func TestDeleteAccount(t *testing.T) {
	accounts := &fakeAccounts{}
	svc := NewService(&fakeCredentials{}, accounts, nil)

	assert.ErrorIs(t, svc.DeleteAccount(testCtx(), "  "), ErrInvalidInput)
	require.NoError(t, svc.DeleteAccount(testCtx(), " ana "))
	assert.Equal(t, []string{"ana"}, accounts.deleted)
}
