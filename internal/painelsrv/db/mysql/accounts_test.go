package mysql

import (
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	mysqldrv "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/painelhub/painelcore/internal/painelsrv/db/dberror"
	"github.com/painelhub/painelcore/internal/painelsrv/db/models"
)

func TestLookupByUsername(t *testing.T) {
	stores, mock := newStores(t)

	created := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "usuario", "nome", "tipo", "senha_hash", "data_criacao"}).
		AddRow(7, "maria", "Maria Souza", "admin", "$2a$10$hash", created)
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT id, usuario, nome, tipo, senha_hash, data_criacao FROM usuarios WHERE usuario = ?",
	)).WithArgs("maria").WillReturnRows(rows)

	account, err := stores.Credentials().LookupByUsername(testCtx(), "maria")
	require.NoError(t, err)
	assert.Equal(t, int64(7), account.ID)
	assert.Equal(t, "Maria Souza", account.DisplayName)
	assert.True(t, account.IsAdmin())
	assert.Equal(t, "$2a$10$hash", account.PasswordHash)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLookupByUsernameNotFound(t *testing.T) {
	stores, mock := newStores(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT id, usuario, nome, tipo, senha_hash, data_criacao FROM usuarios WHERE usuario = ?",
	)).WithArgs("ghost").WillReturnRows(sqlmock.NewRows(
		[]string{"id", "usuario", "nome", "tipo", "senha_hash", "data_criacao"},
	))

	account, err := stores.Credentials().LookupByUsername(testCtx(), "ghost")
	assert.Nil(t, account)
	assert.ErrorIs(t, err, dberror.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListAccountsNewestFirst(t *testing.T) {
	stores, mock := newStores(t)

	rows := sqlmock.NewRows([]string{"id", "usuario", "nome", "tipo", "data_criacao"}).
		AddRow(9, "joao", "João Lima", "user", time.Date(2025, 5, 2, 8, 0, 0, 0, time.UTC)).
		AddRow(7, "maria", "Maria Souza", "admin", time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC))
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT id, usuario, nome, tipo, data_criacao FROM usuarios ORDER BY data_criacao DESC",
	)).WillReturnRows(rows)

	accounts, err := stores.Accounts().ListAccounts(testCtx())
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "joao", accounts[0].Username)
	assert.Empty(t, accounts[0].PasswordHash)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAccountSetsGeneratedID(t *testing.T) {
	stores, mock := newStores(t)

	mock.ExpectExec(regexp.QuoteMeta(
		"INSERT INTO usuarios (nome, usuario, senha_hash, tipo, data_criacao) VALUES (?, ?, ?, ?, NOW())",
	)).WithArgs("Ana Reis", "ana", "$2a$10$hash", "user").
		WillReturnResult(sqlmock.NewResult(11, 1))

	account := &models.UserAccount{
		Username:     "ana",
		DisplayName:  "Ana Reis",
		Role:         models.RoleUser,
		PasswordHash: "$2a$10$hash",
	}
	err := stores.Accounts().CreateAccount(testCtx(), account)
	require.NoError(t, err)
	assert.Equal(t, int64(11), account.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAccountDuplicateUsername(t *testing.T) {
	stores, mock := newStores(t)

	mock.ExpectExec(regexp.QuoteMeta(
		"INSERT INTO usuarios (nome, usuario, senha_hash, tipo, data_criacao) VALUES (?, ?, ?, ?, NOW())",
	)).WithArgs("Maria Souza", "maria", "$2a$10$hash", "admin").
		WillReturnError(&mysqldrv.MySQLError{Number: erDupEntry, Message: "Duplicate entry 'maria'"})

	err := stores.Accounts().CreateAccount(testCtx(), &models.UserAccount{
		Username:     "maria",
		DisplayName:  "Maria Souza",
		Role:         models.RoleAdmin,
		PasswordHash: "$2a$10$hash",
	})
	assert.ErrorIs(t, err, dberror.ErrAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateAccountRoleOnly(t *testing.T) {
	stores, mock := newStores(t)

	mock.ExpectExec(regexp.QuoteMeta(
		"UPDATE usuarios SET tipo = ? WHERE usuario = ?",
	)).WithArgs("admin", "joao").WillReturnResult(sqlmock.NewResult(0, 1))

	err := stores.Accounts().UpdateAccount(testCtx(), "joao", "admin", "")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateAccountWithNewPassword(t *testing.T) {
	stores, mock := newStores(t)

	mock.ExpectExec(regexp.QuoteMeta(
		"UPDATE usuarios SET tipo = ?, senha_hash = ? WHERE usuario = ?",
	)).WithArgs("user", "$2a$10$newhash", "joao").WillReturnResult(sqlmock.NewResult(0, 1))

	err := stores.Accounts().UpdateAccount(testCtx(), "joao", "user", "$2a$10$newhash")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteAccount(t *testing.T) {
	stores, mock := newStores(t)

	del := regexp.QuoteMeta("DELETE FROM usuarios WHERE usuario = ?")
	mock.ExpectExec(del).WithArgs("joao").WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, stores.Accounts().DeleteAccount(testCtx(), "joao"))

	mock.ExpectExec(del).WithArgs("ghost").WillReturnResult(sqlmock.NewResult(0, 0))
	err := stores.Accounts().DeleteAccount(testCtx(), "ghost")
	assert.ErrorIs(t, err, dberror.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
