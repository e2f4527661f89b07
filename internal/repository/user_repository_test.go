package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusops/schedule-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func userColumns() []string {
	return []string{"id", "email", "password_hash", "full_name", "role", "active", "last_login", "created_at", "updated_at"}
}

func TestFindUserByEmail(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(userColumns()).
		AddRow("user-registrar", "registrar@campus.edu", "hash", "Dana Reyes", string(models.RoleRegistrar), true, now, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, password_hash, full_name, role, active, last_login, created_at, updated_at FROM users WHERE email = $1 LIMIT 1")).
		WithArgs("registrar@campus.edu").
		WillReturnRows(rows)

	user, err := repo.FindByEmail(context.Background(), "registrar@campus.edu")
	require.NoError(t, err)
	assert.Equal(t, "registrar@campus.edu", user.Email)
	assert.Equal(t, models.RoleRegistrar, user.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRefreshToken(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec("INSERT INTO refresh_tokens").WillReturnResult(sqlmock.NewResult(1, 1))

	token := &models.RefreshToken{
		ID: "rt-1", UserID: "user-registrar", Token: "opaque-token",
		ExpiresAt: time.Now().Add(24 * time.Hour), CreatedAt: time.Now(),
	}
	require.NoError(t, repo.CreateRefreshToken(context.Background(), token))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListUsersDefaults(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now()
	listRows := sqlmock.NewRows(userColumns()).
		AddRow("user-admin", "admin@campus.edu", "hash", "Priya Nair", string(models.RoleAdmin), true, now, now, now).
		AddRow("user-faculty", "faculty@campus.edu", "hash", "Miguel Santos", string(models.RoleFaculty), true, now, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, password_hash, full_name, role, active, last_login, created_at, updated_at FROM users WHERE 1=1 ORDER BY created_at DESC LIMIT 20 OFFSET 0")).
		WillReturnRows(listRows)

	countRows := sqlmock.NewRows([]string{"count"}).AddRow(2)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users WHERE 1=1")).WillReturnRows(countRows)

	users, total, err := repo.List(context.Background(), models.UserFilter{})
	require.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Equal(t, 2, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListUsersFiltersByRole(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now()
	listRows := sqlmock.NewRows(userColumns()).
		AddRow("user-faculty", "faculty@campus.edu", "hash", "Miguel Santos", string(models.RoleFaculty), true, now, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE 1=1 AND role = $1 ORDER BY created_at DESC")).
		WithArgs("FACULTY").
		WillReturnRows(listRows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users WHERE 1=1 AND role = $1")).
		WithArgs("FACULTY").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	faculty := models.RoleFaculty
	users, total, err := repo.List(context.Background(), models.UserFilter{Role: &faculty})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, models.RoleFaculty, users[0].Role)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteUserDeactivates(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET active = FALSE, updated_at = $2 WHERE id = $1")).
		WithArgs("user-faculty", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "user-faculty"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
