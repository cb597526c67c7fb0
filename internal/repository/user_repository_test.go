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

	"github.com/phishwise/phishwise-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func TestFindByEmail(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "email", "password_hash", "name", "image", "role", "school_id", "created_at", "updated_at"}).
		AddRow("1", "user@example.com", "hash", "User", nil, string(models.RoleUser), nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, password_hash, name, image, role, school_id, created_at, updated_at FROM users WHERE email = $1 LIMIT 1")).
		WithArgs("user@example.com").
		WillReturnRows(rows)

	user, err := repo.FindByEmail(context.Background(), "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", user.Email)
	assert.Nil(t, user.SchoolID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUser(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(1, 1))

	user := &models.User{Email: "new@example.com", Name: "New", Role: models.RoleUser}
	err := repo.Create(context.Background(), user)
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignSchoolTransitions(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET school_id = $2, updated_at = $3 WHERE id = $1 AND school_id IS NULL")).
		WithArgs("u1", "school-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	joined, err := repo.AssignSchool(context.Background(), "u1", "school-1")
	require.NoError(t, err)
	assert.True(t, joined)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignSchoolAlreadyMember(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET school_id = $2, updated_at = $3 WHERE id = $1 AND school_id IS NULL")).
		WithArgs("u1", "school-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	joined, err := repo.AssignSchool(context.Background(), "u1", "school-1")
	require.NoError(t, err)
	assert.False(t, joined)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListMembersWithMetricsCoalescesZeroes(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "email", "total_sent", "total_clicked", "total_completed", "last_activity"}).
		AddRow("u1", "Alice", "alice@example.com", 10, 2, 1, time.Now()).
		AddRow("u2", "Bob", "bob@example.com", 0, 0, 0, nil)
	mock.ExpectQuery("SELECT u.id, u.name, u.email").
		WithArgs("school-1").
		WillReturnRows(rows)

	members, err := repo.ListMembersWithMetrics(context.Background(), "school-1")
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, 10, members[0].TotalSent)
	assert.Equal(t, 0, members[1].TotalSent)
	assert.Nil(t, members[1].LastActivity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMetricsByUser(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	rows := sqlmock.NewRows([]string{"id", "user_id", "total_sent", "total_clicked", "total_completed", "last_activity"}).
		AddRow("m1", "u1", 12, 3, 1, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, total_sent, total_clicked, total_completed, last_activity FROM user_metrics WHERE user_id = $1 LIMIT 1")).
		WithArgs("u1").
		WillReturnRows(rows)

	metrics, err := repo.MetricsByUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 12, metrics.TotalSent)
	assert.Equal(t, 3, metrics.TotalClicked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRefreshToken(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec("INSERT INTO refresh_tokens").WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.CreateRefreshToken(context.Background(), &models.RefreshToken{UserID: "u1", Token: "token", ExpiresAt: time.Now()})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAuditLog(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec("INSERT INTO audit_logs").WillReturnResult(sqlmock.NewResult(1, 1))

	userID := "u1"
	err := repo.CreateAuditLog(context.Background(), &models.AuditLog{UserID: &userID, Action: models.AuditActionLogin, Resource: "users"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
