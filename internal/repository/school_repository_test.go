package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phishwise/phishwise-api/internal/models"
)

func TestCreateWithManagerCommitsBothWrites(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSchoolRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO schools").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET role = $2, school_id = $3, updated_at = $4 WHERE id = $1")).
		WithArgs("u1", models.RoleManager, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	school := &models.School{Name: "Northside", InviteCode: "A1B2C3D4", CreatedBy: "u1"}
	err := repo.CreateWithManager(context.Background(), school)
	require.NoError(t, err)
	assert.NotEmpty(t, school.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithManagerRollsBackOnPromoteFailure(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSchoolRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO schools").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE users SET role").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := repo.CreateWithManager(context.Background(), &models.School{Name: "Northside", InviteCode: "A1B2C3D4", CreatedBy: "u1"})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByInviteCode(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSchoolRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "invite_code", "created_by", "created_at"}).
		AddRow("school-1", "Northside", "A1B2C3D4", "u1", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, invite_code, created_by, created_at FROM schools WHERE invite_code = $1 LIMIT 1")).
		WithArgs("A1B2C3D4").
		WillReturnRows(rows)

	school, err := repo.FindByInviteCode(context.Background(), "A1B2C3D4")
	require.NoError(t, err)
	assert.Equal(t, "school-1", school.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
