// internal/booking/store_test.go
package booking

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"interview-backend/internal/common/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const insertBookingQuery = `INSERT INTO bookings \(token, name, email, phone, scheduled_at, created_at, resume_text, resume_url\)`
const selectBookingQuery = `SELECT token, name, email, phone, scheduled_at, created_at, resume_text, resume_url`

func strPtr(s string) *string { return &s }

func TestStore_Create_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	scheduledAt := time.Date(2025, 3, 1, 4, 30, 0, 0, time.UTC)

	mock.ExpectExec(insertBookingQuery).
		WithArgs(sqlmock.AnyArg(), "Jane Doe", "jane@example.com", "+911234567890",
			scheduledAt, sqlmock.AnyArg(),
			sql.NullString{String: "resume text", Valid: true},
			sql.NullString{String: "https://storage.example.com/resumes/x.pdf", Valid: true}).
		WillReturnResult(sqlmock.NewResult(0, 1))

	store := NewStore(db, logger.NewNoOpLogger())
	token, err := store.Create(context.Background(), CreateParams{
		Name:        "Jane Doe",
		Email:       "jane@example.com",
		Phone:       "+911234567890",
		ScheduledAt: scheduledAt,
		ResumeText:  strPtr("resume text"),
		ResumeURL:   strPtr("https://storage.example.com/resumes/x.pdf"),
	})

	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	// Token must be a parseable uuid
	_, err = uuid.Parse(token)
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Create_WithoutResume(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(insertBookingQuery).
		WithArgs(sqlmock.AnyArg(), "Jane Doe", "jane@example.com", "+911234567890",
			sqlmock.AnyArg(), sqlmock.AnyArg(),
			sql.NullString{}, sql.NullString{}).
		WillReturnResult(sqlmock.NewResult(0, 1))

	store := NewStore(db, logger.NewNoOpLogger())
	token, err := store.Create(context.Background(), CreateParams{
		Name:        "Jane Doe",
		Email:       "jane@example.com",
		Phone:       "+911234567890",
		ScheduledAt: time.Now().UTC(),
	})

	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Create_InsertFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(insertBookingQuery).
		WillReturnError(errors.New("connection refused"))

	store := NewStore(db, logger.NewNoOpLogger())
	token, err := store.Create(context.Background(), CreateParams{
		Name:        "Jane Doe",
		Email:       "jane@example.com",
		Phone:       "+911234567890",
		ScheduledAt: time.Now().UTC(),
	})

	assert.Error(t, err)
	assert.Empty(t, token)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Create_GeneratesUniqueTokens(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(insertBookingQuery).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(insertBookingQuery).WillReturnResult(sqlmock.NewResult(0, 1))

	store := NewStore(db, logger.NewNoOpLogger())
	params := CreateParams{Name: "A", Email: "a@example.com", Phone: "1", ScheduledAt: time.Now().UTC()}

	first, err := store.Create(context.Background(), params)
	require.NoError(t, err)
	second, err := store.Create(context.Background(), params)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_GetByToken_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	token := uuid.New().String()
	scheduledAt := time.Date(2025, 3, 1, 4, 30, 0, 0, time.UTC)
	createdAt := time.Date(2025, 2, 20, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(selectBookingQuery).
		WithArgs(token).
		WillReturnRows(sqlmock.NewRows(
			[]string{"token", "name", "email", "phone", "scheduled_at", "created_at", "resume_text", "resume_url"}).
			AddRow(token, "Jane Doe", "jane@example.com", "+911234567890",
				scheduledAt, createdAt, "resume text", "https://storage.example.com/resumes/x.pdf"))

	store := NewStore(db, logger.NewNoOpLogger())
	b, err := store.GetByToken(context.Background(), token)

	require.NoError(t, err)
	assert.Equal(t, token, b.Token)
	assert.Equal(t, "Jane Doe", b.Name)
	assert.Equal(t, "jane@example.com", b.Email)
	assert.Equal(t, "+911234567890", b.Phone)
	assert.True(t, scheduledAt.Equal(b.ScheduledAt))
	assert.True(t, createdAt.Equal(b.CreatedAt))
	require.NotNil(t, b.ResumeText)
	assert.Equal(t, "resume text", *b.ResumeText)
	require.NotNil(t, b.ResumeURL)
	assert.Equal(t, "https://storage.example.com/resumes/x.pdf", *b.ResumeURL)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_GetByToken_NullResumeFields(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	token := uuid.New().String()

	mock.ExpectQuery(selectBookingQuery).
		WithArgs(token).
		WillReturnRows(sqlmock.NewRows(
			[]string{"token", "name", "email", "phone", "scheduled_at", "created_at", "resume_text", "resume_url"}).
			AddRow(token, "Jane Doe", "jane@example.com", "+911234567890",
				time.Now().UTC(), time.Now().UTC(), nil, nil))

	store := NewStore(db, logger.NewNoOpLogger())
	b, err := store.GetByToken(context.Background(), token)

	require.NoError(t, err)
	assert.Nil(t, b.ResumeText)
	assert.Nil(t, b.ResumeURL)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_GetByToken_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(selectBookingQuery).
		WithArgs("missing-token").
		WillReturnError(sql.ErrNoRows)

	store := NewStore(db, logger.NewNoOpLogger())
	b, err := store.GetByToken(context.Background(), "missing-token")

	assert.Nil(t, b)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_GetByToken_QueryFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(selectBookingQuery).
		WithArgs("any-token").
		WillReturnError(errors.New("connection reset"))

	store := NewStore(db, logger.NewNoOpLogger())
	b, err := store.GetByToken(context.Background(), "any-token")

	assert.Nil(t, b)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}
