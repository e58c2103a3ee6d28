// internal/booking/store.go
package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"interview-backend/internal/common/logger"
	"interview-backend/internal/models"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no booking exists for a token.
var ErrNotFound = errors.New("booking not found")

// CreateParams carries the validated input for a new booking. ScheduledAt
// must already be normalized to UTC by the caller.
type CreateParams struct {
	Name        string
	Email       string
	Phone       string
	ScheduledAt time.Time
	ResumeText  *string
	ResumeURL   *string
}

type Store struct {
	db     *sql.DB
	logger logger.Logger
}

func NewStore(db *sql.DB, log logger.Logger) *Store {
	return &Store{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"service": "booking"}),
	}
}

// Create inserts a booking row under a fresh uuid token and returns the token.
func (s *Store) Create(ctx context.Context, params CreateParams) (string, error) {
	token := uuid.New().String()
	createdAt := time.Now().UTC()

	query := `INSERT INTO bookings (token, name, email, phone, scheduled_at, created_at, resume_text, resume_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := s.db.ExecContext(ctx, query,
		token,
		params.Name,
		params.Email,
		params.Phone,
		params.ScheduledAt.UTC(),
		createdAt,
		toNullString(params.ResumeText),
		toNullString(params.ResumeURL),
	)
	if err != nil {
		return "", fmt.Errorf("insert booking: %w", err)
	}

	s.logger.Info("booking created", map[string]interface{}{
		"token":       token,
		"scheduledAt": params.ScheduledAt.UTC().Format(time.RFC3339),
	})

	return token, nil
}

// GetByToken returns the booking for a token, or ErrNotFound.
func (s *Store) GetByToken(ctx context.Context, token string) (*models.Booking, error) {
	query := `SELECT token, name, email, phone, scheduled_at, created_at, resume_text, resume_url
		FROM bookings WHERE token = $1`

	var (
		b          models.Booking
		resumeText sql.NullString
		resumeURL  sql.NullString
	)

	err := s.db.QueryRowContext(ctx, query, token).Scan(
		&b.Token,
		&b.Name,
		&b.Email,
		&b.Phone,
		&b.ScheduledAt,
		&b.CreatedAt,
		&resumeText,
		&resumeURL,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query booking: %w", err)
	}

	b.ScheduledAt = b.ScheduledAt.UTC()
	b.CreatedAt = b.CreatedAt.UTC()
	if resumeText.Valid {
		b.ResumeText = &resumeText.String
	}
	if resumeURL.Valid {
		b.ResumeURL = &resumeURL.String
	}

	return &b, nil
}

func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
