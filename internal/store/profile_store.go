package store

import (
	"context"

	"github.com/Ghost247-bot/ulster-sub001/internal/models"
)

type ProfileStore struct {
	db DB
}

func NewProfileStore(db DB) *ProfileStore {
	return &ProfileStore{db: db}
}

type ProfileInput struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
	Address   string
	City      string
	State     string
	ZipCode   string
	IsAdmin   bool
	Role      string
}

func (s *ProfileStore) Create(ctx context.Context, tx Execer, input ProfileInput) error {
	query := `
		INSERT INTO profiles (id, email, first_name, last_name, address, city, state, zip_code, is_admin, role)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := tx.ExecContext(ctx, query,
		input.ID, input.Email, input.FirstName, input.LastName,
		input.Address, input.City, input.State, input.ZipCode, input.IsAdmin, input.Role)
	return err
}

func (s *ProfileStore) Get(ctx context.Context, userID string) (models.Profile, error) {
	var row models.Profile
	err := s.db.GetContext(ctx, &row, `
		SELECT id, email, first_name, last_name, address, city, state, zip_code, is_admin, role, created_at, updated_at
		FROM profiles
		WHERE id = $1
	`, userID)
	if err != nil {
		return models.Profile{}, err
	}
	return row, nil
}

func (s *ProfileStore) Update(ctx context.Context, input ProfileInput) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE profiles
		SET first_name = $1, last_name = $2, address = $3, city = $4, state = $5, zip_code = $6, updated_at = NOW()
		WHERE id = $7
	`, input.FirstName, input.LastName, input.Address, input.City, input.State, input.ZipCode, input.ID)
	return err
}

// IsAdmin reports the admin flag and role for a user. A missing profile is not
// an error; it just is not an admin.
func (s *ProfileStore) IsAdmin(ctx context.Context, userID string) (bool, string, error) {
	var row struct {
		IsAdmin bool   `db:"is_admin"`
		Role    string `db:"role"`
	}
	err := s.db.GetContext(ctx, &row, `
		SELECT is_admin, role FROM profiles WHERE id = $1
	`, userID)
	if err != nil {
		if isNoRows(err) {
			return false, "", nil
		}
		return false, "", err
	}
	return row.IsAdmin, row.Role, nil
}
