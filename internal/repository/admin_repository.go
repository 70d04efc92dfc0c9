package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type AdminRepository struct {
	DB *sqlx.DB
}

func NewAdminRepository(db *sqlx.DB) *AdminRepository {
	return &AdminRepository{DB: db}
}

// IsAdmin checks the persisted admin set. The bootstrap allow-list is
// consulted by the auth service before this lookup ever happens.
func (r *AdminRepository) IsAdmin(ctx context.Context, telegramID int64) (bool, error) {
	var count int
	err := r.DB.GetContext(ctx, &count,
		`SELECT COUNT(1) FROM admins WHERE telegram_id = $1`, telegramID)
	if err != nil {
		return false, fmt.Errorf("AdminRepository.IsAdmin: %w", err)
	}
	return count > 0, nil
}

// Add upserts an admin row. Used by the bot's /admin management commands.
func (r *AdminRepository) Add(ctx context.Context, telegramID int64, username string) error {
	_, err := r.DB.ExecContext(ctx, `
        INSERT INTO admins (telegram_id, username)
        VALUES ($1, $2)
        ON CONFLICT (telegram_id) DO UPDATE SET username = EXCLUDED.username`,
		telegramID, username)
	if err != nil {
		return fmt.Errorf("AdminRepository.Add: %w", err)
	}
	return nil
}

func (r *AdminRepository) Remove(ctx context.Context, telegramID int64) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM admins WHERE telegram_id = $1`, telegramID)
	if err != nil {
		return fmt.Errorf("AdminRepository.Remove: %w", err)
	}
	return nil
}
