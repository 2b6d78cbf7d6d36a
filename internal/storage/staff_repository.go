package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/ymurata/gm-availability/libs/db"
)

type Staff struct {
	ID   string
	Name string
}

// StaffRepository maps Discord user ids to internal staff ids.
// Read-only: this service never mutates the staff directory.
type StaffRepository struct {
	pool *db.Pool
}

func NewStaffRepository(pool *db.Pool) *StaffRepository {
	return &StaffRepository{pool: pool}
}

func (r *StaffRepository) ByDiscordID(ctx context.Context, discordID string) (Staff, error) {
	var s Staff
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, name
		FROM staff
		WHERE discord_id = $1
	`, discordID).Scan(&s.ID, &s.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Staff{}, fmt.Errorf("staff for discord id %s: %w", discordID, ErrNotFound)
		}
		return Staff{}, fmt.Errorf("lookup staff by discord id: %w", err)
	}
	return s, nil
}
