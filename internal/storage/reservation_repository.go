package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/ymurata/gm-availability/internal/model"
	"github.com/ymurata/gm-availability/libs/db"
)

// ReservationRepository reads candidate slots and owns the single
// status transition this service is allowed to make.
type ReservationRepository struct {
	pool *db.Pool
}

func NewReservationRepository(pool *db.Pool) *ReservationRepository {
	return &ReservationRepository{pool: pool}
}

// Candidates loads the ordered candidate list for a reservation.
// A missing reservation and an empty candidate list are both
// ErrNotFound: neither can answer a toggle.
func (r *ReservationRepository) Candidates(ctx context.Context, reservationID string) ([]model.Candidate, error) {
	var raw []byte
	err := r.pool.QueryRow(ctx, `
		SELECT candidate_datetimes
		FROM reservations
		WHERE id = $1
	`, reservationID).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("reservation %s: %w", reservationID, ErrNotFound)
		}
		return nil, fmt.Errorf("load reservation %s: %w", reservationID, err)
	}

	var wrapper struct {
		Candidates []model.Candidate `json:"candidates"`
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &wrapper); err != nil {
			return nil, fmt.Errorf("decode candidates for reservation %s: %w", reservationID, err)
		}
	}
	if len(wrapper.Candidates) == 0 {
		return nil, fmt.Errorf("reservation %s has no candidates: %w", reservationID, ErrNotFound)
	}
	return wrapper.Candidates, nil
}

// AdvanceToPendingStore moves the reservation to pending_store if it
// is still waiting on GM answers. Zero rows affected means the status
// already moved on, which is success.
func (r *ReservationRepository) AdvanceToPendingStore(ctx context.Context, tx pgx.Tx, reservationID string) error {
	_, err := tx.Exec(ctx, `
		UPDATE reservations
		SET status = $2, updated_at = now()
		WHERE id = $1 AND status IN ($3, $4)
	`, reservationID, model.StatusPendingStore, model.StatusPending, model.StatusPendingGM)
	if err != nil {
		return fmt.Errorf("advance reservation %s status: %w", reservationID, err)
	}
	return nil
}
