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

// ResponseRepository owns the gm_availability_responses table: one
// row per (reservation, staff) pair, mutated only through a locked
// read-modify-write inside a transaction. The row lock is what
// serializes near-simultaneous toggles from the same staff member;
// rows for different staff never contend.
type ResponseRepository struct {
	pool *db.Pool
}

func NewResponseRepository(pool *db.Pool) *ResponseRepository {
	return &ResponseRepository{pool: pool}
}

func (r *ResponseRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

// LockForUpdate returns the pair's response row locked for the
// duration of the transaction, creating an empty row first if the
// pair has never answered. The INSERT ... ON CONFLICT DO NOTHING
// keeps concurrent first answers from racing the creation.
func (r *ResponseRepository) LockForUpdate(ctx context.Context, tx pgx.Tx, reservationID, staffID string) (model.AvailabilityResponse, error) {
	resp, err := r.selectForUpdate(ctx, tx, reservationID, staffID)
	if err == nil {
		return resp, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return model.AvailabilityResponse{}, err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO gm_availability_responses
			(reservation_id, staff_id, gm_discord_id, gm_name, response_type, response_status,
			 notes, available_candidates, response_history, response_datetime, responded_at)
		VALUES ($1, $2, '', '', 'unavailable', 'all_unavailable', '', '[]', '[]', now(), now())
		ON CONFLICT (reservation_id, staff_id) DO NOTHING
	`, reservationID, staffID)
	if err != nil {
		return model.AvailabilityResponse{}, fmt.Errorf("create response row: %w", err)
	}

	return r.selectForUpdate(ctx, tx, reservationID, staffID)
}

func (r *ResponseRepository) selectForUpdate(ctx context.Context, tx pgx.Tx, reservationID, staffID string) (model.AvailabilityResponse, error) {
	resp := model.AvailabilityResponse{
		ReservationID: reservationID,
		StaffID:       staffID,
	}
	var selected, history []byte
	var responseType string
	err := tx.QueryRow(ctx, `
		SELECT gm_discord_id, gm_name, response_type, notes, available_candidates, response_history, responded_at
		FROM gm_availability_responses
		WHERE reservation_id = $1 AND staff_id = $2
		FOR UPDATE
	`, reservationID, staffID).Scan(
		&resp.GMDiscordID,
		&resp.GMName,
		&responseType,
		&resp.Notes,
		&selected,
		&history,
		&resp.RespondedAt,
	)
	if err != nil {
		return model.AvailabilityResponse{}, err
	}

	if len(selected) > 0 {
		if err := json.Unmarshal(selected, &resp.SelectedIndices); err != nil {
			return model.AvailabilityResponse{}, fmt.Errorf("decode selected candidates: %w", err)
		}
	}
	if len(history) > 0 {
		if err := json.Unmarshal(history, &resp.History); err != nil {
			return model.AvailabilityResponse{}, fmt.Errorf("decode response history: %w", err)
		}
	}
	resp.Classification = model.Classification(responseType)
	return resp, nil
}

// Save writes the mutated response back onto the locked row.
func (r *ResponseRepository) Save(ctx context.Context, tx pgx.Tx, resp model.AvailabilityResponse) error {
	selected, err := json.Marshal(selectedOrEmpty(resp.SelectedIndices))
	if err != nil {
		return fmt.Errorf("encode selected candidates: %w", err)
	}
	history, err := json.Marshal(resp.History)
	if err != nil {
		return fmt.Errorf("encode response history: %w", err)
	}

	responseStatus := "available"
	if len(resp.SelectedIndices) == 0 {
		responseStatus = "all_unavailable"
	}
	var firstIndex *int
	if len(resp.SelectedIndices) > 0 {
		firstIndex = &resp.SelectedIndices[0]
	}

	_, err = tx.Exec(ctx, `
		UPDATE gm_availability_responses
		SET gm_discord_id = $3,
			gm_name = $4,
			response_type = $5,
			response_status = $6,
			selected_candidate_index = $7,
			notes = $8,
			available_candidates = $9,
			response_history = $10,
			response_datetime = $11,
			responded_at = $11
		WHERE reservation_id = $1 AND staff_id = $2
	`, resp.ReservationID, resp.StaffID,
		resp.GMDiscordID, resp.GMName,
		string(resp.Classification), responseStatus, firstIndex, resp.Notes,
		selected, history, resp.RespondedAt.UTC())
	if err != nil {
		return fmt.Errorf("save response: %w", err)
	}
	return nil
}

func selectedOrEmpty(s []int) []int {
	if s == nil {
		return []int{}
	}
	return s
}
