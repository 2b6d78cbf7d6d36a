package availability

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/ymurata/gm-availability/internal/discord"
	"github.com/ymurata/gm-availability/internal/model"
	"github.com/ymurata/gm-availability/internal/outbox"
	"github.com/ymurata/gm-availability/internal/storage"
)

// EventResponseRecorded is emitted for every accepted accumulator
// write, keyed by reservation id.
const EventResponseRecorded = "availability.response.recorded.v1"

// Result carries everything the notifier needs to render the edited
// message after a write.
type Result struct {
	Response   model.AvailabilityResponse
	Candidates []model.Candidate
	Toggled    model.Candidate
	Added      bool
}

// Service runs one availability action end to end: resolve the
// acting staff member, merge the action into their response under the
// row lock, advance the reservation status, and record the outbox
// event, all in one transaction.
type Service struct {
	reservations *storage.ReservationRepository
	staff        *storage.StaffRepository
	responses    *storage.ResponseRepository
	outbox       *outbox.Repository
	logger       *slog.Logger
}

func NewService(reservations *storage.ReservationRepository, staff *storage.StaffRepository, responses *storage.ResponseRepository, outboxRepo *outbox.Repository, logger *slog.Logger) *Service {
	return &Service{
		reservations: reservations,
		staff:        staff,
		responses:    responses,
		outbox:       outboxRepo,
		logger:       logger,
	}
}

func (s *Service) RecordToggle(ctx context.Context, reservationID string, index int, member *discord.Member) (Result, error) {
	candidates, err := s.reservations.Candidates(ctx, reservationID)
	if err != nil {
		return Result{}, err
	}
	if index < 0 || index >= len(candidates) {
		return Result{}, fmt.Errorf("candidate %d of reservation %s: %w", index, reservationID, storage.ErrNotFound)
	}

	staff, err := s.resolveStaff(ctx, member)
	if err != nil {
		return Result{}, err
	}

	tx, err := s.responses.Begin(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("begin toggle transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	resp, err := s.responses.LockForUpdate(ctx, tx, reservationID, staff.ID)
	if err != nil {
		return Result{}, fmt.Errorf("lock response row: %w", err)
	}

	now := time.Now().UTC()
	toggled := candidates[index]
	added := ApplyToggle(&resp, index, FormatCandidate(toggled), now)
	resp.GMDiscordID = member.UserID()
	resp.GMName = member.DisplayName()
	resp.Notes = SelectionNotes(candidates, resp.SelectedIndices)

	if err := s.responses.Save(ctx, tx, resp); err != nil {
		return Result{}, err
	}
	if err := s.reservations.AdvanceToPendingStore(ctx, tx, reservationID); err != nil {
		return Result{}, err
	}
	if err := s.insertRecordedEvent(ctx, tx, resp); err != nil {
		return Result{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Result{}, fmt.Errorf("commit toggle: %w", err)
	}

	s.logger.Info("availability toggle recorded",
		"reservation_id", reservationID,
		"staff_id", staff.ID,
		"index", index,
		"added", added,
		"selected", len(resp.SelectedIndices),
	)
	return Result{Response: resp, Candidates: candidates, Toggled: toggled, Added: added}, nil
}

func (s *Service) RecordUnavailable(ctx context.Context, reservationID string, member *discord.Member) (Result, error) {
	staff, err := s.resolveStaff(ctx, member)
	if err != nil {
		return Result{}, err
	}

	tx, err := s.responses.Begin(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("begin unavailable transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	resp, err := s.responses.LockForUpdate(ctx, tx, reservationID, staff.ID)
	if err != nil {
		return Result{}, fmt.Errorf("lock response row: %w", err)
	}

	ApplyUnavailable(&resp, time.Now().UTC())
	resp.GMDiscordID = member.UserID()
	resp.GMName = member.DisplayName()
	resp.Notes = SelectionNotes(nil, nil)

	if err := s.responses.Save(ctx, tx, resp); err != nil {
		return Result{}, err
	}
	if err := s.reservations.AdvanceToPendingStore(ctx, tx, reservationID); err != nil {
		return Result{}, err
	}
	if err := s.insertRecordedEvent(ctx, tx, resp); err != nil {
		return Result{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Result{}, fmt.Errorf("commit unavailable: %w", err)
	}

	s.logger.Info("availability unavailable recorded",
		"reservation_id", reservationID,
		"staff_id", staff.ID,
	)
	return Result{Response: resp}, nil
}

func (s *Service) resolveStaff(ctx context.Context, member *discord.Member) (storage.Staff, error) {
	discordID := member.UserID()
	if discordID == "" {
		return storage.Staff{}, fmt.Errorf("interaction has no member user: %w", storage.ErrNotFound)
	}
	return s.staff.ByDiscordID(ctx, discordID)
}

func (s *Service) insertRecordedEvent(ctx context.Context, tx pgx.Tx, resp model.AvailabilityResponse) error {
	payload, err := json.Marshal(map[string]any{
		"reservation_id":   resp.ReservationID,
		"staff_id":         resp.StaffID,
		"gm_discord_id":    resp.GMDiscordID,
		"gm_name":          resp.GMName,
		"classification":   string(resp.Classification),
		"selected_indices": resp.SelectedIndices,
		"responded_at":     resp.RespondedAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("encode recorded event: %w", err)
	}
	return s.outbox.Insert(ctx, tx, outbox.Event{
		AggregateType: "availability_response",
		AggregateID:   resp.ReservationID,
		EventType:     EventResponseRecorded,
		Payload:       payload,
	})
}
