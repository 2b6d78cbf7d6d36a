package handlers

import (
	"context"
	"crypto/ed25519"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/ymurata/gm-availability/internal/availability"
	"github.com/ymurata/gm-availability/internal/discord"
	"github.com/ymurata/gm-availability/internal/notify"
	"github.com/ymurata/gm-availability/internal/storage"
)

const (
	errContentRecordFailed  = "エラー: 回答の記録に失敗しました"
	errContentToggleFailed  = "エラー: 日程の記録に失敗しました"
	errContentFetchFailed   = "エラー: 候補日程の取得に失敗しました"
	errContentUnknownButton = "エラー: 不明なボタンです"
)

// Recorder runs one availability action against the stores.
type Recorder interface {
	RecordToggle(ctx context.Context, reservationID string, index int, member *discord.Member) (availability.Result, error)
	RecordUnavailable(ctx context.Context, reservationID string, member *discord.Member) (availability.Result, error)
}

// MessageEditor pushes the deferred result (or failure) back onto the
// original interaction message.
type MessageEditor interface {
	EditOriginal(ctx context.Context, applicationID, token string, edit discord.MessageEdit) error
}

// TaskSubmitter hands phase-2 work to the background executor.
type TaskSubmitter interface {
	Submit(t notify.Task) error
}

// InteractionsHandler is the single webhook endpoint: it verifies the
// request signature, routes by interaction type and custom_id, and
// answers within Discord's reply budget, deferring the toggle path
// to the dispatcher.
type InteractionsHandler struct {
	publicKey ed25519.PublicKey
	recorder  Recorder
	editor    MessageEditor
	tasks     TaskSubmitter
	logger    *slog.Logger
}

func NewInteractionsHandler(publicKey ed25519.PublicKey, recorder Recorder, editor MessageEditor, tasks TaskSubmitter, logger *slog.Logger) *InteractionsHandler {
	return &InteractionsHandler{
		publicKey: publicKey,
		recorder:  recorder,
		editor:    editor,
		tasks:     tasks,
		logger:    logger,
	}
}

func (h *InteractionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		// The body-limit middleware caps the size; an oversized body
		// surfaces here as MaxBytesError and must not read as a
		// signature failure.
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	// Signature is the authentication; nothing in the body is
	// looked at until it passes.
	signature := r.Header.Get(discord.HeaderSignature)
	timestamp := r.Header.Get(discord.HeaderTimestamp)
	if !discord.VerifySignature(h.publicKey, timestamp, signature, body) {
		http.Error(w, "invalid request signature", http.StatusUnauthorized)
		return
	}

	var interaction discord.Interaction
	if err := json.Unmarshal(body, &interaction); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}

	switch interaction.Type {
	case discord.InteractionPing:
		writeJSON(w, http.StatusOK, discord.Response{Type: discord.CallbackPong})
	case discord.InteractionMessageComponent:
		h.handleComponent(w, r, interaction)
	default:
		h.logger.Warn("unsupported interaction type", "type", interaction.Type)
		http.Error(w, "unsupported interaction type", http.StatusBadRequest)
	}
}

func (h *InteractionsHandler) handleComponent(w http.ResponseWriter, r *http.Request, interaction discord.Interaction) {
	if interaction.Data == nil || interaction.Data.CustomID == "" {
		http.Error(w, "missing custom_id", http.StatusBadRequest)
		return
	}

	switch action := discord.ParseAction(interaction.Data.CustomID).(type) {
	case discord.UnavailableAction:
		// No deferred work needed: one upsert, answer in full.
		if _, err := h.recorder.RecordUnavailable(r.Context(), action.ReservationID, interaction.Member); err != nil {
			h.logger.Error("unavailable action failed", "reservation_id", action.ReservationID, "err", err)
			writeMessage(w, errContentRecordFailed)
			return
		}
		writeMessage(w, availability.UnavailableSummary())

	case discord.ToggleAction:
		task := h.toggleTask(interaction, action)
		if err := h.tasks.Submit(task); err != nil {
			h.logger.Error("toggle task rejected", "reservation_id", action.ReservationID, "err", err)
			writeMessage(w, errContentToggleFailed)
			return
		}
		writeJSON(w, http.StatusOK, discord.Response{Type: discord.CallbackDeferredUpdateMessage})

	default:
		h.logger.Warn("unknown button", "custom_id", interaction.Data.CustomID)
		writeMessage(w, errContentUnknownButton)
	}
}

// toggleTask packages the deferred half of a toggle: store the
// answer, then edit the original message with the result. Failures
// flow to OnError, which reports through the same edit endpoint;
// the requester has no other way to learn the outcome.
func (h *InteractionsHandler) toggleTask(interaction discord.Interaction, action discord.ToggleAction) notify.Task {
	return notify.Task{
		ID: uuid.NewString(),
		Run: func(ctx context.Context) error {
			result, err := h.recorder.RecordToggle(ctx, action.ReservationID, action.Index, interaction.Member)
			if err != nil {
				return err
			}
			edit := discord.MessageEdit{
				Content:    availability.ToggleSummary(result.Toggled, result.Added, result.Candidates, result.Response.SelectedIndices),
				Components: availability.CandidateButtons(action.ReservationID, result.Candidates, result.Response.SelectedIndices),
			}
			return h.editor.EditOriginal(ctx, interaction.ApplicationID, interaction.Token, edit)
		},
		OnError: func(ctx context.Context, err error) {
			content := errContentToggleFailed
			if storage.IsNotFound(err) {
				content = errContentFetchFailed
			}
			edit := discord.MessageEdit{Content: content}
			if editErr := h.editor.EditOriginal(ctx, interaction.ApplicationID, interaction.Token, edit); editErr != nil {
				h.logger.Error("failed to report deferred error", "err", editErr)
			}
		},
	}
}

// writeMessage answers a component interaction with a plain content
// message (callback type 4).
func writeMessage(w http.ResponseWriter, content string) {
	writeJSON(w, http.StatusOK, discord.Response{
		Type: discord.CallbackChannelMessage,
		Data: &discord.ResponseData{Content: content},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "failed to build response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
