package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/borderbuddy/travel-platform/internal/llm"
	"github.com/borderbuddy/travel-platform/internal/model"
	"github.com/borderbuddy/travel-platform/pkg/logger"
	"github.com/borderbuddy/travel-platform/pkg/metrics"
)

// Disclaimer is prefixed to every assistant-authored chat message.
const Disclaimer = "Informational guidance only. Verify details with official or trusted sources."

const (
	defaultMessageKind = "Chat"
	historyWindow      = 10
	defaultListLimit   = 50
)

// TripFinder resolves trips for ownership checks.
type TripFinder interface {
	GetTrip(ctx context.Context, id string) (*model.Trip, error)
}

// BuddyFinder resolves per-trip buddy records.
type BuddyFinder interface {
	GetBuddyByTrip(ctx context.Context, tripID string) (*model.BorderBuddy, error)
}

// MessageLog is the append-only per-buddy chat log.
type MessageLog interface {
	// Append stores one immutable message and returns it with
	// store-assigned id and timestamp.
	Append(ctx context.Context, buddyID string, role model.Role, kind, content string) (*model.ChatMessage, error)
	// ListRecent returns up to limit of a buddy's most recent
	// messages, newest-first.
	ListRecent(ctx context.Context, buddyID string, limit int) ([]model.ChatMessage, error)
}

// Assistant produces model responses. ok is false when the provider is
// absent or every attempt failed; callers then apply fallback wording.
type Assistant interface {
	Ask(ctx context.Context, messages []llm.ChatMessage) (string, bool)
	AskStream(ctx context.Context, messages []llm.ChatMessage, onDelta func(content string) error) (string, bool, error)
}

// EmitFunc receives stream events in emission order. A non-nil return
// aborts the turn (typically: the transport connection is gone).
type EmitFunc func(event model.StreamEvent) error

// ChatService drives chat turns end-to-end: ownership checks, user
// message persistence, history assembly, model invocation, disclaimer
// enforcement and assistant message persistence.
type ChatService struct {
	trips     TripFinder
	buddies   BuddyFinder
	log       MessageLog
	assistant Assistant
	logger    *logger.Logger
}

// NewChatService creates a chat service.
func NewChatService(trips TripFinder, buddies BuddyFinder, log MessageLog, assistant Assistant, lg *logger.Logger) *ChatService {
	return &ChatService{
		trips:     trips,
		buddies:   buddies,
		log:       log,
		assistant: assistant,
		logger:    lg,
	}
}

// List returns the most recent chat messages for a trip's buddy,
// newest-first.
func (s *ChatService) List(ctx context.Context, tripID, userID string, limit int) ([]model.ChatMessage, error) {
	if limit <= 0 || limit > 100 {
		limit = defaultListLimit
	}
	_, buddy, err := s.resolve(ctx, tripID, userID)
	if err != nil {
		return nil, err
	}
	return s.log.ListRecent(ctx, buddy.ID, limit)
}

// Post runs one non-streaming chat turn. The user's message is
// persisted before the model is consulted, so a provider failure never
// loses input; when the model yields nothing, the assistant reply is
// fallback wording that echoes the user's text under the disclaimer.
func (s *ChatService) Post(ctx context.Context, tripID, userID string, req *model.PostMessageRequest) (*model.PostMessageResponse, error) {
	trip, buddy, err := s.resolve(ctx, tripID, userID)
	if err != nil {
		return nil, err
	}

	kind := req.Kind
	if kind == "" {
		kind = defaultMessageKind
	}

	saved, err := s.log.Append(ctx, buddy.ID, model.RoleUser, kind, req.Content)
	if err != nil {
		return nil, fmt.Errorf("append user message: %w", err)
	}
	metrics.ChatMessagesTotal.WithLabelValues(string(model.RoleUser)).Inc()

	history, err := s.buildHistory(ctx, trip, buddy.ID)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	answer, ok := s.assistant.Ask(ctx, history)
	if !ok {
		answer = ""
	}
	content := composeAssistantText(answer, req.Content)

	assistant, err := s.log.Append(ctx, buddy.ID, model.RoleAssistant, kind, content)
	if err != nil {
		return nil, fmt.Errorf("append assistant message: %w", err)
	}
	metrics.ChatMessagesTotal.WithLabelValues(string(model.RoleAssistant)).Inc()
	metrics.RecordChatTurn("post", "success")

	return &model.PostMessageResponse{Saved: saved, Assistant: assistant}, nil
}

// PostStream runs one streaming chat turn, reporting progress through
// emit. Event order is fixed: one start (carrying the persisted user
// message id), zero or more deltas in arrival order, then exactly one
// complete or error. complete is emitted only after the composed
// assistant text has been persisted, so a client receiving it can
// immediately re-list history and see the message.
func (s *ChatService) PostStream(ctx context.Context, tripID, userID string, req *model.PostMessageRequest, emit EmitFunc) (*model.PostMessageResponse, error) {
	trip, buddy, err := s.resolve(ctx, tripID, userID)
	if err != nil {
		return nil, err
	}

	kind := req.Kind
	if kind == "" {
		kind = defaultMessageKind
	}

	saved, err := s.log.Append(ctx, buddy.ID, model.RoleUser, kind, req.Content)
	if err != nil {
		return nil, fmt.Errorf("append user message: %w", err)
	}
	metrics.ChatMessagesTotal.WithLabelValues(string(model.RoleUser)).Inc()

	if err := emit(model.StartEvent(saved.ID)); err != nil {
		return nil, err
	}

	history, err := s.buildHistory(ctx, trip, buddy.ID)
	if err != nil {
		_ = emit(model.ErrorEvent("SERVER_ERROR", "failed to load history"))
		metrics.RecordChatTurn("stream", "error")
		return nil, fmt.Errorf("load history: %w", err)
	}

	final, ok, streamErr := s.assistant.AskStream(ctx, history, func(delta string) error {
		if delta == "" {
			return nil
		}
		return emit(model.DeltaEvent(delta))
	})
	if streamErr != nil {
		// Mid-stream failure or client disconnect: the turn ends here.
		// The user message stays persisted; no partial assistant
		// message is written.
		s.logger.Warn("chat stream aborted",
			zap.String("trip_id", tripID),
			zap.Error(streamErr),
		)
		_ = emit(model.ErrorEvent("SERVER_ERROR", "assistant stream failed"))
		metrics.RecordChatTurn("stream", "error")
		return nil, fmt.Errorf("chat stream: %w", streamErr)
	}

	if !ok {
		final = ""
	}
	content := composeAssistantText(final, req.Content)

	assistant, err := s.log.Append(ctx, buddy.ID, model.RoleAssistant, kind, content)
	if err != nil {
		_ = emit(model.ErrorEvent("SERVER_ERROR", "failed to persist reply"))
		metrics.RecordChatTurn("stream", "error")
		return nil, fmt.Errorf("append assistant message: %w", err)
	}
	metrics.ChatMessagesTotal.WithLabelValues(string(model.RoleAssistant)).Inc()

	if err := emit(model.CompleteEvent(assistant.ID, content)); err != nil {
		return nil, err
	}
	metrics.RecordChatTurn("stream", "success")

	return &model.PostMessageResponse{Saved: saved, Assistant: assistant}, nil
}

// resolve checks that the trip exists, is owned by userID and has a
// buddy enabled. It performs no writes.
func (s *ChatService) resolve(ctx context.Context, tripID, userID string) (*model.Trip, *model.BorderBuddy, error) {
	trip, err := s.trips.GetTrip(ctx, tripID)
	if err != nil {
		return nil, nil, err
	}
	if trip == nil {
		return nil, nil, ErrNotFound
	}
	if trip.UserID != userID {
		return nil, nil, ErrForbidden
	}

	buddy, err := s.buddies.GetBuddyByTrip(ctx, tripID)
	if err != nil {
		return nil, nil, err
	}
	if buddy == nil {
		return nil, nil, ErrNotEnabled
	}
	return trip, buddy, nil
}

// buildHistory loads the bounded window of recent messages oldest-first
// and prepends the synthesized system instruction. The window includes
// the just-persisted user message, so it is not appended again.
func (s *ChatService) buildHistory(ctx context.Context, trip *model.Trip, buddyID string) ([]llm.ChatMessage, error) {
	recent, err := s.log.ListRecent(ctx, buddyID, historyWindow)
	if err != nil {
		return nil, err
	}

	history := make([]llm.ChatMessage, 0, len(recent)+1)
	history = append(history, llm.ChatMessage{Role: "system", Content: buildSystemPrompt(trip)})

	// recent is newest-first; the model wants oldest-first.
	for i := len(recent) - 1; i >= 0; i-- {
		history = append(history, llm.ChatMessage{
			Role:    providerRole(recent[i].Role),
			Content: recent[i].Content,
		})
	}
	return history, nil
}

func providerRole(role model.Role) string {
	if role == model.RoleAssistant {
		return "assistant"
	}
	return "user"
}

// buildSystemPrompt synthesizes the BorderBuddy system instruction for
// a trip.
func buildSystemPrompt(trip *model.Trip) string {
	lines := []string{
		"You are BorderBuddy, a concise, friendly travel assistant.",
		"Provide practical, safe suggestions tailored to the trip context.",
		"Avoid fabricating booking details. Do not claim real-time data.",
		"Format with short paragraphs or bullet points as appropriate.",
	}
	if trip.DestinationCountry != "" {
		lines = append(lines, "Destination: "+trip.DestinationCountry)
	}
	if trip.StartDate != "" || trip.EndDate != "" {
		lines = append(lines, fmt.Sprintf("Dates: %s to %s", trip.StartDate, trip.EndDate))
	}
	return strings.Join(lines, "\n")
}

// composeAssistantText produces the final assistant message. Model text
// gets the disclaimer prefixed unless it already starts with it; no
// model text yields fallback wording that still carries the disclaimer
// and quotes the user's input, so a turn is never silently empty.
func composeAssistantText(modelText, userInput string) string {
	modelText = strings.TrimSpace(modelText)
	if modelText == "" {
		return fmt.Sprintf("%s\n\nI couldn't reach the assistant right now. You asked: %q", Disclaimer, userInput)
	}
	if strings.HasPrefix(modelText, Disclaimer) {
		return modelText
	}
	return Disclaimer + "\n\n" + modelText
}
