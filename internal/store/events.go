package store

import (
	"context"
	"fmt"
	"time"
)

// TurnEventData captures one tutoring turn.
type TurnEventData struct {
	LearnerID string
	Phase     string // "onboarding", "topic_selection", "tutoring"
	Topic     string
	Subtopic  string
	Tier      string
	Answer    string
	Score     float64
}

// LLMRequestEventData captures one LLM API call.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
}

// TurnEvent is a stored turn event.
type TurnEvent struct {
	ID        int64
	CreatedAt time.Time
	TurnEventData
}

// LLMEvent is a stored LLM request event.
type LLMEvent struct {
	ID        int64
	CreatedAt time.Time
	LLMRequestEventData
}

// EventRepo provides append and read access to the event log.
type EventRepo interface {
	AppendTurn(ctx context.Context, data TurnEventData) error
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// ListTurns returns a learner's turn events, oldest first. A limit of 0
	// returns everything.
	ListTurns(ctx context.Context, learnerID string, limit int) ([]TurnEvent, error)

	// ListLLMEvents returns the most recent LLM request events, newest
	// first. A limit of 0 returns everything.
	ListLLMEvents(ctx context.Context, limit int) ([]LLMEvent, error)
}

func (s *Store) AppendTurn(ctx context.Context, data TurnEventData) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO turn_events (learner_id, phase, topic, subtopic, tier, answer, score, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		data.LearnerID, data.Phase, data.Topic, data.Subtopic, data.Tier, data.Answer, data.Score, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("append turn event: %w", err)
	}
	return nil
}

func (s *Store) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO llm_events (provider, model, purpose, input_tokens, output_tokens, latency_ms, success, error_message, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		data.Provider, data.Model, data.Purpose, data.InputTokens, data.OutputTokens,
		data.LatencyMs, data.Success, data.ErrorMessage, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("append LLM event: %w", err)
	}
	return nil
}

func (s *Store) ListTurns(ctx context.Context, learnerID string, limit int) ([]TurnEvent, error) {
	query := `SELECT id, learner_id, phase, topic, subtopic, tier, answer, score, created_at
	          FROM turn_events WHERE learner_id = ? ORDER BY id`
	args := []any{learnerID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list turn events: %w", err)
	}
	defer rows.Close()

	var events []TurnEvent
	for rows.Next() {
		var e TurnEvent
		if err := rows.Scan(&e.ID, &e.LearnerID, &e.Phase, &e.Topic, &e.Subtopic, &e.Tier, &e.Answer, &e.Score, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (s *Store) ListLLMEvents(ctx context.Context, limit int) ([]LLMEvent, error) {
	query := `SELECT id, provider, model, purpose, input_tokens, output_tokens, latency_ms, success, error_message, created_at
	          FROM llm_events ORDER BY id DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list LLM events: %w", err)
	}
	defer rows.Close()

	var events []LLMEvent
	for rows.Next() {
		var e LLMEvent
		if err := rows.Scan(&e.ID, &e.Provider, &e.Model, &e.Purpose, &e.InputTokens, &e.OutputTokens, &e.LatencyMs, &e.Success, &e.ErrorMessage, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// NopEventRepo discards every event. Used when persistence is disabled.
type NopEventRepo struct{}

func (NopEventRepo) AppendTurn(context.Context, TurnEventData) error { return nil }

func (NopEventRepo) AppendLLMRequest(context.Context, LLMRequestEventData) error { return nil }

func (NopEventRepo) ListTurns(context.Context, string, int) ([]TurnEvent, error) { return nil, nil }

func (NopEventRepo) ListLLMEvents(context.Context, int) ([]LLMEvent, error) { return nil, nil }
