package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pawfect-mate/backend/internal/config"
)

// ErrNotFound is returned when no record exists for a conversation id.
var ErrNotFound = errors.New("conversation record not found")

// Record is the durable form of an answered question.
type Record struct {
	ConversationID string     `json:"conversation_id"`
	Question       string     `json:"question"`
	Answer         string     `json:"answer"`
	Model          string     `json:"model"`
	Documents      []string   `json:"documents"`
	ResponseTime   float64    `json:"response_time"`
	CreatedAt      time.Time  `json:"created_at"`
	Feedback       *int       `json:"feedback,omitempty"`
	FeedbackAt     *time.Time `json:"feedback_at,omitempty"`
}

// ConversationStorage defines the interface for persisting conversations and feedback
type ConversationStorage interface {
	SaveConversation(ctx context.Context, rec *Record) error
	SaveFeedback(ctx context.Context, conversationID string, feedback int, at time.Time) error
	GetConversation(ctx context.Context, conversationID string) (*Record, error)
	Close() error
}

// Open creates the backend selected by cfg.Driver.
func Open(cfg config.StorageConfig) (ConversationStorage, error) {
	switch cfg.Driver {
	case "file", "":
		return NewFileStorage(cfg.Dir)
	case "sqlite":
		return NewSQLiteStorage(cfg.Dir)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
