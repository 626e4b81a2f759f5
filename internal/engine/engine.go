package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pawfect-mate/backend/internal/config"
	"github.com/pawfect-mate/backend/internal/conversation"
	"github.com/pawfect-mate/backend/internal/metrics"
	"github.com/pawfect-mate/backend/internal/provider"
	"github.com/pawfect-mate/backend/internal/search"
	"github.com/pawfect-mate/backend/internal/storage"
)

var (
	ErrEmptyQuestion   = errors.New("question is required")
	ErrInvalidFeedback = errors.New("feedback must be -1 or 1")
)

// Engine orchestrates retrieval, answer generation and conversation tracking
type Engine struct {
	Config        *config.Config
	Logger        *logrus.Entry
	Retriever     *search.Retriever
	LLM           provider.LLMProvider
	Conversations *conversation.Store
	Storage       storage.ConversationStorage

	mu    sync.RWMutex
	stats Stats
}

// Stats is a snapshot of engine activity since start.
type Stats struct {
	Questions        int64     `json:"questions"`
	Failures         int64     `json:"failures"`
	Feedback         int64     `json:"feedback"`
	PositiveFeedback int64     `json:"positive_feedback"`
	NegativeFeedback int64     `json:"negative_feedback"`
	StartTime        time.Time `json:"start_time"`
}

// Answer is the result of a single Ask call.
type Answer struct {
	ConversationID string   `json:"-"`
	Question       string   `json:"question"`
	Answer         string   `json:"answer"`
	Model          string   `json:"model_used"`
	Documents      []string `json:"documents"`
	ResponseTime   float64  `json:"response_time"`
}

func NewEngine(cfg *config.Config, logger *logrus.Entry, retriever *search.Retriever, llm provider.LLMProvider,
	conversations *conversation.Store, store storage.ConversationStorage) (*Engine, error) {
	if retriever == nil {
		return nil, errors.New("retriever is required")
	}
	if llm == nil {
		return nil, errors.New("llm provider is required")
	}
	if conversations == nil {
		conversations = conversation.NewStore()
	}

	return &Engine{
		Config:        cfg,
		Logger:        logger.WithField("component", "engine"),
		Retriever:     retriever,
		LLM:           llm,
		Conversations: conversations,
		Storage:       store,
		stats:         Stats{StartTime: time.Now()},
	}, nil
}

// Ask performs the full RAG flow: Search -> Build Prompt -> LLM Generation,
// then records the conversation.
func (e *Engine) Ask(ctx context.Context, question string) (*Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	start := time.Now()

	// 1. Retrieve context
	hits := e.SearchScored(question, search.SearchOptions{})
	docs := make([]*search.Document, len(hits))
	ids := make([]string, len(hits))
	for i, hit := range hits {
		docs[i] = hit.Document
		ids[i] = hit.Document.ID
	}

	// 2. Build prompt
	prompt := provider.BuildPrompt(question, docs, e.promptFields())

	// 3. Call LLM
	llmStart := time.Now()
	text, err := e.LLM.Generate(ctx, prompt)
	metrics.LLMRequestDuration.WithLabelValues(e.LLM.Name()).Observe(time.Since(llmStart).Seconds())
	if err != nil {
		e.mu.Lock()
		e.stats.Failures++
		e.mu.Unlock()
		metrics.AsksTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("generating answer: %w", err)
	}

	conv := e.Conversations.Create(question, text)

	answer := &Answer{
		ConversationID: conv.ID,
		Question:       question,
		Answer:         text,
		Model:          provider.ModelName(e.LLM),
		Documents:      ids,
		ResponseTime:   time.Since(start).Seconds(),
	}

	if e.Storage != nil {
		rec := &storage.Record{
			ConversationID: conv.ID,
			Question:       question,
			Answer:         text,
			Model:          answer.Model,
			Documents:      ids,
			ResponseTime:   answer.ResponseTime,
			CreatedAt:      conv.CreatedAt,
		}
		if err := e.Storage.SaveConversation(ctx, rec); err != nil {
			e.Logger.WithError(err).WithField("conversation_id", conv.ID).Error("Failed to save conversation")
		}
	}

	e.mu.Lock()
	e.stats.Questions++
	e.mu.Unlock()
	metrics.AsksTotal.WithLabelValues("success").Inc()

	e.Logger.WithFields(logrus.Fields{
		"conversation_id": conv.ID,
		"documents":       len(ids),
		"response_time":   answer.ResponseTime,
	}).Info("Answered question")

	return answer, nil
}

// Feedback attaches a thumbs up (1) or down (-1) to a conversation. Unknown
// ids are reported before the value is validated.
func (e *Engine) Feedback(ctx context.Context, conversationID string, value int) error {
	conv, err := e.Conversations.Get(conversationID)
	if err != nil {
		return err
	}
	if value != -1 && value != 1 {
		return ErrInvalidFeedback
	}

	if err := e.Conversations.SetFeedback(conv.ID, value); err != nil {
		return err
	}

	if e.Storage != nil {
		if err := e.Storage.SaveFeedback(ctx, conv.ID, value, time.Now()); err != nil {
			e.Logger.WithError(err).WithField("conversation_id", conv.ID).Error("Failed to save feedback")
		}
	}

	e.mu.Lock()
	e.stats.Feedback++
	if value > 0 {
		e.stats.PositiveFeedback++
	} else {
		e.stats.NegativeFeedback++
	}
	e.mu.Unlock()
	metrics.FeedbackTotal.WithLabelValues(metrics.FeedbackLabel(value)).Inc()

	return nil
}

// SearchScored runs a retrieval and records its latency and hit count.
// Callers that only need documents read Result.Document.
func (e *Engine) SearchScored(question string, opts search.SearchOptions) []search.Result {
	start := time.Now()
	results := e.Retriever.SearchScored(question, opts)
	metrics.SearchDuration.Observe(time.Since(start).Seconds())
	metrics.SearchResults.Observe(float64(len(results)))
	return results
}

func (e *Engine) Stats() Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.stats
}

// DocumentCount returns the number of indexed breed records.
func (e *Engine) DocumentCount() int {
	return e.Retriever.Index().Len()
}

func (e *Engine) promptFields() []string {
	return e.Retriever.Index().TextFields()
}
