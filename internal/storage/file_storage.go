package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// FileStorage implements ConversationStorage using one JSON file per conversation
type FileStorage struct {
	baseDir string
	mu      sync.RWMutex
}

// NewFileStorage creates a new file-based storage
func NewFileStorage(baseDir string) (*FileStorage, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &FileStorage{
		baseDir: baseDir,
	}, nil
}

// SaveConversation writes the record to a JSON file
func (fs *FileStorage) SaveConversation(_ context.Context, rec *Record) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.write(rec)
}

// SaveFeedback attaches feedback to a stored conversation
func (fs *FileStorage) SaveFeedback(_ context.Context, conversationID string, feedback int, at time.Time) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	rec, err := fs.read(conversationID)
	if err != nil {
		return err
	}
	rec.Feedback = &feedback
	rec.FeedbackAt = &at
	return fs.write(rec)
}

// GetConversation retrieves a record from disk
func (fs *FileStorage) GetConversation(_ context.Context, conversationID string) (*Record, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return fs.read(conversationID)
}

// Close is a no-op for file storage
func (fs *FileStorage) Close() error {
	return nil
}

func (fs *FileStorage) write(rec *Record) error {
	path := filepath.Join(fs.baseDir, safeFilename(rec.ConversationID))

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

func (fs *FileStorage) read(conversationID string) (*Record, error) {
	path := filepath.Join(fs.baseDir, safeFilename(conversationID))

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return &rec, nil
}

// safeFilename converts a conversation id to a safe filename
func safeFilename(id string) string {
	var b strings.Builder
	for _, r := range id {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	safe := b.String()
	if len(safe) > 100 {
		safe = safe[:100]
	}
	return safe + ".json"
}
