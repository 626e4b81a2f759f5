package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/pawfect-mate/backend/internal/config"
	"github.com/pawfect-mate/backend/internal/search"
)

// LLMProvider defines the interface for AI model integration
type LLMProvider interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}

// Modeler is implemented by providers that can report the model they call.
type Modeler interface {
	Model() string
}

// New builds the provider named in cfg.
func New(cfg config.LLMConfig) (LLMProvider, error) {
	switch cfg.Provider {
	case "ollama", "":
		return NewOllamaProvider(cfg.BaseURL, cfg.Model, cfg.Timeout), nil
	case "openai":
		return NewOpenAIProvider(cfg.BaseURL, cfg.Model, cfg.APIKey), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
}

// ModelName returns the model behind p, or its provider name when unknown.
func ModelName(p LLMProvider) string {
	if m, ok := p.(Modeler); ok && m.Model() != "" {
		return m.Model()
	}
	return p.Name()
}

// BuildPrompt renders the question and the retrieved breed records into a
// single instruction for the model. Only the listed fields are included, and
// empty values are skipped.
func BuildPrompt(question string, docs []*search.Document, fields []string) string {
	var contextBuilder strings.Builder
	for _, doc := range docs {
		var entry strings.Builder
		for _, field := range fields {
			value := doc.Value(field)
			if value == "" {
				continue
			}
			fmt.Fprintf(&entry, "%s: %s\n", field, value)
		}
		if entry.Len() == 0 {
			continue
		}
		contextBuilder.WriteString(entry.String())
		contextBuilder.WriteString("\n")
	}

	contextStr := strings.TrimSpace(contextBuilder.String())
	if contextStr == "" {
		contextStr = "No matching breed records were found."
	}

	return "You are an experienced dog breed consultant. Answer the QUESTION using the facts in the CONTEXT.\n" +
		"Recommend or describe breeds only from the CONTEXT. If the CONTEXT is insufficient, say so clearly.\n\n" +
		"CONTEXT:\n" + contextStr + "\n\n" +
		"QUESTION:\n" + question + "\n\n" +
		"ANSWER:\n"
}
