package script

import (
	"encoding/json"
	"errors"
	"time"
)

// Generation provenance stored alongside each script.
const (
	GenerationStandard = "standard"
	GenerationRAG      = "rag"
)

var (
	ErrNotFound     = errors.New("script: not found")
	ErrInvalidInput = errors.New("script: invalid input")
)

// Script is a generated content script owned by the user who requested it.
// OwnerID is a weak reference to users.id: it is filtered on, never joined
// or cascaded.
type Script struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	Prompt         string          `json:"prompt"`
	PromptFile     string          `json:"prompt_file,omitempty"`
	InputFilename  string          `json:"input_filename,omitempty"`
	Content        json.RawMessage `json:"content"`
	GenerationType string          `json:"generation_type"`
	OwnerID        string          `json:"-"`
	CreatedAt      time.Time       `json:"created_at"`
}
