package script

import (
	"context"
	"database/sql"
	"strings"

	"pixelplates.org/internal/ids"
)

const defaultListLimit = 50

var _ Store = (*PGStore)(nil)

// PGStore implements Store on PostgreSQL.
type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Create(ctx context.Context, sc *Script) error {
	if strings.TrimSpace(sc.OwnerID) == "" {
		return ErrInvalidInput
	}
	if sc.ID == "" {
		sc.ID = ids.New()
	}
	if sc.GenerationType == "" {
		sc.GenerationType = GenerationStandard
	}
	content := sc.Content
	if len(content) == 0 {
		content = []byte("{}")
	}
	return s.db.QueryRowContext(ctx,
		`insert into scripts(id, title, prompt, prompt_file, input_filename, content, generation_type, user_id)
		 values($1,$2,$3,$4,$5,$6,$7,$8) returning created_at`,
		sc.ID, sc.Title, sc.Prompt, sc.PromptFile, sc.InputFilename, []byte(content), sc.GenerationType, sc.OwnerID,
	).Scan(&sc.CreatedAt)
}

func (s *PGStore) ListByOwner(ctx context.Context, ownerID string, limit int) ([]Script, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, ErrInvalidInput
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`select id, title, prompt, prompt_file, input_filename, content, generation_type, user_id, created_at
		 from scripts where user_id=$1 order by created_at desc limit $2`,
		ownerID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Script, 0, limit)
	for rows.Next() {
		var (
			sc      Script
			content []byte
		)
		if err := rows.Scan(&sc.ID, &sc.Title, &sc.Prompt, &sc.PromptFile, &sc.InputFilename,
			&content, &sc.GenerationType, &sc.OwnerID, &sc.CreatedAt); err != nil {
			return nil, err
		}
		sc.Content = content
		items = append(items, sc)
	}
	return items, rows.Err()
}
