package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	pgxvec "github.com/pgvector/pgvector-go/pgx"

	"github.com/meetwise-team/meeting-insights/pkg/config"
)

// PgVectorIndex stores segment embeddings in Postgres with the pgvector
// extension and searches by cosine distance.
type PgVectorIndex struct {
	pool     *pgxpool.Pool
	table    string
	dim      int
	embedder Embedder
}

// NewPgVectorIndex connects, registers vector types and ensures schema
func NewPgVectorIndex(ctx context.Context, cfg *config.Config, embedder Embedder) (*PgVectorIndex, error) {
	dbURL := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.Database.User, cfg.Database.Password,
		cfg.Database.Host, cfg.Database.Port,
		cfg.Database.Name, cfg.Database.SSLMode,
	)

	poolCfg, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	idx := &PgVectorIndex{
		pool:     pool,
		table:    cfg.Index.Table,
		dim:      cfg.Index.Dimension,
		embedder: embedder,
	}
	if err := idx.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return idx, nil
}

func (idx *PgVectorIndex) ensureSchema(ctx context.Context) error {
	if _, err := idx.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector;"); err != nil {
		return fmt.Errorf("failed to create vector extension: %w", err)
	}

	tableQuery := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id SERIAL PRIMARY KEY,
			meeting_id VARCHAR(64) NOT NULL,
			segment_id VARCHAR(64) UNIQUE NOT NULL,
			speaker VARCHAR(64) NOT NULL DEFAULT '',
			start_time FLOAT NOT NULL,
			end_time FLOAT NOT NULL,
			text TEXT NOT NULL,
			embedding vector(%d),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`, idx.table, idx.dim)
	if _, err := idx.pool.Exec(ctx, tableQuery); err != nil {
		return fmt.Errorf("failed to create index table: %w", err)
	}

	indexQuery := fmt.Sprintf(
		"CREATE INDEX IF NOT EXISTS idx_%s_meeting_id ON %s(meeting_id);",
		idx.table, idx.table,
	)
	if _, err := idx.pool.Exec(ctx, indexQuery); err != nil {
		return fmt.Errorf("failed to create meeting index: %w", err)
	}
	return nil
}

// Add upserts entries keyed by segment id
func (idx *PgVectorIndex) Add(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	texts := make([]string, len(entries))
	for i, e := range entries {
		texts[i] = strings.ToLower(e.Text)
	}
	vectors, err := idx.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed entries: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (meeting_id, segment_id, speaker, start_time, end_time, text, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (segment_id)
		DO UPDATE SET
			meeting_id = EXCLUDED.meeting_id,
			speaker = EXCLUDED.speaker,
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			text = EXCLUDED.text,
			embedding = EXCLUDED.embedding
	`, idx.table)

	for i, e := range entries {
		vec := pgvector.NewVector(vectors[i])
		if _, err := idx.pool.Exec(ctx, query, e.MeetingID, e.SegmentID, e.Speaker, e.Start, e.End, e.Text, vec); err != nil {
			return fmt.Errorf("upsert segment %s: %w", e.SegmentID, err)
		}
	}
	return nil
}

// Search returns the topK nearest segments by cosine distance
func (idx *PgVectorIndex) Search(ctx context.Context, query, meetingID string, topK int) ([]Hit, error) {
	if topK <= 0 {
		topK = 5
	}

	vectors, err := idx.embedder.Embed(ctx, []string{strings.ToLower(query)})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	vec := pgvector.NewVector(vectors[0])

	sql := fmt.Sprintf(`
		SELECT meeting_id, segment_id, speaker, start_time, end_time, text,
			   1 - (embedding <=> $1) AS similarity
		FROM %s
	`, idx.table)
	args := []interface{}{vec}
	if meetingID != "" {
		sql += " WHERE meeting_id = $2 ORDER BY embedding <=> $1 LIMIT $3"
		args = append(args, meetingID, topK)
	} else {
		sql += " ORDER BY embedding <=> $1 LIMIT $2"
		args = append(args, topK)
	}

	rows, err := idx.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var h Hit
		if err := rows.Scan(&h.MeetingID, &h.SegmentID, &h.Speaker, &h.Start, &h.End, &h.Text, &h.Score); err != nil {
			return nil, err
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

// Remove drops all entries of a meeting
func (idx *PgVectorIndex) Remove(ctx context.Context, meetingID string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE meeting_id = $1", idx.table)
	_, err := idx.pool.Exec(ctx, query, meetingID)
	return err
}

// Close releases the connection pool
func (idx *PgVectorIndex) Close() {
	idx.pool.Close()
}
