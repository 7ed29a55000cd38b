package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"github.com/w-h-a/knowledge/store"
	"go.nhat.io/otelsql"
	semconv "go.opentelemetry.io/otel/semconv/v1.20.0"
)

var DRIVER string

func init() {
	driver, err := otelsql.Register(
		"postgres",
		otelsql.TraceQueryWithoutArgs(),
		otelsql.TraceRowsClose(),
		otelsql.TraceRowsAffected(),
		otelsql.WithSystem(semconv.DBSystemPostgreSQL),
	)
	if err != nil {
		detail := "failed to register pgvector store with otel"
		slog.ErrorContext(context.Background(), detail, "error", err)
		panic(detail)
	}

	DRIVER = driver
}

type postgresStore struct {
	options store.Options
	conn    *sql.DB
}

func (p *postgresStore) Ensure(ctx context.Context) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS chunks (
				id uuid PRIMARY KEY,
				namespace text NOT NULL DEFAULT '',
				content text NOT NULL,
				metadata jsonb,
				embedding vector(%d)
			)
		`, p.options.Dimension),
		`CREATE INDEX IF NOT EXISTS chunks_namespace_idx ON chunks (namespace)`,
	}

	for _, statement := range statements {
		if _, err := p.conn.ExecContext(ctx, statement); err != nil {
			return fmt.Errorf("%w: %v", store.ErrStoreUnavailable, err)
		}
	}

	return nil
}

func (p *postgresStore) Upsert(ctx context.Context, namespace string, chunks []store.Chunk) error {
	tx, err := p.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrStoreUnavailable, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, namespace, content, metadata, embedding)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET content = EXCLUDED.content,
			metadata = EXCLUDED.metadata,
			embedding = EXCLUDED.embedding
	`)
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrStoreUnavailable, err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		id := chunk.Id
		if len(id) == 0 {
			id = uuid.New().String()
		}

		metaJSON, err := json.Marshal(chunk.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata: %w", err)
		}

		if _, err := stmt.ExecContext(
			ctx,
			id,
			namespace,
			chunk.Text,
			metaJSON,
			pgvector.NewVector(chunk.Embedding),
		); err != nil {
			return fmt.Errorf("%w: %v", store.ErrStoreUnavailable, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrStoreUnavailable, err)
	}

	return nil
}

func (p *postgresStore) Search(ctx context.Context, namespace string, vector []float32, limit int) ([]store.Match, error) {
	if limit < 1 {
		return nil, nil
	}

	query := `
		SELECT
			id,
			content,
			metadata,
			1 - (embedding <=> $1) AS score
		FROM chunks
		WHERE namespace = $2
		ORDER BY embedding <=> $1
		LIMIT $3
	`

	rows, err := p.conn.QueryContext(ctx, query, pgvector.NewVector(vector), namespace, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var matches []store.Match

	for rows.Next() {
		var (
			id       string
			content  string
			metaJSON []byte
			score    float64
		)

		if err := rows.Scan(&id, &content, &metaJSON, &score); err != nil {
			return nil, err
		}

		var metadata map[string]any
		if len(metaJSON) > 0 {
			if err := json.Unmarshal(metaJSON, &metadata); err != nil {
				return nil, err
			}
		}

		matches = append(matches, store.Match{
			Chunk: store.Chunk{
				Id:       id,
				Text:     content,
				Metadata: metadata,
			},
			Score: float32(score),
		})
	}

	return matches, rows.Err()
}

func (p *postgresStore) DeleteAll(ctx context.Context, namespace string) (store.Stats, error) {
	var err error
	if len(namespace) == 0 {
		_, err = p.conn.ExecContext(ctx, `DELETE FROM chunks`)
	} else {
		_, err = p.conn.ExecContext(ctx, `DELETE FROM chunks WHERE namespace = $1`, namespace)
	}
	if err != nil {
		return store.Stats{}, fmt.Errorf("%w: %v", store.ErrStoreUnavailable, err)
	}

	stats := store.Stats{
		Dimension:  p.options.Dimension,
		Namespaces: map[string]int{},
	}

	rows, err := p.conn.QueryContext(ctx, `SELECT namespace, count(*) FROM chunks GROUP BY namespace`)
	if err != nil {
		return store.Stats{}, fmt.Errorf("%w: %v", store.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	for rows.Next() {
		var ns string
		var count int
		if err := rows.Scan(&ns, &count); err != nil {
			return store.Stats{}, err
		}
		stats.Namespaces[ns] = count
		stats.TotalVectors += count
	}

	return stats, rows.Err()
}

func NewStore(opts ...store.Option) store.Store {
	options := store.NewOptions(opts...)

	if len(options.Location) == 0 {
		panic("missing location for postgres store")
	}

	conn, err := sql.Open(DRIVER, options.Location)
	if err != nil {
		panic(err)
	}

	return &postgresStore{
		options: options,
		conn:    conn,
	}
}
