package embeddings

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sort"

	_ "github.com/glebarez/go-sqlite"
	"github.com/google/uuid"
)

var errEmptyEmbedding = errors.New("embedding response contained no vectors")

const fragmentsSchema = `CREATE TABLE IF NOT EXISTS fragments (
	id TEXT PRIMARY KEY,
	content TEXT NOT NULL,
	embedding BLOB NOT NULL,
	name TEXT,
	tags TEXT
);`

// Store is the SQLite-backed Retriever. Vectors are held as packed float32
// blobs and similarity search is a linear cosine scan, which is plenty for a
// food catalogue plus conversation fragments.
type Store struct {
	db       *sql.DB
	embedder Embedder
}

// NewStore opens (and if needed creates) the vector database at path.
func NewStore(path string, embedder Embedder) (*Store, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?_busy_timeout=10000")
	if err != nil {
		return nil, fmt.Errorf("open vector db: %w", err)
	}
	if _, err := db.Exec(fragmentsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create fragments table: %w", err)
	}
	return &Store{db: db, embedder: embedder}, nil
}

// Index embeds text and stores it with its metadata. Recognized metadata
// keys are "id", "name" and "tags"; an ID is generated when absent.
func (s *Store) Index(ctx context.Context, text string, metadata map[string]string) error {
	vector, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return err
	}
	id := metadata["id"]
	if id == "" {
		id = uuid.NewString()
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO fragments (id, content, embedding, name, tags) VALUES (?,?,?,?,?);`,
		id, text, packVector(vector), metadata["name"], metadata["tags"])
	if err != nil {
		return fmt.Errorf("store fragment: %w", err)
	}
	return nil
}

// Query embeds text and returns the contents of the k nearest fragments,
// most similar first.
func (s *Store) Query(ctx context.Context, text string, k int) ([]string, error) {
	if k <= 0 {
		return nil, nil
	}
	query, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT content, embedding FROM fragments;`)
	if err != nil {
		return nil, fmt.Errorf("scan fragments: %w", err)
	}
	defer rows.Close()

	type scored struct {
		content string
		score   float64
	}
	var candidates []scored
	for rows.Next() {
		var content string
		var blob []byte
		if err := rows.Scan(&content, &blob); err != nil {
			return nil, err
		}
		vector := unpackVector(blob)
		if len(vector) != len(query) {
			continue
		}
		candidates = append(candidates, scored{content: content, score: cosineSimilarity(query, vector)})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if len(candidates) > k {
		candidates = candidates[:k]
	}
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.content
	}
	return out, nil
}

// Count returns the number of stored fragments.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM fragments;`).Scan(&n)
	return n, err
}

func (s *Store) Close() error { return s.db.Close() }

func packVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func unpackVector(b []byte) []float32 {
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}

func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
