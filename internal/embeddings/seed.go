package embeddings

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/TungNguyen-dev/chatbot-ai-homnayangi/internal/logger"
)

// favourite is one entry of the seed food catalogue.
type favourite struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	Desc string   `json:"desc"`
	Tags []string `json:"tags"`
}

// Seed loads the favourites catalogue from path and indexes every entry.
// It is a no-op when the store already holds fragments, so restarting the
// service does not re-embed the catalogue.
func (s *Store) Seed(ctx context.Context, path string) error {
	if path == "" {
		return nil
	}
	n, err := s.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		logger.L.Debug("vector store already seeded", "fragments", n)
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}
	var foods []favourite
	if err := json.Unmarshal(data, &foods); err != nil {
		return fmt.Errorf("parse seed file: %w", err)
	}

	for _, food := range foods {
		meta := map[string]string{
			"id":   food.ID,
			"name": food.Name,
			"tags": strings.Join(food.Tags, ", "),
		}
		if err := s.Index(ctx, food.Desc, meta); err != nil {
			logger.L.Error("failed to seed food entry", "name", food.Name, "error", err)
			continue
		}
	}
	logger.L.Info("seeded vector store with food catalogue", "entries", len(foods))
	return nil
}
