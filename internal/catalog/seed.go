package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

//go:embed seed/products.json
var seedProducts []byte

// Seed loads the bundled product set when the catalog is empty and reports
// how many products were inserted. A non-empty catalog is left alone.
func Seed(ctx context.Context, repo Repository) (int, error) {
	n, err := repo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.Info().Str("products", humanize.Comma(n)).Msg("catalog already seeded")
		return 0, nil
	}

	var doc struct {
		Products []Product `json:"products"`
	}
	if err := json.Unmarshal(seedProducts, &doc); err != nil {
		return 0, fmt.Errorf("decode seed: %w", err)
	}

	now := time.Now().UTC()
	for i := range doc.Products {
		if doc.Products[i].ID == "" {
			doc.Products[i].ID = uuid.NewString()
		}
		doc.Products[i].normalize(now)
	}
	if err := repo.InsertMany(ctx, doc.Products); err != nil {
		return 0, err
	}
	log.Info().
		Str("products", humanize.Comma(int64(len(doc.Products)))).
		Str("payload", humanize.Bytes(uint64(len(seedProducts)))).
		Msg("catalog seeded")
	return len(doc.Products), nil
}
