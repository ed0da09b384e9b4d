package zones

import (
	"context"
	"encoding/json"
	"fmt"

	"backend-touristsafety/internal/db"
	"backend-touristsafety/internal/logger"
)

// Source yields zones of one kind, or all zones when kind is empty.
type Source interface {
	Zones(ctx context.Context, kind Kind) ([]Zone, error)
}

type StaticSource struct {
	zones []Zone
}

// NewStaticSource serves the given zones, or the built-in catalog when none are given.
func NewStaticSource(zs ...Zone) *StaticSource {
	if len(zs) == 0 {
		zs = Catalog()
	}
	return &StaticSource{zones: zs}
}

func (s *StaticSource) Zones(_ context.Context, kind Kind) ([]Zone, error) {
	return filterKind(s.zones, kind), nil
}

func filterKind(zs []Zone, kind Kind) []Zone {
	out := make([]Zone, 0, len(zs))
	for _, z := range zs {
		if kind == "" || z.Kind == kind {
			out = append(out, z)
		}
	}
	return out
}

// PostgresSource reads zones maintained by the backend. Vertices are a jsonb array of
// {"lat","lng"} objects in polygon order.
type PostgresSource struct {
	db db.Querier
}

func NewPostgresSource(q db.Querier) *PostgresSource {
	return &PostgresSource{db: q}
}

func (p *PostgresSource) Zones(ctx context.Context, kind Kind) ([]Zone, error) {
	rows, err := p.db.Query(ctx, `
		SELECT id, name, kind, category, COALESCE(description, ''), vertices,
		       COALESCE(safety_rating, 0), COALESCE(safety_level, ''), facilities, tips
		FROM safety_zones
		WHERE ($1 = '' OR kind = $1)
		ORDER BY sort_order, id
	`, string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Zone
	for rows.Next() {
		var (
			z        Zone
			kindStr  string
			category string
			vertices []byte
		)
		if err := rows.Scan(&z.ID, &z.Name, &kindStr, &category, &z.Description, &vertices,
			&z.SafetyRating, &z.SafetyLevel, &z.Facilities, &z.Tips); err != nil {
			return nil, err
		}
		z.Kind = Kind(kindStr)
		z.Category = Category(category)
		if err := json.Unmarshal(vertices, &z.Vertices); err != nil {
			return nil, fmt.Errorf("zone %s vertices: %w", z.ID, err)
		}
		out = append(out, z)
	}
	return out, rows.Err()
}

// FallbackSource tries primary first and serves fallback when primary fails.
type FallbackSource struct {
	Primary  Source
	Fallback Source
}

func (f FallbackSource) Zones(ctx context.Context, kind Kind) ([]Zone, error) {
	zs, err := f.Primary.Zones(ctx, kind)
	if err == nil {
		return zs, nil
	}
	logger.L().Warn("zone_source_fallback", "kind", string(kind), "err", err)
	return f.Fallback.Zones(ctx, kind)
}

