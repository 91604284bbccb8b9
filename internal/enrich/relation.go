// Package enrich assembles denormalized view-models from normalized rows
// with one batched lookup per referenced entity type.
package enrich

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("github.com/spec-kit/merchant-crm/internal/enrich")

// Relation describes one foreign key on primary rows of type R that points at
// entities of type E.
type Relation[R, E any] struct {
	Name  string
	Key   func(R) *string
	Fetch func(ctx context.Context, ids []string) ([]E, error)
	ID    func(E) string
}

// DistinctKeys returns the distinct non-empty keys across rows in first-seen order.
func DistinctKeys[R any](rows []R, key func(R) *string) []string {
	seen := make(map[string]struct{}, len(rows))
	ids := make([]string, 0)
	for _, row := range rows {
		k := key(row)
		if k == nil || *k == "" {
			continue
		}
		if _, ok := seen[*k]; ok {
			continue
		}
		seen[*k] = struct{}{}
		ids = append(ids, *k)
	}
	return ids
}

// Resolve issues at most one Fetch for the relation and indexes the result by
// id. Rows without a key cost nothing. A failed Fetch is logged and yields an
// empty index with complete set to false, so every row resolves the relation
// to nil for this read only.
func Resolve[R, E any](ctx context.Context, rows []R, rel Relation[R, E], logger *zap.Logger) (index map[string]*E, complete bool) {
	index = map[string]*E{}
	ids := DistinctKeys(rows, rel.Key)
	if len(ids) == 0 {
		return index, true
	}

	ctx, span := tracer.Start(ctx, "enrich.lookup")
	defer span.End()
	span.SetAttributes(
		attribute.String("enrich.relation", rel.Name),
		attribute.Int("enrich.ids", len(ids)),
	)

	entities, err := rel.Fetch(ctx, ids)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "lookup failed")
		logger.Warn("relation lookup failed",
			zap.String("relation", rel.Name),
			zap.Int("ids", len(ids)),
			zap.Error(err))
		return index, false
	}
	for i := range entities {
		entity := entities[i]
		index[rel.ID(entity)] = &entity
	}
	span.SetAttributes(attribute.Int("enrich.found", len(index)))
	return index, true
}

func lookup[E any](index map[string]*E, key *string) *E {
	if key == nil || *key == "" {
		return nil
	}
	return index[*key]
}
