package schema

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
)

// Introspector is satisfied by *client.Client.
type Introspector interface {
	Introspect(ctx context.Context) (json.RawMessage, error)
}

// Prefetch issues one introspection request and caches the result. There is no
// retry: a failure is logged and the explorer falls back to fetching the schema
// itself.
func (s *Store) Prefetch(ctx context.Context, c Introspector, logger *zap.Logger) {
	data, err := c.Introspect(ctx)
	if err != nil {
		logger.Warn("schema prefetch failed", zap.Error(err))
		return
	}
	s.SetIntrospection(data)
	logger.Info("schema prefetched", zap.Int("bytes", len(data)))
}
