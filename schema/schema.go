// Package schema holds what the IDE knows about the upstream schema: an optional
// SDL schema used to validate queries before they are forwarded, and the cached
// introspection result served to the explorer.
package schema

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/validator"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
)

// Load reads the SDL stored under key in the bucket at bucketURL.
func Load(ctx context.Context, bucketURL, key string) (*ast.Schema, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, fmt.Errorf("schema: open bucket %s: %w", bucketURL, err)
	}
	defer bucket.Close()
	return LoadFromBucket(ctx, bucket, key)
}

func LoadFromBucket(ctx context.Context, bucket *blob.Bucket, key string) (*ast.Schema, error) {
	sdl, err := bucket.ReadAll(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("schema: read %s: %w", key, err)
	}
	return Parse(key, string(sdl))
}

// Parse builds a schema from SDL.
func Parse(name, sdl string) (*ast.Schema, error) {
	s, err := gqlparser.LoadSchema(&ast.Source{Name: name, Input: sdl})
	if err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}
	return s, nil
}

// Store is safe for concurrent use. Both members start out empty: the IDE keeps
// working before, or without, either of them.
type Store struct {
	mu            sync.RWMutex
	schema        *ast.Schema
	introspection json.RawMessage
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) SetSchema(schema *ast.Schema) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schema = schema
}

func (s *Store) Schema() *ast.Schema {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.schema
}

func (s *Store) SetIntrospection(data json.RawMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.introspection = data
}

// Introspection returns the cached introspection data and whether it has arrived.
func (s *Store) Introspection() (json.RawMessage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.introspection, s.introspection != nil
}

// Validate checks doc against the loaded schema. Without a schema every document
// is accepted.
func (s *Store) Validate(doc *ast.QueryDocument) gqlerror.List {
	schema := s.Schema()
	if schema == nil {
		return nil
	}
	return validator.Validate(schema, doc)
}
