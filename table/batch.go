package table

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/syssam/dynamix/schema"
)

// MaxBatchGetKeys is the number of keys a single BatchGetItem request
// may carry.
const MaxBatchGetKeys = 100

const (
	maxBatchAttempts = 8
	batchBackoff     = 50 * time.Millisecond
)

// Key is an unencoded primary key.
type Key struct {
	HashKey  any
	RangeKey any
}

// Value returns the key as carried by NotFoundError: the hash key alone,
// or a [hash, range] pair.
func (k Key) Value() any {
	if k.RangeKey == nil {
		return k.HashKey
	}
	return []any{k.HashKey, k.RangeKey}
}

// BatchGetInput selects several items by key.
type BatchGetInput struct {
	Keys           []Key
	ConsistentRead bool
	// Attributes restricts the returned attributes. Key attributes are
	// always returned.
	Attributes []string
}

// BatchGetter reads several items by key. Items are returned in no
// particular order and missing keys are skipped.
type BatchGetter interface {
	Schema() *schema.Schema
	BatchGet(ctx context.Context, in BatchGetInput) ([]*schema.Item, error)
}

// EncodeKeys encodes keys and drops duplicates, keeping the first
// occurrence.
func EncodeKeys(s *schema.Schema, keys []Key) ([]map[string]types.AttributeValue, error) {
	seen := make(map[string]bool, len(keys))
	encoded := make([]map[string]types.AttributeValue, 0, len(keys))
	for _, k := range keys {
		key, err := s.Key(k.HashKey, k.RangeKey)
		if err != nil {
			return nil, err
		}
		id := s.KeyID(key)
		if seen[id] {
			continue
		}
		seen[id] = true
		encoded = append(encoded, key)
	}
	return encoded, nil
}

// ProjectedAttributes returns attrs extended with the key attributes of s,
// or nil when attrs is empty.
func ProjectedAttributes(s *schema.Schema, attrs []string) []string {
	if len(attrs) == 0 {
		return nil
	}
	out := slices.Clone(attrs)
	for _, f := range []schema.Field{s.HashKey(), s.RangeKey()} {
		if f != nil && !slices.Contains(out, f.Name()) {
			out = append(out, f.Name())
		}
	}
	return out
}

// BatchGet implements BatchGetter. Keys are sent in chunks of
// MaxBatchGetKeys and unprocessed keys are retried with exponential
// backoff.
func (t *Table) BatchGet(ctx context.Context, in BatchGetInput) ([]*schema.Item, error) {
	keys, err := EncodeKeys(t.schema, in.Keys)
	if err != nil {
		return nil, err
	}
	template := types.KeysAndAttributes{ConsistentRead: aws.Bool(in.ConsistentRead)}
	if attrs := ProjectedAttributes(t.schema, in.Attributes); attrs != nil {
		expr, err := expression.NewBuilder().WithProjection(projection(attrs)).Build()
		if err != nil {
			return nil, fmt.Errorf("table: build projection: %w", err)
		}
		template.ProjectionExpression = expr.Projection()
		template.ExpressionAttributeNames = expr.Names()
	}
	var items []*schema.Item
	for chunk := range slices.Chunk(keys, MaxBatchGetKeys) {
		pending := chunk
		for attempt := 0; len(pending) > 0; attempt++ {
			if attempt == maxBatchAttempts {
				return nil, fmt.Errorf("table: %d keys still unprocessed after %d attempts", len(pending), attempt)
			}
			if attempt > 0 {
				if err := sleep(ctx, batchBackoff<<(attempt-1)); err != nil {
					return nil, err
				}
			}
			ka := template
			ka.Keys = pending
			out, err := t.client.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{
				RequestItems: map[string]types.KeysAndAttributes{t.name: ka},
			})
			if err != nil {
				return nil, err
			}
			for _, av := range out.Responses[t.name] {
				item, err := t.schema.Decode(av)
				if err != nil {
					return nil, err
				}
				items = append(items, item)
			}
			pending = out.UnprocessedKeys[t.name].Keys
			t.logger.DebugContext(ctx, "dynamix batch fetched",
				"table", t.name, "attempt", attempt+1, "items", len(out.Responses[t.name]), "unprocessed", len(pending))
		}
	}
	return items, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

var _ BatchGetter = (*Table)(nil)
