// Package dataloader loads items by key in batches and returns them in
// the order of the requested keys.
//
// Its BatchFunc plugs into DataLoader implementations such as
// github.com/graph-gophers/dataloader/v7 or github.com/vikstrous/dataloadgen:
//
//	loader := dataloadgen.NewLoader(dataloader.BatchFunc(users, false))
//	item, err := loader.Load(ctx, table.Key{HashKey: userID})
//
// Load can also be called directly:
//
//	items, errs := dataloader.Load(ctx, users, table.BatchGetInput{Keys: keys})
package dataloader

import (
	"context"
	"fmt"

	"github.com/syssam/dynamix"
	"github.com/syssam/dynamix/schema"
	"github.com/syssam/dynamix/table"
)

// ErrNotFound is returned for keys missing from a batch result.
var ErrNotFound = fmt.Errorf("dataloader: %w", dynamix.ErrNotFound)

// KeyFunc extracts a key from a value.
type KeyFunc[K comparable, V any] func(V) K

// BatchFuncType loads a batch of values by their keys. Results are aligned
// with keys.
type BatchFuncType[K comparable, V any] func(ctx context.Context, keys []K) ([]V, []error)

// OrderByKeys reorders values to match the order of keys. Missing values
// are represented as zero values with ErrNotFound.
//
// Example:
//
//	items, _ := users.BatchGet(ctx, table.BatchGetInput{Keys: keys})
//	ordered, errs := OrderByKeys(ids, items, itemID)
func OrderByKeys[K comparable, V any](keys []K, values []V, keyFn KeyFunc[K, V]) ([]V, []error) {
	lookup := make(map[K]V, len(values))
	for _, v := range values {
		lookup[keyFn(v)] = v
	}

	result := make([]V, len(keys))
	errs := make([]error, len(keys))
	for i, key := range keys {
		if v, ok := lookup[key]; ok {
			result[i] = v
		} else {
			errs[i] = ErrNotFound
		}
	}
	return result, errs
}

// Load reads in.Keys through g and aligns the result with the keys. A key
// that cannot be encoded gets its encoding error, a missing item gets
// ErrNotFound, and a failed batch sets its error on every key.
func Load(ctx context.Context, g table.BatchGetter, in table.BatchGetInput) ([]*schema.Item, []error) {
	s := g.Schema()
	ids := make([]string, len(in.Keys))
	errs := make([]error, len(in.Keys))
	valid := make([]table.Key, 0, len(in.Keys))
	for i, k := range in.Keys {
		key, err := s.Key(k.HashKey, k.RangeKey)
		if err != nil {
			errs[i] = err
			continue
		}
		ids[i] = s.KeyID(key)
		valid = append(valid, k)
	}

	batch := in
	batch.Keys = valid
	items, err := g.BatchGet(ctx, batch)
	if err != nil {
		for i := range errs {
			if errs[i] == nil {
				errs[i] = err
			}
		}
		return make([]*schema.Item, len(in.Keys)), errs
	}

	ordered, missing := OrderByKeys(ids, items, func(item *schema.Item) string {
		key, err := item.Key()
		if err != nil {
			return ""
		}
		return s.KeyID(key)
	})
	for i := range errs {
		if errs[i] == nil {
			errs[i] = missing[i]
		}
	}
	return ordered, errs
}

// BatchFunc adapts g to the batch function signature of DataLoader
// implementations.
func BatchFunc(g table.BatchGetter, consistentRead bool) BatchFuncType[table.Key, *schema.Item] {
	return func(ctx context.Context, keys []table.Key) ([]*schema.Item, []error) {
		return Load(ctx, g, table.BatchGetInput{Keys: keys, ConsistentRead: consistentRead})
	}
}
