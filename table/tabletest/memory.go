// Package tabletest provides an in-memory table.Persister.
//
// Memory honors conditions, filters, update actions and range key
// ordering so that code layered on a Persister can be tested without
// DynamoDB. Secondary indexes are not supported.
package tabletest

import (
	"context"
	"errors"
	"hash/fnv"
	"maps"
	"slices"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/syssam/dynamix"
	"github.com/syssam/dynamix/schema"
	"github.com/syssam/dynamix/table"
)

// ErrIndexUnsupported is returned for reads naming a secondary index.
var ErrIndexUnsupported = errors.New("tabletest: secondary indexes are not supported")

// Memory is an in-memory Persister. It is safe for concurrent use.
type Memory struct {
	schema *schema.Schema
	mu     sync.RWMutex
	items  map[string]map[string]types.AttributeValue
}

// New returns an empty Memory for s.
func New(s *schema.Schema) *Memory {
	return &Memory{
		schema: s,
		items:  make(map[string]map[string]types.AttributeValue),
	}
}

// Schema implements table.Persister.
func (m *Memory) Schema() *schema.Schema { return m.schema }

// Len returns the number of stored items.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// Stored returns a copy of the raw attributes stored under a key.
func (m *Memory) Stored(hashKey, rangeKey any) (map[string]types.AttributeValue, bool) {
	key, err := m.schema.Key(hashKey, rangeKey)
	if err != nil {
		return nil, false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	av, ok := m.items[m.id(key)]
	return maps.Clone(av), ok
}

// Get implements table.Persister.
func (m *Memory) Get(_ context.Context, in table.GetInput) (*schema.Item, error) {
	key, err := m.schema.Key(in.HashKey, in.RangeKey)
	if err != nil {
		return nil, err
	}
	m.mu.RLock()
	av, ok := m.items[m.id(key)]
	m.mu.RUnlock()
	if !ok {
		return nil, dynamix.NewNotFoundErrorWithKey(m.schema.Table(), table.Key{HashKey: in.HashKey, RangeKey: in.RangeKey}.Value())
	}
	return m.schema.Decode(project(av, in.Attributes))
}

// BatchGet implements table.BatchGetter.
func (m *Memory) BatchGet(_ context.Context, in table.BatchGetInput) ([]*schema.Item, error) {
	keys, err := table.EncodeKeys(m.schema, in.Keys)
	if err != nil {
		return nil, err
	}
	attrs := table.ProjectedAttributes(m.schema, in.Attributes)
	m.mu.RLock()
	defer m.mu.RUnlock()
	var items []*schema.Item
	for _, key := range keys {
		av, ok := m.items[m.id(key)]
		if !ok {
			continue
		}
		item, err := m.schema.Decode(project(av, attrs))
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// Save implements table.Persister.
func (m *Memory) Save(_ context.Context, item *schema.Item, in table.SaveInput) error {
	av, err := item.Encode()
	if err != nil {
		return err
	}
	id := m.id(m.schema.KeyOf(av))
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := check(in.Condition, m.items[id]); err != nil {
		return err
	}
	m.items[id] = av
	return nil
}

// Update implements table.Persister. A missing item is created from its
// key, as UpdateItem does.
func (m *Memory) Update(_ context.Context, item *schema.Item, in table.UpdateInput) error {
	key, err := item.Key()
	if err != nil {
		return err
	}
	if len(in.Actions) == 0 {
		return errors.New("tabletest: update requires at least one action")
	}
	id := m.id(key)
	m.mu.Lock()
	defer m.mu.Unlock()
	current := m.items[id]
	if err := check(in.Condition, current); err != nil {
		return err
	}
	next := maps.Clone(current)
	if next == nil {
		next = maps.Clone(key)
	}
	for _, a := range in.Actions {
		if err := a.Apply(next); err != nil {
			return err
		}
	}
	m.items[id] = next
	return item.Refresh(maps.Clone(next))
}

// Delete implements table.Persister. Memory always deletes physically.
func (m *Memory) Delete(_ context.Context, item *schema.Item, in table.DeleteInput) error {
	key, err := item.Key()
	if err != nil {
		return err
	}
	id := m.id(key)
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := check(in.Condition, m.items[id]); err != nil {
		return err
	}
	delete(m.items, id)
	return nil
}

// Query implements table.Persister. Items are returned in range key
// order, reversed when ScanIndexForward is false. Limit bounds the
// returned items and ExclusiveStartKey must name a previously read item.
func (m *Memory) Query(_ context.Context, in table.QueryInput) (*table.Result, error) {
	if in.IndexName != "" {
		return nil, ErrIndexUnsupported
	}
	keyCond := in.KeyCondition
	if keyCond.IsZero() {
		keyCond = schema.And(schema.FieldEqual(m.schema.HashKey(), in.HashKey), in.RangeKeyCondition)
	}
	if err := keyCond.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	var matched []map[string]types.AttributeValue
	for _, av := range m.items {
		ok, err := keyCond.Eval(av)
		if err != nil {
			m.mu.RUnlock()
			return nil, err
		}
		if ok {
			matched = append(matched, maps.Clone(av))
		}
	}
	m.mu.RUnlock()
	m.sort(matched)
	if in.ScanIndexForward != nil && !*in.ScanIndexForward {
		slices.Reverse(matched)
	}
	return m.read(matched, in.Filter, in.Limit, in.ExclusiveStartKey, in.Attributes)
}

// Scan implements table.Persister. Items are returned in key order;
// segments partition items by a hash of their key.
func (m *Memory) Scan(_ context.Context, in table.ScanInput) (*table.Result, error) {
	if in.IndexName != "" {
		return nil, ErrIndexUnsupported
	}
	m.mu.RLock()
	var matched []map[string]types.AttributeValue
	for id, av := range m.items {
		if in.TotalSegments > 0 && segment(id, in.TotalSegments) != in.Segment {
			continue
		}
		matched = append(matched, maps.Clone(av))
	}
	m.mu.RUnlock()
	m.sort(matched)
	return m.read(matched, in.Filter, in.Limit, in.ExclusiveStartKey, in.Attributes)
}

func (m *Memory) read(items []map[string]types.AttributeValue, filter schema.Condition, limit int, start map[string]types.AttributeValue, attrs []string) (*table.Result, error) {
	if len(start) > 0 {
		startID := m.id(start)
		pos := slices.IndexFunc(items, func(av map[string]types.AttributeValue) bool {
			return m.id(m.schema.KeyOf(av)) == startID
		})
		if pos >= 0 {
			items = items[pos+1:]
		}
	}
	res := &table.Result{}
	for i, av := range items {
		res.ScannedCount++
		ok, err := filter.Eval(av)
		if err != nil {
			return nil, err
		}
		if ok {
			item, err := m.schema.Decode(project(av, attrs))
			if err != nil {
				return nil, err
			}
			res.Items = append(res.Items, item)
		}
		if limit > 0 && len(res.Items) >= limit {
			if i < len(items)-1 {
				res.LastEvaluatedKey = m.schema.KeyOf(av)
			}
			break
		}
	}
	return res, nil
}

// sort orders items by hash key then range key.
func (m *Memory) sort(items []map[string]types.AttributeValue) {
	hk, rk := m.schema.HashKey().Name(), ""
	if f := m.schema.RangeKey(); f != nil {
		rk = f.Name()
	}
	slices.SortFunc(items, func(a, b map[string]types.AttributeValue) int {
		if c, _ := schema.CompareValues(a[hk], b[hk]); c != 0 || rk == "" {
			return c
		}
		c, _ := schema.CompareValues(a[rk], b[rk])
		return c
	})
}

func (m *Memory) id(key map[string]types.AttributeValue) string { return m.schema.KeyID(key) }

func segment(id string, total int) int {
	h := fnv.New32a()
	h.Write([]byte(id))
	return int(h.Sum32() % uint32(total))
}

func check(cond schema.Condition, current map[string]types.AttributeValue) error {
	if cond.IsZero() {
		return nil
	}
	ok, err := cond.Eval(current)
	if err != nil {
		return err
	}
	if !ok {
		return &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
	}
	return nil
}

func project(av map[string]types.AttributeValue, attrs []string) map[string]types.AttributeValue {
	if len(attrs) == 0 {
		return av
	}
	out := make(map[string]types.AttributeValue, len(attrs))
	for _, a := range attrs {
		if v, ok := av[a]; ok {
			out[a] = v
		}
	}
	return out
}

var (
	_ table.Persister   = (*Memory)(nil)
	_ table.BatchGetter = (*Memory)(nil)
)
