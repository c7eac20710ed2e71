package mixin

import (
	"context"
	"time"

	"github.com/syssam/dynamix/schema"
	"github.com/syssam/dynamix/table"
)

// SoftDelete adds a nullable deleted_at attribute. Delete sets it instead
// of removing the item unless DeleteInput.Force is set, and Query and Scan
// skip items carrying it unless IncludeDeleted is set. Get still returns
// soft-deleted items.
type SoftDelete struct {
	attr  *schema.Attribute[time.Time]
	clock Clock
}

// NewSoftDelete returns a SoftDelete mixin.
func NewSoftDelete(opts ...Option) *SoftDelete {
	o := newOptions(opts)
	return &SoftDelete{
		attr:  schema.NewAttribute[time.Time](DeletedAt, DatetimeCodec).Nullable(),
		clock: o.clock,
	}
}

// Attribute returns the deleted_at attribute.
func (m *SoftDelete) Attribute() *schema.Attribute[time.Time] { return m.attr }

// Fields of the SoftDelete mixin.
func (m *SoftDelete) Fields() []schema.Field { return []schema.Field{m.attr} }

// Wrap adds soft deletion to next.
func (m *SoftDelete) Wrap(next table.Persister) table.Persister {
	return &softDelete{Persister: next, mixin: m}
}

// IsDeleted reports whether item was soft deleted.
func (m *SoftDelete) IsDeleted(item *schema.Item) bool {
	_, ok := m.attr.Get(item)
	return ok
}

// DeletedAt returns the deletion time of item.
func (m *SoftDelete) DeletedAt(item *schema.Item) (time.Time, bool) { return m.attr.Get(item) }

// NotDeleted matches items that are not soft deleted.
func (m *SoftDelete) NotDeleted() schema.Condition { return m.attr.NotExists() }

// soft delete mixin must implement `Mixin` interface.
var _ Mixin = (*SoftDelete)(nil)

type softDelete struct {
	table.Persister
	mixin *SoftDelete
}

func (p *softDelete) Delete(ctx context.Context, item *schema.Item, in table.DeleteInput) error {
	if in.Force {
		return p.Persister.Delete(ctx, item, in)
	}
	return p.Persister.Update(ctx, item, table.UpdateInput{
		Actions:   []schema.Action{p.mixin.attr.Set(p.mixin.clock.Now().UTC())},
		Condition: in.Condition,
	})
}

func (p *softDelete) Query(ctx context.Context, in table.QueryInput) (*table.Result, error) {
	if !in.IncludeDeleted {
		in.Filter = schema.And(in.Filter, p.mixin.NotDeleted())
	}
	return p.Persister.Query(ctx, in)
}

func (p *softDelete) Scan(ctx context.Context, in table.ScanInput) (*table.Result, error) {
	if !in.IncludeDeleted {
		in.Filter = schema.And(in.Filter, p.mixin.NotDeleted())
	}
	return p.Persister.Scan(ctx, in)
}

// TimeSoftDelete composes Time and SoftDelete. Soft deletion does not
// refresh modified_at.
type TimeSoftDelete struct {
	time *Time
	soft *SoftDelete
}

// NewTimeSoftDelete returns a TimeSoftDelete mixin.
func NewTimeSoftDelete(opts ...Option) *TimeSoftDelete {
	return &TimeSoftDelete{time: NewTime(opts...), soft: NewSoftDelete(opts...)}
}

// Time returns the timestamping half.
func (m *TimeSoftDelete) Time() *Time { return m.time }

// SoftDelete returns the soft deletion half.
func (m *TimeSoftDelete) SoftDelete() *SoftDelete { return m.soft }

// IsDeleted reports whether item was soft deleted.
func (m *TimeSoftDelete) IsDeleted(item *schema.Item) bool { return m.soft.IsDeleted(item) }

// Fields of the TimeSoftDelete mixin.
func (m *TimeSoftDelete) Fields() []schema.Field {
	return append(m.time.Fields(), m.soft.Fields()...)
}

// Wrap adds soft deletion beneath timestamping.
func (m *TimeSoftDelete) Wrap(next table.Persister) table.Persister {
	return m.time.Wrap(m.soft.Wrap(next))
}

// time soft delete mixin must implement `Mixin` interface.
var _ Mixin = (*TimeSoftDelete)(nil)
