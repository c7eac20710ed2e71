package mixin

import (
	"context"
	"slices"
	"time"

	"github.com/syssam/dynamix/schema"
	"github.com/syssam/dynamix/table"
)

// CreateTime adds a created_at attribute holding the creation time of
// the item. It is set on items built by Schema.NewItem and never changed
// afterwards.
type CreateTime struct {
	attr *schema.Attribute[time.Time]
}

// NewCreateTime returns a CreateTime mixin.
func NewCreateTime(opts ...Option) *CreateTime {
	o := newOptions(opts)
	return &CreateTime{attr: timeAttribute(CreatedAt, o.clock)}
}

// Attribute returns the created_at attribute.
func (m *CreateTime) Attribute() *schema.Attribute[time.Time] { return m.attr }

// Fields of the create time mixin.
func (m *CreateTime) Fields() []schema.Field { return []schema.Field{m.attr} }

// Wrap returns next unchanged.
func (m *CreateTime) Wrap(next table.Persister) table.Persister { return next }

// CreatedAt returns the creation time of item.
func (m *CreateTime) CreatedAt(item *schema.Item) (time.Time, bool) { return m.attr.Get(item) }

// create time mixin must implement `Mixin` interface.
var _ Mixin = (*CreateTime)(nil)

// ModifyTime adds a modified_at attribute refreshed by every Save and
// Update unless the input sets SkipTimestamp.
type ModifyTime struct {
	attr  *schema.Attribute[time.Time]
	clock Clock
}

// NewModifyTime returns a ModifyTime mixin.
func NewModifyTime(opts ...Option) *ModifyTime {
	o := newOptions(opts)
	return &ModifyTime{attr: timeAttribute(ModifiedAt, o.clock), clock: o.clock}
}

// Attribute returns the modified_at attribute.
func (m *ModifyTime) Attribute() *schema.Attribute[time.Time] { return m.attr }

// Fields of the modify time mixin.
func (m *ModifyTime) Fields() []schema.Field { return []schema.Field{m.attr} }

// Wrap stamps modified_at on Save and Update.
func (m *ModifyTime) Wrap(next table.Persister) table.Persister {
	return &modifyTime{Persister: next, mixin: m}
}

// ModifiedAt returns the last modification time of item.
func (m *ModifyTime) ModifiedAt(item *schema.Item) (time.Time, bool) { return m.attr.Get(item) }

// modify time mixin must implement `Mixin` interface.
var _ Mixin = (*ModifyTime)(nil)

type modifyTime struct {
	table.Persister
	mixin *ModifyTime
}

func (p *modifyTime) Save(ctx context.Context, item *schema.Item, in table.SaveInput) error {
	if !in.SkipTimestamp {
		p.mixin.attr.Put(item, p.mixin.clock.Now().UTC())
	}
	return p.Persister.Save(ctx, item, in)
}

func (p *modifyTime) Update(ctx context.Context, item *schema.Item, in table.UpdateInput) error {
	if !in.SkipTimestamp {
		in.Actions = append(slices.Clip(in.Actions), p.mixin.attr.Set(p.mixin.clock.Now().UTC()))
	}
	return p.Persister.Update(ctx, item, in)
}

// Time composes CreateTime and ModifyTime.
type Time struct {
	create *CreateTime
	modify *ModifyTime
}

// NewTime returns a Time mixin.
func NewTime(opts ...Option) *Time {
	return &Time{create: NewCreateTime(opts...), modify: NewModifyTime(opts...)}
}

// CreateTime returns the create time half.
func (m *Time) CreateTime() *CreateTime { return m.create }

// ModifyTime returns the modify time half.
func (m *Time) ModifyTime() *ModifyTime { return m.modify }

// Fields of the time mixin.
func (m *Time) Fields() []schema.Field {
	return append(m.create.Fields(), m.modify.Fields()...)
}

// Wrap adds the modify time behavior.
func (m *Time) Wrap(next table.Persister) table.Persister {
	return m.modify.Wrap(m.create.Wrap(next))
}

// time mixin must implement `Mixin` interface.
var _ Mixin = (*Time)(nil)
