// Package mixin provides overlays that add timestamping and soft deletion
// to a table.Persister.
//
// A mixin contributes attributes to the schema and wraps the persister
// to maintain them. Both halves must be wired:
//
//	ts := mixin.NewTimeSoftDelete()
//	s := schema.MustNew("documents", mixin.Fields([]schema.Field{ID, Data}, ts)...)
//	docs, err := mixin.Apply(table.New(client, s), ts)
//
// Available mixins:
//   - CreateTime: created_at, set on new items
//   - ModifyTime: modified_at, refreshed by Save and Update
//   - Time: CreateTime and ModifyTime
//   - SoftDelete: deleted_at, set by Delete instead of removing the item
//   - TimeSoftDelete: Time and SoftDelete
package mixin

import (
	"errors"
	"fmt"
	"time"

	"github.com/syssam/dynamix"
	"github.com/syssam/dynamix/attribute"
	"github.com/syssam/dynamix/internal/clock"
	"github.com/syssam/dynamix/schema"
	"github.com/syssam/dynamix/table"
)

// Attribute names contributed by the mixins.
const (
	CreatedAt  = "created_at"
	ModifiedAt = "modified_at"
	DeletedAt  = "deleted_at"
)

// DatetimeCodec is the encoding of the timestamp attributes.
var DatetimeCodec = attribute.UnicodeDatetime{ForceUTC: true}

// Mixin contributes attributes to a schema and behavior to its persister.
type Mixin interface {
	// Fields returns the attributes the schema must declare.
	Fields() []schema.Field
	// Wrap returns next with the mixin behavior added.
	Wrap(next table.Persister) table.Persister
}

// Clock is the time source used for timestamps.
type Clock = clock.Clock

// Option configures a mixin.
type Option func(*options)

type options struct {
	clock Clock
}

// WithClock sets the time source. Default is the system clock in UTC.
func WithClock(c Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

func newOptions(opts []Option) *options {
	o := &options{clock: clock.Real{}}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Fields appends the attributes of ms to base.
func Fields(base []schema.Field, ms ...Mixin) []schema.Field {
	fields := append([]schema.Field(nil), base...)
	for _, m := range ms {
		fields = append(fields, m.Fields()...)
	}
	return fields
}

// Apply wraps base with ms. Later mixins wrap earlier ones, so the last
// mixin sees calls first. Every attribute a mixin contributes must be
// declared by the schema of base.
func Apply(base table.Persister, ms ...Mixin) (table.Persister, error) {
	s := base.Schema()
	for _, m := range ms {
		for _, f := range m.Fields() {
			declared, ok := s.Field(f.Name())
			if !ok {
				return nil, dynamix.NewDefinitionError(s.Table(), f.Name(), errors.New("mixin attribute not declared by schema"))
			}
			if declared != f {
				return nil, dynamix.NewDefinitionError(s.Table(), f.Name(), fmt.Errorf("schema declares a different %q attribute than the mixin", f.Name()))
			}
		}
	}
	p := base
	for _, m := range ms {
		p = m.Wrap(p)
	}
	return p, nil
}

func timeAttribute(name string, c Clock) *schema.Attribute[time.Time] {
	return schema.NewAttribute[time.Time](name, DatetimeCodec).DefaultForNew(func() time.Time {
		return c.Now().UTC()
	})
}
