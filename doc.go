// Package dynamix provides custom attribute encodings and record overlays
// for persisting items in Amazon DynamoDB.
//
// The root package defines the shared contract: the storage primitive
// kinds, the Codec interface implemented by every attribute type, and the
// error taxonomy. The work is split across sub-packages:
//
//   - attribute: codecs (indexable boolean, enums, ULID, UUID, KSUID,
//     datetimes, durations, msgpack)
//   - schema: typed attribute handles, schemas, items, conditions and
//     update actions
//   - table: the Persister interface and its DynamoDB implementation
//   - contrib/mixin: timestamping and soft-delete overlays composed over a Persister
//   - contrib/dataloader: batch loads aligned with the requested keys
//   - dialect/dynamo: the injected client, its configuration and the
//     stats/debug decorators
//
// # Usage
//
//	var (
//	    ID   = schema.NewAttribute("id", attribute.UnicodeULID{}).HashKey().DefaultForNew(ulid.Make)
//	    Data = schema.NewAttribute("data", attribute.Unicode{}).Nullable()
//	    ts   = mixin.NewTimeSoftDelete()
//	)
//
//	s := schema.MustNew("documents", mixin.Fields([]schema.Field{ID, Data}, ts)...)
//	client, err := dynamo.Open(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	docs, err := mixin.Apply(table.New(client, s), ts)
//	if err != nil {
//	    return err
//	}
//
//	item := s.NewItem()
//	Data.Put(item, "hello")
//	err = docs.Save(ctx, item, table.SaveInput{})
package dynamix
