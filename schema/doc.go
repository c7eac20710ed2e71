// Package schema declares the attributes, items and expressions of a table.
//
// Attributes are typed handles combining a name, a codec and record level
// metadata, built fluently:
//
//	var (
//	    ID      = schema.NewAttribute("id", attribute.UnicodeULID{}).HashKey().DefaultForNew(ulid.Make)
//	    Active  = schema.NewAttribute("active", attribute.IndexableBool{}).Default(func() bool { return true })
//	    Comment = schema.NewAttribute("comment", attribute.Unicode{}).Nullable()
//	)
//
//	Docs = schema.MustNew("documents", ID, Active, Comment)
//
// An Item is one record: a map of decoded values keyed by attribute name.
// Attributes read and write it with Get, Put and Clear, and produce the
// update actions and conditions consumed by the table package:
//
//	item := Docs.NewItem()
//	Comment.Put(item, "draft")
//
//	actions := []schema.Action{Comment.Set("final"), Active.Set(false)}
//	filter := Active.Equal(true).And(Comment.Exists())
//
// Conditions compile to DynamoDB expressions and can also be evaluated
// against an item in memory.
package schema
