package docstore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sevahub/sevahub/internal/app/store/rel"
)

// Collection exposes document-store operations over one relational table.
// It is stateless; the relational store is sole owner of durable state.
type Collection struct {
	table  string
	client rel.Client
}

// New builds a Collection over the named table.
func New(client rel.Client, table string) *Collection {
	return &Collection{table: table, client: client}
}

// Table returns the backing table name.
func (c *Collection) Table() string { return c.table }

// UpdateOptions controls which snapshot FindByIDAndUpdate returns.
type UpdateOptions struct {
	// ReturnOriginal selects the pre-update record. Default is the
	// post-update record.
	ReturnOriginal bool
}

// Find builds a lazy query over the filter. Execution is deferred until the
// returned Query runs.
func (c *Collection) Find(filter Document) *Query {
	conds, err := ParseFilter(filter)
	return &Query{coll: c, conds: conds, err: err}
}

// FindOne returns the first record matching the filter, or nil when nothing
// matches. "Not found" is an expected outcome, never an error.
func (c *Collection) FindOne(ctx context.Context, filter Document) (Document, error) {
	conds, err := ParseFilter(filter)
	if err != nil {
		return nil, err
	}
	docs, err := c.client.Select(ctx, c.table, conds, rel.SelectOptions{Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return docs[0], nil
}

// FindByID fetches one record by identifier, coerced to canonical string
// form before querying. nil when absent.
func (c *Collection) FindByID(ctx context.Context, id any) (Document, error) {
	doc, err := c.client.Get(ctx, c.table, CanonicalID(id))
	if errors.Is(err, rel.ErrNotFound) {
		return nil, nil
	}
	return doc, err
}

// Count returns the exact number of records matching the filter.
func (c *Collection) Count(ctx context.Context, filter Document) (int64, error) {
	conds, err := ParseFilter(filter)
	if err != nil {
		return 0, err
	}
	return c.client.Count(ctx, c.table, conds)
}

// Save upserts the full record. A record without an identifier gets a fresh
// random one. updated_at is stamped on every save; created_at only when
// absent. The returned document is the row as the store canonically holds
// it, so the caller is immediately consistent with durable state.
func (c *Collection) Save(ctx context.Context, doc Document) (Document, error) {
	if doc == nil {
		doc = Document{}
	}
	if id, _ := doc["id"].(string); id == "" {
		doc["id"] = uuid.NewString()
	}
	now := nowStamp()
	doc["updated_at"] = now
	if _, ok := doc["created_at"]; !ok {
		doc["created_at"] = now
	}
	return c.client.Upsert(ctx, c.table, doc)
}

// FindByIDAndUpdate applies a document-style update to the record, persisting
// the merged result as a full replace. Returns nil (and performs no write)
// when the id is absent. opts selects the pre- or post-update snapshot;
// default is post-update.
func (c *Collection) FindByIDAndUpdate(ctx context.Context, id any, update Document, opts ...UpdateOptions) (Document, error) {
	ch, err := ParseUpdate(update)
	if err != nil {
		return nil, err
	}

	before, err := c.client.Get(ctx, c.table, CanonicalID(id))
	if errors.Is(err, rel.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	after := clone(before)
	ch.Apply(after)
	after["updated_at"] = nowStamp()

	stored, err := c.client.Upsert(ctx, c.table, after)
	if err != nil {
		return nil, err
	}
	if len(opts) > 0 && opts[0].ReturnOriginal {
		return before, nil
	}
	return stored, nil
}

// FindByIDAndDelete removes the record and returns its pre-deletion
// snapshot, or nil when the id is absent.
func (c *Collection) FindByIDAndDelete(ctx context.Context, id any) (Document, error) {
	key := CanonicalID(id)
	before, err := c.client.Get(ctx, c.table, key)
	if errors.Is(err, rel.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := c.client.Delete(ctx, c.table, key); err != nil {
		if errors.Is(err, rel.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return before, nil
}

func nowStamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func clone(doc Document) Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}
