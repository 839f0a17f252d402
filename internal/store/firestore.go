package store

import (
	"context"
	"sync"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

// FirestoreClient adapts a *firestore.Client to the store contract.
// Transaction conflict retry is handled by the Firestore client itself
// (bounded attempts); errors that survive it surface unchanged.
type FirestoreClient struct {
	client *firestore.Client
}

func NewFirestoreClient(client *firestore.Client) *FirestoreClient {
	return &FirestoreClient{client: client}
}

func (c *FirestoreClient) Collection(name string) Collection {
	return fsCollection{ref: c.client.Collection(name)}
}

func (c *FirestoreClient) RunTransaction(ctx context.Context, fn func(tx Tx) error) error {
	return c.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		return fn(fsTx{tx: tx})
	})
}

func (c *FirestoreClient) Close() error {
	return c.client.Close()
}

type fsCollection struct {
	ref *firestore.CollectionRef
}

func (c fsCollection) Doc(id string) Doc {
	return fsDoc{ref: c.ref.Doc(id)}
}

func (c fsCollection) NewDoc() Doc {
	return fsDoc{ref: c.ref.NewDoc()}
}

func (c fsCollection) Where(field, op string, value any) Query {
	return fsQuery{q: c.ref.Where(field, op, value)}
}

func (c fsCollection) Documents(ctx context.Context) ([]Snapshot, error) {
	return fsQuery{q: c.ref.Query}.Documents(ctx)
}

func (c fsCollection) Listen(ctx context.Context, fn func([]Snapshot)) CancelFunc {
	return listenQuery(ctx, c.ref.Query, fn)
}

type fsDoc struct {
	ref *firestore.DocumentRef
}

func (d fsDoc) ID() string { return d.ref.ID }

func (d fsDoc) Collection(name string) Collection {
	return fsCollection{ref: d.ref.Collection(name)}
}

func (d fsDoc) Get(ctx context.Context) (Snapshot, error) {
	snap, err := d.ref.Get(ctx)
	return toSnapshot(d.ref.ID, snap, err)
}

func (d fsDoc) Set(ctx context.Context, data map[string]any) error {
	_, err := d.ref.Set(ctx, resolveTimestamps(data), firestore.MergeAll)
	return err
}

func (d fsDoc) Delete(ctx context.Context) error {
	_, err := d.ref.Delete(ctx)
	return err
}

func (d fsDoc) Listen(ctx context.Context, fn func(Snapshot)) CancelFunc {
	ctx, cancel := context.WithCancel(ctx)
	go func() {
		it := d.ref.Snapshots(ctx)
		defer it.Stop()
		for {
			snap, err := it.Next()
			if err != nil {
				return
			}
			s, _ := toSnapshot(d.ref.ID, snap, nil)
			fn(s)
		}
	}()
	return onceCancel(cancel)
}

type fsQuery struct {
	q firestore.Query
}

func (q fsQuery) Where(field, op string, value any) Query {
	return fsQuery{q: q.q.Where(field, op, value)}
}

func (q fsQuery) OrderBy(field string, desc bool) Query {
	dir := firestore.Asc
	if desc {
		dir = firestore.Desc
	}
	return fsQuery{q: q.q.OrderBy(field, dir)}
}

func (q fsQuery) Limit(n int) Query {
	return fsQuery{q: q.q.Limit(n)}
}

func (q fsQuery) Documents(ctx context.Context) ([]Snapshot, error) {
	it := q.q.Documents(ctx)
	defer it.Stop()
	var out []Snapshot
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, Snapshot{ID: snap.Ref.ID, Exists: true, Data: snap.Data()})
	}
}

type fsTx struct {
	tx *firestore.Transaction
}

func (t fsTx) Get(doc Doc) (Snapshot, error) {
	ref := doc.(fsDoc).ref
	snap, err := t.tx.Get(ref)
	return toSnapshot(ref.ID, snap, err)
}

func (t fsTx) Set(doc Doc, data map[string]any) error {
	return t.tx.Set(doc.(fsDoc).ref, resolveTimestamps(data), firestore.MergeAll)
}

func (t fsTx) Delete(doc Doc) error {
	return t.tx.Delete(doc.(fsDoc).ref)
}

func listenQuery(ctx context.Context, q firestore.Query, fn func([]Snapshot)) CancelFunc {
	ctx, cancel := context.WithCancel(ctx)
	go func() {
		it := q.Snapshots(ctx)
		defer it.Stop()
		for {
			qsnap, err := it.Next()
			if err != nil {
				return
			}
			var out []Snapshot
			docs := qsnap.Documents
			for {
				snap, err := docs.Next()
				if err != nil {
					break
				}
				out = append(out, Snapshot{ID: snap.Ref.ID, Exists: true, Data: snap.Data()})
			}
			fn(out)
		}
	}()
	return onceCancel(cancel)
}

// toSnapshot folds Firestore's missing-document error into an
// Exists=false snapshot so callers only deal with real failures.
func toSnapshot(id string, snap *firestore.DocumentSnapshot, err error) (Snapshot, error) {
	if snap != nil && !snap.Exists() {
		return Snapshot{ID: id, Exists: false}, nil
	}
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{ID: id, Exists: true, Data: snap.Data()}, nil
}

func resolveTimestamps(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		if _, ok := v.(serverTimestamp); ok {
			out[k] = firestore.ServerTimestamp
		} else {
			out[k] = v
		}
	}
	return out
}

func onceCancel(cancel context.CancelFunc) CancelFunc {
	var once sync.Once
	return func() { once.Do(cancel) }
}
