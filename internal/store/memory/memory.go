// Package memory is an in-memory implementation of the store contract,
// used by tests. It provides the same observable semantics as the
// Firestore adapter: merge writes, serializable transactions, a
// monotonically non-decreasing server clock, and full-snapshot change
// listeners.
//
// Listener callbacks are invoked in commit order. They may read from
// the store but must not mutate it synchronously.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/maggie-app/maggie-api/internal/store"
)

type Store struct {
	// commitMu serializes mutations and listener notification, making
	// every commit (single write or transaction) atomic and totally
	// ordered. stateMu guards the document map for readers.
	commitMu sync.Mutex
	stateMu  sync.Mutex

	// docs maps full document paths ("lists/L1", "lists/L1/items/I1")
	// to field maps. Only existing documents have entries.
	docs map[string]map[string]any

	lastTime   time.Time
	nextID     int
	nextHandle int

	docListeners  map[int]*docListener
	collListeners map[int]*collListener
}

type docListener struct {
	path string
	fn   func(store.Snapshot)
}

type collListener struct {
	path string
	fn   func([]store.Snapshot)
}

func New() *Store {
	return &Store{
		docs:          make(map[string]map[string]any),
		docListeners:  make(map[int]*docListener),
		collListeners: make(map[int]*collListener),
	}
}

func (s *Store) Collection(name string) store.Collection {
	return collHandle{s: s, path: name}
}

func (s *Store) Close() error { return nil }

// RunTransaction holds the commit lock for the whole function, so
// concurrent transactions are trivially serializable. Writes are staged
// and applied only if fn returns nil.
func (s *Store) RunTransaction(ctx context.Context, fn func(tx store.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	tx := &memTx{s: s}
	if err := fn(tx); err != nil {
		return err
	}
	s.applyLocked(tx.writes)
	return nil
}

type write struct {
	path   string
	data   map[string]any // nil means delete
	create bool
}

type memTx struct {
	s      *Store
	writes []write
}

func (t *memTx) Get(doc store.Doc) (store.Snapshot, error) {
	d := doc.(docHandle)
	// Read-your-writes within the transaction.
	for i := len(t.writes) - 1; i >= 0; i-- {
		if t.writes[i].path == d.path() {
			if t.writes[i].data == nil {
				return store.Snapshot{ID: d.id, Exists: false}, nil
			}
			return store.Snapshot{ID: d.id, Exists: true, Data: copyData(t.writes[i].data)}, nil
		}
	}
	return t.s.getSnapshot(d)
}

func (t *memTx) Set(doc store.Doc, data map[string]any) error {
	d := doc.(docHandle)
	t.writes = append(t.writes, write{path: d.path(), data: copyData(data)})
	return nil
}

func (t *memTx) Delete(doc store.Doc) error {
	d := doc.(docHandle)
	t.writes = append(t.writes, write{path: d.path()})
	return nil
}

type collHandle struct {
	s    *Store
	path string
}

func (c collHandle) Doc(id string) store.Doc {
	return docHandle{s: c.s, coll: c.path, id: id}
}

func (c collHandle) NewDoc() store.Doc {
	c.s.stateMu.Lock()
	c.s.nextID++
	id := fmt.Sprintf("mem%06d", c.s.nextID)
	c.s.stateMu.Unlock()
	return docHandle{s: c.s, coll: c.path, id: id}
}

func (c collHandle) Where(field, op string, value any) store.Query {
	return memQuery{s: c.s, path: c.path, filters: []filter{{field, op, value}}}
}

func (c collHandle) Documents(ctx context.Context) ([]store.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.s.stateMu.Lock()
	defer c.s.stateMu.Unlock()
	return c.s.collectLocked(c.path), nil
}

func (c collHandle) Listen(ctx context.Context, fn func([]store.Snapshot)) store.CancelFunc {
	c.s.commitMu.Lock()
	c.s.stateMu.Lock()
	c.s.nextHandle++
	h := c.s.nextHandle
	c.s.collListeners[h] = &collListener{path: c.path, fn: fn}
	initial := c.s.collectLocked(c.path)
	c.s.stateMu.Unlock()
	fn(initial)
	c.s.commitMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.s.stateMu.Lock()
			delete(c.s.collListeners, h)
			c.s.stateMu.Unlock()
		})
	}
}

type docHandle struct {
	s    *Store
	coll string
	id   string
}

func (d docHandle) path() string { return d.coll + "/" + d.id }

func (d docHandle) ID() string { return d.id }

func (d docHandle) Collection(name string) store.Collection {
	return collHandle{s: d.s, path: d.path() + "/" + name}
}

func (d docHandle) Get(ctx context.Context) (store.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return store.Snapshot{}, err
	}
	return d.s.getSnapshot(d)
}

func (d docHandle) Set(ctx context.Context, data map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.s.commitMu.Lock()
	defer d.s.commitMu.Unlock()
	d.s.applyLocked([]write{{path: d.path(), data: copyData(data)}})
	return nil
}

func (d docHandle) Delete(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.s.commitMu.Lock()
	defer d.s.commitMu.Unlock()
	d.s.applyLocked([]write{{path: d.path()}})
	return nil
}

func (d docHandle) Listen(ctx context.Context, fn func(store.Snapshot)) store.CancelFunc {
	d.s.commitMu.Lock()
	d.s.stateMu.Lock()
	d.s.nextHandle++
	h := d.s.nextHandle
	d.s.docListeners[h] = &docListener{path: d.path(), fn: fn}
	initial := d.s.snapshotLocked(d.path(), d.id)
	d.s.stateMu.Unlock()
	fn(initial)
	d.s.commitMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			d.s.stateMu.Lock()
			delete(d.s.docListeners, h)
			d.s.stateMu.Unlock()
		})
	}
}

type filter struct {
	field string
	op    string
	value any
}

type memQuery struct {
	s       *Store
	path    string
	filters []filter
	orderBy string
	desc    bool
	limit   int
}

func (q memQuery) Where(field, op string, value any) store.Query {
	q.filters = append(append([]filter{}, q.filters...), filter{field, op, value})
	return q
}

func (q memQuery) OrderBy(field string, desc bool) store.Query {
	q.orderBy = field
	q.desc = desc
	return q
}

func (q memQuery) Limit(n int) store.Query {
	q.limit = n
	return q
}

func (q memQuery) Documents(ctx context.Context) ([]store.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q.s.stateMu.Lock()
	snaps := q.s.collectLocked(q.path)
	q.s.stateMu.Unlock()

	var out []store.Snapshot
	for _, snap := range snaps {
		if q.matches(snap.Data) {
			out = append(out, snap)
		}
	}
	if q.orderBy != "" {
		field, desc := q.orderBy, q.desc
		sort.SliceStable(out, func(i, j int) bool {
			less := compareValues(out[i].Data[field], out[j].Data[field]) < 0
			if desc {
				return !less && compareValues(out[i].Data[field], out[j].Data[field]) != 0
			}
			return less
		})
	}
	if q.limit > 0 && len(out) > q.limit {
		out = out[:q.limit]
	}
	return out, nil
}

func (q memQuery) matches(data map[string]any) bool {
	for _, f := range q.filters {
		switch f.op {
		case "==":
			if compareValues(data[f.field], f.value) != 0 {
				return false
			}
		case "array-contains":
			found := false
			for _, e := range store.Strings(data, f.field) {
				if s, ok := f.value.(string); ok && e == s {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// applyLocked commits a batch of writes, resolving server timestamps to
// a single monotonic instant, then notifies affected listeners. Caller
// holds commitMu.
func (s *Store) applyLocked(writes []write) {
	if len(writes) == 0 {
		return
	}
	s.stateMu.Lock()
	now := time.Now().UTC()
	if !now.After(s.lastTime) {
		now = s.lastTime.Add(time.Microsecond)
	}
	s.lastTime = now

	touched := make(map[string]bool)
	for _, w := range writes {
		touched[w.path] = true
		if w.data == nil {
			delete(s.docs, w.path)
			continue
		}
		cur := s.docs[w.path]
		if cur == nil {
			cur = make(map[string]any)
			s.docs[w.path] = cur
		}
		for k, v := range w.data {
			if v == store.ServerTimestamp {
				cur[k] = now
			} else {
				cur[k] = v
			}
		}
	}

	// Collect notifications under stateMu, deliver after releasing it
	// so callbacks can issue reads.
	type docNote struct {
		fn   func(store.Snapshot)
		snap store.Snapshot
	}
	type collNote struct {
		fn    func([]store.Snapshot)
		snaps []store.Snapshot
	}
	var docNotes []docNote
	var collNotes []collNote

	for _, l := range s.docListeners {
		if touched[l.path] {
			id := l.path[strings.LastIndex(l.path, "/")+1:]
			docNotes = append(docNotes, docNote{l.fn, s.snapshotLocked(l.path, id)})
		}
	}
	for _, l := range s.collListeners {
		changed := false
		for p := range touched {
			if parentCollection(p) == l.path {
				changed = true
				break
			}
		}
		if changed {
			collNotes = append(collNotes, collNote{l.fn, s.collectLocked(l.path)})
		}
	}
	s.stateMu.Unlock()

	for _, n := range docNotes {
		n.fn(n.snap)
	}
	for _, n := range collNotes {
		n.fn(n.snaps)
	}
}

func (s *Store) getSnapshot(d docHandle) (store.Snapshot, error) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.snapshotLocked(d.path(), d.id), nil
}

func (s *Store) snapshotLocked(path, id string) store.Snapshot {
	data, ok := s.docs[path]
	if !ok {
		return store.Snapshot{ID: id, Exists: false}
	}
	return store.Snapshot{ID: id, Exists: true, Data: copyData(data)}
}

// collectLocked returns all documents directly inside collection path,
// in stable id order.
func (s *Store) collectLocked(path string) []store.Snapshot {
	prefix := path + "/"
	var ids []string
	for p := range s.docs {
		if strings.HasPrefix(p, prefix) && !strings.Contains(p[len(prefix):], "/") {
			ids = append(ids, p[len(prefix):])
		}
	}
	sort.Strings(ids)
	out := make([]store.Snapshot, 0, len(ids))
	for _, id := range ids {
		out = append(out, store.Snapshot{ID: id, Exists: true, Data: copyData(s.docs[prefix+id])})
	}
	return out
}

func parentCollection(docPath string) string {
	i := strings.LastIndex(docPath, "/")
	if i < 0 {
		return ""
	}
	return docPath[:i]
}

func copyData(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		switch vv := v.(type) {
		case []string:
			out[k] = append([]string{}, vv...)
		case []any:
			out[k] = append([]any{}, vv...)
		default:
			out[k] = v
		}
	}
	return out
}

// compareValues orders the field types the two backends produce. Mixed
// or unknown types compare as equal.
func compareValues(a, b any) int {
	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(av, bv)
		}
	case bool:
		if bv, ok := b.(bool); ok {
			switch {
			case av == bv:
				return 0
			case !av:
				return -1
			default:
				return 1
			}
		}
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			switch {
			case av.Equal(bv):
				return 0
			case av.Before(bv):
				return -1
			default:
				return 1
			}
		}
	case int, int64, float64:
		an, aok := toFloat(a)
		bn, bok := toFloat(b)
		if aok && bok {
			switch {
			case an == bn:
				return 0
			case an < bn:
				return -1
			default:
				return 1
			}
		}
	}
	return 0
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
