package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/maggie-app/maggie-api/internal/store"
)

func TestSetMergesAndGetRoundTrips(t *testing.T) {
	s := New()
	ctx := context.Background()
	doc := s.Collection("lists").Doc("l1")

	require.NoError(t, doc.Set(ctx, map[string]any{"title": "Groceries", "itemsTotal": 0}))
	require.NoError(t, doc.Set(ctx, map[string]any{"itemsTotal": 3}))

	snap, err := doc.Get(ctx)
	require.NoError(t, err)
	require.True(t, snap.Exists)
	require.Equal(t, "Groceries", store.String(snap.Data, "title"))
	require.Equal(t, 3, store.Int(snap.Data, "itemsTotal"))
}

func TestGetMissingDocument(t *testing.T) {
	s := New()
	snap, err := s.Collection("lists").Doc("nope").Get(context.Background())
	require.NoError(t, err)
	require.False(t, snap.Exists)
}

func TestServerTimestampsAreMonotonic(t *testing.T) {
	s := New()
	ctx := context.Background()
	doc := s.Collection("lists").Doc("l1")

	require.NoError(t, doc.Set(ctx, map[string]any{"updatedAt": store.ServerTimestamp}))
	snap, err := doc.Get(ctx)
	require.NoError(t, err)
	first := store.Time(snap.Data, "updatedAt")
	require.False(t, first.IsZero())

	for i := 0; i < 50; i++ {
		require.NoError(t, doc.Set(ctx, map[string]any{"updatedAt": store.ServerTimestamp}))
		snap, err = doc.Get(ctx)
		require.NoError(t, err)
		next := store.Time(snap.Data, "updatedAt")
		require.True(t, next.After(first), "server time must advance")
		first = next
	}
}

func TestTransactionAppliesAtomically(t *testing.T) {
	s := New()
	ctx := context.Background()
	listDoc := s.Collection("lists").Doc("l1")
	itemDoc := listDoc.Collection("items").Doc("i1")

	err := s.RunTransaction(ctx, func(tx store.Tx) error {
		if err := tx.Set(itemDoc, map[string]any{"title": "Milk", "done": false}); err != nil {
			return err
		}
		return tx.Set(listDoc, map[string]any{"itemsTotal": 1})
	})
	require.NoError(t, err)

	listSnap, err := listDoc.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, store.Int(listSnap.Data, "itemsTotal"))
	itemSnap, err := itemDoc.Get(ctx)
	require.NoError(t, err)
	require.True(t, itemSnap.Exists)
}

func TestTransactionDiscardsWritesOnError(t *testing.T) {
	s := New()
	ctx := context.Background()
	doc := s.Collection("lists").Doc("l1")
	boom := errors.New("boom")

	err := s.RunTransaction(ctx, func(tx store.Tx) error {
		if err := tx.Set(doc, map[string]any{"title": "should not persist"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	snap, err := doc.Get(ctx)
	require.NoError(t, err)
	require.False(t, snap.Exists)
}

func TestTransactionReadsItsOwnWrites(t *testing.T) {
	s := New()
	ctx := context.Background()
	doc := s.Collection("lists").Doc("l1")

	err := s.RunTransaction(ctx, func(tx store.Tx) error {
		if err := tx.Set(doc, map[string]any{"n": 1}); err != nil {
			return err
		}
		snap, err := tx.Get(doc)
		if err != nil {
			return err
		}
		require.True(t, snap.Exists)
		require.Equal(t, 1, store.Int(snap.Data, "n"))
		return nil
	})
	require.NoError(t, err)
}

func TestQueryFiltersOrderAndLimit(t *testing.T) {
	s := New()
	ctx := context.Background()
	coll := s.Collection("lists")

	require.NoError(t, coll.Doc("a").Set(ctx, map[string]any{"code": "AAAAAA", "members": []string{"u1"}, "rank": 1}))
	require.NoError(t, coll.Doc("b").Set(ctx, map[string]any{"code": "BBBBBB", "members": []string{"u1", "u2"}, "rank": 2}))
	require.NoError(t, coll.Doc("c").Set(ctx, map[string]any{"code": "CCCCCC", "members": []string{"u2"}, "rank": 3}))

	byCode, err := coll.Where("code", "==", "BBBBBB").Limit(1).Documents(ctx)
	require.NoError(t, err)
	require.Len(t, byCode, 1)
	require.Equal(t, "b", byCode[0].ID)

	mine, err := coll.Where("members", "array-contains", "u2").OrderBy("rank", true).Documents(ctx)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	require.Equal(t, "c", mine[0].ID)
	require.Equal(t, "b", mine[1].ID)
}

func TestDocListenerDeliversInitialAndChanges(t *testing.T) {
	s := New()
	ctx := context.Background()
	doc := s.Collection("lists").Doc("l1")
	require.NoError(t, doc.Set(ctx, map[string]any{"title": "v1"}))

	var got []store.Snapshot
	cancel := doc.Listen(ctx, func(snap store.Snapshot) {
		got = append(got, snap)
	})

	require.Len(t, got, 1)
	require.Equal(t, "v1", store.String(got[0].Data, "title"))

	require.NoError(t, doc.Set(ctx, map[string]any{"title": "v2"}))
	require.Len(t, got, 2)
	require.Equal(t, "v2", store.String(got[1].Data, "title"))

	require.NoError(t, doc.Delete(ctx))
	require.Len(t, got, 3)
	require.False(t, got[2].Exists)

	cancel()
	cancel() // idempotent
	require.NoError(t, doc.Set(ctx, map[string]any{"title": "v3"}))
	require.Len(t, got, 3, "cancelled listener must not fire")
}

func TestCollectionListenerSeesFullSnapshots(t *testing.T) {
	s := New()
	ctx := context.Background()
	coll := s.Collection("lists").Doc("l1").Collection("items")

	var frames [][]store.Snapshot
	cancel := coll.Listen(ctx, func(snaps []store.Snapshot) {
		frames = append(frames, snaps)
	})
	defer cancel()

	require.Len(t, frames, 1)
	require.Empty(t, frames[0])

	require.NoError(t, coll.Doc("i1").Set(ctx, map[string]any{"title": "Milk"}))
	require.NoError(t, coll.Doc("i2").Set(ctx, map[string]any{"title": "Eggs"}))
	require.Len(t, frames, 3)
	require.Len(t, frames[2], 2)

	require.NoError(t, coll.Doc("i1").Delete(ctx))
	require.Len(t, frames, 4)
	require.Len(t, frames[3], 1)
	require.Equal(t, "i2", frames[3][0].ID)
}

func TestListenerNotFiredForSiblingCollection(t *testing.T) {
	s := New()
	ctx := context.Background()

	var frames int
	cancel := s.Collection("lists").Doc("l1").Collection("items").Listen(ctx, func([]store.Snapshot) {
		frames++
	})
	defer cancel()
	require.Equal(t, 1, frames)

	require.NoError(t, s.Collection("lists").Doc("l2").Collection("items").Doc("x").Set(ctx, map[string]any{"title": "other"}))
	require.Equal(t, 1, frames, "changes under another list must not notify")
}
