package items

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func titles(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Title
	}
	return out
}

func TestProjectorOrdersOpenItemsFirstThenByRecency(t *testing.T) {
	repo, _, s, listID := newLedger(t)
	projector := NewProjector(s)
	ctx := context.Background()

	a, err := repo.Add(ctx, listID, "u1", "Apples", 1)
	require.NoError(t, err)
	b, err := repo.Add(ctx, listID, "u1", "Bananas", 1)
	require.NoError(t, err)
	_, err = repo.Add(ctx, listID, "u1", "Cheese", 1)
	require.NoError(t, err)

	// Apples becomes done with the newest updatedAt of all three, but
	// must still sort after every open item.
	require.NoError(t, repo.Toggle(ctx, listID, a, true))

	var frames [][]Item
	cancel := projector.Listen(ctx, listID, func(items []Item) {
		frames = append(frames, items)
	})
	defer cancel()

	require.NotEmpty(t, frames, "initial state must be delivered")
	require.Equal(t, []string{"Cheese", "Bananas", "Apples"}, titles(frames[len(frames)-1]))

	// Touching Bananas moves it ahead of Cheese within the open group.
	require.NoError(t, repo.Toggle(ctx, listID, b, false))
	require.Equal(t, []string{"Bananas", "Cheese", "Apples"}, titles(frames[len(frames)-1]))
}

func TestProjectorDeliversFullSnapshotsNotDeltas(t *testing.T) {
	repo, _, s, listID := newLedger(t)
	projector := NewProjector(s)
	ctx := context.Background()

	var frames [][]Item
	cancel := projector.Listen(ctx, listID, func(items []Item) {
		frames = append(frames, items)
	})
	defer cancel()

	require.Len(t, frames, 1)
	require.Empty(t, frames[0])

	_, err := repo.Add(ctx, listID, "u1", "Milk", 1)
	require.NoError(t, err)
	_, err = repo.Add(ctx, listID, "u1", "Eggs", 1)
	require.NoError(t, err)

	last := frames[len(frames)-1]
	require.Len(t, last, 2, "every frame carries the complete item set")
}

func TestProjectorLastFrameReflectsLatestState(t *testing.T) {
	repo, _, s, listID := newLedger(t)
	projector := NewProjector(s)
	ctx := context.Background()

	var last []Item
	cancel := projector.Listen(ctx, listID, func(items []Item) {
		last = items
	})
	defer cancel()

	id, err := repo.Add(ctx, listID, "u1", "Milk", 1)
	require.NoError(t, err)
	require.NoError(t, repo.Toggle(ctx, listID, id, true))
	require.NoError(t, repo.Remove(ctx, listID, id))

	require.Empty(t, last, "final frame must reflect the removal")
}

func TestProjectorCancelIsIdempotent(t *testing.T) {
	repo, _, s, listID := newLedger(t)
	projector := NewProjector(s)
	ctx := context.Background()

	var frames int
	cancel := projector.Listen(ctx, listID, func([]Item) {
		frames++
	})
	require.Equal(t, 1, frames)

	cancel()
	cancel()

	_, err := repo.Add(ctx, listID, "u1", "Milk", 1)
	require.NoError(t, err)
	require.Equal(t, 1, frames, "cancelled projector must stay silent")
}
