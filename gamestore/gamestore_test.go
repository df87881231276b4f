package gamestore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const savedGame = `{"version":"0.01","player":{"pieceType":0,"strategy":"Strategy004","resigned":false,"human":true},"opponent":{"pieceType":1,"strategy":"Strategy005","resigned":false},"moves":[{"kind":"Simple","startRow":5,"startCol":0,"targetRow":4,"targetCol":1}]}`

const snapshot = `{"version":"0.01","player":{"pieceType":1,"strategy":"Strategy001","resigned":false},"snapshot":true,"nextPlayerPieceType":0}`

func openStore(t *testing.T) *Store {
	s, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndGet(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	id, err := s.Save(ctx, "first", []byte(savedGame))
	require.NoError(t, err)
	assert.Equal(t, Key([]byte(savedGame)), id)

	data, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, savedGame, string(data))

	// same contents, same row
	again, err := s.Save(ctx, "renamed", []byte(savedGame))
	require.NoError(t, err)
	assert.Equal(t, id, again)

	_, err = s.Save(ctx, "snap", []byte(snapshot))
	require.NoError(t, err)

	games, err := s.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, games, 2)
	byID := map[string]Summary{}
	for _, g := range games {
		byID[g.ID] = g
	}
	first := byID[id]
	assert.Equal(t, "renamed", first.Label)
	assert.Equal(t, "Strategy005", first.OpponentStrategy)
	assert.Equal(t, 1, first.NumMoves)
	assert.False(t, first.Snapshot)
	snap := byID[Key([]byte(snapshot))]
	assert.True(t, snap.Snapshot)
	// an opponent is filled in for files without one
	assert.Equal(t, "Strategy001", snap.OpponentStrategy)
	assert.Equal(t, 1, snap.PlayerColor)
}

func TestRejectsMalformed(t *testing.T) {
	s := openStore(t)
	_, err := s.Save(context.Background(), "bad", []byte(`{"player":{"pieceType":9}}`))
	assert.Error(t, err)
}

func TestGetMissingAndDelete(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	_, err := s.Get(ctx, "nope")
	assert.True(t, errors.Is(err, ErrNotFound))

	id, err := s.Save(ctx, "", []byte(savedGame))
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, id))
	_, err = s.Get(ctx, id)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.NoError(t, s.Delete(ctx, id))
}
