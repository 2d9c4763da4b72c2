package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe/internal/entity"
	"github.com/rocketscienceinc/tictactoe/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe/testing/suite"
)

const sessionTTL = time.Hour

func playedGame() *entity.GameState {
	state := tictactoe.Initialize()
	state, _ = tictactoe.ApplyMove(state, entity.Coord{Row: 1, Col: 1})
	state, _ = tictactoe.ApplyMove(state, entity.Coord{Row: 0, Col: 2})

	return &state
}

func TestGameRepository_CreateOrUpdate(t *testing.T) {
	ctx, st := suite.New(t)

	gameRepo := NewGameRepository(st.Storage, sessionTTL)

	// Given: a game with two moves
	state := playedGame()

	// When: CreateOrUpdate is called
	err := gameRepo.CreateOrUpdate(ctx, "session-1", state)

	// Then: no error should be returned, and the key expires with the session
	require.NoError(t, err)

	ttl, err := st.Storage.TTL(ctx, "game:session-1").Result()
	require.NoError(t, err)
	assert.Positive(t, ttl)
	assert.LessOrEqual(t, ttl, sessionTTL)
}

func TestGameRepository_GetBySessionID(t *testing.T) {
	t.Run("GetBySessionID_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		gameRepo := NewGameRepository(st.Storage, sessionTTL)

		// Given: a stored game
		state := playedGame()
		require.NoError(t, gameRepo.CreateOrUpdate(ctx, "session-1", state))

		// When: GetBySessionID is called with the same session
		retrieved, err := gameRepo.GetBySessionID(ctx, "session-1")

		// Then: the retrieved game should match the saved game
		require.NoError(t, err)
		require.Equal(t, state, retrieved)
	})

	t.Run("GetBySessionID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		gameRepo := NewGameRepository(st.Storage, sessionTTL)

		// When: GetBySessionID is called with an unknown session
		retrieved, err := gameRepo.GetBySessionID(ctx, "9999999")

		// Then: an ErrGameNotFound error should be returned
		require.ErrorIs(t, err, ErrGameNotFound)
		assert.Nil(t, retrieved)
	})
}

func TestGameRepository_DeleteBySessionID(t *testing.T) {
	t.Run("DeleteBySessionID_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		gameRepo := NewGameRepository(st.Storage, sessionTTL)

		// Given: a stored game
		require.NoError(t, gameRepo.CreateOrUpdate(ctx, "session-1", playedGame()))

		// When: DeleteBySessionID is called
		err := gameRepo.DeleteBySessionID(ctx, "session-1")

		// Then: no error should be returned and the game is gone
		require.NoError(t, err)

		_, err = gameRepo.GetBySessionID(ctx, "session-1")
		require.ErrorIs(t, err, ErrGameNotFound)
	})

	t.Run("DeleteBySessionID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		gameRepo := NewGameRepository(st.Storage, sessionTTL)

		// When: DeleteBySessionID is called with an unknown session
		err := gameRepo.DeleteBySessionID(ctx, "9999999")

		// Then: an ErrGameNotFound error should be returned
		require.ErrorIs(t, err, ErrGameNotFound)
	})
}
