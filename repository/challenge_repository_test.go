package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avolve-dao/avolve-sub003/repository/testutil"
)

func TestChallengeRepository_GetByWeekday(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewChallengeRepository(testDB.DB)
	ctx := context.Background()

	t.Run("seeded monday challenge", func(t *testing.T) {
		challenge, err := repo.GetByWeekday(ctx, time.Monday)
		require.NoError(t, err)
		require.NotNil(t, challenge)

		assert.Equal(t, time.Monday, challenge.Weekday)
		assert.Equal(t, "SHE", challenge.TokenType)
		assert.Equal(t, int64(10), challenge.BaseReward)
		assert.True(t, challenge.Active)
	})

	t.Run("inactive challenge not returned", func(t *testing.T) {
		_, err := testDB.DB.Exec(ctx, `UPDATE challenges SET active = FALSE WHERE weekday = 3`)
		require.NoError(t, err)

		challenge, err := repo.GetByWeekday(ctx, time.Wednesday)
		require.NoError(t, err)
		assert.Nil(t, challenge)
	})
}

func TestChallengeRepository_GetAll(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewChallengeRepository(testDB.DB)
	ctx := context.Background()

	challenges, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, challenges, 7, "the seed covers every weekday")

	// Ordered by weekday, Sunday first
	assert.Equal(t, time.Sunday, challenges[0].Weekday)
	assert.Equal(t, "SPD", challenges[0].TokenType)
	assert.Equal(t, time.Saturday, challenges[6].Weekday)
	assert.Equal(t, "SMS", challenges[6].TokenType)
}

func TestChallengeRepository_GetAllTokenTypes(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewChallengeRepository(testDB.DB)
	ctx := context.Background()

	tokenTypes, err := repo.GetAllTokenTypes(ctx)
	require.NoError(t, err)
	require.Len(t, tokenTypes, 8)

	// Ordered by symbol
	assert.Equal(t, "BSP", tokenTypes[0].Symbol)
	assert.Equal(t, "GEN", tokenTypes[1].Symbol)
	assert.Equal(t, "Supercivilization", tokenTypes[1].Name)
}
