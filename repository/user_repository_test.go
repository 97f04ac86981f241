package repository

import (
	"context"
	"testing"

	"rocketbet/models"
	"rocketbet/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_CreateAndGet(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	t.Run("create sets defaults", func(t *testing.T) {
		user, err := repo.Create(ctx, "alice", "10.0.0.1", 1000)
		require.NoError(t, err)

		assert.NotZero(t, user.ID)
		assert.Equal(t, int64(1000), user.Credits)
		assert.Equal(t, 1, user.CurrentRound)
		assert.True(t, user.IsActive)
	})

	t.Run("lookup by id and name", func(t *testing.T) {
		byName, err := repo.GetByName(ctx, "alice")
		require.NoError(t, err)
		require.NotNil(t, byName)

		byID, err := repo.GetByID(ctx, byName.ID)
		require.NoError(t, err)
		require.NotNil(t, byID)
		assert.Equal(t, byName.ID, byID.ID)
	})

	t.Run("missing user returns nil", func(t *testing.T) {
		user, err := repo.GetByName(ctx, "nobody")
		require.NoError(t, err)
		assert.Nil(t, user)
	})

	t.Run("duplicate name is rejected", func(t *testing.T) {
		_, err := repo.Create(ctx, "alice", "10.0.0.2", 1000)
		assert.Error(t, err)
	})
}

func TestUserRepository_DeductCredits(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	user := testutil.CreateTestUser(t, testDB.DB, testutil.UniqueName("player"), 100)

	t.Run("deducts when balance covers the stake", func(t *testing.T) {
		err := repo.DeductCredits(ctx, user.ID, 60)
		require.NoError(t, err)

		updated, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(40), updated.Credits)
	})

	t.Run("rejects when the stake exceeds the balance", func(t *testing.T) {
		err := repo.DeductCredits(ctx, user.ID, 41)
		assert.ErrorIs(t, err, models.ErrInsufficientCredits)

		updated, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(40), updated.Credits, "failed debit must not move the balance")
	})

	t.Run("unknown user", func(t *testing.T) {
		err := repo.DeductCredits(ctx, 999999, 10)
		assert.ErrorIs(t, err, models.ErrUserNotFound)
	})
}

func TestUserRepository_CreditWinnings(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	user := testutil.CreateTestUser(t, testDB.DB, testutil.UniqueName("winner"), 500)

	err := repo.CreditWinnings(ctx, user.ID, 250)
	require.NoError(t, err)

	updated, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(750), updated.Credits)
	assert.Equal(t, int64(250), updated.TotalWinnings)
}

func TestUserRepository_Leaderboard(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	a := testutil.CreateTestUser(t, testDB.DB, testutil.UniqueName("rich"), 3000)
	testutil.CreateTestUser(t, testDB.DB, testutil.UniqueName("mid"), 2000)
	c := testutil.CreateTestUser(t, testDB.DB, testutil.UniqueName("poor"), 1000)

	// Deactivated players stay off the board
	c.IsActive = false
	require.NoError(t, repo.Update(ctx, c))

	board, err := repo.Leaderboard(ctx, 10)
	require.NoError(t, err)

	require.Len(t, board, 2)
	assert.Equal(t, a.ID, board[0].ID)
	assert.Equal(t, int64(3000), board[0].Credits)
}

func TestUserRepository_CountByRound(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	testutil.CreateTestUser(t, testDB.DB, testutil.UniqueName("r1a"), 1000)
	testutil.CreateTestUser(t, testDB.DB, testutil.UniqueName("r1b"), 1000)
	mover := testutil.CreateTestUser(t, testDB.DB, testutil.UniqueName("r3"), 1000)
	gone := testutil.CreateTestUser(t, testDB.DB, testutil.UniqueName("gone"), 1000)

	mover.CurrentRound = 3
	require.NoError(t, repo.Update(ctx, mover))

	// Inactive players are not on the board
	gone.IsActive = false
	require.NoError(t, repo.Update(ctx, gone))

	counts, err := repo.CountByRound(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[int]int{1: 2, 3: 1}, counts)
}

func TestUserRepository_ResetAll(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	user := testutil.CreateTestUser(t, testDB.DB, testutil.UniqueName("reset"), 1000)
	require.NoError(t, repo.CreditWinnings(ctx, user.ID, 500))

	require.NoError(t, repo.ResetAll(ctx, 1000))

	updated, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), updated.Credits)
	assert.Equal(t, int64(0), updated.TotalWinnings)
	assert.Equal(t, 1, updated.CurrentRound)
}
