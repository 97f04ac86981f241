package repository

import (
	"context"
	"testing"

	"rocketbet/events"
	"rocketbet/models"
	"rocketbet/repository/testutil"
	"rocketbet/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitOfWork_RollbackDiscardsChanges(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	factory := NewUnitOfWorkFactory(testDB.DB, events.NewBus())
	ctx := context.Background()

	user := testutil.CreateTestUser(t, testDB.DB, testutil.UniqueName("rollback"), 1000)

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))

	require.NoError(t, uow.UserRepository().DeductCredits(ctx, user.ID, 400))
	require.NoError(t, uow.Rollback())

	after, err := NewUserRepository(testDB.DB).GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), after.Credits, "rolled back debit must not stick")
}

// Full settlement through the service stack against a real database:
// stakes leave at placement, the losing pool comes back to the winner,
// and the books balance.
func TestSettlementEndToEnd(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	testutil.SeedRounds(t, testDB.DB)

	factory := NewUnitOfWorkFactory(testDB.DB, events.NewBus())
	betting := service.NewBettingService(factory)
	settlement := service.NewSettlementService(factory)
	ctx := context.Background()

	winner := testutil.CreateTestUser(t, testDB.DB, testutil.UniqueName("winner"), 1000)
	loser1 := testutil.CreateTestUser(t, testDB.DB, testutil.UniqueName("loser1"), 1000)
	loser2 := testutil.CreateTestUser(t, testDB.DB, testutil.UniqueName("loser2"), 1000)

	_, err := betting.PlaceBet(ctx, winner.ID, 1, 100, models.RocketChoice(3), 1)
	require.NoError(t, err)
	_, err = betting.PlaceBet(ctx, loser1.ID, 1, 100, models.RocketChoice(1), 1)
	require.NoError(t, err)
	_, err = betting.PlaceBet(ctx, loser2.ID, 1, 200, models.RocketChoice(5), 1)
	require.NoError(t, err)

	result, err := settlement.SettleRound(ctx, 1, "3", 1)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Winners)
	assert.Equal(t, 2, result.Losers)
	assert.Equal(t, int64(300), result.TotalPayout)

	userRepo := NewUserRepository(testDB.DB)

	// 1000 - 100 stake + 400 payout (stake back plus the 300 pool)
	w, err := userRepo.GetByID(ctx, winner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1300), w.Credits)
	assert.Equal(t, int64(400), w.TotalWinnings)

	l1, err := userRepo.GetByID(ctx, loser1.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(900), l1.Credits)

	l2, err := userRepo.GetByID(ctx, loser2.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(800), l2.Credits)

	// Conservation: total credits in the system are unchanged
	total := w.Credits + l1.Credits + l2.Credits
	assert.Equal(t, int64(3000), total)

	// Settling again moves nothing
	again, err := settlement.SettleRound(ctx, 1, "3", 1)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Winners)
	assert.Equal(t, 0, again.Losers)

	w2, err := userRepo.GetByID(ctx, winner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1300), w2.Credits, "re-settlement must not pay twice")
}
