package service

import (
	"context"
	"testing"

	"rocketbet/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestBettingService_PlaceBet(t *testing.T) {
	ctx := context.Background()

	t.Run("successful placement debits the stake", func(t *testing.T) {
		mockUoW, mockFactory := newTestUnitOfWork()
		setupTransactionMocks(mockUoW)
		svc := NewBettingService(mockFactory)

		user := createTestUser(10, 1000)
		round := createTestRound(models.RoundRocketDistance)

		mockUoW.roundRepo.On("GetByNumber", mock.Anything, 1).Return(round, nil)
		mockUoW.userRepo.On("GetByID", mock.Anything, int64(10)).Return(user, nil)
		mockUoW.betRepo.On("GetPendingByUser", mock.Anything, int64(10), 1, 1).Return(nil, nil)
		mockUoW.userRepo.On("DeductCredits", mock.Anything, int64(10), int64(100)).Return(nil)
		mockUoW.betRepo.On("Create", mock.Anything, mock.MatchedBy(func(b *models.Bet) bool {
			return b.UserID == 10 && b.Round == 1 && b.Amount == 100 && b.Choice == "3"
		})).Return(nil)
		mockUoW.eventBus.On("Publish", mock.Anything).Return()

		bet, err := svc.PlaceBet(ctx, 10, 1, 100, models.RocketChoice(3), 1)

		require.NoError(t, err)
		assert.Equal(t, "3", bet.Choice)
		mockUoW.userRepo.AssertCalled(t, "DeductCredits", mock.Anything, int64(10), int64(100))
		mockUoW.AssertCalled(t, "Commit")
	})

	t.Run("insufficient credits rejects and rolls back", func(t *testing.T) {
		mockUoW, mockFactory := newTestUnitOfWork()
		setupTransactionMocks(mockUoW)
		svc := NewBettingService(mockFactory)

		user := createTestUser(10, 50)
		round := createTestRound(models.RoundRocketDistance)

		mockUoW.roundRepo.On("GetByNumber", mock.Anything, 1).Return(round, nil)
		mockUoW.userRepo.On("GetByID", mock.Anything, int64(10)).Return(user, nil)
		mockUoW.betRepo.On("GetPendingByUser", mock.Anything, int64(10), 1, 1).Return(nil, nil)
		mockUoW.userRepo.On("DeductCredits", mock.Anything, int64(10), int64(100)).Return(models.ErrInsufficientCredits)

		_, err := svc.PlaceBet(ctx, 10, 1, 100, models.RocketChoice(3), 1)

		assert.ErrorIs(t, err, models.ErrInsufficientCredits)
		mockUoW.betRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		mockUoW.AssertNotCalled(t, "Commit")
	})

	t.Run("stake outside round bounds is rejected", func(t *testing.T) {
		mockUoW, mockFactory := newTestUnitOfWork()
		setupTransactionMocks(mockUoW)
		svc := NewBettingService(mockFactory)

		round := createTestRound(models.RoundRocketDistance)
		mockUoW.roundRepo.On("GetByNumber", mock.Anything, 1).Return(round, nil)

		_, err := svc.PlaceBet(ctx, 10, 1, 501, models.RocketChoice(3), 1)

		assert.True(t, models.IsValidation(err))
		mockUoW.userRepo.AssertNotCalled(t, "DeductCredits", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("second pending bet for the same sub-round is rejected", func(t *testing.T) {
		mockUoW, mockFactory := newTestUnitOfWork()
		setupTransactionMocks(mockUoW)
		svc := NewBettingService(mockFactory)

		user := createTestUser(10, 1000)
		round := createTestRound(models.RoundRocketDistance)
		existing := createTestBet(99, 10, 1, 50, "2")

		mockUoW.roundRepo.On("GetByNumber", mock.Anything, 1).Return(round, nil)
		mockUoW.userRepo.On("GetByID", mock.Anything, int64(10)).Return(user, nil)
		mockUoW.betRepo.On("GetPendingByUser", mock.Anything, int64(10), 1, 1).Return(existing, nil)

		_, err := svc.PlaceBet(ctx, 10, 1, 100, models.RocketChoice(3), 1)

		assert.ErrorIs(t, err, models.ErrDuplicatePendingBet)
		mockUoW.userRepo.AssertNotCalled(t, "DeductCredits", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("completed round no longer accepts bets", func(t *testing.T) {
		mockUoW, mockFactory := newTestUnitOfWork()
		setupTransactionMocks(mockUoW)
		svc := NewBettingService(mockFactory)

		round := createTestRound(models.RoundRocketDistance)
		round.IsCompleted = true
		mockUoW.roundRepo.On("GetByNumber", mock.Anything, 1).Return(round, nil)

		_, err := svc.PlaceBet(ctx, 10, 1, 100, models.RocketChoice(3), 1)

		assert.True(t, models.IsValidation(err))
	})

	t.Run("choice variant must match the round", func(t *testing.T) {
		_, mockFactory := newTestUnitOfWork()
		svc := NewBettingService(mockFactory)

		_, err := svc.PlaceBet(ctx, 10, 1, 100, models.FighterChoice("Rex"), 1)

		assert.True(t, models.IsValidation(err))
	})

	t.Run("sub-round outside the round is rejected", func(t *testing.T) {
		mockUoW, mockFactory := newTestUnitOfWork()
		setupTransactionMocks(mockUoW)
		svc := NewBettingService(mockFactory)

		round := createTestRound(models.RoundDogFights)
		mockUoW.roundRepo.On("GetByNumber", mock.Anything, 3).Return(round, nil)

		_, err := svc.PlaceBet(ctx, 10, 3, 100, models.FighterChoice("Rex"), 21)

		assert.True(t, models.IsValidation(err))
	})

	t.Run("unknown round is rejected", func(t *testing.T) {
		mockUoW, mockFactory := newTestUnitOfWork()
		setupTransactionMocks(mockUoW)
		svc := NewBettingService(mockFactory)

		mockUoW.roundRepo.On("GetByNumber", mock.Anything, 2).Return(nil, nil)

		_, err := svc.PlaceBet(ctx, 10, 2, 100, models.RangeChoice(500), 1)

		assert.ErrorIs(t, err, models.ErrRoundNotFound)
	})
}
