package service

import (
	"context"
	"testing"

	"rocketbet/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUserService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("new name creates an account with starting credits", func(t *testing.T) {
		mockUoW, mockFactory := newTestUnitOfWork()
		setupTransactionMocks(mockUoW)
		svc := NewUserService(mockFactory, 1000)

		created := createTestUser(1, 1000)
		created.Name = "alice"

		mockUoW.userRepo.On("GetByName", mock.Anything, "alice").Return(nil, nil)
		mockUoW.userRepo.On("Create", mock.Anything, "alice", "10.0.0.1", int64(1000)).Return(created, nil)
		mockUoW.eventBus.On("Publish", mock.Anything).Return()

		user, err := svc.Login(ctx, "alice", "10.0.0.1")

		require.NoError(t, err)
		assert.Equal(t, int64(1000), user.Credits)
		mockUoW.userRepo.AssertExpectations(t)
	})

	t.Run("name is trimmed before lookup", func(t *testing.T) {
		mockUoW, mockFactory := newTestUnitOfWork()
		setupTransactionMocks(mockUoW)
		svc := NewUserService(mockFactory, 1000)

		created := createTestUser(1, 1000)
		created.Name = "bob"

		mockUoW.userRepo.On("GetByName", mock.Anything, "bob").Return(nil, nil)
		mockUoW.userRepo.On("Create", mock.Anything, "bob", "10.0.0.1", int64(1000)).Return(created, nil)
		mockUoW.eventBus.On("Publish", mock.Anything).Return()

		_, err := svc.Login(ctx, "  bob  ", "10.0.0.1")

		require.NoError(t, err)
	})

	t.Run("active name from a different address is taken", func(t *testing.T) {
		mockUoW, mockFactory := newTestUnitOfWork()
		setupTransactionMocks(mockUoW)
		svc := NewUserService(mockFactory, 1000)

		existing := createTestUser(1, 500)
		existing.Name = "alice"
		existing.IPAddress = "10.0.0.1"
		existing.IsActive = true

		mockUoW.userRepo.On("GetByName", mock.Anything, "alice").Return(existing, nil)

		_, err := svc.Login(ctx, "alice", "10.0.0.2")

		assert.ErrorIs(t, err, models.ErrNameTaken)
	})

	t.Run("same address re-login keeps the balance", func(t *testing.T) {
		mockUoW, mockFactory := newTestUnitOfWork()
		setupTransactionMocks(mockUoW)
		svc := NewUserService(mockFactory, 1000)

		existing := createTestUser(1, 350)
		existing.Name = "alice"
		existing.IPAddress = "10.0.0.1"

		mockUoW.userRepo.On("GetByName", mock.Anything, "alice").Return(existing, nil)
		mockUoW.userRepo.On("Update", mock.Anything, existing).Return(nil)

		user, err := svc.Login(ctx, "alice", "10.0.0.1")

		require.NoError(t, err)
		assert.Equal(t, int64(350), user.Credits)
		assert.True(t, user.IsActive)
	})

	t.Run("inactive account is reclaimable from any address", func(t *testing.T) {
		mockUoW, mockFactory := newTestUnitOfWork()
		setupTransactionMocks(mockUoW)
		svc := NewUserService(mockFactory, 1000)

		existing := createTestUser(1, 350)
		existing.Name = "alice"
		existing.IPAddress = "10.0.0.1"
		existing.IsActive = false

		mockUoW.userRepo.On("GetByName", mock.Anything, "alice").Return(existing, nil)
		mockUoW.userRepo.On("Update", mock.Anything, existing).Return(nil)

		user, err := svc.Login(ctx, "alice", "10.9.9.9")

		require.NoError(t, err)
		assert.Equal(t, "10.9.9.9", user.IPAddress)
		assert.True(t, user.IsActive)
	})

	t.Run("empty name is rejected", func(t *testing.T) {
		_, mockFactory := newTestUnitOfWork()
		svc := NewUserService(mockFactory, 1000)

		_, err := svc.Login(ctx, "   ", "10.0.0.1")

		assert.True(t, models.IsValidation(err))
	})
}

func TestUserService_AdvanceRound(t *testing.T) {
	ctx := context.Background()

	t.Run("advances to the next round", func(t *testing.T) {
		mockUoW, mockFactory := newTestUnitOfWork()
		setupTransactionMocks(mockUoW)
		svc := NewUserService(mockFactory, 1000)

		user := createTestUser(1, 500)
		user.CurrentRound = 1

		mockUoW.userRepo.On("GetByID", mock.Anything, int64(1)).Return(user, nil)
		mockUoW.userRepo.On("Update", mock.Anything, user).Return(nil)

		round, err := svc.AdvanceRound(ctx, 1)

		require.NoError(t, err)
		assert.Equal(t, 2, round)
	})

	t.Run("caps at the last round", func(t *testing.T) {
		mockUoW, mockFactory := newTestUnitOfWork()
		setupTransactionMocks(mockUoW)
		svc := NewUserService(mockFactory, 1000)

		user := createTestUser(1, 500)
		user.CurrentRound = 3

		mockUoW.userRepo.On("GetByID", mock.Anything, int64(1)).Return(user, nil)

		round, err := svc.AdvanceRound(ctx, 1)

		require.NoError(t, err)
		assert.Equal(t, 3, round)
		mockUoW.userRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestUserService_SetCredits(t *testing.T) {
	ctx := context.Background()

	t.Run("overwrites the balance and publishes the change", func(t *testing.T) {
		mockUoW, mockFactory := newTestUnitOfWork()
		setupTransactionMocks(mockUoW)
		svc := NewUserService(mockFactory, 1000)

		user := createTestUser(1, 200)
		mockUoW.userRepo.On("GetByID", mock.Anything, int64(1)).Return(user, nil)
		mockUoW.userRepo.On("SetCredits", mock.Anything, int64(1), int64(750)).Return(nil)
		mockUoW.eventBus.On("Publish", mock.Anything).Return()

		updated, err := svc.SetCredits(ctx, 1, 750)

		require.NoError(t, err)
		assert.Equal(t, int64(750), updated.Credits)
	})

	t.Run("negative credits are rejected", func(t *testing.T) {
		_, mockFactory := newTestUnitOfWork()
		svc := NewUserService(mockFactory, 1000)

		_, err := svc.SetCredits(ctx, 1, -10)

		assert.True(t, models.IsValidation(err))
	})

	t.Run("unknown user is rejected", func(t *testing.T) {
		mockUoW, mockFactory := newTestUnitOfWork()
		setupTransactionMocks(mockUoW)
		svc := NewUserService(mockFactory, 1000)

		mockUoW.userRepo.On("GetByID", mock.Anything, int64(42)).Return(nil, nil)

		_, err := svc.SetCredits(ctx, 42, 100)

		assert.ErrorIs(t, err, models.ErrUserNotFound)
	})
}
