package service

import (
	"rocketbet/models"

	"github.com/stretchr/testify/mock"
)

// Test utilities shared across the service tests

func newTestUnitOfWork() (*MockUnitOfWork, *MockUnitOfWorkFactory) {
	mockUoW := NewMockUnitOfWork()
	mockFactory := new(MockUnitOfWorkFactory)
	mockFactory.On("Create").Return(mockUoW)
	return mockUoW, mockFactory
}

func setupTransactionMocks(mockUoW *MockUnitOfWork) {
	mockUoW.On("Begin", mock.Anything).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)
}

func createTestUser(id int64, credits int64) *models.User {
	return &models.User{
		ID:           id,
		Name:         "testplayer",
		IPAddress:    "10.0.0.1",
		Credits:      credits,
		CurrentRound: 1,
		IsActive:     true,
	}
}

func createTestRound(number int) *models.Round {
	for _, r := range models.SeedRounds() {
		if r.Number == number {
			return r
		}
	}
	return nil
}

func createTestBet(id, userID int64, round int, amount int64, choice string) *models.Bet {
	return &models.Bet{
		ID:       id,
		UserID:   userID,
		Round:    round,
		SubRound: 1,
		Amount:   amount,
		Choice:   choice,
		Status:   models.BetStatusPending,
	}
}
