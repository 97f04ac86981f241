package service

import (
	"context"
	"fmt"

	"rocketbet/models"
)

const (
	defaultLeaderboardSize = 50
	recentBetsSize         = 20
)

type statsService struct {
	uowFactory UnitOfWorkFactory
}

// NewStatsService creates a new stats service
func NewStatsService(uowFactory UnitOfWorkFactory) StatsService {
	return &statsService{
		uowFactory: uowFactory,
	}
}

// Leaderboard returns active users ranked by credits
func (s *statsService) Leaderboard(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = defaultLeaderboardSize
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	users, err := uow.UserRepository().Leaderboard(ctx, limit)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	entries := make([]*models.LeaderboardEntry, 0, len(users))
	for i, user := range users {
		entries = append(entries, &models.LeaderboardEntry{
			Rank:          i + 1,
			UserID:        user.ID,
			Name:          user.Name,
			Credits:       user.Credits,
			TotalWinnings: user.TotalWinnings,
			CurrentRound:  user.CurrentRound,
		})
	}

	return entries, nil
}

// RoundTotals aggregates pending stake per choice for a (round, subRound)
func (s *statsService) RoundTotals(ctx context.Context, round, subRound int) ([]*models.ChoiceTotal, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	totals, err := uow.BetRepository().TotalsByChoice(ctx, round, subRound)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return totals, nil
}

// Overview returns the admin dashboard counters
func (s *statsService) Overview(ctx context.Context) (*Overview, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	activeUsers, err := uow.UserRepository().CountActive(ctx)
	if err != nil {
		return nil, err
	}

	totalBets, err := uow.BetRepository().Count(ctx)
	if err != nil {
		return nil, err
	}

	usersByRound, err := uow.UserRepository().CountByRound(ctx)
	if err != nil {
		return nil, err
	}

	users, err := uow.UserRepository().Leaderboard(ctx, 5)
	if err != nil {
		return nil, err
	}

	recentBets, err := uow.BetRepository().Recent(ctx, recentBetsSize)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	topPlayers := make([]*models.LeaderboardEntry, 0, len(users))
	for i, user := range users {
		topPlayers = append(topPlayers, &models.LeaderboardEntry{
			Rank:          i + 1,
			UserID:        user.ID,
			Name:          user.Name,
			Credits:       user.Credits,
			TotalWinnings: user.TotalWinnings,
			CurrentRound:  user.CurrentRound,
		})
	}

	return &Overview{
		ActiveUsers:  activeUsers,
		TotalBets:    totalBets,
		UsersByRound: usersByRound,
		TopPlayers:   topPlayers,
		RecentBets:   recentBets,
	}, nil
}
