package service

import (
	"context"
	"fmt"

	"rocketbet/events"

	log "github.com/sirupsen/logrus"
)

type gameService struct {
	uowFactory      UnitOfWorkFactory
	startingCredits int64
}

// NewGameService creates a new game service
func NewGameService(uowFactory UnitOfWorkFactory, startingCredits int64) GameService {
	return &gameService{
		uowFactory:      uowFactory,
		startingCredits: startingCredits,
	}
}

// Reset wipes the game back to its opening state: every account back to
// the starting balance and round 1, the wager ledger emptied, results
// and completion flags cleared. Accounts themselves are kept.
func (s *gameService) Reset(ctx context.Context) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.BetRepository().DeleteAll(ctx); err != nil {
		return err
	}
	if err := uow.RoundRepository().ResetAll(ctx); err != nil {
		return err
	}
	if err := uow.UserRepository().ResetAll(ctx, s.startingCredits); err != nil {
		return err
	}

	uow.EventBus().Publish(events.GameResetEvent{})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Warn("Game reset: all bets cleared and balances restored")
	return nil
}
