package service

import (
	"context"
	"fmt"

	"rocketbet/models"

	log "github.com/sirupsen/logrus"
)

type roundService struct {
	uowFactory UnitOfWorkFactory
}

// NewRoundService creates a new round service
func NewRoundService(uowFactory UnitOfWorkFactory) RoundService {
	return &roundService{
		uowFactory: uowFactory,
	}
}

// Initialize seeds the three round definitions. Upserting by round
// number makes restarts a no-op for completion state and results.
func (s *roundService) Initialize(ctx context.Context) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	for _, round := range models.SeedRounds() {
		if err := uow.RoundRepository().Upsert(ctx, round); err != nil {
			return err
		}
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Info("Round definitions seeded")
	return nil
}

// GetRound retrieves a round definition by number
func (s *roundService) GetRound(ctx context.Context, number int) (*models.Round, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	round, err := uow.RoundRepository().GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if round == nil {
		return nil, models.ErrRoundNotFound
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return round, nil
}

// GetRounds returns all round definitions ordered by number
func (s *roundService) GetRounds(ctx context.Context) ([]*models.Round, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	rounds, err := uow.RoundRepository().GetAll(ctx)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return rounds, nil
}

// GetResults returns the published answers for a round
func (s *roundService) GetResults(ctx context.Context, round int) ([]*models.RoundResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	results, err := uow.RoundRepository().GetResults(ctx, round)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return results, nil
}

// PublishResult records an answer without settling bets. The first
// answer for a sub-round is final; publishing a second one fails.
func (s *roundService) PublishResult(ctx context.Context, round int, answer string, subRound int) error {
	parsed, err := models.ParseChoice(round, answer)
	if err != nil {
		return err
	}
	answer = parsed.Encode()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	roundDef, err := uow.RoundRepository().GetByNumber(ctx, round)
	if err != nil {
		return err
	}
	if roundDef == nil {
		return models.ErrRoundNotFound
	}
	if !roundDef.ValidSubRound(subRound) {
		return &models.ValidationError{Field: "subRound", Reason: fmt.Sprintf("sub-round must be 1-%d", roundDef.SubRounds)}
	}

	inserted, err := uow.RoundRepository().AppendResult(ctx, round, subRound, answer)
	if err != nil {
		return err
	}
	if !inserted {
		return models.ErrResultAlreadyPublished
	}

	return uow.Commit()
}
