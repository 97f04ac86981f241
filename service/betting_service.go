package service

import (
	"context"
	"fmt"

	"rocketbet/events"
	"rocketbet/models"

	log "github.com/sirupsen/logrus"
)

type bettingService struct {
	uowFactory UnitOfWorkFactory
}

// NewBettingService creates a new betting service
func NewBettingService(uowFactory UnitOfWorkFactory) BettingService {
	return &bettingService{
		uowFactory: uowFactory,
	}
}

// choiceKindForRound maps a round number to the choice variant it accepts
func choiceKindForRound(round int) models.ChoiceKind {
	switch round {
	case models.RoundRocketDistance:
		return models.ChoiceKindRocket
	case models.RoundRangeGuess:
		return models.ChoiceKindRange
	case models.RoundDogFights:
		return models.ChoiceKindFighter
	default:
		return models.ChoiceKindUnknown
	}
}

// PlaceBet validates and places a wager. The stake is debited in the
// same transaction that creates the pending bet, so a failed placement
// never leaves the balance short and a successful one can never exceed
// it.
func (s *bettingService) PlaceBet(ctx context.Context, userID int64, round int, amount int64, choice models.Choice, subRound int) (*models.Bet, error) {
	if choice.Kind != choiceKindForRound(round) {
		return nil, &models.ValidationError{Field: "choice", Reason: fmt.Sprintf("choice does not match round %d", round)}
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	roundDef, err := uow.RoundRepository().GetByNumber(ctx, round)
	if err != nil {
		return nil, fmt.Errorf("failed to get round: %w", err)
	}
	if roundDef == nil {
		return nil, models.ErrRoundNotFound
	}
	if roundDef.IsCompleted {
		return nil, &models.ValidationError{Field: "round", Reason: "round is already completed"}
	}
	if !roundDef.ValidSubRound(subRound) {
		return nil, &models.ValidationError{Field: "subRound", Reason: fmt.Sprintf("sub-round must be 1-%d", roundDef.SubRounds)}
	}
	if !roundDef.ValidBetAmount(amount) {
		return nil, &models.ValidationError{Field: "amount", Reason: fmt.Sprintf("bet must be %d-%d credits", roundDef.MinBet, roundDef.MaxBet)}
	}

	user, err := uow.UserRepository().GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, models.ErrUserNotFound
	}

	existing, err := uow.BetRepository().GetPendingByUser(ctx, userID, round, subRound)
	if err != nil {
		return nil, fmt.Errorf("failed to check pending bets: %w", err)
	}
	if existing != nil {
		return nil, models.ErrDuplicatePendingBet
	}

	// Debit before creating the bet record; both are undone together on
	// rollback.
	if err := uow.UserRepository().DeductCredits(ctx, userID, amount); err != nil {
		return nil, err
	}

	bet := &models.Bet{
		UserID:   userID,
		Round:    round,
		SubRound: subRound,
		Amount:   amount,
		Choice:   choice.Encode(),
	}
	if err := uow.BetRepository().Create(ctx, bet); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.WagerPlacedEvent{
		UserID:   userID,
		UserName: user.Name,
		Round:    round,
		SubRound: subRound,
		Amount:   amount,
		Choice:   bet.Choice,
	})
	uow.EventBus().Publish(events.CreditsChangedEvent{
		UserID:     userID,
		OldCredits: user.Credits,
		NewCredits: user.Credits - amount,
		Reason:     "bet placed",
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"userID":   userID,
		"round":    round,
		"subRound": subRound,
		"amount":   amount,
		"choice":   bet.Choice,
	}).Info("Bet placed")

	return bet, nil
}

// GetUserBets returns a user's bets, newest first
func (s *bettingService) GetUserBets(ctx context.Context, userID int64, limit int) ([]*models.Bet, error) {
	if limit <= 0 {
		limit = 50
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	bets, err := uow.BetRepository().GetByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get bets: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return bets, nil
}
