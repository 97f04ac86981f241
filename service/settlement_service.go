package service

import (
	"context"
	"fmt"

	"rocketbet/events"
	"rocketbet/models"

	log "github.com/sirupsen/logrus"
)

type settlementService struct {
	uowFactory UnitOfWorkFactory
}

// NewSettlementService creates a new settlement service
func NewSettlementService(uowFactory UnitOfWorkFactory) SettlementService {
	return &settlementService{
		uowFactory: uowFactory,
	}
}

// SettleRound settles every pending bet of a (round, subRound) against
// the published answer in one transaction:
//
//  1. take the per-sub-round advisory lock, so only one settlement pass
//     runs at a time
//  2. record the answer; if one was already recorded, the stored answer
//     wins and the new one is ignored
//  3. lock and classify the pending bets, pool the losing stakes and
//     split them across winners pro-rata by stake
//  4. mark each bet settled exactly once and credit the payouts
//  5. mark the round completed once every sub-round has an answer
//
// Re-running with the same arguments is harmless: the stored answer is
// reused and no bet is pending anymore, so nothing moves.
func (s *settlementService) SettleRound(ctx context.Context, round int, answer string, subRound int) (*models.SettlementResult, error) {
	// Answers go through the same domain validation as choices, so a
	// typo'd answer is rejected instead of silently losing every bet.
	parsed, err := models.ParseChoice(round, answer)
	if err != nil {
		return nil, err
	}
	answer = parsed.Encode()

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
	if !roundDef.ValidSubRound(subRound) {
		return nil, &models.ValidationError{Field: "subRound", Reason: fmt.Sprintf("sub-round must be 1-%d", roundDef.SubRounds)}
	}

	locked, err := uow.RoundRepository().LockForSettlement(ctx, round, subRound)
	if err != nil {
		return nil, err
	}
	if !locked {
		return nil, models.ErrSettlementConflict
	}

	inserted, err := uow.RoundRepository().AppendResult(ctx, round, subRound, answer)
	if err != nil {
		return nil, err
	}
	if !inserted {
		// A result already exists; published answers are immutable, so
		// settle against the stored one.
		results, err := uow.RoundRepository().GetResults(ctx, round)
		if err != nil {
			return nil, err
		}
		for _, r := range results {
			if r.SubRound == subRound {
				answer = r.Answer
				break
			}
		}
	}

	bets, err := uow.BetRepository().FindPending(ctx, round, subRound)
	if err != nil {
		return nil, err
	}

	var winners, losers []*models.Bet
	for _, bet := range bets {
		if models.IsWinningChoice(round, bet.Choice, answer) {
			winners = append(winners, bet)
		} else {
			losers = append(losers, bet)
		}
	}

	payouts, totalLosing := models.DistributeWinnings(winners, losers)

	var totalPayout int64
	for _, bet := range winners {
		settled, err := uow.BetRepository().MarkSettled(ctx, bet.ID, models.BetStatusWon, payouts[bet.ID])
		if err != nil {
			return nil, err
		}
		if !settled {
			continue
		}
		if payouts[bet.ID] > 0 {
			if err := uow.UserRepository().CreditWinnings(ctx, bet.UserID, payouts[bet.ID]); err != nil {
				return nil, err
			}
			totalPayout += payouts[bet.ID]
		}
	}

	for _, bet := range losers {
		if _, err := uow.BetRepository().MarkSettled(ctx, bet.ID, models.BetStatusLost, 0); err != nil {
			return nil, err
		}
	}

	resultCount, err := uow.RoundRepository().CountResults(ctx, round)
	if err != nil {
		return nil, err
	}
	if resultCount >= roundDef.SubRounds && !roundDef.IsCompleted {
		if err := uow.RoundRepository().MarkCompleted(ctx, round); err != nil {
			return nil, err
		}
	}

	result := &models.SettlementResult{
		Round:       round,
		SubRound:    subRound,
		Answer:      answer,
		Winners:     len(winners),
		Losers:      len(losers),
		TotalPayout: totalLosing,
	}

	uow.EventBus().Publish(events.RoundSettledEvent{
		Round:       round,
		SubRound:    subRound,
		Answer:      answer,
		Winners:     result.Winners,
		Losers:      result.Losers,
		TotalPayout: result.TotalPayout,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"round":       round,
		"subRound":    subRound,
		"answer":      answer,
		"winners":     result.Winners,
		"losers":      result.Losers,
		"totalPayout": totalPayout,
	}).Info("Round settled")

	return result, nil
}
