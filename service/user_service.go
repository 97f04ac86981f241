package service

import (
	"context"
	"fmt"
	"strings"

	"rocketbet/events"
	"rocketbet/models"

	log "github.com/sirupsen/logrus"
)

const maxNameLength = 30

type userService struct {
	uowFactory      UnitOfWorkFactory
	startingCredits int64
}

// NewUserService creates a new user service
func NewUserService(uowFactory UnitOfWorkFactory, startingCredits int64) UserService {
	return &userService{
		uowFactory:      uowFactory,
		startingCredits: startingCredits,
	}
}

// Login finds or creates the account for a name. A name held by an
// active player at a different address is taken; otherwise the account
// is reactivated and its address refreshed.
func (s *userService) Login(ctx context.Context, name, ipAddress string) (*models.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &models.ValidationError{Field: "name", Reason: "name must not be empty"}
	}
	if len(name) > maxNameLength {
		return nil, &models.ValidationError{Field: "name", Reason: fmt.Sprintf("name must be at most %d characters", maxNameLength)}
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if user == nil {
		user, err = uow.UserRepository().Create(ctx, name, ipAddress, s.startingCredits)
		if err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}

		uow.EventBus().Publish(events.UserJoinedEvent{
			UserID:  user.ID,
			Name:    user.Name,
			Credits: user.Credits,
		})

		log.WithFields(log.Fields{
			"userID": user.ID,
			"name":   user.Name,
		}).Info("New player joined")
	} else {
		if user.IsActive && user.IPAddress != ipAddress {
			return nil, models.ErrNameTaken
		}

		user.IPAddress = ipAddress
		user.IsActive = true
		if err := uow.UserRepository().Update(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to reactivate user: %w", err)
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return user, nil
}

// Logout deactivates the account; credits and bet history are kept
func (s *userService) Logout(ctx context.Context, userID int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return models.ErrUserNotFound
	}

	user.IsActive = false
	if err := uow.UserRepository().Update(ctx, user); err != nil {
		return fmt.Errorf("failed to deactivate user: %w", err)
	}

	return uow.Commit()
}

// GetUser retrieves an account by id
func (s *userService) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, models.ErrUserNotFound
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return user, nil
}

// AdvanceRound moves the player to the next round, capped at the last one
func (s *userService) AdvanceRound(ctx context.Context, userID int64) (int, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return 0, models.ErrUserNotFound
	}

	if user.CurrentRound < models.RoundDogFights {
		user.CurrentRound++
		if err := uow.UserRepository().Update(ctx, user); err != nil {
			return 0, fmt.Errorf("failed to advance round: %w", err)
		}
	}

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return user.CurrentRound, nil
}

// ListUsers returns every account for the admin console
func (s *userService) ListUsers(ctx context.Context) ([]*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	users, err := uow.UserRepository().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return users, nil
}

// SetCredits overwrites an account balance (admin correction)
func (s *userService) SetCredits(ctx context.Context, userID int64, credits int64) (*models.User, error) {
	if credits < 0 {
		return nil, &models.ValidationError{Field: "credits", Reason: "credits must not be negative"}
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, models.ErrUserNotFound
	}

	oldCredits := user.Credits
	if err := uow.UserRepository().SetCredits(ctx, userID, credits); err != nil {
		return nil, fmt.Errorf("failed to set credits: %w", err)
	}
	user.Credits = credits

	uow.EventBus().Publish(events.CreditsChangedEvent{
		UserID:     userID,
		OldCredits: oldCredits,
		NewCredits: credits,
		Reason:     "admin adjustment",
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"userID":     userID,
		"oldCredits": oldCredits,
		"newCredits": credits,
	}).Info("Credits adjusted")

	return user, nil
}
