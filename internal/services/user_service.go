package services

import (
	"fmt"
	"time"

	"userrecords/internal/models"
	"userrecords/internal/repositories"
	"userrecords/internal/validation"

	"github.com/sirupsen/logrus"
)

// EventPublisher sends user lifecycle events to a broker.
type EventPublisher interface {
	PublishUserEvent(event models.UserEvent) error
}

// UserService handles business logic related to user records.
type UserService struct {
	repo      repositories.UserRepository
	hasher    PasswordHasher
	validator *validation.Validator
	publisher EventPublisher // optional
	logger    logrus.FieldLogger
}

// NewUserService creates a new UserService. publisher may be nil.
func NewUserService(
	repo repositories.UserRepository,
	hasher PasswordHasher,
	validator *validation.Validator,
	publisher EventPublisher,
	logger logrus.FieldLogger,
) *UserService {
	return &UserService{
		repo:      repo,
		hasher:    hasher,
		validator: validator,
		publisher: publisher,
		logger:    logger,
	}
}

// GetAllUsers retrieves all users.
func (s *UserService) GetAllUsers() ([]models.User, error) {
	return s.repo.GetAll()
}

// GetUserByID retrieves a single user. A missing user yields (nil, nil).
func (s *UserService) GetUserByID(id string) (*models.User, error) {
	return s.repo.GetByID(id)
}

// CreateUser validates the input, hashes the password and stores a new user.
// Schema violations are returned as *validation.Error and nothing is stored.
func (s *UserService) CreateUser(input models.UserInput) (*models.User, error) {
	if err := s.validator.Struct(input); err != nil {
		return nil, err
	}

	hashedPassword, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:     input.Name,
		Email:    input.Email,
		Password: hashedPassword,
	}
	if err := s.repo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.publish(models.UserCreated, user)
	return user, nil
}

// UpdateUser overwrites name, email and password of the user with the given ID.
// The input is not validated and the password is always rehashed.
func (s *UserService) UpdateUser(id string, input models.UserInput) error {
	hashedPassword, err := s.hasher.Hash(input.Password)
	if err != nil {
		return err
	}

	user := &models.User{
		ID:       id,
		Name:     input.Name,
		Email:    input.Email,
		Password: hashedPassword,
	}
	updated, err := s.repo.Update(user)
	if err != nil {
		return err
	}

	if updated {
		s.publish(models.UserUpdated, user)
	}
	return nil
}

// DeleteUser deletes the user with the given ID.
func (s *UserService) DeleteUser(id string) error {
	deleted, err := s.repo.Delete(id)
	if err != nil {
		return err
	}

	if deleted {
		s.publish(models.UserDeleted, &models.User{ID: id})
	}
	return nil
}

// publish is best-effort: a broker failure never fails the write. Only writes
// that affected a user are published.
func (s *UserService) publish(eventType string, user *models.User) {
	if s.publisher == nil {
		return
	}
	event := models.UserEvent{
		Type:       eventType,
		UserID:     user.ID,
		Name:       user.Name,
		Email:      user.Email,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.publisher.PublishUserEvent(event); err != nil {
		s.logger.WithFields(logrus.Fields{
			"event":   eventType,
			"user_id": user.ID,
			"error":   err.Error(),
		}).Warn("failed to publish user event")
	}
}
