package services_test

import (
	"errors"
	"io"
	"testing"

	"userrecords/internal/models"
	"userrecords/internal/repositories"
	"userrecords/internal/services"
	"userrecords/internal/validation"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetAll() ([]models.User, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(user *models.User) (bool, error) {
	args := m.Called(user)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Delete(id string) (bool, error) {
	args := m.Called(id)
	return args.Bool(0), args.Error(1)
}

// MockPublisher is a mock implementation of services.EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishUserEvent(event models.UserEvent) error {
	args := m.Called(event)
	return args.Error(0)
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newService(repo *MockUserRepository, publisher services.EventPublisher) *services.UserService {
	return services.NewUserService(
		repo,
		services.NewBcryptHasher(bcrypt.MinCost),
		validation.New(),
		publisher,
		quietLogger(),
	)
}

func TestUserService_CreateUser(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := newService(mockRepo, nil)

	var stored *models.User
	mockRepo.On("Create", mock.AnythingOfType("*models.User")).
		Run(func(args mock.Arguments) {
			stored = args.Get(0).(*models.User)
			stored.ID = "user-1"
		}).
		Return(nil).Once()

	user, err := service.CreateUser(models.UserInput{Name: "Ana", Email: "ana@example.com", Password: "secret"})
	require.NoError(t, err)
	mockRepo.AssertExpectations(t)

	assert.Equal(t, "user-1", user.ID)
	assert.Equal(t, "Ana", stored.Name)
	assert.Equal(t, "ana@example.com", stored.Email)
	assert.NotEqual(t, "secret", stored.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("secret")))
}

func TestUserService_CreateUser_ValidationFailure(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := newService(mockRepo, nil)

	user, err := service.CreateUser(models.UserInput{Name: "", Email: "not-an-email", Password: "secret"})
	assert.Nil(t, user)

	var verr *validation.Error
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Messages, 2)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestUserService_CreateUser_StoreFailure(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := newService(mockRepo, nil)

	mockRepo.On("Create", mock.AnythingOfType("*models.User")).Return(errors.New("connection refused")).Once()

	_, err := service.CreateUser(models.UserInput{Name: "Ana", Email: "ana@example.com", Password: "secret"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")

	var verr *validation.Error
	assert.False(t, errors.As(err, &verr))
}

func TestUserService_UpdateUser_RehashesWithoutValidation(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := newService(mockRepo, nil)

	var updated *models.User
	mockRepo.On("Update", mock.AnythingOfType("*models.User")).
		Run(func(args mock.Arguments) {
			updated = args.Get(0).(*models.User)
		}).
		Return(true, nil).Once()

	// Update does not apply the create schema.
	err := service.UpdateUser("user-1", models.UserInput{Name: "", Email: "not-an-email", Password: "new-secret"})
	require.NoError(t, err)
	mockRepo.AssertExpectations(t)

	assert.Equal(t, "user-1", updated.ID)
	assert.Equal(t, "not-an-email", updated.Email)
	assert.NotEqual(t, "new-secret", updated.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.Password), []byte("new-secret")))
}

func TestUserService_DeleteUser(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := newService(mockRepo, nil)

	mockRepo.On("Delete", "user-1").Return(true, nil).Once()

	assert.NoError(t, service.DeleteUser("user-1"))
	mockRepo.AssertExpectations(t)
}

func TestUserService_GetUserByID_Missing(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := newService(mockRepo, nil)

	mockRepo.On("GetByID", "missing").Return(nil, nil).Once()

	user, err := service.GetUserByID("missing")
	assert.NoError(t, err)
	assert.Nil(t, user)
}

func TestUserService_PublishesEvents(t *testing.T) {
	mockRepo := new(MockUserRepository)
	publisher := new(MockPublisher)
	service := newService(mockRepo, publisher)

	mockRepo.On("Create", mock.AnythingOfType("*models.User")).
		Run(func(args mock.Arguments) { args.Get(0).(*models.User).ID = "user-1" }).
		Return(nil).Once()
	mockRepo.On("Update", mock.AnythingOfType("*models.User")).Return(true, nil).Once()
	mockRepo.On("Delete", "user-1").Return(true, nil).Once()

	publisher.On("PublishUserEvent", mock.MatchedBy(func(e models.UserEvent) bool {
		return e.Type == models.UserCreated && e.UserID == "user-1" && e.Email == "ana@example.com"
	})).Return(nil).Once()
	publisher.On("PublishUserEvent", mock.MatchedBy(func(e models.UserEvent) bool {
		return e.Type == models.UserUpdated && e.UserID == "user-1"
	})).Return(errors.New("broker down")).Once()
	publisher.On("PublishUserEvent", mock.MatchedBy(func(e models.UserEvent) bool {
		return e.Type == models.UserDeleted && e.UserID == "user-1"
	})).Return(nil).Once()

	_, err := service.CreateUser(models.UserInput{Name: "Ana", Email: "ana@example.com", Password: "secret"})
	require.NoError(t, err)
	// A publish failure does not fail the write.
	require.NoError(t, service.UpdateUser("user-1", models.UserInput{Name: "Ana", Email: "ana@example.com", Password: "other"}))
	require.NoError(t, service.DeleteUser("user-1"))

	publisher.AssertExpectations(t)
}

func TestUserService_NoEventOnFailedWrite(t *testing.T) {
	mockRepo := new(MockUserRepository)
	publisher := new(MockPublisher)
	service := newService(mockRepo, publisher)

	mockRepo.On("Delete", "user-1").Return(false, errors.New("db closed")).Once()

	assert.Error(t, service.DeleteUser("user-1"))
	publisher.AssertNotCalled(t, "PublishUserEvent", mock.Anything)
}

func TestUserService_NoEventForMissingUser(t *testing.T) {
	mockRepo := new(MockUserRepository)
	publisher := new(MockPublisher)
	service := newService(mockRepo, publisher)

	mockRepo.On("Update", mock.AnythingOfType("*models.User")).Return(false, nil).Once()
	mockRepo.On("Delete", "ghost").Return(false, nil).Once()

	require.NoError(t, service.UpdateUser("ghost", models.UserInput{Name: "Ana", Email: "ana@example.com", Password: "secret"}))
	require.NoError(t, service.DeleteUser("ghost"))

	mockRepo.AssertExpectations(t)
	publisher.AssertNotCalled(t, "PublishUserEvent", mock.Anything)
}

func TestUserService_NoEventForMissingUser_InMemoryStore(t *testing.T) {
	publisher := new(MockPublisher)
	service := services.NewUserService(
		repositories.NewMockUserRepository(),
		services.NewBcryptHasher(bcrypt.MinCost),
		validation.New(),
		publisher,
		quietLogger(),
	)

	require.NoError(t, service.UpdateUser("ghost", models.UserInput{Name: "Ana", Email: "ana@example.com", Password: "secret"}))
	require.NoError(t, service.DeleteUser("ghost"))

	users, err := service.GetAllUsers()
	require.NoError(t, err)
	assert.Empty(t, users)
	publisher.AssertNotCalled(t, "PublishUserEvent", mock.Anything)
}
