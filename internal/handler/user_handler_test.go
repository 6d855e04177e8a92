package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"taskboard/internal/handler"
	"taskboard/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	user := args.Get(0)
	if user == nil {
		return nil, args.Error(1)
	}
	return user.(*model.User), args.Error(1)
}

func setupUserTest() (*gin.Engine, *MockUserStore) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	mockRepo := new(MockUserStore)
	userHandler := handler.NewUserHandler(mockRepo, "test-secret", 24*time.Hour)

	r.POST("/register", userHandler.Register)
	r.POST("/login", userHandler.Login)

	return r, mockRepo
}

func TestRegister_Success(t *testing.T) {
	// Arrange
	router, mockRepo := setupUserTest()

	mockRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(nil, nil)
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)

	reqBody := handler.RegisterRequest{
		Name:     "Test User",
		Email:    "test@example.com",
		Password: "password123",
	}
	jsonBody, _ := json.Marshal(reqBody)
	req, _ := http.NewRequest("POST", "/register", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusCreated, resp.Code)

	var response handler.AuthResponse
	err := json.Unmarshal(resp.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.NotEmpty(t, response.Token)
	assert.Equal(t, reqBody.Name, response.User.Name)
	assert.Equal(t, reqBody.Email, response.User.Email)
	assert.NotEmpty(t, response.User.Avatar)

	mockRepo.AssertExpectations(t)
}

func TestRegister_NormalizesEmail(t *testing.T) {
	// Arrange
	router, mockRepo := setupUserTest()

	mockRepo.On("FindByEmail", mock.Anything, "mixed@example.com").Return(nil, nil)
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)

	reqBody := handler.RegisterRequest{
		Name:     "Test User",
		Email:    "Mixed@Example.com",
		Password: "password123",
	}
	jsonBody, _ := json.Marshal(reqBody)
	req, _ := http.NewRequest("POST", "/register", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusCreated, resp.Code)
	mockRepo.AssertExpectations(t)
}

func TestRegister_UserAlreadyExists(t *testing.T) {
	// Arrange
	router, mockRepo := setupUserTest()

	existingUser := &model.User{
		ID:             uuid.New(),
		Email:          "existing@example.com",
		HashedPassword: "hashed_password",
		Name:           "Existing User",
	}
	mockRepo.On("FindByEmail", mock.Anything, "existing@example.com").Return(existingUser, nil)

	reqBody := handler.RegisterRequest{
		Name:     "Test User",
		Email:    "existing@example.com",
		Password: "password123",
	}
	jsonBody, _ := json.Marshal(reqBody)
	req, _ := http.NewRequest("POST", "/register", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusConflict, resp.Code)
	assert.Contains(t, resp.Body.String(), "User with this email already exists")
	mockRepo.AssertExpectations(t)
}

func TestRegister_InvalidInput(t *testing.T) {
	// Arrange
	router, _ := setupUserTest()

	reqBody := handler.RegisterRequest{
		Name:     "T",
		Email:    "not-an-email",
		Password: "123",
	}
	jsonBody, _ := json.Marshal(reqBody)
	req, _ := http.NewRequest("POST", "/register", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestLogin_Success(t *testing.T) {
	// Arrange
	router, mockRepo := setupUserTest()

	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &model.User{
		ID:             uuid.New(),
		Email:          "test@example.com",
		HashedPassword: string(hash),
		Name:           "Test User",
	}
	mockRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(user, nil)

	reqBody := handler.LoginRequest{
		Email:    "test@example.com",
		Password: "password123",
	}
	jsonBody, _ := json.Marshal(reqBody)
	req, _ := http.NewRequest("POST", "/login", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)

	var response handler.AuthResponse
	err := json.Unmarshal(resp.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.NotEmpty(t, response.Token)
	assert.Equal(t, user.ID.String(), response.User.ID)
	mockRepo.AssertExpectations(t)
}

func TestLogin_WrongPassword(t *testing.T) {
	// Arrange
	router, mockRepo := setupUserTest()

	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &model.User{
		ID:             uuid.New(),
		Email:          "test@example.com",
		HashedPassword: string(hash),
		Name:           "Test User",
	}
	mockRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(user, nil)

	reqBody := handler.LoginRequest{
		Email:    "test@example.com",
		Password: "wrong-password",
	}
	jsonBody, _ := json.Marshal(reqBody)
	req, _ := http.NewRequest("POST", "/login", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Contains(t, resp.Body.String(), "Invalid credentials")
	mockRepo.AssertExpectations(t)
}

func TestLogin_UnknownUser(t *testing.T) {
	// Arrange
	router, mockRepo := setupUserTest()

	mockRepo.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, nil)

	reqBody := handler.LoginRequest{
		Email:    "nobody@example.com",
		Password: "password123",
	}
	jsonBody, _ := json.Marshal(reqBody)
	req, _ := http.NewRequest("POST", "/login", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Contains(t, resp.Body.String(), "Invalid credentials")
	mockRepo.AssertExpectations(t)
}
