package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"taskboard/internal/handler"
	"taskboard/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type boardTestEnv struct {
	router   *gin.Engine
	boards   *MockBoardStore
	users    *MockUserStore
	lists    *MockListStore
	tasks    *MockTaskStore
	recorder *fakeRecorder
	hub      *fakePublisher
}

func setupBoardTest(userID uuid.UUID) *boardTestEnv {
	gin.SetMode(gin.TestMode)
	env := &boardTestEnv{
		boards:   new(MockBoardStore),
		users:    new(MockUserStore),
		lists:    new(MockListStore),
		tasks:    new(MockTaskStore),
		recorder: &fakeRecorder{},
		hub:      &fakePublisher{},
	}
	h := handler.NewBoardHandler(env.boards, env.users, env.lists, env.tasks, env.recorder, env.hub)

	r := gin.New()
	r.Use(withUser(userID))
	r.POST("/boards", h.Create)
	r.GET("/boards", h.GetAll)
	r.GET("/boards/:id", h.GetByID)
	r.PUT("/boards/:id", h.Update)
	r.DELETE("/boards/:id", h.Delete)
	r.POST("/boards/:id/members", h.AddMember)
	r.DELETE("/boards/:id/members/:user_id", h.RemoveMember)
	env.router = r
	return env
}

func jsonRequest(method, path string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestBoardCreate_OwnerBecomesAdminMember(t *testing.T) {
	// Arrange
	userID := uuid.New()
	env := setupBoardTest(userID)

	boardID := uuid.New()
	env.boards.On("Create", mock.Anything, mock.AnythingOfType("*model.Board")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*model.Board).ID = boardID
		}).
		Return(nil)
	env.boards.On("AddMember", mock.Anything, mock.MatchedBy(func(m *model.BoardMember) bool {
		return m.BoardID == boardID && m.UserID == userID && m.Role == model.RoleAdmin
	})).Return(nil)
	env.boards.On("GetByID", mock.Anything, boardID).
		Return(&model.Board{ID: boardID, Title: "Roadmap", OwnerID: userID}, nil)

	// Act
	resp := httptest.NewRecorder()
	env.router.ServeHTTP(resp, jsonRequest("POST", "/boards", handler.CreateBoardRequest{Title: "Roadmap"}))

	// Assert
	assert.Equal(t, http.StatusCreated, resp.Code)
	env.boards.AssertExpectations(t)
	assert.Equal(t, []string{model.ActionBoardCreated}, env.recorder.actions())
}

func TestBoardGetByID_GroupsTasksByList(t *testing.T) {
	// Arrange
	userID := uuid.New()
	env := setupBoardTest(userID)

	boardID := uuid.New()
	todoID := uuid.New()
	doneID := uuid.New()
	board := &model.Board{ID: boardID, OwnerID: userID}

	env.boards.On("GetByID", mock.Anything, boardID).Return(board, nil)
	env.lists.On("GetByBoardID", mock.Anything, boardID).Return([]model.List{
		{ID: todoID, BoardID: boardID, Title: "Todo", Position: 0},
		{ID: doneID, BoardID: boardID, Title: "Done", Position: 1},
	}, nil)
	env.tasks.On("GetByBoardID", mock.Anything, boardID).Return([]model.Task{
		{ID: uuid.New(), ListID: todoID, Title: "a"},
		{ID: uuid.New(), ListID: todoID, Title: "b"},
	}, nil)

	// Act
	resp := httptest.NewRecorder()
	env.router.ServeHTTP(resp, jsonRequest("GET", "/boards/"+boardID.String(), nil))

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)

	var body struct {
		Lists []struct {
			ID    uuid.UUID    `json:"id"`
			Tasks []model.Task `json:"tasks"`
		} `json:"lists"`
	}
	assert.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	if assert.Len(t, body.Lists, 2) {
		assert.Len(t, body.Lists[0].Tasks, 2)
		assert.Empty(t, body.Lists[1].Tasks)
	}
}

func TestBoardGetByID_NonMemberForbidden(t *testing.T) {
	// Arrange
	userID := uuid.New()
	env := setupBoardTest(userID)

	boardID := uuid.New()
	board := &model.Board{ID: boardID, OwnerID: uuid.New()}
	env.boards.On("GetByID", mock.Anything, boardID).Return(board, nil)

	// Act
	resp := httptest.NewRecorder()
	env.router.ServeHTTP(resp, jsonRequest("GET", "/boards/"+boardID.String(), nil))

	// Assert
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestBoardUpdate_MemberForbidden(t *testing.T) {
	// Arrange
	userID := uuid.New()
	env := setupBoardTest(userID)

	boardID := uuid.New()
	board := &model.Board{
		ID:      boardID,
		OwnerID: uuid.New(),
		Members: []model.BoardMember{{UserID: userID, Role: model.RoleMember}},
	}
	env.boards.On("GetByID", mock.Anything, boardID).Return(board, nil)

	title := "New title"

	// Act
	resp := httptest.NewRecorder()
	env.router.ServeHTTP(resp, jsonRequest("PUT", "/boards/"+boardID.String(),
		handler.UpdateBoardRequest{Title: &title}))

	// Assert
	assert.Equal(t, http.StatusForbidden, resp.Code)
	assert.Contains(t, resp.Body.String(), "Only admins can update the board")
	assert.Empty(t, env.hub.boardEventNames())
}

func TestBoardUpdate_BroadcastsToBoard(t *testing.T) {
	// Arrange
	userID := uuid.New()
	env := setupBoardTest(userID)

	boardID := uuid.New()
	board := &model.Board{ID: boardID, Title: "Old", OwnerID: userID}
	env.boards.On("GetByID", mock.Anything, boardID).Return(board, nil)
	env.boards.On("Update", mock.Anything, mock.AnythingOfType("*model.Board")).Return(nil)

	title := "New title"

	// Act
	resp := httptest.NewRecorder()
	env.router.ServeHTTP(resp, jsonRequest("PUT", "/boards/"+boardID.String(),
		handler.UpdateBoardRequest{Title: &title}))

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, []string{"board:updated"}, env.hub.boardEventNames())
	assert.Equal(t, []string{model.ActionBoardUpdated}, env.recorder.actions())
}

func TestBoardDelete_AdminButNotOwnerForbidden(t *testing.T) {
	// Arrange
	userID := uuid.New()
	env := setupBoardTest(userID)

	boardID := uuid.New()
	board := &model.Board{
		ID:      boardID,
		OwnerID: uuid.New(),
		Members: []model.BoardMember{{UserID: userID, Role: model.RoleAdmin}},
	}
	env.boards.On("GetByID", mock.Anything, boardID).Return(board, nil)

	// Act
	resp := httptest.NewRecorder()
	env.router.ServeHTTP(resp, jsonRequest("DELETE", "/boards/"+boardID.String(), nil))

	// Assert
	assert.Equal(t, http.StatusForbidden, resp.Code)
	assert.Contains(t, resp.Body.String(), "Only the owner can delete the board")
}

func TestBoardDelete_OwnerBroadcasts(t *testing.T) {
	// Arrange
	userID := uuid.New()
	env := setupBoardTest(userID)

	boardID := uuid.New()
	board := &model.Board{ID: boardID, OwnerID: userID}
	env.boards.On("GetByID", mock.Anything, boardID).Return(board, nil)
	env.boards.On("Delete", mock.Anything, boardID).Return(nil)

	// Act
	resp := httptest.NewRecorder()
	env.router.ServeHTTP(resp, jsonRequest("DELETE", "/boards/"+boardID.String(), nil))

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, []string{"board:deleted"}, env.hub.boardEventNames())
	env.boards.AssertExpectations(t)
}

func TestBoardAddMember_AlreadyMemberConflict(t *testing.T) {
	// Arrange
	userID := uuid.New()
	env := setupBoardTest(userID)

	boardID := uuid.New()
	existing := &model.User{ID: uuid.New(), Email: "taken@example.com", Name: "Taken"}
	board := &model.Board{
		ID:      boardID,
		OwnerID: userID,
		Members: []model.BoardMember{{UserID: existing.ID, Role: model.RoleMember}},
	}
	env.boards.On("GetByID", mock.Anything, boardID).Return(board, nil)
	env.users.On("FindByEmail", mock.Anything, "taken@example.com").Return(existing, nil)

	// Act
	resp := httptest.NewRecorder()
	env.router.ServeHTTP(resp, jsonRequest("POST", "/boards/"+boardID.String()+"/members",
		handler.AddMemberRequest{Email: "taken@example.com"}))

	// Assert
	assert.Equal(t, http.StatusConflict, resp.Code)
	assert.Contains(t, resp.Body.String(), "User is already a member")
}

func TestBoardAddMember_NotifiesBoardAndInvitee(t *testing.T) {
	// Arrange
	userID := uuid.New()
	env := setupBoardTest(userID)

	boardID := uuid.New()
	invitee := &model.User{ID: uuid.New(), Email: "new@example.com", Name: "New"}
	board := &model.Board{ID: boardID, OwnerID: userID}
	env.boards.On("GetByID", mock.Anything, boardID).Return(board, nil)
	env.users.On("FindByEmail", mock.Anything, "new@example.com").Return(invitee, nil)
	env.boards.On("AddMember", mock.Anything, mock.MatchedBy(func(m *model.BoardMember) bool {
		return m.UserID == invitee.ID && m.Role == model.RoleViewer
	})).Return(nil)

	// Act
	resp := httptest.NewRecorder()
	env.router.ServeHTTP(resp, jsonRequest("POST", "/boards/"+boardID.String()+"/members",
		handler.AddMemberRequest{Email: "new@example.com", Role: model.RoleViewer}))

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, []string{"member:added"}, env.hub.boardEventNames())
	if assert.Len(t, env.hub.userEvents, 1) {
		assert.Equal(t, invitee.ID, env.hub.userEvents[0].TargetID)
		assert.Equal(t, "board:invited", env.hub.userEvents[0].Event)
	}
	assert.Equal(t, []string{model.ActionMemberAdded}, env.recorder.actions())
}

func TestBoardRemoveMember_OwnerCannotBeRemoved(t *testing.T) {
	// Arrange
	userID := uuid.New()
	env := setupBoardTest(userID)

	boardID := uuid.New()
	board := &model.Board{ID: boardID, OwnerID: userID}
	env.boards.On("GetByID", mock.Anything, boardID).Return(board, nil)

	// Act
	resp := httptest.NewRecorder()
	env.router.ServeHTTP(resp, jsonRequest("DELETE",
		"/boards/"+boardID.String()+"/members/"+userID.String(), nil))

	// Assert
	assert.Equal(t, http.StatusConflict, resp.Code)
	assert.Contains(t, resp.Body.String(), "Cannot remove the board owner")
}

func TestBoardRemoveMember_Broadcasts(t *testing.T) {
	// Arrange
	userID := uuid.New()
	env := setupBoardTest(userID)

	boardID := uuid.New()
	memberID := uuid.New()
	board := &model.Board{
		ID:      boardID,
		OwnerID: userID,
		Members: []model.BoardMember{{UserID: memberID, Role: model.RoleMember}},
	}
	env.boards.On("GetByID", mock.Anything, boardID).Return(board, nil)
	env.boards.On("RemoveMember", mock.Anything, boardID, memberID).Return(nil)

	// Act
	resp := httptest.NewRecorder()
	env.router.ServeHTTP(resp, jsonRequest("DELETE",
		"/boards/"+boardID.String()+"/members/"+memberID.String(), nil))

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, []string{"member:removed"}, env.hub.boardEventNames())
	assert.Equal(t, []string{model.ActionMemberRemoved}, env.recorder.actions())
	env.boards.AssertExpectations(t)
}
