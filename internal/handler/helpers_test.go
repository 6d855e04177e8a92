package handler_test

import (
	"context"
	"sync"

	"taskboard/internal/middleware"
	"taskboard/internal/model"
	"taskboard/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// withUser injects the authenticated caller the way the auth middleware
// does, so handlers can be tested without real tokens.
func withUser(userID uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Next()
	}
}

type publishedEvent struct {
	TargetID uuid.UUID
	Event    string
	Data     interface{}
}

// fakePublisher captures broadcasts instead of delivering them.
type fakePublisher struct {
	mu          sync.Mutex
	boardEvents []publishedEvent
	userEvents  []publishedEvent
}

func (f *fakePublisher) ToBoard(boardID uuid.UUID, event string, data interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.boardEvents = append(f.boardEvents, publishedEvent{TargetID: boardID, Event: event, Data: data})
}

func (f *fakePublisher) ToUser(userID uuid.UUID, event string, data interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.userEvents = append(f.userEvents, publishedEvent{TargetID: userID, Event: event, Data: data})
}

func (f *fakePublisher) boardEventNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, len(f.boardEvents))
	for i, ev := range f.boardEvents {
		names[i] = ev.Event
	}
	return names
}

type recordedActivity struct {
	BoardID     uuid.UUID
	ActorID     uuid.UUID
	Action      string
	EntityType  string
	EntityID    uuid.UUID
	EntityTitle string
	Details     map[string]interface{}
}

// fakeRecorder captures activity records instead of persisting them.
type fakeRecorder struct {
	mu      sync.Mutex
	entries []recordedActivity
}

func (f *fakeRecorder) Record(ctx context.Context, boardID, actorID uuid.UUID, action, entityType string, entityID uuid.UUID, entityTitle string, details map[string]interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, recordedActivity{
		BoardID:     boardID,
		ActorID:     actorID,
		Action:      action,
		EntityType:  entityType,
		EntityID:    entityID,
		EntityTitle: entityTitle,
		Details:     details,
	})
}

func (f *fakeRecorder) actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	actions := make([]string, len(f.entries))
	for i, e := range f.entries {
		actions[i] = e.Action
	}
	return actions
}

type MockBoardStore struct {
	mock.Mock
}

func (m *MockBoardStore) Create(ctx context.Context, board *model.Board) error {
	args := m.Called(ctx, board)
	return args.Error(0)
}

func (m *MockBoardStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Board, error) {
	args := m.Called(ctx, id)
	board := args.Get(0)
	if board == nil {
		return nil, args.Error(1)
	}
	return board.(*model.Board), args.Error(1)
}

func (m *MockBoardStore) ForUser(ctx context.Context, userID uuid.UUID, search string, limit, offset int) ([]model.Board, int64, error) {
	args := m.Called(ctx, userID, search, limit, offset)
	boards := args.Get(0)
	if boards == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return boards.([]model.Board), args.Get(1).(int64), args.Error(2)
}

func (m *MockBoardStore) Update(ctx context.Context, board *model.Board) error {
	args := m.Called(ctx, board)
	return args.Error(0)
}

func (m *MockBoardStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBoardStore) AddMember(ctx context.Context, member *model.BoardMember) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

func (m *MockBoardStore) RemoveMember(ctx context.Context, boardID, userID uuid.UUID) error {
	args := m.Called(ctx, boardID, userID)
	return args.Error(0)
}

type MockListStore struct {
	mock.Mock
}

func (m *MockListStore) Create(ctx context.Context, list *model.List) error {
	args := m.Called(ctx, list)
	return args.Error(0)
}

func (m *MockListStore) GetByID(ctx context.Context, id uuid.UUID) (*model.List, error) {
	args := m.Called(ctx, id)
	list := args.Get(0)
	if list == nil {
		return nil, args.Error(1)
	}
	return list.(*model.List), args.Error(1)
}

func (m *MockListStore) GetByBoardID(ctx context.Context, boardID uuid.UUID) ([]model.List, error) {
	args := m.Called(ctx, boardID)
	lists := args.Get(0)
	if lists == nil {
		return nil, args.Error(1)
	}
	return lists.([]model.List), args.Error(1)
}

func (m *MockListStore) Update(ctx context.Context, list *model.List) error {
	args := m.Called(ctx, list)
	return args.Error(0)
}

func (m *MockListStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockListStore) NextPosition(ctx context.Context, boardID uuid.UUID) (int, error) {
	args := m.Called(ctx, boardID)
	return args.Int(0), args.Error(1)
}

func (m *MockListStore) Reorder(ctx context.Context, boardID uuid.UUID, order []repository.ListPosition) error {
	args := m.Called(ctx, boardID, order)
	return args.Error(0)
}

type MockTaskStore struct {
	mock.Mock
}

func (m *MockTaskStore) Create(ctx context.Context, task *model.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	args := m.Called(ctx, id)
	task := args.Get(0)
	if task == nil {
		return nil, args.Error(1)
	}
	return task.(*model.Task), args.Error(1)
}

func (m *MockTaskStore) GetByBoardID(ctx context.Context, boardID uuid.UUID) ([]model.Task, error) {
	args := m.Called(ctx, boardID)
	tasks := args.Get(0)
	if tasks == nil {
		return nil, args.Error(1)
	}
	return tasks.([]model.Task), args.Error(1)
}

func (m *MockTaskStore) Find(ctx context.Context, filter repository.TaskFilter, limit, offset int) ([]model.Task, int64, error) {
	args := m.Called(ctx, filter, limit, offset)
	tasks := args.Get(0)
	if tasks == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return tasks.([]model.Task), args.Get(1).(int64), args.Error(2)
}

func (m *MockTaskStore) Update(ctx context.Context, task *model.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskStore) ReplaceLabels(ctx context.Context, taskID uuid.UUID, labels []model.TaskLabel) error {
	args := m.Called(ctx, taskID, labels)
	return args.Error(0)
}

func (m *MockTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTaskStore) NextPosition(ctx context.Context, listID uuid.UUID) (int, error) {
	args := m.Called(ctx, listID)
	return args.Int(0), args.Error(1)
}

func (m *MockTaskStore) Move(ctx context.Context, boardID, taskID, destListID uuid.UUID, position int, order []repository.TaskPosition) error {
	args := m.Called(ctx, boardID, taskID, destListID, position, order)
	return args.Error(0)
}

func (m *MockTaskStore) Assign(ctx context.Context, taskID, userID uuid.UUID) error {
	args := m.Called(ctx, taskID, userID)
	return args.Error(0)
}

func (m *MockTaskStore) Unassign(ctx context.Context, taskID, userID uuid.UUID) error {
	args := m.Called(ctx, taskID, userID)
	return args.Error(0)
}
