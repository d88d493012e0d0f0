package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"taskKeeper/internal/models/task"
	rep "taskKeeper/internal/repository"
	"taskKeeper/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockTaskRepository - мок репозитория задач
type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) Create(ctx context.Context, t *task.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTaskRepository) GetByID(ctx context.Context, id, ownerID uuid.UUID) (*task.Task, error) {
	args := m.Called(ctx, id, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskRepository) List(ctx context.Context, ownerID uuid.UUID, filter task.Filter) ([]*task.Task, error) {
	args := m.Called(ctx, ownerID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *MockTaskRepository) Update(ctx context.Context, id, ownerID uuid.UUID, upd task.Update) (*task.Task, error) {
	args := m.Called(ctx, id, ownerID, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskRepository) Delete(ctx context.Context, id, ownerID uuid.UUID) (bool, error) {
	args := m.Called(ctx, id, ownerID)
	return args.Bool(0), args.Error(1)
}

func (m *MockTaskRepository) CountOverdue(ctx context.Context, deadline time.Time) (int64, error) {
	args := m.Called(ctx, deadline)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTaskRepository) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

var _ service.TaskRepository = (*MockTaskRepository)(nil)

func TestTaskService_CreateNewTask(t *testing.T) {
	ownerID := uuid.New()

	tests := []struct {
		name          string
		title         string
		status        task.Status
		priority      task.Priority
		setupMock     func(*MockTaskRepository)
		expectedCode  string
		checkCreated  func(*testing.T, *task.Task)
	}{
		{
			name:  "success - defaults applied",
			title: "Купить хлеб",
			setupMock: func(m *MockTaskRepository) {
				m.On("Create", mock.Anything, mock.MatchedBy(func(created *task.Task) bool {
					return created.UserID == ownerID &&
						created.Status == task.StatusTodo &&
						created.Priority == task.PriorityMedium
				})).Return(nil)
			},
			checkCreated: func(t *testing.T, created *task.Task) {
				assert.Equal(t, ownerID, created.UserID)
				assert.Equal(t, task.StatusTodo, created.Status)
				assert.Equal(t, task.PriorityMedium, created.Priority)
			},
		},
		{
			name:     "success - explicit status and priority",
			title:    "Срочное",
			status:   task.StatusInProgress,
			priority: task.PriorityUrgent,
			setupMock: func(m *MockTaskRepository) {
				m.On("Create", mock.Anything, mock.Anything).Return(nil)
			},
			checkCreated: func(t *testing.T, created *task.Task) {
				assert.Equal(t, task.StatusInProgress, created.Status)
				assert.Equal(t, task.PriorityUrgent, created.Priority)
			},
		},
		{
			name:         "error - empty title",
			title:        "",
			setupMock:    func(m *MockTaskRepository) {},
			expectedCode: "VALIDATION_ERROR",
		},
		{
			name:         "error - title too long",
			title:        strings.Repeat("a", 300),
			setupMock:    func(m *MockTaskRepository) {},
			expectedCode: "VALIDATION_ERROR",
		},
		{
			name:         "error - unknown status",
			title:        "Задача",
			status:       task.Status("flying"),
			setupMock:    func(m *MockTaskRepository) {},
			expectedCode: "VALIDATION_ERROR",
		},
		{
			name:         "error - unknown priority",
			title:        "Задача",
			priority:     task.Priority("extreme"),
			setupMock:    func(m *MockTaskRepository) {},
			expectedCode: "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockTaskRepository)
			tt.setupMock(mockRepo)

			svc := service.NewTaskService(mockRepo)
			created, err := svc.CreateNewTask(context.Background(), ownerID, tt.title, nil, tt.status, tt.priority, nil)

			if tt.expectedCode != "" {
				var busErr *service.BusinessError
				require.ErrorAs(t, err, &busErr)
				assert.Equal(t, tt.expectedCode, busErr.Code)
			} else {
				require.NoError(t, err)
				require.NotNil(t, created)
				tt.checkCreated(t, created)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

// TestTaskService_ListTasks проверяет подстановку и ограничение limit.
func TestTaskService_ListTasks(t *testing.T) {
	ownerID := uuid.New()

	tests := []struct {
		name          string
		filter        task.Filter
		expectedLimit int
		expectedCode  string
	}{
		{
			name:          "default limit when unset",
			filter:        task.Filter{},
			expectedLimit: 50,
		},
		{
			name:          "explicit limit kept",
			filter:        task.Filter{Limit: 10},
			expectedLimit: 10,
		},
		{
			name:          "limit capped",
			filter:        task.Filter{Limit: 10000},
			expectedLimit: 200,
		},
		{
			name:         "negative limit rejected",
			filter:       task.Filter{Limit: -1},
			expectedCode: "VALIDATION_ERROR",
		},
		{
			name:         "negative offset rejected",
			filter:       task.Filter{Offset: -5},
			expectedCode: "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockTaskRepository)
			if tt.expectedCode == "" {
				expected := tt.filter
				expected.Limit = tt.expectedLimit
				mockRepo.On("List", mock.Anything, ownerID, expected).Return([]*task.Task{}, nil)
			}

			svc := service.NewTaskService(mockRepo)
			tasks, err := svc.ListTasks(context.Background(), ownerID, tt.filter)

			if tt.expectedCode != "" {
				var busErr *service.BusinessError
				require.ErrorAs(t, err, &busErr)
				assert.Equal(t, tt.expectedCode, busErr.Code)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, tasks)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestTaskService_UpdateTaskByID(t *testing.T) {
	ownerID := uuid.New()
	taskID := uuid.New()
	newTitle := "Обновлённый заголовок"
	emptyTitle := ""
	longTitle := strings.Repeat("a", 300)
	badStatus := task.Status("flying")

	tests := []struct {
		name         string
		upd          task.Update
		setupMock    func(*MockTaskRepository)
		expectedCode string
	}{
		{
			name: "success - title updated",
			upd:  task.Update{Title: &newTitle},
			setupMock: func(m *MockTaskRepository) {
				m.On("Update", mock.Anything, taskID, ownerID, task.Update{Title: &newTitle}).
					Return(&task.Task{ID: taskID, UserID: ownerID, Title: newTitle}, nil)
			},
		},
		{
			name:         "error - empty update",
			upd:          task.Update{},
			setupMock:    func(m *MockTaskRepository) {},
			expectedCode: "VALIDATION_ERROR",
		},
		{
			name:         "error - empty title",
			upd:          task.Update{Title: &emptyTitle},
			setupMock:    func(m *MockTaskRepository) {},
			expectedCode: "VALIDATION_ERROR",
		},
		{
			name:         "error - title too long",
			upd:          task.Update{Title: &longTitle},
			setupMock:    func(m *MockTaskRepository) {},
			expectedCode: "VALIDATION_ERROR",
		},
		{
			name:         "error - bad status",
			upd:          task.Update{Status: &badStatus},
			setupMock:    func(m *MockTaskRepository) {},
			expectedCode: "VALIDATION_ERROR",
		},
		{
			name: "error - task not owned",
			upd:  task.Update{Title: &newTitle},
			setupMock: func(m *MockTaskRepository) {
				m.On("Update", mock.Anything, taskID, ownerID, mock.Anything).
					Return(nil, rep.ErrNotFound)
			},
			expectedCode: "NOT_FOUND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockTaskRepository)
			tt.setupMock(mockRepo)

			svc := service.NewTaskService(mockRepo)
			updated, err := svc.UpdateTaskByID(context.Background(), taskID, ownerID, tt.upd)

			if tt.expectedCode != "" {
				var busErr *service.BusinessError
				require.ErrorAs(t, err, &busErr)
				assert.Equal(t, tt.expectedCode, busErr.Code)
				assert.Nil(t, updated)
			} else {
				require.NoError(t, err)
				assert.Equal(t, newTitle, updated.Title)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestTaskService_DeleteTaskByID(t *testing.T) {
	ownerID := uuid.New()
	taskID := uuid.New()

	tests := []struct {
		name         string
		setupMock    func(*MockTaskRepository)
		expectedCode string
	}{
		{
			name: "success - task deleted",
			setupMock: func(m *MockTaskRepository) {
				m.On("Delete", mock.Anything, taskID, ownerID).Return(true, nil)
			},
		},
		{
			name: "error - nothing deleted maps to not found",
			setupMock: func(m *MockTaskRepository) {
				m.On("Delete", mock.Anything, taskID, ownerID).Return(false, nil)
			},
			expectedCode: "NOT_FOUND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockTaskRepository)
			tt.setupMock(mockRepo)

			svc := service.NewTaskService(mockRepo)
			err := svc.DeleteTaskByID(context.Background(), taskID, ownerID)

			if tt.expectedCode != "" {
				var busErr *service.BusinessError
				require.ErrorAs(t, err, &busErr)
				assert.Equal(t, tt.expectedCode, busErr.Code)
			} else {
				require.NoError(t, err)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestTaskService_GetTaskByID(t *testing.T) {
	ownerID := uuid.New()
	taskID := uuid.New()

	mockRepo := new(MockTaskRepository)
	mockRepo.On("GetByID", mock.Anything, taskID, ownerID).Return(nil, rep.ErrNotFound)

	svc := service.NewTaskService(mockRepo)
	found, err := svc.GetTaskByID(context.Background(), taskID, ownerID)

	var busErr *service.BusinessError
	require.ErrorAs(t, err, &busErr)
	assert.Equal(t, "NOT_FOUND", busErr.Code)
	assert.Nil(t, found)
	mockRepo.AssertExpectations(t)
}
