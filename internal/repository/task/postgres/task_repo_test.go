package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"taskKeeper/internal/models/task"
	"taskKeeper/internal/models/user"
	rep "taskKeeper/internal/repository"
	"taskKeeper/internal/repository/postgres"
	taskpg "taskKeeper/internal/repository/task/postgres"
	userpg "taskKeeper/internal/repository/user/postgres"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TaskRepoTestSuite для интеграционных тестов с PostgreSQL
type TaskRepoTestSuite struct {
	suite.Suite
	container testcontainers.Container
	pool      *pgxpool.Pool
	storage   *taskpg.Storage
	users     *userpg.Storage
	ctx       context.Context

	owner    uuid.UUID
	stranger uuid.UUID
}

func (s *TaskRepoTestSuite) SetupSuite() {
	s.ctx = context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(30 * time.Second),
	}

	container, err := testcontainers.GenericContainer(s.ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(s.T(), err)
	s.container = container

	host, err := container.Host(s.ctx)
	require.NoError(s.T(), err)
	port, err := container.MappedPort(s.ctx, "5432")
	require.NoError(s.T(), err)

	connString := fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	require.NoError(s.T(), postgres.RunMigrations(connString))

	s.pool, err = postgres.NewPool(s.ctx, connString, postgres.PoolConfig{
		MaxConnections: 5,
		MinConnections: 1,
		IdleTimeout:    time.Minute,
	})
	require.NoError(s.T(), err)

	s.storage = taskpg.New(s.pool)
	s.users = userpg.New(s.pool)
}

func (s *TaskRepoTestSuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.container != nil {
		s.container.Terminate(s.ctx)
	}
}

// SetupTest очищает таблицы и создаёт двух пользователей
func (s *TaskRepoTestSuite) SetupTest() {
	_, err := s.pool.Exec(s.ctx, "DELETE FROM tasks")
	require.NoError(s.T(), err)
	_, err = s.pool.Exec(s.ctx, "DELETE FROM users")
	require.NoError(s.T(), err)

	s.owner = s.createUser("owner@example.com")
	s.stranger = s.createUser("stranger@example.com")
}

func (s *TaskRepoTestSuite) createUser(email string) uuid.UUID {
	newUser := &user.User{
		ID:           uuid.New(),
		Email:        email,
		Role:         user.RoleUser,
		PasswordHash: "$argon2id$test",
	}
	require.NoError(s.T(), s.users.Create(s.ctx, newUser))
	return newUser.ID
}

func (s *TaskRepoTestSuite) createTask(ownerID uuid.UUID, title string, status task.Status, priority task.Priority) *task.Task {
	created := &task.Task{
		ID:       uuid.New(),
		UserID:   ownerID,
		Title:    title,
		Status:   status,
		Priority: priority,
	}
	require.NoError(s.T(), s.storage.Create(s.ctx, created))
	return created
}

func (s *TaskRepoTestSuite) TestCreateAndGet() {
	desc := "описание"
	due := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)

	created := &task.Task{
		ID:          uuid.New(),
		UserID:      s.owner,
		Title:       "Задача с полями",
		Description: &desc,
		Status:      task.StatusTodo,
		Priority:    task.PriorityHigh,
		DueDate:     &due,
	}
	require.NoError(s.T(), s.storage.Create(s.ctx, created))
	assert.False(s.T(), created.CreatedAt.IsZero())

	found, err := s.storage.GetByID(s.ctx, created.ID, s.owner)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Задача с полями", found.Title)
	require.NotNil(s.T(), found.Description)
	assert.Equal(s.T(), desc, *found.Description)
	assert.Equal(s.T(), task.PriorityHigh, found.Priority)
	require.NotNil(s.T(), found.DueDate)
	assert.WithinDuration(s.T(), due, *found.DueDate, time.Second)
}

func (s *TaskRepoTestSuite) TestOwnershipIsolation() {
	created := s.createTask(s.owner, "Личная", task.StatusTodo, task.PriorityMedium)

	_, err := s.storage.GetByID(s.ctx, created.ID, s.stranger)
	assert.ErrorIs(s.T(), err, rep.ErrNotFound)

	title := "Чужой заголовок"
	_, err = s.storage.Update(s.ctx, created.ID, s.stranger, task.Update{Title: &title})
	assert.ErrorIs(s.T(), err, rep.ErrNotFound)

	deleted, err := s.storage.Delete(s.ctx, created.ID, s.stranger)
	require.NoError(s.T(), err)
	assert.False(s.T(), deleted)

	tasks, err := s.storage.List(s.ctx, s.stranger, task.Filter{Limit: 50})
	require.NoError(s.T(), err)
	assert.Empty(s.T(), tasks)

	found, err := s.storage.GetByID(s.ctx, created.ID, s.owner)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Личная", found.Title)
}

func (s *TaskRepoTestSuite) TestListFilters() {
	s.createTask(s.owner, "Todo low", task.StatusTodo, task.PriorityLow)
	s.createTask(s.owner, "Done low", task.StatusDone, task.PriorityLow)
	s.createTask(s.owner, "Todo urgent", task.StatusTodo, task.PriorityUrgent)
	s.createTask(s.stranger, "Чужая", task.StatusTodo, task.PriorityLow)

	all, err := s.storage.List(s.ctx, s.owner, task.Filter{Limit: 50})
	require.NoError(s.T(), err)
	assert.Len(s.T(), all, 3)

	todo := task.StatusTodo
	filtered, err := s.storage.List(s.ctx, s.owner, task.Filter{Status: &todo, Limit: 50})
	require.NoError(s.T(), err)
	assert.Len(s.T(), filtered, 2)

	urgent := task.PriorityUrgent
	filtered, err = s.storage.List(s.ctx, s.owner, task.Filter{Status: &todo, Priority: &urgent, Limit: 50})
	require.NoError(s.T(), err)
	require.Len(s.T(), filtered, 1)
	assert.Equal(s.T(), "Todo urgent", filtered[0].Title)

	paged, err := s.storage.List(s.ctx, s.owner, task.Filter{Limit: 2, Offset: 2})
	require.NoError(s.T(), err)
	assert.Len(s.T(), paged, 1)
}

func (s *TaskRepoTestSuite) TestUpdatePartial() {
	desc := "исходное описание"
	created := s.createTask(s.owner, "Исходная", task.StatusTodo, task.PriorityMedium)

	_, err := s.storage.Update(s.ctx, created.ID, s.owner, task.Update{Description: &desc})
	require.NoError(s.T(), err)

	done := task.StatusDone
	updated, err := s.storage.Update(s.ctx, created.ID, s.owner, task.Update{Status: &done})
	require.NoError(s.T(), err)

	assert.Equal(s.T(), task.StatusDone, updated.Status)
	assert.Equal(s.T(), "Исходная", updated.Title)
	require.NotNil(s.T(), updated.Description)
	assert.Equal(s.T(), desc, *updated.Description)
	assert.True(s.T(), updated.UpdatedAt.After(updated.CreatedAt) || updated.UpdatedAt.Equal(updated.CreatedAt))
}

func (s *TaskRepoTestSuite) TestDelete() {
	created := s.createTask(s.owner, "Удаляемая", task.StatusTodo, task.PriorityMedium)

	deleted, err := s.storage.Delete(s.ctx, created.ID, s.owner)
	require.NoError(s.T(), err)
	assert.True(s.T(), deleted)

	deleted, err = s.storage.Delete(s.ctx, created.ID, s.owner)
	require.NoError(s.T(), err)
	assert.False(s.T(), deleted)
}

func (s *TaskRepoTestSuite) TestCountOverdue() {
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	overdue := &task.Task{ID: uuid.New(), UserID: s.owner, Title: "Просроченная", Status: task.StatusTodo, Priority: task.PriorityMedium, DueDate: &past}
	require.NoError(s.T(), s.storage.Create(s.ctx, overdue))

	closed := &task.Task{ID: uuid.New(), UserID: s.owner, Title: "Закрытая", Status: task.StatusDone, Priority: task.PriorityMedium, DueDate: &past}
	require.NoError(s.T(), s.storage.Create(s.ctx, closed))

	upcoming := &task.Task{ID: uuid.New(), UserID: s.owner, Title: "Будущая", Status: task.StatusInProgress, Priority: task.PriorityMedium, DueDate: &future}
	require.NoError(s.T(), s.storage.Create(s.ctx, upcoming))

	count, err := s.storage.CountOverdue(s.ctx, time.Now())
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(1), count)
}

func (s *TaskRepoTestSuite) TestHealthCheck() {
	assert.NoError(s.T(), s.storage.HealthCheck(s.ctx))
}

func TestTaskRepoTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("интеграционный тест с docker")
	}
	suite.Run(t, new(TaskRepoTestSuite))
}
