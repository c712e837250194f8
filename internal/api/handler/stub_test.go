package handler

import (
	"context"

	"github.com/emipaz/gestortareas/internal/core/domain"
	"github.com/emipaz/gestortareas/internal/core/ports"
)

// stubTaskService implements ports.TaskService with overridable functions.
// Calling a method whose function is not set panics, which fails the test
// loudly and points at the missing stub.
type stubTaskService struct {
	createInitialAdminFn func(ctx context.Context, in ports.CreateUserInput) (*domain.User, error)
	createUserFn         func(ctx context.Context, actor string, in ports.CreateUserInput) (*domain.User, error)
	authenticateFn       func(ctx context.Context, name, password string) (*domain.User, error)
	setInitialPasswordFn func(ctx context.Context, name, password string) error
	resetPasswordFn      func(ctx context.Context, actor, target string) error
	getUserFn            func(ctx context.Context, name string) (*domain.User, error)
	listUsersFn          func(ctx context.Context) ([]*domain.User, error)
	hasAdminFn           func(ctx context.Context) bool
	createTaskFn         func(ctx context.Context, actor, name, description string) (domain.TaskDetail, error)
	assignTaskFn         func(ctx context.Context, actor, userName, taskName string) error
	commentTaskFn        func(ctx context.Context, actor, taskName, text string) (domain.TaskDetail, error)
	finishTaskFn         func(ctx context.Context, taskName string) error
	deleteTaskFn         func(ctx context.Context, taskName string) error
	getTaskFn            func(ctx context.Context, name string) (domain.TaskDetail, error)
	listTasksFn          func(ctx context.Context) ([]domain.TaskDetail, error)
	tasksForUserFn       func(ctx context.Context, userName string) ([]domain.TaskDetail, error)
	archivedTasksFn      func(ctx context.Context) ([]domain.ArchiveEntry, error)
	statisticsFn         func(ctx context.Context) (ports.Statistics, error)
	closeFn              func(ctx context.Context) error
}

func (s *stubTaskService) CreateInitialAdmin(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
	return s.createInitialAdminFn(ctx, in)
}

func (s *stubTaskService) CreateUser(ctx context.Context, actor string, in ports.CreateUserInput) (*domain.User, error) {
	return s.createUserFn(ctx, actor, in)
}

func (s *stubTaskService) Authenticate(ctx context.Context, name, password string) (*domain.User, error) {
	return s.authenticateFn(ctx, name, password)
}

func (s *stubTaskService) SetInitialPassword(ctx context.Context, name, password string) error {
	return s.setInitialPasswordFn(ctx, name, password)
}

func (s *stubTaskService) ResetPassword(ctx context.Context, actor, target string) error {
	return s.resetPasswordFn(ctx, actor, target)
}

func (s *stubTaskService) GetUser(ctx context.Context, name string) (*domain.User, error) {
	return s.getUserFn(ctx, name)
}

func (s *stubTaskService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.listUsersFn(ctx)
}

func (s *stubTaskService) HasAdmin(ctx context.Context) bool {
	return s.hasAdminFn(ctx)
}

func (s *stubTaskService) CreateTask(ctx context.Context, actor, name, description string) (domain.TaskDetail, error) {
	return s.createTaskFn(ctx, actor, name, description)
}

func (s *stubTaskService) AssignTask(ctx context.Context, actor, userName, taskName string) error {
	return s.assignTaskFn(ctx, actor, userName, taskName)
}

func (s *stubTaskService) CommentTask(ctx context.Context, actor, taskName, text string) (domain.TaskDetail, error) {
	return s.commentTaskFn(ctx, actor, taskName, text)
}

func (s *stubTaskService) FinishTask(ctx context.Context, taskName string) error {
	return s.finishTaskFn(ctx, taskName)
}

func (s *stubTaskService) DeleteTask(ctx context.Context, taskName string) error {
	return s.deleteTaskFn(ctx, taskName)
}

func (s *stubTaskService) GetTask(ctx context.Context, name string) (domain.TaskDetail, error) {
	return s.getTaskFn(ctx, name)
}

func (s *stubTaskService) ListTasks(ctx context.Context) ([]domain.TaskDetail, error) {
	return s.listTasksFn(ctx)
}

func (s *stubTaskService) TasksForUser(ctx context.Context, userName string) ([]domain.TaskDetail, error) {
	return s.tasksForUserFn(ctx, userName)
}

func (s *stubTaskService) ArchivedTasks(ctx context.Context) ([]domain.ArchiveEntry, error) {
	return s.archivedTasksFn(ctx)
}

func (s *stubTaskService) Statistics(ctx context.Context) (ports.Statistics, error) {
	return s.statisticsFn(ctx)
}

func (s *stubTaskService) Close(ctx context.Context) error {
	return s.closeFn(ctx)
}
