package ports

import (
	"context"

	"github.com/emipaz/gestortareas/internal/core/domain"
)

// CreateUserInput carries the data needed to create an account.
type CreateUserInput struct {
	Name        string
	DisplayName string
	Role        domain.Role
	// Password is optional; when empty the account starts without a
	// credential and must go through the first-login password setup.
	Password string
}

// TaskStatistics aggregates task counts by status.
type TaskStatistics struct {
	Total    int
	Pending  int
	Finished int
}

// UserStatistics aggregates account counts by role.
type UserStatistics struct {
	Total       int
	Admins      int
	Supervisors int
	Users       int
}

// Statistics is the snapshot returned by TaskService.Statistics.
type Statistics struct {
	Tasks TaskStatistics
	Users UserStatistics
}

// TaskService defines the use-case operations of the system. Mutating
// operations identify the acting user by name and enforce the role matrix;
// queries return detached copies safe to use without further locking.
type TaskService interface {
	// CreateInitialAdmin bootstraps the first admin account. It only works
	// while no admin exists and, unlike CreateUser, requires a password.
	CreateInitialAdmin(ctx context.Context, in CreateUserInput) (*domain.User, error)
	CreateUser(ctx context.Context, actor string, in CreateUserInput) (*domain.User, error)
	// Authenticate verifies a login. It returns ErrCredentialNotSet when the
	// account has no password yet and ErrInvalidCredentials on a mismatch.
	Authenticate(ctx context.Context, name, password string) (*domain.User, error)
	// SetInitialPassword completes the first login of an account whose
	// credential is unset. It fails once a password exists.
	SetInitialPassword(ctx context.Context, name, password string) error
	ResetPassword(ctx context.Context, actor, target string) error
	GetUser(ctx context.Context, name string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
	HasAdmin(ctx context.Context) bool

	CreateTask(ctx context.Context, actor, name, description string) (domain.TaskDetail, error)
	AssignTask(ctx context.Context, actor, userName, taskName string) error
	CommentTask(ctx context.Context, actor, taskName, text string) (domain.TaskDetail, error)
	// FinishTask moves a task to its terminal state, appending it to the
	// archive before the live snapshot is saved.
	FinishTask(ctx context.Context, taskName string) error
	// DeleteTask removes a finished task from the live set. Its archive
	// records remain.
	DeleteTask(ctx context.Context, taskName string) error
	GetTask(ctx context.Context, name string) (domain.TaskDetail, error)
	ListTasks(ctx context.Context) ([]domain.TaskDetail, error)
	TasksForUser(ctx context.Context, userName string) ([]domain.TaskDetail, error)
	ArchivedTasks(ctx context.Context) ([]domain.ArchiveEntry, error)
	Statistics(ctx context.Context) (Statistics, error)

	// Close flushes state through the gateway one last time.
	Close(ctx context.Context) error
}
