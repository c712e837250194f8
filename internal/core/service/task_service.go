package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/emipaz/gestortareas/internal/core/domain"
	"github.com/emipaz/gestortareas/internal/core/ports"
)

// TaskService coordinates every use case over in-memory state loaded from a
// persistence gateway. One mutex serializes all operations, reads included.
// After a failed save the in-memory state keeps the mutation and runs ahead
// of storage until the next successful save; the error is surfaced to the
// caller either way.
type TaskService struct {
	mu      sync.Mutex
	users   map[string]*domain.User
	tasks   map[string]*domain.Task
	gateway ports.PersistenceGateway
	logger  zerolog.Logger
}

// NewTaskService loads the stored state through gateway and returns a ready
// service.
func NewTaskService(ctx context.Context, gateway ports.PersistenceGateway, logger zerolog.Logger) (*TaskService, error) {
	users, tasks, err := gateway.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading state: %w", err)
	}

	s := &TaskService{
		users:   make(map[string]*domain.User, len(users)),
		tasks:   make(map[string]*domain.Task, len(tasks)),
		gateway: gateway,
		logger:  logger,
	}
	for _, u := range users {
		s.users[u.Name] = u
	}
	for _, t := range tasks {
		s.tasks[t.Name] = t
	}

	logger.Info().Int("users", len(s.users)).Int("tasks", len(s.tasks)).Msg("state loaded")
	return s, nil
}

// ---------------------------------------------------------------------------
// Accounts
// ---------------------------------------------------------------------------

// CreateInitialAdmin bootstraps the first admin. It refuses to run once any
// admin exists and, unlike CreateUser, demands a password so the system never
// starts with an unlockable admin account.
func (s *TaskService) CreateInitialAdmin(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hasAdminLocked() {
		return nil, fmt.Errorf("%w: an admin already exists", domain.ErrState)
	}
	if in.Password == "" {
		return nil, fmt.Errorf("%w: initial admin requires a password", domain.ErrValidation)
	}

	user, err := domain.NewUser(in.Name, in.DisplayName, domain.RoleAdmin, in.Password)
	if err != nil {
		return nil, err
	}
	if _, exists := s.users[user.Name]; exists {
		return nil, fmt.Errorf("%w: user %q", domain.ErrConflict, user.Name)
	}

	s.users[user.Name] = user
	if err := s.persist(ctx); err != nil {
		return nil, err
	}

	s.logger.Info().Str("user", user.Name).Msg("initial admin created")
	return user.Clone(), nil
}

func (s *TaskService) CreateUser(ctx context.Context, actor string, in ports.CreateUserInput) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acting, err := s.actorLocked(actor)
	if err != nil {
		return nil, err
	}
	if !domain.Permitted(acting.Role, domain.ActionCreateUser, domain.PermissionContext{}) {
		return nil, fmt.Errorf("%w: role %s may not create users", domain.ErrPermission, acting.Role)
	}

	user, err := domain.NewUser(in.Name, in.DisplayName, in.Role, in.Password)
	if err != nil {
		return nil, err
	}
	if _, exists := s.users[user.Name]; exists {
		return nil, fmt.Errorf("%w: user %q", domain.ErrConflict, user.Name)
	}

	s.users[user.Name] = user
	if err := s.persist(ctx); err != nil {
		return nil, err
	}

	s.logger.Info().Str("user", user.Name).Str("role", string(user.Role)).Str("created_by", actor).Msg("user created")
	return user.Clone(), nil
}

// Authenticate verifies a login by name and password. An account whose
// credential was never set yields ErrCredentialNotSet so callers can route
// the user into the password setup flow instead of a plain rejection.
func (s *TaskService) Authenticate(ctx context.Context, name, password string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[name]
	if !ok {
		return nil, fmt.Errorf("%w: user %q", domain.ErrNotFound, name)
	}

	match, err := user.Authenticate(password)
	if err != nil {
		return nil, err
	}
	if !match {
		return nil, domain.ErrInvalidCredentials
	}
	return user.Clone(), nil
}

func (s *TaskService) SetInitialPassword(ctx context.Context, name, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[name]
	if !ok {
		return fmt.Errorf("%w: user %q", domain.ErrNotFound, name)
	}
	if user.Credential.IsSet() {
		return fmt.Errorf("%w: user %q already has a password", domain.ErrState, name)
	}
	if err := user.Credential.Set(password); err != nil {
		return err
	}
	if err := s.persist(ctx); err != nil {
		return err
	}

	s.logger.Info().Str("user", name).Msg("initial password set")
	return nil
}

func (s *TaskService) ResetPassword(ctx context.Context, actor, target string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acting, err := s.actorLocked(actor)
	if err != nil {
		return err
	}
	if !domain.Permitted(acting.Role, domain.ActionResetPassword, domain.PermissionContext{}) {
		return fmt.Errorf("%w: role %s may not reset passwords", domain.ErrPermission, acting.Role)
	}

	user, ok := s.users[target]
	if !ok {
		return fmt.Errorf("%w: user %q", domain.ErrNotFound, target)
	}

	user.Credential.Reset()
	if err := s.persist(ctx); err != nil {
		return err
	}

	s.logger.Info().Str("user", target).Str("reset_by", actor).Msg("password reset")
	return nil
}

func (s *TaskService) GetUser(ctx context.Context, name string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[name]
	if !ok {
		return nil, fmt.Errorf("%w: user %q", domain.ErrNotFound, name)
	}
	return user.Clone(), nil
}

func (s *TaskService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]*domain.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u.Clone())
	}
	sort.Slice(users, func(i, j int) bool {
		if !users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].CreatedAt.Before(users[j].CreatedAt)
		}
		return users[i].Name < users[j].Name
	})
	return users, nil
}

func (s *TaskService) HasAdmin(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasAdminLocked()
}

// ---------------------------------------------------------------------------
// Tasks
// ---------------------------------------------------------------------------

func (s *TaskService) CreateTask(ctx context.Context, actor, name, description string) (domain.TaskDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acting, err := s.actorLocked(actor)
	if err != nil {
		return domain.TaskDetail{}, err
	}
	if !domain.Permitted(acting.Role, domain.ActionCreateTask, domain.PermissionContext{}) {
		return domain.TaskDetail{}, fmt.Errorf("%w: role %s may not create tasks", domain.ErrPermission, acting.Role)
	}

	task, err := domain.NewTask(name, description)
	if err != nil {
		return domain.TaskDetail{}, err
	}
	if _, exists := s.tasks[task.Name]; exists {
		return domain.TaskDetail{}, fmt.Errorf("%w: task %q", domain.ErrConflict, task.Name)
	}

	s.tasks[task.Name] = task
	if err := s.persist(ctx); err != nil {
		return domain.TaskDetail{}, err
	}

	s.logger.Info().Str("task", task.Name).Str("created_by", actor).Msg("task created")
	return task.Detail(), nil
}

func (s *TaskService) AssignTask(ctx context.Context, actor, userName, taskName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acting, err := s.actorLocked(actor)
	if err != nil {
		return err
	}
	target, ok := s.users[userName]
	if !ok {
		return fmt.Errorf("%w: user %q", domain.ErrNotFound, userName)
	}
	task, ok := s.tasks[taskName]
	if !ok {
		return fmt.Errorf("%w: task %q", domain.ErrNotFound, taskName)
	}
	if !domain.Permitted(acting.Role, domain.ActionAssignTask, domain.PermissionContext{TargetRole: target.Role}) {
		return fmt.Errorf("%w: role %s may not assign this task to role %s", domain.ErrPermission, acting.Role, target.Role)
	}

	task.Assign(target.Ref())
	if err := s.persist(ctx); err != nil {
		return err
	}

	s.logger.Info().Str("task", taskName).Str("user", userName).Str("assigned_by", actor).Msg("task assigned")
	return nil
}

func (s *TaskService) CommentTask(ctx context.Context, actor, taskName, text string) (domain.TaskDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acting, err := s.actorLocked(actor)
	if err != nil {
		return domain.TaskDetail{}, err
	}
	task, ok := s.tasks[taskName]
	if !ok {
		return domain.TaskDetail{}, fmt.Errorf("%w: task %q", domain.ErrNotFound, taskName)
	}

	if err := task.AddComment(text, acting.Ref()); err != nil {
		return domain.TaskDetail{}, err
	}
	if err := s.persist(ctx); err != nil {
		return domain.TaskDetail{}, err
	}

	s.logger.Info().Str("task", taskName).Str("author", actor).Msg("comment added")
	return task.Detail(), nil
}

// FinishTask moves a task to its terminal state. The archive record is
// appended before the live snapshot is saved; a finish that returned nil has
// completed both writes.
func (s *TaskService) FinishTask(ctx context.Context, taskName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[taskName]
	if !ok {
		return fmt.Errorf("%w: task %q", domain.ErrNotFound, taskName)
	}
	if err := task.Finish(); err != nil {
		return err
	}

	entry := domain.ArchiveEntry{ArchivedAt: time.Now().UTC(), Task: task.Detail()}
	if err := s.gateway.AppendArchive(ctx, entry); err != nil {
		s.logger.Error().Err(err).Str("task", taskName).Msg("archive append failed")
		return fmt.Errorf("archiving task: %w", err)
	}
	if err := s.persist(ctx); err != nil {
		return err
	}

	s.logger.Info().Str("task", taskName).Msg("task finished")
	return nil
}

func (s *TaskService) DeleteTask(ctx context.Context, taskName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[taskName]
	if !ok {
		return fmt.Errorf("%w: task %q", domain.ErrNotFound, taskName)
	}
	if !task.IsFinished() {
		return fmt.Errorf("%w: task %q is not finished", domain.ErrState, taskName)
	}

	delete(s.tasks, taskName)
	if err := s.persist(ctx); err != nil {
		return err
	}

	s.logger.Info().Str("task", taskName).Msg("task deleted")
	return nil
}

func (s *TaskService) GetTask(ctx context.Context, name string) (domain.TaskDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[name]
	if !ok {
		return domain.TaskDetail{}, fmt.Errorf("%w: task %q", domain.ErrNotFound, name)
	}
	return task.Detail(), nil
}

func (s *TaskService) ListTasks(ctx context.Context) ([]domain.TaskDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	details := make([]domain.TaskDetail, 0, len(s.tasks))
	for _, t := range s.tasks {
		details = append(details, t.Detail())
	}
	sortTaskDetails(details)
	return details, nil
}

func (s *TaskService) TasksForUser(ctx context.Context, userName string) ([]domain.TaskDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userName]
	if !ok {
		return nil, fmt.Errorf("%w: user %q", domain.ErrNotFound, userName)
	}

	details := make([]domain.TaskDetail, 0)
	for _, t := range s.tasks {
		for _, ref := range t.Assigned {
			if ref.ID == user.ID {
				details = append(details, t.Detail())
				break
			}
		}
	}
	sortTaskDetails(details)
	return details, nil
}

func (s *TaskService) ArchivedTasks(ctx context.Context) ([]domain.ArchiveEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.gateway.ReadArchive(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading archive: %w", err)
	}
	return entries, nil
}

func (s *TaskService) Statistics(ctx context.Context) (ports.Statistics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stats ports.Statistics
	stats.Tasks.Total = len(s.tasks)
	for _, t := range s.tasks {
		if t.IsFinished() {
			stats.Tasks.Finished++
		} else {
			stats.Tasks.Pending++
		}
	}
	stats.Users.Total = len(s.users)
	for _, u := range s.users {
		switch u.Role {
		case domain.RoleAdmin:
			stats.Users.Admins++
		case domain.RoleSupervisor:
			stats.Users.Supervisors++
		default:
			stats.Users.Users++
		}
	}
	return stats, nil
}

// Close flushes the current state through the gateway one last time.
func (s *TaskService) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persist(ctx); err != nil {
		return err
	}
	s.logger.Info().Msg("state flushed")
	return nil
}

// ---------------------------------------------------------------------------
// Internals (callers must hold s.mu)
// ---------------------------------------------------------------------------

func (s *TaskService) actorLocked(name string) (*domain.User, error) {
	u, ok := s.users[name]
	if !ok {
		return nil, fmt.Errorf("%w: user %q", domain.ErrNotFound, name)
	}
	return u, nil
}

func (s *TaskService) hasAdminLocked() bool {
	for _, u := range s.users {
		if u.IsAdmin() {
			return true
		}
	}
	return false
}

// persist writes the full state through the gateway, sorted by name so every
// backend stores a deterministic snapshot.
func (s *TaskService) persist(ctx context.Context) error {
	users := make([]*domain.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Name < users[j].Name })

	tasks := make([]*domain.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		tasks = append(tasks, t)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].Name < tasks[j].Name })

	if err := s.gateway.SaveAll(ctx, users, tasks); err != nil {
		s.logger.Error().Err(err).Msg("state save failed")
		return fmt.Errorf("saving state: %w", err)
	}
	return nil
}

func sortTaskDetails(details []domain.TaskDetail) {
	sort.Slice(details, func(i, j int) bool {
		if !details[i].CreatedAt.Equal(details[j].CreatedAt) {
			return details[i].CreatedAt.Before(details[j].CreatedAt)
		}
		return details[i].Name < details[j].Name
	})
}
