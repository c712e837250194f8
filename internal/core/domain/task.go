package domain

import (
	"fmt"
	"strings"
	"time"
)

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

const (
	TaskPending  TaskStatus = "pending"
	TaskFinished TaskStatus = "finished"
)

// Comment is a note left on a task. Comments are append-only.
type Comment struct {
	Text      string    `json:"text" bson:"text"`
	Author    UserRef   `json:"author" bson:"author"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// Task is the aggregate owning its assignments and comments; both change
// only through its methods. Name is the unique key and never changes.
type Task struct {
	Name        string     `json:"name" bson:"name"`
	Description string     `json:"description" bson:"description"`
	Status      TaskStatus `json:"status" bson:"status"`
	CreatedAt   time.Time  `json:"created_at" bson:"created_at"`
	Assigned    []UserRef  `json:"assigned_users" bson:"assigned_users"`
	Comments    []Comment  `json:"comments" bson:"comments"`
}

// NewTask builds a validated task in the pending state.
func NewTask(name, description string) (*Task, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: task name must not be empty", ErrValidation)
	}
	return &Task{
		Name:        name,
		Description: description,
		Status:      TaskPending,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// Assign adds user to the assignee set. Assigning a user already on the
// task is a no-op; insertion order is preserved.
func (t *Task) Assign(user UserRef) {
	for _, u := range t.Assigned {
		if u.ID == user.ID {
			return
		}
	}
	t.Assigned = append(t.Assigned, user)
}

// Finish moves the task to its terminal state. Finishing twice is an error.
func (t *Task) Finish() error {
	if t.Status == TaskFinished {
		return fmt.Errorf("%w: task %q is already finished", ErrState, t.Name)
	}
	t.Status = TaskFinished
	return nil
}

// AddComment appends a comment authored by author.
func (t *Task) AddComment(text string, author UserRef) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: comment text must not be empty", ErrValidation)
	}
	t.Comments = append(t.Comments, Comment{
		Text:      text,
		Author:    author,
		CreatedAt: time.Now().UTC(),
	})
	return nil
}

// IsFinished reports whether the task reached its terminal state.
func (t *Task) IsFinished() bool { return t.Status == TaskFinished }

// Detail returns a deep point-in-time snapshot, safe to hand out.
func (t *Task) Detail() TaskDetail {
	d := TaskDetail{
		Name:        t.Name,
		Description: t.Description,
		Status:      t.Status,
		CreatedAt:   t.CreatedAt,
		Assigned:    make([]UserRef, len(t.Assigned)),
		Comments:    make([]Comment, len(t.Comments)),
	}
	copy(d.Assigned, t.Assigned)
	copy(d.Comments, t.Comments)
	return d
}

// TaskDetail is an immutable view of a task at a point in time.
type TaskDetail struct {
	Name        string     `json:"name" bson:"name"`
	Description string     `json:"description" bson:"description"`
	Status      TaskStatus `json:"status" bson:"status"`
	CreatedAt   time.Time  `json:"created_at" bson:"created_at"`
	Assigned    []UserRef  `json:"assigned_users" bson:"assigned_users"`
	Comments    []Comment  `json:"comments" bson:"comments"`
}

// ArchiveEntry is the record appended to the archive when a task finishes.
// It survives deletion of the live task.
type ArchiveEntry struct {
	ArchivedAt time.Time  `json:"archived_at" bson:"archived_at"`
	Task       TaskDetail `json:"task" bson:"task"`
}
