package filestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/emipaz/gestortareas/internal/core/domain"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestStore_FreshDirIsEmpty(t *testing.T) {
	s := newStore(t)

	users, tasks, err := s.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(users) != 0 || len(tasks) != 0 {
		t.Errorf("fresh store must be empty, got %d users, %d tasks", len(users), len(tasks))
	}

	entries, err := s.ReadArchive(context.Background())
	if err != nil {
		t.Fatalf("ReadArchive: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("fresh archive must be empty, got %d entries", len(entries))
	}
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	s := newStore(t)

	user, err := domain.NewUser("bob", "Bob Smith", domain.RoleSupervisor, "hunter2")
	if err != nil {
		t.Fatalf("NewUser: %v", err)
	}
	noPass, err := domain.NewUser("ana", "Ana", domain.RoleUser, "")
	if err != nil {
		t.Fatalf("NewUser: %v", err)
	}
	task, err := domain.NewTask("deploy", "ship the release")
	if err != nil {
		t.Fatalf("NewTask: %v", err)
	}
	task.Assign(user.Ref())
	if err := task.AddComment("on it", user.Ref()); err != nil {
		t.Fatalf("AddComment: %v", err)
	}

	if err := s.SaveAll(context.Background(), []*domain.User{user, noPass}, []*domain.Task{task}); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}

	users, tasks, err := s.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(users) != 2 || len(tasks) != 1 {
		t.Fatalf("got %d users, %d tasks", len(users), len(tasks))
	}

	var bob, ana *domain.User
	for _, u := range users {
		switch u.Name {
		case "bob":
			bob = u
		case "ana":
			ana = u
		}
	}
	if bob == nil || ana == nil {
		t.Fatal("users missing after reload")
	}
	if bob.ID != user.ID || bob.Role != domain.RoleSupervisor {
		t.Errorf("bob fields lost: %+v", bob)
	}
	ok, err := bob.Authenticate("hunter2")
	if err != nil || !ok {
		t.Errorf("reloaded credential must verify: ok=%v err=%v", ok, err)
	}
	if ana.Credential.IsSet() {
		t.Error("unset credential must reload as unset")
	}

	got := tasks[0]
	if got.Name != "deploy" || got.Status != domain.TaskPending {
		t.Errorf("task fields lost: %+v", got)
	}
	if len(got.Assigned) != 1 || got.Assigned[0].Name != "bob" {
		t.Errorf("assignees lost: %+v", got.Assigned)
	}
	if len(got.Comments) != 1 || got.Comments[0].Text != "on it" {
		t.Errorf("comments lost: %+v", got.Comments)
	}
}

func TestStore_SaveOverwrites(t *testing.T) {
	s := newStore(t)

	t1, _ := domain.NewTask("one", "")
	t2, _ := domain.NewTask("two", "")

	if err := s.SaveAll(context.Background(), nil, []*domain.Task{t1, t2}); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := s.SaveAll(context.Background(), nil, []*domain.Task{t2}); err != nil {
		t.Fatalf("second save: %v", err)
	}

	_, tasks, err := s.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Name != "two" {
		t.Errorf("save must replace the snapshot, got %+v", tasks)
	}
}

func TestStore_ArchiveAppendOrder(t *testing.T) {
	s := newStore(t)

	now := time.Now().UTC()
	for _, name := range []string{"first", "second", "third"} {
		entry := domain.ArchiveEntry{
			ArchivedAt: now,
			Task:       domain.TaskDetail{Name: name, Status: domain.TaskFinished, CreatedAt: now},
		}
		if err := s.AppendArchive(context.Background(), entry); err != nil {
			t.Fatalf("append %s: %v", name, err)
		}
	}

	entries, err := s.ReadArchive(context.Background())
	if err != nil {
		t.Fatalf("ReadArchive: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for i, want := range []string{"first", "second", "third"} {
		if entries[i].Task.Name != want {
			t.Errorf("entry %d: want %s, got %s", i, want, entries[i].Task.Name)
		}
	}
}

func TestStore_ArchiveSurvivesSnapshotSaves(t *testing.T) {
	s := newStore(t)

	entry := domain.ArchiveEntry{
		ArchivedAt: time.Now().UTC(),
		Task:       domain.TaskDetail{Name: "done", Status: domain.TaskFinished},
	}
	if err := s.AppendArchive(context.Background(), entry); err != nil {
		t.Fatalf("append: %v", err)
	}

	// Saving an empty live set must not touch the archive.
	if err := s.SaveAll(context.Background(), nil, nil); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}

	entries, err := s.ReadArchive(context.Background())
	if err != nil {
		t.Fatalf("ReadArchive: %v", err)
	}
	if len(entries) != 1 || entries[0].Task.Name != "done" {
		t.Errorf("archive lost across saves: %+v", entries)
	}
}

func TestStore_CorruptSnapshotFails(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "users.json"), []byte("not json"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	if _, _, err := s.LoadAll(context.Background()); err == nil {
		t.Error("expected an error loading a corrupt snapshot")
	}
}

func TestNew_RequiresDir(t *testing.T) {
	if _, err := New("  "); err == nil {
		t.Error("expected an error for a blank dir")
	}
}
