package domain

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestNewUser(t *testing.T) {
	u, err := NewUser("bob", "Bob Smith", RoleUser, "hunter2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ID == "" {
		t.Error("expected a generated id")
	}
	if !u.Credential.IsSet() {
		t.Error("credential must be set when a password is given")
	}

	if _, err := NewUser("", "x", RoleUser, ""); !errors.Is(err, ErrValidation) {
		t.Errorf("empty name: expected ErrValidation, got %v", err)
	}
	if _, err := NewUser("eve", "Eve", Role("root"), ""); !errors.Is(err, ErrValidation) {
		t.Errorf("bad role: expected ErrValidation, got %v", err)
	}
}

func TestNewUser_WithoutPassword(t *testing.T) {
	u, err := NewUser("bob", "Bob", RoleUser, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Credential.IsSet() {
		t.Error("credential must stay unset without a password")
	}
	if _, err := u.Authenticate("anything"); !errors.Is(err, ErrCredentialNotSet) {
		t.Errorf("expected ErrCredentialNotSet, got %v", err)
	}
}

func TestUser_JSONRoundTrip(t *testing.T) {
	u, err := NewUser("bob", "Bob Smith", RoleSupervisor, "hunter2")
	if err != nil {
		t.Fatalf("NewUser: %v", err)
	}

	data, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var back User
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if back.ID != u.ID || back.Name != u.Name || back.DisplayName != u.DisplayName || back.Role != u.Role {
		t.Errorf("fields lost in round trip: %+v", back)
	}
	ok, err := back.Authenticate("hunter2")
	if err != nil || !ok {
		t.Errorf("round-tripped user must still authenticate: ok=%v err=%v", ok, err)
	}
}

func TestUser_Ref(t *testing.T) {
	u, _ := NewUser("bob", "Bob Smith", RoleUser, "")
	ref := u.Ref()
	if ref.ID != u.ID || ref.Name != "bob" || ref.DisplayName != "Bob Smith" || ref.Role != RoleUser {
		t.Errorf("ref mismatch: %+v", ref)
	}
}
