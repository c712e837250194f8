package domain

import (
	"errors"
	"testing"
)

func TestParseRole(t *testing.T) {
	for _, valid := range []string{"user", "supervisor", "admin"} {
		role, err := ParseRole(valid)
		if err != nil {
			t.Errorf("ParseRole(%q): %v", valid, err)
		}
		if string(role) != valid {
			t.Errorf("ParseRole(%q) = %q", valid, role)
		}
	}

	for _, invalid := range []string{"", "Admin", "root", "superuser"} {
		if _, err := ParseRole(invalid); !errors.Is(err, ErrValidation) {
			t.Errorf("ParseRole(%q): expected ErrValidation, got %v", invalid, err)
		}
	}
}

func TestPermitted_Matrix(t *testing.T) {
	cases := []struct {
		role   Role
		action Action
		want   bool
	}{
		{RoleUser, ActionCreateUser, false},
		{RoleSupervisor, ActionCreateUser, false},
		{RoleAdmin, ActionCreateUser, true},

		{RoleUser, ActionResetPassword, false},
		{RoleSupervisor, ActionResetPassword, false},
		{RoleAdmin, ActionResetPassword, true},

		{RoleUser, ActionCreateTask, false},
		{RoleSupervisor, ActionCreateTask, true},
		{RoleAdmin, ActionCreateTask, true},

		{RoleUser, ActionAssignTask, false},
	}

	for _, tc := range cases {
		got := Permitted(tc.role, tc.action, PermissionContext{})
		if got != tc.want {
			t.Errorf("Permitted(%s, %s) = %v, want %v", tc.role, tc.action, got, tc.want)
		}
	}
}

func TestPermitted_AssignTargetRole(t *testing.T) {
	cases := []struct {
		actor  Role
		target Role
		want   bool
	}{
		{RoleSupervisor, RoleUser, true},
		{RoleSupervisor, RoleSupervisor, false},
		{RoleSupervisor, RoleAdmin, false},
		{RoleAdmin, RoleUser, true},
		{RoleAdmin, RoleSupervisor, true},
		{RoleAdmin, RoleAdmin, true},
	}

	for _, tc := range cases {
		got := Permitted(tc.actor, ActionAssignTask, PermissionContext{TargetRole: tc.target})
		if got != tc.want {
			t.Errorf("assign %s -> %s = %v, want %v", tc.actor, tc.target, got, tc.want)
		}
	}
}
