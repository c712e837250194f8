// Package seed bootstraps accounts from a YAML file at startup, so an API
// deployment can come up with a working admin without console interaction.
package seed

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/emipaz/gestortareas/internal/core/domain"
	"github.com/emipaz/gestortareas/internal/core/ports"
)

type usersFile struct {
	Users []userEntry `yaml:"users"`
}

type userEntry struct {
	Name        string `yaml:"name"`
	DisplayName string `yaml:"display_name"`
	Role        string `yaml:"role"`
	Password    string `yaml:"password"`
}

// Apply reads the YAML user list at path and creates the accounts that do
// not exist yet. When no admin exists, the first admin entry bootstraps the
// system; every other entry is created acting as an admin. Entries whose
// name is already taken are skipped.
func Apply(ctx context.Context, svc ports.TaskService, path string, logger zerolog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading seed file: %w", err)
	}
	var uf usersFile
	if err := yaml.Unmarshal(data, &uf); err != nil {
		return fmt.Errorf("parsing seed file: %w", err)
	}

	actor, err := ensureAdmin(ctx, svc, uf.Users, logger)
	if err != nil {
		return err
	}

	for _, u := range uf.Users {
		if u.Name == "" || u.Name == actor {
			continue
		}
		role, err := domain.ParseRole(u.Role)
		if err != nil {
			return fmt.Errorf("seed entry %q: %w", u.Name, err)
		}
		_, err = svc.CreateUser(ctx, actor, ports.CreateUserInput{
			Name:        u.Name,
			DisplayName: u.DisplayName,
			Role:        role,
			Password:    u.Password,
		})
		if errors.Is(err, domain.ErrConflict) {
			logger.Debug().Str("user", u.Name).Msg("seed entry already exists")
			continue
		}
		if err != nil {
			return fmt.Errorf("seeding user %q: %w", u.Name, err)
		}
		logger.Info().Str("user", u.Name).Str("role", u.Role).Msg("user seeded")
	}
	return nil
}

// ensureAdmin returns the name of an admin account to act as, bootstrapping
// one from the seed entries when the system has none.
func ensureAdmin(ctx context.Context, svc ports.TaskService, entries []userEntry, logger zerolog.Logger) (string, error) {
	if svc.HasAdmin(ctx) {
		users, err := svc.ListUsers(ctx)
		if err != nil {
			return "", fmt.Errorf("listing users: %w", err)
		}
		for _, u := range users {
			if u.IsAdmin() {
				return u.Name, nil
			}
		}
		return "", errors.New("no admin account found")
	}

	for _, u := range entries {
		if u.Role != string(domain.RoleAdmin) {
			continue
		}
		created, err := svc.CreateInitialAdmin(ctx, ports.CreateUserInput{
			Name:        u.Name,
			DisplayName: u.DisplayName,
			Password:    u.Password,
		})
		if err != nil {
			return "", fmt.Errorf("seeding initial admin %q: %w", u.Name, err)
		}
		logger.Info().Str("user", created.Name).Msg("initial admin seeded")
		return created.Name, nil
	}
	return "", errors.New("seed file has no admin entry and no admin exists")
}
