// Package console implements the interactive terminal front-end. It drives
// the same TaskService as the HTTP API: a bootstrap flow when no admin
// exists, a login loop with a first-login password assistant, and one menu
// per role.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"golang.org/x/term"

	"github.com/emipaz/gestortareas/internal/core/domain"
	"github.com/emipaz/gestortareas/internal/core/ports"
)

const loginAttempts = 3

// ErrLoginFailed is returned by Run when the login attempts are exhausted.
var ErrLoginFailed = errors.New("too many failed login attempts")

// Console is one interactive terminal session over a TaskService.
type Console struct {
	service ports.TaskService
	in      *bufio.Scanner
	out     io.Writer
	// password reads a secret. Defaults to a plain line read; New swaps in
	// a no-echo reader when the input is a terminal.
	password func(label string) (string, error)
}

// New builds a console over the given streams. Passwords are read without
// echo when in is a terminal.
func New(service ports.TaskService, in io.Reader, out io.Writer) *Console {
	c := &Console{service: service, in: bufio.NewScanner(in), out: out}
	c.password = c.prompt
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd := int(f.Fd())
		c.password = func(label string) (string, error) {
			fmt.Fprint(c.out, label)
			b, err := term.ReadPassword(fd)
			fmt.Fprintln(c.out)
			if err != nil {
				return "", fmt.Errorf("reading password: %w", err)
			}
			return strings.TrimSpace(string(b)), nil
		}
	}
	return c
}

// Run drives the session: bootstrap when no admin exists, then login and
// role menu in a loop, so logging out returns to the login prompt. Closing
// the input ends the session cleanly; exhausted login attempts return
// ErrLoginFailed.
func (c *Console) Run(ctx context.Context) error {
	err := c.run(ctx)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (c *Console) run(ctx context.Context) error {
	if !c.service.HasAdmin(ctx) {
		if err := c.bootstrapAdmin(ctx); err != nil {
			return err
		}
	}

	for {
		user, err := c.login(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "\nWelcome, %s (%s).\n", displayName(user), user.Role)

		switch user.Role {
		case domain.RoleAdmin:
			err = c.adminMenu(ctx, user)
		case domain.RoleSupervisor:
			err = c.supervisorMenu(ctx, user)
		default:
			err = c.userMenu(ctx, user)
		}
		if err != nil {
			return err
		}
	}
}

// bootstrapAdmin creates the very first admin account, retrying until it
// succeeds. Unlike regular account creation the password is mandatory here,
// otherwise nobody could ever log in.
func (c *Console) bootstrapAdmin(ctx context.Context) error {
	fmt.Fprintln(c.out, "No admin account exists yet, create one to continue.")
	for {
		name, err := c.promptNonEmpty("Admin name: ")
		if err != nil {
			return err
		}
		display, err := c.prompt("Display name (optional): ")
		if err != nil {
			return err
		}
		pass, err := c.newPassword()
		if err != nil {
			return err
		}
		if _, err := c.service.CreateInitialAdmin(ctx, ports.CreateUserInput{
			Name:        name,
			DisplayName: display,
			Password:    pass,
		}); err != nil {
			fmt.Fprintf(c.out, "Error: %v\n", err)
			continue
		}
		fmt.Fprintf(c.out, "Admin account %q created.\n", name)
		return nil
	}
}

// login runs the attempt loop. An account whose credential is unset is sent
// through the first-login assistant and then authenticated with the new
// password.
func (c *Console) login(ctx context.Context) (*domain.User, error) {
	for attempt := 1; attempt <= loginAttempts; attempt++ {
		name, err := c.promptNonEmpty("\nUser: ")
		if err != nil {
			return nil, err
		}
		pass, err := c.password("Password: ")
		if err != nil {
			return nil, err
		}

		user, err := c.service.Authenticate(ctx, name, pass)
		if err == nil {
			return user, nil
		}
		if errors.Is(err, domain.ErrCredentialNotSet) {
			return c.firstLogin(ctx, name)
		}
		fmt.Fprintf(c.out, "Login failed: %v\n", err)
	}
	fmt.Fprintln(c.out, "Too many failed attempts.")
	return nil, ErrLoginFailed
}

// firstLogin assigns the account its first password and logs it in.
func (c *Console) firstLogin(ctx context.Context, name string) (*domain.User, error) {
	fmt.Fprintln(c.out, "This account has no password yet, set one now.")
	pass, err := c.newPassword()
	if err != nil {
		return nil, err
	}
	if err := c.service.SetInitialPassword(ctx, name, pass); err != nil {
		return nil, err
	}
	return c.service.Authenticate(ctx, name, pass)
}

// newPassword runs the two-step password prompt: non-empty, entered twice.
// It loops until both entries match.
func (c *Console) newPassword() (string, error) {
	for {
		first, err := c.password("New password: ")
		if err != nil {
			return "", err
		}
		if first == "" {
			fmt.Fprintln(c.out, "The password must not be empty.")
			continue
		}
		second, err := c.password("Repeat password: ")
		if err != nil {
			return "", err
		}
		if first != second {
			fmt.Fprintln(c.out, "The passwords do not match, try again.")
			continue
		}
		return first, nil
	}
}

// Menu actions print service errors and keep the menu alive; only input
// stream errors escape and end the session.

func (c *Console) adminMenu(ctx context.Context, user *domain.User) error {
	for {
		fmt.Fprintln(c.out, "\n[1] List users  [2] Create user  [3] Reset password  [4] Statistics  [0] Logout")
		choice, err := c.prompt("Option: ")
		if err != nil {
			return err
		}
		switch choice {
		case "1":
			err = c.listUsers(ctx)
		case "2":
			err = c.createUser(ctx, user.Name)
		case "3":
			err = c.resetPassword(ctx, user.Name)
		case "4":
			err = c.statistics(ctx)
		case "0":
			fmt.Fprintln(c.out, "Bye.")
			return nil
		default:
			fmt.Fprintln(c.out, "Unknown option.")
		}
		if err != nil {
			return err
		}
	}
}

func (c *Console) supervisorMenu(ctx context.Context, user *domain.User) error {
	for {
		fmt.Fprintln(c.out, "\n[1] Create task  [2] Assign task  [0] Logout")
		choice, err := c.prompt("Option: ")
		if err != nil {
			return err
		}
		switch choice {
		case "1":
			err = c.createTask(ctx, user.Name)
		case "2":
			err = c.assignTask(ctx, user.Name)
		case "0":
			fmt.Fprintln(c.out, "Bye.")
			return nil
		default:
			fmt.Fprintln(c.out, "Unknown option.")
		}
		if err != nil {
			return err
		}
	}
}

func (c *Console) userMenu(ctx context.Context, user *domain.User) error {
	for {
		fmt.Fprintln(c.out, "\n[1] My tasks  [2] Finish task  [3] Profile  [0] Logout")
		choice, err := c.prompt("Option: ")
		if err != nil {
			return err
		}
		switch choice {
		case "1":
			err = c.myTasks(ctx, user.Name)
		case "2":
			err = c.finishTask(ctx)
		case "3":
			err = c.profile(ctx, user.Name)
		case "0":
			fmt.Fprintln(c.out, "Bye.")
			return nil
		default:
			fmt.Fprintln(c.out, "Unknown option.")
		}
		if err != nil {
			return err
		}
	}
}

func (c *Console) listUsers(ctx context.Context) error {
	users, err := c.service.ListUsers(ctx)
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return nil
	}
	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDISPLAY NAME\tROLE\tPASSWORD\tCREATED")
	for _, u := range users {
		state := "set"
		if !u.Credential.IsSet() {
			state = "pending"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			u.Name, u.DisplayName, u.Role, state, u.CreatedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func (c *Console) createUser(ctx context.Context, actor string) error {
	name, err := c.promptNonEmpty("Name: ")
	if err != nil {
		return err
	}
	display, err := c.prompt("Display name (optional): ")
	if err != nil {
		return err
	}
	roleText, err := c.promptNonEmpty("Role (user/supervisor/admin): ")
	if err != nil {
		return err
	}
	role, perr := domain.ParseRole(roleText)
	if perr != nil {
		fmt.Fprintf(c.out, "Error: %v\n", perr)
		return nil
	}
	pass, err := c.password("Password (leave empty for first-login setup): ")
	if err != nil {
		return err
	}

	user, serr := c.service.CreateUser(ctx, actor, ports.CreateUserInput{
		Name:        name,
		DisplayName: display,
		Role:        role,
		Password:    pass,
	})
	if serr != nil {
		fmt.Fprintf(c.out, "Error: %v\n", serr)
		return nil
	}
	fmt.Fprintf(c.out, "User %q created with role %s.\n", user.Name, user.Role)
	return nil
}

func (c *Console) resetPassword(ctx context.Context, actor string) error {
	target, err := c.promptNonEmpty("Account to reset: ")
	if err != nil {
		return err
	}
	if serr := c.service.ResetPassword(ctx, actor, target); serr != nil {
		fmt.Fprintf(c.out, "Error: %v\n", serr)
		return nil
	}
	fmt.Fprintf(c.out, "Password cleared, %s must set a new one on next login.\n", target)
	return nil
}

func (c *Console) statistics(ctx context.Context) error {
	stats, err := c.service.Statistics(ctx)
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return nil
	}
	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Tasks total\t%d\n", stats.Tasks.Total)
	fmt.Fprintf(w, "  pending\t%d\n", stats.Tasks.Pending)
	fmt.Fprintf(w, "  finished\t%d\n", stats.Tasks.Finished)
	fmt.Fprintf(w, "Users total\t%d\n", stats.Users.Total)
	fmt.Fprintf(w, "  admins\t%d\n", stats.Users.Admins)
	fmt.Fprintf(w, "  supervisors\t%d\n", stats.Users.Supervisors)
	fmt.Fprintf(w, "  users\t%d\n", stats.Users.Users)
	return w.Flush()
}

func (c *Console) createTask(ctx context.Context, actor string) error {
	name, err := c.promptNonEmpty("Task name: ")
	if err != nil {
		return err
	}
	description, err := c.prompt("Description (optional): ")
	if err != nil {
		return err
	}
	task, serr := c.service.CreateTask(ctx, actor, name, description)
	if serr != nil {
		fmt.Fprintf(c.out, "Error: %v\n", serr)
		return nil
	}
	fmt.Fprintf(c.out, "Task %q created.\n", task.Name)
	return nil
}

func (c *Console) assignTask(ctx context.Context, actor string) error {
	taskName, err := c.promptNonEmpty("Task name: ")
	if err != nil {
		return err
	}
	userName, err := c.promptNonEmpty("Assign to user: ")
	if err != nil {
		return err
	}
	if serr := c.service.AssignTask(ctx, actor, userName, taskName); serr != nil {
		fmt.Fprintf(c.out, "Error: %v\n", serr)
		return nil
	}
	fmt.Fprintf(c.out, "Task %q assigned to %s.\n", taskName, userName)
	return nil
}

func (c *Console) myTasks(ctx context.Context, userName string) error {
	tasks, err := c.service.TasksForUser(ctx, userName)
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return nil
	}
	if len(tasks) == 0 {
		fmt.Fprintln(c.out, "No tasks assigned.")
		return nil
	}
	return c.printTasks(tasks)
}

func (c *Console) finishTask(ctx context.Context) error {
	name, err := c.promptNonEmpty("Task to finish: ")
	if err != nil {
		return err
	}
	if serr := c.service.FinishTask(ctx, name); serr != nil {
		fmt.Fprintf(c.out, "Error: %v\n", serr)
		return nil
	}
	fmt.Fprintf(c.out, "Task %q finished and archived.\n", name)
	return nil
}

func (c *Console) profile(ctx context.Context, userName string) error {
	u, err := c.service.GetUser(ctx, userName)
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return nil
	}
	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Name\t%s\n", u.Name)
	fmt.Fprintf(w, "Display name\t%s\n", u.DisplayName)
	fmt.Fprintf(w, "Role\t%s\n", u.Role)
	fmt.Fprintf(w, "Member since\t%s\n", u.CreatedAt.Format("2006-01-02"))
	return w.Flush()
}

func (c *Console) printTasks(tasks []domain.TaskDetail) error {
	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSTATUS\tASSIGNED\tCOMMENTS\tDESCRIPTION")
	for _, t := range tasks {
		names := make([]string, 0, len(t.Assigned))
		for _, u := range t.Assigned {
			names = append(names, u.Name)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			t.Name, t.Status, strings.Join(names, ","), len(t.Comments), t.Description)
	}
	return w.Flush()
}

// prompt prints label and reads one line. It returns io.EOF when the input
// stream ends.
func (c *Console) prompt(label string) (string, error) {
	fmt.Fprint(c.out, label)
	if !c.in.Scan() {
		if err := c.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(c.in.Text()), nil
}

// promptNonEmpty re-asks until the user enters something.
func (c *Console) promptNonEmpty(label string) (string, error) {
	for {
		s, err := c.prompt(label)
		if err != nil {
			return "", err
		}
		if s != "" {
			return s, nil
		}
	}
}

func displayName(u *domain.User) string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Name
}
