package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/hay-kot/taskdeck/internal/core/session"
	"github.com/hay-kot/taskdeck/internal/core/styles"
	"github.com/hay-kot/taskdeck/internal/tracker"
	"github.com/hay-kot/taskdeck/pkg/iojson"
)

type AuthCmd struct {
	flags *Flags
	app   *tracker.App

	// flags
	email         string
	passwordStdin bool
	jsonOutput    bool
}

// NewAuthCmd creates the login, logout and whoami commands.
func NewAuthCmd(flags *Flags, app *tracker.App) *AuthCmd {
	return &AuthCmd{flags: flags, app: app}
}

// Register adds the auth commands to the application
func (cmd *AuthCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands,
		&cli.Command{
			Name:      "login",
			Usage:     "Log in to the task server",
			UsageText: "taskdeck login [--email <email>] [--password-stdin]",
			Description: `Authenticates against the task server and stores the credential in the data directory.

On a terminal an interactive form asks for anything not given by flags.
Use --password-stdin to pipe the password from a secret manager.`,
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:        "email",
					Aliases:     []string{"e"},
					Usage:       "account email",
					Sources:     cli.EnvVars("TASKDECK_EMAIL"),
					Destination: &cmd.email,
				},
				&cli.BoolFlag{
					Name:        "password-stdin",
					Usage:       "read the password from stdin",
					Destination: &cmd.passwordStdin,
				},
			},
			Action: cmd.runLogin,
		},
		&cli.Command{
			Name:      "logout",
			Usage:     "Forget the stored credential",
			UsageText: "taskdeck logout",
			Action:    cmd.runLogout,
		},
		&cli.Command{
			Name:      "whoami",
			Usage:     "Show the logged in user",
			UsageText: "taskdeck whoami [--json]",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:        "json",
					Usage:       "output as JSON",
					Destination: &cmd.jsonOutput,
				},
			},
			Action: cmd.runWhoami,
		},
	)

	return app
}

func (cmd *AuthCmd) runLogin(ctx context.Context, c *cli.Command) error {
	w := errWriter(c)

	password, err := cmd.readPassword(c)
	if err != nil {
		return err
	}

	if cmd.email == "" || password == "" {
		if !stdinIsTerminal() {
			return cli.Exit("email and password are required; use --email with --password-stdin", 1)
		}
		if err := cmd.runForm(&password); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return fmt.Errorf("form: %w", err)
		}
	}

	if _, err := cmd.app.Auth.Login(ctx, cmd.email, password); err != nil {
		if errors.Is(err, tracker.ErrMissingCredentials) {
			return cli.Exit(err.Error(), 1)
		}
		return failureExit(w, cmd.app.Notify, err)
	}

	printNotification(w, cmd.app.Notify)
	return nil
}

func (cmd *AuthCmd) readPassword(c *cli.Command) (string, error) {
	if !cmd.passwordStdin {
		return "", nil
	}

	line, err := bufio.NewReader(stdin(c)).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (cmd *AuthCmd) runForm(password *string) error {
	var fields []huh.Field
	if cmd.email == "" {
		fields = append(fields, huh.NewInput().
			Title("Email").
			Validate(nonEmpty("email")).
			Value(&cmd.email))
	}

	// Email given on the command line: a plain prompt is enough.
	if len(fields) == 0 {
		_, _ = fmt.Fprint(os.Stderr, "Password: ")
		b, err := term.ReadPassword(int(os.Stdin.Fd()))
		_, _ = fmt.Fprintln(os.Stderr)
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		*password = string(b)
		return nil
	}

	fields = append(fields, huh.NewInput().
		Title("Password").
		EchoMode(huh.EchoModePassword).
		Validate(nonEmpty("password")).
		Value(password))

	return huh.NewForm(huh.NewGroup(fields...)).WithTheme(styles.HuhTheme()).Run()
}

func nonEmpty(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}

func (cmd *AuthCmd) runLogout(ctx context.Context, c *cli.Command) error {
	if !cmd.app.Session.Authenticated() {
		_, _ = fmt.Fprintln(errWriter(c), "Not logged in")
		return nil
	}

	if err := cmd.app.Auth.Logout(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	_, _ = fmt.Fprintln(errWriter(c), styles.SuccessStyle.Render("✔ Logged out"))
	return nil
}

// whoamiInfo is the JSON output format for taskdeck whoami --json.
type whoamiInfo struct {
	session.Profile
	Server    string     `json:"server"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Expired   bool       `json:"expired"`
}

func (cmd *AuthCmd) runWhoami(_ context.Context, c *cli.Command) error {
	profile, ok := cmd.app.Session.Profile()
	if !ok {
		return cli.Exit("Not logged in. Run 'taskdeck login'", 1)
	}

	info := whoamiInfo{Profile: profile, Server: cmd.app.Client.BaseURL()}
	if claims, err := cmd.app.Session.Claims(); err == nil && !claims.ExpiresAt.IsZero() {
		exp := claims.ExpiresAt
		info.ExpiresAt = &exp
		info.Expired = claims.Expired(time.Now())
	}

	out := c.Root().Writer
	if cmd.jsonOutput {
		return iojson.WriteLine(out, info)
	}

	_, _ = fmt.Fprintf(out, "%s %s\n", styles.IconUser, styles.HeaderStyle.Render(profile.DisplayName()))
	if profile.Email != "" && profile.Email != profile.DisplayName() {
		_, _ = fmt.Fprintf(out, "  email:  %s\n", profile.Email)
	}
	if profile.Role != "" {
		_, _ = fmt.Fprintf(out, "  role:   %s\n", profile.Role)
	}
	_, _ = fmt.Fprintf(out, "  server: %s\n", info.Server)
	if info.ExpiresAt != nil {
		exp := info.ExpiresAt.Local().Format(time.RFC1123)
		if info.Expired {
			_, _ = fmt.Fprintf(out, "  token:  %s\n", styles.ErrorStyle.Render("expired "+exp))
		} else {
			_, _ = fmt.Fprintf(out, "  token:  valid until %s\n", exp)
		}
	}
	return nil
}
