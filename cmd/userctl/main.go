package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/mkrupp/userapi/internal/domain"
	"github.com/mkrupp/userapi/internal/infra/config"
	"github.com/mkrupp/userapi/internal/infra/logging"
	"github.com/mkrupp/userapi/internal/repo/user"
	"github.com/mkrupp/userapi/internal/svc/authsvc"
	"github.com/mkrupp/userapi/internal/svc/usersvc"
)

const (
	appName = "userapi"
	svcName = "userctl"
)

var (
	ErrUsage          = errors.New("usage")
	ErrUnknownCommand = errors.New("unknown command")
)

// readPassword reads from the terminal without echo; tests replace it.
var readPassword = term.ReadPassword

const usage = `usage: userctl <command> [flags]

commands:
  create -name <name> -username <username> [-password-stdin]
  token  -username <username> [-password-stdin]
`

type Config struct {
	config.EnvConfig

	Log  logging.LoggerConfig  `envPrefix:"LOG_"`
	Auth authsvc.AuthConfig    `envPrefix:"AUTH_"`
	User user.RepositoryConfig `envPrefix:"USER_"`
}

type app struct {
	cfg    Config
	stdin  *bufio.Reader
	stdout io.Writer
	stderr io.Writer
}

func main() {
	var (
		cfg Config

		configPrefix = strings.ToUpper(strings.Join([]string{appName, svcName}, "_"))
		loggerName   = strings.ToLower(strings.Join([]string{appName, svcName}, "."))
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := config.Parse(ctx, &cfg, configPrefix); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logging.Configure(ctx, cfg.Log, loggerName)

	a := &app{
		cfg:    cfg,
		stdin:  bufio.NewReader(os.Stdin),
		stdout: os.Stdout,
		stderr: os.Stderr,
	}

	if err := a.run(ctx, os.Args[1:]); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "userctl:", err)
		}

		stop()
		os.Exit(2)
	}
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.stderr, usage)

		return ErrUsage
	}

	switch args[0] {
	case "create":
		return a.create(ctx, args[1:])
	case "token":
		return a.token(ctx, args[1:])
	case "help", "-h", "-help", "--help":
		fmt.Fprint(a.stdout, usage)

		return nil
	default:
		fmt.Fprint(a.stderr, usage)

		return fmt.Errorf("%w: %s", ErrUnknownCommand, args[0])
	}
}

// create stores a new user and prints its id.
func (a *app) create(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	fs.SetOutput(a.stderr)

	name := fs.String("name", "", "display name")
	username := fs.String("username", "", "login name")
	passwordStdin := fs.Bool("password-stdin", false, "read the password from stdin")

	if err := fs.Parse(args); err != nil {
		return err //nolint:wrapcheck
	}

	password, err := a.password(*passwordStdin)
	if err != nil {
		return err
	}

	return a.withServices(ctx, func(_ *authsvc.AuthService, userSvc *usersvc.UserService) error {
		u, err := userSvc.Create(ctx, domain.NewUserRequest{
			Name:     *name,
			Username: *username,
			Password: password,
		})
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}

		fmt.Fprintln(a.stdout, u.ID)

		return nil
	})
}

// token runs the login flow and prints the issued token.
func (a *app) token(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	fs.SetOutput(a.stderr)

	username := fs.String("username", "", "login name")
	passwordStdin := fs.Bool("password-stdin", false, "read the password from stdin")

	if err := fs.Parse(args); err != nil {
		return err //nolint:wrapcheck
	}

	password, err := a.password(*passwordStdin)
	if err != nil {
		return err
	}

	return a.withServices(ctx, func(authSvc *authsvc.AuthService, _ *usersvc.UserService) error {
		token, err := authSvc.Login(ctx, *username, password)
		if err != nil {
			return fmt.Errorf("login: %w", err)
		}

		fmt.Fprintln(a.stdout, token)

		return nil
	})
}

func (a *app) password(fromStdin bool) (string, error) {
	if fromStdin {
		line, err := a.stdin.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return "", fmt.Errorf("read password: %w", err)
		}

		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Fprint(a.stderr, "Password: ")

	password, err := readPassword(int(os.Stdin.Fd())) //nolint:gosec
	fmt.Fprintln(a.stderr)

	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	return string(password), nil
}

func (a *app) withServices(
	ctx context.Context,
	fn func(authSvc *authsvc.AuthService, userSvc *usersvc.UserService) error,
) (err error) {
	repoFactory, err := user.NewRepositoryFactory(a.cfg.User)
	if err != nil {
		return fmt.Errorf("new repository factory: %w", err)
	}

	userRepo, err := repoFactory(ctx)
	if err != nil {
		return fmt.Errorf("new user repo: %w", err)
	}

	defer func() {
		if cerr := userRepo.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close user repo: %w", cerr))
		}
	}()

	authSvc, err := authsvc.NewAuthService(userRepo, a.cfg.Auth)
	if err != nil {
		return fmt.Errorf("new auth service: %w", err)
	}

	return fn(authSvc, usersvc.NewUserService(userRepo, authSvc))
}
