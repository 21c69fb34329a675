package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/scribedesk/scribe/internal/browser"
	"github.com/scribedesk/scribe/internal/config"
	"github.com/scribedesk/scribe/internal/logger"
	"github.com/scribedesk/scribe/internal/routing"
	"github.com/scribedesk/scribe/internal/state"
	"github.com/scribedesk/scribe/internal/storage"
	"github.com/scribedesk/scribe/internal/tui"
	"github.com/scribedesk/scribe/pkg/client"
	"github.com/scribedesk/scribe/pkg/domain"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	c := &cli{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
	if err := c.run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	apiURL   string
	route    string
	logFile  string
	envFile  string
	token    string
	email    string
	model    string
	language string
	version  bool
}

// cli carries the process streams so commands can be exercised in tests.
type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	// Set up by setup.
	cfg    *config.Config
	log    *slog.Logger
	store  storage.Store
	state  *state.State
	client *client.Client

	logCloser io.Closer
}

func (c *cli) run(args []string) error {
	var opts options
	flagSet := pflag.NewFlagSet("scribe", pflag.ContinueOnError)
	flagSet.SetOutput(c.stderr)
	flagSet.StringVar(&opts.apiURL, "api-url", "", "backend base URL (overrides SCRIBE_BACKEND_BASE_URL)")
	flagSet.StringVar(&opts.route, "route", "", "initial route, e.g. '#/submit' or '#/transcript?jobId=3'")
	flagSet.StringVar(&opts.logFile, "log-file", "", "write JSON log records to this file")
	flagSet.StringVar(&opts.envFile, "env-file", "", "load environment from this file instead of ./.env")
	flagSet.StringVar(&opts.token, "token", "", "login: store this access token instead of prompting")
	flagSet.StringVar(&opts.email, "email", "", "login: account email")
	flagSet.StringVar(&opts.model, "model", "small", "submit: transcription model")
	flagSet.StringVar(&opts.language, "language", "auto", "submit: spoken language")
	flagSet.BoolVarP(&opts.version, "version", "v", false, "show version")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(c.stdout)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(c.stdout)
		return nil
	}

	rest := flagSet.Args()
	command := ""
	if len(rest) > 0 {
		command = rest[0]
		rest = rest[1:]
	}

	switch {
	case opts.version || command == "version":
		fmt.Fprintln(c.stdout, "scribe "+version)
		return nil
	case command == "help":
		printHelp(c.stdout)
		return nil
	}

	if err := c.setup(opts); err != nil {
		return err
	}
	defer c.logCloser.Close() //nolint:errcheck
	defer c.flushAlerts()

	ctx := context.Background()
	switch command {
	case "":
		return c.runTUI(opts.route)
	case "login":
		return c.runLogin(ctx, opts)
	case "logout":
		return c.runLogout()
	case "whoami":
		return c.runWhoami(ctx)
	case "jobs":
		return c.runJobs(ctx)
	case "submit":
		if len(rest) != 1 {
			return fmt.Errorf("usage: scribe submit <file> [--model M] [--language L]")
		}
		return c.runSubmit(ctx, rest[0], opts)
	case "open":
		return c.runOpen(opts.route)
	default:
		return fmt.Errorf("unknown command %q (see scribe help)", command)
	}
}

// setup loads configuration and wires logging, storage, state and client.
func (c *cli) setup(opts options) error {
	cfg, err := config.Load(opts.envFile)
	if err != nil {
		return err
	}
	if opts.apiURL != "" {
		cfg.BackendBaseURL = strings.TrimRight(opts.apiURL, "/")
	}
	if opts.logFile != "" {
		cfg.LogFile = opts.logFile
	}
	c.cfg = cfg

	log, closer := logger.Init(cfg.LogFile, cfg.LogLevel)
	c.log = log
	c.logCloser = closer

	c.store = storage.NewDir(cfg.Home)
	c.state = state.New(c.store, log)
	c.client = client.New(cfg.BackendBaseURL, c.state.Auth, c.state.Alerts,
		client.WithLogger(log),
		client.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	)
	log.Debug("scribe starting", "version", version, "backend", cfg.BackendBaseURL, "home", cfg.Home)
	return nil
}

// flushAlerts prints alerts raised outside the TUI, e.g. a forced logout.
func (c *cli) flushAlerts() {
	if c.state == nil {
		return
	}
	for _, a := range c.state.Alerts.All() {
		fmt.Fprintln(c.stderr, renderAlert(a))
	}
}

// fragmentRoute turns user input such as "submit" or "/submit" into "#/submit".
func fragmentRoute(route string) string {
	route = strings.TrimSpace(route)
	switch {
	case route == "":
		return routing.RootRoute
	case strings.HasPrefix(route, "#"):
		return route
	case strings.HasPrefix(route, "/"):
		return "#" + route
	default:
		return "#/" + route
	}
}

func (c *cli) runTUI(route string) error {
	hist := routing.NewHistory(fragmentRoute(route))
	router := routing.NewManager(hist, c.store, c.log)
	app := tui.NewApp(c.client, c.state, router, c.cfg.WebURL)

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	// Alerts were already shown in the UI.
	c.state = nil
	return nil
}

func (c *cli) runLogin(ctx context.Context, opts options) error {
	token := strings.TrimSpace(opts.token)
	if token == "" {
		in := bufio.NewReader(c.stdin)
		email := strings.TrimSpace(opts.email)
		if email == "" {
			fmt.Fprint(c.stderr, "Email: ")
			line, err := in.ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("read email: %w", err)
			}
			email = strings.TrimSpace(line)
		}
		password, err := c.readPassword(in)
		if err != nil {
			return err
		}
		resp := c.client.Login(ctx, email, password)
		if err := resp.Err(); err != nil {
			switch {
			case resp.ErrorType == domain.ErrorEmail:
				return c.withDomainHint(ctx, err)
			case resp.Incomplete:
				return c.explain(err)
			}
			return err
		}
		if resp.AccessToken == "" {
			return fmt.Errorf("login succeeded but no access token was returned")
		}
		token = resp.AccessToken
	}

	if err := c.state.Auth.SetToken(token); err != nil {
		return err
	}

	info := c.client.UserInfo(ctx)
	if !info.OK {
		if !c.state.Auth.LoggedIn() {
			return fmt.Errorf("token rejected by the backend: %s", info.Msg)
		}
		fmt.Fprintf(c.stdout, "Token saved but verification failed: %s\n", info.Msg)
		return nil
	}
	fmt.Fprintf(c.stdout, "Logged in as %s\n", info.Email)
	return nil
}

// withDomainHint adds the accepted email domains to a login error about the
// email address, when the backend will list them.
func (c *cli) withDomainHint(ctx context.Context, err error) error {
	domains := c.client.AllowedEmailDomains(ctx)
	if !domains.OK || len(domains.AllowedEmailDomains) == 0 {
		return err
	}
	return fmt.Errorf("%w (accepted domains: %s)", err, strings.Join(domains.AllowedEmailDomains, ", "))
}

// explain rewords client errors for the terminal.
func (c *cli) explain(err error) error {
	switch {
	case client.IsIncomplete(err):
		return fmt.Errorf("could not reach %s: %w", c.client.BaseURL(), err)
	case client.IsStatus(err, http.StatusUnauthorized):
		return fmt.Errorf("%w (run: scribe login)", err)
	}
	return err
}

// readPassword reads without echo from a terminal, or a plain line otherwise.
func (c *cli) readPassword(in *bufio.Reader) (string, error) {
	fmt.Fprint(c.stderr, "Password: ")
	if f, ok := c.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(c.stderr)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}
	line, err := in.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (c *cli) runLogout() error {
	if !c.state.Auth.LoggedIn() {
		fmt.Fprintln(c.stdout, "Already logged out.")
		return nil
	}
	if err := c.state.Auth.ForgetToken(); err != nil {
		return fmt.Errorf("remove token: %w", err)
	}
	fmt.Fprintln(c.stdout, "Logged out.")
	return nil
}

func (c *cli) runWhoami(ctx context.Context) error {
	resp := c.client.UserInfo(ctx)
	if err := resp.Err(); err != nil {
		return c.explain(err)
	}
	printUser(c.stdout, resp, c.state.Auth)
	return nil
}

func (c *cli) runJobs(ctx context.Context) error {
	resp := c.client.ListJobs(ctx)
	if err := resp.Err(); err != nil {
		return c.explain(err)
	}
	printJobs(c.stdout, resp.Jobs)
	return nil
}

func (c *cli) runSubmit(ctx context.Context, path string, opts options) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	resp := c.client.SubmitJob(ctx, client.SubmitRequest{
		FileName: filepath.Base(path),
		Content:  f,
		Model:    opts.model,
		Language: opts.language,
	})
	if err := resp.Err(); err != nil {
		return c.explain(err)
	}
	if resp.JobID != nil {
		fmt.Fprintf(c.stdout, "Submitted job %d\n", *resp.JobID)
	} else {
		fmt.Fprintln(c.stdout, resp.Msg)
	}
	return nil
}

func (c *cli) runOpen(route string) error {
	url := browser.RouteURL(c.cfg.WebURL, fragmentRoute(route))
	if err := browser.Open(url); err != nil {
		fmt.Fprintf(c.stdout, "Could not open browser. Visit this URL manually:\n  %s\n", url)
	}
	return nil
}
