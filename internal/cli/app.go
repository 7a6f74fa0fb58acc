// Package cli implements the placeit terminal client.
package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/isdelr/placeit-be/internal/client"
	"github.com/isdelr/placeit-be/internal/geo"
	"github.com/isdelr/placeit-be/internal/maps"
	"github.com/isdelr/placeit-be/internal/models"
	"github.com/isdelr/placeit-be/internal/session"
)

var (
	// ErrNotSignedIn is returned by commands that need a session when there is none.
	ErrNotSignedIn = errors.New("please log in first")
	// ErrPasswordLoginRequired is returned when an identity-provider session
	// tries to call an API that only accepts server-issued tokens.
	ErrPasswordLoginRequired = errors.New("this command needs a password login; run: placeit login")
)

// API is the server surface the CLI uses.
type API interface {
	Register(ctx context.Context, email, password string) (string, error)
	Login(ctx context.Context, email, password string) (client.LoginResponse, error)
	Me(ctx context.Context, token string) (models.PublicUser, error)
	Search(ctx context.Context, token, query string) (models.SearchResult, error)
	Analyze(ctx context.Context, token string, req models.PredictionRequest) (models.AnalysisResult, error)
}

// SessionStore persists the client session between runs.
type SessionStore interface {
	Load() (session.State, error)
	Save(session.State) error
}

// App is the terminal client. It owns one session.State for the duration of
// a command.
type App struct {
	api      API
	sessions SessionStore
	state    session.State
	reader   *bufio.Reader
	out      io.Writer
}

// NewApp creates an App reading prompts from in and writing to out.
func NewApp(api API, sessions SessionStore, in io.Reader, out io.Writer) *App {
	return &App{
		api:      api,
		sessions: sessions,
		reader:   bufio.NewReader(in),
		out:      out,
	}
}

type command struct {
	name      string
	usage     string
	protected bool
	run       func(a *App, ctx context.Context, args []string) error
}

const searchUsage = "search QUERY"

var commands = map[string]command{
	"register": {name: "register", usage: "register [-email EMAIL] [-password PASSWORD]", run: (*App).Register},
	"login":    {name: "login", usage: "login [-email EMAIL] [-password PASSWORD | -provider [-id ID]]", run: (*App).Login},
	"logout":   {name: "logout", usage: "logout", run: (*App).Logout},
	"whoami":   {name: "whoami", usage: "whoami", protected: true, run: (*App).WhoAmI},
	"search":   {name: "search", usage: searchUsage, protected: true, run: (*App).Search},
	"analyze":  {name: "analyze", usage: "analyze [-radius KM] [-lat LAT -lng LNG | QUERY]", protected: true, run: (*App).Analyze},
	"theme":    {name: "theme", usage: "theme", run: (*App).Theme},
}

// Run loads the session, dispatches args[0] and saves the session again.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		a.usage()
		return nil
	}
	cmd, ok := commands[args[0]]
	if !ok {
		a.usage()
		return fmt.Errorf("unknown command %q", args[0])
	}

	state, err := a.sessions.Load()
	if err != nil {
		return err
	}
	a.state = state

	if cmd.protected {
		if to := a.state.Gate(session.HomePath); to != "" {
			return ErrNotSignedIn
		}
	}

	runErr := cmd.run(a, ctx, args[1:])
	var apiErr *client.APIError
	if errors.As(runErr, &apiErr) && apiErr.Status == http.StatusUnauthorized {
		log.Debug().Err(runErr).Msg("Server rejected the session token")
		a.state.SignOut()
		runErr = fmt.Errorf("%w: session expired", ErrNotSignedIn)
	}

	if err := a.sessions.Save(a.state); err != nil {
		return errors.Join(runErr, err)
	}
	return runErr
}

func (a *App) usage() {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintln(a.out, "Usage: placeit [-server URL] [-session FILE] COMMAND [ARGS]")
	fmt.Fprintln(a.out, "Commands:")
	for _, name := range names {
		fmt.Fprintf(a.out, "  %s\n", commands[name].usage)
	}
}

func (a *App) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.out)
	return fs
}

func (a *App) credentials(email, password string) (string, string, error) {
	var err error
	if email == "" {
		if email, err = promptLine(a.reader, a.out, "Email"); err != nil {
			return "", "", err
		}
	}
	if password == "" {
		if password, err = promptPassword(a.reader, a.out); err != nil {
			return "", "", err
		}
	}
	return email, password, nil
}

// Register creates an account. It does not sign in.
func (a *App) Register(ctx context.Context, args []string) error {
	fs := a.flagSet("register")
	emailFlag := fs.String("email", "", "account email")
	passwordFlag := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	email, password, err := a.credentials(*emailFlag, *passwordFlag)
	if err != nil {
		return err
	}
	msg, err := a.api.Register(ctx, email, password)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, msg)
	return nil
}

// Login signs in with email and password and stores the token. With
// -provider it records an identity already established with the third-party
// identity provider instead; no server token is held in that case.
func (a *App) Login(ctx context.Context, args []string) error {
	fs := a.flagSet("login")
	emailFlag := fs.String("email", "", "account email")
	passwordFlag := fs.String("password", "", "account password")
	provider := fs.Bool("provider", false, "sign in with the identity provider")
	id := fs.String("id", "", "identity provider user id (defaults to the email)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *provider {
		return a.loginWithProvider(*emailFlag, *id)
	}

	email, password, err := a.credentials(*emailFlag, *passwordFlag)
	if err != nil {
		return err
	}
	res, err := a.api.Login(ctx, email, password)
	if err != nil {
		return err
	}
	a.state.SignInWithPassword(res.Token, res.User)
	fmt.Fprintf(a.out, "Logged in as %s\n", res.User.Email)
	return nil
}

func (a *App) loginWithProvider(email, id string) error {
	var err error
	if email == "" {
		if email, err = promptLine(a.reader, a.out, "Email"); err != nil {
			return err
		}
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return errors.New("an email is required")
	}
	if id == "" {
		id = email
	}
	a.state.SignInWithProvider(session.Identity{ID: id, Email: email})
	fmt.Fprintf(a.out, "Signed in as %s (%s)\n", email, session.ProviderIdentityProvider)
	return nil
}

// requireToken refuses API calls for sessions without a server token.
func (a *App) requireToken() error {
	if a.state.Token == "" {
		return ErrPasswordLoginRequired
	}
	return nil
}

// Logout forgets the identity and the token.
func (a *App) Logout(_ context.Context, _ []string) error {
	a.state.SignOut()
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

// WhoAmI prints the signed-in user, confirmed by the server when a token is held.
func (a *App) WhoAmI(ctx context.Context, _ []string) error {
	if a.state.Token == "" {
		fmt.Fprintf(a.out, "%s (%s)\n", a.state.User.Email, a.state.User.Provider)
		return nil
	}
	user, err := a.api.Me(ctx, a.state.Token)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s (id %s)\n", user.Email, user.ID)
	return nil
}

// Search geocodes the query and prints the location.
func (a *App) Search(ctx context.Context, args []string) error {
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return errors.New("usage: " + searchUsage)
	}
	if err := a.requireToken(); err != nil {
		return err
	}
	res, err := a.api.Search(ctx, a.state.Token, query)
	if err != nil {
		return err
	}
	a.printLocation(res.Location, res.Warning)
	return nil
}

// Analyze scores points around a searched place or explicit coordinates.
func (a *App) Analyze(ctx context.Context, args []string) error {
	fs := a.flagSet("analyze")
	radius := fs.Float64("radius", geo.DefaultRadiusKm, "radius in km")
	lat := fs.Float64("lat", geo.DefaultLocation.Lat, "centre latitude")
	lng := fs.Float64("lng", geo.DefaultLocation.Lng, "centre longitude")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := a.requireToken(); err != nil {
		return err
	}

	center := models.Location{Lat: *lat, Lng: *lng}
	if query := strings.TrimSpace(strings.Join(fs.Args(), " ")); query != "" {
		res, err := a.api.Search(ctx, a.state.Token, query)
		if err != nil {
			return err
		}
		center = res.Location
	}

	result, err := a.api.Analyze(ctx, a.state.Token, models.PredictionRequest{
		Latitude:  center.Lat,
		Longitude: center.Lng,
		RadiusKm:  *radius,
	})
	if err != nil {
		return err
	}

	if center.Name == "" {
		center.Name = fmt.Sprintf("%.4f, %.4f", center.Lat, center.Lng)
	}
	a.printLocation(center, result.Warning)
	fmt.Fprintln(a.out, maps.SummaryText(result.SuitableCount, result.Total))
	for _, m := range result.Markers {
		fmt.Fprintf(a.out, "  [%s] %-13s %3d%%  %.5f, %.5f  %s\n",
			mark(m.Suitable), m.Status, m.ScorePercent, m.Lat, m.Lng, m.Label)
	}
	return nil
}

// Theme toggles the stored display theme.
func (a *App) Theme(_ context.Context, _ []string) error {
	fmt.Fprintf(a.out, "Theme: %s\n", a.state.ToggleTheme())
	return nil
}

func (a *App) printLocation(loc models.Location, warning string) {
	fmt.Fprintf(a.out, "%s (%.4f, %.4f)\n", loc.Name, loc.Lat, loc.Lng)
	if warning != "" {
		fmt.Fprintf(a.out, "Warning: %s\n", warning)
	}
}

func mark(suitable bool) string {
	if suitable {
		return "+"
	}
	return "-"
}
