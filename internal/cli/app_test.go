package cli

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isdelr/placeit-be/internal/client"
	"github.com/isdelr/placeit-be/internal/models"
	"github.com/isdelr/placeit-be/internal/session"
)

type fakeAPI struct {
	regEmail, regPass string
	loginErr          error
	meErr             error
	searchQuery       string
	analyzeReq        models.PredictionRequest
	tokens            []string
}

func (f *fakeAPI) Register(_ context.Context, email, password string) (string, error) {
	f.regEmail, f.regPass = email, password
	return "User registered successfully.", nil
}

func (f *fakeAPI) Login(_ context.Context, email, _ string) (client.LoginResponse, error) {
	if f.loginErr != nil {
		return client.LoginResponse{}, f.loginErr
	}
	return client.LoginResponse{Token: "tok", User: models.PublicUser{ID: "u1", Email: email}}, nil
}

func (f *fakeAPI) Me(_ context.Context, token string) (models.PublicUser, error) {
	f.tokens = append(f.tokens, token)
	if f.meErr != nil {
		return models.PublicUser{}, f.meErr
	}
	return models.PublicUser{ID: "u1", Email: "a@x.io"}, nil
}

func (f *fakeAPI) Search(_ context.Context, token, query string) (models.SearchResult, error) {
	f.tokens = append(f.tokens, token)
	f.searchQuery = query
	return models.SearchResult{
		Location: models.Location{Lat: 51.5, Lng: -0.12, Name: "London"},
		Warning:  "outside the supported region",
	}, nil
}

func (f *fakeAPI) Analyze(_ context.Context, token string, req models.PredictionRequest) (models.AnalysisResult, error) {
	f.tokens = append(f.tokens, token)
	f.analyzeReq = req
	return models.AnalysisResult{
		Markers: []models.Marker{
			{Lat: 1, Lng: 2, Suitable: true, Status: "Suitable", Label: "Cafe", ScorePercent: 91},
			{Lat: 3, Lng: 4, Status: "Not Suitable", Label: "Analyzed Point", ScorePercent: 12},
		},
		SuitableCount: 1,
		Total:         2,
	}, nil
}

func newTestApp(t *testing.T, api API, stdin string) (*App, *session.FileStore, *bytes.Buffer) {
	t.Helper()
	store := session.NewFileStore(filepath.Join(t.TempDir(), session.FileName))
	out := &bytes.Buffer{}
	isTerminal = func(int) bool { return false }
	t.Cleanup(func() { isTerminal = defaultIsTerminal })
	return NewApp(api, store, strings.NewReader(stdin), out), store, out
}

var defaultIsTerminal = isTerminal

func TestRegisterPromptsForMissingInput(t *testing.T) {
	api := &fakeAPI{}
	app, store, out := newTestApp(t, api, "a@x.io\nsecret1\n")

	require.NoError(t, app.Run(context.Background(), []string{"register"}))
	assert.Equal(t, "a@x.io", api.regEmail)
	assert.Equal(t, "secret1", api.regPass)
	assert.Contains(t, out.String(), "User registered successfully.")

	// registration never signs in
	s, err := store.Load()
	require.NoError(t, err)
	assert.False(t, s.Authenticated())
}

func TestPasswordFromTerminal(t *testing.T) {
	api := &fakeAPI{}
	app, _, _ := newTestApp(t, api, "")
	isTerminal = func(int) bool { return true }
	orig := readPassword
	readPassword = func(int) ([]byte, error) { return []byte("hunter22"), nil }
	defer func() { readPassword = orig }()

	require.NoError(t, app.Run(context.Background(), []string{"register", "-email", "t@x.io"}))
	assert.Equal(t, "hunter22", api.regPass)
}

func TestLoginPersistsSession(t *testing.T) {
	api := &fakeAPI{}
	app, store, out := newTestApp(t, api, "")

	require.NoError(t, app.Run(context.Background(), []string{"login", "-email", "a@x.io", "-password", "secret1"}))
	assert.Contains(t, out.String(), "Logged in as a@x.io")

	s, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok", s.Token)
	require.NotNil(t, s.User)
	assert.Equal(t, session.ProviderPassword, s.User.Provider)

	require.NoError(t, app.Run(context.Background(), []string{"whoami"}))
	assert.Equal(t, []string{"tok"}, api.tokens)

	require.NoError(t, app.Run(context.Background(), []string{"logout"}))
	s, err = store.Load()
	require.NoError(t, err)
	assert.False(t, s.Authenticated())
	assert.Nil(t, s.User)
}

func TestPipedPasswordKeepsSurroundingSpaces(t *testing.T) {
	api := &fakeAPI{}
	app, _, _ := newTestApp(t, api, "  spaced pass \r\n")

	require.NoError(t, app.Run(context.Background(), []string{"register", "-email", "s@x.io"}))
	assert.Equal(t, "  spaced pass ", api.regPass)
}

func TestLoginWithProvider(t *testing.T) {
	api := &fakeAPI{}
	app, store, out := newTestApp(t, api, "")
	require.NoError(t, store.Save(session.State{Token: "old", User: &session.Identity{ID: "u1", Provider: session.ProviderPassword}}))

	require.NoError(t, app.Run(context.Background(), []string{"login", "-provider", "-email", " G@Mail.com", "-id", "g-42"}))
	assert.Contains(t, out.String(), "Signed in as g@mail.com (identity-provider)")

	s, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, s.Token, "a provider sign-in replaces the password token")
	require.NotNil(t, s.User)
	assert.Equal(t, session.Identity{ID: "g-42", Email: "g@mail.com", Provider: session.ProviderIdentityProvider}, *s.User)

	out.Reset()
	require.NoError(t, app.Run(context.Background(), []string{"whoami"}))
	assert.Contains(t, out.String(), "g@mail.com (identity-provider)")

	for _, cmd := range []string{"search", "analyze"} {
		err := app.Run(context.Background(), []string{cmd, "Puri"})
		assert.ErrorIs(t, err, ErrPasswordLoginRequired, cmd)
	}
	assert.Empty(t, api.tokens, "provider sessions hold no token to send")
}

func TestLoginWithProviderDefaultsIDToEmail(t *testing.T) {
	app, store, _ := newTestApp(t, &fakeAPI{}, "p@x.io\n")

	require.NoError(t, app.Run(context.Background(), []string{"login", "-provider"}))
	s, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, s.User)
	assert.Equal(t, "p@x.io", s.User.ID)
	assert.True(t, s.Authenticated())
}

func TestLoginFailureKeepsSignedOut(t *testing.T) {
	api := &fakeAPI{loginErr: &client.APIError{Status: http.StatusBadRequest, Message: "Invalid email or password."}}
	app, store, _ := newTestApp(t, api, "")

	err := app.Run(context.Background(), []string{"login", "-email", "a@x.io", "-password", "nope123"})
	require.Error(t, err)
	assert.Equal(t, "Invalid email or password.", err.Error())

	s, err := store.Load()
	require.NoError(t, err)
	assert.False(t, s.Authenticated())
}

func TestProtectedCommandsAreGated(t *testing.T) {
	api := &fakeAPI{}
	app, _, _ := newTestApp(t, api, "")

	for _, cmd := range []string{"whoami", "search", "analyze"} {
		err := app.Run(context.Background(), []string{cmd, "Puri"})
		assert.ErrorIs(t, err, ErrNotSignedIn, cmd)
	}
	assert.Empty(t, api.tokens, "no API call may happen without a session")
}

func TestAnalyzeWithQuery(t *testing.T) {
	api := &fakeAPI{}
	app, store, out := newTestApp(t, api, "")
	require.NoError(t, store.Save(session.State{Token: "tok", User: &session.Identity{ID: "u1", Email: "a@x.io", Provider: session.ProviderPassword}}))

	require.NoError(t, app.Run(context.Background(), []string{"analyze", "-radius", "4", "London", "UK"}))
	assert.Equal(t, "London UK", api.searchQuery)
	assert.Equal(t, models.PredictionRequest{Latitude: 51.5, Longitude: -0.12, RadiusKm: 4}, api.analyzeReq)

	text := out.String()
	assert.Contains(t, text, "Warning: outside the supported region")
	assert.Contains(t, text, "Analysis Complete! 1 suitable found out of 2 points.")
	assert.Contains(t, text, "[+] Suitable")
	assert.Contains(t, text, "91%")
}

func TestAnalyzeDefaultsToDefaultLocation(t *testing.T) {
	api := &fakeAPI{}
	app, store, _ := newTestApp(t, api, "")
	require.NoError(t, store.Save(session.State{Token: "tok", User: &session.Identity{ID: "u1", Provider: session.ProviderPassword}}))

	require.NoError(t, app.Run(context.Background(), []string{"analyze"}))
	assert.Equal(t, 20.2961, api.analyzeReq.Latitude)
	assert.Equal(t, 85.8245, api.analyzeReq.Longitude)
	assert.Equal(t, 2.5, api.analyzeReq.RadiusKm)
}

func TestExpiredTokenSignsOut(t *testing.T) {
	api := &fakeAPI{meErr: &client.APIError{Status: http.StatusUnauthorized, Message: "Invalid auth token"}}
	app, store, _ := newTestApp(t, api, "")
	require.NoError(t, store.Save(session.State{Token: "old", Theme: session.ThemeDark, User: &session.Identity{ID: "u1", Provider: session.ProviderPassword}}))

	err := app.Run(context.Background(), []string{"whoami"})
	assert.ErrorIs(t, err, ErrNotSignedIn)

	s, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, s.Token)
	assert.Equal(t, session.ThemeDark, s.Theme)
}

func TestThemeToggle(t *testing.T) {
	app, store, out := newTestApp(t, &fakeAPI{}, "")

	require.NoError(t, app.Run(context.Background(), []string{"theme"}))
	assert.Contains(t, out.String(), "Theme: dark")
	s, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, session.ThemeDark, s.Theme)
}

func TestUnknownCommand(t *testing.T) {
	app, _, out := newTestApp(t, &fakeAPI{}, "")
	assert.Error(t, app.Run(context.Background(), []string{"dance"}))
	assert.Contains(t, out.String(), "Commands:")

	out.Reset()
	require.NoError(t, app.Run(context.Background(), nil))
	assert.Contains(t, out.String(), "analyze")
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PLACEIT_SERVER", "http://env:5000")
	t.Setenv("PLACEIT_SESSION_FILE", filepath.Join(dir, "env.json"))
	path := filepath.Join(dir, "s.json")

	cfg, rest, err := LoadConfig([]string{"-session", path, "search", "Puri"}, os.Stderr)
	require.NoError(t, err)
	assert.Equal(t, "http://env:5000", cfg.Server)
	assert.Equal(t, path, cfg.SessionFile)
	assert.Equal(t, []string{"search", "Puri"}, rest)

	cfg, _, err = LoadConfig([]string{"-server", "http://flag:1"}, os.Stderr)
	require.NoError(t, err)
	assert.Equal(t, "http://flag:1", cfg.Server)
	assert.Equal(t, filepath.Join(dir, "env.json"), cfg.SessionFile)
}
