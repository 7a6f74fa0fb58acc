package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/isdelr/placeit-be/internal/auth"
	"github.com/isdelr/placeit-be/internal/geo"
	"github.com/isdelr/placeit-be/internal/maps"
	"github.com/isdelr/placeit-be/internal/models"
	"github.com/isdelr/placeit-be/internal/services"
	"github.com/isdelr/placeit-be/internal/web"
)

// ThemeCookie stores the light/dark preference of the web shell.
const ThemeCookie = "theme"

// WebHandler serves the server-rendered routing shell.
type WebHandler struct {
	renderer     *web.Renderer
	users        services.UserServiceProvider
	analysis     services.AnalysisServiceProvider
	tokens       *auth.TokenManager
	secureCookie bool
}

// NewWebHandler creates a new WebHandler.
func NewWebHandler(renderer *web.Renderer, users services.UserServiceProvider, analysis services.AnalysisServiceProvider, tokens *auth.TokenManager, secureCookie bool) *WebHandler {
	return &WebHandler{
		renderer:     renderer,
		users:        users,
		analysis:     analysis,
		tokens:       tokens,
		secureCookie: secureCookie,
	}
}

// Landing renders the landing page.
func (h *WebHandler) Landing(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, web.PageLanding, h.pageData(r, "Welcome"))
}

// About renders the about page.
func (h *WebHandler) About(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, web.PageAbout, h.pageData(r, "About"))
}

// LoginForm renders the login page.
func (h *WebHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	data := h.pageData(r, "Login")
	if r.URL.Query().Get("registered") != "" {
		data.Notice = services.MsgRegistered + " Please log in."
	}
	h.render(w, r, web.PageLogin, data)
}

// Login authenticates the form credentials and redirects to the home page.
func (h *WebHandler) Login(w http.ResponseWriter, r *http.Request) {
	email, password := r.PostFormValue("email"), r.PostFormValue("password")

	result, err := h.users.Login(r.Context(), email, password)
	if err != nil {
		data := h.pageData(r, "Login")
		data.FormEmail = email
		data.Error = errorText(err)
		h.renderStatus(w, r, statusFor(err), web.PageLogin, data)
		return
	}

	setSessionCookie(w, result.Token, h.tokens.TTL(), h.secureCookie)
	http.Redirect(w, r, "/home", http.StatusSeeOther)
}

// RegisterForm renders the registration page.
func (h *WebHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, web.PageRegister, h.pageData(r, "Register"))
}

// Register creates the account and sends the user on to the login page.
func (h *WebHandler) Register(w http.ResponseWriter, r *http.Request) {
	email, password := r.PostFormValue("email"), r.PostFormValue("password")

	if _, err := h.users.Register(r.Context(), email, password); err != nil {
		data := h.pageData(r, "Register")
		data.FormEmail = email
		data.Error = errorText(err)
		h.renderStatus(w, r, statusFor(err), web.PageRegister, data)
		return
	}

	http.Redirect(w, r, "/login?registered=1", http.StatusSeeOther)
}

// Logout clears the session cookie and returns to the landing page.
func (h *WebHandler) Logout(w http.ResponseWriter, r *http.Request) {
	clearSessionCookie(w, h.secureCookie)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Home renders the analysis page. It requires a valid session cookie;
// anyone else is sent to the landing page.
func (h *WebHandler) Home(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.sessionClaims(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	data := h.pageData(r, "Home")
	data.Email = claims.Email
	data.Center = geo.DefaultLocation
	data.Radius = geo.DefaultRadiusKm
	data.Query = strings.TrimSpace(r.URL.Query().Get("q"))

	if v := r.URL.Query().Get("radius"); v != "" {
		radius, err := strconv.ParseFloat(v, 64)
		if err != nil {
			data.Error = "Radius must be a number."
			h.render(w, r, web.PageHome, data)
			return
		}
		data.Radius = radius
	}

	if data.Query != "" {
		found, err := h.analysis.Search(r.Context(), data.Query)
		if err != nil {
			data.Error = errorText(err)
			h.render(w, r, web.PageHome, data)
			return
		}
		data.Center = found.Location
		data.Warning = found.Warning

		result, err := h.analysis.Analyze(r.Context(), claims.UserID, models.PredictionRequest{
			Latitude:  found.Location.Lat,
			Longitude: found.Location.Lng,
			RadiusKm:  data.Radius,
		})
		if err != nil {
			data.Error = errorText(err)
		} else {
			data.Result = &result
			data.Summary = maps.SummaryText(result.SuitableCount, result.Total)
		}
	}

	h.render(w, r, web.PageHome, data)
}

// ToggleTheme flips the theme cookie and goes back to the page it came from.
func (h *WebHandler) ToggleTheme(w http.ResponseWriter, r *http.Request) {
	next := web.ThemeDark
	if themeOf(r) == web.ThemeDark {
		next = web.ThemeLight
	}
	http.SetCookie(w, &http.Cookie{
		Name:     ThemeCookie,
		Value:    next,
		Expires:  time.Now().AddDate(1, 0, 0),
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
	})
	http.Redirect(w, r, backTo(r), http.StatusSeeOther)
}

func (h *WebHandler) pageData(r *http.Request, title string) web.PageData {
	data := web.PageData{Title: title, Theme: themeOf(r)}
	if claims, ok := h.sessionClaims(r); ok {
		data.Email = claims.Email
	}
	return data
}

func (h *WebHandler) sessionClaims(r *http.Request) (*auth.Claims, bool) {
	cookie, err := r.Cookie(auth.CookieName)
	if err != nil || cookie.Value == "" {
		return nil, false
	}
	claims, err := h.tokens.ValidateJWT(cookie.Value)
	if err != nil {
		return nil, false
	}
	return claims, true
}

func (h *WebHandler) render(w http.ResponseWriter, r *http.Request, page string, data web.PageData) {
	h.renderStatus(w, r, http.StatusOK, page, data)
}

func (h *WebHandler) renderStatus(w http.ResponseWriter, r *http.Request, status int, page string, data web.PageData) {
	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, page, data); err != nil {
		log.Error().Err(err).Str("page", page).Str("path", r.URL.Path).Msg("Failed to render page")
		http.Error(w, MsgInternal, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func themeOf(r *http.Request) string {
	if c, err := r.Cookie(ThemeCookie); err == nil && c.Value == web.ThemeDark {
		return web.ThemeDark
	}
	return web.ThemeLight
}

// backTo returns the local path of the Referer, or "/".
func backTo(r *http.Request) string {
	ref, err := url.Parse(r.Referer())
	if err != nil || ref.Path == "" || (ref.Host != "" && ref.Host != r.Host) {
		return "/"
	}
	if ref.RawQuery != "" {
		return ref.Path + "?" + ref.RawQuery
	}
	return ref.Path
}

func errorText(err error) string {
	var ce *services.ClientError
	if errors.As(err, &ce) {
		return ce.Message
	}
	log.Error().Err(err).Msg("Web request failed")
	return MsgInternal
}
