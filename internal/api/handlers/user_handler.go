package handlers

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/isdelr/placeit-be/internal/auth"
	"github.com/isdelr/placeit-be/internal/httpx"
	"github.com/isdelr/placeit-be/internal/services"
)

// AuthTokenHeader carries the issued token on a successful login.
const AuthTokenHeader = "auth-token"

// UserHandler handles HTTP requests for registration and login.
type UserHandler struct {
	service      services.UserServiceProvider
	tokenTTL     time.Duration
	secureCookie bool
}

// NewUserHandler creates a new UserHandler. secureCookie marks the session
// cookie Secure and should be set in production.
func NewUserHandler(service services.UserServiceProvider, tokenTTL time.Duration, secureCookie bool) *UserHandler {
	return &UserHandler{service: service, tokenTTL: tokenTTL, secureCookie: secureCookie}
}

// AuthPayload defines the structure for register and login requests.
type AuthPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles new user registration.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload AuthPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Message(w, http.StatusBadRequest, services.MsgCredentialsRequired)
		return
	}

	if _, err := h.service.Register(r.Context(), payload.Email, payload.Password); err != nil {
		respondError(w, r, err)
		return
	}

	httpx.Message(w, http.StatusCreated, services.MsgRegistered)
}

// Login handles user authentication and JWT generation.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload AuthPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Message(w, http.StatusBadRequest, services.MsgInvalidCredentials)
		return
	}

	result, err := h.service.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		if statusFor(err) == http.StatusBadRequest {
			log.Warn().Str("email", services.NormalizeEmail(payload.Email)).Msg("Failed authentication attempt")
		}
		respondError(w, r, err)
		return
	}

	setSessionCookie(w, result.Token, h.tokenTTL, h.secureCookie)
	w.Header().Set(AuthTokenHeader, result.Token)
	httpx.JSON(w, http.StatusOK, result)
}

// Logout expires the session cookie. Tokens themselves stay valid until
// they expire.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	clearSessionCookie(w, h.secureCookie)
	httpx.Message(w, http.StatusOK, "Logged out.")
}

// GetMe retrieves the currently authenticated user from the token.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		log.Error().Msg("Could not retrieve user claims from context")
		httpx.Message(w, http.StatusUnauthorized, "Missing auth token")
		return
	}

	user, err := h.service.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, user.Public())
}

func setSessionCookie(w http.ResponseWriter, token string, ttl time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
	})
}

func clearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
	})
}
