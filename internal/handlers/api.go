package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"

	"taskdeck/internal/auth"
	"taskdeck/internal/bus"
	"taskdeck/internal/models"
	"taskdeck/internal/store"
)

// authCookieName is the cookie carrying the signed session token.
const authCookieName = "authToken"

// Config controls cookie attributes and CORS behaviour for the API.
type Config struct {
	AllowedOrigins []string
	CookieDomain   string
	CookieSecure   bool
	RateLimit      int
}

// API wires the store, token manager, and optional event bus for the
// HTTP handlers.
type API struct {
	store  *store.Store
	tokens *auth.TokenManager
	bus    *bus.Bus
	config Config
}

// New initialises the API layer.
func New(st *store.Store, tokens *auth.TokenManager, eventBus *bus.Bus, cfg Config) (*API, error) {
	if st == nil {
		return nil, errors.New("store is required")
	}
	if tokens == nil {
		return nil, errors.New("token manager is required")
	}
	return &API{store: st, tokens: tokens, bus: eventBus, config: cfg}, nil
}

// audit records an audit trail entry for a completed mutation. Failures
// are logged and never fail the request.
func (a *API) audit(ctx context.Context, actorID uint, action, targetType string, targetID uint, meta map[string]any) {
	entry := models.AuditLog{
		ActorID:    actorID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
	}
	if meta != nil {
		if data, err := json.Marshal(meta); err == nil {
			entry.Metadata = datatypes.JSON(data)
		}
	}
	if err := a.store.CreateAuditLog(ctx, &entry); err != nil {
		log.Warn().Err(err).Str("action", action).Msg("record audit log")
	}
}

// setAuthCookie attaches a freshly minted token as an HTTP-only cookie
// whose max-age matches the token's expiry.
func (a *API) setAuthCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    token,
		Path:     "/",
		Domain:   a.config.CookieDomain,
		MaxAge:   int(a.tokens.TTL() / time.Second),
		HttpOnly: true,
		Secure:   a.config.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}

// clearAuthCookie expires the auth cookie on the client. The token itself
// stays cryptographically valid until its natural expiry.
func (a *API) clearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    "",
		Path:     "/",
		Domain:   a.config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.config.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}
