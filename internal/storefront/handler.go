package storefront

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/noah-isme/toko-storefront/internal/cart"
	"github.com/noah-isme/toko-storefront/internal/catalog"
	"github.com/noah-isme/toko-storefront/internal/common"
	"github.com/noah-isme/toko-storefront/internal/security"
	"github.com/noah-isme/toko-storefront/internal/session"
	"github.com/noah-isme/toko-storefront/internal/view"
)

// DefaultSessionCookie names the cookie carrying the workspace id.
const DefaultSessionCookie = "toko_session"

var errNoSession = common.Internal("session not resolved", nil)

// Handler wires visitor workspaces to HTTP.
type Handler struct {
	Store      *session.Store
	Catalog    *catalog.Catalog
	Dispatcher *cart.Dispatcher
	View       *view.Renderer
	Logger     zerolog.Logger

	CookieName   string
	CookieSecure bool
	NoticeTTL    time.Duration

	// Writes wraps every mutation route, e.g. idempotency.
	Writes []func(http.Handler) http.Handler
	// ReviewLimit wraps POST /reviews.
	ReviewLimit func(http.Handler) http.Handler
}

type workspaceCtxKey struct{}

// Routes mounts the storefront on r.
func (h *Handler) Routes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.Session)
		r.Get("/", h.Page)
		r.Get("/cart.json", h.CartJSON)

		r.Group(func(r chi.Router) {
			r.Use(h.Writes...)
			r.Post("/cart/items", h.AddItem)
			r.Post("/cart/items/{id}/increment", h.Increment)
			r.Post("/cart/items/{id}/decrement", h.Decrement)
			r.Post("/cart/items/{id}/remove", h.Remove)
			r.Post("/cart/items/increment", h.Increment)
			r.Post("/cart/items/decrement", h.Decrement)
			r.Post("/cart/items/remove", h.Remove)
			r.Post("/cart/summary", h.Summary)
			r.Post("/cart/clear", h.Clear)
			r.Post("/cart/checkout", h.Checkout)
			r.Post("/cart/order", h.ViewOrder)
			r.Post("/cart/toggle", h.Toggle)
			if h.ReviewLimit != nil {
				r.With(h.ReviewLimit).Post("/reviews", h.SubmitReview)
			} else {
				r.Post("/reviews", h.SubmitReview)
			}
		})
	})
}

// Session resolves the visitor workspace from the session cookie. Safe
// requests without a live session are served from a transient workspace and
// get no cookie; the first mutation creates and keeps the workspace.
func (h *Handler) Session(next http.Handler) http.Handler {
	name := h.cookieName()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var ws *session.Workspace
		if c, err := r.Cookie(name); err == nil {
			if id := strings.TrimSpace(c.Value); id != "" {
				ws, _ = h.Store.Get(id)
			}
		}
		switch {
		case ws != nil:
		case isSafeMethod(r.Method):
			ws = h.Store.Transient()
		default:
			ws = h.Store.Create()
			http.SetCookie(w, &http.Cookie{
				Name:     name,
				Value:    ws.ID,
				Path:     "/",
				HttpOnly: true,
				Secure:   h.CookieSecure,
				SameSite: http.SameSiteLaxMode,
			})
			h.Logger.Debug().Str("session_id", ws.ID).Msg("session created")
		}
		ctx := r.Context()
		if ws.ID != "" {
			ctx = common.WithSessionID(ctx, ws.ID)
		}
		ctx = context.WithValue(ctx, workspaceCtxKey{}, ws)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

func workspaceFrom(ctx context.Context) *session.Workspace {
	ws, _ := ctx.Value(workspaceCtxKey{}).(*session.Workspace)
	return ws
}

// Page renders the storefront.
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())
	if ws == nil {
		common.WriteError(w, errNoSession)
		return
	}
	page := view.Page{
		Products:    h.View.Cards(h.Catalog.List()),
		NoticeTTLMS: h.noticeTTL().Milliseconds(),
		CSRFToken:   security.Token(r.Context()),
	}
	now := h.Store.Now()
	ws.Do(now, func(ws *session.Workspace) {
		page.Cart = ws.Rendered()
		page.Reviews = ws.Reviews.List()
		if len(page.Reviews) > 0 {
			page.FreshReview = now.Sub(page.Reviews[0].SubmittedAt) < h.noticeTTL()
		}
		page.Notice, _ = ws.Banner.Current()
		if d, ok := ws.TakeDialog(); ok {
			page.Dialog = &d
		}
	})

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := h.View.Page(w, page); err != nil {
		h.Logger.Error().Err(err).Str("session_id", ws.ID).Msg("render page")
	}
}

// CartJSON returns the current cart snapshot.
func (h *Handler) CartJSON(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())
	if ws == nil {
		common.WriteError(w, errNoSession)
		return
	}
	var snap cart.Snapshot
	ws.Do(h.Store.Now(), func(ws *session.Workspace) {
		snap = ws.Cart.Snapshot()
	})
	common.Data(w, http.StatusOK, snap, nil)
}

func (h *Handler) cookieName() string {
	if n := strings.TrimSpace(h.CookieName); n != "" {
		return n
	}
	return DefaultSessionCookie
}

func (h *Handler) noticeTTL() time.Duration {
	if h.NoticeTTL <= 0 {
		return 3 * time.Second
	}
	return h.NoticeTTL
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
