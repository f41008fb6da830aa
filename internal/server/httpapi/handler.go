// Package httpapi exposes the REST endpoints and the realtime websocket.
package httpapi

import (
	"context"
	"net/http"
	"net/url"
	"slices"

	"github.com/dmitrijs2005/gophgram/internal/logging"
	"github.com/dmitrijs2005/gophgram/internal/server/media"
	"github.com/dmitrijs2005/gophgram/internal/server/models"
	"github.com/dmitrijs2005/gophgram/internal/server/presence"
	"github.com/dmitrijs2005/gophgram/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
)

type SessionService interface {
	Register(ctx context.Context, username, email, password string) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (string, *models.Profile, error)
	Validate(token string) (string, error)
	Cookie(token string) *http.Cookie
	Invalidate() *http.Cookie
}

type GraphService interface {
	ToggleFollow(ctx context.Context, actorID, targetID string) (bool, error)
}

type ProfileService interface {
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	EditProfile(ctx context.Context, userID string, edit services.ProfileEdit) (*models.User, error)
	Suggested(ctx context.Context, userID string) ([]*models.User, error)
}

type PostService interface {
	Create(ctx context.Context, authorID, caption string, image *media.Object) (*models.Post, error)
	Like(ctx context.Context, userID, postID string) (*models.Post, error)
	Dislike(ctx context.Context, userID, postID string) (*models.Post, error)
}

// Options tune the websocket endpoint and uploads.
type Options struct {
	// RequireToken makes the websocket handshake check that a valid session
	// token belongs to the claimed userId.
	RequireToken bool
	// AllowedOrigins lists browser origins allowed to open the websocket in
	// addition to the server's own.
	AllowedOrigins []string
	// MaxUploadBytes caps multipart bodies.
	MaxUploadBytes int64
}

type Handler struct {
	sessions SessionService
	graph    GraphService
	profiles ProfileService
	posts    PostService
	hub      *presence.Hub
	logger   logging.Logger
	opts     Options
	upgrader websocket.Upgrader
}

func NewHandler(sessions SessionService, graph GraphService, profiles ProfileService, posts PostService,
	hub *presence.Hub, logger logging.Logger, opts Options) *Handler {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	h := &Handler{
		sessions: sessions,
		graph:    graph,
		profiles: profiles,
		posts:    posts,
		hub:      hub,
		logger:   logger.With("module", "http"),
		opts:     opts,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// Router wires every route.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(h.logger))
	r.Use(middleware.Recoverer)

	r.Post("/login", h.Login)
	r.Get("/logout", h.Logout)
	r.With(h.authMiddleware).Post("/follow/{id}", h.FollowOrUnfollow)
	r.Get("/ws", h.Websocket)

	r.Route("/api/v1/user", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Get("/logout", h.Logout)

		r.Group(func(r chi.Router) {
			r.Use(h.authMiddleware)
			r.Post("/followorunfollow/{id}", h.FollowOrUnfollow)
			r.Get("/{id}/profile", h.GetProfile)
			r.Post("/profile/edit", h.EditProfile)
			r.Get("/suggested", h.Suggested)
			r.Get("/online", h.Online)
		})
	})

	r.Route("/api/v1/post", func(r chi.Router) {
		r.Use(h.authMiddleware)
		r.Post("/addpost", h.AddPost)
		r.Get("/{id}/like", h.Like)
		r.Get("/{id}/dislike", h.Dislike)
	})

	return r
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if slices.Contains(h.opts.AllowedOrigins, origin) {
		return true
	}
	u, err := url.Parse(origin)
	return err == nil && u.Host == r.Host
}
