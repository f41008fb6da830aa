package httpapi

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/dmitrijs2005/gophgram/internal/common"
	"github.com/dmitrijs2005/gophgram/internal/server/media"
	"github.com/dmitrijs2005/gophgram/internal/server/services"
	"github.com/go-chi/chi/v5"
)

type registerRequest struct {
	UserName string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register POST /api/v1/user/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}

	u, err := h.sessions.Register(r.Context(), req.UserName, req.Email, req.Password)
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Account created successfully",
		"success": true,
		"user":    u,
	})
}

// Login POST /api/v1/user/login and POST /login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(r.Context(), w, h.logger, badRequest("email and password are required"))
		return
	}

	token, profile, err := h.sessions.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}

	http.SetCookie(w, h.sessions.Cookie(token))
	writeJSON(w, http.StatusOK, map[string]any{
		"message": fmt.Sprintf("Welcome back %s", profile.UserName),
		"success": true,
		"user":    profile,
	})
}

// Logout GET /api/v1/user/logout and GET /logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.sessions.Invalidate())
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Logged out successfully",
		"success": true,
	})
}

// FollowOrUnfollow POST /api/v1/user/followorunfollow/{id} and POST /follow/{id}
func (h *Handler) FollowOrUnfollow(w http.ResponseWriter, r *http.Request) {
	actorID, _ := UserIDFromContext(r.Context())
	targetID := chi.URLParam(r, "id")

	following, err := h.graph.ToggleFollow(r.Context(), actorID, targetID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			err = &AppError{http.StatusNotFound, "User not found", err}
		}
		writeError(r.Context(), w, h.logger, err)
		return
	}

	msg := "Unfollowed successfully"
	if following {
		msg = "followed successfully"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"following": following,
		"message":   msg,
		"success":   true,
	})
}

// GetProfile GET /api/v1/user/{id}/profile
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.profiles.GetProfile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": p, "success": true})
}

// EditProfile POST /api/v1/user/profile/edit (multipart: bio, gender, profilePicture)
func (h *Handler) EditProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	if err := h.parseMultipart(w, r); err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	var edit services.ProfileEdit
	if v, ok := r.MultipartForm.Value["bio"]; ok && len(v) > 0 {
		edit.Bio = &v[0]
	}
	if v, ok := r.MultipartForm.Value["gender"]; ok && len(v) > 0 {
		edit.Gender = &v[0]
	}

	obj, closeFile, err := formFile(r, "profilePicture")
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	defer closeFile()
	edit.Picture = obj

	u, err := h.profiles.EditProfile(r.Context(), userID, edit)
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Profile updated",
		"success": true,
		"user":    u,
	})
}

// Suggested GET /api/v1/user/suggested
func (h *Handler) Suggested(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	list, err := h.profiles.Suggested(r.Context(), userID)
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": list, "success": true})
}

// Online GET /api/v1/user/online
func (h *Handler) Online(w http.ResponseWriter, r *http.Request) {
	ids, err := h.hub.Online(r.Context())
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"onlineUsers": ids, "success": true})
}

func (h *Handler) parseMultipart(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.opts.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return &AppError{http.StatusRequestEntityTooLarge, "Upload too large", err}
		}
		return badRequest("malformed multipart body")
	}
	return nil
}

// formFile returns the named upload, or nil if the form has none.
func formFile(r *http.Request, field string) (*media.Object, func(), error) {
	f, hdr, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, func() {}, nil
		}
		return nil, func() {}, badRequest("unreadable upload")
	}
	return objectFrom(f, hdr), func() { _ = f.Close() }, nil
}

func objectFrom(f multipart.File, hdr *multipart.FileHeader) *media.Object {
	return &media.Object{
		Name:        hdr.Filename,
		ContentType: hdr.Header.Get("Content-Type"),
		Size:        hdr.Size,
		Body:        f,
	}
}
