package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// AddPost POST /api/v1/post/addpost (multipart: caption, image)
func (h *Handler) AddPost(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	if err := h.parseMultipart(w, r); err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	image, closeFile, err := formFile(r, "image")
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	defer closeFile()

	post, err := h.posts.Create(r.Context(), userID, r.FormValue("caption"), image)
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "New post added",
		"success": true,
		"post":    post,
	})
}

// Like GET /api/v1/post/{id}/like
func (h *Handler) Like(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	if _, err := h.posts.Like(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Post liked", "success": true})
}

// Dislike GET /api/v1/post/{id}/dislike
func (h *Handler) Dislike(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	if _, err := h.posts.Dislike(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Post disliked", "success": true})
}
