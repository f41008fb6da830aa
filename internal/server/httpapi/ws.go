package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/gophgram/internal/common"
	"github.com/dmitrijs2005/gophgram/internal/server/presence"
)

// Websocket GET /ws?userId=<id>
//
// By default the claimed userId is trusted as is. With Options.RequireToken
// the handshake must also carry a session token (bearer header, cookie or
// "token" query parameter) that belongs to that user.
func (h *Handler) Websocket(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		writeError(r.Context(), w, h.logger, badRequest("userId is required"))
		return
	}

	if h.opts.RequireToken {
		token := tokenFromRequest(r)
		if token == "" {
			token = r.URL.Query().Get("token")
		}
		owner, err := h.sessions.Validate(token)
		if err != nil {
			writeError(r.Context(), w, h.logger, err)
			return
		}
		if owner != userID {
			writeError(r.Context(), w, h.logger,
				fmt.Errorf("%w: token does not belong to %s", common.ErrUnauthenticated, userID))
			return
		}
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		h.logger.Warn(r.Context(), "websocket upgrade failed", "user_id", userID, "error", err)
		return
	}

	err = presence.Serve(r.Context(), h.hub, ws, userID, h.logger)
	if err != nil && !errors.Is(err, common.ErrTransportFailure) && !errors.Is(err, presence.ErrHubClosed) {
		h.logger.Error(r.Context(), "websocket session failed", "user_id", userID, "error", err)
	}
}
