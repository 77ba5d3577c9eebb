package handler

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/mux"
	"github.com/skip2/go-qrcode"

	"turtlesoup/internal/model"
)

const qrSize = 256

// ShareHandler renders a QR code that opens a room in the client
type ShareHandler struct {
	publicURL string
}

// NewShareHandler creates a share handler. An empty publicURL makes links
// relative to the host the request came in on.
func NewShareHandler(publicURL string) *ShareHandler {
	return &ShareHandler{publicURL: strings.TrimSuffix(publicURL, "/")}
}

// RoomLink returns the client URL for roomID
func (h *ShareHandler) RoomLink(r *http.Request, roomID string) string {
	base := h.publicURL
	if base == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		if fwd := r.Header.Get("X-Forwarded-Proto"); fwd != "" {
			scheme = fwd
		}
		base = scheme + "://" + r.Host
	}
	return base + "/?room=" + url.QueryEscape(roomID)
}

// QR handles GET /v1/rooms/{roomId}/qr
func (h *ShareHandler) QR(w http.ResponseWriter, r *http.Request) {
	roomID := strings.TrimSpace(mux.Vars(r)["roomId"])
	if roomID == "" {
		writeError(w, http.StatusBadRequest, model.ErrMissingRoomID.Error())
		return
	}

	png, err := qrcode.Encode(h.RoomLink(r, roomID), qrcode.Medium, qrSize)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not render qr code")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
