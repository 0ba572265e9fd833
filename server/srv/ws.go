package srv

import (
	"net/http"

	"github.com/gorilla/websocket"

	"lanewar/server/auth"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  2048,
	WriteBufferSize: 2048,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ServeWS authenticates the dial with a bearer or ?token= JWT, then hands
// the upgraded connection to the hub.
func (h *Hub) ServeWS(a *auth.Auth) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name, err := a.ParseToken(auth.TokenFrom(r))
		if err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if h.store == nil {
			http.Error(w, "accounts unavailable", http.StatusServiceUnavailable)
			return
		}
		u, err := h.store.UserByName(r.Context(), name)
		if err != nil {
			http.Error(w, "unknown user", http.StatusUnauthorized)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.log.Warn().Err(err).Msg("upgrade")
			return
		}
		h.HandleWS(conn, u)
	}
}
