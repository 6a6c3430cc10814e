package httpapi

import (
	"net/http"
	"os"

	"hostel-complaints-backend-go/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

type HealthResponse struct {
	Status string `json:"status"`
	Store  string `json:"store"`
}

type HealthHistoryResponse struct {
	Items []services.HealthSample `json:"items"`
}

// HealthCheck is unauthenticated and only reports whether the store answers.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := s.Store.Ping(r.Context()); err != nil {
		WriteJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "degraded", Store: "unreachable"})
		return
	}
	WriteJSON(w, http.StatusOK, HealthResponse{Status: "ok", Store: "ok"})
}

func (s *Server) HealthHistory(w http.ResponseWriter, r *http.Request) {
	items := []services.HealthSample{}
	if s.Health != nil {
		items = s.Health.History()
	}
	limit := parseInt(r.URL.Query().Get("limit"), len(items))
	if limit >= 0 && limit < len(items) {
		items = items[len(items)-limit:]
	}
	WriteJSON(w, http.StatusOK, HealthHistoryResponse{Items: items})
}

// HealthSocket streams live samples to maintainers. Browsers cannot set
// headers on websocket upgrades, so the token travels in the query string.
func (s *Server) HealthSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeServiceError(w, r, services.ErrUnauthenticated(services.ReasonCredentialMissing, "Authentication failed"))
		return
	}
	identity, err := s.Gate.ResolveToken(r.Context(), token)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := services.Authorize(identity, services.OpViewHealth); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if s.Health == nil {
		WriteError(w, http.StatusServiceUnavailable, services.KindInternal, "Health stream disabled")
		return
	}
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.Health.Add(conn)
	defer func() {
		s.Health.Remove(conn)
		_ = conn.Close()
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// ComplaintImage serves a stored complaint image. Image URLs are handed to
// every caller who can see the complaint, so no credential is required.
func (s *Server) ComplaintImage(w http.ResponseWriter, r *http.Request) {
	path, ok := s.Blobs.ImagePath(chi.URLParam(r, "name"))
	if !ok {
		WriteError(w, http.StatusNotFound, services.KindNotFound, "Not found")
		return
	}
	if _, err := os.Stat(path); err != nil {
		WriteError(w, http.StatusNotFound, services.KindNotFound, "Not found")
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")
	http.ServeFile(w, r, path)
}
