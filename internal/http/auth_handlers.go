package httpapi

import (
	"encoding/json"
	"net/http"

	"hostel-complaints-backend-go/internal/services"
)

type RegisterRequest struct {
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	RoomNumber string `json:"roomNumber"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type TokenResponse struct {
	Token     string   `json:"token"`
	ExpiresAt int64    `json:"expiresAt"`
	User      *UserDTO `json:"user"`
}

func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, services.KindInvalidInput, "Invalid payload")
		return
	}
	session, err := s.Accounts.Register(r.Context(), services.Registration{
		Username:   req.Username,
		Email:      req.Email,
		Password:   req.Password,
		Role:       req.Role,
		RoomNumber: req.RoomNumber,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, TokenResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      toUserDTO(session.User),
	})
}

func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, services.KindInvalidInput, "Invalid payload")
		return
	}
	session, err := s.Accounts.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, TokenResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      toUserDTO(session.User),
	})
}

func (s *Server) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := CurrentIdentity(r)
	if !ok {
		WriteError(w, http.StatusUnauthorized, services.KindUnauthenticated, "Authentication failed")
		return
	}
	user, err := s.Accounts.Me(r.Context(), identity)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, toUserDTO(user))
}
