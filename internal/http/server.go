package httpapi

import (
	"net/http"
	"time"

	"hostel-complaints-backend-go/internal/config"
	"hostel-complaints-backend-go/internal/services"
	"hostel-complaints-backend-go/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

type Server struct {
	Config     config.Config
	Store      store.Store
	Gate       services.IdentityGate
	Complaints *services.ComplaintService
	Accounts   *services.AccountService
	Blobs      services.LocalBlobStore
	Health     *services.HealthHub
}

func NewServer(cfg config.Config, st store.Store, hub *services.HealthHub) *Server {
	tokens := services.TokenService{
		Secret:    []byte(cfg.JWTSecret),
		Issuer:    cfg.JWTIssuer,
		AccessTTL: time.Duration(cfg.AccessTTLSeconds) * time.Second,
	}
	blobs := services.LocalBlobStore{BasePath: cfg.MediaStoragePath, MaxBytes: cfg.MediaMaxBytes}
	return &Server{
		Config:     cfg,
		Store:      st,
		Gate:       services.IdentityGate{Tokens: tokens, Users: st},
		Complaints: services.NewComplaintService(st, blobs),
		Accounts: &services.AccountService{
			Users:                 st,
			Tokens:                tokens,
			AllowMaintainerSignup: cfg.AllowMaintainerSignup,
		},
		Blobs:  blobs,
		Health: hub,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestLogger)
	if len(s.Config.CorsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.Config.CorsOrigins,
			AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, MessageResponse{Message: "Hostel complaint tracker API"})
	})

	r.Route("/api/v1", func(api chi.Router) {
		api.Get("/health", s.HealthCheck)

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/register", s.Register)
			auth.Post("/signup", s.Register)
			auth.Post("/login", s.Login)
			auth.Post("/signin", s.Login)
			auth.With(WithAuth(s.Gate)).Get("/me", s.Me)
		})

		api.Route("/complaints", func(c chi.Router) {
			c.Use(WithAuth(s.Gate))
			c.With(Require(services.OpCreateComplaint)).Post("/", s.CreateComplaint)
			c.Get("/user", s.UserComplaints)
			c.Get("/public", s.PublicComplaints)
			c.With(Require(services.OpListAll)).Get("/all", s.AllComplaints)
			c.With(Require(services.OpViewComplaint)).Get("/{id}", s.GetComplaint)
			c.With(Require(services.OpUpdateStatus)).Patch("/{id}", s.UpdateComplaintStatus)
			c.Delete("/{id}", s.DeleteComplaint)
			c.Post("/{id}/upvote", s.Upvote)
			c.Post("/{id}/downvote", s.Downvote)
		})

		api.Route("/maintainer", func(m chi.Router) {
			m.Use(WithAuth(s.Gate))
			m.Use(Require(services.OpViewHealth))
			m.Get("/health/history", s.HealthHistory)
		})
	})

	r.Get("/media/complaints/{name}", s.ComplaintImage)
	r.Get("/ws/health", s.HealthSocket)
	return r
}
