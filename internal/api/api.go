package api

import (
	"context"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/susu3304/studybot/internal/config"
	"github.com/susu3304/studybot/internal/db"
	"github.com/susu3304/studybot/internal/settlement"
	"github.com/susu3304/studybot/internal/study"
	"golang.org/x/oauth2"
)

// HistoryStore lists archived study settlements.
type HistoryStore interface {
	ListAttendanceSettlements(ctx context.Context, channelID string) ([]db.StudySettlement, error)
}

// StandingsSource previews the ranking of a channel's co-working room.
type StandingsSource interface {
	Standings(ctx context.Context, channelID string) ([]settlement.Standing, error)
}

type API struct {
	router      *mux.Router
	history     HistoryStore
	studies     *study.Service
	rooms       StandingsSource
	config      *config.Config
	oauthConfig *oauth2.Config
	jwtSecret   []byte
}

func New(cfg *config.Config, history HistoryStore, studies *study.Service, rooms StandingsSource) *API {
	api := &API{
		router:    mux.NewRouter(),
		history:   history,
		studies:   studies,
		rooms:     rooms,
		config:    cfg,
		jwtSecret: []byte(cfg.JWTSecret),
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.DiscordClientID,
			ClientSecret: cfg.DiscordClientSecret,
			RedirectURL:  cfg.DiscordRedirectURI,
			Scopes:       []string{"identify"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  "https://discord.com/api/oauth2/authorize",
				TokenURL: "https://discord.com/api/oauth2/token",
			},
		},
	}

	api.setupRoutes()
	return api
}

func (a *API) setupRoutes() {
	// Auth endpoints
	a.router.HandleFunc("/api/auth/login", a.handleLogin).Methods("GET")
	a.router.HandleFunc("/api/auth/callback", a.handleCallback).Methods("GET")
	a.router.HandleFunc("/api/auth/logout", a.handleLogout).Methods("POST")

	// Public endpoints
	a.router.HandleFunc("/api/settlements/attendance", a.handleAttendanceSettlement).Methods("POST")
	a.router.HandleFunc("/api/settlements/missions", a.handleMissionSettlement).Methods("POST")

	// Protected endpoints
	protected := a.router.PathPrefix("/api").Subrouter()
	protected.Use(a.authMiddleware)

	protected.HandleFunc("/studies/{channel_id}", a.handleGetStudy).Methods("GET")
	protected.HandleFunc("/studies/{channel_id}/settlement", a.handleStudySettlement).Methods("GET")
	protected.HandleFunc("/studies/{channel_id}/attendance", a.handleSetAttendance).Methods("POST")
	protected.HandleFunc("/studies/{channel_id}/history", a.handleStudyHistory).Methods("GET")
	protected.HandleFunc("/rooms/{channel_id}/standings", a.handleRoomStandings).Methods("GET")
}

func (a *API) Handler() http.Handler {
	// Note: When AllowedOrigins is "*", AllowCredentials must be false
	corsOptions := cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
	}
	return cors.New(corsOptions).Handler(a.router)
}

func (a *API) Start() error {
	log.Printf("API server listening on http://%s", a.config.WebBind)
	return http.ListenAndServe(a.config.WebBind, a.Handler())
}
