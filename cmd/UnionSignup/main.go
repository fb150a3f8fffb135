package main

import (
	"encoding/json"
	"github.com/robfig/cron/v3"
	database "github.com/sebuszqo/UnionSignup/db"
	"github.com/sebuszqo/UnionSignup/internal/auth"
	"github.com/sebuszqo/UnionSignup/internal/config"
	"github.com/sebuszqo/UnionSignup/internal/signup/application"
	"github.com/sebuszqo/UnionSignup/internal/signup/domain"
	"github.com/sebuszqo/UnionSignup/internal/signup/infrastructure"
	"github.com/sebuszqo/UnionSignup/internal/signup/interfaces"
	"log"
	"net/http"
	"time"
)

type Response struct {
	Message string `json:"message"`
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("Started %s %s", r.Method, r.URL.Path)

		next.ServeHTTP(w, r)

		log.Printf("Completed %s in %v", r.URL.Path, time.Since(start))
	})
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]interface{}{
		"status":  "error",
		"message": message,
		"code":    status,
	})
}

// sessionStore is a draft repository that can also purge expired drafts.
type sessionStore interface {
	domain.SessionRepository
	DeleteExpired() (int64, error)
}

type Server struct {
	router        *http.ServeMux
	signupHandler *interfaces.SignupHandler
	linkHandler   *interfaces.LinkHandler
	duesHandler   *interfaces.DuesHandler
	authHandler   *auth.Handler
	dbService     *database.DBService
}

func NewServer(signupHandler *interfaces.SignupHandler, linkHandler *interfaces.LinkHandler, duesHandler *interfaces.DuesHandler, authHandler *auth.Handler, dbService *database.DBService) *Server {
	return &Server{
		signupHandler: signupHandler,
		linkHandler:   linkHandler,
		duesHandler:   duesHandler,
		authHandler:   authHandler,
		dbService:     dbService,
		router:        http.NewServeMux(),
	}
}

func notFoundHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(Response{Message: "Path not found"})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	if s.dbService != nil {
		if health := s.dbService.Health(); health["status"] != "up" {
			respondJSON(w, http.StatusServiceUnavailable, health)
			return
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status": "ready",
	})
}

func (s *Server) RegisterRoutes() {
	// Pages
	pageRoutes := http.NewServeMux()
	pageRoutes.Handle("GET /signup", http.HandlerFunc(s.signupHandler.HandleSignupPage))
	pageRoutes.Handle("POST /signup", http.HandlerFunc(s.signupHandler.HandleSignupSubmit))
	pageRoutes.Handle("POST /signup/bank/remove", http.HandlerFunc(s.linkHandler.HandleRemoveBank))
	pageRoutes.Handle("GET /login", http.HandlerFunc(s.authHandler.HandleLoginPage))
	pageRoutes.Handle("POST /login", http.HandlerFunc(s.authHandler.HandleLogin))
	pageRoutes.Handle("POST /login/2fa", http.HandlerFunc(s.authHandler.HandleVerifyTwoFactor))
	pageRoutes.Handle("POST /logout", http.HandlerFunc(s.authHandler.HandleLogout))
	pageRoutes.Handle("/", http.HandlerFunc(notFoundHandler))

	// JSON routes used by the signup page
	apiRoutes := http.NewServeMux()
	apiRoutes.Handle("POST /api/signup/bank/link-token", http.HandlerFunc(s.linkHandler.HandleLinkToken))
	apiRoutes.Handle("POST /api/signup/bank/linked", http.HandlerFunc(s.linkHandler.HandleLinked))
	apiRoutes.Handle("POST /api/signup/bank/exit", http.HandlerFunc(s.linkHandler.HandleLinkExit))
	apiRoutes.Handle("GET /api/signup/dues", http.HandlerFunc(s.duesHandler.HandleDues))
	apiRoutes.Handle("GET /api/signup/compensation", http.HandlerFunc(s.duesHandler.HandleCompensation))
	apiRoutes.Handle("GET /api/ready", http.HandlerFunc(s.handleReady))
	apiRoutes.Handle("/api/", http.HandlerFunc(notFoundHandler))

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/api/", apiRoutes)
	mainRouter.Handle("/", pageRoutes)

	s.router = mainRouter
}

func newSessionStore(cfg *config.Config) (sessionStore, *database.DBService) {
	if cfg.DBConnection == "" {
		log.Println("DB_CONNECTION_STRING not set, keeping signup sessions in memory")
		return infrastructure.NewMemorySessionStore(), nil
	}

	dbService, err := database.NewDBService(cfg.DBConnection)
	if err != nil {
		log.Fatalf("Could not initialize database: %v", err)
	}
	repo := infrastructure.NewPostgresSessionRepository(dbService.DB)
	if err := repo.EnsureSchema(); err != nil {
		log.Fatalf("Could not prepare signup_sessions table: %v", err)
	}
	return repo, dbService
}

func newLinkTokenSource(cfg *config.Config, backend *infrastructure.BackendClient, httpClient *http.Client) application.LinkTokenSource {
	if cfg.PlaidConfigured() {
		log.Printf("Requesting bank link tokens from Plaid (%s)", cfg.PlaidEnv)
		return infrastructure.NewPlaidLinkSource(cfg.PlaidClientID, cfg.PlaidSecret, cfg.PlaidEnv, cfg.OrganizationName, httpClient)
	}
	return backend
}

func StartSessionCleanupScheduler(store sessionStore) error {
	c := cron.New()
	_, err := c.AddFunc("@every 10m", func() {
		removed, err := store.DeleteExpired()
		if err != nil {
			log.Printf("Error removing expired signup sessions: %v", err)
		} else if removed > 0 {
			log.Printf("Removed %d expired signup sessions.", removed)
		}
	})
	if err != nil {
		return err
	}
	c.Start()
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Missing configuration, update to start server: %v", err)
	}

	requirements, err := config.LoadRequirements(cfg.RequirementsFile)
	if err != nil {
		log.Fatalf("Could not load field requirements: %v", err)
	}

	sessions, dbService := newSessionStore(cfg)
	if dbService != nil {
		defer dbService.Close()
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	backendClient := infrastructure.NewBackendClient(cfg.SignupURL, cfg.LinkTokenURL, cfg.HTTPTimeout)
	processor := infrastructure.NewStripeProcessor(cfg.StripeSecretKey, cfg.StripeAPIURL, httpClient)
	linkSource := newLinkTokenSource(cfg, backendClient, httpClient)

	submissionService := application.NewSubmissionService(sessions, processor, backendClient, requirements)
	linkService := application.NewLinkService(sessions, linkSource)

	signupHandler := interfaces.NewSignupHandler(submissionService, sessions, requirements, interfaces.NewPages(), cfg.SessionTTL, cfg.SecureCookies)
	linkHandler := interfaces.NewLinkHandler(linkService, sessions, respondJSON, respondError)
	duesHandler := interfaces.NewDuesHandler(respondJSON, respondError)
	authHandler := auth.NewHandler(auth.NewAuthService(cfg.LoginURL, cfg.TwoFactorURL, cfg.HTTPTimeout), cfg.SecureCookies)

	server := NewServer(signupHandler, linkHandler, duesHandler, authHandler, dbService)
	server.RegisterRoutes()

	if err := StartSessionCleanupScheduler(sessions); err != nil {
		log.Fatalf("Scheduler didn't start, stoping the app ...")
	}

	loggingMiddleware := loggingMiddleware(http.HandlerFunc(server.router.ServeHTTP))
	log.Printf("Server starting on port %s...", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, loggingMiddleware); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
