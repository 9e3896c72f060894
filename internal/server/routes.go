package server

import (
	"log/slog"
	"net/http"

	"birthchart-server/internal/auth"
	authHandlers "birthchart-server/internal/auth/handlers"
	"birthchart-server/internal/chart"
	chartHandlers "birthchart-server/internal/chart/handlers"
	"birthchart-server/internal/middleware"
	serverHandlers "birthchart-server/internal/server/handlers"
	"birthchart-server/internal/shared/errors"
	"birthchart-server/internal/shared/response"
	"birthchart-server/internal/user"
	userHandlers "birthchart-server/internal/user/handlers"
)

// Routes collects everything the HTTP surface needs. UserService and
// AuthService are nil when the database is disabled; account endpoints then
// answer 503.
type Routes struct {
	ChartService   *chart.Service
	UserService    *user.Service
	AuthService    *auth.Service
	OAuthProviders []auth.ConfiguredProvider
	Health         *serverHandlers.HealthHandler
	Metrics        http.Handler
	MetricsPath    string
	ImageSize      int
}

func (r *Routes) Setup() *http.ServeMux {
	logger := slog.With("component", "routes", "operation", "setup")

	mux := http.NewServeMux()

	chartHandler := chartHandlers.NewChartHandler(r.ChartService, r.ImageSize)
	savedHandler := chartHandlers.NewSavedChartHandler(r.ChartService)

	mux.Handle("/api/server/health", r.Health)
	mux.HandleFunc("/birth_chart", chartHandler.BirthChart)
	mux.HandleFunc("/chart_image", chartHandler.ChartImage)

	if r.Metrics != nil {
		mux.Handle("GET "+r.MetricsPath, r.Metrics)
	}

	mux.Handle("/api/charts", middleware.JWTMiddleware(http.HandlerFunc(savedHandler.Collection)))
	mux.Handle("/api/charts/{id}", middleware.JWTMiddleware(http.HandlerFunc(savedHandler.Item)))

	accountEndpoints := []string{"POST /register", "POST /login", "GET /profile"}
	if r.UserService != nil && r.AuthService != nil {
		accountHandler := authHandlers.NewAccountHandler(r.UserService, r.AuthService)
		mux.HandleFunc("POST /register", accountHandler.Register)
		mux.HandleFunc("POST /login", accountHandler.Login)
		mux.Handle("GET /profile", middleware.JWTMiddleware(userHandlers.NewProfileHandler(r.UserService)))

		for _, cp := range r.OAuthProviders {
			h := authHandlers.NewOAuthHandler(cp.Provider, r.AuthService, cp.Configured)
			name := cp.Provider.Name()
			mux.HandleFunc("GET /auth/"+name, h.HandleAuth)
			mux.HandleFunc("GET /auth/"+name+"/callback", h.HandleCallback)
		}
	} else {
		for _, pattern := range accountEndpoints {
			mux.HandleFunc(pattern, accountsUnavailable)
		}
		for _, cp := range r.OAuthProviders {
			mux.HandleFunc("GET /auth/"+cp.Provider.Name(), accountsUnavailable)
			mux.HandleFunc("GET /auth/"+cp.Provider.Name()+"/callback", accountsUnavailable)
		}
	}

	// Logout only clears the cookie, so it works with or without a database.
	mux.HandleFunc("/auth/logout", authHandlers.Logout)

	logger.Info("Routes configured",
		"chart_endpoints", []string{"/birth_chart", "/chart_image"},
		"saved_chart_endpoints", []string{"/api/charts", "/api/charts/{id}"},
		"account_endpoints", accountEndpoints,
		"accounts_enabled", r.UserService != nil,
		"oauth_providers", len(r.OAuthProviders),
		"metrics_enabled", r.Metrics != nil,
	)

	return mux
}

func accountsUnavailable(w http.ResponseWriter, r *http.Request) {
	response.Error(w, r, slog.With("handler", "accounts"), errors.Unavailable("accounts require a database"))
}
