// Package api declares the JSON API on fuego, which generates the OpenAPI
// document served at /openapi.json and browsed at /docs.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-fuego/fuego"
	"github.com/go-fuego/fuego/option"

	"github.com/blockedby/leetstats/internal/stats"
)

const (
	// DocsPath serves the documentation UI.
	DocsPath = "/docs"
	// SpecPath serves the OpenAPI document.
	SpecPath = "/openapi.json"
	// UserPath is the profile lookup endpoint.
	UserPath = "/api/user"
)

// Server holds the fuego route table. Requests reach it through the chi
// server in internal/web, which adds its middleware in front of Handler.
type Server struct {
	fuego       *fuego.Server
	title       string
	description string
}

// Config holds API server configuration.
type Config struct {
	Title       string
	Description string
	Version     string
}

// NewServer creates the fuego server and declares /health.
func NewServer(cfg *Config) *Server {
	s := fuego.NewServer(
		fuego.WithEngineOptions(
			fuego.WithOpenAPIConfig(fuego.OpenAPIConfig{
				PrettyFormatJSON: true,
				SwaggerURL:       DocsPath,
				SpecURL:          SpecPath,
				UIHandler: func(specURL string) http.Handler {
					return ScalarHandler(specURL, cfg.Title, cfg.Description)
				},
			}),
		),
	)

	s.OpenAPI.Description().Info.Title = cfg.Title
	s.OpenAPI.Description().Info.Description = cfg.Description
	s.OpenAPI.Description().Info.Version = cfg.Version

	srv := &Server{
		fuego:       s,
		title:       cfg.Title,
		description: cfg.Description,
	}

	fuego.Get(s, "/health", srv.healthCheck,
		option.Summary("Health Check"),
		option.Description("Returns the health status of the API"),
		option.Tags("System"),
		option.OperationID("health"),
	)

	return srv
}

func (s *Server) healthCheck(c fuego.ContextNoBody) (HealthResponse, error) {
	return HealthResponse{Status: "ok"}, nil
}

// RegisterUserLookup declares POST /api/user. The handler writes its own
// bodies: the upstream JSON unchanged on success, ErrorResponse otherwise.
func (s *Server) RegisterUserLookup(handler http.HandlerFunc) {
	jsonOnly := []string{"application/json"}
	errorBody := fuego.Response{Type: ErrorResponse{}, ContentTypes: jsonOnly}

	fuego.PostStd(s.fuego, UserPath, handler,
		option.Summary("Fetch profile statistics"),
		option.Description("Takes {\"username\": string} (1-15 of [a-zA-Z0-9_-]), "+
			"forwards a fixed GraphQL query upstream and returns the upstream body unchanged."),
		option.Tags("Stats"),
		option.OperationID("lookupUser"),
		option.AddResponse(http.StatusOK, "Upstream body, unchanged", fuego.Response{Type: stats.Response{}, ContentTypes: jsonOnly}),
		option.AddResponse(http.StatusBadRequest, "Body is not JSON or the username is missing, not a string or malformed", errorBody),
		option.AddResponse(http.StatusForbidden, "Origin header names another site", errorBody),
		option.AddResponse(http.StatusNotFound, "No such user upstream", errorBody),
		option.AddResponse(http.StatusTooManyRequests, "Too many requests from this client; see Retry-After", errorBody),
		option.AddResponse(http.StatusInternalServerError, "Upstream failure", errorBody),
		option.AddResponse(http.StatusGatewayTimeout, "Upstream timed out", errorBody),
	)
}

// Handler returns the mux serving the declared routes.
func (s *Server) Handler() http.Handler {
	return s.fuego.Mux
}

// MountDocsOn mounts the OpenAPI documentation routes (/docs, /openapi.json)
// on a Chi router, serving the document fuego generated from the routes.
func (s *Server) MountDocsOn(r interface {
	Get(pattern string, handlerFn http.HandlerFunc)
}) {
	scalarHandler := ScalarHandler(SpecPath, s.title, s.description)
	r.Get(DocsPath, func(w http.ResponseWriter, req *http.Request) {
		scalarHandler.ServeHTTP(w, req)
	})

	r.Get(SpecPath, func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache")
		spec := s.fuego.OpenAPI.Description()
		if err := json.NewEncoder(w).Encode(spec); err != nil {
			http.Error(w, "Failed to encode OpenAPI spec", http.StatusInternalServerError)
		}
	})
}
