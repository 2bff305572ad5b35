// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/middleware"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
	contactfeature "github.com/schoolworks/schoolsite/internal/app/features/contact"
	dashboardfeature "github.com/schoolworks/schoolsite/internal/app/features/dashboard"
	errorsfeature "github.com/schoolworks/schoolsite/internal/app/features/errors"
	galleryfeature "github.com/schoolworks/schoolsite/internal/app/features/gallery"
	healthfeature "github.com/schoolworks/schoolsite/internal/app/features/health"
	homefeature "github.com/schoolworks/schoolsite/internal/app/features/home"
	homecontentfeature "github.com/schoolworks/schoolsite/internal/app/features/homecontent"
	loginfeature "github.com/schoolworks/schoolsite/internal/app/features/login"
	logoutfeature "github.com/schoolworks/schoolsite/internal/app/features/logout"
	noticesfeature "github.com/schoolworks/schoolsite/internal/app/features/notices"
	profilefeature "github.com/schoolworks/schoolsite/internal/app/features/profile"
	appresources "github.com/schoolworks/schoolsite/internal/app/resources"
	gallerystore "github.com/schoolworks/schoolsite/internal/app/store/gallery"
	userstore "github.com/schoolworks/schoolsite/internal/app/store/users"
	"github.com/schoolworks/schoolsite/internal/app/system/auth"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. It:
//  1. Creates the session manager and template engine
//  2. Mounts the public site at / and the admin console under /admin
//  3. Adds CSRF, security headers, and session middleware
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Set up the UserFetcher so LoadSessionUser fetches fresh user data on
	// each request. Role changes and disabled accounts take effect
	// immediately instead of at next login.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(deps.MongoDatabase, logger))

	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	// Error logger and handlers shared across features.
	errLog := errorsfeature.NewErrorLogger(logger)
	errorsHandler := errorsfeature.NewHandler()

	// The gallery store is shared between the public page, the admin
	// manager, and the dashboard counts.
	galleryStore := gallerystore.New(deps.MongoDatabase, deps.FileStorage, logger)

	r := chi.NewRouter()

	// Global middleware

	// Request timeout: prevents requests from hanging indefinitely.
	r.Use(chimw.Timeout(30 * time.Second))

	r.Use(middleware.CORSFromConfig(coreCfg))
	r.Use(middleware.SecurityHeadersFromConfig(coreCfg))

	// Session middleware: loads SessionUser into context if logged in.
	r.Use(sessionMgr.LoadSessionUser)

	// CSRF protection. Cookie name is "schoolsite_csrf" to avoid collisions
	// with other services on the same domain.
	csrfOpts := []csrf.Option{
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.CookieName("schoolsite_csrf"),
		csrf.FieldName("csrf_token"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			logger.Warn("CSRF validation failed",
				zap.String("path", req.URL.Path),
				zap.String("method", req.Method),
				zap.String("reason", csrf.FailureReason(req).Error()),
			)
			http.Error(w, "CSRF token invalid or missing", http.StatusForbidden)
		})),
	}
	// In dev mode, trust localhost origins for CSRF validation.
	if !secure {
		csrfOpts = append(csrfOpts, csrf.TrustedOrigins([]string{
			"localhost:8080",
			"localhost:3000",
			"127.0.0.1:8080",
			"127.0.0.1:3000",
		}))
	}
	if appCfg.SessionDomain != "" {
		csrfOpts = append(csrfOpts, csrf.Domain(appCfg.SessionDomain))
	}
	r.Use(csrf.Protect([]byte(appCfg.CSRFKey), csrfOpts...))

	// Health check endpoints for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	healthfeature.MountRootEndpoints(r, healthHandler)

	// Static assets with pre-compressed file support (gzip/brotli)
	// /static/* serves files from disk (static directory)
	r.Handle("/static/*", fileserver.Handler("/static", "static"))

	// /assets/* serves embedded assets (bundled into the binary)
	r.Handle("/assets/*", appresources.AssetsHandler("/assets"))

	// Uploaded files (local storage only). S3 storage serves directly from
	// the bucket or CloudFront, so no route is needed.
	if appCfg.StorageType == "local" || appCfg.StorageType == "" {
		r.Handle(appCfg.StorageLocalURL+"/*", fileserver.Handler(appCfg.StorageLocalURL, appCfg.StorageLocalPath))
	}

	// Public site
	homeHandler := homefeature.NewHandler(deps.MongoDatabase, deps.FileStorage, logger)
	r.Mount("/", homefeature.Routes(homeHandler))

	// Authentication
	loginHandler := loginfeature.NewHandler(deps.MongoDatabase, sessionMgr, errLog, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler, sessionMgr))

	// Admin console
	dashboardHandler := dashboardfeature.NewHandler(deps.MongoDatabase, galleryStore, logger)
	r.Mount("/admin", dashboardfeature.Routes(dashboardHandler, sessionMgr))

	homecontentHandler := homecontentfeature.NewHandler(deps.MongoDatabase, deps.FileStorage, errLog, logger)
	r.Mount("/admin/home", homecontentfeature.Routes(homecontentHandler, sessionMgr))

	noticesHandler := noticesfeature.NewHandler(deps.MongoDatabase, errLog, logger)
	r.Mount("/admin/notices", noticesfeature.Routes(noticesHandler, sessionMgr))

	contactHandler := contactfeature.NewHandler(deps.MongoDatabase, errLog, logger)
	r.Mount("/admin/contact", contactfeature.Routes(contactHandler, sessionMgr))

	galleryHandler := galleryfeature.NewHandler(galleryStore, deps.FileStorage, errLog, logger)
	r.Mount("/admin/gallery", galleryfeature.Routes(galleryHandler, sessionMgr))

	profileHandler := profilefeature.NewHandler(deps.MongoDatabase, errLog, logger)
	r.Mount("/admin/profile", profilefeature.Routes(profileHandler, sessionMgr))

	// Error pages
	r.Get("/forbidden", errorsHandler.Forbidden)
	r.NotFound(errorsHandler.NotFound)

	return r, nil
}
