// Package portalapi serves the public school site endpoints and the
// role-gated portal pages behind them.
package portalapi

import (
	"context"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alrashid-edu/portal/core"
	"github.com/alrashid-edu/portal/core/admission"
	"github.com/alrashid-edu/portal/core/auth"
	"github.com/alrashid-edu/portal/core/banner"
	"github.com/alrashid-edu/portal/core/session"
)

type (
	Options struct {
		Addr           string
		DisableReqLogs bool
		SecureCookies  bool

		Logger    core.Logger
		Validate  *validator.Validate
		Uni       *ut.UniversalTranslator
		Client    *http.Client // shared upstream HTTP client
		Submitter admission.Submitter
		Banner    *banner.Client
	}

	Server interface {
		http.Handler
		Start()
		Stop(context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts: opts,
		app:  echo.New(),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	debug := core.Conf.Debug

	registerMetrics()

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(debug || core.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(metricsMiddleware())

	s.app.HTTPErrorHandler = s.newHTTPErrorHandler()
	s.app.Debug = debug

	s.app.GET("/", s.home)
	s.app.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	s.app.GET(loginPath, s.loginPage)
	s.app.POST(loginPath, s.login, middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(10)))
	s.app.POST("/auth/logout", s.logout)

	s.app.POST("/admission", s.submitAdmission)

	// role-gated portal pages
	s.app.GET("/dashboard", s.adminDashboard, s.requireRole(session.RoleAdmin))
	s.app.GET("/student-dashboard", s.studentDashboard, s.requireRole(session.RoleStudent))
	s.app.GET("/profile", s.profile, s.requireRole())
}

func (s *server) Start() {
	s.app.Logger.Fatal(s.app.Start(s.opts.Addr))
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

// store returns the visitor's cookie-backed credential store, watched so
// login/logout are observed the moment they happen.
func (s *server) store(ctx echo.Context) session.Store {
	return session.Watch(session.NewCookieStore(ctx, s.opts.SecureCookies), observeSessionChange)
}

func (s *server) gateway(ctx echo.Context) *auth.Gateway {
	return auth.NewGateway(core.Conf.Upstream.APIBaseURL, s.opts.Client, s.store(ctx), s.opts.Logger)
}

// translator picks the visitor's language: ?lang= first, Accept-Language
// second, the fallback translator otherwise.
func (s *server) translator(ctx echo.Context) ut.Translator {
	lang := ctx.QueryParam("lang")
	if lang == "" {
		if accepted := ctx.Request().Header.Get("Accept-Language"); len(accepted) >= 2 {
			lang = accepted[:2]
		}
	}
	return core.Translator(s.opts.Uni, lang)
}

func (s *server) text(ctx echo.Context, en, ar string) string {
	if s.translator(ctx).Locale() == "ar" {
		return ar
	}
	return en
}

func (s *server) home(ctx echo.Context) error {
	resp := echo.Map{"message": "Welcome to " + core.Conf.AppName + "!"}
	if s.opts.Banner != nil {
		if image, err := s.opts.Banner.Get(ctx.Request().Context()); err == nil {
			resp["banner"] = image
		} else {
			// the landing page renders without a banner rather than fail
			s.opts.Logger.Warn("banner unavailable", err)
		}
	}
	return ctx.JSON(http.StatusOK, resp)
}
