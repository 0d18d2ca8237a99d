package portalapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/alrashid-edu/portal/core/auth"
	"github.com/alrashid-edu/portal/core/session"
)

type LoginResponse struct {
	Role     session.Role `json:"role"`
	Redirect string       `json:"redirect"`
}

func (s *server) loginPage(ctx echo.Context) error {
	return ctx.String(http.StatusOK, s.text(ctx, "Student portal login", "تسجيل الدخول إلى بوابة الطالب"))
}

func (s *server) login(ctx echo.Context) error {
	var creds auth.Credentials
	if err := ctx.Bind(&creds); err != nil {
		return errors.Wrap(err, "binding to Credentials")
	}
	if err := creds.Validate(s.opts.Validate); err != nil {
		return err
	}

	sess, err := s.gateway(ctx).Login(ctx.Request().Context(), creds)
	switch {
	case err == nil:
		// fall through
	case errors.Is(err, auth.ErrInvalidCredentials):
		// must not hint at which of the two numbers was wrong
		return errAuthenticationFailed(s.text(ctx,
			"invalid credentials",
			"بيانات الدخول غير صحيحة",
		))
	case errors.Is(err, auth.ErrAccountFrozen):
		return errAccountFrozen(s.text(ctx,
			"this account is suspended, please contact the administration",
			"هذا الحساب موقوف، يرجى التواصل مع الإدارة",
		))
	default:
		return errors.Wrap(err, "logging in")
	}

	return ctx.JSON(http.StatusOK, LoginResponse{
		Role:     sess.Role,
		Redirect: redirectFor(sess.Role),
	})
}

func (s *server) logout(ctx echo.Context) error {
	s.gateway(ctx).Logout()
	return ctx.Redirect(http.StatusSeeOther, "/")
}

func redirectFor(role session.Role) string {
	switch role {
	case session.RoleAdmin:
		return "/dashboard"
	case session.RoleStudent:
		return "/student-dashboard"
	}
	return "/profile"
}

func (s *server) adminDashboard(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{
		"page":  "dashboard",
		"title": s.text(ctx, "Administration dashboard", "لوحة الإدارة"),
	})
}

func (s *server) studentDashboard(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{
		"page":  "student-dashboard",
		"title": s.text(ctx, "Student dashboard", "لوحة الطالب"),
	})
}

// profile renders the three fetch outcomes distinctly: results, an explicit
// "nothing uploaded yet" page, or a retry-suggesting failure.
func (s *server) profile(ctx echo.Context) error {
	outcome := s.gateway(ctx).FetchProfile(ctx.Request().Context())
	switch outcome.Status {
	case auth.ProfileOK:
		return ctx.JSON(http.StatusOK, echo.Map{
			"user":    outcome.Profile.User,
			"results": outcome.Profile.Results,
		})
	case auth.ProfileEmpty:
		return ctx.JSON(http.StatusOK, echo.Map{
			"user":    outcome.Profile.User,
			"results": []auth.Result{},
			"notice": s.text(ctx,
				"no results have been uploaded yet",
				"لم يتم رفع أي نتائج بعد",
			),
		})
	}

	if errors.Is(outcome.Err, auth.ErrNotAuthenticated) {
		return ctx.Redirect(http.StatusFound, loginPath)
	}
	return errors.Wrap(outcome.Err, "fetching profile")
}
