package portalapi

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/alrashid-edu/portal/core"
	"github.com/alrashid-edu/portal/core/admission"
)

func errAuthenticationFailed(msg string) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusBadRequest, msg)
}

func errAccountFrozen(msg string) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusForbidden, msg)
}

// newHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how
// to render our typed errors; anything unclassified is a 500 and is logged.
func (s *server) newHTTPErrorHandler() echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			trans := s.translator(ctx)
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(trans)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				message = origErr.FieldMap()
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		case *admission.SubmissionError, *core.TransportError:
			// entered data is preserved upstream of this point; suggest a retry
			code = http.StatusBadGateway
			message = s.text(ctx,
				"something went wrong, please try again",
				"حدث خطأ أثناء الإرسال، حاول مرة أخرى",
			)
			s.opts.Logger.Error("upstream failure", err)
		default:
			if errors.Cause(err) == admission.ErrSubmitInFlight {
				code = http.StatusTooManyRequests
				message = s.text(ctx,
					"a submission is already in progress",
					"هناك طلب قيد الإرسال بالفعل",
				)
				break
			}

			// any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg
			s.opts.Logger.Error(msg, errors.Wrap(err, msg))

			// shutting down...
			if core.IsShutdown(err) {
				go func() {
					stopCtx, cancel := context.WithTimeout(context.Background(), core.Conf.Server.ShutdownTimeout)
					defer cancel()
					_ = s.Stop(stopCtx)
				}()
			}
		}

		if ctx.Echo().Debug {
			message = err.Error()
		} else if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
