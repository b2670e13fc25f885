package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"userauth/internal/auth"
	apperrors "userauth/internal/errors"
	"userauth/internal/logging"
	"userauth/internal/service"
)

const (
	statusSuccess = "success"

	// ClaimsContextKey is where the bearer gate stores verified *auth.Claims.
	ClaimsContextKey = "user"
)

// Response is the success envelope shared by every endpoint.
type Response struct {
	Status     string      `json:"status"`
	Message    string      `json:"message"`
	HTTPStatus int         `json:"httpStatus"`
	Token      string      `json:"token,omitempty"`
	Data       interface{} `json:"data,omitempty"`
}

func respond(c echo.Context, res *service.Result) error {
	return c.JSON(res.HTTPStatus, Response{
		Status:     statusSuccess,
		Message:    res.Message,
		HTTPStatus: res.HTTPStatus,
		Token:      res.Token,
		Data:       res.Data,
	})
}

func respondError(c echo.Context, err error) error {
	httpErr := apperrors.MapErrorToHTTP(err)
	return c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
}

func badRequestBody() error {
	return fmt.Errorf("%w: invalid request body", apperrors.ErrValidation)
}

// claimsFromContext returns the claims attached by the bearer gate.
func claimsFromContext(c echo.Context) (*auth.Claims, bool) {
	claims, ok := c.Get(ClaimsContextKey).(*auth.Claims)
	return claims, ok && claims != nil
}

// ErrorHandler renders errors that escape handlers (unknown routes, bearer
// gate rejections, recovered panics) in the error envelope.
func ErrorHandler(logger logging.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var body apperrors.ErrorResponse
		var he *echo.HTTPError
		switch {
		case errors.As(err, &he):
			msg := http.StatusText(he.Code)
			if m, ok := he.Message.(string); ok && m != "" {
				msg = m
			}
			body = apperrors.NewHTTPError(he.Code, msg, codeForStatus(he.Code)).ToErrorResponse()
		default:
			body = apperrors.MapErrorToHTTP(err).ToErrorResponse()
		}

		if body.HTTPStatus >= http.StatusInternalServerError {
			logger.Error(c.Request().Context(), "request failed", "path", c.Path(), "error", err)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(body.HTTPStatus)
		} else {
			err = c.JSON(body.HTTPStatus, body)
		}
		if err != nil {
			logger.Error(c.Request().Context(), "write error response", "error", err)
		}
	}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "BAD_REQUEST"
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	default:
		if status >= http.StatusInternalServerError {
			return "INTERNAL_ERROR"
		}
		return "HTTP_ERROR"
	}
}
