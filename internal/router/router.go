package router

import (
	"errors"
	"fmt"
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"userauth/internal/auth"
	apperrors "userauth/internal/errors"
	"userauth/internal/handler"
	"userauth/internal/logging"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	logger logging.Logger,
	jwtService *auth.JWTService,
	tokenStore auth.TokenStoreInterface,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
) {
	e.HTTPErrorHandler = handler.ErrorHandler(logger)

	e.Use(middleware.RequestID())
	e.Use(requestLogger(logger))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "API is working"})
	})
	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	bearer := bearerAuth(jwtService, tokenStore)

	// Public routes
	authGroup := e.Group("/auth")
	authGroup.POST("/create", authHandler.CreateUser)
	authGroup.POST("/login", authHandler.LoginUser)
	authGroup.POST("/forget", authHandler.ForgetPassword)
	authGroup.POST("/resetPassword", authHandler.ResetPassword)

	// Secured routes (require a session token)
	authGroup.GET("/getTokenData", authHandler.GetTokenData, bearer)
	authGroup.POST("/logout", authHandler.Logout, bearer)
	authGroup.GET("/user/:id", userHandler.GetUserByID, bearer)

	users := e.Group("/user", bearer)
	users.GET("", userHandler.GetAllUsers)
	users.GET("/:id", userHandler.GetUserByID)
	users.PUT("/:id", userHandler.UpdateUser)
	users.DELETE("/:id", userHandler.DeleteUser)
}

// bearerAuth accepts only unrevoked session tokens. A missing or malformed
// Authorization header is 401; a token that fails verification is 403.
func bearerAuth(jwtService *auth.JWTService, tokenStore auth.TokenStoreInterface) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  handler.ClaimsContextKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			claims, err := jwtService.VerifySession(token)
			if err != nil {
				return nil, err
			}
			revoked, err := tokenStore.IsAccessTokenRevoked(c.Request().Context(), claims.ID)
			if err != nil {
				return nil, err
			}
			if revoked {
				return nil, auth.ErrTokenRevoked
			}
			return claims, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			if errors.Is(err, auth.ErrInvalidToken) {
				return fmt.Errorf("%w: %v", apperrors.ErrForbidden, err)
			}
			return fmt.Errorf("%w: %v", apperrors.ErrUnauthorized, err)
		},
	})
}

func requestLogger(logger logging.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info(c.Request().Context(), "request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"request_id", v.RequestID,
				"remote_ip", v.RemoteIP,
			)
			return nil
		},
	})
}
