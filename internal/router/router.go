package router

import (
	stderrors "errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"tutorcrm/internal/config"
	"tutorcrm/internal/errors"
	"tutorcrm/internal/handler"
	"tutorcrm/internal/service"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	authService service.AuthService,
	authHandler *handler.AuthHandler,
	lessonHandler *handler.LessonHandler,
) {
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")
	api.GET("/health", handler.Health)

	// Public routes
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	requireAuth := authMiddleware(authService)

	api.GET("/auth/me", authHandler.Me, requireAuth)
	api.POST("/auth/logout", authHandler.Logout, requireAuth)

	// Lesson routes (require a valid, unrevoked bearer token)
	lessons := api.Group("/lessons", requireAuth)
	lessons.POST("/bulk", lessonHandler.BulkCreate)
	lessons.GET("", lessonHandler.List)
	lessons.GET("/", lessonHandler.List)
	lessons.GET("/:id", lessonHandler.Get)
	lessons.PATCH("/:id", lessonHandler.Update)
	lessons.DELETE("/:id", lessonHandler.Delete)
}

// authFailureKey holds the error Authenticate returned, so storage failures are not reported as 401.
const authFailureKey = "auth_failure"

// authMiddleware resolves the bearer token to a *model.User stored under handler.UserContextKey.
func authMiddleware(authService service.AuthService) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  handler.UserContextKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			user, err := authService.Authenticate(c.Request().Context(), token)
			if err != nil {
				c.Set(authFailureKey, err)
				return nil, err
			}
			return user, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			if cause, ok := c.Get(authFailureKey).(error); ok && !stderrors.Is(cause, errors.ErrUnauthorized) {
				c.Logger().Errorf("authenticate: %v", cause)
				httpErr := errors.MapErrorToHTTP(cause)
				return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
			}
			return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
				Error: errors.ErrUnauthorized.Error(),
				Code:  "UNAUTHORIZED",
			})
		},
	})
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
