package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/mkurbatov/jobhub/internal/handlers"
	authmw "github.com/mkurbatov/jobhub/internal/middleware/auth"
)

type Deps struct {
	AuthHandler    *handlers.AuthHandler
	UserHandler    *handlers.UserHandler
	VacancyHandler *handlers.VacancyHandler

	Refresh      echo.MiddlewareFunc
	Authenticate echo.MiddlewareFunc
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	// Refresh runs first so Authenticate observes a token minted this request.
	v1 := e.Group("/api/v1", d.Refresh, d.Authenticate)

	authGroup := v1.Group("/auth")
	authGroup.POST("/login", d.AuthHandler.Login)
	authGroup.POST("/logout", d.AuthHandler.Logout)
	authGroup.POST("/refresh", d.AuthHandler.Refresh)
	authGroup.GET("/me", d.AuthHandler.Me) // open: anonymous is a valid answer

	users := v1.Group("/users")
	users.POST("", d.UserHandler.Register)
	users.GET("/:id", d.UserHandler.GetProfile, authmw.Authenticated)
	users.PATCH("/:id", d.UserHandler.Update, authmw.Authenticated)
	users.DELETE("/:id", d.UserHandler.Delete, authmw.Authenticated)

	vacancies := v1.Group("/vacancies")
	vacancies.GET("/search", d.VacancyHandler.Search)
	vacancies.GET("", d.VacancyHandler.List)
	vacancies.GET("/:id", d.VacancyHandler.Get)

	admin := v1.Group("/admin", authmw.Superuser)
	admin.POST("/users/:id/revoke", d.AuthHandler.RevokeUser)
	admin.POST("/vacancies/collect", d.VacancyHandler.Collect)
	admin.POST("/vacancies", d.VacancyHandler.Create)
	admin.PATCH("/vacancies/:id", d.VacancyHandler.Update)
	admin.DELETE("/vacancies/:id", d.VacancyHandler.Delete)
}
