package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nfrund/rollcall/internal/metrics"
)

// RegisterRoutes sets up all the application routes.
func (s *Server) RegisterRoutes() {
	// HTML pages.
	s.E.GET("/", s.pagesHandler.Home)
	s.E.GET("/students", s.pagesHandler.Students)
	s.E.GET("/students/rows", s.pagesHandler.StudentRows)
	s.E.GET("/students/new", s.pagesHandler.NewStudent)
	s.E.POST("/students", s.pagesHandler.CreateStudent)
	s.E.GET("/students/:id", s.pagesHandler.Student)
	s.E.GET("/students/:id/edit", s.pagesHandler.EditStudent)
	s.E.POST("/students/:id", s.pagesHandler.UpdateStudent)
	s.E.POST("/students/:id/delete", s.pagesHandler.DeleteStudent)
	s.E.GET("/chat", s.pagesHandler.Chat)
	s.E.GET("/assistant", s.pagesHandler.Assistant)
	s.E.POST("/assistant/message", s.pagesHandler.AssistantMessage)

	// JSON API.
	api := s.E.Group("/api")
	api.GET("/students", s.studentHandler.List)
	api.POST("/students", s.studentHandler.Create)
	api.GET("/students/:id", s.studentHandler.Get)
	api.PUT("/students/:id", s.studentHandler.Update)
	api.DELETE("/students/:id", s.studentHandler.Delete)
	api.POST("/students/:id/avatar", s.avatarHandler.Upload)
	api.GET("/realtime/token", s.tokenHandler.Issue)
	api.POST("/realtime/token", s.tokenHandler.Issue)
	api.POST("/chat", s.chatbotHandler.Message)

	// Realtime attach point and served uploads.
	s.E.GET("/ws", s.bridge.Handler())
	s.E.GET("/avatars/:name", s.avatarHandler.Serve)

	// Operational endpoints.
	s.E.GET("/metrics", echo.WrapHandler(metrics.Handler()))
	s.E.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})
}
