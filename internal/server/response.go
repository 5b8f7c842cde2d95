package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/abhisek/mandela/internal/catalog"
	"github.com/abhisek/mandela/internal/quiz"
)

// Response is the envelope every API reply uses.
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{Code: http.StatusOK, Message: "success", Data: data})
}

func created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, Response{Code: http.StatusCreated, Message: "created", Data: data})
}

func fail(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, Response{Code: code, Message: message})
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, quiz.ErrInvalidChoice):
		return http.StatusBadRequest
	case errors.Is(err, quiz.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, quiz.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, catalog.ErrOutOfRange):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		s.log.Error("internal server error", zap.String("path", c.FullPath()), zap.Error(err))
		fail(c, code, "internal server error")
		return
	}
	fail(c, code, err.Error())
}
