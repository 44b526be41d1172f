package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/egannguyen/go-food-delivery/internal/entity"
)

// Error codes sent to clients next to the human readable message.
const (
	CodeValidation        = "validation"
	CodeNotFound          = "not_found"
	CodeUnauthorized      = "unauthorized"
	CodeInvalidTransition = "invalid_transition"
	CodePersistence       = "persistence"
	CodeRateLimited       = "rate_limited"
	CodeInternal          = "internal"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// The browser clients show these strings as-is.
var notFoundMessages = map[string]string{
	"store":           "Tienda no encontrada",
	"store for owner": "Tienda no encontrada",
	"order":           "Orden no encontrada",
	"product":         "Producto no encontrado",
}

const (
	msgInvalidCredentials = "Credenciales inválidas"
	msgInternal           = "Error interno del servidor"
	msgPersistence        = "No se pudieron guardar los cambios"
	msgTooManyRequests    = "Demasiados intentos, intenta más tarde"
)

// errorStatus maps err to an HTTP status, a code and a client message.
func errorStatus(err error) (int, string, string) {
	var (
		validation *entity.ValidationError
		notFound   *entity.NotFoundError
		auth       *entity.AuthError
		transition *entity.InvalidTransitionError
		persist    *entity.PersistenceError
		httpErr    *echo.HTTPError
	)

	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, CodeValidation, validation.Error()
	case errors.As(err, &notFound):
		msg, ok := notFoundMessages[notFound.Kind]
		if !ok {
			msg = notFound.Error()
		}
		return http.StatusNotFound, CodeNotFound, msg
	case errors.As(err, &auth):
		return http.StatusUnauthorized, CodeUnauthorized, msgInvalidCredentials
	case errors.As(err, &transition):
		return http.StatusConflict, CodeInvalidTransition, transition.Error()
	case errors.As(err, &persist):
		return http.StatusInternalServerError, CodePersistence, msgPersistence
	case errors.As(err, &httpErr):
		return httpErr.Code, httpCode(httpErr.Code), httpMessage(httpErr)
	default:
		return http.StatusInternalServerError, CodeInternal, msgInternal
	}
}

func httpCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return CodeValidation
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return CodeNotFound
	case http.StatusUnauthorized:
		return CodeUnauthorized
	case http.StatusTooManyRequests:
		return CodeRateLimited
	default:
		return CodeInternal
	}
}

func httpMessage(he *echo.HTTPError) string {
	if msg, ok := he.Message.(string); ok {
		return msg
	}
	return http.StatusText(he.Code)
}

// errorHandler replaces echo's default so every failure carries ErrorResponse.
func errorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, code, msg := errorStatus(err)
		if status >= http.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
				zap.Error(err),
			)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, ErrorResponse{Success: false, Message: msg, Code: code})
		}
		if err != nil {
			logger.Warn("failed to write error response", zap.Error(err))
		}
	}
}
