package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nfrund/rollcall/internal/domain"
	"github.com/nfrund/rollcall/internal/realtime"
)

// TokenHandler serves /api/realtime/token. Clients fetch a credential here
// before attaching to a channel; the purpose query parameter selects the
// capability set.
type TokenHandler struct {
	issuer *realtime.Issuer
	logger *slog.Logger
}

// NewTokenHandler creates a new TokenHandler.
func NewTokenHandler(issuer *realtime.Issuer) *TokenHandler {
	return &TokenHandler{
		issuer: issuer,
		logger: slog.Default().With("service", "token_api"),
	}
}

// Issue handles GET and POST. An absent purpose defaults to the student
// capability set. A server without a signing key answers 500 with a setup
// hint and no credential fields.
func (h *TokenHandler) Issue(c echo.Context) error {
	purpose := realtime.Purpose(c.QueryParam("purpose"))

	cred, err := h.issuer.Issue(purpose)
	if errors.Is(err, domain.ErrNotConfigured) {
		h.logger.Warn("Realtime credential requested without a signing key")
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Realtime is not configured",
			Hint:  "Set REALTIME_SIGNING_KEY and restart the server.",
		})
	}
	if err != nil {
		h.logger.Error("Failed to issue realtime credential", "error", err, "purpose", purpose)
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}

	return c.JSON(http.StatusOK, cred)
}
