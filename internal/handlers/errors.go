package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/study_planner/internal/apperr"
	"github.com/Skotchmaster/study_planner/internal/generation"
	"github.com/Skotchmaster/study_planner/internal/logging"
)

const (
	msgInternal      = "internal server error"
	msgConfiguration = "server configuration error"
	msgUnauthorized  = "Unauthorized"

	msgGenTimeout     = "the AI took too long to respond (over 2 minutes), please try again"
	msgGenEmpty       = "the generation service returned an empty response, check that the workflow is active"
	msgGenMalformed   = "the AI returned a response in an unexpected format"
	msgGenUnavailable = "could not reach the generation service, please try again"
)

// ErrorHandler renders every error as {"error": "..."}.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	he := toHTTPError(c.Request().Context(), err)
	msg, ok := he.Message.(string)
	if !ok {
		msg = fmt.Sprint(he.Message)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(he.Code)
	} else {
		err = c.JSON(he.Code, echo.Map{"error": msg})
	}
	if err != nil {
		logging.FromContext(c.Request().Context()).Error("error_response_failed", "error", err)
	}
}

// toHTTPError maps the application taxonomy to a status and a client-safe
// message. Details stay in the logs.
func toHTTPError(ctx context.Context, err error) *echo.HTTPError {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}

	l := logging.FromContext(ctx)
	var ae *apperr.Error
	hasMsg := errors.As(err, &ae)
	safe := func(fallback string) string {
		if hasMsg {
			return ae.Msg
		}
		return fallback
	}

	var se *generation.ServiceError
	switch {
	case errors.Is(err, apperr.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, safe("invalid request"))
	case errors.Is(err, apperr.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	case errors.Is(err, apperr.ErrAuthentication):
		return echo.NewHTTPError(http.StatusUnauthorized, msgUnauthorized)
	case errors.Is(err, apperr.ErrAuthorization):
		return echo.NewHTTPError(http.StatusForbidden, safe("forbidden"))
	case errors.Is(err, apperr.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, safe("not found"))
	case errors.Is(err, apperr.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, safe("already exists"))
	case errors.Is(err, apperr.ErrConfiguration):
		logging.Critical(ctx, "configuration_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, msgConfiguration)
	case errors.Is(err, apperr.ErrGenerationTimeout):
		return echo.NewHTTPError(http.StatusGatewayTimeout, msgGenTimeout)
	case errors.As(err, &se):
		return echo.NewHTTPError(http.StatusBadGateway,
			fmt.Sprintf("the generation service returned status %d, please try again", se.Status))
	case errors.Is(err, apperr.ErrGenerationService):
		return echo.NewHTTPError(http.StatusBadGateway, "the generation service failed, please try again")
	case errors.Is(err, apperr.ErrGenerationEmpty):
		return echo.NewHTTPError(http.StatusBadGateway, msgGenEmpty)
	case errors.Is(err, apperr.ErrGenerationMalformed):
		return echo.NewHTTPError(http.StatusBadGateway, msgGenMalformed)
	case errors.Is(err, apperr.ErrGenerationUnavailable):
		return echo.NewHTTPError(http.StatusBadGateway, msgGenUnavailable)
	}

	l.Error("internal_error", "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, msgInternal)
}
