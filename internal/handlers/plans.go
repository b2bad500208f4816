package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/study_planner/internal/apperr"
	"github.com/Skotchmaster/study_planner/internal/middleware/auth"
	"github.com/Skotchmaster/study_planner/internal/service"
)

type PlanHandler struct {
	Plans *service.PlanService
}

func (h *PlanHandler) List(c echo.Context) error {
	owner, ok := auth.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, msgUnauthorized)
	}

	plans, err := h.Plans.List(c.Request().Context(), owner)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, plans)
}

func (h *PlanHandler) Generate(c echo.Context) error {
	owner, ok := auth.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, msgUnauthorized)
	}

	// deadlineDays arrives as a number or a numeric string
	var req struct {
		Subject      string      `json:"subject"`
		Goal         string      `json:"goal"`
		DeadlineDays json.Number `json:"deadlineDays"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	var days int
	if req.DeadlineDays != "" {
		n, err := strconv.Atoi(req.DeadlineDays.String())
		if err != nil || n <= 0 {
			return apperr.Validation("invalid deadline")
		}
		days = n
	}

	plan, err := h.Plans.Generate(c.Request().Context(), owner, service.GenerateInput{
		Subject:      req.Subject,
		Goal:         req.Goal,
		DeadlineDays: days,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, plan)
}

func (h *PlanHandler) Delete(c echo.Context) error {
	owner, ok := auth.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, msgUnauthorized)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "plan not found")
	}

	if err := h.Plans.Delete(c.Request().Context(), owner, id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "plan deleted"})
}

func (h *PlanHandler) Search(c echo.Context) error {
	owner, ok := auth.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, msgUnauthorized)
	}

	plans, err := h.Plans.Search(c.Request().Context(), owner, c.QueryParam("q"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, plans)
}
