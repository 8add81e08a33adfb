package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/GonzaloPontnau/FitFlow-TP-DDS/internal/application"
	"github.com/GonzaloPontnau/FitFlow-TP-DDS/internal/domain/class"
)

type ClassHandler struct {
	service ClassServiceInterface
}

func NewClassHandler(s ClassServiceInterface) *ClassHandler {
	return &ClassHandler{service: s}
}

type CreateClassRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Capacity    int    `json:"capacity" validate:"required,min=1"`
}

type ClassResponse struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Capacity        int       `json:"capacity"`
	Active          bool      `json:"active"`
	WaitlistEnabled bool      `json:"waitlist_enabled"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func toClassResponse(cl *class.Class) ClassResponse {
	return ClassResponse{
		ID: cl.ID, Title: cl.Title, Description: cl.Description,
		Capacity: cl.Capacity, Active: cl.Active, WaitlistEnabled: cl.WaitlistEnabled,
		CreatedAt: cl.CreatedAt, UpdatedAt: cl.UpdatedAt,
	}
}

// Create はクラスを作成する
// POST /classes
func (h *ClassHandler) Create(c echo.Context) error {
	var req CreateClassRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	cl, err := h.service.CreateClass(c.Request().Context(), application.CreateClassInput{
		Title:       req.Title,
		Description: req.Description,
		Capacity:    req.Capacity,
	})
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, toClassResponse(cl))
}

// GetByID はクラスを取得する
// GET /classes/:id
func (h *ClassHandler) GetByID(c echo.Context) error {
	cl, err := h.service.GetClass(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toClassResponse(cl))
}

// List はクラス一覧を取得する
// GET /classes
func (h *ClassHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	classes, err := h.service.ListClasses(c.Request().Context(), limit, offset)
	if err != nil {
		return toHTTPError(err)
	}
	resp := make([]ClassResponse, len(classes))
	for i, cl := range classes {
		resp[i] = toClassResponse(cl)
	}
	return c.JSON(http.StatusOK, resp)
}

// Deactivate はクラスを非アクティブ化する
// POST /classes/:id/deactivate
func (h *ClassHandler) Deactivate(c echo.Context) error {
	cl, err := h.service.DeactivateClass(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toClassResponse(cl))
}
