package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/fieldsales/visit-tracker/internal/core/domain"
	"github.com/fieldsales/visit-tracker/internal/core/ports"
)

type RoleHandler struct {
	roleService ports.RoleService
}

func NewRoleHandler(roleService ports.RoleService) *RoleHandler {
	return &RoleHandler{roleService: roleService}
}

// List returns every active assignment.
//
// @Summary      List role assignments
// @Tags         roles
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  listAssignmentsResponse
// @Failure      403  {object}  errorResponse
// @Failure      503  {object}  errorResponse
// @Router       /v1/admin/roles [get]
func (h *RoleHandler) List(c echo.Context) error {
	list, err := h.roleService.ListUsersWithRoles(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAssignmentResponses(list))
}

// Assign replaces the actor's active role. Every live session of the actor
// re-resolves once the change is published.
//
// @Summary      Assign role
// @Tags         roles
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path      string             true  "Actor ID"
// @Param        body  body      assignRoleRequest  true  "New role"
// @Success      200   {object}  assignRoleResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /v1/admin/users/{id}/role [put]
func (h *RoleHandler) Assign(c echo.Context) error {
	actorID := strings.TrimSpace(c.Param("id"))
	if actorID == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "actor id is required"})
	}

	var req assignRoleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	assigned, err := h.roleService.AssignRole(c.Request().Context(), actorID, role)
	if err != nil {
		return err
	}
	if !assigned {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "role assignment failed"})
	}

	return c.JSON(http.StatusOK, assignRoleResponse{ActorID: actorID, Role: role, Assigned: true})
}
