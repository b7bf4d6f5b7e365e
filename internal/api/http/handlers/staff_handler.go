package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"

	"github.com/spec-kit/grocery-service/internal/api/dto"
	"github.com/spec-kit/grocery-service/internal/domain"
	"github.com/spec-kit/grocery-service/internal/service"
	apperrors "github.com/spec-kit/grocery-service/pkg/util/errorutil"
)

// StaffHandler exposes staff administration endpoints.
type StaffHandler struct {
	staff *service.StaffService
}

// NewStaffHandler constructs handler.
func NewStaffHandler(staffService *service.StaffService) *StaffHandler {
	return &StaffHandler{staff: staffService}
}

// CreateStaff handles POST /staff/members.
func (h *StaffHandler) CreateStaff(c *fiber.Ctx) error {
	actor, err := requireIdentity(c)
	if err != nil {
		return err
	}
	var req dto.StaffCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	member, err := h.staff.CreateStaffMember(c.UserContext(), actor, service.StaffCreateInput{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
		RoleName: req.Role,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": staffResponse(*member)})
}

// ListStaff handles GET /staff/members.
func (h *StaffHandler) ListStaff(c *fiber.Ctx) error {
	actor, err := requireIdentity(c)
	if err != nil {
		return err
	}
	filters := service.StaffListFilters{}
	if role := domain.Role(c.Query("role")); role != "" {
		if !role.IsStaff() {
			return apperrors.NewValidationError("unknown staff role", map[string]any{"role": string(role)})
		}
		filters.Role = &role
	}
	if active := c.Query("active"); active != "" {
		value := active == "true"
		filters.Active = &value
	}
	filters.Limit, filters.Offset = parsePage(c)
	members, err := h.staff.ListStaffMembers(c.UserContext(), actor, filters)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": lo.Map(members, func(m domain.StaffMember, _ int) dto.StaffResponse { return staffResponse(m) })})
}

// SetActive handles PATCH /staff/members/:id/active.
func (h *StaffHandler) SetActive(c *fiber.Ctx) error {
	actor, err := requireIdentity(c)
	if err != nil {
		return err
	}
	var req dto.StaffActiveRequest
	if err := c.BodyParser(&req); err != nil || req.Active == nil {
		return apperrors.NewValidationError("active required", nil)
	}
	staffID, err := pathID(c, "staff member", "staff_id")
	if err != nil {
		return err
	}
	member, err := h.staff.SetStaffActive(c.UserContext(), actor, staffID, *req.Active)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": staffResponse(*member)})
}

// ListRoles handles GET /staff/roles.
func (h *StaffHandler) ListRoles(c *fiber.Ctx) error {
	roles, err := h.staff.ListRoles(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": lo.Map(roles, func(r domain.StaffRole, _ int) dto.StaffRoleResponse {
		return dto.StaffRoleResponse{ID: r.ID, Name: r.Name, Role: domain.RoleFromStaffRoleName(r.Name)}
	})})
}

// ListCouriers handles GET /staff/couriers.
func (h *StaffHandler) ListCouriers(c *fiber.Ctx) error {
	actor, err := requireIdentity(c)
	if err != nil {
		return err
	}
	couriers, err := h.staff.ListCouriers(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": lo.Map(couriers, func(m domain.StaffMember, _ int) dto.StaffResponse { return staffResponse(m) })})
}
