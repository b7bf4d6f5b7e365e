package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/spec-kit/grocery-service/internal/api/dto"
	"github.com/spec-kit/grocery-service/internal/auth"
	"github.com/spec-kit/grocery-service/internal/domain"
	"github.com/spec-kit/grocery-service/internal/policy"
	apperrors "github.com/spec-kit/grocery-service/pkg/util/errorutil"
)

const defaultPageSize = 20

func requireIdentity(c *fiber.Ctx) (domain.Identity, error) {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return identity, nil
}

// pathID reads the :id route parameter. A malformed uuid cannot name a row,
// so it is reported as not found before any query runs.
func pathID(c *fiber.Ctx, resource, field string) (string, error) {
	raw := c.Params("id")
	if _, err := uuid.Parse(raw); err != nil {
		return "", apperrors.NewNotFound(resource, map[string]any{field: raw})
	}
	return raw, nil
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

// parsePage reads page and page_size into limit and offset.
func parsePage(c *fiber.Ctx) (limit, offset int) {
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), defaultPageSize)
	return pageSize, (page - 1) * pageSize
}

func parseOptionalInt(val, field string) (*int, error) {
	if val == "" {
		return nil, nil
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid "+field, map[string]any{field: val})
	}
	return &parsed, nil
}

// parseStatuses accepts a comma separated list of codes or keys.
func parseStatuses(raw string) ([]domain.OrderStatus, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	keys := lo.SliceToMap(domain.StatusCatalog(), func(m domain.StatusMetadata) (string, domain.OrderStatus) {
		return m.Key, m.Code
	})
	var out []domain.OrderStatus
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if code, err := strconv.Atoi(part); err == nil && domain.OrderStatus(code).Valid() {
			out = append(out, domain.OrderStatus(code))
			continue
		}
		code, ok := keys[part]
		if !ok {
			return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": part})
		}
		out = append(out, code)
	}
	return out, nil
}

func identityResponse(identity domain.Identity) dto.IdentityResponse {
	home := policy.HomeRouteFor(identity.Role())
	resp := dto.IdentityResponse{
		ID:          identity.BackingRecordID(),
		Email:       identity.Email(),
		Role:        identity.Role(),
		BackingKind: identity.BackingKind(),
		HomeRoute:   home,
		HomePath:    home.Path(),
	}
	switch id := identity.(type) {
	case domain.CustomerIdentity:
		resp.Name = id.Customer.FullName()
	case domain.StaffIdentity:
		resp.Name = id.Staff.FullName
	}
	return resp
}

func orderResponse(order *domain.Order, identity domain.Identity) dto.OrderResponse {
	return dto.OrderResponse{
		ID:                order.ID,
		OrderCode:         order.OrderCode,
		CustomerID:        order.CustomerID,
		CourierID:         order.CourierID,
		DeliveryAddressID: order.DeliveryAddressID,
		Status:            order.Status.Meta(),
		Subtotal:          order.Subtotal.StringFixed(2),
		ShippingCost:      order.ShippingCost.StringFixed(2),
		Total:             order.Total.StringFixed(2),
		Delivery: dto.DeliveryInfoPayload{
			Address:  order.Delivery.Address,
			Phone:    order.Delivery.Phone,
			Comments: order.Delivery.Comments,
		},
		Lines: lo.Map(order.Lines, func(line domain.OrderLine, _ int) dto.OrderLineResponse {
			return dto.OrderLineResponse{
				ProductID:    line.ProductID,
				ProductName:  line.ProductName,
				Quantity:     line.Quantity,
				UnitPrice:    line.HistoricalUnitPrice.StringFixed(2),
				LineSubtotal: line.LineSubtotal.StringFixed(2),
			}
		}),
		AllowedActions: lo.Map(policy.AllowedActions(identity, order), func(s domain.OrderStatus, _ int) domain.StatusMetadata {
			return s.Meta()
		}),
		CreatedAt:   order.CreatedAt,
		UpdatedAt:   order.UpdatedAt,
		DeliveredAt: order.DeliveredAt,
	}
}

func historyResponses(entries []domain.OrderStatusChange) []dto.OrderHistoryResponse {
	return lo.Map(entries, func(entry domain.OrderStatusChange, _ int) dto.OrderHistoryResponse {
		resp := dto.OrderHistoryResponse{
			ID:        entry.ID,
			ToStatus:  int(entry.ToStatus),
			ActorKind: entry.ActorKind,
			ActorID:   entry.ActorID,
			CreatedAt: entry.CreatedAt,
		}
		if entry.FromStatus != 0 {
			from := int(entry.FromStatus)
			resp.FromStatus = &from
		}
		return resp
	})
}

func productResponse(p domain.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:          p.ID,
		CategoryID:  p.CategoryID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.StringFixed(2),
		Stock:       p.Stock,
		Active:      p.Active,
		ImageURL:    p.ImageURL,
		UpdatedAt:   p.UpdatedAt,
	}
}

func categoryResponse(c domain.Category) dto.CategoryResponse {
	return dto.CategoryResponse{ID: c.ID, Name: c.Name, Active: c.Active}
}

func staffResponse(m domain.StaffMember) dto.StaffResponse {
	return dto.StaffResponse{
		ID:        m.ID,
		FullName:  m.FullName,
		Email:     m.CorporateEmail,
		RoleID:    m.RoleID,
		RoleName:  m.RoleName,
		Role:      domain.RoleFromStaffRoleName(m.RoleName),
		Active:    m.Active,
		CreatedAt: m.CreatedAt,
	}
}
