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

// AddressesHandler manages customer addresses.
type AddressesHandler struct {
	addresses *service.AddressService
}

// NewAddressesHandler constructs handler.
func NewAddressesHandler(addresses *service.AddressService) *AddressesHandler {
	return &AddressesHandler{addresses: addresses}
}

// List GET /addresses.
func (h *AddressesHandler) List(c *fiber.Ctx) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}
	addresses, err := h.addresses.ListAddresses(c.UserContext(), identity)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": lo.Map(addresses, func(a domain.Address, _ int) dto.AddressResponse { return addressResponse(a) })})
}

// Create POST /addresses.
func (h *AddressesHandler) Create(c *fiber.Ctx) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}
	var req dto.AddressRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	address, err := h.addresses.AddAddress(c.UserContext(), identity, service.AddressInput{
		Line:      req.Line,
		Reference: req.Reference,
		District:  req.District,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": addressResponse(*address)})
}

func addressResponse(a domain.Address) dto.AddressResponse {
	return dto.AddressResponse{ID: a.ID, Line: a.Line, Reference: a.Reference, District: a.District, CreatedAt: a.CreatedAt}
}
