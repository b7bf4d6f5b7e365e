package service

import (
	"context"
	"strings"

	"github.com/spec-kit/grocery-service/internal/domain"
	"github.com/spec-kit/grocery-service/internal/repository"
	apperrors "github.com/spec-kit/grocery-service/pkg/util/errorutil"
)

// AddressService manages a customer's saved delivery addresses.
type AddressService struct {
	addresses repository.AddressRepository
}

// AddressInput describes a new address.
type AddressInput struct {
	Line      string
	Reference string
	District  string
}

// NewAddressService creates the service.
func NewAddressService(addresses repository.AddressRepository) *AddressService {
	return &AddressService{addresses: addresses}
}

func requireCustomer(actor domain.Identity) (string, error) {
	if actor == nil {
		return "", apperrors.NewUnauthorized("authentication required")
	}
	if actor.Role() != domain.RoleCustomer {
		return "", apperrors.NewForbidden("customer account required")
	}
	return actor.BackingRecordID(), nil
}

// ListAddresses returns the caller's addresses.
func (s *AddressService) ListAddresses(ctx context.Context, actor domain.Identity) ([]domain.Address, error) {
	customerID, err := requireCustomer(actor)
	if err != nil {
		return nil, err
	}
	addresses, err := s.addresses.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	return addresses, nil
}

// AddAddress saves an address for the caller.
func (s *AddressService) AddAddress(ctx context.Context, actor domain.Identity, input AddressInput) (*domain.Address, error) {
	customerID, err := requireCustomer(actor)
	if err != nil {
		return nil, err
	}
	line := strings.TrimSpace(input.Line)
	if line == "" {
		return nil, apperrors.NewValidationError("address line required", nil)
	}
	address := &domain.Address{
		CustomerID: customerID,
		Line:       line,
		Reference:  strings.TrimSpace(input.Reference),
		District:   strings.TrimSpace(input.District),
	}
	if err := s.addresses.Create(ctx, address); err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	return address, nil
}
