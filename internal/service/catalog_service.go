package service

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/spec-kit/grocery-service/internal/domain"
	"github.com/spec-kit/grocery-service/internal/repository"
	apperrors "github.com/spec-kit/grocery-service/pkg/util/errorutil"
)

const (
	defaultCatalogLimit = 50
	maxCatalogLimit     = 200
)

// CatalogService serves the storefront catalog and the admin inventory.
type CatalogService struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
}

// CatalogDependencies bundles repositories.
type CatalogDependencies struct {
	ProductRepo  repository.ProductRepository
	CategoryRepo repository.CategoryRepository
}

// CatalogFilters define a storefront search.
type CatalogFilters struct {
	CategoryID *int
	Search     string
	Limit      int
	Offset     int
}

// InventoryFilters define an admin inventory search.
type InventoryFilters struct {
	CategoryID *int
	Search     string
	LowStock   *int
	Limit      int
	Offset     int
}

// ProductInput carries product fields on create and update.
type ProductInput struct {
	CategoryID  *int
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	Active      bool
	ImageURL    string
}

// CategoryInput carries category fields on create and update.
type CategoryInput struct {
	Name   string
	Active bool
}

// NewCatalogService creates the service.
func NewCatalogService(deps CatalogDependencies) *CatalogService {
	return &CatalogService{products: deps.ProductRepo, categories: deps.CategoryRepo}
}

// ListProducts returns active products for the storefront.
func (s *CatalogService) ListProducts(ctx context.Context, filters CatalogFilters) ([]domain.Product, error) {
	products, err := s.products.List(ctx, repository.ProductFilter{
		CategoryID: filters.CategoryID,
		SearchTerm: searchTerm(filters.Search),
		ActiveOnly: true,
		Limit:      clampLimit(filters.Limit),
		Offset:     filters.Offset,
	})
	if err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	return products, nil
}

// GetProduct returns one active product.
func (s *CatalogService) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, apperrors.MapRepoError(err, "product", map[string]any{"product_id": productID})
	}
	if !product.Active {
		return nil, apperrors.NewNotFound("product", map[string]any{"product_id": productID})
	}
	return product, nil
}

// ListCategories returns the active categories, by name.
func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.categories.ListActive(ctx)
	if err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	return categories, nil
}

// ListInventory returns every product, active or not. LowStock keeps only
// products at or below the given stock.
func (s *CatalogService) ListInventory(ctx context.Context, actor domain.Identity, filters InventoryFilters) ([]domain.Product, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	products, err := s.products.List(ctx, repository.ProductFilter{
		CategoryID: filters.CategoryID,
		SearchTerm: searchTerm(filters.Search),
		MaxStock:   filters.LowStock,
		Limit:      clampLimit(filters.Limit),
		Offset:     filters.Offset,
	})
	if err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	return products, nil
}

// CreateProduct adds a product to the catalog.
func (s *CatalogService) CreateProduct(ctx context.Context, actor domain.Identity, input ProductInput) (*domain.Product, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := validateProduct(input); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, input.CategoryID); err != nil {
		return nil, err
	}
	product := &domain.Product{}
	applyProductInput(product, input)
	if err := s.products.Create(ctx, product); err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	return product, nil
}

// UpdateProduct replaces the editable fields of a product. Price changes do
// not touch existing orders, whose lines carry their own price.
func (s *CatalogService) UpdateProduct(ctx context.Context, actor domain.Identity, productID string, input ProductInput) (*domain.Product, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := validateProduct(input); err != nil {
		return nil, err
	}
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, apperrors.MapRepoError(err, "product", map[string]any{"product_id": productID})
	}
	if err := s.checkCategory(ctx, input.CategoryID); err != nil {
		return nil, err
	}
	applyProductInput(product, input)
	if err := s.products.Update(ctx, product); err != nil {
		return nil, apperrors.MapRepoError(err, "product", map[string]any{"product_id": productID})
	}
	return product, nil
}

// ListAllCategories includes deactivated categories.
func (s *CatalogService) ListAllCategories(ctx context.Context, actor domain.Identity) ([]domain.Category, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	categories, err := s.categories.ListAll(ctx)
	if err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	return categories, nil
}

// CreateCategory adds a category.
func (s *CatalogService) CreateCategory(ctx context.Context, actor domain.Identity, input CategoryInput) (*domain.Category, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("category name required", nil)
	}
	category := &domain.Category{Name: name, Active: input.Active}
	if err := s.categories.Create(ctx, category); err != nil {
		if repository.IsUniqueViolation(err, "") {
			return nil, apperrors.NewConflict("category already exists", map[string]any{"name": name})
		}
		return nil, apperrors.NewPersistenceError(err)
	}
	return category, nil
}

// UpdateCategory renames or deactivates a category.
func (s *CatalogService) UpdateCategory(ctx context.Context, actor domain.Identity, categoryID int, input CategoryInput) (*domain.Category, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("category name required", nil)
	}
	category, err := s.categories.GetByID(ctx, categoryID)
	if err != nil {
		return nil, apperrors.MapRepoError(err, "category", map[string]any{"category_id": categoryID})
	}
	category.Name = name
	category.Active = input.Active
	if err := s.categories.Update(ctx, category); err != nil {
		if repository.IsUniqueViolation(err, "") {
			return nil, apperrors.NewConflict("category already exists", map[string]any{"name": name})
		}
		return nil, apperrors.MapRepoError(err, "category", map[string]any{"category_id": categoryID})
	}
	return category, nil
}

func (s *CatalogService) checkCategory(ctx context.Context, categoryID *int) error {
	if categoryID == nil {
		return nil
	}
	if _, err := s.categories.GetByID(ctx, *categoryID); err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NewValidationError("unknown category", map[string]any{"category_id": *categoryID})
		}
		return apperrors.NewPersistenceError(err)
	}
	return nil
}

func validateProduct(input ProductInput) error {
	details := map[string]any{}
	if strings.TrimSpace(input.Name) == "" {
		details["name"] = "required"
	}
	if input.Price.IsNegative() {
		details["price"] = "must not be negative"
	}
	if input.Stock < 0 {
		details["stock"] = "must not be negative"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid product", details)
	}
	return nil
}

func applyProductInput(product *domain.Product, input ProductInput) {
	product.CategoryID = input.CategoryID
	product.Name = strings.TrimSpace(input.Name)
	product.Description = strings.TrimSpace(input.Description)
	product.Price = input.Price.Round(2)
	product.Stock = input.Stock
	product.Active = input.Active
	product.ImageURL = strings.TrimSpace(input.ImageURL)
}

func searchTerm(search string) *string {
	search = strings.TrimSpace(search)
	if search == "" {
		return nil
	}
	return &search
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultCatalogLimit
	}
	if limit > maxCatalogLimit {
		return maxCatalogLimit
	}
	return limit
}
