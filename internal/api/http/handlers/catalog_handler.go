package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"

	"github.com/spec-kit/grocery-service/internal/api/dto"
	"github.com/spec-kit/grocery-service/internal/domain"
	"github.com/spec-kit/grocery-service/internal/service"
	apperrors "github.com/spec-kit/grocery-service/pkg/util/errorutil"
)

// CatalogHandler serves the public catalog and the admin inventory.
type CatalogHandler struct {
	catalog *service.CatalogService
}

// NewCatalogHandler constructs handler.
func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// ListProducts GET /catalog/products.
func (h *CatalogHandler) ListProducts(c *fiber.Ctx) error {
	categoryID, err := parseOptionalInt(c.Query("category_id"), "category_id")
	if err != nil {
		return err
	}
	limit, offset := parsePage(c)
	products, err := h.catalog.ListProducts(c.UserContext(), service.CatalogFilters{
		CategoryID: categoryID,
		Search:     c.Query("search"),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": lo.Map(products, func(p domain.Product, _ int) dto.ProductResponse { return productResponse(p) })})
}

// GetProduct GET /catalog/products/:id.
func (h *CatalogHandler) GetProduct(c *fiber.Ctx) error {
	productID, err := pathID(c, "product", "product_id")
	if err != nil {
		return err
	}
	product, err := h.catalog.GetProduct(c.UserContext(), productID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": productResponse(*product)})
}

// ListCategories GET /catalog/categories.
func (h *CatalogHandler) ListCategories(c *fiber.Ctx) error {
	categories, err := h.catalog.ListCategories(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": lo.Map(categories, func(cat domain.Category, _ int) dto.CategoryResponse { return categoryResponse(cat) })})
}

// ListInventory GET /inventory/products.
func (h *CatalogHandler) ListInventory(c *fiber.Ctx) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}
	categoryID, err := parseOptionalInt(c.Query("category_id"), "category_id")
	if err != nil {
		return err
	}
	lowStock, err := parseOptionalInt(c.Query("low_stock"), "low_stock")
	if err != nil {
		return err
	}
	limit, offset := parsePage(c)
	products, err := h.catalog.ListInventory(c.UserContext(), identity, service.InventoryFilters{
		CategoryID: categoryID,
		Search:     c.Query("search"),
		LowStock:   lowStock,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": lo.Map(products, func(p domain.Product, _ int) dto.ProductResponse { return productResponse(p) })})
}

// CreateProduct POST /inventory/products.
func (h *CatalogHandler) CreateProduct(c *fiber.Ctx) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}
	var req dto.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	product, err := h.catalog.CreateProduct(c.UserContext(), identity, productInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": productResponse(*product)})
}

// UpdateProduct PUT /inventory/products/:id.
func (h *CatalogHandler) UpdateProduct(c *fiber.Ctx) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}
	var req dto.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	productID, err := pathID(c, "product", "product_id")
	if err != nil {
		return err
	}
	product, err := h.catalog.UpdateProduct(c.UserContext(), identity, productID, productInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": productResponse(*product)})
}

// ListAllCategories GET /inventory/categories.
func (h *CatalogHandler) ListAllCategories(c *fiber.Ctx) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}
	categories, err := h.catalog.ListAllCategories(c.UserContext(), identity)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": lo.Map(categories, func(cat domain.Category, _ int) dto.CategoryResponse { return categoryResponse(cat) })})
}

// CreateCategory POST /inventory/categories.
func (h *CatalogHandler) CreateCategory(c *fiber.Ctx) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}
	var req dto.CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	category, err := h.catalog.CreateCategory(c.UserContext(), identity, service.CategoryInput{
		Name:   req.Name,
		Active: req.Active == nil || *req.Active,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": categoryResponse(*category)})
}

// UpdateCategory PUT /inventory/categories/:id.
func (h *CatalogHandler) UpdateCategory(c *fiber.Ctx) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}
	categoryID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return apperrors.NewValidationError("invalid category id", map[string]any{"category_id": c.Params("id")})
	}
	var req dto.CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	category, err := h.catalog.UpdateCategory(c.UserContext(), identity, categoryID, service.CategoryInput{
		Name:   req.Name,
		Active: req.Active == nil || *req.Active,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": categoryResponse(*category)})
}

func productInput(req dto.ProductRequest) service.ProductInput {
	return service.ProductInput{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Active:      req.Active == nil || *req.Active,
		ImageURL:    req.ImageURL,
	}
}
