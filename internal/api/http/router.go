package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/grocery-service/internal/api/http/handlers"
	"github.com/spec-kit/grocery-service/internal/auth"
	"github.com/spec-kit/grocery-service/internal/domain"
	"github.com/spec-kit/grocery-service/internal/policy"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Catalog        *handlers.CatalogHandler
	Orders         *handlers.OrdersHandler
	Staff          *handlers.StaffHandler
	Addresses      *handlers.AddressesHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Operations panel groups are guarded by
// the role-to-route table; order endpoints are open to every identity and
// scoped inside the order service.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Get("/routes/:route", cfg.AuthMiddleware.Optional, cfg.Auth.CheckRoute)
	authGroup.Post("/logout", cfg.AuthMiddleware.Handle, cfg.Auth.Logout)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, cfg.Auth.Me)
	authGroup.Post("/password/reset/request", cfg.Auth.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Auth.ConfirmPasswordReset)
	authGroup.Post("/password/change", cfg.AuthMiddleware.Handle, cfg.Auth.ChangePassword)

	catalog := app.Group("/catalog")
	catalog.Get("/products", cfg.Catalog.ListProducts)
	catalog.Get("/products/:id", cfg.Catalog.GetProduct)
	catalog.Get("/categories", cfg.Catalog.ListCategories)
	catalog.Get("/statuses", cfg.Orders.Statuses)

	orders := app.Group("/orders", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	orders.Post("/", auth.RequireRoute(policy.RouteCheckout), cfg.Orders.CreateOrder)
	orders.Get("/", cfg.Orders.ListOrders)
	orders.Get("/stats", cfg.Orders.Stats)
	orders.Get("/:id", cfg.Orders.GetOrder)
	orders.Get("/:id/history", cfg.Orders.History)
	orders.Post("/:id/status", cfg.Orders.ChangeStatus)
	orders.Post("/:id/courier", auth.RequireRole(domain.RoleAdmin, domain.RoleDispatcher), cfg.Orders.AssignCourier)

	inventory := app.Group("/inventory", cfg.AuthMiddleware.Handle, auth.RequireRoute(policy.RouteAdminInventory))
	inventory.Get("/products", cfg.Catalog.ListInventory)
	inventory.Post("/products", cfg.Catalog.CreateProduct)
	inventory.Put("/products/:id", cfg.Catalog.UpdateProduct)
	inventory.Get("/categories", cfg.Catalog.ListAllCategories)
	inventory.Post("/categories", cfg.Catalog.CreateCategory)
	inventory.Put("/categories/:id", cfg.Catalog.UpdateCategory)

	app.Get("/staff/couriers", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin, domain.RoleDispatcher), cfg.Staff.ListCouriers)
	staff := app.Group("/staff", cfg.AuthMiddleware.Handle, auth.RequireRoute(policy.RouteAdminStaff))
	staff.Get("/members", cfg.Staff.ListStaff)
	staff.Post("/members", cfg.Staff.CreateStaff)
	staff.Patch("/members/:id/active", cfg.Staff.SetActive)
	staff.Get("/roles", cfg.Staff.ListRoles)

	addresses := app.Group("/addresses", cfg.AuthMiddleware.Handle, auth.RequireRoute(policy.RouteAddresses))
	addresses.Get("/", cfg.Addresses.List)
	addresses.Post("/", cfg.Addresses.Create)
}
