package policy

import (
	"github.com/samber/lo"

	"github.com/spec-kit/grocery-service/internal/domain"
)

// RouteID names a screen of the storefront or the operations panel.
type RouteID string

const (
	RouteLogin          RouteID = "login"
	RouteRegister       RouteID = "register"
	RouteCatalog        RouteID = "catalog"
	RouteProductDetail  RouteID = "product_detail"
	RouteCart           RouteID = "cart"
	RouteCheckout       RouteID = "checkout"
	RouteOrderSuccess   RouteID = "order_success"
	RouteMyOrders       RouteID = "my_orders"
	RouteAddresses      RouteID = "addresses"
	RouteAdminDashboard RouteID = "admin_dashboard"
	RouteAdminOrders    RouteID = "admin_orders"
	RouteAdminDispatch  RouteID = "admin_dispatch"
	RouteAdminDelivery  RouteID = "admin_delivery"
	RouteAdminInventory RouteID = "admin_inventory"
	RouteAdminStaff     RouteID = "admin_staff"
)

// Paths maps routes to storefront paths used in redirects.
var Paths = map[RouteID]string{
	RouteLogin:          "/login",
	RouteRegister:       "/register",
	RouteCatalog:        "/catalog",
	RouteProductDetail:  "/catalog/:id",
	RouteCart:           "/cart",
	RouteCheckout:       "/checkout",
	RouteOrderSuccess:   "/order-success",
	RouteMyOrders:       "/account/orders",
	RouteAddresses:      "/account/addresses",
	RouteAdminDashboard: "/admin/dashboard",
	RouteAdminOrders:    "/admin/orders",
	RouteAdminDispatch:  "/admin/dispatch",
	RouteAdminDelivery:  "/admin/delivery",
	RouteAdminInventory: "/admin/inventory",
	RouteAdminStaff:     "/admin/staff",
}

// publicRoutes are reachable without an identity.
var publicRoutes = []RouteID{RouteLogin, RouteRegister, RouteCatalog, RouteProductDetail, RouteCart}

type roleRoutes struct {
	home    RouteID
	allowed []RouteID
}

var routeTable = buildRouteTable()

func buildRouteTable() map[domain.Role]roleRoutes {
	table := map[domain.Role]roleRoutes{
		domain.RoleCustomer: {
			home: RouteCatalog,
			allowed: []RouteID{
				RouteCatalog, RouteProductDetail, RouteCart, RouteCheckout,
				RouteOrderSuccess, RouteMyOrders, RouteAddresses,
			},
		},
		domain.RoleReceptionist: {
			home:    RouteAdminOrders,
			allowed: []RouteID{RouteAdminOrders, RouteAdminDashboard},
		},
		domain.RoleDispatcher: {
			home:    RouteAdminDispatch,
			allowed: []RouteID{RouteAdminDispatch},
		},
		domain.RoleCourier: {
			home:    RouteAdminDelivery,
			allowed: []RouteID{RouteAdminDelivery},
		},
		domain.RoleStaff: {
			home:    RouteAdminDashboard,
			allowed: []RouteID{RouteAdminDashboard},
		},
	}

	adminRoutes := []RouteID{RouteAdminDashboard, RouteAdminInventory, RouteAdminStaff}
	for role, row := range table {
		if role.IsStaff() {
			adminRoutes = append(adminRoutes, row.allowed...)
		}
	}
	table[domain.RoleAdmin] = roleRoutes{
		home:    RouteAdminDashboard,
		allowed: lo.Uniq(adminRoutes),
	}
	return table
}

// HomeRouteFor returns the landing route of role. Unknown roles land on login.
func HomeRouteFor(role domain.Role) RouteID {
	row, ok := routeTable[role]
	if !ok {
		return RouteLogin
	}
	return row.home
}

// IsAllowed reports whether role may reach route. Anything not listed is denied.
func IsAllowed(role domain.Role, route RouteID) bool {
	row, ok := routeTable[role]
	if !ok {
		return false
	}
	return lo.Contains(row.allowed, route)
}

// AllowedRoutes lists the routes of role.
func AllowedRoutes(role domain.Role) []RouteID {
	row, ok := routeTable[role]
	if !ok {
		return nil
	}
	return append([]RouteID(nil), row.allowed...)
}

// IsPublic reports whether route needs no identity.
func IsPublic(route RouteID) bool {
	return lo.Contains(publicRoutes, route)
}

// Decision is the outcome of a navigation attempt.
type Decision struct {
	Allowed    bool
	RedirectTo RouteID
}

// Authorize decides a navigation attempt. A denied attempt redirects to the
// caller's home route; an anonymous caller is sent to login.
func Authorize(id domain.Identity, route RouteID) Decision {
	if id == nil {
		if IsPublic(route) {
			return Decision{Allowed: true}
		}
		return Decision{RedirectTo: RouteLogin}
	}
	if IsAllowed(id.Role(), route) {
		return Decision{Allowed: true}
	}
	return Decision{RedirectTo: HomeRouteFor(id.Role())}
}

// Path returns the storefront path of route.
func (r RouteID) Path() string {
	if p, ok := Paths[r]; ok {
		return p
	}
	return Paths[RouteLogin]
}
