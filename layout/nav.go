// Package layout builds the navigation shell and the static home page content.
package layout

import (
	"strings"

	"github.com/yeremiapane/food-delivery-web/models"
)

type NavItem struct {
	Label  string `json:"label"`
	Path   string `json:"path"`
	Active bool   `json:"active"`
}

var (
	guestNav = []NavItem{
		{Label: "Home", Path: "/"},
		{Label: "Restaurants", Path: "/restaurants"},
		{Label: "Partner with us", Path: "/restaurant/register"},
		{Label: "Login", Path: "/login"},
	}
	customerNav = []NavItem{
		{Label: "Home", Path: "/"},
		{Label: "Restaurants", Path: "/restaurants"},
		{Label: "Cart", Path: "/cart"},
		{Label: "My Orders", Path: "/orders"},
	}
	restaurantNav = []NavItem{
		{Label: "Dashboard", Path: "/restaurant/dashboard"},
		{Label: "Menu Items", Path: "/restaurant/menu-items"},
		{Label: "Categories", Path: "/restaurant/categories"},
		{Label: "Profile", Path: "/restaurant/profile"},
	}
	deliveryNav = []NavItem{
		{Label: "Dashboard", Path: "/driver/dashboard"},
		{Label: "Deliveries", Path: "/driver/deliveries"},
		{Label: "Profile", Path: "/driver/profile"},
	}
	adminNav = []NavItem{
		{Label: "Dashboard", Path: "/admin/dashboard"},
		{Label: "Restaurants", Path: "/admin/restaurants"},
		{Label: "Users", Path: "/admin/users"},
	}
)

// IsActive reports whether link should be highlighted for path. The root only
// matches itself; other links also match their sub-paths.
func IsActive(link, path string) bool {
	path = strings.TrimRight(path, "/")
	if path == "" {
		path = "/"
	}
	if link == "/" {
		return path == "/"
	}
	return path == link || strings.HasPrefix(path, link+"/")
}

// NavItems returns the menu for role with Active set for the current path.
// An empty role means a signed-out visitor.
func NavItems(role models.Role, path string) []NavItem {
	var src []NavItem
	switch role {
	case models.RoleCustomer:
		src = customerNav
	case models.RoleRestaurant:
		src = restaurantNav
	case models.RoleDelivery:
		src = deliveryNav
	case models.RoleAdmin:
		src = adminNav
	default:
		src = guestNav
	}

	items := make([]NavItem, len(src))
	for i, it := range src {
		it.Active = IsActive(it.Path, path)
		items[i] = it
	}
	return items
}
