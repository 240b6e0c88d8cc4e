package navigation

import "github.com/dmitrijs2005/fleetadmin/internal/client/permissions"

// Route names shared by the menu and the console commands.
const (
	RouteDashboard          = "dashboard"
	RouteNavyTypes          = "navy-types"
	RouteNavySizes          = "navy-sizes"
	RouteNavyBrands         = "navy-brands"
	RouteNavyMehvars        = "navy-mehvars"
	RouteNavyMain           = "navy-main"
	RouteActivityAreas      = "activity-areas"
	RouteUsageTypes         = "usage-types"
	RouteActivityCategories = "activity-categories"
	RouteUsers              = "users"
	RouteGroups             = "groups"
	RouteGroupPermissions   = "group-perms"
	RouteProviderRequests   = "provider-requests"
)

// Item is a menu entry. Entries with children are headings and have no
// route of their own.
type Item struct {
	Title    string
	Route    string
	Required []permissions.Permission
	Children []Item
}

// Menu is the full console menu.
var Menu = []Item{
	{Title: "داشبورد", Route: RouteDashboard},
	{Title: "ثبت ناوگان تجاری", Children: []Item{
		{Title: "مدیریت نوع ناوگان", Route: RouteNavyTypes, Required: []permissions.Permission{permissions.ViewNavyType}},
		{Title: "مدیریت سایز ناوگان", Route: RouteNavySizes, Required: []permissions.Permission{permissions.ViewNavySize}},
		{Title: "مدیریت برندهای ناوگان", Route: RouteNavyBrands, Required: []permissions.Permission{permissions.ViewNavyBrand}},
		{Title: "مدیریت محور های ناوگان", Route: RouteNavyMehvars, Required: []permissions.Permission{permissions.ViewNavyMehvar}},
		{Title: "مدیریت ناوگان تجاری", Route: RouteNavyMain, Required: []permissions.Permission{permissions.ViewNavyMain}},
	}},
	{Title: "ثبت منطقه فعالیت", Route: RouteActivityAreas, Required: []permissions.Permission{permissions.ViewActivityArea}},
	{Title: "ثبت انواع کاربری", Route: RouteUsageTypes, Required: []permissions.Permission{permissions.ViewUsageType}},
	{Title: "بخش رسته فعالیت", Route: RouteActivityCategories, Required: []permissions.Permission{permissions.ViewActivityCategory}},
	{Title: "مدیریت کاربران", Children: []Item{
		{Title: "کاربران", Route: RouteUsers, Required: []permissions.Permission{permissions.ViewUser}},
		{Title: "گروه‌ها", Route: RouteGroups, Required: []permissions.Permission{permissions.ViewGroup}},
		{Title: "دسترسی‌ها", Route: RouteGroupPermissions, Required: []permissions.Permission{permissions.ViewGroup, permissions.ViewPermission}},
	}},
	{Title: "مدیریت درخواست", Route: RouteProviderRequests},
}

// Visible filters items down to what perms allows. A heading is kept only
// if at least one of its children is.
func Visible(items []Item, perms permissions.Set) []Item {
	var out []Item
	for _, it := range items {
		if len(it.Children) > 0 {
			children := Visible(it.Children, perms)
			if len(children) == 0 {
				continue
			}
			it.Children = children
			out = append(out, it)
			continue
		}
		if perms.HasAll(it.Required...) {
			out = append(out, it)
		}
	}
	return out
}

// Routes returns the routes of every leaf in items, depth first.
func Routes(items []Item) []string {
	var out []string
	for _, it := range items {
		if it.Route != "" {
			out = append(out, it.Route)
		}
		out = append(out, Routes(it.Children)...)
	}
	return out
}

// Find returns the leaf item for route.
func Find(items []Item, route string) (Item, bool) {
	for _, it := range items {
		if it.Route == route {
			return it, true
		}
		if found, ok := Find(it.Children, route); ok {
			return found, true
		}
	}
	return Item{}, false
}
