package service

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/sacm-dev/sacm-api/internal/authz"
	"github.com/sacm-dev/sacm-api/internal/models"
)

// MenuEntry is a node in the navigation tree served to clients.
type MenuEntry struct {
	Code       string      `json:"code"`
	Title      string      `json:"title"`
	Icon       string      `json:"icon,omitempty"`
	URL        string      `json:"url"`
	Permission string      `json:"permission,omitempty"`
	IsDivider  bool        `json:"is_divider,omitempty"`
	Children   []MenuEntry `json:"children,omitempty"`

	routeName string
}

// RouteResolver maps a route name to its path. The second return value
// reports whether the name is known.
type RouteResolver func(name string) (string, bool)

// MenuService builds the permission-filtered navigation tree.
type MenuService interface {
	Build(set authz.PermissionSet, roleCode string) []MenuEntry
	ActiveItem(path string, entries []MenuEntry) string
}

type menuService struct {
	resolve RouteResolver
	logger  zerolog.Logger
}

// NewMenuService constructs the menu builder. A nil resolver uses the
// default route table.
func NewMenuService(resolve RouteResolver, logger zerolog.Logger) MenuService {
	if resolve == nil {
		resolve = DefaultRoutes()
	}
	return &menuService{
		resolve: resolve,
		logger:  logger.With().Str("component", "menu_service").Logger(),
	}
}

// DefaultRoutes returns the route table for the API surface.
func DefaultRoutes() RouteResolver {
	routes := map[string]string{
		"dashboard":    "/api/v1/dashboard",
		"courses":      "/api/v1/courses",
		"my_files":     "/api/v1/files/mine",
		"users_list":   "/api/v1/admin/users",
		"users_create": "/api/v1/admin/users/create",
		"users_import": "/api/v1/admin/users/import",
		"roles":        "/api/v1/admin/roles",
		"reports":      "/api/v1/admin/reports",
		"audit_logs":   "/api/v1/admin/audit-logs",
		"settings":     "/api/v1/admin/settings",
	}
	return func(name string) (string, bool) {
		path, ok := routes[name]
		return path, ok
	}
}

// Build returns the ordered navigation tree visible to the actor. An entry is
// included when it carries no required permission or the resolved set allows
// it. Role flags gate the instructor and admin sections the same way the
// rendered sidebar does.
func (s *menuService) Build(set authz.PermissionSet, roleCode string) []MenuEntry {
	roleCode = strings.ToLower(strings.TrimSpace(roleCode))
	isAdmin := roleCode == models.RoleAdmin || set.IsUnrestricted()
	isInstructor := roleCode == models.RoleInstructor

	entries := []MenuEntry{
		{Code: "dashboard", Title: "Dashboard", Icon: "bi-speedometer2", routeName: "dashboard"},
		{Code: "courses", Title: "Courses", Icon: "bi-book", routeName: "courses"},
	}

	if isInstructor || isAdmin {
		entries = append(entries, MenuEntry{
			Code: "my_files", Title: "My Files", Icon: "bi-folder", routeName: "my_files",
		})
	}

	if isAdmin {
		entries = append(entries,
			MenuEntry{Code: "divider_admin", IsDivider: true},
			MenuEntry{
				Code: "users", Title: "Users", Icon: "bi-people",
				routeName: "users_list", Permission: "view_users",
				Children: []MenuEntry{
					{Code: "users_list", Title: "User List", Icon: "bi-list", routeName: "users_list"},
					{Code: "users_create", Title: "Add User", Icon: "bi-person-plus", routeName: "users_create"},
					{Code: "users_import", Title: "Import", Icon: "bi-file-earmark-arrow-up", routeName: "users_import"},
				},
			},
			MenuEntry{Code: "roles", Title: "Roles & Permissions", Icon: "bi-shield-lock", routeName: "roles", Permission: "manage_roles"},
			MenuEntry{Code: "reports", Title: "Reports", Icon: "bi-bar-chart", routeName: "reports", Permission: "view_reports"},
			MenuEntry{Code: "settings", Title: "Settings", Icon: "bi-gear", routeName: "settings", Permission: "system_settings"},
		)
	}

	return s.filter(entries, set)
}

func (s *menuService) filter(entries []MenuEntry, set authz.PermissionSet) []MenuEntry {
	visible := make([]MenuEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.Permission != "" && !set.Allows(entry.Permission) {
			continue
		}
		entry.URL = s.resolveURL(entry)
		if len(entry.Children) > 0 {
			entry.Children = s.filter(entry.Children, set)
		}
		visible = append(visible, entry)
	}
	return visible
}

// resolveURL is best-effort: an unknown route name degrades to a placeholder
// link instead of failing the build.
func (s *menuService) resolveURL(entry MenuEntry) string {
	if entry.routeName == "" {
		return "#"
	}
	path, ok := s.resolve(entry.routeName)
	if !ok {
		s.logger.Warn().Str("route", entry.routeName).Msg("could not resolve menu route")
		return "#"
	}
	return path
}

// ActiveItem returns the code of the entry whose URL is a prefix of the
// request path. Parents are checked before their children; first match in
// declaration order wins. Returns "" when nothing matches.
func (s *menuService) ActiveItem(path string, entries []MenuEntry) string {
	for _, entry := range entries {
		if entry.URL != "" && entry.URL != "#" && strings.HasPrefix(path, entry.URL) {
			return entry.Code
		}
		for _, child := range entry.Children {
			if child.URL != "" && child.URL != "#" && strings.HasPrefix(path, child.URL) {
				return child.Code
			}
		}
	}
	return ""
}
