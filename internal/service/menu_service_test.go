package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sacm-dev/sacm-api/internal/authz"
	"github.com/sacm-dev/sacm-api/internal/models"
)

func menuCodes(entries []MenuEntry) []string {
	codes := make([]string, 0, len(entries))
	for _, entry := range entries {
		codes = append(codes, entry.Code)
	}
	return codes
}

func TestBuildStudentMenu(t *testing.T) {
	svc := NewMenuService(nil, testLogger())

	entries := svc.Build(authz.Restricted("view_courses"), models.RoleStudent)

	codes := menuCodes(entries)
	require.Equal(t, []string{"dashboard", "courses"}, codes)
}

func TestBuildInstructorMenuIncludesFiles(t *testing.T) {
	svc := NewMenuService(nil, testLogger())

	entries := svc.Build(authz.Restricted("upload_files"), models.RoleInstructor)

	codes := menuCodes(entries)
	require.Contains(t, codes, "my_files")
	require.NotContains(t, codes, "users")
	require.NotContains(t, codes, "roles")
}

func TestBuildAdminMenuIsComplete(t *testing.T) {
	svc := NewMenuService(nil, testLogger())

	entries := svc.Build(authz.Unrestricted(), models.RoleAdmin)

	codes := menuCodes(entries)
	require.Contains(t, codes, "users")
	require.Contains(t, codes, "roles")
	require.Contains(t, codes, "reports")
	require.Contains(t, codes, "settings")
	require.Contains(t, codes, "divider_admin")

	for _, entry := range entries {
		if entry.Code == "users" {
			require.Len(t, entry.Children, 3)
		}
		if !entry.IsDivider {
			require.NotEmpty(t, entry.URL)
		}
	}
}

func TestBuildFiltersEntriesByPermission(t *testing.T) {
	svc := NewMenuService(nil, testLogger())

	// An admin-coded role whose set only grants user management.
	entries := svc.Build(authz.Restricted("view_users"), models.RoleAdmin)

	codes := menuCodes(entries)
	require.Contains(t, codes, "users")
	require.NotContains(t, codes, "roles")
	require.NotContains(t, codes, "reports")
	require.NotContains(t, codes, "settings")
}

func TestBuildUnknownRouteDegradesToPlaceholder(t *testing.T) {
	resolver := func(name string) (string, bool) {
		if name == "dashboard" {
			return "/api/v1/dashboard", true
		}
		return "", false
	}
	svc := NewMenuService(resolver, testLogger())

	entries := svc.Build(authz.Empty(), models.RoleStudent)
	require.Len(t, entries, 2)
	require.Equal(t, "/api/v1/dashboard", entries[0].URL)
	require.Equal(t, "#", entries[1].URL)
}

func TestActiveItemPrefixMatch(t *testing.T) {
	svc := NewMenuService(nil, testLogger())
	entries := svc.Build(authz.Unrestricted(), models.RoleAdmin)

	require.Equal(t, "dashboard", svc.ActiveItem("/api/v1/dashboard", entries))
	require.Equal(t, "courses", svc.ActiveItem("/api/v1/courses/42", entries))
	// The parent wins over its children on a shared prefix.
	require.Equal(t, "users", svc.ActiveItem("/api/v1/admin/users", entries))
	require.Equal(t, "", svc.ActiveItem("/somewhere/else", entries))
}
