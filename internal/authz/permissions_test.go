package authz

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUnrestrictedAllowsEverything(t *testing.T) {
	set := Unrestricted()

	for _, code := range []string{"view_users", "manage_roles", "anything-at-all"} {
		require.True(t, set.Allows(code))
	}
	require.True(t, set.IsUnrestricted())
	require.True(t, set.AllowsAny("whatever"))
	require.Nil(t, set.Codes())
}

func TestRestrictedAllowsOnlyItsCodes(t *testing.T) {
	set := Restricted("view_users", "view_reports", " manage_files ")

	require.True(t, set.Allows("view_users"))
	require.True(t, set.Allows("manage_files"), "codes should be trimmed")
	require.False(t, set.Allows("manage_roles"))
	require.False(t, set.IsUnrestricted())

	require.True(t, set.AllowsAny("manage_roles", "view_reports"))
	require.False(t, set.AllowsAny("manage_roles", "system_settings"))
	require.ElementsMatch(t, []string{"view_users", "view_reports", "manage_files"}, set.Codes())
}

func TestEmptyDeniesEverything(t *testing.T) {
	set := Empty()

	require.False(t, set.Allows("view_users"))
	require.False(t, set.AllowsAny("view_users", "view_reports"))
	require.False(t, set.IsUnrestricted())
}
