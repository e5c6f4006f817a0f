package features

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keys(fs []Feature) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.Key
	}
	return out
}

func TestDefaultLoads(t *testing.T) {
	r := Default()
	require.NotNil(t, r)
	assert.Len(t, r.Keys(), 26)
	assert.Same(t, r, Default())

	f, ok := r.Get("eligibility_review")
	require.True(t, ok)
	assert.Equal(t, "Review Relief Requests", f.Name)
	assert.Equal(t, []string{"DG", "DDG", "DIR", "PEOD"}, f.Roles)
	assert.Equal(t, 20, f.Priority)
}

func TestHasAccess(t *testing.T) {
	r := Default()

	assert.True(t, r.HasAccess([]string{"AGENCY_USER"}, "relief_request_creation"))
	assert.False(t, r.HasAccess([]string{"LO"}, "relief_request_creation"))
	assert.True(t, r.HasAccess([]string{"LO", "DIR"}, "eligibility_review"))
	assert.False(t, r.HasAccess([]string{"LO"}, "package_approval"))
	assert.True(t, r.HasAccess([]string{"LM"}, "package_approval"))

	assert.False(t, r.HasAccess(nil, "inventory_view"))
	assert.False(t, r.HasAccess([]string{"SYSTEM_ADMIN"}, "no_such_feature"))
	assert.True(t, r.HasAccess([]string{" SYSTEM_ADMIN "}, "user_management"))
}

func TestAccessibleTableOrder(t *testing.T) {
	got := keys(Default().Accessible([]string{"AGENCY_USER"}))
	assert.Equal(t, []string{
		"relief_request_creation",
		"relief_request_tracking",
		"notifications",
		"agency_dashboard",
	}, got)
}

func TestDashboardSortedByPriority(t *testing.T) {
	got := keys(Default().Dashboard([]string{"LM"}))
	assert.Equal(t, []string{
		"package_approval",
		"package_preparation",
		"inventory_intake",
		"inventory_view",
		"reports_inventory",
		"reports_donations",
	}, got)

	fs := Default().Dashboard([]string{"LM"})
	for i := 1; i < len(fs); i++ {
		assert.GreaterOrEqual(t, fs[i-1].Priority, fs[i].Priority)
	}
	for _, f := range fs {
		assert.NotEmpty(t, f.DashboardWidget, f.Key)
	}
	assert.NotContains(t, keys(fs), "inventory_transfers")
}

func TestDashboardTiesKeepTableOrder(t *testing.T) {
	got := keys(Default().Dashboard([]string{"INVENTORY_CLERK"}))
	assert.Equal(t, []string{
		"inventory_intake",
		"inventory_view",
		"reports_inventory",
		"reports_donations",
	}, got)
}

func TestNavigation(t *testing.T) {
	r := Default()

	inv := keys(r.Navigation([]string{"INVENTORY_CLERK"}, "inventory"))
	assert.Equal(t, []string{"inventory_intake", "inventory_view", "inventory_transfers"}, inv)

	all := r.Navigation([]string{"INVENTORY_CLERK"}, "")
	assert.Equal(t, "notifications", all[0].Key)
	assert.NotContains(t, keys(all), "reports_inventory", "no navigation group")

	assert.Empty(t, r.Navigation([]string{"AGENCY_USER"}, "admin"))
}

func TestByCategory(t *testing.T) {
	got := keys(Default().ByCategory([]string{"DIR"}, "eligibility"))
	assert.Equal(t, []string{"eligibility_review", "director_dashboard"}, got)
}

func TestLanding(t *testing.T) {
	r := Default()
	f, ok := r.Landing([]string{"LO"})
	require.True(t, ok)
	assert.Equal(t, "logistics_dashboard", f.Key)

	_, ok = r.Landing([]string{"DIR"})
	assert.False(t, ok)
}

func TestPrimaryRole(t *testing.T) {
	r := Default()
	assert.Equal(t, "SYSTEM_ADMIN", r.PrimaryRole([]string{"LO", "SYSTEM_ADMIN"}))
	assert.Equal(t, "DDG", r.PrimaryRole([]string{"LM", "DDG", "AGENCY_USER"}))
	assert.Equal(t, "AGENCY_USER", r.PrimaryRole([]string{"AGENCY_USER"}))
	assert.Equal(t, "AUDITOR", r.PrimaryRole([]string{"ZEBRA", "AUDITOR"}))
	assert.Equal(t, "", r.PrimaryRole(nil))
}

func TestRoleDisplayName(t *testing.T) {
	r := Default()
	assert.Equal(t, "Logistics Manager", r.RoleDisplayName("LM"))
	assert.Equal(t, "UNKNOWN", r.RoleDisplayName("UNKNOWN"))
}

func TestReturnedFeaturesAreCopies(t *testing.T) {
	r := Default()
	f, _ := r.Get("user_management")
	f.Roles[0] = "AGENCY_USER"
	assert.False(t, r.HasAccess([]string{"AGENCY_USER"}, "user_management"))
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown role", "roles: [{code: A}]\nfeatures:\n  - {key: x, roles: [B]}\n", `unknown role "B"`},
		{"no roles", "roles: [{code: A}]\nfeatures:\n  - {key: x}\n", "grants no roles"},
		{"duplicate", "roles: [{code: A}]\nfeatures:\n  - {key: x, roles: [A]}\n  - {key: x, roles: [A]}\n", `duplicate feature "x"`},
		{"unknown field", "roles: [{code: A}]\nfeatures:\n  - {key: x, roles: [A], colour: red}\n", "parse feature table"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadDefaultsPriority(t *testing.T) {
	r, err := Load([]byte("roles: [{code: A}]\nfeatures:\n  - {key: x, roles: [A], dashboard_widget: w}\n  - {key: y, roles: [A], dashboard_widget: w, priority: 5}\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, keys(r.Dashboard([]string{"A"})))
}

func TestConcurrentReads(t *testing.T) {
	r := Default()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = r.HasAccess([]string{"LM"}, "package_approval")
				_ = r.Dashboard([]string{"LO", "LM"})
			}
		}()
	}
	wg.Wait()
}
