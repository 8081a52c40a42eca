package permissions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name      string
		role      string
		rolePerms []string
		planPerms []string
		want      []string
	}{
		{
			name:      "пересечение роли и плана",
			role:      "admin",
			rolePerms: []string{"view_dashboard", "manage_contacts", "manage_team"},
			planPerms: []string{"view_dashboard", "manage_contacts"},
			want:      []string{"view_dashboard", "manage_contacts"},
		},
		{
			name:      "разрешение только в плане не выдается",
			role:      "user",
			rolePerms: []string{"view_dashboard"},
			planPerms: []string{"view_dashboard", "manage_billing"},
			want:      []string{"view_dashboard"},
		},
		{
			name:      "superadmin игнорирует план",
			role:      "superadmin",
			rolePerms: []string{"manage_everything", "view_reports"},
			planPerms: []string{"view_dashboard"},
			want:      []string{"manage_everything", "view_reports"},
		},
		{
			name:      "superadmin с отсутствующим планом",
			role:      "superadmin",
			rolePerms: []string{"manage_everything"},
			planPerms: nil,
			want:      []string{"manage_everything"},
		},
		{
			name:      "отсутствующая роль дает пустой набор",
			role:      "admin",
			rolePerms: nil,
			planPerms: []string{"view_dashboard"},
			want:      []string{},
		},
		{
			name:      "отсутствующий план дает пустой набор",
			role:      "admin",
			rolePerms: []string{"view_dashboard"},
			planPerms: nil,
			want:      []string{},
		},
		{
			name:      "дубликаты схлопываются",
			role:      "admin",
			rolePerms: []string{"view_dashboard", "view_dashboard", "manage_contacts"},
			planPerms: []string{"manage_contacts", "view_dashboard", "view_dashboard"},
			want:      []string{"view_dashboard", "manage_contacts"},
		},
		{
			name:      "дубликаты у superadmin схлопываются",
			role:      "superadmin",
			rolePerms: []string{"a", "a", "b"},
			planPerms: []string{"c"},
			want:      []string{"a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.role, tt.rolePerms, tt.planPerms)
			assert.ElementsMatch(t, tt.want, got)
		})
	}
}

// Результат для не-superadmin всегда является подмножеством и роли, и плана.
func TestResolve_SubsetProperty(t *testing.T) {
	rolePerms := []string{"a", "b", "c", "d"}
	planSets := [][]string{
		{},
		{"a"},
		{"b", "d"},
		{"a", "b", "c", "d"},
		{"x", "y", "a"},
	}

	contains := func(set []string, p string) bool {
		for _, s := range set {
			if s == p {
				return true
			}
		}
		return false
	}

	for _, planPerms := range planSets {
		got := Resolve("admin", rolePerms, planPerms)
		for _, p := range got {
			assert.True(t, contains(rolePerms, p), "%q not granted by role", p)
			assert.True(t, contains(planPerms, p), "%q not granted by plan", p)
		}
	}
}
