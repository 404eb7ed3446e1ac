// Package authz is the single authorization boundary. Roles map to
// capabilities through one declarative table instead of per-route
// conditionals; handlers only ever ask "does this role hold this
// capability".
package authz

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"gopkg.in/yaml.v3"

	"github.com/numtrack/numtrack/internal/models"
)

type Capability string

const (
	CapManageInventory Capability = "manage_inventory"
	CapViewReports     Capability = "view_reports"
	CapExportData      Capability = "export_data"
	CapViewActivities  Capability = "view_activities"
	CapManageUsers     Capability = "manage_users"
)

type Policy struct {
	grants map[models.UserRole]map[Capability]bool
}

// DefaultPolicy grants admins everything; employees get the day-to-day
// inventory screens but not user management or the activity log.
func DefaultPolicy() *Policy {
	return newPolicy(map[models.UserRole][]Capability{
		models.RoleAdmin: {
			CapManageInventory,
			CapViewReports,
			CapExportData,
			CapViewActivities,
			CapManageUsers,
		},
		models.RoleEmployee: {
			CapManageInventory,
			CapViewReports,
			CapExportData,
		},
	})
}

// Load reads a role→capabilities table from a YAML file. An empty path
// returns the built-in default.
func Load(path string) (*Policy, error) {
	if path == "" {
		return DefaultPolicy(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read capability file: %w", err)
	}

	var raw map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse capability file: %w", err)
	}

	grants := make(map[models.UserRole][]Capability, len(raw))
	for role, caps := range raw {
		list := make([]Capability, 0, len(caps))
		for _, c := range caps {
			list = append(list, Capability(c))
		}
		grants[models.UserRole(role)] = list
	}

	return newPolicy(grants), nil
}

func newPolicy(grants map[models.UserRole][]Capability) *Policy {
	p := &Policy{grants: make(map[models.UserRole]map[Capability]bool, len(grants))}
	for role, caps := range grants {
		set := make(map[Capability]bool, len(caps))
		for _, c := range caps {
			set[c] = true
		}
		p.grants[role] = set
	}
	return p
}

func (p *Policy) Allows(role models.UserRole, capability Capability) bool {
	return p.grants[role][capability]
}

// Require aborts with 403 unless the authenticated role holds the
// capability. Expects the auth middleware to have set "role".
func (p *Policy) Require(capability Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleValue, exists := c.Get("role")
		if !exists {
			c.JSON(http.StatusForbidden, gin.H{"error": "No role found"})
			c.Abort()
			return
		}

		role, _ := roleValue.(string)
		if !p.Allows(models.UserRole(role), capability) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			c.Abort()
			return
		}

		c.Next()
	}
}
