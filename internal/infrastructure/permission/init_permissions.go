package permission

import (
	"fmt"

	"mallhub/internal/domain/permission"
	"mallhub/internal/shared/authorization"
)

// DefaultPolicies grants admins everything, merchants day-to-day payment and
// webhook management, and viewers read access.
func DefaultPolicies() [][]string {
	admin := authorization.RoleAdmin.String()
	merchant := authorization.RoleMerchant.String()
	viewer := authorization.RoleViewer.String()

	return [][]string{
		{admin, "*", "*"},

		{merchant, permission.ResourcePayment, permission.ActionRead},
		{merchant, permission.ResourcePayment, permission.ActionCapture},
		{merchant, permission.ResourcePayment, permission.ActionRefund},
		{merchant, permission.ResourceGateway, permission.ActionRead},
		{merchant, permission.ResourceGateway, permission.ActionTest},
		{merchant, permission.ResourceWebhookEndpoint, "*"},
		{merchant, permission.ResourceWebhookDelivery, "*"},

		{viewer, permission.ResourcePayment, permission.ActionRead},
		{viewer, permission.ResourceGateway, permission.ActionRead},
		{viewer, permission.ResourceWebhookEndpoint, permission.ActionRead},
		{viewer, permission.ResourceWebhookDelivery, permission.ActionRead},
	}
}

// InitDefaultPermissions seeds DefaultPolicies. Existing rows are kept.
func (e *Enforcer) InitDefaultPermissions() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, policy := range DefaultPolicies() {
		if _, err := e.enforcer.AddPolicy(policy[0], policy[1], policy[2]); err != nil {
			e.logger.Errorw("failed to add default permission policy",
				"error", err,
				"role", policy[0],
				"resource", policy[1],
				"action", policy[2])
			return fmt.Errorf("failed to add policy [%s, %s, %s]: %w",
				policy[0], policy[1], policy[2], err)
		}
	}

	e.logger.Infow("default permissions initialized", "policies", len(DefaultPolicies()))
	return nil
}
