package platform

import (
	"context"
	"errors"
	"fmt"

	"github.com/nibiaa/TenantDesk/internal/pkg/provisioning"
)

// Creator adapts the platform client to the provisioning orchestrator's
// tenant creation contract.
type Creator struct {
	Client *Client
}

// NewCreator wraps a platform client.
func NewCreator(client *Client) *Creator {
	return &Creator{Client: client}
}

// CreateTenant creates the tenant on the platform and returns its ID. A
// title collision is reported as a conflict so the orchestrator can classify
// the failure.
func (c *Creator) CreateTenant(ctx context.Context, req *provisioning.Request) (string, error) {
	tenant, err := c.Client.CreateTenant(ctx, CreateTenantInput{
		Title:     req.Title,
		ProfileID: req.ProfileID,
		Usecase:   req.Usecase,
		Email:     req.CustomerEmail,
	})
	if err != nil {
		if errors.Is(err, ErrTenantExists) {
			return "", fmt.Errorf("%v: %w", err, provisioning.ErrTenantConflict)
		}
		return "", err
	}
	return tenant.ID, nil
}
