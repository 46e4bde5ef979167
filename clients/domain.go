package clients

import (
	"context"
	"fmt"

	"patchdeck/types"
)

// UpdatesDomain adapts a FleetService into the coordinator's domain
// interface for package updates: submissions carry both the distinct
// package names and the distinct managers of the batch.
type UpdatesDomain struct {
	Service types.FleetService
}

// Name identifies the domain in logs and events
func (d *UpdatesDomain) Name() string {
	return "updates"
}

// Submit issues one execution call for a single host batch
func (d *UpdatesDomain) Submit(ctx context.Context, hostID string, packages, managers []string) error {
	resp, err := d.Service.Execute(ctx, types.ExecuteRequest{
		HostIDs:  []string{hostID},
		Packages: packages,
		Managers: managers,
	})
	if err != nil {
		return err
	}
	if resp.Status != "accepted" && resp.Status != "ok" {
		return fmt.Errorf("updates submission not accepted: %s", resp.Status)
	}
	return nil
}

// FetchResults returns the current authoritative outcome snapshot
func (d *UpdatesDomain) FetchResults(ctx context.Context) (types.ResultsSnapshot, error) {
	return d.Service.Results(ctx)
}

// UpgradesDomain adapts a FleetService into the coordinator's domain
// interface for OS upgrades. Upgrades identify work by feature name alone,
// so no managers are sent.
type UpgradesDomain struct {
	Service types.FleetService
}

// Name identifies the domain in logs and events
func (d *UpgradesDomain) Name() string {
	return "upgrades"
}

// Submit issues one execution call for a single host batch
func (d *UpgradesDomain) Submit(ctx context.Context, hostID string, packages, _ []string) error {
	resp, err := d.Service.Execute(ctx, types.ExecuteRequest{
		HostIDs:  []string{hostID},
		Packages: packages,
	})
	if err != nil {
		return err
	}
	if resp.Status != "accepted" && resp.Status != "ok" {
		return fmt.Errorf("upgrades submission not accepted: %s", resp.Status)
	}
	return nil
}

// FetchResults returns the current authoritative outcome snapshot
func (d *UpgradesDomain) FetchResults(ctx context.Context) (types.ResultsSnapshot, error) {
	return d.Service.Results(ctx)
}
