package main

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"patchdeck/types"
)

// Job is one accepted item execution aging toward resolution
type Job struct {
	Domain     string
	HostID     string
	Package    string
	Manager    string
	NewVersion string
	Fails      bool
	EnqueuedAt time.Time
	ResolveAt  time.Time
}

// FleetState holds the simulator's catalogs, in-flight jobs and
// accumulated results for both change domains. Accepted jobs resolve after
// a fixed delay; resolution removes the item from the catalog and appends
// it to the results snapshot, mimicking agents reporting back out-of-band.
type FleetState struct {
	mu            sync.Mutex
	catalogs      map[string][]types.WorkItem
	jobs          []*Job
	results       map[string]types.ResultsSnapshot
	delay         time.Duration
	failSubstring string
}

// NewFleetState creates an empty simulator state
func NewFleetState(delay time.Duration, failSubstring string) *FleetState {
	return &FleetState{
		catalogs: map[string][]types.WorkItem{
			"updates":  {},
			"upgrades": {},
		},
		results: map[string]types.ResultsSnapshot{
			"updates":  {},
			"upgrades": {},
		},
		delay:         delay,
		failSubstring: failSubstring,
	}
}

// Seed populates the catalogs with deterministic hosts and items
func (fs *FleetState) Seed(hosts, updatesPerHost int) {
	packages := []string{"curl", "vim", "openssl", "nginx", "postgresql", "htop", "git", "tmux"}
	managers := []string{"apt", "dnf"}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	for h := 0; h < hosts; h++ {
		hostID := fmt.Sprintf("host-%d", h+1)
		manager := managers[h%len(managers)]

		for p := 0; p < updatesPerHost; p++ {
			pkg := packages[(h+p)%len(packages)]
			fs.catalogs["updates"] = append(fs.catalogs["updates"], types.WorkItem{
				HostID:           hostID,
				Package:          pkg,
				Manager:          manager,
				CurrentVersion:   fmt.Sprintf("1.%d.0", p),
				AvailableVersion: fmt.Sprintf("1.%d.1", p),
				IsSecurity:       p%2 == 0,
				IsSystem:         p%3 == 0,
				RequiresReboot:   p%4 == 0,
			})
		}

		fs.catalogs["upgrades"] = append(fs.catalogs["upgrades"], types.WorkItem{
			HostID:           hostID,
			Package:          "os-release",
			AvailableVersion: "24.04",
			CurrentVersion:   "22.04",
			IsSystem:         true,
			RequiresReboot:   true,
		})
	}

	log.Printf("Seeded %d hosts: %d updates, %d upgrades",
		hosts, len(fs.catalogs["updates"]), len(fs.catalogs["upgrades"]))
}

// Accept enqueues jobs for the requested items. Items that don't resolve
// against the catalog are ignored, matching a real agent's behavior of
// skipping work it no longer knows about.
func (fs *FleetState) Accept(domain string, req types.ExecuteRequest, now time.Time) int {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	accepted := 0
	for _, hostID := range req.HostIDs {
		for _, pkg := range req.Packages {
			item, ok := fs.findItemLocked(domain, hostID, pkg, req.Managers)
			if !ok {
				log.Printf("Ignoring unknown item %s on %s for %s", pkg, hostID, domain)
				continue
			}
			fails := fs.failSubstring != "" && strings.Contains(pkg, fs.failSubstring)
			fs.jobs = append(fs.jobs, &Job{
				Domain:     domain,
				HostID:     hostID,
				Package:    item.Package,
				Manager:    item.Manager,
				NewVersion: item.AvailableVersion,
				Fails:      fails,
				EnqueuedAt: now,
				ResolveAt:  now.Add(fs.delay),
			})
			accepted++
		}
	}
	log.Printf("Accepted %d %s jobs. In flight: %d", accepted, domain, len(fs.jobs))
	return accepted
}

// findItemLocked resolves one requested package against the catalog. When
// managers were sent, the item's manager must be among them.
func (fs *FleetState) findItemLocked(domain, hostID, pkg string, managers []string) (types.WorkItem, bool) {
	for _, item := range fs.catalogs[domain] {
		if item.HostID != hostID || item.Package != pkg {
			continue
		}
		if len(managers) > 0 && item.Manager != "" {
			found := false
			for _, m := range managers {
				if m == item.Manager {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		return item, true
	}
	return types.WorkItem{}, false
}

// Age resolves due jobs: each one leaves the catalog and lands in the
// results snapshot as succeeded or failed
func (fs *FleetState) Age(now time.Time) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	remaining := fs.jobs[:0]
	for _, job := range fs.jobs {
		if job.ResolveAt.After(now) {
			remaining = append(remaining, job)
			continue
		}

		result := fs.results[job.Domain][job.HostID]
		item := types.ItemResult{Package: job.Package, Manager: job.Manager}
		if job.Fails {
			result.Failed = append(result.Failed, item)
		} else {
			item.NewVersion = job.NewVersion
			result.Succeeded = append(result.Succeeded, item)
		}
		fs.results[job.Domain][job.HostID] = result

		fs.removeFromCatalogLocked(job.Domain, job.HostID, job.Package, job.Manager)
		log.Printf("Resolved %s job %s on %s (failed=%v)", job.Domain, job.Package, job.HostID, job.Fails)
	}
	fs.jobs = remaining
}

func (fs *FleetState) removeFromCatalogLocked(domain, hostID, pkg, manager string) {
	items := fs.catalogs[domain]
	for i, item := range items {
		if item.HostID == hostID && item.Package == pkg && item.Manager == manager {
			fs.catalogs[domain] = append(items[:i], items[i+1:]...)
			return
		}
	}
}

// Catalog returns the filtered catalog for a domain
func (fs *FleetState) Catalog(domain string, filter types.ListFilter) []types.WorkItem {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	out := make([]types.WorkItem, 0)
	for _, item := range fs.catalogs[domain] {
		if filter.Security && !item.IsSecurity {
			continue
		}
		if filter.System && !item.IsSystem {
			continue
		}
		if filter.Manager != "" && item.Manager != filter.Manager {
			continue
		}
		if filter.HostID != "" && item.HostID != filter.HostID {
			continue
		}
		out = append(out, item)
	}
	return out
}

// Snapshot returns the current summary and results for a domain
func (fs *FleetState) Snapshot(domain string) (types.Summary, types.ResultsSnapshot) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	summary := types.Summary{}
	hosts := make(map[string]struct{})
	for _, item := range fs.catalogs[domain] {
		summary.TotalItems++
		if item.IsSecurity {
			summary.SecurityItems++
		}
		if item.IsSystem {
			summary.SystemItems++
		} else if !item.IsSecurity {
			summary.ApplicationItems++
		}
		hosts[item.HostID] = struct{}{}
	}
	summary.AffectedHosts = len(hosts)

	// Deep copy so callers never race with Age
	results := make(types.ResultsSnapshot, len(fs.results[domain]))
	for hostID, hostResult := range fs.results[domain] {
		copied := types.HostResult{
			Succeeded: append([]types.ItemResult(nil), hostResult.Succeeded...),
			Failed:    append([]types.ItemResult(nil), hostResult.Failed...),
		}
		results[hostID] = copied
	}
	return summary, results
}

// InFlight returns the number of unresolved jobs
func (fs *FleetState) InFlight() int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return len(fs.jobs)
}
