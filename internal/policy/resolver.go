package policy

import (
	"fmt"
	"log/slog"

	"github.com/ppiankov/sitepolicy/internal/models"
)

// Site fields that carry identifiers, as named by the controller API.
const (
	FieldSiteID        = "id"
	FieldPolicySet     = "policy_set_id"
	FieldNetworkStack  = "network_policysetstack_id"
	FieldPriorityStack = "priority_policysetstack_id"
	FieldNATStack      = "nat_policysetstack_id"
)

// NameLookup resolves an identifier to its display name.
type NameLookup interface {
	Lookup(id string) (string, bool)
}

// UnresolvedIDError reports a site field whose identifier is not in the
// name index.
type UnresolvedIDError struct {
	SiteID string
	Field  string
	ID     string
}

func (e *UnresolvedIDError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("site %s: %s is empty and cannot be resolved", e.SiteID, e.Field)
	}
	return fmt.Sprintf("site %s: %s %q not found in id-name index", e.SiteID, e.Field, e.ID)
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithPlaceholders makes unresolved ids resolve to the raw id (or
// "None" for an empty id) instead of failing.
func WithPlaceholders() Option {
	return func(r *Resolver) {
		r.allowUnresolved = true
	}
}

// Resolver maps sites to report rows.
type Resolver struct {
	names           NameLookup
	allowUnresolved bool
}

// New creates a resolver over names.
func New(names NameLookup, opts ...Option) *Resolver {
	r := &Resolver{names: names}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve produces the report row for site. ok is false for sites that
// are not spokes; those never produce a row.
func (r *Resolver) Resolve(site models.Site) (row models.ReportRow, ok bool, err error) {
	if !site.IsSpoke() {
		return models.ReportRow{}, false, nil
	}

	siteName, err := r.lookup(site.ID, FieldSiteID, site.ID)
	if err != nil {
		return models.ReportRow{}, false, err
	}
	row.SiteName = siteName

	switch {
	case site.UsesClassicPolicy():
		if site.UsesStackedPolicy() {
			slog.Warn("site has both classic and stacked policy, using classic",
				slog.String("site_id", site.ID),
				slog.String(FieldPolicySet, site.PolicySetID),
				slog.String(FieldNetworkStack, site.NetworkPolicySetStackID),
			)
		}
		// Classic policy sets cover path, QoS and NAT in one object.
		name, err := r.lookup(site.ID, FieldPolicySet, site.PolicySetID)
		if err != nil {
			return models.ReportRow{}, false, err
		}
		row.PathPolicy, row.QoSPolicy, row.NATPolicy = name, name, name

	case site.UsesStackedPolicy():
		if row.PathPolicy, err = r.lookup(site.ID, FieldNetworkStack, site.NetworkPolicySetStackID); err != nil {
			return models.ReportRow{}, false, err
		}
		if row.QoSPolicy, err = r.lookup(site.ID, FieldPriorityStack, site.PriorityPolicySetStackID); err != nil {
			return models.ReportRow{}, false, err
		}
		if row.NATPolicy, err = r.lookup(site.ID, FieldNATStack, site.NATPolicySetStackID); err != nil {
			return models.ReportRow{}, false, err
		}

	default:
		row.PathPolicy, row.QoSPolicy, row.NATPolicy = models.NoPolicy, models.NoPolicy, models.NoPolicy
	}

	return row, true, nil
}

// ResolveAll resolves sites in order and stops at the first error.
func (r *Resolver) ResolveAll(sites []models.Site) ([]models.ReportRow, error) {
	rows := make([]models.ReportRow, 0, len(sites))
	for _, site := range sites {
		row, ok, err := r.Resolve(site)
		if err != nil {
			return nil, err
		}
		if !ok {
			slog.Debug("skipping non-spoke site",
				slog.String("site_id", site.ID),
				slog.String("role", string(site.ElementClusterRole)),
			)
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (r *Resolver) lookup(siteID, field, id string) (string, error) {
	if id != "" {
		if name, ok := r.names.Lookup(id); ok {
			return name, nil
		}
	}

	unresolved := &UnresolvedIDError{SiteID: siteID, Field: field, ID: id}
	if !r.allowUnresolved {
		return "", unresolved
	}

	slog.Warn("substituting placeholder for unresolved id", slog.String("error", unresolved.Error()))
	if id == "" {
		return models.NoPolicy, nil
	}
	return id, nil
}
