package models

import "strings"

// ClusterRole is a site's element_cluster_role.
type ClusterRole string

const (
	RoleHub   ClusterRole = "HUB"
	RoleSpoke ClusterRole = "SPOKE"
)

// NoPolicy is written for spoke sites that reference no policy at all.
const NoPolicy = "None"

// Site is one entry of the tenant's site listing. Only the fields the
// report needs are decoded; a JSON null leaves the field empty.
type Site struct {
	ID                       string      `json:"id"`
	Name                     string      `json:"name,omitempty"`
	ElementClusterRole       ClusterRole `json:"element_cluster_role"`
	PolicySetID              string      `json:"policy_set_id,omitempty"`
	NetworkPolicySetStackID  string      `json:"network_policysetstack_id,omitempty"`
	PriorityPolicySetStackID string      `json:"priority_policysetstack_id,omitempty"`
	NATPolicySetStackID      string      `json:"nat_policysetstack_id,omitempty"`
}

// IsSpoke reports whether the site is a branch endpoint.
func (s Site) IsSpoke() bool {
	return s.ElementClusterRole == RoleSpoke
}

// UsesClassicPolicy reports whether a combined classic policy set is bound.
func (s Site) UsesClassicPolicy() bool {
	return strings.TrimSpace(s.PolicySetID) != ""
}

// UsesStackedPolicy reports whether a network policy stack is bound.
func (s Site) UsesStackedPolicy() bool {
	return strings.TrimSpace(s.NetworkPolicySetStackID) != ""
}

// SiteList is the envelope returned by the site listing call.
type SiteList struct {
	Count int    `json:"count"`
	Items []Site `json:"items"`
}

// SpokeCount returns how many sites in sites are spokes.
func SpokeCount(sites []Site) int {
	n := 0
	for _, site := range sites {
		if site.IsSpoke() {
			n++
		}
	}
	return n
}
