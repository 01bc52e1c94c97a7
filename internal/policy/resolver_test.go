package policy

import (
	"errors"
	"reflect"
	"testing"

	"github.com/ppiankov/sitepolicy/internal/idname"
	"github.com/ppiankov/sitepolicy/internal/models"
)

func TestResolve(t *testing.T) {
	index := idname.FromMap(map[string]string{
		"s1": "Site-A",
		"s2": "Site-B",
		"s3": "Site-C",
		"s4": "Site-D",
		"p1": "Policy-X",
		"n1": "Path1",
		"n2": "QoS1",
		"n3": "Nat1",
	})

	cases := []struct {
		name   string
		site   models.Site
		want   models.ReportRow
		wantOK bool
	}{
		{
			name:   "classic_policy_fills_all_three",
			site:   models.Site{ID: "s1", ElementClusterRole: models.RoleSpoke, PolicySetID: "p1"},
			want:   models.ReportRow{SiteName: "Site-A", PathPolicy: "Policy-X", QoSPolicy: "Policy-X", NATPolicy: "Policy-X"},
			wantOK: true,
		},
		{
			name: "stacked_policy_resolves_independently",
			site: models.Site{
				ID:                       "s2",
				ElementClusterRole:       models.RoleSpoke,
				NetworkPolicySetStackID:  "n1",
				PriorityPolicySetStackID: "n2",
				NATPolicySetStackID:      "n3",
			},
			want:   models.ReportRow{SiteName: "Site-B", PathPolicy: "Path1", QoSPolicy: "QoS1", NATPolicy: "Nat1"},
			wantOK: true,
		},
		{
			name:   "no_policy_is_literal_none",
			site:   models.Site{ID: "s3", ElementClusterRole: models.RoleSpoke},
			want:   models.ReportRow{SiteName: "Site-C", PathPolicy: "None", QoSPolicy: "None", NATPolicy: "None"},
			wantOK: true,
		},
		{
			name: "classic_wins_over_stacked",
			site: models.Site{
				ID:                       "s4",
				ElementClusterRole:       models.RoleSpoke,
				PolicySetID:              "p1",
				NetworkPolicySetStackID:  "n1",
				PriorityPolicySetStackID: "n2",
				NATPolicySetStackID:      "n3",
			},
			want:   models.ReportRow{SiteName: "Site-D", PathPolicy: "Policy-X", QoSPolicy: "Policy-X", NATPolicy: "Policy-X"},
			wantOK: true,
		},
		{
			name:   "hub_never_produces_row",
			site:   models.Site{ID: "s1", ElementClusterRole: models.RoleHub, PolicySetID: "p1"},
			wantOK: false,
		},
		{
			name:   "hub_with_unknown_ids_is_skipped_not_failed",
			site:   models.Site{ID: "unknown", ElementClusterRole: models.RoleHub, PolicySetID: "unknown"},
			wantOK: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok, err := New(index).Resolve(tc.site)
			if err != nil {
				t.Fatalf("Resolve failed: %v", err)
			}
			if ok != tc.wantOK {
				t.Fatalf("expected ok=%v, got %v", tc.wantOK, ok)
			}
			if got != tc.want {
				t.Fatalf("expected %+v, got %+v", tc.want, got)
			}
		})
	}
}

func TestResolveDoesNotMutateSite(t *testing.T) {
	index := idname.FromMap(map[string]string{"s1": "Site-A", "p1": "Policy-X"})
	site := models.Site{ID: "s1", ElementClusterRole: models.RoleSpoke, PolicySetID: "p1"}
	before := site

	if _, _, err := New(index).Resolve(site); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if site != before {
		t.Fatalf("site mutated: %+v", site)
	}
}

func TestResolveUnresolvedID(t *testing.T) {
	index := idname.FromMap(map[string]string{"s1": "Site-A", "n1": "Path1", "n2": "QoS1"})

	cases := []struct {
		name      string
		site      models.Site
		wantField string
		wantID    string
	}{
		{
			name:      "unknown_site",
			site:      models.Site{ID: "ghost", ElementClusterRole: models.RoleSpoke},
			wantField: FieldSiteID,
			wantID:    "ghost",
		},
		{
			name:      "unknown_classic_policy",
			site:      models.Site{ID: "s1", ElementClusterRole: models.RoleSpoke, PolicySetID: "p9"},
			wantField: FieldPolicySet,
			wantID:    "p9",
		},
		{
			name: "missing_nat_stack",
			site: models.Site{
				ID:                       "s1",
				ElementClusterRole:       models.RoleSpoke,
				NetworkPolicySetStackID:  "n1",
				PriorityPolicySetStackID: "n2",
			},
			wantField: FieldNATStack,
			wantID:    "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := New(index).Resolve(tc.site)
			var unresolved *UnresolvedIDError
			if !errors.As(err, &unresolved) {
				t.Fatalf("expected UnresolvedIDError, got %v", err)
			}
			if unresolved.Field != tc.wantField || unresolved.ID != tc.wantID {
				t.Fatalf("unexpected error detail: %+v", unresolved)
			}
		})
	}
}

func TestResolveWithPlaceholders(t *testing.T) {
	index := idname.FromMap(map[string]string{"s1": "Site-A", "n1": "Path1"})
	site := models.Site{
		ID:                       "s1",
		ElementClusterRole:       models.RoleSpoke,
		NetworkPolicySetStackID:  "n1",
		PriorityPolicySetStackID: "n2",
	}

	got, ok, err := New(index, WithPlaceholders()).Resolve(site)
	if err != nil || !ok {
		t.Fatalf("expected placeholder resolution, got ok=%v err=%v", ok, err)
	}
	want := models.ReportRow{SiteName: "Site-A", PathPolicy: "Path1", QoSPolicy: "n2", NATPolicy: "None"}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestResolveAllKeepsOrderAndCountsSpokes(t *testing.T) {
	index := idname.FromMap(map[string]string{
		"s1": "Site-A", "s2": "Site-B", "s3": "Site-C", "p1": "Policy-X",
	})
	sites := []models.Site{
		{ID: "s3", ElementClusterRole: models.RoleSpoke},
		{ID: "h1", ElementClusterRole: models.RoleHub},
		{ID: "s1", ElementClusterRole: models.RoleSpoke, PolicySetID: "p1"},
		{ID: "s2", ElementClusterRole: models.RoleSpoke},
	}

	rows, err := New(index).ResolveAll(sites)
	if err != nil {
		t.Fatalf("ResolveAll failed: %v", err)
	}
	if len(rows) != models.SpokeCount(sites) {
		t.Fatalf("expected %d rows, got %d", models.SpokeCount(sites), len(rows))
	}

	var names []string
	for _, row := range rows {
		names = append(names, row.SiteName)
	}
	if want := []string{"Site-C", "Site-A", "Site-B"}; !reflect.DeepEqual(names, want) {
		t.Fatalf("expected order %v, got %v", want, names)
	}
}

func TestResolveAllStopsAtFirstError(t *testing.T) {
	index := idname.FromMap(map[string]string{"s1": "Site-A"})
	sites := []models.Site{
		{ID: "s1", ElementClusterRole: models.RoleSpoke},
		{ID: "s2", ElementClusterRole: models.RoleSpoke},
	}

	rows, err := New(index).ResolveAll(sites)
	if err == nil {
		t.Fatal("expected error")
	}
	if rows != nil {
		t.Fatalf("expected no rows on error, got %v", rows)
	}
}
