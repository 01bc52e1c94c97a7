package idname

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/sitepolicy/internal/controller"
	"github.com/ppiankov/sitepolicy/internal/controller/controllertest"
	"github.com/ppiankov/sitepolicy/pkg/config"
)

type staticLister map[string]string

func (s staticLister) List(_ context.Context, collection controller.Collection) ([]byte, error) {
	body, ok := s[collection.Name]
	if !ok {
		return nil, errors.New("unexpected collection " + collection.Name)
	}
	return []byte(body), nil
}

func TestBuildIndexesAllCollections(t *testing.T) {
	lister := staticLister{
		"sites":              `{"items":[{"id":"s1","name":"Site-A"},{"id":"s2","name":""}]}`,
		"policysets":         `{"items":[{"id":"p1","name":"Policy-X"}]}`,
		"natpolicysetstacks": `{"items":[{"name":"orphan"},{"id":"n3","name":"Nat1"}]}`,
	}
	collections := []controller.Collection{
		{Name: "sites", Version: "v4.7"},
		{Name: "policysets", Version: "v3.1"},
		{Name: "natpolicysetstacks", Version: "v2.0"},
	}

	index, err := Build(context.Background(), lister, collections)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	cases := []struct {
		id     string
		want   string
		wantOK bool
	}{
		{id: "s1", want: "Site-A", wantOK: true},
		{id: "s2", want: "s2", wantOK: true},
		{id: "p1", want: "Policy-X", wantOK: true},
		{id: "n3", want: "Nat1", wantOK: true},
		{id: "missing", wantOK: false},
	}
	for _, tc := range cases {
		t.Run(tc.id, func(t *testing.T) {
			got, ok := index.Lookup(tc.id)
			if ok != tc.wantOK || got != tc.want {
				t.Fatalf("Lookup(%q) = %q, %v; want %q, %v", tc.id, got, ok, tc.want, tc.wantOK)
			}
		})
	}
	if index.Len() != 4 {
		t.Fatalf("expected 4 entries, got %d", index.Len())
	}
}

func TestBuildFailsOnListError(t *testing.T) {
	_, err := Build(context.Background(), staticLister{}, []controller.Collection{{Name: "elements", Version: "v3.0"}})
	if err == nil || !strings.Contains(err.Error(), "failed to list elements") {
		t.Fatalf("expected list error, got %v", err)
	}
}

func TestBuildRejectsMalformedListing(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{name: "not_json", body: `<html>`},
		{name: "no_items", body: `{"count":0}`},
		{name: "items_not_array", body: `{"items":{"id":"x"}}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			lister := staticLister{"sites": tc.body}
			_, err := Build(context.Background(), lister, []controller.Collection{{Name: "sites", Version: "v4.7"}})
			if !errors.Is(err, controller.ErrInvalidResponse) {
				t.Fatalf("expected ErrInvalidResponse, got %v", err)
			}
		})
	}
}

func TestFromMapCopiesInput(t *testing.T) {
	src := map[string]string{"a": "A"}
	index := FromMap(src)
	src["a"] = "changed"

	if got, _ := index.Lookup("a"); got != "A" {
		t.Fatalf("index must not alias input map, got %q", got)
	}
}

func TestNilIndex(t *testing.T) {
	var index *Index
	if _, ok := index.Lookup("x"); ok {
		t.Fatal("nil index must not resolve")
	}
	if index.Len() != 0 {
		t.Fatal("nil index must be empty")
	}
}

func TestBuildAgainstController(t *testing.T) {
	srv := controllertest.NewServer(t, &controllertest.Fixture{
		Token:    "tok",
		TenantID: "t-1",
		Sites: []map[string]any{
			{"id": "s1", "name": "Site-A", "element_cluster_role": "SPOKE"},
		},
		Collections: map[string][]map[string]any{
			"policysets":              {controllertest.Item("p1", "Policy-X")},
			"networkpolicysetstacks":  {controllertest.Item("n1", "Path1")},
			"prioritypolicysetstacks": {controllertest.Item("n2", "QoS1")},
			"natpolicysetstacks":      {controllertest.Item("n3", "Nat1")},
			"elements":                {controllertest.Item("e1", "edge-1")},
		},
	})

	cfg := config.DefaultConfig()
	cfg.Controller = srv.URL
	cfg.RequestTimeout = 5 * time.Second
	client := controller.NewClient(cfg)
	if err := client.UseToken(context.Background(), "tok"); err != nil {
		t.Fatalf("UseToken failed: %v", err)
	}

	index, err := Build(context.Background(), client, DefaultCollections)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	for id, want := range map[string]string{"s1": "Site-A", "p1": "Policy-X", "n1": "Path1", "n2": "QoS1", "n3": "Nat1", "e1": "edge-1"} {
		if got, ok := index.Lookup(id); !ok || got != want {
			t.Fatalf("Lookup(%q) = %q, %v; want %q", id, got, ok, want)
		}
	}
}

func TestBuildAgainstControllerFailure(t *testing.T) {
	srv := controllertest.NewServer(t, &controllertest.Fixture{
		Token:      "tok",
		TenantID:   "t-1",
		FailStatus: map[string]int{"policysets": http.StatusBadGateway},
	})

	cfg := config.DefaultConfig()
	cfg.Controller = srv.URL
	client := controller.NewClient(cfg)
	if err := client.UseToken(context.Background(), "tok"); err != nil {
		t.Fatalf("UseToken failed: %v", err)
	}

	_, err := Build(context.Background(), client, DefaultCollections)
	var apiErr *controller.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502 APIError, got %v", err)
	}
}
