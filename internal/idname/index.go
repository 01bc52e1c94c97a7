package idname

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ppiankov/sitepolicy/internal/controller"
	"github.com/tidwall/gjson"
)

// DefaultCollections are the object listings folded into the index.
// Sites, policy sets and the three policy stack kinds cover every id a
// site can reference; elements are included so the index is usable for
// device ids as well.
var DefaultCollections = []controller.Collection{
	{Name: "sites", Version: "v4.7"},
	{Name: "elements", Version: "v3.0"},
	{Name: "policysets", Version: "v3.1"},
	{Name: "networkpolicysetstacks", Version: "v2.0"},
	{Name: "prioritypolicysetstacks", Version: "v2.0"},
	{Name: "natpolicysetstacks", Version: "v2.0"},
}

// Lister fetches a raw collection listing.
type Lister interface {
	List(ctx context.Context, collection controller.Collection) ([]byte, error)
}

// Index maps object ids to display names. It is built once and only
// read afterwards.
type Index struct {
	names map[string]string
}

// FromMap builds an index from a prepared mapping.
func FromMap(m map[string]string) *Index {
	names := make(map[string]string, len(m))
	for id, name := range m {
		names[id] = name
	}
	return &Index{names: names}
}

// Lookup returns the name for id.
func (i *Index) Lookup(id string) (string, bool) {
	if i == nil {
		return "", false
	}
	name, ok := i.names[id]
	return name, ok
}

// Len returns the number of ids in the index.
func (i *Index) Len() int {
	if i == nil {
		return 0
	}
	return len(i.names)
}

// Build fetches every collection sequentially and indexes its items.
// Any failed fetch aborts the build.
func Build(ctx context.Context, lister Lister, collections []controller.Collection) (*Index, error) {
	index := &Index{names: make(map[string]string)}

	for _, collection := range collections {
		body, err := lister.List(ctx, collection)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", collection.Name, err)
		}

		added, err := index.addItems(body)
		if err != nil {
			return nil, fmt.Errorf("failed to index %s: %w", collection.Name, err)
		}

		slog.Debug("indexed collection",
			slog.String("collection", collection.Name),
			slog.Int("items", added),
		)
	}

	return index, nil
}

// addItems records id -> name for each element of the body's items
// array. Items without an id are skipped; an empty name maps to the id.
func (i *Index) addItems(body []byte) (int, error) {
	if !gjson.ValidBytes(body) {
		return 0, fmt.Errorf("%w: body is not JSON", controller.ErrInvalidResponse)
	}

	items := gjson.GetBytes(body, "items")
	if !items.IsArray() {
		return 0, fmt.Errorf("%w: listing has no items", controller.ErrInvalidResponse)
	}

	added := 0
	items.ForEach(func(_, item gjson.Result) bool {
		id := item.Get("id").String()
		if id == "" {
			return true
		}
		name := item.Get("name").String()
		if name == "" {
			name = id
		}
		i.names[id] = name
		added++
		return true
	})

	return added, nil
}
