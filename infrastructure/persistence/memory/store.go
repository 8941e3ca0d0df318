package memory

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/tradestreak/wall-street-service/application/ports"
)

// Store is an in-memory ports.Store with the same observable semantics as
// the DynamoDB adapter: sort-key ordering, update auto-create, conditional
// put, and count-then-overfetch pagination. Used by tests and local runs.
type Store struct {
	mu    sync.RWMutex
	items map[string]map[string]ports.Item // PK -> SK -> item
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{items: make(map[string]map[string]ports.Item)}
}

func (s *Store) Get(ctx context.Context, key ports.Key) (ports.Item, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[key.PK][key.SK]
	if !ok {
		return nil, false, nil
	}
	return cloneItem(item), true, nil
}

func (s *Store) Put(ctx context.Context, item ports.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.putLocked(item)
	return nil
}

func (s *Store) PutIfAbsent(ctx context.Context, item ports.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pk, sk := itemKey(item)
	if _, exists := s.items[pk][sk]; exists {
		return ports.ErrAlreadyExists
	}
	s.putLocked(item)
	return nil
}

func (s *Store) Update(ctx context.Context, key ports.Key, spec ports.UpdateSpec) (ports.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[key.PK][key.SK]
	if !ok {
		// UpdateItem semantics: the row comes into existence.
		item = ports.Item{
			"PK": &types.AttributeValueMemberS{Value: key.PK},
			"SK": &types.AttributeValueMemberS{Value: key.SK},
		}
	} else {
		item = cloneItem(item)
	}

	for name, value := range spec.Set {
		item[name] = value
	}
	for name, delta := range spec.Add {
		current := 0
		if n, ok := item[name].(*types.AttributeValueMemberN); ok {
			current, _ = strconv.Atoi(n.Value)
		}
		item[name] = &types.AttributeValueMemberN{Value: strconv.Itoa(current + delta)}
	}

	s.putLocked(item)
	return cloneItem(item), nil
}

func (s *Store) Delete(ctx context.Context, key ports.Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.items[key.PK], key.SK)
	return nil
}

func (s *Store) Query(ctx context.Context, spec ports.QuerySpec) ([]ports.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryLocked(spec), nil
}

func (s *Store) QueryPaginated(ctx context.Context, spec ports.QuerySpec, page, pageSize int) ([]ports.Item, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	countSpec := spec
	countSpec.Limit = 0
	total := len(s.queryLocked(countSpec))

	fetchSpec := spec
	fetchSpec.Limit = int32(page * pageSize)
	items := s.queryLocked(fetchSpec)

	start := (page - 1) * pageSize
	if start >= len(items) {
		return []ports.Item{}, total, nil
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], total, nil
}

func (s *Store) BatchGet(ctx context.Context, keys []ports.Key) ([]ports.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var items []ports.Item
	for _, key := range keys {
		if item, ok := s.items[key.PK][key.SK]; ok {
			items = append(items, cloneItem(item))
		}
	}
	return items, nil
}

func (s *Store) BatchWrite(ctx context.Context, items []ports.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range items {
		s.putLocked(item)
	}
	return nil
}

func (s *Store) putLocked(item ports.Item) {
	pk, sk := itemKey(item)
	if s.items[pk] == nil {
		s.items[pk] = make(map[string]ports.Item)
	}
	s.items[pk][sk] = cloneItem(item)
}

// queryLocked evaluates the spec over either the base keys or the GSI1
// attributes, ordered by the relevant sort key.
func (s *Store) queryLocked(spec ports.QuerySpec) []ports.Item {
	useIndex := spec.IndexName != ""

	var matched []ports.Item
	for _, partition := range s.items {
		for _, item := range partition {
			pk, sk := itemKey(item)
			if useIndex {
				pk = stringAttr(item, "GSI1PK")
				sk = stringAttr(item, "GSI1SK")
				if pk == "" {
					continue // sparse index
				}
			}
			if pk != spec.PartitionKey {
				continue
			}
			if !sortMatches(sk, spec.Sort) {
				continue
			}
			matched = append(matched, item)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		a, b := sortKeyOf(matched[i], useIndex), sortKeyOf(matched[j], useIndex)
		if spec.ScanForward {
			return a < b
		}
		return a > b
	})

	if spec.Limit > 0 && int32(len(matched)) > spec.Limit {
		matched = matched[:spec.Limit]
	}

	out := make([]ports.Item, len(matched))
	for i, item := range matched {
		out[i] = cloneItem(item)
	}
	return out
}

func sortMatches(sk string, cond ports.SortCondition) bool {
	switch {
	case cond.Low != "":
		return sk >= cond.Low && sk <= cond.High
	case cond.BeginsWith != "":
		return strings.HasPrefix(sk, cond.BeginsWith)
	default:
		return true
	}
}

func sortKeyOf(item ports.Item, useIndex bool) string {
	if useIndex {
		return stringAttr(item, "GSI1SK")
	}
	return stringAttr(item, "SK")
}

func itemKey(item ports.Item) (string, string) {
	return stringAttr(item, "PK"), stringAttr(item, "SK")
}

func stringAttr(item ports.Item, name string) string {
	if v, ok := item[name].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

func cloneItem(item ports.Item) ports.Item {
	out := make(ports.Item, len(item))
	for k, v := range item {
		out[k] = v
	}
	return out
}
