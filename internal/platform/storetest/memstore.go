// Package storetest provides an in-process fake implementing store.Store,
// used by domain service unit tests in place of a real MongoDB deployment.
// It reproduces the six-operation contract's condition/conflict semantics
// (§4.1) precisely enough to exercise optimistic-locking and uniqueness-lock
// tests without a database.
package storetest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/platform/store"
)

type row struct {
	item store.Item
}

// MemStore is a goroutine-safe, in-memory Store implementation for tests.
type MemStore struct {
	mu   sync.Mutex
	rows map[string]row
}

// NewMemStore builds an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{rows: make(map[string]row)}
}

func rowKey(pk, sk string) string { return pk + "\x00" + sk }

func cloneItem(it store.Item) store.Item {
	out := make(store.Item, len(it))
	for k, v := range it {
		out[k] = v
	}

	return out
}

func (m *MemStore) checkCondition(existing store.Item, cond *store.Condition) error {
	if cond == nil {
		return nil
	}

	if cond.MustNotExist {
		if existing != nil {
			return store.ErrConflict
		}

		return nil
	}

	if existing == nil {
		return store.ErrConflict
	}

	if cond.MinField != "" {
		if lessThan(existing[cond.MinField], cond.Min) {
			return store.ErrConflict
		}

		return nil
	}

	if !equalValue(existing[cond.Field], cond.Value) {
		return store.ErrConflict
	}

	return nil
}

func equalValue(a, b any) bool {
	return toComparable(a) == toComparable(b)
}

func lessThan(a, b any) bool {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)

	if aok && bok {
		return af < bf
	}

	return false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func toComparable(v any) any {
	if f, ok := toFloat(v); ok {
		return f
	}

	return v
}

// Put implements store.Store.
func (m *MemStore) Put(_ context.Context, item store.Item, cond *store.Condition) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := rowKey(item.PK(), item.SK())
	existing, ok := m.rows[key]

	var existingItem store.Item
	if ok {
		existingItem = existing.item
	}

	if err := m.checkCondition(existingItem, cond); err != nil {
		return err
	}

	m.rows[key] = row{item: cloneItem(item)}

	return nil
}

// Get implements store.Store.
func (m *MemStore) Get(_ context.Context, pk, sk string) (store.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.rows[rowKey(pk, sk)]
	if !ok {
		return nil, store.ErrNotFound
	}

	return cloneItem(r.item), nil
}

func indexFields(idx store.Index) (string, string) {
	switch idx {
	case store.IndexGSI1:
		return "gsi1pk", "gsi1sk"
	case store.IndexGSI2:
		return "gsi2pk", "gsi2sk"
	case store.IndexGSI3:
		return "gsi3pk", "gsi3sk"
	default:
		return "pk", "sk"
	}
}

func matchesSK(sk string, cond *store.SkCondition) bool {
	if cond == nil {
		return true
	}

	switch cond.Op {
	case store.SkBeginsWith:
		return strings.HasPrefix(sk, cond.Value)
	case store.SkBetween:
		return sk >= cond.Value && sk <= cond.High
	case store.SkGT:
		return sk > cond.Value
	case store.SkLT:
		return sk < cond.Value
	case store.SkEQ:
		return sk == cond.Value
	default:
		return true
	}
}

// Query implements store.Store. Pagination is unsupported (cursor is always
// ""); tests that need multi-page iteration should assert on full result
// sets directly.
func (m *MemStore) Query(_ context.Context, in store.QueryInput) ([]store.Item, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pkField, skField := indexFields(in.Index)

	var matched []store.Item

	for _, r := range m.rows {
		if toStringAttr(r.item[pkField]) != in.PK {
			continue
		}

		if !matchesSK(toStringAttr(r.item[skField]), in.SK) {
			continue
		}

		if in.Filter != nil && !in.Filter(r.item) {
			continue
		}

		matched = append(matched, cloneItem(r.item))
	}

	sort.Slice(matched, func(i, j int) bool {
		if in.Forward {
			return toStringAttr(matched[i][skField]) < toStringAttr(matched[j][skField])
		}

		return toStringAttr(matched[i][skField]) > toStringAttr(matched[j][skField])
	})

	if in.Limit > 0 && len(matched) > in.Limit {
		matched = matched[:in.Limit]
	}

	return matched, "", nil
}

func toStringAttr(v any) string {
	s, _ := v.(string)

	return s
}

// Update implements store.Store.
func (m *MemStore) Update(_ context.Context, pk, sk string, setOps map[string]any, cond *store.Condition) (store.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := rowKey(pk, sk)
	r, ok := m.rows[key]

	var existing store.Item
	if ok {
		existing = r.item
	}

	if cond != nil {
		if err := m.checkCondition(existing, cond); err != nil {
			return nil, err
		}
	} else if !ok {
		return nil, store.ErrNotFound
	}

	merged := cloneItem(existing)
	if merged == nil {
		merged = store.Item{"pk": pk, "sk": sk}
	}

	for k, v := range setOps {
		merged[k] = v
	}

	m.rows[key] = row{item: merged}

	return cloneItem(merged), nil
}

// Delete implements store.Store.
func (m *MemStore) Delete(_ context.Context, pk, sk string, cond *store.Condition) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := rowKey(pk, sk)
	r, ok := m.rows[key]

	var existing store.Item
	if ok {
		existing = r.item
	}

	if cond != nil {
		if err := m.checkCondition(existing, cond); err != nil {
			return err
		}
	}

	delete(m.rows, key)

	return nil
}

// TransactWrite implements store.Store as an all-or-nothing batch: every
// condition is checked against current state before any write lands.
func (m *MemStore) TransactWrite(_ context.Context, ops []store.WriteOp) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(ops) > 25 {
		return store.ErrFatal
	}

	for _, op := range ops {
		key := rowKey(op.PK, op.SK)
		r, ok := m.rows[key]

		var existing store.Item
		if ok {
			existing = r.item
		}

		if op.Kind == store.WriteUpdate && op.Condition == nil && !ok {
			return store.ErrConflict
		}

		if err := m.checkCondition(existing, op.Condition); err != nil {
			return err
		}
	}

	for _, op := range ops {
		key := rowKey(op.PK, op.SK)

		switch op.Kind {
		case store.WritePut:
			m.rows[key] = row{item: cloneItem(op.Item)}
		case store.WriteUpdate:
			existing := cloneItem(m.rows[key].item)
			if existing == nil {
				existing = store.Item{"pk": op.PK, "sk": op.SK}
			}

			for k, v := range op.SetOps {
				existing[k] = v
			}

			m.rows[key] = row{item: existing}
		case store.WriteDelete:
			delete(m.rows, key)
		}
	}

	return nil
}

// IncrementWindow implements ratelimit.WindowStore for tests that exercise
// the rate limiter against this fake instead of a real Redis/Mongo backend.
func (m *MemStore) IncrementWindow(_ context.Context, pk, sk string, _ time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := rowKey(pk, sk)
	r, ok := m.rows[key]

	count := int64(0)

	if ok {
		if c, cok := toFloat(r.item["count"]); cok {
			count = int64(c)
		}
	}

	count++

	item := store.Item{"pk": pk, "sk": sk, "type": "RateLimitWindow", "count": count}
	m.rows[key] = row{item: item}

	return count, nil
}
