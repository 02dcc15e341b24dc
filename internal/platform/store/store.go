// Package store implements the wide-row key-value store adapter (C1) that
// every domain service in this repository is built on top of. It exposes
// six operations with fixed semantics (Put/Get/Query/Update/TransactWrite/
// Delete) over a single logical table plus three global secondary indexes,
// grounded on the teacher's MongoDB adapters
// (components/crm/internal/adapters/mongodb) but reshaped into the
// DynamoDB-style single-table contract §3/§4.1 of the spec requires.
package store

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel error kinds surfaced by every Store implementation. Callers use
// errors.Is against these, never string matching.
var (
	ErrNotFound  = errors.New("store: not found")
	ErrConflict  = errors.New("store: conflict")
	ErrThrottled = errors.New("store: throttled")
	ErrTransient = errors.New("store: transient")
	ErrFatal     = errors.New("store: fatal")
)

// Item is a generic representation of one row: the compound key, the GSI
// projections when present, and arbitrary domain attributes.
type Item map[string]any

// PK/SK return the item's primary key pair as strings; a missing key renders
// as "<nil>" rather than panicking.
func (i Item) PK() string { return fmt.Sprint(i["pk"]) }
func (i Item) SK() string { return fmt.Sprint(i["sk"]) }

// SkOp enumerates sort-key query conditions.
type SkOp string

const (
	SkBeginsWith SkOp = "begins_with"
	SkBetween    SkOp = "between"
	SkGT         SkOp = ">"
	SkLT         SkOp = "<"
	SkEQ         SkOp = "="
)

// SkCondition narrows a Query to a sort-key range.
type SkCondition struct {
	Op    SkOp
	Value string
	High  string // only used when Op == SkBetween
}

// Condition is a conditional-write guard, e.g. "version = :prev" or
// "attribute_not_exists(pk)". Field is the attribute name; when Value is
// nil the condition means "attribute must not exist"; otherwise it means
// "attribute must equal Value".
type Condition struct {
	Field        string
	Value        any
	MustNotExist bool

	// MinField/Min express "attribute >= Min" instead of equality, e.g. the
	// credit ledger's non-negative-balance debit guard.
	MinField string
	Min      any
}

// Index identifies which of the three GSIs (or the base table) a Query runs against.
type Index string

const (
	IndexBase Index = ""
	IndexGSI1 Index = "gsi1"
	IndexGSI2 Index = "gsi2"
	IndexGSI3 Index = "gsi3"
)

// QueryInput parameterizes Query.
type QueryInput struct {
	Index   Index
	PK      string
	SK      *SkCondition
	Filter  func(Item) bool
	Limit   int
	Forward bool
	Cursor  string
}

// WriteKind enumerates the operations TransactWrite can batch.
type WriteKind string

const (
	WritePut    WriteKind = "put"
	WriteUpdate WriteKind = "update"
	WriteDelete WriteKind = "delete"
)

// WriteOp is one operation inside a TransactWrite batch.
type WriteOp struct {
	Kind      WriteKind
	PK, SK    string
	Item      Item           // used by WritePut
	SetOps    map[string]any // used by WriteUpdate
	Condition *Condition
}

// Store is the six-operation contract every domain service depends on.
type Store interface {
	Put(ctx context.Context, item Item, cond *Condition) error
	Get(ctx context.Context, pk, sk string) (Item, error)
	Query(ctx context.Context, in QueryInput) ([]Item, string, error)
	Update(ctx context.Context, pk, sk string, setOps map[string]any, cond *Condition) (Item, error)
	TransactWrite(ctx context.Context, ops []WriteOp) error
	Delete(ctx context.Context, pk, sk string, cond *Condition) error
}
