package ports

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ErrAlreadyExists is returned by PutIfAbsent when the key is taken.
var ErrAlreadyExists = errors.New("item already exists")

// Item is a raw single-table row. Repositories marshal their typed records
// into this shape with attributevalue.
type Item = map[string]types.AttributeValue

// Key addresses one row by partition and sort key.
type Key struct {
	PK string
	SK string
}

// SortCondition narrows a Query to a slice of the sort-key space.
type SortCondition struct {
	// BeginsWith restricts to sort keys with this prefix. Empty means the
	// whole partition.
	BeginsWith string
	// Between restricts to sort keys in [Low, High]. Takes precedence over
	// BeginsWith when Low is set.
	Low  string
	High string
}

// QuerySpec describes one partition query against the table or its index.
type QuerySpec struct {
	PartitionKey string
	Sort         SortCondition
	// IndexName queries GSI1 when set; the base table otherwise.
	IndexName string
	// Limit caps returned items. Zero means no limit.
	Limit int32
	// ScanForward orders ascending by sort key when true. Default is
	// descending (newest first for date-prefixed keys).
	ScanForward bool
}

// UpdateSpec describes an UpdateItem. Update auto-creates the row when it
// does not exist, which callers rely on for counters and pointers.
type UpdateSpec struct {
	// Set assigns attributes.
	Set map[string]types.AttributeValue
	// Add atomically increments numeric attributes, treating missing as zero.
	Add map[string]int
}

// Store is the single-table adapter. One implementation talks to DynamoDB;
// an in-memory one mirrors the same semantics for tests.
type Store interface {
	// Get returns the item at the key. The bool is false when absent;
	// absence is not an error.
	Get(ctx context.Context, key Key) (Item, bool, error)

	// Put writes the item unconditionally (upsert).
	Put(ctx context.Context, item Item) error

	// PutIfAbsent writes only when no item exists at the item's key,
	// returning ErrAlreadyExists otherwise.
	PutIfAbsent(ctx context.Context, item Item) error

	// Update applies the spec to the item at the key, creating the item if
	// absent, and returns the full item after the update.
	Update(ctx context.Context, key Key, spec UpdateSpec) (Item, error)

	// Delete removes the item at the key. Deleting a missing item is not an
	// error.
	Delete(ctx context.Context, key Key) error

	// Query returns items matching the spec, ordered by sort key.
	Query(ctx context.Context, spec QuerySpec) ([]Item, error)

	// QueryPaginated counts the partition, fetches the first page*pageSize
	// matching items, and returns the slice for the requested page along
	// with the total count. Cost grows with the page number; acceptable for
	// the shallow pages this API serves.
	QueryPaginated(ctx context.Context, spec QuerySpec, page, pageSize int) ([]Item, int, error)

	// BatchGet returns the items present at the given keys. Missing keys
	// are skipped, not errors.
	BatchGet(ctx context.Context, keys []Key) ([]Item, error)

	// BatchWrite puts all items, chunking to the provider's batch limit.
	BatchWrite(ctx context.Context, items []Item) error
}
