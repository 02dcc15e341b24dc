package store

import (
	"context"
	"errors"
	"math/rand"
	"strconv"
	"time"

	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/platform/logging"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore implements Store on top of a single MongoDB collection holding
// every entity in §3, distinguished by the `type` attribute, plus three
// sparse compound indexes projecting the GSIs. It is grounded on the
// teacher's components/crm/internal/adapters/mongodb repositories, reshaped
// from per-entity collections into the spec's single wide-row table.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
	logger     logging.Logger
	maxRetries int
}

// NewMongoStore wires a MongoStore against the given database/collection.
// EnsureIndexes should be called once at startup.
func NewMongoStore(client *mongo.Client, db, collection string, logger logging.Logger) *MongoStore {
	return &MongoStore{
		client:     client,
		collection: client.Database(db).Collection(collection),
		logger:     logger,
		maxRetries: 5,
	}
}

// EnsureIndexes creates the unique (pk, sk) index and the three sparse GSI
// indexes. Safe to call on every startup; index creation is idempotent.
func (m *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := m.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "pk", Value: 1}, {Key: "sk", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "gsi1pk", Value: 1}, {Key: "gsi1sk", Value: 1}}, Options: options.Index().SetSparse(true)},
		{Keys: bson.D{{Key: "gsi2pk", Value: 1}, {Key: "gsi2sk", Value: 1}}, Options: options.Index().SetSparse(true)},
		{Keys: bson.D{{Key: "gsi3pk", Value: 1}, {Key: "gsi3sk", Value: 1}}, Options: options.Index().SetSparse(true)},
		{Keys: bson.D{{Key: "ttl", Value: 1}}, Options: options.Index().SetSparse(true).SetExpireAfterSeconds(0)},
	})

	return err
}

func conditionFilter(pk, sk string, cond *Condition) bson.M {
	filter := bson.M{"pk": pk, "sk": sk}

	if cond == nil {
		return filter
	}

	if cond.MustNotExist {
		// handled by the caller via upsert-with-insert semantics; Condition
		// is only meaningful here when Value is set.
		return filter
	}

	if cond.MinField != "" {
		filter[cond.MinField] = bson.M{"$gte": cond.Min}
		return filter
	}

	filter[cond.Field] = cond.Value

	return filter
}

// classify maps a mongo-driver error into one of the five error kinds C1 requires.
func classify(err error) error {
	if err == nil {
		return nil
	}

	for _, kind := range []error{ErrNotFound, ErrConflict, ErrThrottled, ErrTransient, ErrFatal} {
		if errors.Is(err, kind) {
			return kind
		}
	}

	if mongo.IsDuplicateKeyError(err) {
		return ErrConflict
	}

	if mongo.IsTimeout(err) || mongo.IsNetworkError(err) {
		return ErrTransient
	}

	var cmdErr mongo.CommandError
	if ce, ok := err.(mongo.CommandError); ok {
		cmdErr = ce
		if cmdErr.Code == 91 || cmdErr.Code == 189 { // ShutdownInProgress, PrimarySteppedDown
			return ErrThrottled
		}
	}

	return ErrFatal
}

func (m *MongoStore) withRetry(ctx context.Context, fn func() error) error {
	var err error

	for attempt := 0; attempt <= m.maxRetries; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}

		kind := classify(err)
		if kind != ErrThrottled && kind != ErrTransient {
			return kind
		}

		backoff := time.Duration(1<<uint(attempt)) * 10 * time.Millisecond
		jitter := time.Duration(rand.Int63n(int64(backoff) + 1))

		select {
		case <-time.After(backoff + jitter):
		case <-ctx.Done():
			return ErrTransient
		}
	}

	return classify(err)
}

// Put writes an item, honoring an optional condition. A condition with
// MustNotExist models DynamoDB's attribute_not_exists(pk) uniqueness guard
// via an upsert that only inserts, never replaces.
func (m *MongoStore) Put(ctx context.Context, item Item, cond *Condition) error {
	return m.withRetry(ctx, func() error {
		doc := bson.M(item)

		if cond != nil && cond.MustNotExist {
			_, err := m.collection.InsertOne(ctx, doc)
			return err
		}

		filter := bson.M{"pk": item.PK(), "sk": item.SK()}
		if cond != nil {
			filter[cond.Field] = cond.Value
		}

		res, err := m.collection.ReplaceOne(ctx, filter, doc, options.Replace().SetUpsert(cond == nil))
		if err != nil {
			return err
		}

		if cond != nil && res.MatchedCount == 0 {
			return ErrConflict
		}

		return nil
	})
}

// Get fetches a single row, returning ErrNotFound when absent.
func (m *MongoStore) Get(ctx context.Context, pk, sk string) (Item, error) {
	var out Item

	err := m.withRetry(ctx, func() error {
		res := m.collection.FindOne(ctx, bson.M{"pk": pk, "sk": sk})
		if err := res.Err(); err != nil {
			if err == mongo.ErrNoDocuments {
				return ErrNotFound
			}

			return err
		}

		var doc bson.M
		if err := res.Decode(&doc); err != nil {
			return err
		}

		out = Item(doc)

		return nil
	})

	return out, err
}

func skFilter(sk *SkCondition) bson.M {
	if sk == nil {
		return bson.M{}
	}

	switch sk.Op {
	case SkBeginsWith:
		return bson.M{"sk": bson.M{"$regex": "^" + regexEscape(sk.Value)}}
	case SkBetween:
		return bson.M{"sk": bson.M{"$gte": sk.Value, "$lte": sk.High}}
	case SkGT:
		return bson.M{"sk": bson.M{"$gt": sk.Value}}
	case SkLT:
		return bson.M{"sk": bson.M{"$lt": sk.Value}}
	case SkEQ:
		return bson.M{"sk": sk.Value}
	default:
		return bson.M{}
	}
}

func regexEscape(s string) string {
	special := "\\.+*?()|[]{}^$"
	out := make([]byte, 0, len(s)*2)

	for i := 0; i < len(s); i++ {
		c := s[i]
		if contains(special, c) {
			out = append(out, '\\')
		}

		out = append(out, c)
	}

	return string(out)
}

func contains(set string, c byte) bool {
	for i := 0; i < len(set); i++ {
		if set[i] == c {
			return true
		}
	}

	return false
}

// Query runs a Query against the base table or one of the three GSIs.
// Pagination cursor is the opaque skip count; callers must not parse it.
func (m *MongoStore) Query(ctx context.Context, in QueryInput) ([]Item, string, error) {
	pkField, skField := "pk", "sk"

	switch in.Index {
	case IndexGSI1:
		pkField, skField = "gsi1pk", "gsi1sk"
	case IndexGSI2:
		pkField, skField = "gsi2pk", "gsi2sk"
	case IndexGSI3:
		pkField, skField = "gsi3pk", "gsi3sk"
	}

	filter := bson.M{pkField: in.PK}
	for k, v := range skFilter(in.SK) {
		if k == "sk" {
			filter[skField] = v
		} else {
			filter[k] = v
		}
	}

	limit := int64(in.Limit)
	if limit <= 0 {
		limit = 50
	}

	skip := int64(0)
	if in.Cursor != "" {
		skip = decodeCursor(in.Cursor)
	}

	order := 1
	if !in.Forward {
		order = -1
	}

	var items []Item

	err := m.withRetry(ctx, func() error {
		items = nil

		opts := options.Find().
			SetSort(bson.D{{Key: skField, Value: order}}).
			SetLimit(limit + 1).
			SetSkip(skip)

		cur, err := m.collection.Find(ctx, filter, opts)
		if err != nil {
			return err
		}
		defer cur.Close(ctx)

		for cur.Next(ctx) {
			var doc bson.M
			if err := cur.Decode(&doc); err != nil {
				return err
			}

			it := Item(doc)
			if in.Filter == nil || in.Filter(it) {
				items = append(items, it)
			}
		}

		return cur.Err()
	})
	if err != nil {
		return nil, "", err
	}

	nextCursor := ""

	if int64(len(items)) > limit {
		items = items[:limit]
		nextCursor = encodeCursor(skip + limit)
	}

	return items, nextCursor, nil
}

// Cursors are opaque to callers; internally they are just the row offset
// already consumed, base36-encoded to keep them short in JSON responses.
func encodeCursor(skip int64) string {
	return strconv.FormatInt(skip, 36)
}

func decodeCursor(cursor string) int64 {
	n, err := strconv.ParseInt(cursor, 36, 64)
	if err != nil {
		return 0
	}

	return n
}

// Update applies a single-row conditional update via $set.
func (m *MongoStore) Update(ctx context.Context, pk, sk string, setOps map[string]any, cond *Condition) (Item, error) {
	var out Item

	err := m.withRetry(ctx, func() error {
		filter := conditionFilter(pk, sk, cond)

		res := m.collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": setOps},
			options.FindOneAndUpdate().SetReturnDocument(options.After))

		if err := res.Err(); err != nil {
			if err == mongo.ErrNoDocuments {
				if cond != nil {
					return ErrConflict
				}

				return ErrNotFound
			}

			return err
		}

		var doc bson.M
		if err := res.Decode(&doc); err != nil {
			return err
		}

		out = Item(doc)

		return nil
	})

	return out, err
}

// TransactWrite executes up to 25 put/update/delete operations atomically
// using a MongoDB multi-document session transaction.
func (m *MongoStore) TransactWrite(ctx context.Context, ops []WriteOp) error {
	if len(ops) == 0 {
		return nil
	}

	if len(ops) > 25 {
		return ErrFatal
	}

	return m.withRetry(ctx, func() error {
		session, err := m.client.StartSession()
		if err != nil {
			return err
		}
		defer session.EndSession(ctx)

		_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
			for _, op := range ops {
				switch op.Kind {
				case WritePut:
					if op.Condition != nil && op.Condition.MustNotExist {
						if _, err := m.collection.InsertOne(sc, bson.M(op.Item)); err != nil {
							return nil, err
						}

						continue
					}

					filter := bson.M{"pk": op.PK, "sk": op.SK}
					if op.Condition != nil {
						filter[op.Condition.Field] = op.Condition.Value
					}

					res, err := m.collection.ReplaceOne(sc, filter, bson.M(op.Item), options.Replace().SetUpsert(op.Condition == nil))
					if err != nil {
						return nil, err
					}

					if op.Condition != nil && res.MatchedCount == 0 {
						return nil, ErrConflict
					}
				case WriteUpdate:
					filter := conditionFilter(op.PK, op.SK, op.Condition)

					res, err := m.collection.UpdateOne(sc, filter, bson.M{"$set": op.SetOps})
					if err != nil {
						return nil, err
					}

					if res.MatchedCount == 0 {
						return nil, ErrConflict
					}
				case WriteDelete:
					filter := conditionFilter(op.PK, op.SK, op.Condition)

					res, err := m.collection.DeleteOne(sc, filter)
					if err != nil {
						return nil, err
					}

					if res.DeletedCount == 0 && op.Condition != nil {
						return nil, ErrConflict
					}
				}
			}

			return nil, nil
		})

		return err
	})
}

// IncrementWindow atomically increments the counter on a rate-limit/login-
// attempt bucket row, creating it (with a TTL) on first use. It backs C4's
// sliding-window quotas: the row is a plain store item keyed by the caller's
// RL#<scope>#<key> / WINDOW#<epochMinute> pattern, incremented conditionally
// rather than read-modify-written, so concurrent requests never race.
func (m *MongoStore) IncrementWindow(ctx context.Context, pk, sk string, ttl time.Time) (int64, error) {
	var count int64

	err := m.withRetry(ctx, func() error {
		filter := bson.M{"pk": pk, "sk": sk}
		update := bson.M{
			"$inc": bson.M{"count": 1},
			"$setOnInsert": bson.M{
				"pk": pk, "sk": sk, "type": "RateLimitWindow", "ttl": ttl,
			},
		}

		res := m.collection.FindOneAndUpdate(ctx, filter, update,
			options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After))

		var doc bson.M
		if err := res.Decode(&doc); err != nil {
			return err
		}

		count = toInt64(doc["count"])

		return nil
	})

	return count, err
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int32:
		return int64(n)
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

// Delete removes a single row, honoring an optional condition.
func (m *MongoStore) Delete(ctx context.Context, pk, sk string, cond *Condition) error {
	return m.withRetry(ctx, func() error {
		filter := conditionFilter(pk, sk, cond)

		res, err := m.collection.DeleteOne(ctx, filter)
		if err != nil {
			return err
		}

		if res.DeletedCount == 0 && cond != nil {
			return ErrConflict
		}

		return nil
	})
}
