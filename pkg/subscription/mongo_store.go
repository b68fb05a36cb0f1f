package subscription

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Collection names used by MongoStore.
const (
	MongoSubscriptionsCollection = "subscriptions"
	MongoEventsCollection        = "subscription_events"
)

// mongoSubscription is the stored document. Event timestamps are kept as
// unix nanoseconds because BSON dates only carry milliseconds.
type mongoSubscription struct {
	ProviderSubID    string     `bson:"_id"`
	AccountID        string     `bson:"account_id"`
	Provider         string     `bson:"provider"`
	ProductID        string     `bson:"product_id"`
	VariantID        string     `bson:"variant_id"`
	Status           string     `bson:"status"`
	CurrentPeriodEnd *time.Time `bson:"current_period_end,omitempty"`
	LastEventID      string     `bson:"last_event_id"`
	LastEventAtNS    int64      `bson:"last_event_at_ns"`
	CancelledAt      *time.Time `bson:"cancelled_at,omitempty"`
	CreatedAt        time.Time  `bson:"created_at"`
	UpdatedAt        time.Time  `bson:"updated_at"`
}

type mongoEvent struct {
	ID            string    `bson:"_id"`
	ProviderSubID string    `bson:"provider_sub_id"`
	AppliedAt     time.Time `bson:"applied_at"`
}

// MongoStore implements Store on MongoDB.
//
// The subscription document is the serialization point: Update filters on the
// previous revision, so of two concurrent writers only one matches. The event
// id is inserted after the write; a crash in between is caught on redelivery
// because the record already carries the event id.
type MongoStore struct {
	subs      *mongo.Collection
	events    *mongo.Collection
	opTimeout time.Duration
	retention time.Duration
}

// NewMongoStore creates a Mongo-backed ledger store in db. Zero durations
// fall back to 500ms and 30 days.
func NewMongoStore(db *mongo.Database, opTimeout, retention time.Duration) *MongoStore {
	if opTimeout <= 0 {
		opTimeout = 500 * time.Millisecond
	}
	if retention <= 0 {
		retention = 720 * time.Hour
	}
	return &MongoStore{
		subs:      db.Collection(MongoSubscriptionsCollection),
		events:    db.Collection(MongoEventsCollection),
		opTimeout: opTimeout,
		retention: retention,
	}
}

// EnsureIndexes creates the account lookup index and the TTL index that
// expires recorded event ids.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.subs.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "account_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	_, err = s.events.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "applied_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(int32(s.retention / time.Second)),
	})
	if err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, providerSubID string) (*Subscription, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	return s.findOne(s.subs.FindOne(ctx, bson.M{"_id": providerSubID}))
}

func (s *MongoStore) GetByAccount(ctx context.Context, accountID uuid.UUID) (*Subscription, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return s.findOne(s.subs.FindOne(ctx, bson.M{"account_id": accountID.String()}, opts))
}

func (s *MongoStore) EventApplied(ctx context.Context, eventID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	n, err := s.events.CountDocuments(ctx, bson.M{"_id": eventID}, options.Count().SetLimit(1))
	if err != nil {
		return false, errors.Join(ErrStoreUnavailable, err)
	}
	return n > 0, nil
}

func (s *MongoStore) Create(ctx context.Context, sub *Subscription) error {
	if err := sub.validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	if seen, err := s.eventSeen(ctx, sub.LastEventID); err != nil || seen {
		if err != nil {
			return err
		}
		return ErrDuplicateEvent
	}
	if _, err := s.subs.InsertOne(ctx, toMongo(sub)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConflict
		}
		return errors.Join(ErrStoreUnavailable, err)
	}
	return s.recordEvent(ctx, sub)
}

func (s *MongoStore) Update(ctx context.Context, sub *Subscription, prev Revision) error {
	if err := sub.validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	if seen, err := s.eventSeen(ctx, sub.LastEventID); err != nil || seen {
		if err != nil {
			return err
		}
		return ErrDuplicateEvent
	}

	filter := bson.M{
		"_id":              sub.ProviderSubID,
		"last_event_id":    prev.EventID,
		"last_event_at_ns": prev.At.UnixNano(),
	}
	res, err := s.subs.ReplaceOne(ctx, filter, toMongo(sub))
	if err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	if res.MatchedCount == 0 {
		return ErrConflict
	}
	return s.recordEvent(ctx, sub)
}

func (s *MongoStore) eventSeen(ctx context.Context, eventID string) (bool, error) {
	err := s.events.FindOne(ctx, bson.M{"_id": eventID}).Err()
	if err == nil {
		return true, nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	return false, errors.Join(ErrStoreUnavailable, err)
}

func (s *MongoStore) recordEvent(ctx context.Context, sub *Subscription) error {
	_, err := s.events.InsertOne(ctx, mongoEvent{
		ID:            sub.LastEventID,
		ProviderSubID: sub.ProviderSubID,
		AppliedAt:     sub.UpdatedAt,
	})
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

func (s *MongoStore) findOne(res *mongo.SingleResult) (*Subscription, error) {
	var doc mongoSubscription
	if err := res.Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, errors.Join(ErrStoreUnavailable, err)
	}
	return fromMongo(doc)
}

func toMongo(sub *Subscription) mongoSubscription {
	return mongoSubscription{
		ProviderSubID:    sub.ProviderSubID,
		AccountID:        sub.AccountID.String(),
		Provider:         sub.Provider,
		ProductID:        sub.ProductID,
		VariantID:        sub.VariantID,
		Status:           string(sub.Status),
		CurrentPeriodEnd: nullTime(sub.CurrentPeriodEnd),
		LastEventID:      sub.LastEventID,
		LastEventAtNS:    sub.LastEventAt.UnixNano(),
		CancelledAt:      sub.CancelledAt,
		CreatedAt:        sub.CreatedAt,
		UpdatedAt:        sub.UpdatedAt,
	}
}

func fromMongo(doc mongoSubscription) (*Subscription, error) {
	accountID, err := uuid.Parse(doc.AccountID)
	if err != nil {
		return nil, errors.Join(ErrInvalidSubscription, err)
	}
	sub := &Subscription{
		ProviderSubID: doc.ProviderSubID,
		AccountID:     accountID,
		Provider:      doc.Provider,
		ProductID:     doc.ProductID,
		VariantID:     doc.VariantID,
		Status:        Status(doc.Status),
		LastEventID:   doc.LastEventID,
		LastEventAt:   time.Unix(0, doc.LastEventAtNS).UTC(),
		CancelledAt:   doc.CancelledAt,
		CreatedAt:     doc.CreatedAt,
		UpdatedAt:     doc.UpdatedAt,
	}
	if doc.CurrentPeriodEnd != nil {
		sub.CurrentPeriodEnd = *doc.CurrentPeriodEnd
	}
	return sub, nil
}
