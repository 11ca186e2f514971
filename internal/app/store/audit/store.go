// internal/app/store/audit/store.go
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Event categories
const (
	CategoryAuth  = "auth"
	CategoryStaff = "staff"
)

// Auth event types
const (
	EventLoginSuccess     = "login_success"
	EventLoginFailed      = "login_failed"
	EventRegistered       = "registered"
	EventGoogleLogin      = "google_login"
	EventLogout           = "logout"
	EventSessionExpired   = "session_expired"
	EventPasswordResetReq = "password_reset_requested"
	EventSetupCompleted   = "setup_completed"
)

// Staff admin event types
const (
	EventStaffInvited            = "staff_invited"
	EventStaffPermissionsUpdated = "staff_permissions_updated"
	EventStaffDeleted            = "staff_deleted"
)

// Event is one audit record. Actor fields reference backend user IDs; the
// console has no user identifiers of its own.
type Event struct {
	ID        string    `bson:"_id"`
	Timestamp time.Time `bson:"timestamp"`

	Category  string `bson:"category"`
	EventType string `bson:"event_type"`

	ActorEmail string `bson:"actor_email,omitempty"`
	ActorID    int64  `bson:"actor_id,omitempty"`
	TargetID   int64  `bson:"target_id,omitempty"`

	IP        string `bson:"ip"`
	UserAgent string `bson:"user_agent,omitempty"`

	Success       bool   `bson:"success"`
	FailureReason string `bson:"failure_reason,omitempty"`

	Details map[string]string `bson:"details,omitempty"`
}

// Store persists audit events in MongoDB.
type Store struct {
	c *mongo.Collection
}

// New creates a Store over the audit_events collection.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("audit_events")}
}

// EnsureIndexes creates the indexes used by querying tools.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "timestamp", Value: -1}}},
		{Keys: bson.D{
			{Key: "category", Value: 1},
			{Key: "event_type", Value: 1},
			{Key: "timestamp", Value: -1},
		}},
		{Keys: bson.D{
			{Key: "actor_id", Value: 1},
			{Key: "timestamp", Value: -1},
		}},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Log records an audit event.
func (s *Store) Log(ctx context.Context, event Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, event)
	return err
}

// Query retrieves events matching the filter, most recent first.
type QueryFilter struct {
	Category  string
	EventType string
	ActorID   int64
	StartTime *time.Time
	EndTime   *time.Time
	Limit     int64
}

func (s *Store) Query(ctx context.Context, filter QueryFilter) ([]Event, error) {
	query := bson.M{}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.EventType != "" {
		query["event_type"] = filter.EventType
	}
	if filter.ActorID != 0 {
		query["actor_id"] = filter.ActorID
	}
	if filter.StartTime != nil || filter.EndTime != nil {
		timeQuery := bson.M{}
		if filter.StartTime != nil {
			timeQuery["$gte"] = *filter.StartTime
		}
		if filter.EndTime != nil {
			timeQuery["$lte"] = *filter.EndTime
		}
		query["timestamp"] = timeQuery
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit)

	cur, err := s.c.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var events []Event
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}
