package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/checkin-system/users-api/internal/core/domain"
)

type CheckInRepository struct {
	col   *mongo.Collection
	ids   *counters
	users *UserRepository
}

func NewCheckInRepository(db *mongo.Database, ids *counters, users *UserRepository) *CheckInRepository {
	return &CheckInRepository{col: db.Collection(collectionCheckIns), ids: ids, users: users}
}

type mongoCheckIn struct {
	ID          int64     `bson:"_id"`
	UserID      int64     `bson:"user_id"`
	CheckInTime time.Time `bson:"check_in_time"`
}

var newestFirst = bson.D{{Key: "check_in_time", Value: -1}, {Key: "_id", Value: -1}}

func (r *CheckInRepository) Create(ctx context.Context, checkIn *domain.CheckIn) (*domain.CheckIn, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	owner, err := r.users.FindByID(ctx, checkIn.UserID)
	if err != nil {
		return nil, err
	}
	id, err := r.ids.next(ctx, collectionCheckIns)
	if err != nil {
		return nil, err
	}

	doc := mongoCheckIn{ID: id, UserID: checkIn.UserID, CheckInTime: storeTime(checkIn.CheckInTime)}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert check-in: %w", err)
	}
	return &domain.CheckIn{ID: doc.ID, UserID: doc.UserID, User: owner, CheckInTime: doc.CheckInTime}, nil
}

func (r *CheckInRepository) FindByID(ctx context.Context, id int64) (*domain.CheckIn, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoCheckIn
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCheckInNotFound
		}
		return nil, fmt.Errorf("find check-in: %w", err)
	}
	out, err := r.attachUsers(ctx, []mongoCheckIn{doc})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

func (r *CheckInRepository) List(ctx context.Context) ([]*domain.CheckIn, error) {
	return r.find(ctx, bson.M{}, options.Find().SetSort(newestFirst))
}

func (r *CheckInRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.CheckIn, error) {
	return r.find(ctx, bson.M{"user_id": userID}, options.Find().SetSort(newestFirst))
}

func (r *CheckInRepository) LatestByUser(ctx context.Context, userID int64) (*domain.CheckIn, error) {
	out, err := r.find(ctx, bson.M{"user_id": userID}, options.Find().SetSort(newestFirst).SetLimit(1))
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, domain.ErrCheckInNotFound
	}
	return out[0], nil
}

func (r *CheckInRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domain.CheckIn, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find check-ins: %w", err)
	}
	var docs []mongoCheckIn
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode check-ins: %w", err)
	}
	return r.attachUsers(ctx, docs)
}

// attachUsers resolves the owners of docs with a single query.
func (r *CheckInRepository) attachUsers(ctx context.Context, docs []mongoCheckIn) ([]*domain.CheckIn, error) {
	seen := make(map[int64]struct{}, len(docs))
	ids := make([]int64, 0, len(docs))
	for _, d := range docs {
		if _, ok := seen[d.UserID]; !ok {
			seen[d.UserID] = struct{}{}
			ids = append(ids, d.UserID)
		}
	}
	owners, err := r.users.findMany(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]*domain.CheckIn, 0, len(docs))
	for _, d := range docs {
		out = append(out, &domain.CheckIn{
			ID:          d.ID,
			UserID:      d.UserID,
			User:        owners[d.UserID],
			CheckInTime: d.CheckInTime.UTC(),
		})
	}
	return out, nil
}

func (r *CheckInRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete check-in: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrCheckInNotFound
	}
	return nil
}

func (r *CheckInRepository) DeleteByUser(ctx context.Context, userID int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.DeleteMany(ctx, bson.M{"user_id": userID}); err != nil {
		return fmt.Errorf("delete check-ins for user: %w", err)
	}
	return nil
}
