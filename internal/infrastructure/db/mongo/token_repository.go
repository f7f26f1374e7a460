package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/checkin-system/users-api/internal/core/domain"
)

type TokenRepository struct {
	col *mongo.Collection
}

func NewTokenRepository(db *mongo.Database) *TokenRepository {
	return &TokenRepository{col: db.Collection(collectionTokens)}
}

type mongoToken struct {
	Key     string     `bson:"_id"`
	UserID  int64      `bson:"user_id"`
	Created time.Time  `bson:"created"`
	Expires *time.Time `bson:"expires,omitempty"`
}

func (d mongoToken) toDomain() *domain.Token {
	t := &domain.Token{Key: d.Key, UserID: d.UserID, Created: d.Created.UTC()}
	if d.Expires != nil {
		e := d.Expires.UTC()
		t.Expires = &e
	}
	return t
}

func (r *TokenRepository) FindByUser(ctx context.Context, userID int64) (*domain.Token, error) {
	return r.findOne(ctx, bson.M{"user_id": userID})
}

func (r *TokenRepository) FindByKey(ctx context.Context, key string) (*domain.Token, error) {
	return r.findOne(ctx, bson.M{"_id": key})
}

func (r *TokenRepository) findOne(ctx context.Context, filter bson.M) (*domain.Token, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoToken
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTokenNotFound
		}
		return nil, fmt.Errorf("find token: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *TokenRepository) Create(ctx context.Context, token *domain.Token) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoToken{Key: token.Key, UserID: token.UserID, Created: storeTime(token.Created)}
	if token.Expires != nil {
		e := storeTime(*token.Expires)
		doc.Expires = &e
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrTokenConflict
		}
		return fmt.Errorf("insert token: %w", err)
	}
	return nil
}

func (r *TokenRepository) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": key})
	if err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrTokenNotFound
	}
	return nil
}

func (r *TokenRepository) DeleteByUser(ctx context.Context, userID int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.DeleteMany(ctx, bson.M{"user_id": userID}); err != nil {
		return fmt.Errorf("delete token for user: %w", err)
	}
	return nil
}
