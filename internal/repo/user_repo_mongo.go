package repo

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"user-account-service/internal/domain"
	"user-account-service/pkg/utils"
)

var sortFields = map[domain.SortField]string{
	domain.SortName:      "name",
	domain.SortEmail:     "email",
	domain.SortCreatedAt: "created_at",
	domain.SortUpdatedAt: "updated_at",
	domain.SortID:        "_id",
}

type MongoUserRepo struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewMongoUserRepo(db *mongo.Database) *MongoUserRepo {
	return &MongoUserRepo{coll: db.Collection("users"), now: time.Now}
}

// EnsureIndexes creates the unique email index the duplicate check relies on.
func (r *MongoUserRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "session_token", Value: 1}}},
		{Keys: bson.D{{Key: "is_deleted", Value: 1}, {Key: "created_at", Value: 1}}},
	})
	return err
}

func (r *MongoUserRepo) findOne(ctx context.Context, filter bson.D) (*domain.User, error) {
	var u domain.User
	err := r.coll.FindOne(ctx, filter).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *MongoUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

func (r *MongoUserRepo) FindByID(ctx context.Context, id string, includeDeleted bool) (*domain.User, error) {
	filter := bson.D{{Key: "_id", Value: id}}
	if !includeDeleted {
		filter = append(filter, bson.E{Key: "is_deleted", Value: false})
	}
	return r.findOne(ctx, filter)
}

func (r *MongoUserRepo) FindByToken(ctx context.Context, token string) (*domain.User, error) {
	return r.findOne(ctx, bson.D{{Key: "session_token", Value: token}, {Key: "is_deleted", Value: false}})
}

func (r *MongoUserRepo) Create(ctx context.Context, u *domain.User) error {
	if u.ID == "" {
		u.ID = utils.NewID()
	}
	now := r.now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	if _, err := r.coll.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *MongoUserRepo) Save(ctx context.Context, u *domain.User) error {
	u.UpdatedAt = r.now().UTC()
	res, err := r.coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: u.ID}}, u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateEmail
		}
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MongoUserRepo) Query(ctx context.Context, q domain.Query) ([]domain.User, int64, error) {
	filter := listFilter(q.Search)
	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(listSort(q.SortBy)).
		SetSkip(int64(q.Skip)).
		SetLimit(int64(q.Limit)).
		SetProjection(bson.D{{Key: "password_hash", Value: 0}, {Key: "session_token", Value: 0}})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	users := []domain.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *MongoUserRepo) AggregateByEmailDomain(ctx context.Context) ([]domain.DomainCount, error) {
	cur, err := r.coll.Aggregate(ctx, domainPipeline())
	if err != nil {
		return nil, err
	}
	out := []domain.DomainCount{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func listFilter(search string) bson.D {
	filter := bson.D{{Key: "is_deleted", Value: false}}
	if s := strings.TrimSpace(search); s != "" {
		re := bson.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
		filter = append(filter, bson.E{Key: "$or", Value: bson.A{
			bson.D{{Key: "name", Value: re}},
			bson.D{{Key: "email", Value: re}},
		}})
	}
	return filter
}

func listSort(field domain.SortField) bson.D {
	if f, ok := sortFields[field]; ok && f != "_id" {
		return bson.D{{Key: f, Value: 1}, {Key: "_id", Value: 1}}
	}
	if field == domain.SortID {
		return bson.D{{Key: "_id", Value: 1}}
	}
	return bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}
}

func domainPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "is_deleted", Value: false}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{{Key: "$arrayElemAt", Value: bson.A{
				bson.D{{Key: "$split", Value: bson.A{"$email", "@"}}}, 1,
			}}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
}
