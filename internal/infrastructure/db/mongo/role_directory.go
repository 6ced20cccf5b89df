package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fieldsales/visit-tracker/internal/core/domain"
)

const collectionUserRoles = "user_roles"

// RoleDirectory stores role assignments in the user_roles collection.
type RoleDirectory struct {
	col *mongo.Collection
	log zerolog.Logger
}

func NewRoleDirectory(db *mongo.Database, log zerolog.Logger) *RoleDirectory {
	return &RoleDirectory{col: db.Collection(collectionUserRoles), log: log}
}

type roleDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    string             `bson:"userId"`
	Role      string             `bson:"role"`
	IsActive  bool               `bson:"isActive"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

// FetchActiveRole returns the newest active assignment of actorID. No active
// assignment is RoleNone with a nil error; driver failures are LookupErrors.
func (r *RoleDirectory) FetchActiveRole(ctx context.Context, actorID string) (domain.Role, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	var doc roleDocument
	err := r.col.FindOne(ctx, bson.M{"userId": actorID, "isActive": true}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.RoleNone, nil
		}
		return domain.RoleNone, domain.NewLookupError("fetch_active_role", err)
	}

	role, err := domain.ParseRole(doc.Role)
	if err != nil {
		r.log.Warn().Err(err).Str("actor_id", actorID).Msg("stored role is not recognised, treating as no role")
		return domain.RoleNone, nil
	}
	return role, nil
}

// AssignRole deactivates every assignment of actorID and inserts a new active
// one. The two writes are not atomic: a failed insert leaves the actor with
// no active role and is reported as false.
func (r *RoleDirectory) AssignRole(ctx context.Context, actorID string, role domain.Role) bool {
	if !role.Valid() {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := time.Now().UTC()
	_, err := r.col.UpdateMany(ctx,
		bson.M{"userId": actorID, "isActive": true},
		bson.M{"$set": bson.M{"isActive": false, "updated_at": now}},
	)
	if err != nil {
		r.log.Error().Err(err).Str("actor_id", actorID).Msg("deactivate role assignments failed")
		return false
	}

	_, err = r.col.InsertOne(ctx, roleDocument{
		UserID:    actorID,
		Role:      role.String(),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		r.log.Error().Err(err).Str("actor_id", actorID).Str("role", role.String()).Msg("insert role assignment failed, actor left without role")
		return false
	}
	return true
}

// ListActive returns every active assignment, oldest first.
func (r *RoleDirectory) ListActive(ctx context.Context) ([]domain.RoleAssignment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"isActive": true}, opts)
	if err != nil {
		return nil, domain.NewLookupError("list_active_roles", err)
	}
	defer cur.Close(ctx)

	var docs []roleDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, domain.NewLookupError("list_active_roles", err)
	}

	out := make([]domain.RoleAssignment, 0, len(docs))
	for _, d := range docs {
		role, err := domain.ParseRole(d.Role)
		if err != nil {
			r.log.Warn().Err(err).Str("actor_id", d.UserID).Msg("skipping assignment with unknown role")
			continue
		}
		out = append(out, domain.RoleAssignment{
			ID:        d.ID.Hex(),
			ActorID:   d.UserID,
			Role:      role,
			IsActive:  d.IsActive,
			CreatedAt: d.CreatedAt,
			UpdatedAt: d.UpdatedAt,
		})
	}
	return out, nil
}

// EnsureIndexes creates the indexes used by the lookups above.
func (r *RoleDirectory) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "isActive", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "isActive", Value: 1}, {Key: "created_at", Value: 1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
