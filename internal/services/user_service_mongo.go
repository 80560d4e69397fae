package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/blog-be/internal/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// UsersCollection is the MongoDB collection holding user documents.
const UsersCollection = "users"

// MongoUserService is the document-store-backed credential store.
type MongoUserService struct {
	users *mongo.Collection
	*passwordHasher
}

// NewMongoUserService creates the store and ensures the unique email index exists.
func NewMongoUserService(ctx context.Context, db *mongo.Database, bcryptCost int) (*MongoUserService, error) {
	users := db.Collection(UsersCollection)
	_, err := users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create email index: %w", err)
	}
	return &MongoUserService{users: users, passwordHasher: newPasswordHasher(bcryptCost)}, nil
}

// Register creates a new user document, hashing their password.
func (s *MongoUserService) Register(ctx context.Context, name, email, password string, role models.Role) (models.PublicUser, error) {
	reg, err := validateRegistration(name, email, password, role)
	if err != nil {
		return models.PublicUser{}, err
	}

	n, err := s.users.CountDocuments(ctx, bson.M{"email": reg.email}, options.Count().SetLimit(1))
	if err != nil {
		return models.PublicUser{}, fmt.Errorf("failed to check email: %w", err)
	}
	if n > 0 {
		return models.PublicUser{}, ErrDuplicateEmail
	}

	hashed, err := s.hash(reg.password)
	if err != nil {
		return models.PublicUser{}, err
	}

	user := models.User{
		ID:           uuid.New().String(),
		Name:         reg.name,
		Email:        reg.email,
		PasswordHash: hashed,
		Role:         reg.role,
		// Mongo stores milliseconds.
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}

	if _, err := s.users.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.PublicUser{}, ErrDuplicateEmail
		}
		return models.PublicUser{}, fmt.Errorf("failed to insert user: %w", err)
	}

	return user.Public(), nil
}

// FindByEmailWithCredential retrieves a user by email, including the password hash.
func (s *MongoUserService) FindByEmailWithCredential(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := s.users.FindOne(ctx, bson.M{"email": normalizeEmail(email)}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

// FindByID retrieves a user by ID. The hash is excluded by the projection.
func (s *MongoUserService) FindByID(ctx context.Context, id string) (models.PublicUser, error) {
	var user models.User
	opts := options.FindOne().SetProjection(bson.M{"password_hash": 0})
	err := s.users.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.PublicUser{}, ErrUserNotFound
		}
		return models.PublicUser{}, err
	}
	return user.Public(), nil
}

// Authenticate verifies a user's credentials.
func (s *MongoUserService) Authenticate(ctx context.Context, email, password string) (models.PublicUser, error) {
	return authenticate(ctx, s, s.passwordHasher, email, password)
}
