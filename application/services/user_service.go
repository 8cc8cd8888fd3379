package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"scentbase-backend/application/ports"
	"scentbase-backend/domain/community"
	apperrors "scentbase-backend/pkg/errors"
	"scentbase-backend/pkg/utils"
)

const usersCollection = "users"

// UserService handles user profiles and their fragrance collections
type UserService struct {
	store  ports.DocumentStore
	logger *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(store ports.DocumentStore, logger *zap.Logger) *UserService {
	return &UserService{
		store:  store,
		logger: logger,
	}
}

// GetByID returns a single user profile
func (s *UserService) GetByID(ctx context.Context, id string) (community.User, error) {
	fields, err := s.store.GetByID(ctx, usersCollection, id)
	if err != nil {
		return community.User{}, err
	}
	return community.UserFromDocument(id, fields), nil
}

// GetByEmail returns the user registered under the given email address
func (s *UserService) GetByEmail(ctx context.Context, email string) (community.User, error) {
	docs, err := s.store.Query(ctx, usersCollection, "email", email)
	if err != nil {
		return community.User{}, fmt.Errorf("query users by email: %w", err)
	}
	if len(docs) == 0 {
		return community.User{}, apperrors.NewNotFoundError("user")
	}
	return community.UserFromDocument(docs[0].ID, docs[0].Fields), nil
}

// CreateWithID stores a new profile under a caller-chosen ID. The profile
// starts with empty collection tabs and a join date of today.
func (s *UserService) CreateWithID(ctx context.Context, id, username, email string) (community.User, error) {
	fields := map[string]interface{}{
		"username":  username,
		"email":     email,
		"createdAt": utils.NowRFC3339(),
		"collection": map[string]interface{}{
			"owned":    []string{},
			"sampled":  []string{},
			"wishlist": []string{},
		},
		"preferences": map[string]interface{}{
			"likedNotes":              []string{},
			"avoidedNotes":            []string{},
			"preferredConcentrations": []string{},
		},
	}

	if err := s.store.Set(ctx, usersCollection, id, fields); err != nil {
		return community.User{}, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user created",
		zap.String("userID", id),
		zap.String("username", username),
	)
	return community.UserFromDocument(id, fields), nil
}

// userTopLevelFields are the scalar keys a profile update may touch
var userTopLevelFields = map[string]bool{
	"username": true,
	"avatar":   true,
	"bio":      true,
}

// Update partial-updates a profile. The preferences sub-document merges per
// key; collection tabs are only mutable through the atomic add/remove calls.
func (s *UserService) Update(ctx context.Context, id string, data map[string]interface{}) error {
	update := make(map[string]interface{})
	for key, value := range data {
		switch {
		case userTopLevelFields[key]:
			update[key] = value
		case key == "preferences":
			if nested, ok := value.(map[string]interface{}); ok {
				for subKey, subVal := range nested {
					update["preferences."+subKey] = subVal
				}
			}
		}
	}

	if len(update) == 0 {
		return nil
	}
	return s.store.Update(ctx, usersCollection, id, update)
}

// Delete removes a user profile
func (s *UserService) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, usersCollection, id)
}

func validateCollectionTab(tab string) error {
	if !community.CollectionTabs[tab] {
		return apperrors.NewValidationError(fmt.Sprintf("invalid collection tab: %q", tab))
	}
	return nil
}

// AddToCollection atomically adds a fragrance ID to one of the user's
// collection tabs. Adding an ID already present is a no-op.
func (s *UserService) AddToCollection(ctx context.Context, userID, tab, fragranceID string) error {
	if err := validateCollectionTab(tab); err != nil {
		return err
	}
	return s.store.AtomicArrayAdd(ctx, usersCollection, userID, "collection."+tab, fragranceID)
}

// RemoveFromCollection atomically removes a fragrance ID from one of the
// user's collection tabs. Removing an absent ID is a no-op.
func (s *UserService) RemoveFromCollection(ctx context.Context, userID, tab, fragranceID string) error {
	if err := validateCollectionTab(tab); err != nil {
		return err
	}
	return s.store.AtomicArrayRemove(ctx, usersCollection, userID, "collection."+tab, fragranceID)
}
