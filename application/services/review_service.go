// Package services holds the per-entity operations for the mutable,
// user-authored collections. They talk straight to the document store and
// are independent of the catalogue cache's refill cycle.
package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"scentbase-backend/application/ports"
	"scentbase-backend/domain/community"
	"scentbase-backend/pkg/utils"
)

const reviewsCollection = "reviews"

// ReviewService handles CRUD and targeted lookups for reviews
type ReviewService struct {
	store  ports.DocumentStore
	logger *zap.Logger
}

// NewReviewService creates a new review service
func NewReviewService(store ports.DocumentStore, logger *zap.Logger) *ReviewService {
	return &ReviewService{
		store:  store,
		logger: logger,
	}
}

// List returns every review
func (s *ReviewService) List(ctx context.Context) ([]community.Review, error) {
	docs, err := s.store.StreamAll(ctx, reviewsCollection)
	if err != nil {
		return nil, fmt.Errorf("stream reviews: %w", err)
	}

	reviews := make([]community.Review, 0, len(docs))
	for _, doc := range docs {
		reviews = append(reviews, community.ReviewFromDocument(doc.ID, doc.Fields))
	}
	return reviews, nil
}

// GetByID returns a single review
func (s *ReviewService) GetByID(ctx context.Context, id string) (community.Review, error) {
	fields, err := s.store.GetByID(ctx, reviewsCollection, id)
	if err != nil {
		return community.Review{}, err
	}
	return community.ReviewFromDocument(id, fields), nil
}

// GetByFragrance returns all reviews for a given fragrance
func (s *ReviewService) GetByFragrance(ctx context.Context, fragranceID string) ([]community.Review, error) {
	docs, err := s.store.Query(ctx, reviewsCollection, "fragranceId", fragranceID)
	if err != nil {
		return nil, fmt.Errorf("query reviews by fragrance: %w", err)
	}

	reviews := make([]community.Review, 0, len(docs))
	for _, doc := range docs {
		reviews = append(reviews, community.ReviewFromDocument(doc.ID, doc.Fields))
	}
	return reviews, nil
}

// GetByUser returns all reviews written by a given user
func (s *ReviewService) GetByUser(ctx context.Context, userID string) ([]community.Review, error) {
	docs, err := s.store.Query(ctx, reviewsCollection, "userId", userID)
	if err != nil {
		return nil, fmt.Errorf("query reviews by user: %w", err)
	}

	reviews := make([]community.Review, 0, len(docs))
	for _, doc := range docs {
		reviews = append(reviews, community.ReviewFromDocument(doc.ID, doc.Fields))
	}
	return reviews, nil
}

// CreateReviewInput carries the fields a new review needs
type CreateReviewInput struct {
	FragranceID string
	UserID      string
	UserName    string
	UserAvatar  *string
	Rating      community.ReviewRating
	Content     string
	WearContext *community.WearContext
	Impressions *community.Impressions
}

// Create stores a new review and returns its document ID. Upvotes start at
// zero and createdAt is stamped with today's date.
func (s *ReviewService) Create(ctx context.Context, input CreateReviewInput) (string, error) {
	fields := map[string]interface{}{
		"fragranceId": input.FragranceID,
		"userId":      input.UserID,
		"userName":    input.UserName,
		"rating": map[string]interface{}{
			"overall":   input.Rating.Overall,
			"longevity": input.Rating.Longevity,
			"sillage":   input.Rating.Sillage,
			"value":     input.Rating.Value,
		},
		"content":   input.Content,
		"upvotes":   0,
		"createdAt": utils.TodayISO(),
	}

	if input.UserAvatar != nil {
		fields["userAvatar"] = *input.UserAvatar
	}
	if input.WearContext != nil {
		fields["wearContext"] = map[string]interface{}{
			"sprays":   input.WearContext.Sprays,
			"weather":  input.WearContext.Weather,
			"occasion": input.WearContext.Occasion,
		}
	}
	if input.Impressions != nil {
		fields["impressions"] = map[string]interface{}{
			"opening":    input.Impressions.Opening,
			"midDrydown": input.Impressions.MidDrydown,
			"dryDown":    input.Impressions.DryDown,
		}
	}

	id, err := s.store.Create(ctx, reviewsCollection, fields)
	if err != nil {
		return "", fmt.Errorf("create review: %w", err)
	}

	s.logger.Info("review created",
		zap.String("reviewID", id),
		zap.String("fragranceID", input.FragranceID),
		zap.String("userID", input.UserID),
	)
	return id, nil
}

// reviewTopLevelFields are the scalar keys a partial update may touch
var reviewTopLevelFields = map[string]bool{
	"content":    true,
	"userName":   true,
	"userAvatar": true,
}

// reviewNestedFields are the sub-documents merged key-by-key on update
var reviewNestedFields = map[string]bool{
	"rating":      true,
	"wearContext": true,
	"impressions": true,
}

// Update partial-updates a review. Nested sub-objects merge per key using
// dotted paths so sibling keys the caller didn't send survive.
func (s *ReviewService) Update(ctx context.Context, id string, data map[string]interface{}) error {
	update := make(map[string]interface{})
	for key, value := range data {
		switch {
		case reviewTopLevelFields[key]:
			update[key] = value
		case reviewNestedFields[key]:
			if nested, ok := value.(map[string]interface{}); ok {
				for subKey, subVal := range nested {
					update[key+"."+subKey] = subVal
				}
			}
		}
	}

	if len(update) == 0 {
		return nil
	}
	return s.store.Update(ctx, reviewsCollection, id, update)
}

// Delete removes a review
func (s *ReviewService) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, reviewsCollection, id)
}

// Upvote atomically increments the upvote count by one
func (s *ReviewService) Upvote(ctx context.Context, id string) error {
	return s.store.AtomicIncrement(ctx, reviewsCollection, id, "upvotes", 1)
}
