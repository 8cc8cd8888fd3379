package services

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"scentbase-backend/application/ports"
	"scentbase-backend/domain/community"
	"scentbase-backend/pkg/auth"
	apperrors "scentbase-backend/pkg/errors"
	"scentbase-backend/pkg/utils"
)

const (
	discussionsCollection = "discussions"
	repliesCollection     = "replies"
)

// DiscussionService handles community threads and their replies
type DiscussionService struct {
	store  ports.DocumentStore
	policy *auth.OwnershipPolicy
	logger *zap.Logger
}

// NewDiscussionService creates a new discussion service
func NewDiscussionService(store ports.DocumentStore, policy *auth.OwnershipPolicy, logger *zap.Logger) *DiscussionService {
	return &DiscussionService{
		store:  store,
		policy: policy,
		logger: logger,
	}
}

// List returns discussions newest-first, optionally restricted to one
// category. An unknown category is ignored rather than rejected.
func (s *DiscussionService) List(ctx context.Context, category string) ([]community.Discussion, error) {
	docs, err := s.store.StreamAll(ctx, discussionsCollection)
	if err != nil {
		return nil, fmt.Errorf("stream discussions: %w", err)
	}

	discussions := make([]community.Discussion, 0, len(docs))
	for _, doc := range docs {
		d := community.DiscussionFromDocument(doc.ID, doc.Fields)
		if community.DiscussionCategories[category] && d.Category != category {
			continue
		}
		discussions = append(discussions, d)
	}

	sort.SliceStable(discussions, func(i, j int) bool {
		return discussions[i].CreatedAt > discussions[j].CreatedAt
	})
	return discussions, nil
}

// GetByID returns a single discussion
func (s *DiscussionService) GetByID(ctx context.Context, id string) (community.Discussion, error) {
	fields, err := s.store.GetByID(ctx, discussionsCollection, id)
	if err != nil {
		return community.Discussion{}, err
	}
	return community.DiscussionFromDocument(id, fields), nil
}

// GetReplies returns a discussion's replies oldest-first
func (s *DiscussionService) GetReplies(ctx context.Context, discussionID string) ([]community.Reply, error) {
	docs, err := s.store.Query(ctx, repliesCollection, "discussionId", discussionID)
	if err != nil {
		return nil, fmt.Errorf("query replies: %w", err)
	}

	replies := make([]community.Reply, 0, len(docs))
	for _, doc := range docs {
		replies = append(replies, community.ReplyFromDocument(doc.ID, doc.Fields))
	}

	sort.SliceStable(replies, func(i, j int) bool {
		return replies[i].CreatedAt < replies[j].CreatedAt
	})
	return replies, nil
}

// CreateDiscussionInput carries the fields a new thread needs
type CreateDiscussionInput struct {
	Title      string
	Body       string
	Category   string
	AuthorID   string
	AuthorName string
}

// Create stores a new discussion thread. Unknown categories fall back to
// General; the comment count starts at zero.
func (s *DiscussionService) Create(ctx context.Context, input CreateDiscussionInput) (community.Discussion, error) {
	category := input.Category
	if !community.DiscussionCategories[category] {
		category = "General"
	}

	fields := map[string]interface{}{
		"title":        input.Title,
		"body":         input.Body,
		"category":     category,
		"authorId":     input.AuthorID,
		"authorName":   input.AuthorName,
		"commentCount": 0,
		"createdAt":    utils.NowRFC3339(),
	}

	id, err := s.store.Create(ctx, discussionsCollection, fields)
	if err != nil {
		return community.Discussion{}, fmt.Errorf("create discussion: %w", err)
	}

	s.logger.Info("discussion created",
		zap.String("discussionID", id),
		zap.String("category", category),
		zap.String("authorID", input.AuthorID),
	)
	return community.DiscussionFromDocument(id, fields), nil
}

// CreateReplyInput carries the fields a new reply needs
type CreateReplyInput struct {
	Body       string
	AuthorID   string
	AuthorName string
}

// AddReply stores a reply under the given discussion and bumps the thread's
// comment count. The parent must exist.
func (s *DiscussionService) AddReply(ctx context.Context, discussionID string, input CreateReplyInput) (community.Reply, error) {
	if _, err := s.store.GetByID(ctx, discussionsCollection, discussionID); err != nil {
		return community.Reply{}, err
	}

	fields := map[string]interface{}{
		"discussionId": discussionID,
		"body":         input.Body,
		"authorId":     input.AuthorID,
		"authorName":   input.AuthorName,
		"createdAt":    utils.NowRFC3339(),
	}

	id, err := s.store.Create(ctx, repliesCollection, fields)
	if err != nil {
		return community.Reply{}, fmt.Errorf("create reply: %w", err)
	}

	if err := s.store.AtomicIncrement(ctx, discussionsCollection, discussionID, "commentCount", 1); err != nil {
		// The reply is already stored; a drifted counter is tolerable.
		s.logger.Warn("comment count increment failed",
			zap.String("discussionID", discussionID),
			zap.Error(err),
		)
	}

	return community.ReplyFromDocument(id, fields), nil
}

// Delete removes a discussion. Only its author may delete it.
func (s *DiscussionService) Delete(ctx context.Context, actorID, discussionID string) error {
	discussion, err := s.GetByID(ctx, discussionID)
	if err != nil {
		return err
	}
	if !s.policy.CanModify(actorID, discussion.AuthorID) {
		return apperrors.NewForbiddenError("only the author can delete a discussion")
	}
	return s.store.Delete(ctx, discussionsCollection, discussionID)
}
