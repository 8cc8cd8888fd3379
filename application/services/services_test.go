package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"scentbase-backend/application/ports"
	"scentbase-backend/domain/community"
	"scentbase-backend/pkg/auth"
	apperrors "scentbase-backend/pkg/errors"
)

func newPolicy() *auth.OwnershipPolicy {
	return auth.NewOwnershipPolicy()
}

// memStore is an in-memory DocumentStore recording atomic operations
type memStore struct {
	mu   sync.Mutex
	docs map[string]map[string]map[string]interface{} // collection -> id -> fields

	increments []atomicOp
	arrayAdds  []atomicOp
	arrayDrops []atomicOp
	nextID     int
}

type atomicOp struct {
	collection string
	id         string
	field      string
	value      string
	delta      int
}

func newMemStore() *memStore {
	return &memStore{docs: make(map[string]map[string]map[string]interface{})}
}

func (s *memStore) put(collection, id string, fields map[string]interface{}) {
	if s.docs[collection] == nil {
		s.docs[collection] = make(map[string]map[string]interface{})
	}
	s.docs[collection][id] = fields
}

func (s *memStore) StreamAll(ctx context.Context, collection string) ([]ports.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs := make([]ports.Document, 0, len(s.docs[collection]))
	for id, fields := range s.docs[collection] {
		docs = append(docs, ports.Document{ID: id, Fields: fields})
	}
	return docs, nil
}

func (s *memStore) GetByID(ctx context.Context, collection, id string) (map[string]interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fields, ok := s.docs[collection][id]
	if !ok {
		return nil, apperrors.NewNotFoundError(collection + " document")
	}
	return fields, nil
}

func (s *memStore) GetByIDs(ctx context.Context, collection string, ids []string) (map[string]map[string]interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	found := make(map[string]map[string]interface{})
	for _, id := range ids {
		if fields, ok := s.docs[collection][id]; ok {
			found[id] = fields
		}
	}
	return found, nil
}

func (s *memStore) Query(ctx context.Context, collection, field string, value interface{}) ([]ports.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var docs []ports.Document
	for id, fields := range s.docs[collection] {
		if fields[field] == value {
			docs = append(docs, ports.Document{ID: id, Fields: fields})
		}
	}
	return docs, nil
}

func (s *memStore) Create(ctx context.Context, collection string, fields map[string]interface{}) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := string(rune('a' + s.nextID - 1))
	s.put(collection, id, fields)
	return id, nil
}

func (s *memStore) Set(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(collection, id, fields)
	return nil
}

func (s *memStore) Update(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[collection][id]
	if !ok {
		return apperrors.NewNotFoundError(collection + " document")
	}
	for key, value := range fields {
		doc[key] = value
	}
	return nil
}

func (s *memStore) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs[collection], id)
	return nil
}

func (s *memStore) AtomicIncrement(ctx context.Context, collection, id, field string, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.increments = append(s.increments, atomicOp{collection: collection, id: id, field: field, delta: delta})
	return nil
}

func (s *memStore) AtomicArrayAdd(ctx context.Context, collection, id, field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.arrayAdds = append(s.arrayAdds, atomicOp{collection: collection, id: id, field: field, value: value})
	return nil
}

func (s *memStore) AtomicArrayRemove(ctx context.Context, collection, id, field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.arrayDrops = append(s.arrayDrops, atomicOp{collection: collection, id: id, field: field, value: value})
	return nil
}

func TestReviewServiceCreateDefaults(t *testing.T) {
	store := newMemStore()
	svc := NewReviewService(store, zap.NewNop())

	id, err := svc.Create(context.Background(), CreateReviewInput{
		FragranceID: "f1",
		UserID:      "u1",
		UserName:    "nose",
		Rating:      community.ReviewRating{Overall: 4.5},
		Content:     "Projection for days.",
	})
	require.NoError(t, err)

	fields, err := store.GetByID(context.Background(), "reviews", id)
	require.NoError(t, err)
	assert.Equal(t, 0, fields["upvotes"])
	assert.NotEmpty(t, fields["createdAt"])
	_, hasAvatar := fields["userAvatar"]
	assert.False(t, hasAvatar, "absent optional fields stay absent")
	_, hasWearContext := fields["wearContext"]
	assert.False(t, hasWearContext)
}

func TestReviewServiceUpdateFiltersAndFlattens(t *testing.T) {
	store := newMemStore()
	store.put("reviews", "r1", map[string]interface{}{"content": "old", "userId": "u1"})
	svc := NewReviewService(store, zap.NewNop())

	err := svc.Update(context.Background(), "r1", map[string]interface{}{
		"content": "new",
		"rating":  map[string]interface{}{"overall": 5.0},
		"userId":  "intruder", // not an updatable field
	})
	require.NoError(t, err)

	fields, err := store.GetByID(context.Background(), "reviews", "r1")
	require.NoError(t, err)
	assert.Equal(t, "new", fields["content"])
	assert.Equal(t, "u1", fields["userId"], "identity fields are not client-writable")
	assert.Equal(t, 5.0, fields["rating.overall"], "nested sub-objects merge via dotted paths")
}

func TestReviewServiceUpvote(t *testing.T) {
	store := newMemStore()
	svc := NewReviewService(store, zap.NewNop())

	require.NoError(t, svc.Upvote(context.Background(), "r1"))

	require.Len(t, store.increments, 1)
	assert.Equal(t, atomicOp{collection: "reviews", id: "r1", field: "upvotes", delta: 1}, store.increments[0])
}

func TestUserServiceCollectionTabs(t *testing.T) {
	store := newMemStore()
	svc := NewUserService(store, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, svc.AddToCollection(ctx, "u1", "owned", "f1"))
	require.NoError(t, svc.RemoveFromCollection(ctx, "u1", "wishlist", "f2"))

	require.Len(t, store.arrayAdds, 1)
	assert.Equal(t, "collection.owned", store.arrayAdds[0].field)
	require.Len(t, store.arrayDrops, 1)
	assert.Equal(t, "collection.wishlist", store.arrayDrops[0].field)
}

func TestUserServiceRejectsUnknownTab(t *testing.T) {
	store := newMemStore()
	svc := NewUserService(store, zap.NewNop())
	ctx := context.Background()

	err := svc.AddToCollection(ctx, "u1", "favourites", "f1")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	assert.Empty(t, store.arrayAdds, "invalid tabs never reach the store")

	err = svc.RemoveFromCollection(ctx, "u1", "", "f1")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}

func TestUserServiceGetByEmail(t *testing.T) {
	store := newMemStore()
	store.put("users", "u1", map[string]interface{}{"username": "nose", "email": "nose@example.com"})
	svc := NewUserService(store, zap.NewNop())

	user, err := svc.GetByEmail(context.Background(), "nose@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)

	_, err = svc.GetByEmail(context.Background(), "ghost@example.com")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestDiscussionServiceListNewestFirst(t *testing.T) {
	store := newMemStore()
	store.put("discussions", "d1", map[string]interface{}{"title": "old", "createdAt": "2026-01-01T00:00:00Z"})
	store.put("discussions", "d2", map[string]interface{}{"title": "new", "createdAt": "2026-06-01T00:00:00Z"})
	store.put("discussions", "d3", map[string]interface{}{"title": "news", "category": "News", "createdAt": "2026-03-01T00:00:00Z"})
	svc := NewDiscussionService(store, newPolicy(), zap.NewNop())

	all, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "d2", all[0].ID)
	assert.Equal(t, "d3", all[1].ID)
	assert.Equal(t, "d1", all[2].ID)

	news, err := svc.List(context.Background(), "News")
	require.NoError(t, err)
	require.Len(t, news, 1)
	assert.Equal(t, "d3", news[0].ID)

	// Unknown categories are ignored rather than rejected.
	unknown, err := svc.List(context.Background(), "Gossip")
	require.NoError(t, err)
	assert.Len(t, unknown, 3)
}

func TestDiscussionServiceAddReplyBumpsCount(t *testing.T) {
	store := newMemStore()
	store.put("discussions", "d1", map[string]interface{}{"title": "thread", "authorId": "u1"})
	svc := NewDiscussionService(store, newPolicy(), zap.NewNop())

	reply, err := svc.AddReply(context.Background(), "d1", CreateReplyInput{
		Body:       "agreed",
		AuthorID:   "u2",
		AuthorName: "other",
	})
	require.NoError(t, err)
	assert.Equal(t, "d1", reply.DiscussionID)

	require.Len(t, store.increments, 1)
	assert.Equal(t, "commentCount", store.increments[0].field)

	// Replying to a missing thread fails before any write.
	_, err = svc.AddReply(context.Background(), "ghost", CreateReplyInput{Body: "x", AuthorID: "u2"})
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestDiscussionServiceDeleteOwnership(t *testing.T) {
	store := newMemStore()
	store.put("discussions", "d1", map[string]interface{}{"title": "thread", "authorId": "u1"})
	svc := NewDiscussionService(store, newPolicy(), zap.NewNop())
	ctx := context.Background()

	err := svc.Delete(ctx, "u2", "d1")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeForbidden))

	require.NoError(t, svc.Delete(ctx, "u1", "d1"))
	_, err = store.GetByID(ctx, "discussions", "d1")
	assert.True(t, apperrors.IsNotFound(err))
}
