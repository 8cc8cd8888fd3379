// Package community holds the user-generated content entities: reviews,
// user profiles with their fragrance collections, and discussion threads.
package community

import "scentbase-backend/pkg/docfields"

// ReviewRating is the per-review score breakdown
type ReviewRating struct {
	Overall   float64 `json:"overall"`
	Longevity float64 `json:"longevity"`
	Sillage   float64 `json:"sillage"`
	Value     float64 `json:"value"`
}

// WearContext describes the conditions a review was written under
type WearContext struct {
	Sprays   int    `json:"sprays"`
	Weather  string `json:"weather"`
	Occasion string `json:"occasion"`
}

// Impressions captures stage-by-stage notes from the reviewer
type Impressions struct {
	Opening    string `json:"opening"`
	MidDrydown string `json:"midDrydown"`
	DryDown    string `json:"dryDown"`
}

// Review is a community wear report for one fragrance
type Review struct {
	ID          string       `json:"id"`
	FragranceID string       `json:"fragranceId"`
	UserID      string       `json:"userId"`
	UserName    string       `json:"userName"`
	UserAvatar  *string      `json:"userAvatar"`
	Rating      ReviewRating `json:"rating"`
	Content     string       `json:"content"`
	WearContext *WearContext `json:"wearContext"`
	Impressions *Impressions `json:"impressions"`
	Upvotes     int          `json:"upvotes"`
	CreatedAt   string       `json:"createdAt"`
}

// Preferences are a user's note and concentration tastes
type Preferences struct {
	LikedNotes              []string `json:"likedNotes"`
	AvoidedNotes            []string `json:"avoidedNotes"`
	PreferredConcentrations []string `json:"preferredConcentrations"`
}

// CollectionTabs are the valid user-collection tab names
var CollectionTabs = map[string]bool{
	"owned":    true,
	"sampled":  true,
	"wishlist": true,
}

// Collection groups a user's fragrances by ownership status
type Collection struct {
	Owned    []string `json:"owned"`
	Sampled  []string `json:"sampled"`
	Wishlist []string `json:"wishlist"`
}

// User is a community member profile
type User struct {
	ID          string      `json:"id"`
	Username    string      `json:"username"`
	Email       string      `json:"email"`
	Avatar      *string     `json:"avatar"`
	Preferences Preferences `json:"preferences"`
	Collection  Collection  `json:"collection"`
	CreatedAt   string      `json:"createdAt"`
}

// DiscussionCategories are the valid thread categories
var DiscussionCategories = map[string]bool{
	"Recommendation": true,
	"Comparison":     true,
	"General":        true,
	"News":           true,
}

// Discussion is a community thread
type Discussion struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Body         string  `json:"body"`
	Category     string  `json:"category"`
	AuthorID     string  `json:"authorId"`
	AuthorName   string  `json:"authorName"`
	AuthorAvatar *string `json:"authorAvatar"`
	CommentCount int     `json:"commentCount"`
	CreatedAt    string  `json:"createdAt"`
}

// Reply is a single answer inside a discussion thread
type Reply struct {
	ID           string  `json:"id"`
	DiscussionID string  `json:"discussionId"`
	Body         string  `json:"body"`
	AuthorID     string  `json:"authorId"`
	AuthorName   string  `json:"authorName"`
	AuthorAvatar *string `json:"authorAvatar"`
	CreatedAt    string  `json:"createdAt"`
}

// ReviewFromDocument builds a Review from a stored document
func ReviewFromDocument(id string, fields map[string]interface{}) Review {
	rawRating := docfields.Map(fields, "rating")

	r := Review{
		ID:          id,
		FragranceID: docfields.String(fields, "fragranceId"),
		UserID:      docfields.String(fields, "userId"),
		UserName:    docfields.String(fields, "userName"),
		UserAvatar:  docfields.OptString(fields, "userAvatar"),
		Rating: ReviewRating{
			Overall:   docfields.Float(rawRating, "overall"),
			Longevity: docfields.Float(rawRating, "longevity"),
			Sillage:   docfields.Float(rawRating, "sillage"),
			Value:     docfields.Float(rawRating, "value"),
		},
		Content:   docfields.String(fields, "content"),
		Upvotes:   docfields.Int(fields, "upvotes"),
		CreatedAt: docfields.String(fields, "createdAt"),
	}

	if rawWC := docfields.Map(fields, "wearContext"); rawWC != nil {
		r.WearContext = &WearContext{
			Sprays:   docfields.Int(rawWC, "sprays"),
			Weather:  docfields.String(rawWC, "weather"),
			Occasion: docfields.String(rawWC, "occasion"),
		}
	}

	if rawImp := docfields.Map(fields, "impressions"); rawImp != nil {
		r.Impressions = &Impressions{
			Opening:    docfields.String(rawImp, "opening"),
			MidDrydown: docfields.String(rawImp, "midDrydown"),
			DryDown:    docfields.String(rawImp, "dryDown"),
		}
	}

	return r
}

// UserFromDocument builds a User from a stored document
func UserFromDocument(id string, fields map[string]interface{}) User {
	u := User{
		ID:        id,
		Username:  docfields.String(fields, "username"),
		Email:     docfields.String(fields, "email"),
		Avatar:    docfields.OptString(fields, "avatar"),
		CreatedAt: docfields.String(fields, "createdAt"),
	}

	prefs := docfields.Map(fields, "preferences")
	u.Preferences = Preferences{
		LikedNotes:              emptyIfNil(docfields.StringSlice(prefs, "likedNotes")),
		AvoidedNotes:            emptyIfNil(docfields.StringSlice(prefs, "avoidedNotes")),
		PreferredConcentrations: emptyIfNil(docfields.StringSlice(prefs, "preferredConcentrations")),
	}

	coll := docfields.Map(fields, "collection")
	u.Collection = Collection{
		Owned:    emptyIfNil(docfields.StringSlice(coll, "owned")),
		Sampled:  emptyIfNil(docfields.StringSlice(coll, "sampled")),
		Wishlist: emptyIfNil(docfields.StringSlice(coll, "wishlist")),
	}

	return u
}

// DiscussionFromDocument builds a Discussion from a stored document
func DiscussionFromDocument(id string, fields map[string]interface{}) Discussion {
	category := docfields.String(fields, "category")
	if category == "" {
		category = "General"
	}
	return Discussion{
		ID:           id,
		Title:        docfields.String(fields, "title"),
		Body:         docfields.String(fields, "body"),
		Category:     category,
		AuthorID:     docfields.String(fields, "authorId"),
		AuthorName:   docfields.String(fields, "authorName"),
		AuthorAvatar: docfields.OptString(fields, "authorAvatar"),
		CommentCount: docfields.Int(fields, "commentCount"),
		CreatedAt:    docfields.String(fields, "createdAt"),
	}
}

// ReplyFromDocument builds a Reply from a stored document
func ReplyFromDocument(id string, fields map[string]interface{}) Reply {
	return Reply{
		ID:           id,
		DiscussionID: docfields.String(fields, "discussionId"),
		Body:         docfields.String(fields, "body"),
		AuthorID:     docfields.String(fields, "authorId"),
		AuthorName:   docfields.String(fields, "authorName"),
		AuthorAvatar: docfields.OptString(fields, "authorAvatar"),
		CreatedAt:    docfields.String(fields, "createdAt"),
	}
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
