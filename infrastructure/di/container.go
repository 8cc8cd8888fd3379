// Package di wires the application together. The graph is declared with
// google/wire; wire_gen.go carries the generated constructor.
package di

import (
	"github.com/google/wire"
	"go.uber.org/zap"

	"scentbase-backend/application/catalogcache"
	"scentbase-backend/application/ports"
	"scentbase-backend/application/services"
	"scentbase-backend/infrastructure/config"
	"scentbase-backend/pkg/auth"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	Store          ports.DocumentStore
	EventPublisher ports.EventPublisher
	CatalogCache   *catalogcache.Cache

	CatalogService    *services.CatalogService
	ReviewService     *services.ReviewService
	UserService       *services.UserService
	DiscussionService *services.DiscussionService

	JWTVerifier     *auth.JWTVerifier
	JWTGenerator    *auth.JWTGenerator
	OwnershipPolicy *auth.OwnershipPolicy
}

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideDocumentStore,
	ProvideEventPublisher,
	ProvideCatalogCache,
	ProvideOwnershipPolicy,
	ProvideJWTVerifier,
	ProvideJWTGenerator,
	ProvideCatalogService,
	ProvideReviewService,
	ProvideUserService,
	ProvideDiscussionService,
	wire.Struct(new(Container), "*"),
)
