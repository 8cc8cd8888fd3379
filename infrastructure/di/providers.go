package di

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"

	"scentbase-backend/application/catalogcache"
	"scentbase-backend/application/ports"
	"scentbase-backend/application/services"
	"scentbase-backend/infrastructure/config"
	"scentbase-backend/infrastructure/messaging/eventbridge"
	"scentbase-backend/infrastructure/persistence/dynamodb"
	"scentbase-backend/pkg/auth"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var logger *zap.Logger
	var err error

	if cfg.Environment == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}

	if err != nil {
		return nil, err
	}

	return logger, nil
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideDocumentStore creates the DynamoDB-backed document store
func ProvideDocumentStore(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.DocumentStore {
	return dynamodb.NewDocumentStore(client, cfg.DynamoDBTable, logger)
}

// ProvideEventPublisher creates the EventBridge catalogue change publisher
func ProvideEventPublisher(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventPublisher {
	return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
}

// ProvideCatalogCache creates the TTL-bounded catalogue snapshot cache
func ProvideCatalogCache(store ports.DocumentStore, cfg *config.Config, logger *zap.Logger) *catalogcache.Cache {
	return catalogcache.New(store, cfg.CatalogCacheTTL, logger)
}

// ProvideOwnershipPolicy creates the resource ownership policy
func ProvideOwnershipPolicy() *auth.OwnershipPolicy {
	return auth.NewOwnershipPolicy()
}

func jwtConfigFrom(cfg *config.Config) auth.JWTConfig {
	jwtCfg := auth.JWTConfig{
		SecretKey: cfg.JWTSecret,
		Issuer:    cfg.JWTIssuer,
	}
	if cfg.JWTAudience != "" {
		jwtCfg.Audience = []string{cfg.JWTAudience}
	}
	return jwtCfg
}

// ProvideJWTVerifier creates the JWT token verifier
func ProvideJWTVerifier(cfg *config.Config) (*auth.JWTVerifier, error) {
	return auth.NewJWTVerifier(jwtConfigFrom(cfg))
}

// ProvideJWTGenerator creates the JWT token issuer used by login/register
func ProvideJWTGenerator(cfg *config.Config) (*auth.JWTGenerator, error) {
	return auth.NewJWTGenerator(jwtConfigFrom(cfg), 24*time.Hour)
}

// ProvideCatalogService creates the catalogue write service
func ProvideCatalogService(store ports.DocumentStore, cache *catalogcache.Cache, events ports.EventPublisher, logger *zap.Logger) *services.CatalogService {
	return services.NewCatalogService(store, cache, events, logger)
}

// ProvideReviewService creates the review service
func ProvideReviewService(store ports.DocumentStore, logger *zap.Logger) *services.ReviewService {
	return services.NewReviewService(store, logger)
}

// ProvideUserService creates the user service
func ProvideUserService(store ports.DocumentStore, logger *zap.Logger) *services.UserService {
	return services.NewUserService(store, logger)
}

// ProvideDiscussionService creates the discussion service
func ProvideDiscussionService(store ports.DocumentStore, policy *auth.OwnershipPolicy, logger *zap.Logger) *services.DiscussionService {
	return services.NewDiscussionService(store, policy, logger)
}
