// Package dynamodb implements the document store port on a single DynamoDB
// table. Every document lives under PK=COLLECTION#<name>, SK=DOC#<id> with
// its fields marshaled as top-level item attributes, so a whole collection
// streams out of one paginated Query.
package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"scentbase-backend/application/ports"
	apperrors "scentbase-backend/pkg/errors"
)

const (
	collectionKeyPrefix = "COLLECTION#"
	docKeyPrefix        = "DOC#"
	entityTypeDocument  = "DOCUMENT"

	// batchGetLimit is the DynamoDB BatchGetItem ceiling
	batchGetLimit = 100

	// casAttempts bounds the read-modify-write retries on array mutations
	casAttempts = 3
)

// metaAttributes are table plumbing, never document fields
var metaAttributes = map[string]bool{
	"PK":         true,
	"SK":         true,
	"EntityType": true,
}

// DocumentStore implements ports.DocumentStore on a single DynamoDB table
type DocumentStore struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewDocumentStore creates a new DynamoDB-backed document store
func NewDocumentStore(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.DocumentStore {
	return &DocumentStore{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

func collectionPK(collection string) string {
	return collectionKeyPrefix + collection
}

func docSK(id string) string {
	return docKeyPrefix + id
}

func docKey(collection, id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: collectionPK(collection)},
		"SK": &types.AttributeValueMemberS{Value: docSK(id)},
	}
}

// fieldsFromItem strips table plumbing and returns the document ID and fields
func fieldsFromItem(item map[string]types.AttributeValue) (string, map[string]interface{}, error) {
	var raw map[string]interface{}
	if err := attributevalue.UnmarshalMap(item, &raw); err != nil {
		return "", nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}

	sk, _ := raw["SK"].(string)
	id := strings.TrimPrefix(sk, docKeyPrefix)

	fields := make(map[string]interface{}, len(raw))
	for key, value := range raw {
		if !metaAttributes[key] {
			fields[key] = value
		}
	}
	return id, fields, nil
}

// StreamAll returns every document in a collection, following pagination
func (s *DocumentStore) StreamAll(ctx context.Context, collection string) ([]ports.Document, error) {
	var docs []ports.Document
	var startKey map[string]types.AttributeValue

	for {
		input := &dynamodb.QueryInput{
			TableName:              aws.String(s.tableName),
			KeyConditionExpression: aws.String("PK = :pk"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pk": &types.AttributeValueMemberS{Value: collectionPK(collection)},
			},
			ExclusiveStartKey: startKey,
		}

		result, err := s.client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to query collection %s: %w", collection, err)
		}

		for _, item := range result.Items {
			id, fields, err := fieldsFromItem(item)
			if err != nil {
				s.logger.Warn("Skipping unreadable document",
					zap.String("collection", collection),
					zap.Error(err),
				)
				continue
			}
			docs = append(docs, ports.Document{ID: id, Fields: fields})
		}

		if result.LastEvaluatedKey == nil {
			break
		}
		startKey = result.LastEvaluatedKey
	}

	return docs, nil
}

// GetByID fetches one document's fields
func (s *DocumentStore) GetByID(ctx context.Context, collection, id string) (map[string]interface{}, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key:       docKey(collection, id),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get document %s/%s: %w", collection, id, err)
	}
	if result.Item == nil {
		return nil, apperrors.NewNotFoundError(collection + " document")
	}

	_, fields, err := fieldsFromItem(result.Item)
	if err != nil {
		return nil, err
	}
	return fields, nil
}

// GetByIDs batch-fetches documents, keyed by ID. Absent IDs are simply
// missing from the result, never an error.
func (s *DocumentStore) GetByIDs(ctx context.Context, collection string, ids []string) (map[string]map[string]interface{}, error) {
	found := make(map[string]map[string]interface{}, len(ids))

	for start := 0; start < len(ids); start += batchGetLimit {
		end := start + batchGetLimit
		if end > len(ids) {
			end = len(ids)
		}

		keys := make([]map[string]types.AttributeValue, 0, end-start)
		for _, id := range ids[start:end] {
			keys = append(keys, docKey(collection, id))
		}

		for len(keys) > 0 {
			result, err := s.client.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{
				RequestItems: map[string]types.KeysAndAttributes{
					s.tableName: {Keys: keys},
				},
			})
			if err != nil {
				return nil, fmt.Errorf("failed to batch get %s documents: %w", collection, err)
			}

			for _, item := range result.Responses[s.tableName] {
				id, fields, err := fieldsFromItem(item)
				if err != nil {
					s.logger.Warn("Skipping unreadable document",
						zap.String("collection", collection),
						zap.Error(err),
					)
					continue
				}
				found[id] = fields
			}

			keys = result.UnprocessedKeys[s.tableName].Keys
		}
	}

	return found, nil
}

// Query returns the documents whose field equals the given value. The field
// may be a dotted path into a nested map.
func (s *DocumentStore) Query(ctx context.Context, collection, field string, value interface{}) ([]ports.Document, error) {
	expr, err := expression.NewBuilder().
		WithKeyCondition(expression.Key("PK").Equal(expression.Value(collectionPK(collection)))).
		WithFilter(expression.Name(field).Equal(expression.Value(value))).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build query expression: %w", err)
	}

	var docs []ports.Document
	var startKey map[string]types.AttributeValue

	for {
		result, err := s.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(s.tableName),
			KeyConditionExpression:    expr.KeyCondition(),
			FilterExpression:          expr.Filter(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to query %s by %s: %w", collection, field, err)
		}

		for _, item := range result.Items {
			id, fields, err := fieldsFromItem(item)
			if err != nil {
				continue
			}
			docs = append(docs, ports.Document{ID: id, Fields: fields})
		}

		if result.LastEvaluatedKey == nil {
			break
		}
		startKey = result.LastEvaluatedKey
	}

	return docs, nil
}

// Create stores a new document under a generated ID
func (s *DocumentStore) Create(ctx context.Context, collection string, fields map[string]interface{}) (string, error) {
	id := uuid.New().String()
	if err := s.Set(ctx, collection, id, fields); err != nil {
		return "", err
	}
	return id, nil
}

// Set writes a document in full, replacing any existing one with the same ID
func (s *DocumentStore) Set(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	item, err := attributevalue.MarshalMap(fields)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}
	for key, value := range docKey(collection, id) {
		item[key] = value
	}
	item["EntityType"] = &types.AttributeValueMemberS{Value: entityTypeDocument}

	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	}); err != nil {
		return fmt.Errorf("failed to put document %s/%s: %w", collection, id, err)
	}
	return nil
}

// Update merges the given fields into an existing document. Dotted keys
// address into nested maps, leaving sibling keys untouched. The document
// must exist.
func (s *DocumentStore) Update(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}

	var update expression.UpdateBuilder
	for key, value := range fields {
		update = update.Set(expression.Name(key), expression.Value(value))
	}

	expr, err := expression.NewBuilder().
		WithUpdate(update).
		WithCondition(expression.AttributeExists(expression.Name("PK"))).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build update expression: %w", err)
	}

	_, err = s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.tableName),
		Key:                       docKey(collection, id),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return apperrors.NewNotFoundError(collection + " document")
		}
		return fmt.Errorf("failed to update document %s/%s: %w", collection, id, err)
	}
	return nil
}

// Delete removes a document. Deleting an absent document is a no-op.
func (s *DocumentStore) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key:       docKey(collection, id),
	}); err != nil {
		return fmt.Errorf("failed to delete document %s/%s: %w", collection, id, err)
	}
	return nil
}

// AtomicIncrement adds delta to a top-level numeric field in one write
func (s *DocumentStore) AtomicIncrement(ctx context.Context, collection, id, field string, delta int) error {
	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(s.tableName),
		Key:                 docKey(collection, id),
		UpdateExpression:    aws.String("ADD #f :delta"),
		ConditionExpression: aws.String("attribute_exists(PK)"),
		ExpressionAttributeNames: map[string]string{
			"#f": field,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":delta": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", delta)},
		},
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return apperrors.NewNotFoundError(collection + " document")
		}
		return fmt.Errorf("failed to increment %s on %s/%s: %w", field, collection, id, err)
	}
	return nil
}

// AtomicArrayAdd appends a value to a (possibly nested) string array unless
// it is already present
func (s *DocumentStore) AtomicArrayAdd(ctx context.Context, collection, id, field, value string) error {
	return s.mutateArray(ctx, collection, id, field, func(current []string) ([]string, bool) {
		for _, v := range current {
			if v == value {
				return current, false
			}
		}
		return append(current, value), true
	})
}

// AtomicArrayRemove removes every occurrence of a value from a (possibly
// nested) string array. Removing an absent value is a no-op.
func (s *DocumentStore) AtomicArrayRemove(ctx context.Context, collection, id, field, value string) error {
	return s.mutateArray(ctx, collection, id, field, func(current []string) ([]string, bool) {
		next := make([]string, 0, len(current))
		for _, v := range current {
			if v != value {
				next = append(next, v)
			}
		}
		return next, len(next) != len(current)
	})
}

// mutateArray applies a compare-and-swap loop around an array edit. DynamoDB
// cannot ADD/DELETE on nested paths, so the write is made atomic by
// conditioning on the value that was read.
func (s *DocumentStore) mutateArray(ctx context.Context, collection, id, field string, edit func([]string) ([]string, bool)) error {
	var lastErr error

	for attempt := 0; attempt < casAttempts; attempt++ {
		fields, err := s.GetByID(ctx, collection, id)
		if err != nil {
			return err
		}

		current := stringSliceAt(fields, field)
		next, changed := edit(current)
		if !changed {
			return nil
		}

		condition := expression.AttributeNotExists(expression.Name(field))
		if current != nil {
			condition = expression.Name(field).Equal(expression.Value(current))
		}

		expr, err := expression.NewBuilder().
			WithUpdate(expression.Set(expression.Name(field), expression.Value(next))).
			WithCondition(condition).
			Build()
		if err != nil {
			return fmt.Errorf("failed to build array update expression: %w", err)
		}

		_, err = s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
			TableName:                 aws.String(s.tableName),
			Key:                       docKey(collection, id),
			UpdateExpression:          expr.Update(),
			ConditionExpression:       expr.Condition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
		})
		if err == nil {
			return nil
		}
		if !isConditionalCheckFailed(err) {
			return fmt.Errorf("failed to update array %s on %s/%s: %w", field, collection, id, err)
		}

		// Lost the race; re-read and retry.
		lastErr = err
	}

	return fmt.Errorf("array update on %s/%s contended %d times: %w", collection, id, casAttempts, lastErr)
}

// stringSliceAt walks a dotted path through nested maps and returns the
// string slice there, or nil when the path is absent or not an array
func stringSliceAt(fields map[string]interface{}, path string) []string {
	parts := strings.Split(path, ".")
	current := fields

	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]interface{})
		if !ok {
			return nil
		}
		current = next
	}

	switch v := current[parts[len(parts)-1]].(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	default:
		return nil
	}
}

func isConditionalCheckFailed(err error) bool {
	var cfe *types.ConditionalCheckFailedException
	return errors.As(err, &cfe)
}
