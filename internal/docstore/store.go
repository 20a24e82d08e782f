// Package docstore exposes a DynamoDB table as a set of document collections.
//
// The table plays the role of a database: every item carries a partition key
// "collection" naming the collection it belongs to and a sort key "id" holding
// the document id. Documents are otherwise schemaless.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/imrishuroy/restaurant-admin/internal/aws"
)

// Key attribute names.
const (
	AttrCollection = "collection"
	AttrID         = "id"
	AttrCreatedAt  = "created_at"
	AttrUpdatedAt  = "updated_at"
)

var (
	// ErrConfiguration means the database or collection id is not configured.
	ErrConfiguration = errors.New("document store not configured")
	// ErrNotFound means the addressed document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrExists means a create-only write found an existing document.
	ErrExists = errors.New("document already exists")
)

// Document is a raw stored item.
type Document map[string]types.AttributeValue

// ID returns the document id, or "" when absent.
func (d Document) ID() string {
	if v, ok := d[AttrID].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

// Store addresses one database (DynamoDB table).
type Store struct {
	client     aws.DynamoDBAPI
	databaseID string
	nowFunc    func() time.Time
}

// New returns a Store for databaseID. It fails fast when the id is empty.
func New(client aws.DynamoDBAPI, databaseID string) (*Store, error) {
	if databaseID == "" {
		return nil, fmt.Errorf("%w: database id is empty", ErrConfiguration)
	}
	if client == nil {
		return nil, fmt.Errorf("%w: nil dynamodb client", ErrConfiguration)
	}
	return &Store{
		client:     client,
		databaseID: databaseID,
		nowFunc:    time.Now,
	}, nil
}


// List returns every document of a collection in sort key order, following
// pagination until the query is exhausted.
func (s *Store) List(ctx context.Context, collectionID string) ([]Document, error) {
	if err := s.check(collectionID); err != nil {
		return nil, err
	}

	input := &dyn.QueryInput{
		TableName:                 &s.databaseID,
		KeyConditionExpression:    awsString("#pk = :pk"),
		ExpressionAttributeNames:  map[string]string{"#pk": AttrCollection},
		ExpressionAttributeValues: map[string]types.AttributeValue{":pk": &types.AttributeValueMemberS{Value: collectionID}},
	}

	var docs []Document
	for {
		out, err := s.client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", collectionID, err)
		}
		for _, item := range out.Items {
			docs = append(docs, Document(item))
		}
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
	return docs, nil
}

// Get fetches a document. Returns (nil, nil) if not found.
func (s *Store) Get(ctx context.Context, collectionID, documentID string) (Document, error) {
	if err := s.check(collectionID); err != nil {
		return nil, err
	}
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName:      &s.databaseID,
		Key:            key(collectionID, documentID),
		ConsistentRead: awsBool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	return Document(out.Item), nil
}

// Create writes v as a new document. v must be marshalable by attributevalue;
// the key and created_at/updated_at attributes are set here.
// Returns ErrExists if the id is taken.
func (s *Store) Create(ctx context.Context, collectionID, documentID string, v interface{}) error {
	if err := s.check(collectionID); err != nil {
		return err
	}
	if documentID == "" {
		return fmt.Errorf("create: empty document id")
	}

	item, err := attributevalue.MarshalMap(v)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	now := s.nowFunc().UTC().Format(time.RFC3339)
	for k, av := range key(collectionID, documentID) {
		item[k] = av
	}
	if _, ok := item[AttrCreatedAt]; !ok {
		item[AttrCreatedAt] = &types.AttributeValueMemberS{Value: now}
	}
	item[AttrUpdatedAt] = &types.AttributeValueMemberS{Value: now}

	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName:           &s.databaseID,
		Item:                item,
		ConditionExpression: awsString("attribute_not_exists(id)"),
	})
	if err != nil {
		if isConditionFailed(err) {
			return fmt.Errorf("%w: %s/%s", ErrExists, collectionID, documentID)
		}
		return fmt.Errorf("put item: %w", err)
	}
	return nil
}

// Update patches the given fields of an existing document in place and
// returns the updated document. No other attribute is touched apart from
// updated_at. Returns ErrNotFound if the document does not exist.
func (s *Store) Update(ctx context.Context, collectionID, documentID string, fields map[string]interface{}) (Document, error) {
	if err := s.check(collectionID); err != nil {
		return nil, err
	}
	if documentID == "" {
		return nil, fmt.Errorf("%w: empty document id", ErrNotFound)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("update: no fields")
	}

	// stable placeholder numbering
	names := make([]string, 0, len(fields))
	for name := range fields {
		if name == AttrCollection || name == AttrID || name == AttrCreatedAt {
			return nil, fmt.Errorf("update: %s is immutable", name)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	exprNames := map[string]string{}
	exprValues := map[string]types.AttributeValue{}
	updateExpr := "SET "
	for i, name := range names {
		av, err := attributevalue.Marshal(fields[name])
		if err != nil {
			return nil, fmt.Errorf("marshal field %s: %w", name, err)
		}
		n, v := fmt.Sprintf("#f%d", i), fmt.Sprintf(":v%d", i)
		exprNames[n] = name
		exprValues[v] = av
		updateExpr += n + " = " + v + ", "
	}
	exprNames["#ua"] = AttrUpdatedAt
	exprValues[":ua"] = &types.AttributeValueMemberS{Value: s.nowFunc().UTC().Format(time.RFC3339)}
	updateExpr += "#ua = :ua"

	out, err := s.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName:                 &s.databaseID,
		Key:                       key(collectionID, documentID),
		UpdateExpression:          &updateExpr,
		ExpressionAttributeNames:  exprNames,
		ExpressionAttributeValues: exprValues,
		ConditionExpression:       awsString("attribute_exists(id)"),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		if isConditionFailed(err) {
			return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, collectionID, documentID)
		}
		return nil, fmt.Errorf("update item: %w", err)
	}
	return Document(out.Attributes), nil
}

// Delete removes a document. Deleting a missing document is not an error.
func (s *Store) Delete(ctx context.Context, collectionID, documentID string) error {
	if err := s.check(collectionID); err != nil {
		return err
	}
	_, err := s.client.DeleteItem(ctx, &dyn.DeleteItemInput{
		TableName: &s.databaseID,
		Key:       key(collectionID, documentID),
	})
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

func (s *Store) check(collectionID string) error {
	if s == nil || s.databaseID == "" {
		return fmt.Errorf("%w: database id is empty", ErrConfiguration)
	}
	if collectionID == "" {
		return fmt.Errorf("%w: collection id is empty", ErrConfiguration)
	}
	return nil
}

func key(collectionID, documentID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		AttrCollection: &types.AttributeValueMemberS{Value: collectionID},
		AttrID:         &types.AttributeValueMemberS{Value: documentID},
	}
}

// isConditionFailed detects a failed ConditionExpression, either as the typed
// exception or as a generic API error code.
func isConditionFailed(err error) bool {
	var cf *types.ConditionalCheckFailedException
	if errors.As(err, &cf) {
		return true
	}
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "ConditionalCheckFailedException"
}

func awsString(s string) *string { return &s }

func awsBool(b bool) *bool { return &b }
