package store

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"gitlab.connectwisedev.com/product-catalog/models"
	"gitlab.connectwisedev.com/product-catalog/pkg/chunk"
)

// batchWriteLimit is DynamoDB's per-call item limit for BatchWriteItem.
const batchWriteLimit = 25

// DynamoDBAPI is the subset of *dynamodb.Client the stores use.
type DynamoDBAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

var _ DynamoDBAPI = (*dynamodb.Client)(nil)

// DynamoProductStore keeps products in a table with hash key "id".
type DynamoProductStore struct {
	client    DynamoDBAPI
	tableName string
}

// NewDynamoProductStore creates a product store over tableName.
func NewDynamoProductStore(client DynamoDBAPI, tableName string) *DynamoProductStore {
	return &DynamoProductStore{client: client, tableName: tableName}
}

func (s *DynamoProductStore) Put(ctx context.Context, p models.Product) error {
	item, err := attributevalue.MarshalMap(p)
	if err != nil {
		return fmt.Errorf("marshaling product: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("putting product %s: %w", p.ID, err)
	}
	return nil
}

func (s *DynamoProductStore) Get(ctx context.Context, id string) (models.Product, error) {
	var p models.Product
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key:       map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: id}},
	})
	if err != nil {
		return p, fmt.Errorf("getting product %s: %w", id, err)
	}
	if len(out.Item) == 0 {
		return p, ErrNotFound
	}
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return p, fmt.Errorf("unmarshaling product %s: %w", id, err)
	}
	return p, nil
}

// Scan reads at most limit items starting after startKey. Order is whatever
// DynamoDB returns.
func (s *DynamoProductStore) Scan(ctx context.Context, limit int32, startKey string) (Page, error) {
	input := &dynamodb.ScanInput{
		TableName: aws.String(s.tableName),
	}
	if limit > 0 {
		input.Limit = aws.Int32(limit)
	}
	if startKey != "" {
		input.ExclusiveStartKey = map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: startKey},
		}
	}

	out, err := s.client.Scan(ctx, input)
	if err != nil {
		return Page{}, fmt.Errorf("scanning %s: %w", s.tableName, err)
	}

	page := Page{Items: make([]models.Product, 0, len(out.Items))}
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &page.Items); err != nil {
		return Page{}, fmt.Errorf("unmarshaling products: %w", err)
	}
	if key, ok := out.LastEvaluatedKey["id"].(*types.AttributeValueMemberS); ok {
		page.LastEvaluatedKey = key.Value
	}
	return page, nil
}

// PutBatch writes products 25 at a time. Items DynamoDB hands back as
// unprocessed are resubmitted once before the call fails.
func (s *DynamoProductStore) PutBatch(ctx context.Context, products []models.Product) error {
	for _, group := range chunk.Slice(products, batchWriteLimit) {
		requests := make([]types.WriteRequest, 0, len(group))
		for _, p := range group {
			item, err := attributevalue.MarshalMap(p)
			if err != nil {
				return fmt.Errorf("marshaling product %s: %w", p.ID, err)
			}
			requests = append(requests, types.WriteRequest{PutRequest: &types.PutRequest{Item: item}})
		}

		pending := map[string][]types.WriteRequest{s.tableName: requests}
		for attempt := 0; attempt < 2 && len(pending) > 0; attempt++ {
			out, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{RequestItems: pending})
			if err != nil {
				return fmt.Errorf("batch writing products: %w", err)
			}
			pending = nil
			if left := out.UnprocessedItems[s.tableName]; len(left) > 0 {
				pending = map[string][]types.WriteRequest{s.tableName: left}
			}
		}
		if n := len(pending[s.tableName]); n > 0 {
			return fmt.Errorf("batch writing products: %d items left unprocessed", n)
		}
	}
	return nil
}

// DynamoStockStore keeps stock rows in a table with hash key "product_id".
type DynamoStockStore struct {
	client    DynamoDBAPI
	tableName string
}

// NewDynamoStockStore creates a stock store over tableName.
func NewDynamoStockStore(client DynamoDBAPI, tableName string) *DynamoStockStore {
	return &DynamoStockStore{client: client, tableName: tableName}
}

func (s *DynamoStockStore) key(productID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{"product_id": &types.AttributeValueMemberS{Value: productID}}
}

func (s *DynamoStockStore) Put(ctx context.Context, st models.Stock) error {
	item, err := attributevalue.MarshalMap(st)
	if err != nil {
		return fmt.Errorf("marshaling stock: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("putting stock for %s: %w", st.ProductID, err)
	}
	return nil
}

func (s *DynamoStockStore) Get(ctx context.Context, productID string) (models.Stock, error) {
	var st models.Stock
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key:       s.key(productID),
	})
	if err != nil {
		return st, fmt.Errorf("getting stock for %s: %w", productID, err)
	}
	if len(out.Item) == 0 {
		return st, ErrNotFound
	}
	if err := attributevalue.UnmarshalMap(out.Item, &st); err != nil {
		return st, fmt.Errorf("unmarshaling stock for %s: %w", productID, err)
	}
	return st, nil
}

// SetCount overwrites the count with an absolute value.
func (s *DynamoStockStore) SetCount(ctx context.Context, productID string, count int) (models.Stock, error) {
	return s.update(ctx, productID, "SET #count = :count", map[string]types.AttributeValue{
		":count": number(count),
	})
}

// AdjustCount adds delta to the current count on the server side. A missing
// row starts from zero.
func (s *DynamoStockStore) AdjustCount(ctx context.Context, productID string, delta int) (models.Stock, error) {
	return s.update(ctx, productID, "SET #count = if_not_exists(#count, :zero) + :delta", map[string]types.AttributeValue{
		":delta": number(delta),
		":zero":  number(0),
	})
}

func (s *DynamoStockStore) update(ctx context.Context, productID, expr string, values map[string]types.AttributeValue) (models.Stock, error) {
	var st models.Stock
	out, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.tableName),
		Key:                       s.key(productID),
		UpdateExpression:          aws.String(expr),
		ExpressionAttributeNames:  map[string]string{"#count": "count"},
		ExpressionAttributeValues: values,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		return st, fmt.Errorf("updating stock for %s: %w", productID, err)
	}
	if err := attributevalue.UnmarshalMap(out.Attributes, &st); err != nil {
		return st, fmt.Errorf("unmarshaling stock for %s: %w", productID, err)
	}
	return st, nil
}

func number(n int) *types.AttributeValueMemberN {
	return &types.AttributeValueMemberN{Value: strconv.Itoa(n)}
}
