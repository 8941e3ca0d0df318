package dynamodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/tradestreak/wall-street-service/application/ports"
)

const (
	attrPK     = "PK"
	attrSK     = "SK"
	attrGSI1PK = "GSI1PK"
	attrGSI1SK = "GSI1SK"

	batchWriteChunk = 25
	batchGetChunk   = 100
)

// Store implements ports.Store over one DynamoDB table with GSI1.
type Store struct {
	client    *dynamodb.Client
	tableName string
	indexName string
	logger    *zap.Logger
}

// NewStore creates the table adapter.
func NewStore(client *dynamodb.Client, tableName, indexName string, logger *zap.Logger) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		indexName: indexName,
		logger:    logger,
	}
}

// Get returns the item at the key, reporting absence via the bool.
func (s *Store) Get(ctx context.Context, key ports.Key) (ports.Item, bool, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key:       keyAttributes(key),
	})
	if err != nil {
		return nil, false, fmt.Errorf("get item %s/%s: %w", key.PK, key.SK, err)
	}
	if out.Item == nil {
		return nil, false, nil
	}
	return out.Item, true, nil
}

// Put writes the item unconditionally.
func (s *Store) Put(ctx context.Context, item ports.Item) error {
	_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put item: %w", err)
	}
	return nil
}

// PutIfAbsent writes the item only when the key is free.
func (s *Store) PutIfAbsent(ctx context.Context, item ports.Item) error {
	_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return ports.ErrAlreadyExists
		}
		return fmt.Errorf("conditional put item: %w", err)
	}
	return nil
}

// Update applies the spec with UpdateItem, which creates the item when
// absent. Returns the full post-update item.
func (s *Store) Update(ctx context.Context, key ports.Key, spec ports.UpdateSpec) (ports.Item, error) {
	update := expression.UpdateBuilder{}
	for name, value := range spec.Set {
		update = update.Set(expression.Name(name), expression.Value(value))
	}
	for name, delta := range spec.Add {
		update = update.Add(expression.Name(name), expression.Value(delta))
	}

	expr, err := expression.NewBuilder().WithUpdate(update).Build()
	if err != nil {
		return nil, fmt.Errorf("build update expression: %w", err)
	}

	out, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.tableName),
		Key:                       keyAttributes(key),
		UpdateExpression:          expr.Update(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		return nil, fmt.Errorf("update item %s/%s: %w", key.PK, key.SK, err)
	}
	return out.Attributes, nil
}

// Delete removes the item at the key; missing items are a no-op.
func (s *Store) Delete(ctx context.Context, key ports.Key) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key:       keyAttributes(key),
	})
	if err != nil {
		return fmt.Errorf("delete item %s/%s: %w", key.PK, key.SK, err)
	}
	return nil
}

// Query returns items matching the spec, paging through the partition until
// the limit (or the end) is reached.
func (s *Store) Query(ctx context.Context, spec ports.QuerySpec) ([]ports.Item, error) {
	input, err := s.buildQueryInput(spec)
	if err != nil {
		return nil, err
	}

	var items []ports.Item
	for {
		out, err := s.client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("query partition %s: %w", spec.PartitionKey, err)
		}
		for _, item := range out.Items {
			items = append(items, item)
			if spec.Limit > 0 && int32(len(items)) >= spec.Limit {
				return items, nil
			}
		}
		if out.LastEvaluatedKey == nil {
			return items, nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

// QueryPaginated counts the partition, then reads page*pageSize items and
// slices out the requested page.
func (s *Store) QueryPaginated(ctx context.Context, spec ports.QuerySpec, page, pageSize int) ([]ports.Item, int, error) {
	total, err := s.count(ctx, spec)
	if err != nil {
		return nil, 0, err
	}

	fetchSpec := spec
	fetchSpec.Limit = int32(page * pageSize)
	items, err := s.Query(ctx, fetchSpec)
	if err != nil {
		return nil, 0, err
	}

	start := (page - 1) * pageSize
	if start >= len(items) {
		return []ports.Item{}, total, nil
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], total, nil
}

// BatchGet reads the present items for the keys, chunked to the API limit.
func (s *Store) BatchGet(ctx context.Context, keys []ports.Key) ([]ports.Item, error) {
	var items []ports.Item
	for start := 0; start < len(keys); start += batchGetChunk {
		end := start + batchGetChunk
		if end > len(keys) {
			end = len(keys)
		}

		requestKeys := make([]map[string]types.AttributeValue, 0, end-start)
		for _, key := range keys[start:end] {
			requestKeys = append(requestKeys, keyAttributes(key))
		}

		request := map[string]types.KeysAndAttributes{
			s.tableName: {Keys: requestKeys},
		}
		for len(request) > 0 {
			out, err := s.client.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{
				RequestItems: request,
			})
			if err != nil {
				return nil, fmt.Errorf("batch get: %w", err)
			}
			for _, item := range out.Responses[s.tableName] {
				items = append(items, item)
			}
			request = out.UnprocessedKeys
		}
	}
	return items, nil
}

// BatchWrite puts all items in chunks, retrying unprocessed entries.
func (s *Store) BatchWrite(ctx context.Context, items []ports.Item) error {
	for start := 0; start < len(items); start += batchWriteChunk {
		end := start + batchWriteChunk
		if end > len(items) {
			end = len(items)
		}

		writes := make([]types.WriteRequest, 0, end-start)
		for _, item := range items[start:end] {
			writes = append(writes, types.WriteRequest{
				PutRequest: &types.PutRequest{Item: item},
			})
		}

		request := map[string][]types.WriteRequest{s.tableName: writes}
		for len(request) > 0 {
			out, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
				RequestItems: request,
			})
			if err != nil {
				return fmt.Errorf("batch write: %w", err)
			}
			request = out.UnprocessedItems
		}
	}
	return nil
}

// count runs the spec as a Select COUNT query, paging through the whole
// partition slice.
func (s *Store) count(ctx context.Context, spec ports.QuerySpec) (int, error) {
	countSpec := spec
	countSpec.Limit = 0
	input, err := s.buildQueryInput(countSpec)
	if err != nil {
		return 0, err
	}
	input.Select = types.SelectCount

	total := 0
	for {
		out, err := s.client.Query(ctx, input)
		if err != nil {
			return 0, fmt.Errorf("count partition %s: %w", spec.PartitionKey, err)
		}
		total += int(out.Count)
		if out.LastEvaluatedKey == nil {
			return total, nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

func (s *Store) buildQueryInput(spec ports.QuerySpec) (*dynamodb.QueryInput, error) {
	pkAttr, skAttr := attrPK, attrSK
	if spec.IndexName != "" {
		pkAttr, skAttr = attrGSI1PK, attrGSI1SK
	}

	keyCond := expression.Key(pkAttr).Equal(expression.Value(spec.PartitionKey))
	switch {
	case spec.Sort.Low != "":
		keyCond = keyCond.And(expression.Key(skAttr).Between(
			expression.Value(spec.Sort.Low),
			expression.Value(spec.Sort.High),
		))
	case spec.Sort.BeginsWith != "":
		keyCond = keyCond.And(expression.Key(skAttr).BeginsWith(spec.Sort.BeginsWith))
	}

	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("build key condition: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(s.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(spec.ScanForward),
	}
	if spec.IndexName != "" {
		input.IndexName = aws.String(spec.IndexName)
	}
	if spec.Limit > 0 {
		input.Limit = aws.Int32(spec.Limit)
	}
	return input, nil
}

func keyAttributes(key ports.Key) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrPK: &types.AttributeValueMemberS{Value: key.PK},
		attrSK: &types.AttributeValueMemberS{Value: key.SK},
	}
}
