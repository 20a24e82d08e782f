// Package testutil holds test doubles shared across packages.
package testutil

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	partitionKey = "collection"
	sortKey      = "id"
)

// Dynamo is a small in-memory DynamoDB fake for the single-table layout
// (collection + id). It understands only the expressions the document store
// builds: "attribute_exists(id)", "attribute_not_exists(id)", "SET a = :b, ..."
// and "#pk = :pk" key conditions.
type Dynamo struct {
	mu sync.Mutex
	// table -> collection -> id -> item
	tables map[string]map[string]map[string]map[string]types.AttributeValue
	errs   map[string]error

	// PageSize limits Query pages when > 0 so pagination can be exercised.
	PageSize int
	Calls    map[string]int
}

// NewDynamo returns an empty fake.
func NewDynamo() *Dynamo {
	return &Dynamo{
		tables: map[string]map[string]map[string]map[string]types.AttributeValue{},
		errs:   map[string]error{},
		Calls:  map[string]int{},
	}
}

// FailOn makes every call to op ("GetItem", "PutItem", "UpdateItem",
// "DeleteItem", "Query") return err. A nil err clears it.
func (d *Dynamo) FailOn(op string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err == nil {
		delete(d.errs, op)
		return
	}
	d.errs[op] = err
}

// Seed stores item as is. It must carry the collection and id attributes.
func (d *Dynamo) Seed(table string, item map[string]types.AttributeValue) {
	d.mu.Lock()
	defer d.mu.Unlock()
	c, id := keyOf(item)
	d.collection(table, c)[id] = copyItem(item)
}

// Item returns a copy of a stored item, or nil.
func (d *Dynamo) Item(table, collection, id string) map[string]types.AttributeValue {
	d.mu.Lock()
	defer d.mu.Unlock()
	item, ok := d.collection(table, collection)[id]
	if !ok {
		return nil
	}
	return copyItem(item)
}

func (d *Dynamo) collection(table, c string) map[string]map[string]types.AttributeValue {
	if _, ok := d.tables[table]; !ok {
		d.tables[table] = map[string]map[string]map[string]types.AttributeValue{}
	}
	if _, ok := d.tables[table][c]; !ok {
		d.tables[table][c] = map[string]map[string]types.AttributeValue{}
	}
	return d.tables[table][c]
}

func (d *Dynamo) begin(op string) error {
	d.Calls[op]++
	return d.errs[op]
}

func (d *Dynamo) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.begin("GetItem"); err != nil {
		return nil, err
	}
	c, id := keyOf(params.Key)
	item, ok := d.collection(*params.TableName, c)[id]
	if !ok {
		return &dyn.GetItemOutput{}, nil
	}
	return &dyn.GetItemOutput{Item: copyItem(item)}, nil
}

func (d *Dynamo) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.begin("PutItem"); err != nil {
		return nil, err
	}
	c, id := keyOf(params.Item)
	if c == "" || id == "" {
		return nil, errors.New("no primary key in put item")
	}
	coll := d.collection(*params.TableName, c)
	_, exists := coll[id]
	if params.ConditionExpression != nil && *params.ConditionExpression == "attribute_not_exists(id)" && exists {
		return nil, &types.ConditionalCheckFailedException{}
	}
	coll[id] = copyItem(params.Item)
	return &dyn.PutItemOutput{}, nil
}

func (d *Dynamo) UpdateItem(ctx context.Context, params *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.begin("UpdateItem"); err != nil {
		return nil, err
	}
	c, id := keyOf(params.Key)
	coll := d.collection(*params.TableName, c)
	item, exists := coll[id]
	if params.ConditionExpression != nil && *params.ConditionExpression == "attribute_exists(id)" && !exists {
		return nil, &types.ConditionalCheckFailedException{}
	}
	if !exists {
		item = copyItem(params.Key)
	}

	expr := strings.TrimPrefix(*params.UpdateExpression, "SET ")
	for _, assignment := range strings.Split(expr, ",") {
		parts := strings.SplitN(assignment, "=", 2)
		if len(parts) != 2 {
			return nil, errors.New("unsupported update expression")
		}
		name := strings.TrimSpace(parts[0])
		if n, ok := params.ExpressionAttributeNames[name]; ok {
			name = n
		}
		v, ok := params.ExpressionAttributeValues[strings.TrimSpace(parts[1])]
		if !ok {
			return nil, errors.New("missing expression value")
		}
		item[name] = v
	}
	coll[id] = item
	return &dyn.UpdateItemOutput{Attributes: copyItem(item)}, nil
}

func (d *Dynamo) DeleteItem(ctx context.Context, params *dyn.DeleteItemInput, optFns ...func(*dyn.Options)) (*dyn.DeleteItemOutput, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.begin("DeleteItem"); err != nil {
		return nil, err
	}
	c, id := keyOf(params.Key)
	delete(d.collection(*params.TableName, c), id)
	return &dyn.DeleteItemOutput{}, nil
}

func (d *Dynamo) Query(ctx context.Context, params *dyn.QueryInput, optFns ...func(*dyn.Options)) (*dyn.QueryOutput, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.begin("Query"); err != nil {
		return nil, err
	}
	pk, ok := params.ExpressionAttributeValues[":pk"].(*types.AttributeValueMemberS)
	if !ok {
		return nil, errors.New("missing :pk")
	}
	coll := d.collection(*params.TableName, pk.Value)

	ids := make([]string, 0, len(coll))
	for id := range coll {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	start := 0
	if params.ExclusiveStartKey != nil {
		_, after := keyOf(params.ExclusiveStartKey)
		start = sort.SearchStrings(ids, after)
		if start < len(ids) && ids[start] == after {
			start++
		}
	}
	end := len(ids)
	if d.PageSize > 0 && start+d.PageSize < end {
		end = start + d.PageSize
	}

	out := &dyn.QueryOutput{}
	for _, id := range ids[start:end] {
		out.Items = append(out.Items, copyItem(coll[id]))
	}
	out.Count = int32(len(out.Items))
	if end < len(ids) {
		out.LastEvaluatedKey = map[string]types.AttributeValue{
			partitionKey: &types.AttributeValueMemberS{Value: pk.Value},
			sortKey:      &types.AttributeValueMemberS{Value: ids[end-1]},
		}
	}
	return out, nil
}

func keyOf(item map[string]types.AttributeValue) (string, string) {
	var c, id string
	if v, ok := item[partitionKey].(*types.AttributeValueMemberS); ok {
		c = v.Value
	}
	if v, ok := item[sortKey].(*types.AttributeValueMemberS); ok {
		id = v.Value
	}
	return c, id
}

func copyItem(item map[string]types.AttributeValue) map[string]types.AttributeValue {
	out := make(map[string]types.AttributeValue, len(item))
	for k, v := range item {
		out[k] = v
	}
	return out
}
