// Package dynamotest provides an in-memory DynamoDB client for unit tests.
// It understands the subset of expressions this repository issues:
// begins_with key conditions, attribute_exists / attribute_not_exists /
// equality / NOT contains(...) condition expressions, SET updates including
// list_append, and transactional writes with per-item cancellation reasons.
package dynamotest

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Client is the fake store. Safe for concurrent use, like the real client.
type Client struct {
	mu    sync.Mutex
	items map[string]map[string]types.AttributeValue // key: "pk\x00sk"

	transactErr     error
	unprocessedOnce bool
}

func New() *Client {
	return &Client{items: make(map[string]map[string]types.AttributeValue)}
}

// FailNextTransact makes the next TransactWriteItems call fail with err
// before any item is applied. Used to simulate mid-write store failures.
func (m *Client) FailNextTransact(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactErr = err
}

// LoseNextBatchKeys makes the next BatchGetItem return half of the requested
// keys as unprocessed, exercising the caller's retry path.
func (m *Client) LoseNextBatchKeys() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unprocessedOnce = true
}

// CountItems returns how many records share a partition key.
func (m *Client) CountItems(pk string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for key := range m.items {
		if strings.HasPrefix(key, pk+"\x00") {
			n++
		}
	}
	return n
}

// Keys returns every stored "pk/sk" pair, sorted, for atomicity assertions.
func (m *Client) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.items))
	for key := range m.items {
		keys = append(keys, strings.ReplaceAll(key, "\x00", "/"))
	}
	sort.Strings(keys)
	return keys
}

// Attr returns one attribute of a stored record, or nil if the record or
// attribute is absent.
func (m *Client) Attr(pk, sk, attr string) types.AttributeValue {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[itemKey(pk, sk)]
	if !ok {
		return nil
	}
	return item[attr]
}

// RemoveAttr deletes one attribute from a stored record, for corrupt-record
// tests.
func (m *Client) RemoveAttr(pk, sk, attr string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if item, ok := m.items[itemKey(pk, sk)]; ok {
		delete(item, attr)
	}
}

func itemKey(pk, sk string) string { return pk + "\x00" + sk }

func strVal(av types.AttributeValue) string {
	if s, ok := av.(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func copyItem(item map[string]types.AttributeValue) map[string]types.AttributeValue {
	cp := make(map[string]types.AttributeValue, len(item))
	for k, v := range item {
		cp[k] = v
	}
	return cp
}

var seatCondRe = regexp.MustCompile(`NOT contains\(#seats, (:s\d+)\)`)

// checkCondition evaluates a condition expression against the current item
// (nil if absent). Returns false when the condition fails.
func (m *Client) checkCondition(expr string, item map[string]types.AttributeValue,
	names map[string]string, values map[string]types.AttributeValue) bool {

	if expr == "" {
		return true
	}
	if strings.Contains(expr, "attribute_not_exists(pk)") && item != nil {
		return false
	}
	if strings.Contains(expr, "attribute_exists(pk)") && item == nil {
		return false
	}
	if strings.Contains(expr, "#host = :host") {
		if item == nil {
			return false
		}
		attr := names["#host"]
		if strVal(item[attr]) != strVal(values[":host"]) {
			return false
		}
	}
	for _, match := range seatCondRe.FindAllStringSubmatch(expr, -1) {
		if item == nil {
			return false
		}
		seat := strVal(values[match[1]])
		attr := names["#seats"]
		if list, ok := item[attr].(*types.AttributeValueMemberL); ok {
			for _, v := range list.Value {
				if strVal(v) == seat {
					return false
				}
			}
		}
	}
	return true
}

// applyUpdate applies a SET update expression to an item, creating it when
// absent (DynamoDB upserts unless a condition prevents it).
func applyUpdate(item map[string]types.AttributeValue, expr string,
	names map[string]string, values map[string]types.AttributeValue) map[string]types.AttributeValue {

	if item == nil {
		item = map[string]types.AttributeValue{}
	}
	expr = strings.TrimPrefix(expr, "SET ")
	for _, part := range strings.Split(expr, ", ") {
		sides := strings.SplitN(part, " = ", 2)
		if len(sides) != 2 {
			continue
		}
		nameRef := strings.TrimSpace(sides[0])
		valRef := strings.TrimSpace(sides[1])
		attr := nameRef
		if resolved, ok := names[nameRef]; ok {
			attr = resolved
		}

		if strings.HasPrefix(valRef, "list_append(") {
			var existing []types.AttributeValue
			if list, ok := item[attr].(*types.AttributeValueMemberL); ok {
				existing = list.Value
			}
			appended := existing
			if add, ok := values[":new"].(*types.AttributeValueMemberL); ok {
				appended = append(append([]types.AttributeValue{}, existing...), add.Value...)
			}
			item[attr] = &types.AttributeValueMemberL{Value: appended}
			continue
		}
		if val, ok := values[valRef]; ok {
			item[attr] = val
		}
	}
	return item
}

func (m *Client) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := itemKey(strVal(in.Item["pk"]), strVal(in.Item["sk"]))
	expr := aws.ToString(in.ConditionExpression)
	if !m.checkCondition(expr, m.items[key], in.ExpressionAttributeNames, in.ExpressionAttributeValues) {
		return nil, &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
	}
	m.items[key] = copyItem(in.Item)
	return &dynamodb.PutItemOutput{}, nil
}

func (m *Client) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[itemKey(strVal(in.Key["pk"]), strVal(in.Key["sk"]))]
	if !ok {
		return &dynamodb.GetItemOutput{}, nil
	}
	return &dynamodb.GetItemOutput{Item: copyItem(item)}, nil
}

func (m *Client) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := itemKey(strVal(in.Key["pk"]), strVal(in.Key["sk"]))
	expr := aws.ToString(in.ConditionExpression)
	if !m.checkCondition(expr, m.items[key], in.ExpressionAttributeNames, in.ExpressionAttributeValues) {
		return nil, &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
	}
	delete(m.items, key)
	return &dynamodb.DeleteItemOutput{}, nil
}

func (m *Client) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pkVal := strVal(in.ExpressionAttributeValues[":pk"])
	prefixVal := ""
	if v, ok := in.ExpressionAttributeValues[":prefix"]; ok {
		prefixVal = strVal(v)
	}
	expr := aws.ToString(in.KeyConditionExpression)

	var matched []map[string]types.AttributeValue
	for _, item := range m.items {
		if strVal(item["pk"]) != pkVal {
			continue
		}
		if strings.Contains(expr, "begins_with") && !strings.HasPrefix(strVal(item["sk"]), prefixVal) {
			continue
		}
		matched = append(matched, copyItem(item))
	}

	sort.Slice(matched, func(i, j int) bool {
		a, b := strVal(matched[i]["sk"]), strVal(matched[j]["sk"])
		if in.ScanIndexForward != nil && !*in.ScanIndexForward {
			return a > b
		}
		return a < b
	})

	if in.Limit != nil && int(*in.Limit) < len(matched) {
		matched = matched[:*in.Limit]
	}
	return &dynamodb.QueryOutput{Items: matched}, nil
}

func (m *Client) UpdateItem(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := itemKey(strVal(in.Key["pk"]), strVal(in.Key["sk"]))
	item := m.items[key]
	expr := aws.ToString(in.ConditionExpression)
	if !m.checkCondition(expr, item, in.ExpressionAttributeNames, in.ExpressionAttributeValues) {
		return nil, &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
	}
	m.items[key] = applyUpdate(item, aws.ToString(in.UpdateExpression), in.ExpressionAttributeNames, in.ExpressionAttributeValues)
	return &dynamodb.UpdateItemOutput{}, nil
}

func (m *Client) BatchGetItem(_ context.Context, in *dynamodb.BatchGetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.BatchGetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := &dynamodb.BatchGetItemOutput{
		Responses:       map[string][]map[string]types.AttributeValue{},
		UnprocessedKeys: map[string]types.KeysAndAttributes{},
	}
	for table, req := range in.RequestItems {
		keys := req.Keys
		if m.unprocessedOnce && len(keys) > 1 {
			m.unprocessedOnce = false
			half := len(keys) / 2
			out.UnprocessedKeys[table] = types.KeysAndAttributes{Keys: keys[half:]}
			keys = keys[:half]
		}
		for _, key := range keys {
			if item, ok := m.items[itemKey(strVal(key["pk"]), strVal(key["sk"]))]; ok {
				out.Responses[table] = append(out.Responses[table], copyItem(item))
			}
		}
	}
	return out, nil
}

func (m *Client) TransactWriteItems(_ context.Context, in *dynamodb.TransactWriteItemsInput, _ ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.transactErr != nil {
		err := m.transactErr
		m.transactErr = nil
		return nil, err
	}

	// First pass: evaluate every condition; any failure cancels the whole
	// transaction with per-item reasons and no effects.
	reasons := make([]types.CancellationReason, len(in.TransactItems))
	failed := false
	for i, tw := range in.TransactItems {
		var (
			key   string
			expr  string
			names map[string]string
			vals  map[string]types.AttributeValue
		)
		switch {
		case tw.Put != nil:
			key = itemKey(strVal(tw.Put.Item["pk"]), strVal(tw.Put.Item["sk"]))
			expr = aws.ToString(tw.Put.ConditionExpression)
			names, vals = tw.Put.ExpressionAttributeNames, tw.Put.ExpressionAttributeValues
		case tw.Update != nil:
			key = itemKey(strVal(tw.Update.Key["pk"]), strVal(tw.Update.Key["sk"]))
			expr = aws.ToString(tw.Update.ConditionExpression)
			names, vals = tw.Update.ExpressionAttributeNames, tw.Update.ExpressionAttributeValues
		case tw.Delete != nil:
			key = itemKey(strVal(tw.Delete.Key["pk"]), strVal(tw.Delete.Key["sk"]))
			expr = aws.ToString(tw.Delete.ConditionExpression)
			names, vals = tw.Delete.ExpressionAttributeNames, tw.Delete.ExpressionAttributeValues
		}
		if m.checkCondition(expr, m.items[key], names, vals) {
			reasons[i] = types.CancellationReason{Code: aws.String("None")}
		} else {
			reasons[i] = types.CancellationReason{Code: aws.String("ConditionalCheckFailed")}
			failed = true
		}
	}
	if failed {
		return nil, &types.TransactionCanceledException{
			Message:             aws.String("Transaction cancelled"),
			CancellationReasons: reasons,
		}
	}

	// Second pass: apply.
	for _, tw := range in.TransactItems {
		switch {
		case tw.Put != nil:
			key := itemKey(strVal(tw.Put.Item["pk"]), strVal(tw.Put.Item["sk"]))
			m.items[key] = copyItem(tw.Put.Item)
		case tw.Update != nil:
			key := itemKey(strVal(tw.Update.Key["pk"]), strVal(tw.Update.Key["sk"]))
			item := applyUpdate(m.items[key], aws.ToString(tw.Update.UpdateExpression),
				tw.Update.ExpressionAttributeNames, tw.Update.ExpressionAttributeValues)
			if item["pk"] == nil {
				item["pk"] = tw.Update.Key["pk"]
				item["sk"] = tw.Update.Key["sk"]
			}
			m.items[key] = item
		case tw.Delete != nil:
			delete(m.items, itemKey(strVal(tw.Delete.Key["pk"]), strVal(tw.Delete.Key["sk"])))
		}
	}
	return &dynamodb.TransactWriteItemsOutput{}, nil
}
