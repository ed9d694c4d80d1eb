package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoDB caps BatchGetItem at 100 keys per call.
const batchGetChunk = 100

// batchGetRetries bounds how often unprocessed keys are re-requested before
// the whole read is failed.
const batchGetRetries = 5

func detailsKey(pk string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"pk": &types.AttributeValueMemberS{Value: pk},
		"sk": &types.AttributeValueMemberS{Value: DetailsSK},
	}
}

// batchGet fetches the given keys in chunks, re-requesting any keys the store
// reports as unprocessed until the read is fully satisfied or the retry
// budget runs out. Absent keys are simply missing from the result.
func (s *Store) batchGet(ctx context.Context, keys []map[string]types.AttributeValue) ([]map[string]types.AttributeValue, error) {
	var items []map[string]types.AttributeValue
	for start := 0; start < len(keys); start += batchGetChunk {
		end := min(start+batchGetChunk, len(keys))
		req := map[string]types.KeysAndAttributes{
			s.table: {Keys: keys[start:end]},
		}
		for attempt := 0; ; attempt++ {
			out, err := s.db.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{RequestItems: req})
			if err != nil {
				return nil, fmt.Errorf("batch get: %w", err)
			}
			items = append(items, out.Responses[s.table]...)
			if len(out.UnprocessedKeys) == 0 {
				break
			}
			if attempt == batchGetRetries {
				return nil, fmt.Errorf("batch get: unprocessed keys after %d retries", batchGetRetries)
			}
			req = out.UnprocessedKeys
		}
	}
	return items, nil
}
