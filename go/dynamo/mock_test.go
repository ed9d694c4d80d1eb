package dynamo

import (
	"github.com/eventro/eventro/go/dynamo/dynamotest"
)

func testStore() (*Store, *dynamotest.Client) {
	db := dynamotest.New()
	return NewWithClient(db, "eventro-test"), db
}
