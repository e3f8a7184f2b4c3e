package mongodb

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"fathomupload/internal/document"
	"fathomupload/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

func bulkErr(codes ...int) error {
	bwe := mongo.BulkWriteException{}
	for i, code := range codes {
		bwe.WriteErrors = append(bwe.WriteErrors, mongo.BulkWriteError{
			WriteError: mongo.WriteError{Index: i, Code: code, Message: fmt.Sprintf("code %d", code)},
		})
	}
	return bwe
}

func TestClassifyBulkWriteErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want store.Class
	}{
		{"all duplicates", bulkErr(11000, 11000), store.ClassDuplicateKey},
		{"dotted field", bulkErr(57), store.ClassInvalidFieldName},
		{"dollar field", bulkErr(52), store.ClassInvalidFieldName},
		{"dotted and duplicate", bulkErr(11000, 57), store.ClassInvalidFieldName},
		{"duplicate and other", bulkErr(11000, 121), store.ClassOther},
		{"legacy message", mongo.BulkWriteException{WriteErrors: []mongo.BulkWriteError{
			{WriteError: mongo.WriteError{Code: 2, Message: "key a.b must not contain '.'"}},
		}}, store.ClassInvalidFieldName},
		{"write concern", mongo.BulkWriteException{
			WriteErrors:       []mongo.BulkWriteError{{WriteError: mongo.WriteError{Code: 11000}}},
			WriteConcernError: &mongo.WriteConcernError{Code: 64, Message: "waiting for replication timed out"},
		}, store.ClassOther},
		{"plain error", errors.New("connection refused"), store.ClassOther},
		{"client side dotted", errors.New("invalid key: must not contain '.'"), store.ClassInvalidFieldName},
		{"write exception duplicate", mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000}}}, store.ClassDuplicateKey},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := classify(tc.err)
			assert.Equal(t, tc.want, store.Classify(err))
			var ie *store.InsertError
			require.ErrorAs(t, err, &ie)
			assert.Equal(t, tc.err, ie.Err)
		})
	}
}

func TestInsertedOnError(t *testing.T) {
	assert.Equal(t, 3, insertedOnError(5, bulkErr(11000, 11000)))
	assert.Equal(t, 0, insertedOnError(1, bulkErr(11000)))
	assert.Equal(t, 0, insertedOnError(4, errors.New("boom")))
}

func TestNewClientValidatesConfig(t *testing.T) {
	_, err := NewClient(context.Background(), Config{Database: "test"}, nil)
	assert.Error(t, err)
	_, err = NewClient(context.Background(), Config{URI: "mongodb://localhost:27017"}, nil)
	assert.Error(t, err)
}

func TestInsertBatchAgainstMongo(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := NewClient(ctx, Config{URI: uri, Database: "fathomupload_test", ConnectionTimeoutSec: 2}, nil)
	if err != nil {
		t.Skipf("mongo not available: %v", err)
	}
	defer client.Close(ctx)

	destination := fmt.Sprintf("it_%d", time.Now().UnixNano())
	defer func() { _ = client.db.Collection(destination).Drop(ctx) }()
	require.NoError(t, client.EnsureIndexes(ctx, []string{destination}))

	docs := []document.Document{
		{"uuid": "u1", "objectId": "o1", "ts": time.Now().UTC()},
		{"uuid": "u1", "objectId": "o2", "nested": map[string]any{"k": []any{1.0, "x"}}},
	}
	n, err := client.InsertBatch(ctx, destination, docs)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	docs = append(docs, document.Document{"uuid": "u1", "objectId": "o3"})
	n, err = client.InsertBatch(ctx, destination, docs)
	require.Error(t, err)
	assert.Equal(t, store.ClassDuplicateKey, store.Classify(err))
	assert.Equal(t, 1, n, "unordered insert keeps the new document")

	count, err := client.db.Collection(destination).CountDocuments(ctx, map[string]any{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
}
