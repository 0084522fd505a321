package catalog

import (
	"context"
	"errors"
	"os"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// fakeDDB is an in-memory table honoring the version condition.
type fakeDDB struct {
	mu    sync.Mutex
	items map[string]map[string]types.AttributeValue
}

func newFakeDDB() *fakeDDB {
	return &fakeDDB{items: make(map[string]map[string]types.AttributeValue)}
}

func itemKey(item map[string]types.AttributeValue) string {
	return item[attrTraceURI].(*types.AttributeValueMemberS).Value + ":" +
		item[attrVersion].(*types.AttributeValueMemberN).Value
}

func (f *fakeDDB) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	k := itemKey(in.Item)
	if _, exists := f.items[k]; exists && aws.ToString(in.ConditionExpression) == "attribute_not_exists(version)" {
		return nil, &types.ConditionalCheckFailedException{Message: aws.String("condition failed")}
	}
	f.items[k] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDDB) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	uri := in.ExpressionAttributeValues[":uri"].(*types.AttributeValueMemberS).Value
	var items []map[string]types.AttributeValue
	for _, it := range f.items {
		if it[attrTraceURI].(*types.AttributeValueMemberS).Value == uri {
			items = append(items, it)
		}
	}
	version := func(it map[string]types.AttributeValue) uint64 {
		v, _ := strconv.ParseUint(it[attrVersion].(*types.AttributeValueMemberN).Value, 10, 64)
		return v
	}
	sort.Slice(items, func(i, j int) bool { return version(items[i]) > version(items[j]) })
	if in.Limit != nil && int(*in.Limit) < len(items) {
		items = items[:*in.Limit]
	}
	return &dynamodb.QueryOutput{Items: items}, nil
}

func TestDynamoDB_RecordAndHistory(t *testing.T) {
	ctx := context.Background()
	d := NewDynamoDB(newFakeDDB(), "runs")
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return fixed }

	for i := 1; i <= 3; i++ {
		v, err := d.Record(ctx, "s3://traces/a.bin", "go-json", []byte(`{"run":`+strconv.Itoa(i)+`}`))
		require.NoError(t, err)
		assert.Equal(t, uint64(i), v)
	}
	v, err := d.Record(ctx, "s3://traces/b.bin", "json", []byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), v)

	hist, err := d.History(ctx, "s3://traces/a.bin", 2)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, uint64(3), hist[0].Version)
	assert.Equal(t, `{"run":3}`, string(hist[0].Report))
	assert.Equal(t, fixed, hist[0].CreatedAt)
	assert.Equal(t, "go-json", hist[0].Codec)
}

func TestDynamoDB_ConcurrentRecords(t *testing.T) {
	ctx := context.Background()
	d := NewDynamoDB(newFakeDDB(), "runs")

	const n = 3
	versions := make([]uint64, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := d.Record(ctx, "trace", "go-json", nil)
			if err == nil {
				versions[i] = v
			}
		}()
	}
	wg.Wait()

	seen := map[uint64]bool{}
	for _, v := range versions {
		if v == 0 {
			continue
		}
		assert.False(t, seen[v], "version %d claimed twice", v)
		seen[v] = true
	}
}

type mockDDB struct{ mock.Mock }

func (m *mockDDB) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*dynamodb.PutItemOutput)
	return out, args.Error(1)
}

func (m *mockDDB) Query(ctx context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*dynamodb.QueryOutput)
	return out, args.Error(1)
}

func TestDynamoDB_LostRace(t *testing.T) {
	m := &mockDDB{}
	m.On("Query", mock.Anything, mock.Anything).Return(&dynamodb.QueryOutput{}, nil)
	m.On("PutItem", mock.Anything, mock.Anything).
		Return(nil, &types.ConditionalCheckFailedException{Message: aws.String("taken")})

	_, err := NewDynamoDB(m, "runs").Record(context.Background(), "trace", "go-json", nil)
	require.ErrorIs(t, err, ErrConcurrentRun)
	m.AssertNumberOfCalls(t, "PutItem", maxAttempts)
}

func TestDynamoDB_Errors(t *testing.T) {
	boom := errors.New("boom")

	m := &mockDDB{}
	m.On("Query", mock.Anything, mock.Anything).Return(nil, boom)
	_, err := NewDynamoDB(m, "runs").Record(context.Background(), "trace", "go-json", nil)
	require.ErrorIs(t, err, boom)

	m = &mockDDB{}
	m.On("Query", mock.Anything, mock.Anything).Return(&dynamodb.QueryOutput{}, nil)
	m.On("PutItem", mock.Anything, mock.Anything).Return(nil, boom)
	_, err = NewDynamoDB(m, "runs").Record(context.Background(), "trace", "go-json", nil)
	require.ErrorIs(t, err, boom)

	m = &mockDDB{}
	m.On("Query", mock.Anything, mock.Anything).Return(&dynamodb.QueryOutput{
		Items: []map[string]types.AttributeValue{{attrTraceURI: &types.AttributeValueMemberS{Value: "trace"}}},
	}, nil)
	_, err = NewDynamoDB(m, "runs").History(context.Background(), "trace", 0)
	require.Error(t, err)
}

func TestNop(t *testing.T) {
	v, err := Nop{}.Record(context.Background(), "t", "json", nil)
	require.NoError(t, err)
	assert.Zero(t, v)
}

func TestIntegration_DynamoDB(t *testing.T) {
	table := os.Getenv("PACT_CATALOG_TABLE")
	if table == "" {
		t.Skip("PACT_CATALOG_TABLE not set")
	}
	ctx := context.Background()
	d, err := New(ctx, table, WithEndpoint(os.Getenv("PACT_DYNAMODB_ENDPOINT")))
	require.NoError(t, err)

	v, err := d.Record(ctx, "integration://"+t.Name(), "go-json", []byte(`{}`))
	require.NoError(t, err)
	assert.NotZero(t, v)
}
