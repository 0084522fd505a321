package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DDBClient is the subset of the DynamoDB API the catalog uses.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

var _ DDBClient = (*dynamodb.Client)(nil)

const (
	attrTraceURI  = "trace_uri"
	attrVersion   = "version"
	attrCreatedAt = "created_at"
	attrCodec     = "codec"
	attrReport    = "report"

	// maxAttempts bounds how often Record retries a lost version race.
	maxAttempts = 3
)

// DynamoDB records runs in a DynamoDB table.
type DynamoDB struct {
	client DDBClient
	table  string
	now    func() time.Time
}

// Option configures New.
type Option func(*options)

type options struct {
	region    string
	endpoint  string
	accessKey string
	secretKey string
}

// WithRegion sets the AWS region.
func WithRegion(region string) Option {
	return func(o *options) { o.region = region }
}

// WithEndpoint points the client at a DynamoDB-compatible endpoint.
func WithEndpoint(endpoint string) Option {
	return func(o *options) { o.endpoint = endpoint }
}

// WithStaticCredentials uses fixed keys, e.g. for DynamoDB Local.
func WithStaticCredentials(accessKey, secretKey string) Option {
	return func(o *options) {
		o.accessKey = accessKey
		o.secretKey = secretKey
	}
}

// New creates a catalog using the default AWS credential chain.
func New(ctx context.Context, table string, optFns ...Option) (*DynamoDB, error) {
	var o options
	for _, fn := range optFns {
		fn(&o)
	}

	var loadOpts []func(*config.LoadOptions) error
	if o.region != "" {
		loadOpts = append(loadOpts, config.WithRegion(o.region))
	}
	if o.accessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(o.accessKey, o.secretKey, "")))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("catalog: load aws config: %w", err)
	}

	client := dynamodb.NewFromConfig(cfg, func(do *dynamodb.Options) {
		if o.endpoint != "" {
			do.BaseEndpoint = aws.String(o.endpoint)
		}
	})
	return NewDynamoDB(client, table), nil
}

// NewDynamoDB wraps an existing client.
func NewDynamoDB(client DDBClient, table string) *DynamoDB {
	return &DynamoDB{client: client, table: table, now: time.Now}
}

// Record claims the next version for traceURI with a conditional put.
func (d *DynamoDB) Record(ctx context.Context, traceURI, codec string, report []byte) (uint64, error) {
	for range maxAttempts {
		latest, err := d.latestVersion(ctx, traceURI)
		if err != nil {
			return 0, err
		}
		version := latest + 1

		_, err = d.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName: aws.String(d.table),
			Item: map[string]types.AttributeValue{
				attrTraceURI:  &types.AttributeValueMemberS{Value: traceURI},
				attrVersion:   &types.AttributeValueMemberN{Value: strconv.FormatUint(version, 10)},
				attrCreatedAt: &types.AttributeValueMemberS{Value: d.now().UTC().Format(time.RFC3339Nano)},
				attrCodec:     &types.AttributeValueMemberS{Value: codec},
				attrReport:    &types.AttributeValueMemberB{Value: report},
			},
			ConditionExpression: aws.String("attribute_not_exists(version)"),
		})
		if err == nil {
			return version, nil
		}

		var condErr *types.ConditionalCheckFailedException
		if !errors.As(err, &condErr) {
			return 0, fmt.Errorf("catalog: put run: %w", err)
		}
	}
	return 0, ErrConcurrentRun
}

func (d *DynamoDB) latestVersion(ctx context.Context, traceURI string) (uint64, error) {
	entries, err := d.query(ctx, traceURI, 1)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, nil
	}
	return entries[0].Version, nil
}

// History returns the newest runs first.
func (d *DynamoDB) History(ctx context.Context, traceURI string, limit int) ([]Entry, error) {
	return d.query(ctx, traceURI, limit)
}

func (d *DynamoDB) query(ctx context.Context, traceURI string, limit int) ([]Entry, error) {
	in := &dynamodb.QueryInput{
		TableName:              aws.String(d.table),
		KeyConditionExpression: aws.String("trace_uri = :uri"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uri": &types.AttributeValueMemberS{Value: traceURI},
		},
		ScanIndexForward: aws.Bool(false),
	}
	if limit > 0 {
		in.Limit = aws.Int32(int32(limit))
	}

	resp, err := d.client.Query(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("catalog: query runs: %w", err)
	}

	out := make([]Entry, 0, len(resp.Items))
	for _, item := range resp.Items {
		e, err := decodeEntry(item)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func decodeEntry(item map[string]types.AttributeValue) (Entry, error) {
	var e Entry

	uri, ok := item[attrTraceURI].(*types.AttributeValueMemberS)
	if !ok {
		return e, errors.New("catalog: invalid trace_uri attribute")
	}
	e.TraceURI = uri.Value

	v, ok := item[attrVersion].(*types.AttributeValueMemberN)
	if !ok {
		return e, errors.New("catalog: invalid version attribute")
	}
	version, err := strconv.ParseUint(v.Value, 10, 64)
	if err != nil {
		return e, fmt.Errorf("catalog: parse version: %w", err)
	}
	e.Version = version

	if ts, ok := item[attrCreatedAt].(*types.AttributeValueMemberS); ok {
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, ts.Value)
	}
	if c, ok := item[attrCodec].(*types.AttributeValueMemberS); ok {
		e.Codec = c.Value
	}
	if r, ok := item[attrReport].(*types.AttributeValueMemberB); ok {
		e.Report = r.Value
	}
	return e, nil
}

var _ Recorder = (*DynamoDB)(nil)
