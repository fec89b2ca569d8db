/*
# Module: storage/streams.go
DynamoDB Streams poller that relays table change records into the broker.

## Linked Modules
- [storage/dynamodb](./dynamodb.go) - DynamoDB repositories
- [feed/events](../feed/events.go) - Change events and broker

## Tags
storage, dynamodb, streams, change-stream

## Exports
DynamoStreamsPoller, NewDynamoStreamsPoller

<!-- LinkedDoc RDF -->
@prefix code: <https://schema.codedoc.org/> .
<this> a code:Module ;
    code:name "storage/streams.go" ;
    code:description "DynamoDB Streams poller that relays table change records into the broker" ;
    code:linksTo [
        code:name "storage/dynamodb" ;
        code:path "./dynamodb.go" ;
        code:relationship "DynamoDB repositories"
    ], [
        code:name "feed/events" ;
        code:path "../feed/events.go" ;
        code:relationship "Change events and broker"
    ] ;
    code:exports :DynamoStreamsPoller, :NewDynamoStreamsPoller ;
    code:tags "storage", "dynamodb", "streams", "change-stream" .
<!-- End LinkedDoc RDF -->
*/
package storage

import (
	"context"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodbstreams"
	streamtypes "github.com/aws/aws-sdk-go-v2/service/dynamodbstreams/types"

	"ctea-newsroom/feed"
	"ctea-newsroom/types"
)

const streamsPollInterval = 2 * time.Second

// DynamoStreamsPoller tails the submissions table's stream and republishes
// each record as a change event. DynamoDB writes don't publish locally, so
// the stream is the single source of change events in DynamoDB mode and
// every instance sees the same sequence.
type DynamoStreamsPoller struct {
	client    *dynamodbstreams.Client
	streamArn string
	publisher Publisher
}

// NewDynamoStreamsPoller creates a poller for the given stream ARN.
func NewDynamoStreamsPoller(client *dynamodbstreams.Client, streamArn string, publisher Publisher) *DynamoStreamsPoller {
	return &DynamoStreamsPoller{
		client:    client,
		streamArn: streamArn,
		publisher: publisher,
	}
}

// Run blocks until ctx is cancelled, tailing every open shard from LATEST.
// Intended to run in its own goroutine.
func (p *DynamoStreamsPoller) Run(ctx context.Context) {
	iterators := make(map[string]string)

	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(streamsPollInterval):
		}

		if err := p.refreshShards(ctx, iterators); err != nil {
			log.Printf("⚠️  Failed to describe stream: %v", err)
			continue
		}

		for shardID, iterator := range iterators {
			next, err := p.drainShard(ctx, iterator)
			if err != nil {
				log.Printf("⚠️  Failed to read stream shard %s: %v", shardID, err)
				delete(iterators, shardID)
				continue
			}
			if next == "" {
				// Shard closed.
				delete(iterators, shardID)
				continue
			}
			iterators[shardID] = next
		}
	}
}

func (p *DynamoStreamsPoller) refreshShards(ctx context.Context, iterators map[string]string) error {
	desc, err := p.client.DescribeStream(ctx, &dynamodbstreams.DescribeStreamInput{
		StreamArn: aws.String(p.streamArn),
	})
	if err != nil {
		return err
	}

	for _, shard := range desc.StreamDescription.Shards {
		shardID := aws.ToString(shard.ShardId)
		if _, known := iterators[shardID]; known {
			continue
		}

		out, err := p.client.GetShardIterator(ctx, &dynamodbstreams.GetShardIteratorInput{
			StreamArn:         aws.String(p.streamArn),
			ShardId:           shard.ShardId,
			ShardIteratorType: streamtypes.ShardIteratorTypeLatest,
		})
		if err != nil {
			log.Printf("⚠️  Failed to open stream shard %s: %v", shardID, err)
			continue
		}
		iterators[shardID] = aws.ToString(out.ShardIterator)
	}
	return nil
}

// drainShard reads one batch from the iterator and publishes its records.
// Returns the next iterator, or "" when the shard is closed.
func (p *DynamoStreamsPoller) drainShard(ctx context.Context, iterator string) (string, error) {
	out, err := p.client.GetRecords(ctx, &dynamodbstreams.GetRecordsInput{
		ShardIterator: aws.String(iterator),
	})
	if err != nil {
		return "", err
	}

	for _, record := range out.Records {
		ev, ok := p.toEvent(record)
		if !ok {
			continue
		}
		p.publisher.Publish(ev)
	}

	return aws.ToString(out.NextShardIterator), nil
}

func (p *DynamoStreamsPoller) toEvent(record streamtypes.Record) (feed.ChangeEvent, bool) {
	var evType feed.EventType
	switch record.EventName {
	case streamtypes.OperationTypeInsert:
		evType = feed.EventInsert
	case streamtypes.OperationTypeModify:
		evType = feed.EventUpdate
	default:
		return feed.ChangeEvent{}, false
	}

	if record.Dynamodb == nil || record.Dynamodb.NewImage == nil {
		return feed.ChangeEvent{}, false
	}

	image, err := attributevalue.FromDynamoDBStreamsMap(record.Dynamodb.NewImage)
	if err != nil {
		log.Printf("⚠️  Failed to convert stream image: %v", err)
		return feed.ChangeEvent{}, false
	}

	var sub types.Submission
	if err := attributevalue.UnmarshalMap(image, &sub); err != nil {
		log.Printf("⚠️  Failed to unmarshal stream record: %v", err)
		return feed.ChangeEvent{}, false
	}

	return feed.ChangeEvent{Type: evType, Record: sub.Raw()}, true
}
