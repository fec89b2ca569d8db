/*
# Module: storage/dynamodb.go
DynamoDB repository implementations for submissions, reactions, and rewards.

## Linked Modules
- [storage/repository](./repository.go) - Repository interfaces
- [types/submission](../types/submission.go) - Submission data structures
- [types/reaction](../types/reaction.go) - Reaction data structures

## Tags
storage, dynamodb, persistence, repository

## Exports
SubmissionDynamoDBRepository, ReactionDynamoDBRepository, RewardDynamoDBRepository

<!-- LinkedDoc RDF -->
@prefix code: <https://schema.codedoc.org/> .
<this> a code:Module ;
    code:name "storage/dynamodb.go" ;
    code:description "DynamoDB repository implementations for submissions, reactions, and rewards" ;
    code:linksTo [
        code:name "storage/repository" ;
        code:path "./repository.go" ;
        code:relationship "Repository interfaces"
    ], [
        code:name "types/submission" ;
        code:path "../types/submission.go" ;
        code:relationship "Submission data structures"
    ], [
        code:name "types/reaction" ;
        code:path "../types/reaction.go" ;
        code:relationship "Reaction data structures"
    ] ;
    code:exports :SubmissionDynamoDBRepository, :ReactionDynamoDBRepository, :RewardDynamoDBRepository ;
    code:tags "storage", "dynamodb", "persistence", "repository" .
<!-- End LinkedDoc RDF -->
*/
package storage

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dynamodbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"ctea-newsroom/types"
)

// SubmissionDynamoDBRepository implements SubmissionRepository using
// DynamoDB. Change events are not published here; the DynamoDB Streams
// poller carries them instead.
type SubmissionDynamoDBRepository struct {
	client    *dynamodb.Client
	tableName string
}

// NewSubmissionDynamoDBRepository creates a new DynamoDB submission repository
func NewSubmissionDynamoDBRepository(client *dynamodb.Client, tableName string) *SubmissionDynamoDBRepository {
	return &SubmissionDynamoDBRepository{
		client:    client,
		tableName: tableName,
	}
}

// Save stores a submission in DynamoDB
func (r *SubmissionDynamoDBRepository) Save(ctx context.Context, sub types.Submission) error {
	if r.client == nil {
		return fmt.Errorf("DynamoDB client not initialized")
	}

	item, err := attributevalue.MarshalMap(sub)
	if err != nil {
		return fmt.Errorf("failed to marshal submission: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to save submission to DynamoDB: %w", err)
	}

	log.Printf("💾 Submission saved to DynamoDB: id=%s status=%s", sub.ID, sub.Status)
	return nil
}

// Get retrieves a submission by id
func (r *SubmissionDynamoDBRepository) Get(ctx context.Context, id string) (*types.Submission, error) {
	if r.client == nil {
		return nil, fmt.Errorf("DynamoDB client not initialized")
	}

	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]dynamodbtypes.AttributeValue{
			"id": &dynamodbtypes.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}

	if result.Item == nil {
		return nil, fmt.Errorf("submission not found")
	}

	var sub types.Submission
	if err := attributevalue.UnmarshalMap(result.Item, &sub); err != nil {
		return nil, fmt.Errorf("failed to unmarshal submission: %w", err)
	}

	return &sub, nil
}

// ListApproved scans for approved submissions, orders them per the sort
// mode, and returns at most limit raw records. Ordering happens in memory
// after the scan; the table is small enough that a paginated scan is fine.
func (r *SubmissionDynamoDBRepository) ListApproved(ctx context.Context, sortMode types.SortMode, limit int) ([]types.RawSubmission, error) {
	if r.client == nil {
		return nil, fmt.Errorf("DynamoDB client not initialized")
	}

	subs := make([]types.Submission, 0)
	var lastEvaluatedKey map[string]dynamodbtypes.AttributeValue

	for {
		input := &dynamodb.ScanInput{
			TableName:        aws.String(r.tableName),
			FilterExpression: aws.String("#st = :approved"),
			ExpressionAttributeNames: map[string]string{
				"#st": "status",
			},
			ExpressionAttributeValues: map[string]dynamodbtypes.AttributeValue{
				":approved": &dynamodbtypes.AttributeValueMemberS{Value: string(types.StatusApproved)},
			},
		}
		if lastEvaluatedKey != nil {
			input.ExclusiveStartKey = lastEvaluatedKey
		}

		result, err := r.client.Scan(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to scan submissions: %w", err)
		}

		for _, item := range result.Items {
			var sub types.Submission
			if err := attributevalue.UnmarshalMap(item, &sub); err != nil {
				log.Printf("⚠️  Failed to unmarshal submission: %v", err)
				continue
			}
			subs = append(subs, sub)
		}

		lastEvaluatedKey = result.LastEvaluatedKey
		if lastEvaluatedKey == nil {
			break
		}
	}

	sortSubmissions(subs, sortMode)
	if limit > 0 && len(subs) > limit {
		subs = subs[:limit]
	}

	raws := make([]types.RawSubmission, 0, len(subs))
	for _, sub := range subs {
		raws = append(raws, sub.Raw())
	}

	log.Printf("📰 Loaded %d approved submissions from DynamoDB", len(raws))
	return raws, nil
}

// UpdateStatus transitions a submission's moderation state
func (r *SubmissionDynamoDBRepository) UpdateStatus(ctx context.Context, id string, status types.Status) error {
	if r.client == nil {
		return fmt.Errorf("DynamoDB client not initialized")
	}

	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]dynamodbtypes.AttributeValue{
			"id": &dynamodbtypes.AttributeValueMemberS{Value: id},
		},
		UpdateExpression: aws.String("SET #st = :status"),
		ExpressionAttributeNames: map[string]string{
			"#st": "status",
		},
		ExpressionAttributeValues: map[string]dynamodbtypes.AttributeValue{
			":status": &dynamodbtypes.AttributeValueMemberS{Value: string(status)},
		},
		ConditionExpression: aws.String("attribute_exists(id)"),
	})
	if err != nil {
		return fmt.Errorf("failed to update submission status: %w", err)
	}

	log.Printf("✅ Submission %s moved to %s", id, status)
	return nil
}

// SetRating records AI commentary ratings on a submission
func (r *SubmissionDynamoDBRepository) SetRating(ctx context.Context, id string, spiciness, chaos, relevance int, aiReaction string) error {
	if r.client == nil {
		return fmt.Errorf("DynamoDB client not initialized")
	}

	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]dynamodbtypes.AttributeValue{
			"id": &dynamodbtypes.AttributeValueMemberS{Value: id},
		},
		UpdateExpression: aws.String("SET spiciness = :sp, chaos = :ch, relevance = :rel, ai_reaction = :re, ai_rated = :rated"),
		ExpressionAttributeValues: map[string]dynamodbtypes.AttributeValue{
			":sp":    &dynamodbtypes.AttributeValueMemberN{Value: fmt.Sprintf("%d", spiciness)},
			":ch":    &dynamodbtypes.AttributeValueMemberN{Value: fmt.Sprintf("%d", chaos)},
			":rel":   &dynamodbtypes.AttributeValueMemberN{Value: fmt.Sprintf("%d", relevance)},
			":re":    &dynamodbtypes.AttributeValueMemberS{Value: aiReaction},
			":rated": &dynamodbtypes.AttributeValueMemberBOOL{Value: true},
		},
		ConditionExpression: aws.String("attribute_exists(id)"),
	})
	if err != nil {
		return fmt.Errorf("failed to set submission rating: %w", err)
	}

	return nil
}

// ReactionDynamoDBRepository implements ReactionRepository using DynamoDB.
// The reactions table is keyed by (submission_id, anonymous_token), which
// enforces the one-row-per-pair invariant; the repository also maintains
// the denormalized counters on the submissions table.
type ReactionDynamoDBRepository struct {
	client           *dynamodb.Client
	tableName        string
	submissionsTable string
}

// NewReactionDynamoDBRepository creates a new DynamoDB reaction repository
func NewReactionDynamoDBRepository(client *dynamodb.Client, tableName, submissionsTable string) *ReactionDynamoDBRepository {
	return &ReactionDynamoDBRepository{
		client:           client,
		tableName:        tableName,
		submissionsTable: submissionsTable,
	}
}

// GetByToken retrieves the reaction row for a (submission, token) pair,
// returning nil when none exists
func (r *ReactionDynamoDBRepository) GetByToken(ctx context.Context, submissionID, token string) (*types.ReactionRecord, error) {
	if r.client == nil {
		return nil, fmt.Errorf("DynamoDB client not initialized")
	}

	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]dynamodbtypes.AttributeValue{
			"submission_id":   &dynamodbtypes.AttributeValueMemberS{Value: submissionID},
			"anonymous_token": &dynamodbtypes.AttributeValueMemberS{Value: token},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get reaction: %w", err)
	}

	if result.Item == nil {
		return nil, nil
	}

	var rec types.ReactionRecord
	if err := attributevalue.UnmarshalMap(result.Item, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal reaction: %w", err)
	}

	return &rec, nil
}

// Insert stores a new reaction row and adds one to the matching counter on
// the submission record
func (r *ReactionDynamoDBRepository) Insert(ctx context.Context, rec types.ReactionRecord) error {
	if r.client == nil {
		return fmt.Errorf("DynamoDB client not initialized")
	}

	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal reaction: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(submission_id)"),
	})
	if err != nil {
		return fmt.Errorf("failed to save reaction to DynamoDB: %w", err)
	}

	if err := r.bump(ctx, rec.SubmissionID, rec.ReactionType, nil); err != nil {
		return err
	}

	log.Printf("💾 Reaction saved: submission=%s type=%s", rec.SubmissionID, rec.ReactionType)
	return nil
}

// UpdateType changes the kind on an existing reaction row, moving one
// count from the old kind to the new on the submission record
func (r *ReactionDynamoDBRepository) UpdateType(ctx context.Context, submissionID, token string, rt types.ReactionType) error {
	if r.client == nil {
		return fmt.Errorf("DynamoDB client not initialized")
	}

	existing, err := r.GetByToken(ctx, submissionID, token)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("no reaction to update for submission %s", submissionID)
	}
	if existing.ReactionType == rt {
		return nil
	}

	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]dynamodbtypes.AttributeValue{
			"submission_id":   &dynamodbtypes.AttributeValueMemberS{Value: submissionID},
			"anonymous_token": &dynamodbtypes.AttributeValueMemberS{Value: token},
		},
		UpdateExpression: aws.String("SET reaction_type = :rt"),
		ExpressionAttributeValues: map[string]dynamodbtypes.AttributeValue{
			":rt": &dynamodbtypes.AttributeValueMemberS{Value: string(rt)},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to update reaction type: %w", err)
	}

	old := existing.ReactionType
	return r.bump(ctx, submissionID, rt, &old)
}

// bump adjusts the denormalized counters: +1 on inc, and -1 on dec when a
// kind change moves a count.
func (r *ReactionDynamoDBRepository) bump(ctx context.Context, submissionID string, inc types.ReactionType, dec *types.ReactionType) error {
	expr := "SET reactions.#inc = if_not_exists(reactions.#inc, :zero) + :one"
	names := map[string]string{"#inc": string(inc)}
	values := map[string]dynamodbtypes.AttributeValue{
		":one":  &dynamodbtypes.AttributeValueMemberN{Value: "1"},
		":zero": &dynamodbtypes.AttributeValueMemberN{Value: "0"},
	}
	if dec != nil {
		expr += ", reactions.#dec = if_not_exists(reactions.#dec, :one) - :one"
		names["#dec"] = string(*dec)
	}

	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.submissionsTable),
		Key: map[string]dynamodbtypes.AttributeValue{
			"id": &dynamodbtypes.AttributeValueMemberS{Value: submissionID},
		},
		UpdateExpression:          aws.String(expr),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})
	if err != nil {
		return fmt.Errorf("failed to adjust reaction counters: %w", err)
	}
	return nil
}

// RewardDynamoDBRepository implements RewardRepository using DynamoDB
type RewardDynamoDBRepository struct {
	client    *dynamodb.Client
	tableName string
}

// NewRewardDynamoDBRepository creates a new DynamoDB reward repository
func NewRewardDynamoDBRepository(client *dynamodb.Client, tableName string) *RewardDynamoDBRepository {
	return &RewardDynamoDBRepository{
		client:    client,
		tableName: tableName,
	}
}

// IncrementReactionsGiven adds one to the identity's progression counter
func (r *RewardDynamoDBRepository) IncrementReactionsGiven(ctx context.Context, token string) error {
	if r.client == nil {
		return fmt.Errorf("DynamoDB client not initialized")
	}

	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]dynamodbtypes.AttributeValue{
			"anonymous_token": &dynamodbtypes.AttributeValueMemberS{Value: token},
		},
		UpdateExpression: aws.String("ADD reactions_given :one"),
		ExpressionAttributeValues: map[string]dynamodbtypes.AttributeValue{
			":one": &dynamodbtypes.AttributeValueMemberN{Value: "1"},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to increment reactions given: %w", err)
	}
	return nil
}

// ReactionsGiven returns the identity's progression counter
func (r *RewardDynamoDBRepository) ReactionsGiven(ctx context.Context, token string) (int, error) {
	if r.client == nil {
		return 0, fmt.Errorf("DynamoDB client not initialized")
	}

	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]dynamodbtypes.AttributeValue{
			"anonymous_token": &dynamodbtypes.AttributeValueMemberS{Value: token},
		},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to get progression: %w", err)
	}
	if result.Item == nil {
		return 0, nil
	}

	var row struct {
		ReactionsGiven int `dynamodbav:"reactions_given"`
	}
	if err := attributevalue.UnmarshalMap(result.Item, &row); err != nil {
		return 0, fmt.Errorf("failed to unmarshal progression: %w", err)
	}
	return row.ReactionsGiven, nil
}
