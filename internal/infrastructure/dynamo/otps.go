package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/techcreator/otp-service/internal/domain"
	"github.com/techcreator/otp-service/internal/pkg/id"
)

const emailIndex = "email-index"

// OTPRepo provides typed DynamoDB operations for the email_otps table.
// PK: otp_id. GSI email-index: HASH email, RANGE otp_id — ULIDs sort by
// creation time, so a descending query is latest-first and an otp_id
// range condition doubles as a created_at range condition.
type OTPRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewOTPRepo(client *dynamodb.Client, tableName string) *OTPRepo {
	return &OTPRepo{client: client, tableName: tableName}
}

func (r *OTPRepo) Put(ctx context.Context, o *domain.OTP) error {
	item, err := attributevalue.MarshalMap(o)
	if err != nil {
		return fmt.Errorf("marshal otp: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// FindValid returns the most recently created record matching email,
// code and purpose that is still unused and unexpired, or (nil, nil)
// when no such record exists. Expiry is evaluated here rather than in a
// filter expression so the comparison uses real timestamps, not string
// encodings.
func (r *OTPRepo) FindValid(ctx context.Context, email, code string, purpose domain.Purpose) (*domain.OTP, error) {
	now := time.Now().UTC()
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(emailIndex),
		KeyConditionExpression: aws.String("email = :e"),
		FilterExpression:       aws.String("otp_code = :c AND purpose = :p AND is_used = :f"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":e": &types.AttributeValueMemberS{Value: email},
			":c": &types.AttributeValueMemberS{Value: code},
			":p": &types.AttributeValueMemberS{Value: string(purpose)},
			":f": &types.AttributeValueMemberBOOL{Value: false},
		},
		ScanIndexForward: aws.Bool(false), // latest first
	}
	for {
		out, err := r.client.Query(ctx, input)
		if err != nil {
			return nil, err
		}
		var otps []domain.OTP
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &otps); err != nil {
			return nil, err
		}
		for i := range otps {
			if otps[i].Live(now) {
				return &otps[i], nil
			}
		}
		if out.LastEvaluatedKey == nil {
			return nil, nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

// LatestLive returns the most recently created unused, unexpired record
// for (email, purpose) regardless of code, or (nil, nil). Backs the
// status endpoint only — verification always goes through FindValid.
func (r *OTPRepo) LatestLive(ctx context.Context, email string, purpose domain.Purpose) (*domain.OTP, error) {
	now := time.Now().UTC()
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(emailIndex),
		KeyConditionExpression: aws.String("email = :e"),
		FilterExpression:       aws.String("purpose = :p AND is_used = :f"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":e": &types.AttributeValueMemberS{Value: email},
			":p": &types.AttributeValueMemberS{Value: string(purpose)},
			":f": &types.AttributeValueMemberBOOL{Value: false},
		},
		ScanIndexForward: aws.Bool(false),
	}
	for {
		out, err := r.client.Query(ctx, input)
		if err != nil {
			return nil, err
		}
		var otps []domain.OTP
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &otps); err != nil {
			return nil, err
		}
		for i := range otps {
			if otps[i].Live(now) {
				return &otps[i], nil
			}
		}
		if out.LastEvaluatedKey == nil {
			return nil, nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

// MarkUsed flips is_used to true and stamps verified_at, conditioned on
// the record still being unused. Returns whether the update applied:
// false means another verification already consumed the record. The
// condition runs inside DynamoDB, so two racing callers get exactly one
// winner.
func (r *OTPRepo) MarkUsed(ctx context.Context, otpID string) (bool, error) {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey("otp_id", otpID),
		UpdateExpression:    aws.String("SET is_used = :t, verified_at = :v"),
		ConditionExpression: aws.String("is_used = :f"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":t": &types.AttributeValueMemberBOOL{Value: true},
			":f": &types.AttributeValueMemberBOOL{Value: false},
			":v": &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339Nano)},
		},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// CountSince counts records (used or not) created for (email, purpose)
// at or after since. The otp_id range condition stands in for a
// created_at comparison because ULIDs embed their creation time.
func (r *OTPRepo) CountSince(ctx context.Context, email string, purpose domain.Purpose, since time.Time) (int, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(emailIndex),
		KeyConditionExpression: aws.String("email = :e AND otp_id >= :floor"),
		FilterExpression:       aws.String("purpose = :p"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":e":     &types.AttributeValueMemberS{Value: email},
			":floor": &types.AttributeValueMemberS{Value: id.Floor(since)},
			":p":     &types.AttributeValueMemberS{Value: string(purpose)},
		},
		Select: types.SelectCount,
	}
	total := 0
	for {
		out, err := r.client.Query(ctx, input)
		if err != nil {
			return 0, err
		}
		total += int(out.Count)
		if out.LastEvaluatedKey == nil {
			return total, nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

// DeleteExpired removes every record whose expiry has passed, used or
// not, and returns how many were deleted. Idempotent. DynamoDB TTL on
// ttl_epoch eventually does the same, but this gives the admin trigger
// a deterministic answer.
func (r *OTPRepo) DeleteExpired(ctx context.Context) (int, error) {
	now := time.Now().UTC()
	scan := &dynamodb.ScanInput{
		TableName:            aws.String(r.tableName),
		ProjectionExpression: aws.String("otp_id, expires_at"),
	}
	var expired []string
	for {
		out, err := r.client.Scan(ctx, scan)
		if err != nil {
			return 0, err
		}
		var otps []domain.OTP
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &otps); err != nil {
			return 0, err
		}
		for i := range otps {
			if otps[i].ExpiresAt.Before(now) {
				expired = append(expired, otps[i].OTPID)
			}
		}
		if out.LastEvaluatedKey == nil {
			break
		}
		scan.ExclusiveStartKey = out.LastEvaluatedKey
	}

	// BatchWriteItem caps at 25 requests per call.
	for start := 0; start < len(expired); start += 25 {
		end := start + 25
		if end > len(expired) {
			end = len(expired)
		}
		reqs := make([]types.WriteRequest, 0, end-start)
		for _, otpID := range expired[start:end] {
			reqs = append(reqs, types.WriteRequest{
				DeleteRequest: &types.DeleteRequest{Key: strKey("otp_id", otpID)},
			})
		}
		_, err := r.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{r.tableName: reqs},
		})
		if err != nil {
			return 0, err
		}
	}
	return len(expired), nil
}
