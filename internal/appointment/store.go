package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"github.com/medibook/appointment-saga/internal/aws"
	"github.com/medibook/appointment-saga/internal/faults"
)

// InsuredIDIndex is the GSI backing the secondary lookup by insuredId.
const InsuredIDIndex = "insuredId-index"

// Store encapsulates operations on the appointments table. It is the only
// writer of appointment lifecycle state.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
}

// NewStore creates a new appointment Store.
func NewStore(client aws.DynamoDBAPI, tableName string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
	}
}

// Put persists a full appointment record. Used by intake to write the
// initial Pending row.
func (s *Store) Put(ctx context.Context, a *Appointment) error {
	item, err := attributevalue.MarshalMap(a)
	if err != nil {
		return faults.Invalid("marshal appointment %s: %v", a.ID, err)
	}
	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName: &s.tableName,
		Item:      item,
	})
	if err != nil {
		return faults.Transient(err, "put appointment %s", a.ID)
	}
	return nil
}

// Get fetches an appointment by id. Returns (nil, nil) if not found.
func (s *Store) Get(ctx context.Context, id string) (*Appointment, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return nil, faults.Transient(err, "get appointment %s", id)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var snap Appointment
	if err := attributevalue.UnmarshalMap(out.Item, &snap); err != nil {
		return nil, faults.Invalid("unmarshal appointment %s: %v", id, err)
	}
	return FromSnapshot(snap)
}

// QueryByInsuredID lists all appointments for an insured via the GSI.
// An empty result set is a valid answer, not an error.
func (s *Store) QueryByInsuredID(ctx context.Context, insuredID string) ([]Appointment, error) {
	keyExpr := "insuredId = :insuredId"
	out, err := s.client.Query(ctx, &dyn.QueryInput{
		TableName:              &s.tableName,
		IndexName:              awsString(InsuredIDIndex),
		KeyConditionExpression: &keyExpr,
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":insuredId": &types.AttributeValueMemberS{Value: insuredID},
		},
	})
	if err != nil {
		return nil, faults.Transient(err, "query appointments for insured %s", insuredID)
	}

	items := make([]Appointment, 0, len(out.Items))
	for _, raw := range out.Items {
		var snap Appointment
		if err := attributevalue.UnmarshalMap(raw, &snap); err != nil {
			return nil, faults.Invalid("unmarshal appointment row: %v", err)
		}
		a, err := FromSnapshot(snap)
		if err != nil {
			return nil, err
		}
		items = append(items, *a)
	}
	return items, nil
}

// Update overwrites status and updatedAt for an existing record. There is no
// version check: terminal transitions are idempotent, so racing writers for
// the same id converge. The attribute_exists guard keeps an update for an
// unknown id from materializing a phantom row.
func (s *Store) Update(ctx context.Context, a *Appointment) (*Appointment, error) {
	out, err := s.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: a.ID},
		},
		UpdateExpression:         awsString("SET #status = :status, updatedAt = :updatedAt"),
		ExpressionAttributeNames: map[string]string{"#status": "status"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status":    &types.AttributeValueMemberS{Value: a.Status},
			":updatedAt": &types.AttributeValueMemberS{Value: a.UpdatedAt.UTC().Format(time.RFC3339Nano)},
		},
		ConditionExpression: awsString("attribute_exists(id)"),
		ReturnValues:        types.ReturnValueAllNew,
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return nil, faults.NotFound("Appointment with id %s not found", a.ID)
		}
		return nil, faults.Transient(err, "update appointment %s", a.ID)
	}

	var snap Appointment
	if err := attributevalue.UnmarshalMap(out.Attributes, &snap); err != nil {
		return nil, faults.Invalid("unmarshal updated appointment %s: %v", a.ID, err)
	}
	return FromSnapshot(snap)
}

func isConditionalCheckFailed(err error) bool {
	var cfe *types.ConditionalCheckFailedException
	if errors.As(err, &cfe) {
		return true
	}
	var ae smithy.APIError
	return errors.As(err, &ae) && ae.ErrorCode() == "ConditionalCheckFailedException"
}

func awsString(s string) *string { return &s }
