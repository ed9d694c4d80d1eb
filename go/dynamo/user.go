package dynamo

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleHost     Role = "host"
	RoleCustomer Role = "customer"
)

type User struct {
	PK          string `dynamodbav:"pk" json:"-"`
	SK          string `dynamodbav:"sk" json:"-"`
	UserID      string `dynamodbav:"-" json:"user_id"`
	Username    string `dynamodbav:"username" json:"username"`
	Email       string `dynamodbav:"email" json:"email"`
	PhoneNumber string `dynamodbav:"phone_number" json:"phone_number"`
	Password    string `dynamodbav:"password" json:"-"`
	Role        Role   `dynamodbav:"role" json:"role"`
	IsBlocked   bool   `dynamodbav:"is_blocked" json:"is_blocked"`
}

// emailIndex maps an email back to its user id. It lives at a fixed sort key
// so the conditional put in CreateUser contends on the email alone; keying it
// by user id would let two signups with fresh ids both pass the condition.
type emailIndex struct {
	PK     string `dynamodbav:"pk"`
	SK     string `dynamodbav:"sk"`
	UserID string `dynamodbav:"user_id"`
}

// CreateUser writes the user details record and the email index record in one
// transaction, both conditioned on not existing. Returns ErrAlreadyExists if
// the email (or the id) is already taken.
func (s *Store) CreateUser(ctx context.Context, u User) error {
	u.PK = UserPK(u.UserID)
	u.SK = DetailsSK
	u.Email = strings.ToLower(u.Email)

	userItem, err := attributevalue.MarshalMap(u)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	emailItem, err := attributevalue.MarshalMap(emailIndex{
		PK:     EmailPK(u.Email),
		SK:     DetailsSK,
		UserID: u.UserID,
	})
	if err != nil {
		return fmt.Errorf("marshal email index: %w", err)
	}

	_, err = s.db.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{
				TableName:           aws.String(s.table),
				Item:                emailItem,
				ConditionExpression: aws.String("attribute_not_exists(pk)"),
			}},
			{Put: &types.Put{
				TableName:           aws.String(s.table),
				Item:                userItem,
				ConditionExpression: aws.String("attribute_not_exists(pk)"),
			}},
		},
	})
	if err != nil {
		if len(transactConditionFailed(err)) > 0 {
			return ErrAlreadyExists
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetUser returns the user by id, or nil if absent.
func (s *Store) GetUser(ctx context.Context, userID string) (*User, error) {
	out, err := s.db.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key:       detailsKey(UserPK(userID)),
	})
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if out.Item == nil {
		return nil, nil
	}
	return decodeUser(out.Item, userID)
}

// GetUserByEmail resolves the email index record and follows it to the user
// details. Returns nil if the email is not registered.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	out, err := s.db.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key:       detailsKey(EmailPK(email)),
	})
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	if out.Item == nil {
		return nil, nil
	}

	var idx emailIndex
	if err := attributevalue.UnmarshalMap(out.Item, &idx); err != nil {
		return nil, fmt.Errorf("unmarshal email index: %w", err)
	}
	if idx.UserID == "" {
		return nil, &DecodeError{PK: idx.PK, SK: idx.SK, Attr: "user_id"}
	}
	return s.GetUser(ctx, idx.UserID)
}

// SetUserBlocked flips the blocked flag on an existing user. Returns
// ErrNotExists if there is no such user; blocking never creates records.
func (s *Store) SetUserBlocked(ctx context.Context, userID string, blocked bool) error {
	expr, names, values, err := buildUpdateExpression(map[string]interface{}{"is_blocked": blocked})
	if err != nil {
		return err
	}

	_, err = s.db.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.table),
		Key:                       detailsKey(UserPK(userID)),
		UpdateExpression:          aws.String(expr),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ConditionExpression:       aws.String("attribute_exists(pk)"),
	})
	if err != nil {
		if conditionFailed(err) {
			return ErrNotExists
		}
		return fmt.Errorf("set user blocked: %w", err)
	}
	return nil
}

func decodeUser(item map[string]types.AttributeValue, userID string) (*User, error) {
	var u User
	if err := attributevalue.UnmarshalMap(item, &u); err != nil {
		return nil, fmt.Errorf("unmarshal user: %w", err)
	}
	u.UserID = userID
	for attr, v := range map[string]string{
		"email":    u.Email,
		"username": u.Username,
		"password": u.Password,
		"role":     string(u.Role),
	} {
		if v == "" {
			return nil, &DecodeError{PK: u.PK, SK: u.SK, Attr: attr}
		}
	}
	return &u, nil
}
