package dynamo

import (
	"context"
	"errors"
	"testing"
)

func testUser(id, email string) User {
	return User{
		UserID:      id,
		Username:    "alice",
		Email:       email,
		PhoneNumber: "1234567890",
		Password:    "$2a$10$hash",
		Role:        RoleCustomer,
	}
}

func TestCreateUser(t *testing.T) {
	s, db := testStore()
	ctx := context.Background()

	if err := s.CreateUser(ctx, testUser("u1", "a@b.com")); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	// Both the details record and the email index record must exist.
	got, err := s.GetUser(ctx, "u1")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got == nil {
		t.Fatal("expected non-nil user")
	}
	if got.Email != "a@b.com" {
		t.Errorf("Email = %q", got.Email)
	}
	if got.Role != RoleCustomer {
		t.Errorf("Role = %q", got.Role)
	}
	if db.CountItems("EMAIL#a@b.com") != 1 {
		t.Error("expected email index record")
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	s, _ := testStore()
	ctx := context.Background()

	if err := s.CreateUser(ctx, testUser("u1", "a@b.com")); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	err := s.CreateUser(ctx, testUser("u2", "a@b.com"))
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("err = %v, want ErrAlreadyExists", err)
	}

	// The losing transaction must leave nothing behind, and the email must
	// still resolve to the first registrant.
	if got, _ := s.GetUser(ctx, "u2"); got != nil {
		t.Error("expected no details record for losing signup")
	}
	owner, err := s.GetUserByEmail(ctx, "a@b.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if owner == nil || owner.UserID != "u1" {
		t.Errorf("email owner = %+v, want user u1", owner)
	}
}

func TestGetUserByEmail(t *testing.T) {
	s, _ := testStore()
	ctx := context.Background()

	s.CreateUser(ctx, testUser("u1", "a@b.com"))

	got, err := s.GetUserByEmail(ctx, "A@B.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if got == nil || got.UserID != "u1" {
		t.Fatalf("got %+v, want user u1", got)
	}

	missing, err := s.GetUserByEmail(ctx, "nobody@b.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for unregistered email")
	}
}

func TestGetUser_Idempotent(t *testing.T) {
	s, _ := testStore()
	ctx := context.Background()

	s.CreateUser(ctx, testUser("u1", "a@b.com"))

	first, err := s.GetUser(ctx, "u1")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	second, err := s.GetUser(ctx, "u1")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if *first != *second {
		t.Errorf("repeat get differs: %+v vs %+v", first, second)
	}
}

func TestSetUserBlocked(t *testing.T) {
	s, _ := testStore()
	ctx := context.Background()

	s.CreateUser(ctx, testUser("u1", "a@b.com"))

	if err := s.SetUserBlocked(ctx, "u1", true); err != nil {
		t.Fatalf("SetUserBlocked: %v", err)
	}
	got, _ := s.GetUser(ctx, "u1")
	if !got.IsBlocked {
		t.Error("expected user blocked")
	}

	if err := s.SetUserBlocked(ctx, "ghost", true); !errors.Is(err, ErrNotExists) {
		t.Fatalf("err = %v, want ErrNotExists", err)
	}
}

func TestGetUser_CorruptRecord(t *testing.T) {
	s, db := testStore()
	ctx := context.Background()

	s.CreateUser(ctx, testUser("u1", "a@b.com"))

	// Strip a required attribute to simulate corruption.
	db.RemoveAttr("USER#u1", "DETAILS", "email")

	_, err := s.GetUser(ctx, "u1")
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("err = %v, want DecodeError", err)
	}
	if de.Attr != "email" {
		t.Errorf("Attr = %q, want email", de.Attr)
	}
}
