package service

import (
	"context"
	"errors"
	"testing"
)

func validSignup() SignupRequest {
	return SignupRequest{
		Email:    "a@b.com",
		Username: "alice",
		Password: "Sup3r$ecretPwd",
		Phone:    "1234567890",
	}
}

func TestSignupAndLogin(t *testing.T) {
	_, svc := testServices(t)
	ctx := context.Background()

	token, err := svc.users.Signup(ctx, validSignup())
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if token == "" {
		t.Fatal("signup returned empty token")
	}

	token, err = svc.users.Login(ctx, "a@b.com", "Sup3r$ecretPwd")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token == "" {
		t.Fatal("login returned empty token")
	}

	if _, err := svc.users.Login(ctx, "a@b.com", "wrong-password"); !errors.Is(err, ErrIncorrectCredentials) {
		t.Errorf("wrong password error = %v, want ErrIncorrectCredentials", err)
	}
}

func TestSignup_Validation(t *testing.T) {
	_, svc := testServices(t)

	cases := []struct {
		name   string
		mutate func(*SignupRequest)
		field  string
	}{
		{"bad email", func(r *SignupRequest) { r.Email = "not-an-email" }, "email"},
		{"empty username", func(r *SignupRequest) { r.Username = "" }, "username"},
		{"short phone", func(r *SignupRequest) { r.Phone = "12345" }, "phone_number"},
		{"letters in phone", func(r *SignupRequest) { r.Phone = "12345abcde" }, "phone_number"},
		{"short password", func(r *SignupRequest) { r.Password = "Sh0rt$pw" }, "password"},
		{"no uppercase", func(r *SignupRequest) { r.Password = "sup3r$ecretpwd" }, "password"},
		{"no lowercase", func(r *SignupRequest) { r.Password = "SUP3R$ECRETPWD" }, "password"},
		{"no digit", func(r *SignupRequest) { r.Password = "Super$ecretPwd" }, "password"},
		{"no special", func(r *SignupRequest) { r.Password = "Sup3rSecretPwd" }, "password"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validSignup()
			tc.mutate(&req)
			_, err := svc.users.Signup(context.Background(), req)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
			if verr.Field != tc.field {
				t.Errorf("field = %s, want %s", verr.Field, tc.field)
			}
		})
	}
}

func TestSignup_DuplicateEmail(t *testing.T) {
	_, svc := testServices(t)
	ctx := context.Background()

	if _, err := svc.users.Signup(ctx, validSignup()); err != nil {
		t.Fatalf("first signup: %v", err)
	}
	req := validSignup()
	req.Username = "second"
	_, err := svc.users.Signup(ctx, req)
	var exists *AlreadyExistsError
	if !errors.As(err, &exists) {
		t.Fatalf("duplicate signup error = %v, want AlreadyExistsError", err)
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	_, svc := testServices(t)

	_, err := svc.users.Login(context.Background(), "ghost@b.com", "whatever")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("err = %v, want NotFoundError", err)
	}
}

func TestLogin_BlockedUser(t *testing.T) {
	store, svc := testServices(t)
	ctx := context.Background()

	if _, err := svc.users.Signup(ctx, validSignup()); err != nil {
		t.Fatalf("Signup: %v", err)
	}
	user, err := store.GetUserByEmail(ctx, "a@b.com")
	if err != nil || user == nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if err := svc.users.SetBlocked(ctx, user.UserID, true); err != nil {
		t.Fatalf("SetBlocked: %v", err)
	}

	if _, err := svc.users.Login(ctx, "a@b.com", "Sup3r$ecretPwd"); !errors.Is(err, ErrUserBlocked) {
		t.Errorf("blocked login error = %v, want ErrUserBlocked", err)
	}
}

func TestProfile(t *testing.T) {
	_, svc := testServices(t)
	ctx := context.Background()

	if _, err := svc.users.Signup(ctx, validSignup()); err != nil {
		t.Fatalf("Signup: %v", err)
	}
	byMail, err := svc.users.ByEmail(ctx, "a@b.com")
	if err != nil {
		t.Fatalf("ByEmail: %v", err)
	}
	profile, err := svc.users.Profile(ctx, byMail.UserID)
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if profile.Username != "alice" || profile.Role != "customer" {
		t.Errorf("profile = %+v", profile)
	}

	var nf *NotFoundError
	if _, err := svc.users.Profile(ctx, "missing"); !errors.As(err, &nf) {
		t.Errorf("missing profile error = %v, want NotFoundError", err)
	}
}
