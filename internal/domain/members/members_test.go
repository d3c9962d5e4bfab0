package members_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/nextstep/gift/internal/domain/members"
	"github.com/nextstep/gift/internal/domain/validation"
	"github.com/nextstep/gift/internal/storage/memory"
)

func TestServiceCreateAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc := members.NewService(memory.NewMemberRepository())

	created, err := svc.Create(ctx, " Alex@Example.com ", "secret")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.ID == 0 {
		t.Fatalf("expected ID to be set")
	}
	if created.Email != "alex@example.com" {
		t.Fatalf("expected normalized email, got %s", created.Email)
	}
	if created.PasswordHash == "secret" {
		t.Fatalf("password must not be stored in plaintext")
	}

	if _, err := svc.Authenticate(ctx, "alex@example.com", "secret"); err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "alex@example.com", "wrong"); !errors.Is(err, members.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "nobody@example.com", "secret"); !errors.Is(err, members.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for unknown email, got %v", err)
	}
}

func TestServiceCreateRejectsDuplicatesAndBadInput(t *testing.T) {
	ctx := context.Background()
	svc := members.NewService(memory.NewMemberRepository())

	if _, err := svc.Create(ctx, "dup@example.com", "pw"); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := svc.Create(ctx, "DUP@example.com", "pw"); !errors.Is(err, members.ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
	if _, err := svc.Create(ctx, "not-an-email", "pw"); !validation.IsError(err) {
		t.Fatalf("expected validation error for bad email, got %v", err)
	}
	if _, err := svc.Create(ctx, "ok@example.com", "  "); !validation.IsError(err) {
		t.Fatalf("expected validation error for blank password, got %v", err)
	}
}

func TestServiceUpdate(t *testing.T) {
	ctx := context.Background()
	svc := members.NewService(memory.NewMemberRepository())

	a, _ := svc.Create(ctx, "a@example.com", "pw")
	if _, err := svc.Create(ctx, "b@example.com", "pw"); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	taken := "b@example.com"
	if _, err := svc.Update(ctx, a.ID, members.UpdateInput{Email: &taken}); !errors.Is(err, members.ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}

	newEmail := "a2@example.com"
	newPassword := "changed"
	updated, err := svc.Update(ctx, a.ID, members.UpdateInput{Email: &newEmail, Password: &newPassword})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Email != newEmail {
		t.Fatalf("email not updated: got %s", updated.Email)
	}
	if !updated.CheckPassword("changed") {
		t.Fatalf("password not updated")
	}
}

func TestServicePoints(t *testing.T) {
	ctx := context.Background()
	svc := members.NewService(memory.NewMemberRepository())
	m, _ := svc.Create(ctx, "p@example.com", "pw")

	if _, err := svc.ChargePoint(ctx, m.ID, 0); !validation.IsError(err) {
		t.Fatalf("expected validation error for zero charge, got %v", err)
	}

	m, err := svc.ChargePoint(ctx, m.ID, 500)
	if err != nil {
		t.Fatalf("charge failed: %v", err)
	}
	if m.Point != 500 {
		t.Fatalf("expected 500 points, got %d", m.Point)
	}

	if _, err := svc.DeductPoint(ctx, m.ID, 501); !errors.Is(err, members.ErrInsufficientPoints) {
		t.Fatalf("expected ErrInsufficientPoints, got %v", err)
	}
	m, err = svc.DeductPoint(ctx, m.ID, 500)
	if err != nil {
		t.Fatalf("deduct failed: %v", err)
	}
	if m.Point != 0 {
		t.Fatalf("expected 0 points, got %d", m.Point)
	}
}

func TestMemberDeductPoint(t *testing.T) {
	m := members.Member{Point: 100}
	if err := m.DeductPoint(-1); !validation.IsError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := m.DeductPoint(101); !errors.Is(err, members.ErrInsufficientPoints) {
		t.Fatalf("expected ErrInsufficientPoints, got %v", err)
	}
	if err := m.DeductPoint(100); err != nil || m.Point != 0 {
		t.Fatalf("expected balance 0, got %d (%v)", m.Point, err)
	}
}

func TestChargePointRejectsOverflow(t *testing.T) {
	m := members.Member{Point: math.MaxInt64 - 10}
	if err := m.ChargePoint(11); !errors.Is(err, members.ErrPointOverflow) || !validation.IsError(err) {
		t.Fatalf("expected ErrPointOverflow, got %v", err)
	}
	if m.Point != math.MaxInt64-10 {
		t.Fatalf("balance changed on rejected charge: %d", m.Point)
	}
	if err := m.ChargePoint(10); err != nil || m.Point != math.MaxInt64 {
		t.Fatalf("expected balance at MaxInt64, got %d (%v)", m.Point, err)
	}

	ctx := context.Background()
	svc := members.NewService(memory.NewMemberRepository())
	saved, _ := svc.Create(ctx, "rich@example.com", "pw")
	if _, err := svc.ChargePoint(ctx, saved.ID, math.MaxInt64); err != nil {
		t.Fatalf("charge failed: %v", err)
	}
	if _, err := svc.ChargePoint(ctx, saved.ID, 1); !errors.Is(err, members.ErrPointOverflow) {
		t.Fatalf("expected ErrPointOverflow from service, got %v", err)
	}
}

func TestServiceKakaoMembers(t *testing.T) {
	ctx := context.Background()
	svc := members.NewService(memory.NewMemberRepository())

	created, err := svc.UpsertKakaoMember(ctx, "kakao@example.com", "token-1")
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if created.HasPassword() {
		t.Fatalf("kakao member must not have a password")
	}
	if _, err := svc.Authenticate(ctx, "kakao@example.com", ""); !errors.Is(err, members.ErrInvalidCredentials) {
		t.Fatalf("expected password login to fail, got %v", err)
	}

	again, err := svc.UpsertKakaoMember(ctx, "kakao@example.com", "token-2")
	if err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}
	if again.ID != created.ID || again.KakaoAccessToken != "token-2" {
		t.Fatalf("expected token refresh on same member, got %+v", again)
	}

	cleared, err := svc.UpdateKakaoAccessToken(ctx, created.ID, "")
	if err != nil {
		t.Fatalf("update token failed: %v", err)
	}
	if cleared.KakaoAccessToken != "" {
		t.Fatalf("expected token cleared")
	}
}

func TestServiceDelete(t *testing.T) {
	ctx := context.Background()
	svc := members.NewService(memory.NewMemberRepository())
	m, _ := svc.Create(ctx, "gone@example.com", "pw")

	if err := svc.Delete(ctx, m.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := svc.Get(ctx, m.ID); !errors.Is(err, members.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.FindByEmail(ctx, "gone@example.com"); !errors.Is(err, members.ErrNotFound) {
		t.Fatalf("expected email index cleared, got %v", err)
	}
}
