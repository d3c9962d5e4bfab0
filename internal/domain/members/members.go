package members

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/nextstep/gift/internal/domain/validation"
)

var (
	ErrNotImplemented     = errors.New("members repository: not implemented")
	ErrNotFound           = errors.New("member not found")
	ErrEmailExists        = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInsufficientPoints = errors.New("insufficient points")

	// ErrPointOverflow rejects a charge the balance cannot hold.
	ErrPointOverflow = validation.New(msgPointOverflow)
)

const (
	msgNonPositiveAmount = "amount must be greater than zero"
	msgPointOverflow     = "point balance cannot exceed 9223372036854775807"
	msgPasswordRequired  = "password is required"
	msgEmailRequired     = "email is required"
	msgEmailInvalid      = "email must be a valid address"
)

// Member is a shop account. Members created through Kakao login have no
// password and can only sign in through Kakao again.
type Member struct {
	ID               int64
	Email            string
	PasswordHash     string
	Point            int64
	KakaoAccessToken string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ChargePoint adds a positive amount to the balance.
func (m *Member) ChargePoint(amount int64) error {
	if amount <= 0 {
		return validation.New(msgNonPositiveAmount)
	}
	if m.Point > math.MaxInt64-amount {
		return ErrPointOverflow
	}
	m.Point += amount
	return nil
}

// DeductPoint removes a positive amount that the balance can cover.
func (m *Member) DeductPoint(amount int64) error {
	if amount <= 0 {
		return validation.New(msgNonPositiveAmount)
	}
	if amount > m.Point {
		return ErrInsufficientPoints
	}
	m.Point -= amount
	return nil
}

// HasPassword reports whether password login is possible.
func (m Member) HasPassword() bool {
	return m.PasswordHash != ""
}

// CheckPassword compares a plaintext password with the stored hash.
func (m Member) CheckPassword(password string) bool {
	if !m.HasPassword() {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(m.PasswordHash), []byte(password)) == nil
}

// Repository defines persistence behaviour for members. ChargePoint and
// DeductPoint must be atomic with respect to concurrent callers, and Save
// must leave the balance of an existing member untouched.
type Repository interface {
	FindByID(ctx context.Context, id int64) (Member, error)
	FindByEmail(ctx context.Context, email string) (Member, error)
	List(ctx context.Context) ([]Member, error)
	Save(ctx context.Context, member Member) (Member, error)
	Delete(ctx context.Context, id int64) error
	ChargePoint(ctx context.Context, id, amount int64) (Member, error)
	DeductPoint(ctx context.Context, id, amount int64) (Member, error)
}

// NullRepository can be used when no storage is configured.
type NullRepository struct{}

func (NullRepository) FindByID(context.Context, int64) (Member, error) {
	return Member{}, ErrNotImplemented
}

func (NullRepository) FindByEmail(context.Context, string) (Member, error) {
	return Member{}, ErrNotImplemented
}

func (NullRepository) List(context.Context) ([]Member, error) {
	return nil, ErrNotImplemented
}

func (NullRepository) Save(context.Context, Member) (Member, error) {
	return Member{}, ErrNotImplemented
}

func (NullRepository) Delete(context.Context, int64) error {
	return ErrNotImplemented
}

func (NullRepository) ChargePoint(context.Context, int64, int64) (Member, error) {
	return Member{}, ErrNotImplemented
}

func (NullRepository) DeductPoint(context.Context, int64, int64) (Member, error) {
	return Member{}, ErrNotImplemented
}

// Service exposes member management and authentication.
type Service interface {
	List(ctx context.Context) ([]Member, error)
	Get(ctx context.Context, id int64) (Member, error)
	FindByEmail(ctx context.Context, email string) (Member, error)
	Create(ctx context.Context, email, password string) (Member, error)
	Authenticate(ctx context.Context, email, password string) (Member, error)
	Update(ctx context.Context, id int64, input UpdateInput) (Member, error)
	ChargePoint(ctx context.Context, id, amount int64) (Member, error)
	DeductPoint(ctx context.Context, id, amount int64) (Member, error)
	Delete(ctx context.Context, id int64) error
	UpdateKakaoAccessToken(ctx context.Context, id int64, token string) (Member, error)
	UpsertKakaoMember(ctx context.Context, email, token string) (Member, error)
}

// UpdateInput changes the login identity of a member. Nil fields are kept.
type UpdateInput struct {
	Email    *string
	Password *string
}

type service struct {
	repo Repository
}

// NewService constructs a member service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context) ([]Member, error) {
	return s.repo.List(ctx)
}

func (s *service) Get(ctx context.Context, id int64) (Member, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) FindByEmail(ctx context.Context, email string) (Member, error) {
	return s.repo.FindByEmail(ctx, normalizeEmail(email))
}

func (s *service) Create(ctx context.Context, email, password string) (Member, error) {
	email = normalizeEmail(email)
	if err := checkEmail(email); err != nil {
		return Member{}, err
	}
	if strings.TrimSpace(password) == "" {
		return Member{}, validation.New(msgPasswordRequired)
	}

	if err := s.ensureEmailFree(ctx, email, 0); err != nil {
		return Member{}, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return Member{}, err
	}

	return s.repo.Save(ctx, Member{Email: email, PasswordHash: hash})
}

func (s *service) Authenticate(ctx context.Context, email, password string) (Member, error) {
	member, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Member{}, ErrInvalidCredentials
		}
		return Member{}, err
	}
	if !member.CheckPassword(password) {
		return Member{}, ErrInvalidCredentials
	}
	return member, nil
}

func (s *service) Update(ctx context.Context, id int64, input UpdateInput) (Member, error) {
	member, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return Member{}, err
	}

	if input.Email != nil {
		email := normalizeEmail(*input.Email)
		if err := checkEmail(email); err != nil {
			return Member{}, err
		}
		if email != member.Email {
			if err := s.ensureEmailFree(ctx, email, id); err != nil {
				return Member{}, err
			}
		}
		member.Email = email
	}
	if input.Password != nil {
		if strings.TrimSpace(*input.Password) == "" {
			return Member{}, validation.New(msgPasswordRequired)
		}
		hash, err := HashPassword(*input.Password)
		if err != nil {
			return Member{}, err
		}
		member.PasswordHash = hash
	}

	return s.repo.Save(ctx, member)
}

func (s *service) ChargePoint(ctx context.Context, id, amount int64) (Member, error) {
	if amount <= 0 {
		return Member{}, validation.New(msgNonPositiveAmount)
	}
	return s.repo.ChargePoint(ctx, id, amount)
}

func (s *service) DeductPoint(ctx context.Context, id, amount int64) (Member, error) {
	if amount <= 0 {
		return Member{}, validation.New(msgNonPositiveAmount)
	}
	return s.repo.DeductPoint(ctx, id, amount)
}

func (s *service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *service) UpdateKakaoAccessToken(ctx context.Context, id int64, token string) (Member, error) {
	member, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return Member{}, err
	}
	member.KakaoAccessToken = token
	return s.repo.Save(ctx, member)
}

func (s *service) UpsertKakaoMember(ctx context.Context, email, token string) (Member, error) {
	email = normalizeEmail(email)
	if err := checkEmail(email); err != nil {
		return Member{}, err
	}

	member, err := s.repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		member = Member{Email: email}
	default:
		return Member{}, err
	}

	member.KakaoAccessToken = token
	return s.repo.Save(ctx, member)
}

func (s *service) ensureEmailFree(ctx context.Context, email string, self int64) error {
	existing, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		if existing.ID != self {
			return ErrEmailExists
		}
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}

// HashPassword returns a bcrypt hash suitable for Member.PasswordHash.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

func checkEmail(email string) error {
	if email == "" {
		return validation.New(msgEmailRequired)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return validation.New(msgEmailInvalid)
	}
	return nil
}
