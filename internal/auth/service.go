package auth

import (
	"context"

	"github.com/nextstep/gift/internal/domain/members"
)

// Service registers members and logs them in, answering with access tokens.
type Service struct {
	members members.Service
	tokens  *Provider
}

// NewService wires the member service with a token provider.
func NewService(memberSvc members.Service, tokens *Provider) *Service {
	return &Service{members: memberSvc, tokens: tokens}
}

// Register creates a password member and returns its token.
func (s *Service) Register(ctx context.Context, email, password string) (string, error) {
	member, err := s.members.Create(ctx, email, password)
	if err != nil {
		return "", err
	}
	return s.tokens.CreateToken(member.Email)
}

// Login checks credentials and returns a fresh token. Unknown emails, wrong
// passwords and password-less Kakao members all fail the same way.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	member, err := s.members.Authenticate(ctx, email, password)
	if err != nil {
		return "", err
	}
	return s.tokens.CreateToken(member.Email)
}

// IssueFor returns a token for an already resolved member.
func (s *Service) IssueFor(member members.Member) (string, error) {
	return s.tokens.CreateToken(member.Email)
}
