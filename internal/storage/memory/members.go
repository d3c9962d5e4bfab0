package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/nextstep/gift/internal/domain/members"
)

// MemberRepository is an in-memory implementation of members.Repository.
type MemberRepository struct {
	mu      sync.RWMutex
	seq     sequence
	members map[int64]members.Member
	byEmail map[string]int64
}

// NewMemberRepository returns an initialized in-memory repository.
func NewMemberRepository() *MemberRepository {
	return &MemberRepository{
		members: make(map[int64]members.Member),
		byEmail: make(map[string]int64),
	}
}

func (r *MemberRepository) FindByID(_ context.Context, id int64) (members.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.members[id]
	if !ok {
		return members.Member{}, members.ErrNotFound
	}
	return m, nil
}

func (r *MemberRepository) FindByEmail(_ context.Context, email string) (members.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return members.Member{}, members.ErrNotFound
	}
	return r.members[id], nil
}

func (r *MemberRepository) List(_ context.Context) ([]members.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]members.Member, 0, len(r.members))
	for _, m := range r.members {
		list = append(list, m)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

// Save inserts a member without an ID or replaces an existing one. The
// balance of an existing member is only moved by ChargePoint and DeductPoint.
func (r *MemberRepository) Save(_ context.Context, member members.Member) (members.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if owner, ok := r.byEmail[member.Email]; ok && owner != member.ID {
		return members.Member{}, members.ErrEmailExists
	}

	now := time.Now().UTC()
	if member.ID == 0 {
		member.ID = r.seq.next()
		member.CreatedAt = now
	} else {
		existing, ok := r.members[member.ID]
		if !ok {
			return members.Member{}, members.ErrNotFound
		}
		member.CreatedAt = existing.CreatedAt
		member.Point = existing.Point
		delete(r.byEmail, existing.Email)
	}
	member.UpdatedAt = now

	r.members[member.ID] = member
	r.byEmail[member.Email] = member.ID
	return member, nil
}

func (r *MemberRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m, ok := r.members[id]; ok {
		delete(r.byEmail, m.Email)
		delete(r.members, id)
	}
	return nil
}

func (r *MemberRepository) ChargePoint(_ context.Context, id, amount int64) (members.Member, error) {
	return r.mutate(id, func(m *members.Member) error { return m.ChargePoint(amount) })
}

func (r *MemberRepository) DeductPoint(_ context.Context, id, amount int64) (members.Member, error) {
	return r.mutate(id, func(m *members.Member) error { return m.DeductPoint(amount) })
}

func (r *MemberRepository) mutate(id int64, fn func(*members.Member) error) (members.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.members[id]
	if !ok {
		return members.Member{}, members.ErrNotFound
	}
	if err := fn(&m); err != nil {
		return members.Member{}, err
	}
	m.UpdatedAt = time.Now().UTC()
	r.members[id] = m
	return m, nil
}
