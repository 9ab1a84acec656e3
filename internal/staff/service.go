package staff

import (
	"context"
	"fmt"
	"strings"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, id int64) (*Member, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, activeOnly bool) ([]Member, error) {
	return s.repo.List(ctx, activeOnly)
}

// Names returns an id to display-name lookup for summary labels.
func (s *Service) Names(ctx context.Context) (map[int64]string, error) {
	members, err := s.repo.List(ctx, false)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(members))
	for _, m := range members {
		names[m.ID] = m.Name
	}
	return names, nil
}

func (s *Service) Create(ctx context.Context, req CreateMemberRequest) (*Member, error) {
	m := Member{
		Name:     strings.TrimSpace(req.Name),
		Phone:    strings.TrimSpace(req.Phone),
		IsActive: true,
	}
	id, err := s.repo.Create(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("create staff member: %w", err)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateMemberRequest) (*Member, error) {
	m, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		m.Name = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		m.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.IsActive != nil {
		m.IsActive = *req.IsActive
	}
	if err := s.repo.Update(ctx, *m); err != nil {
		return nil, fmt.Errorf("update staff member: %w", err)
	}
	return s.repo.Get(ctx, id)
}
