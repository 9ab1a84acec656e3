package clients

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

func (s *Service) Get(ctx context.Context, id int64) (*Client, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, req ListClientsRequest) ([]Client, int, error) {
	if req.Limit <= 0 {
		req.Limit = 50
	}
	req.Search = strings.TrimSpace(req.Search)
	return s.repo.List(ctx, req)
}

func (s *Service) Create(ctx context.Context, req CreateClientRequest) (*Client, error) {
	c := Client{
		Name:     strings.TrimSpace(req.Name),
		Email:    req.Email,
		Phone:    req.Phone,
		Company:  req.Company,
		Address:  req.Address,
		IsActive: true,
	}
	id, err := s.repo.Create(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateClientRequest) (*Client, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get client: %w", err)
	}
	if req.Name != nil {
		c.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		c.Email = req.Email
	}
	if req.Phone != nil {
		c.Phone = req.Phone
	}
	if req.Company != nil {
		c.Company = req.Company
	}
	if req.Address != nil {
		c.Address = req.Address
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}
	if err := s.repo.Update(ctx, *c); err != nil {
		return nil, fmt.Errorf("update client: %w", err)
	}
	return s.repo.Get(ctx, id)
}
