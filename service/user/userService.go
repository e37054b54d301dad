package usersvc

import (
	"context"

	"itemshare/model"
	"itemshare/util/apperr"
)

type Repo interface {
	Create(ctx context.Context, u *model.User) error
	Update(ctx context.Context, u *model.User) error
	ByID(ctx context.Context, id int64) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Delete(ctx context.Context, id int64) error
}

type Service interface {
	Add(ctx context.Context, name, email string) (*model.User, error)
	// Update applies a partial update; nil fields keep their value.
	Update(ctx context.Context, id int64, name, email *string) (*model.User, error)
	ByID(ctx context.Context, id int64) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Delete(ctx context.Context, id int64) error
}

type service struct{ r Repo }

func New(r Repo) Service { return &service{r: r} }

func (s *service) Add(ctx context.Context, name, email string) (*model.User, error) {
	u := &model.User{Name: name, Email: email}
	if err := s.r.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) Update(ctx context.Context, id int64, name, email *string) (*model.User, error) {
	u, err := s.r.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.E(apperr.NotFound, "user not found")
	}
	if name != nil {
		u.Name = *name
	}
	if email != nil {
		u.Email = *email
	}
	if err := s.r.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) ByID(ctx context.Context, id int64) (*model.User, error) {
	u, err := s.r.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.E(apperr.NotFound, "user not found")
	}
	return u, nil
}

func (s *service) List(ctx context.Context) ([]model.User, error) {
	return s.r.List(ctx)
}

func (s *service) Delete(ctx context.Context, id int64) error {
	return s.r.Delete(ctx, id)
}
