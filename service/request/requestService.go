// service/request/requestService.go
package requestsvc

import (
	"context"
	"time"

	"itemshare/model"
	"itemshare/util/apperr"
)

type RequestOut struct {
	ID          int64        `json:"id"`
	Description string       `json:"description"`
	Created     time.Time    `json:"created"`
	Items       []model.Item `json:"items"`
}

type Repo interface {
	Insert(ctx context.Context, req *model.Request) error
	ByID(ctx context.Context, id int64) (*model.Request, error)
	ByRequester(ctx context.Context, requesterID int64) ([]model.Request, error)
	AllOthers(ctx context.Context, userID int64, limit, offset int) ([]model.Request, error)
}

type Users interface {
	ByID(ctx context.Context, id int64) (*model.User, error)
}

type Items interface {
	ByRequestIDs(ctx context.Context, requestIDs []int64) ([]model.Item, error)
}

type Service interface {
	Add(ctx context.Context, requesterID int64, description string) (*RequestOut, error)
	// Own lists the caller's requests, newest first, with the items that
	// were created in answer to each request attached.
	Own(ctx context.Context, userID int64) ([]RequestOut, error)
	// All lists other users' requests, newest first, paginated.
	All(ctx context.Context, userID int64, from, size int) ([]RequestOut, error)
	ByID(ctx context.Context, userID, requestID int64) (*RequestOut, error)
}

type service struct {
	r     Repo
	users Users
	items Items
	now   func() time.Time
}

func New(r Repo, users Users, items Items) Service {
	return &service{r: r, users: users, items: items, now: time.Now}
}

func (s *service) Add(ctx context.Context, requesterID int64, description string) (*RequestOut, error) {
	if err := s.requireUser(ctx, requesterID); err != nil {
		return nil, err
	}
	req := &model.Request{
		Description: description,
		RequesterID: requesterID,
		Created:     s.now(),
	}
	if err := s.r.Insert(ctx, req); err != nil {
		return nil, err
	}
	return &RequestOut{
		ID:          req.ID,
		Description: req.Description,
		Created:     req.Created,
		Items:       []model.Item{},
	}, nil
}

func (s *service) Own(ctx context.Context, userID int64) ([]RequestOut, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	reqs, err := s.r.ByRequester(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.attachItems(ctx, reqs)
}

func (s *service) All(ctx context.Context, userID int64, from, size int) ([]RequestOut, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	limit := size
	offset := from / size * size
	reqs, err := s.r.AllOthers(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	return s.attachItems(ctx, reqs)
}

func (s *service) ByID(ctx context.Context, userID, requestID int64) (*RequestOut, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	req, err := s.r.ByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, apperr.E(apperr.NotFound, "request not found")
	}
	outs, err := s.attachItems(ctx, []model.Request{*req})
	if err != nil {
		return nil, err
	}
	return &outs[0], nil
}

func (s *service) requireUser(ctx context.Context, userID int64) error {
	u, err := s.users.ByID(ctx, userID)
	if err != nil {
		return err
	}
	if u == nil {
		return apperr.E(apperr.NotFound, "user not found")
	}
	return nil
}

func (s *service) attachItems(ctx context.Context, reqs []model.Request) ([]RequestOut, error) {
	ids := make([]int64, 0, len(reqs))
	for _, r := range reqs {
		ids = append(ids, r.ID)
	}
	items, err := s.items.ByRequestIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byRequest := make(map[int64][]model.Item)
	for _, it := range items {
		if it.RequestID == nil {
			continue
		}
		byRequest[*it.RequestID] = append(byRequest[*it.RequestID], it)
	}

	out := make([]RequestOut, 0, len(reqs))
	for _, r := range reqs {
		attached := byRequest[r.ID]
		if attached == nil {
			attached = []model.Item{}
		}
		out = append(out, RequestOut{
			ID:          r.ID,
			Description: r.Description,
			Created:     r.Created,
			Items:       attached,
		})
	}
	return out, nil
}
