package requestsvc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"itemshare/model"
	"itemshare/util/apperr"
)

type repoMock struct {
	insertFn      func(ctx context.Context, req *model.Request) error
	byIDFn        func(ctx context.Context, id int64) (*model.Request, error)
	byRequesterFn func(ctx context.Context, requesterID int64) ([]model.Request, error)
	allOthersFn   func(ctx context.Context, userID int64, limit, offset int) ([]model.Request, error)
}

var _ Repo = (*repoMock)(nil)

func (m *repoMock) Insert(ctx context.Context, req *model.Request) error {
	return m.insertFn(ctx, req)
}
func (m *repoMock) ByID(ctx context.Context, id int64) (*model.Request, error) {
	return m.byIDFn(ctx, id)
}
func (m *repoMock) ByRequester(ctx context.Context, requesterID int64) ([]model.Request, error) {
	return m.byRequesterFn(ctx, requesterID)
}
func (m *repoMock) AllOthers(ctx context.Context, userID int64, limit, offset int) ([]model.Request, error) {
	return m.allOthersFn(ctx, userID, limit, offset)
}

type usersMock struct{ known map[int64]bool }

func (m *usersMock) ByID(ctx context.Context, id int64) (*model.User, error) {
	if m.known[id] {
		return &model.User{ID: id}, nil
	}
	return nil, nil
}

type itemsMock struct{ items []model.Item }

func (m *itemsMock) ByRequestIDs(ctx context.Context, requestIDs []int64) ([]model.Item, error) {
	return m.items, nil
}

var t0 = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newService(r Repo, u Users, i Items, now time.Time) *service {
	s := New(r, u, i).(*service)
	s.now = func() time.Time { return now }
	return s
}

func reqID(v int64) *int64 { return &v }

func TestAdd_Success(t *testing.T) {
	r := &repoMock{insertFn: func(ctx context.Context, req *model.Request) error {
		require.Equal(t, t0, req.Created)
		req.ID = 77
		return nil
	}}
	s := newService(r, &usersMock{known: map[int64]bool{2: true}}, &itemsMock{}, t0)

	out, err := s.Add(context.Background(), 2, "need a drill")
	require.NoError(t, err)
	require.Equal(t, int64(77), out.ID)
	require.Equal(t, "need a drill", out.Description)
	require.Empty(t, out.Items)
}

func TestAdd_UnknownUser(t *testing.T) {
	s := newService(&repoMock{}, &usersMock{}, &itemsMock{}, t0)

	_, err := s.Add(context.Background(), 99, "anything")
	require.Error(t, err)
	require.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestOwn_AttachesItems(t *testing.T) {
	r := &repoMock{byRequesterFn: func(ctx context.Context, requesterID int64) ([]model.Request, error) {
		return []model.Request{
			{ID: 77, Description: "need a drill", RequesterID: 2, Created: t0},
			{ID: 78, Description: "need a ladder", RequesterID: 2, Created: t0.Add(-time.Hour)},
		}, nil
	}}
	items := &itemsMock{items: []model.Item{
		{ID: 5, Name: "drill", RequestID: reqID(77)},
		{ID: 6, Name: "other drill", RequestID: reqID(77)},
	}}
	s := newService(r, &usersMock{known: map[int64]bool{2: true}}, items, t0)

	out, err := s.Own(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Len(t, out[0].Items, 2)
	require.Empty(t, out[1].Items)
}

func TestAll_PassesPage(t *testing.T) {
	r := &repoMock{allOthersFn: func(ctx context.Context, userID int64, limit, offset int) ([]model.Request, error) {
		require.Equal(t, int64(2), userID)
		require.Equal(t, 10, limit)
		require.Equal(t, 20, offset)
		return []model.Request{}, nil
	}}
	s := newService(r, &usersMock{known: map[int64]bool{2: true}}, &itemsMock{}, t0)

	out, err := s.All(context.Background(), 2, 25, 10)
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestByID_NotFound(t *testing.T) {
	r := &repoMock{byIDFn: func(ctx context.Context, id int64) (*model.Request, error) {
		return nil, nil
	}}
	s := newService(r, &usersMock{known: map[int64]bool{2: true}}, &itemsMock{}, t0)

	_, err := s.ByID(context.Background(), 2, 404)
	require.Error(t, err)
	require.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestByID_AttachesItems(t *testing.T) {
	r := &repoMock{byIDFn: func(ctx context.Context, id int64) (*model.Request, error) {
		return &model.Request{ID: id, Description: "need a drill", RequesterID: 3, Created: t0}, nil
	}}
	items := &itemsMock{items: []model.Item{{ID: 5, Name: "drill", RequestID: reqID(77)}}}
	s := newService(r, &usersMock{known: map[int64]bool{2: true}}, items, t0)

	out, err := s.ByID(context.Background(), 2, 77)
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	require.Equal(t, "drill", out.Items[0].Name)
}
