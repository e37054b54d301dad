// service/booking/bookingService_test.go
package bookingsvc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"itemshare/model"
	bookingrepo "itemshare/repository/booking"
	"itemshare/util/apperr"
)

type repoMock struct {
	insertFn     func(ctx context.Context, b *model.Booking) (bool, error)
	setStatusFn  func(ctx context.Context, bookingID int64, st model.BookingStatus) (bool, error)
	byIDFn       func(ctx context.Context, bookingID int64) (*bookingrepo.Detail, error)
	listBookerFn func(ctx context.Context, bookerID int64, f bookingrepo.Filter, now time.Time, limit, offset int) ([]bookingrepo.Detail, error)
	listOwnerFn  func(ctx context.Context, ownerID int64, f bookingrepo.Filter, now time.Time, limit, offset int) ([]bookingrepo.Detail, error)
}

var _ Repo = (*repoMock)(nil)

func (m *repoMock) InsertWaiting(ctx context.Context, b *model.Booking) (bool, error) {
	return m.insertFn(ctx, b)
}

func (m *repoMock) SetStatusIfWaiting(ctx context.Context, bookingID int64, st model.BookingStatus) (bool, error) {
	return m.setStatusFn(ctx, bookingID, st)
}

func (m *repoMock) ByID(ctx context.Context, bookingID int64) (*bookingrepo.Detail, error) {
	return m.byIDFn(ctx, bookingID)
}

func (m *repoMock) ListByBooker(ctx context.Context, bookerID int64, f bookingrepo.Filter, now time.Time, limit, offset int) ([]bookingrepo.Detail, error) {
	return m.listBookerFn(ctx, bookerID, f, now, limit, offset)
}

func (m *repoMock) ListByOwner(ctx context.Context, ownerID int64, f bookingrepo.Filter, now time.Time, limit, offset int) ([]bookingrepo.Detail, error) {
	return m.listOwnerFn(ctx, ownerID, f, now, limit, offset)
}

type usersMock struct {
	byIDFn func(ctx context.Context, id int64) (*model.User, error)
}

func (m *usersMock) ByID(ctx context.Context, id int64) (*model.User, error) {
	return m.byIDFn(ctx, id)
}

type itemsMock struct {
	byIDFn func(ctx context.Context, id int64) (*model.Item, error)
}

func (m *itemsMock) ByID(ctx context.Context, id int64) (*model.Item, error) {
	return m.byIDFn(ctx, id)
}

func knownUser(id int64) *usersMock {
	return &usersMock{byIDFn: func(ctx context.Context, got int64) (*model.User, error) {
		if got == id {
			return &model.User{ID: id, Name: "booker", Email: "booker@example.com"}, nil
		}
		return nil, nil
	}}
}

func availableItem(id, ownerID int64) *itemsMock {
	return &itemsMock{byIDFn: func(ctx context.Context, got int64) (*model.Item, error) {
		if got == id {
			return &model.Item{ID: id, Name: "drill", Available: true, OwnerID: ownerID}, nil
		}
		return nil, nil
	}}
}

func newService(r Repo, u Users, i Items, now time.Time) *service {
	s := New(r, u, i).(*service)
	s.now = func() time.Time { return now }
	return s
}

var t0 = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func TestCreate_Success(t *testing.T) {
	ctx := context.Background()
	r := &repoMock{
		insertFn: func(ctx context.Context, b *model.Booking) (bool, error) {
			b.ID = 33
			b.Status = model.BookingWaiting
			return true, nil
		},
	}
	s := newService(r, knownUser(2), availableItem(5, 1), t0)

	out, err := s.Create(ctx, 2, 5, t0.Add(24*time.Hour), t0.Add(48*time.Hour))
	require.NoError(t, err)
	require.Equal(t, int64(33), out.ID)
	require.Equal(t, model.BookingWaiting, out.Status)
	require.Equal(t, int64(5), out.ItemID)
	require.Equal(t, int64(5), out.Item.ID)
	require.Equal(t, "drill", out.Item.Name)
	require.Equal(t, int64(2), out.BookerID)
	require.Equal(t, int64(2), out.Booker.ID)
}

func TestCreate_UserNotFound(t *testing.T) {
	s := newService(&repoMock{}, knownUser(2), availableItem(5, 1), t0)

	_, err := s.Create(context.Background(), 99, 5, t0, t0.Add(time.Hour))
	require.Error(t, err)
	require.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestCreate_ItemNotFound(t *testing.T) {
	s := newService(&repoMock{}, knownUser(2), availableItem(5, 1), t0)

	_, err := s.Create(context.Background(), 2, 404, t0, t0.Add(time.Hour))
	require.Error(t, err)
	require.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestCreate_ItemUnavailable(t *testing.T) {
	items := &itemsMock{byIDFn: func(ctx context.Context, id int64) (*model.Item, error) {
		return &model.Item{ID: id, Available: false, OwnerID: 1}, nil
	}}
	s := newService(&repoMock{}, knownUser(2), items, t0)

	_, err := s.Create(context.Background(), 2, 5, t0, t0.Add(time.Hour))
	require.Error(t, err)
	require.Equal(t, apperr.Invalid, apperr.KindOf(err))
}

func TestCreate_OwnItemReportsNotFound(t *testing.T) {
	// Owners booking their own item are told it does not exist, not that
	// it is forbidden.
	s := newService(&repoMock{}, knownUser(1), availableItem(5, 1), t0)

	_, err := s.Create(context.Background(), 1, 5, t0, t0.Add(time.Hour))
	require.Error(t, err)
	require.Equal(t, apperr.NotFound, apperr.KindOf(err))
	require.Equal(t, "item not found", err.Error())
}

func TestCreate_BadDates(t *testing.T) {
	inserted := false
	r := &repoMock{insertFn: func(ctx context.Context, b *model.Booking) (bool, error) {
		inserted = true
		return true, nil
	}}
	s := newService(r, knownUser(2), availableItem(5, 1), t0)

	// end before start
	_, err := s.Create(context.Background(), 2, 5, t0.Add(2*time.Hour), t0.Add(time.Hour))
	require.Equal(t, apperr.Invalid, apperr.KindOf(err))

	// equal timestamps are rejected as well
	_, err = s.Create(context.Background(), 2, 5, t0, t0)
	require.Equal(t, apperr.Invalid, apperr.KindOf(err))

	require.False(t, inserted, "no booking must be persisted for a bad range")
}

func TestCreate_GuardLostRace(t *testing.T) {
	// The item read as available, but the guarded insert saw it flip.
	calls := 0
	items := &itemsMock{byIDFn: func(ctx context.Context, id int64) (*model.Item, error) {
		calls++
		return &model.Item{ID: id, Available: calls == 1, OwnerID: 1}, nil
	}}
	r := &repoMock{insertFn: func(ctx context.Context, b *model.Booking) (bool, error) {
		return false, nil
	}}
	s := newService(r, knownUser(2), items, t0)

	_, err := s.Create(context.Background(), 2, 5, t0, t0.Add(time.Hour))
	require.Error(t, err)
	require.Equal(t, apperr.Invalid, apperr.KindOf(err))
}

func waitingDetail(id, itemID, bookerID, ownerID int64) *bookingrepo.Detail {
	return &bookingrepo.Detail{
		Booking: model.Booking{
			ID:       id,
			ItemID:   itemID,
			BookerID: bookerID,
			Start:    t0.Add(24 * time.Hour),
			End:      t0.Add(48 * time.Hour),
			Status:   model.BookingWaiting,
		},
		ItemName:    "drill",
		ItemOwnerID: ownerID,
		BookerName:  "booker",
		BookerEmail: "booker@example.com",
	}
}

func TestSetApproval_Approve(t *testing.T) {
	var gotStatus model.BookingStatus
	r := &repoMock{
		byIDFn: func(ctx context.Context, id int64) (*bookingrepo.Detail, error) {
			return waitingDetail(id, 5, 2, 1), nil
		},
		setStatusFn: func(ctx context.Context, id int64, st model.BookingStatus) (bool, error) {
			gotStatus = st
			return true, nil
		},
	}
	s := newService(r, knownUser(1), availableItem(5, 1), t0)

	out, err := s.SetApproval(context.Background(), 1, 33, true)
	require.NoError(t, err)
	require.Equal(t, model.BookingApproved, out.Status)
	require.Equal(t, model.BookingApproved, gotStatus)
}

func TestSetApproval_Reject(t *testing.T) {
	r := &repoMock{
		byIDFn: func(ctx context.Context, id int64) (*bookingrepo.Detail, error) {
			return waitingDetail(id, 5, 2, 1), nil
		},
		setStatusFn: func(ctx context.Context, id int64, st model.BookingStatus) (bool, error) {
			return true, nil
		},
	}
	s := newService(r, knownUser(1), availableItem(5, 1), t0)

	out, err := s.SetApproval(context.Background(), 1, 33, false)
	require.NoError(t, err)
	require.Equal(t, model.BookingRejected, out.Status)
}

func TestSetApproval_NotOwner(t *testing.T) {
	r := &repoMock{
		byIDFn: func(ctx context.Context, id int64) (*bookingrepo.Detail, error) {
			return waitingDetail(id, 5, 2, 1), nil
		},
	}
	s := newService(r, knownUser(2), availableItem(5, 1), t0)

	_, err := s.SetApproval(context.Background(), 2, 33, true)
	require.Error(t, err)
	require.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestSetApproval_AlreadyDecided(t *testing.T) {
	r := &repoMock{
		byIDFn: func(ctx context.Context, id int64) (*bookingrepo.Detail, error) {
			d := waitingDetail(id, 5, 2, 1)
			d.Status = model.BookingApproved
			return d, nil
		},
	}
	s := newService(r, knownUser(1), availableItem(5, 1), t0)

	_, err := s.SetApproval(context.Background(), 1, 33, false)
	require.Error(t, err)
	require.Equal(t, apperr.Invalid, apperr.KindOf(err))
}

func TestSetApproval_Absent(t *testing.T) {
	r := &repoMock{
		byIDFn: func(ctx context.Context, id int64) (*bookingrepo.Detail, error) {
			return nil, nil
		},
	}
	s := newService(r, knownUser(1), availableItem(5, 1), t0)

	_, err := s.SetApproval(context.Background(), 1, 33, true)
	require.Error(t, err)
	require.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestSetApproval_ConcurrentDecisionLoses(t *testing.T) {
	// The read said WAITING but the guarded update affected zero rows:
	// another approval won. The second caller must fail, not overwrite.
	r := &repoMock{
		byIDFn: func(ctx context.Context, id int64) (*bookingrepo.Detail, error) {
			return waitingDetail(id, 5, 2, 1), nil
		},
		setStatusFn: func(ctx context.Context, id int64, st model.BookingStatus) (bool, error) {
			return false, nil
		},
	}
	s := newService(r, knownUser(1), availableItem(5, 1), t0)

	_, err := s.SetApproval(context.Background(), 1, 33, false)
	require.Error(t, err)
	require.Equal(t, apperr.Invalid, apperr.KindOf(err))
}

func TestByID_Visibility(t *testing.T) {
	r := &repoMock{
		byIDFn: func(ctx context.Context, id int64) (*bookingrepo.Detail, error) {
			return waitingDetail(id, 5, 2, 1), nil
		},
	}
	s := newService(r, knownUser(1), availableItem(5, 1), t0)

	// booker sees it
	out, err := s.ByID(context.Background(), 2, 33)
	require.NoError(t, err)
	require.Equal(t, int64(33), out.ID)

	// owner sees it
	_, err = s.ByID(context.Background(), 1, 33)
	require.NoError(t, err)

	// anyone else is told it does not exist
	_, err = s.ByID(context.Background(), 7, 33)
	require.Error(t, err)
	require.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestList_UnknownState(t *testing.T) {
	s := newService(&repoMock{}, knownUser(2), availableItem(5, 1), t0)

	_, err := s.ListForBooker(context.Background(), 2, "SOMEDAY", 0, 10)
	require.Error(t, err)
	require.Equal(t, apperr.Invalid, apperr.KindOf(err))
	require.Equal(t, "Unknown state: SOMEDAY", err.Error())

	// matching is case-sensitive
	_, err = s.ListForBooker(context.Background(), 2, "current", 0, 10)
	require.Equal(t, apperr.Invalid, apperr.KindOf(err))
}

func TestList_UnknownUser(t *testing.T) {
	s := newService(&repoMock{}, knownUser(2), availableItem(5, 1), t0)

	_, err := s.ListForOwner(context.Background(), 99, "ALL", 0, 10)
	require.Error(t, err)
	require.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestList_PaginationSnapsToPage(t *testing.T) {
	var gotLimit, gotOffset int
	var gotFilter bookingrepo.Filter
	r := &repoMock{
		listBookerFn: func(ctx context.Context, bookerID int64, f bookingrepo.Filter, now time.Time, limit, offset int) ([]bookingrepo.Detail, error) {
			gotFilter, gotLimit, gotOffset = f, limit, offset
			return []bookingrepo.Detail{}, nil
		},
	}
	s := newService(r, knownUser(2), availableItem(5, 1), t0)

	out, err := s.ListForBooker(context.Background(), 2, "FUTURE", 25, 10)
	require.NoError(t, err)
	require.Empty(t, out)
	require.Equal(t, bookingrepo.FilterFuture, gotFilter)
	require.Equal(t, 10, gotLimit)
	// from=25 with size=10 lands on page 2, offset 20
	require.Equal(t, 20, gotOffset)
}

func TestList_OwnerPerspective(t *testing.T) {
	r := &repoMock{
		listOwnerFn: func(ctx context.Context, ownerID int64, f bookingrepo.Filter, now time.Time, limit, offset int) ([]bookingrepo.Detail, error) {
			require.Equal(t, int64(1), ownerID)
			require.Equal(t, bookingrepo.FilterWaiting, f)
			return []bookingrepo.Detail{*waitingDetail(33, 5, 2, 1)}, nil
		},
	}
	s := newService(r, knownUser(1), availableItem(5, 1), t0)

	out, err := s.ListForOwner(context.Background(), 1, "WAITING", 0, 10)
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, model.BookingWaiting, out[0].Status)
}

func TestParseState(t *testing.T) {
	for _, name := range []string{"ALL", "CURRENT", "PAST", "FUTURE", "WAITING", "REJECTED"} {
		f, err := parseState(name)
		require.NoError(t, err)
		require.Equal(t, bookingrepo.Filter(name), f)
	}
	_, err := parseState("")
	require.Error(t, err)
}
