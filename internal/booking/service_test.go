package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetbooking/internal/events"
	"fleetbooking/internal/store"
	"fleetbooking/internal/store/storetest"
)

type recorded struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorded) Record(_ context.Context, e events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorded) types() []events.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.Type, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

var requester = Requester{
	UserID:     "u-john",
	Name:       "John Smith",
	Department: "Mathematics",
	Email:      "john.smith@school.edu",
	Phone:      "+1 555 0101",
}

func newTestService(t *testing.T) (*Service, *recorded, *store.Memory) {
	t.Helper()
	st := store.NewMemory()
	rec := &recorded{}
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc := NewService(NewRepository(st, nil), fixedCalendar(now), rec)
	return svc, rec, st
}

func TestCreate_RoundTripPreservesFields(t *testing.T) {
	svc, rec, _ := newTestService(t)
	ctx := context.Background()

	in := validInput()
	in.Purpose = PurposeOther
	in.OtherPurpose = "Parent conference"

	created, err := svc.Create(ctx, requester, in)
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)

	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, StatusPending, got.Status)
	assert.Equal(t, requester.UserID, got.UserID)
	assert.Equal(t, requester.Name, got.EmployeeName)
	assert.Equal(t, requester.Department, got.Department)
	assert.Equal(t, requester.Email, got.Email)
	assert.Equal(t, requester.Phone, got.Phone)
	assert.Equal(t, in.Date, got.Date)
	assert.Equal(t, in.Time, got.Time)
	assert.Equal(t, in.Destination, got.Destination)
	assert.Equal(t, in.Passengers, got.Passengers)
	assert.Equal(t, in.VehicleType, got.VehicleType)
	assert.Equal(t, in.Purpose, got.Purpose)
	assert.Equal(t, in.OtherPurpose, got.OtherPurpose)
	assert.False(t, got.CreatedAt.IsZero())
	assert.Equal(t, got.CreatedAt, got.UpdatedAt)
	assert.Empty(t, got.TripStatus)

	assert.Equal(t, []events.Type{events.TypeSubmitted}, rec.types())
}

func TestCreate_CapacityIsEnforced(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	in := validInput()
	in.VehicleType = VehicleSedan
	in.Passengers = 5
	_, err := svc.Create(ctx, requester, in)
	assert.Equal(t, "CAPACITY_EXCEEDED", codeOf(t, err))

	in.Passengers = 4
	_, err = svc.Create(ctx, requester, in)
	assert.NoError(t, err)
}

func TestCreate_DropsOtherPurposeForFixedPurpose(t *testing.T) {
	svc, _, _ := newTestService(t)

	in := validInput()
	in.OtherPurpose = "ignored"
	b, err := svc.Create(context.Background(), requester, in)
	require.NoError(t, err)
	assert.Empty(t, b.OtherPurpose)
}

func TestUpdate_RevalidatesMergedBooking(t *testing.T) {
	svc, rec, _ := newTestService(t)
	ctx := context.Background()

	b, err := svc.Create(ctx, requester, validInput())
	require.NoError(t, err)

	tooMany := 6
	_, err = svc.Update(ctx, b.ID, Patch{Passengers: &tooMany}, requester.UserID)
	assert.Equal(t, "CAPACITY_EXCEEDED", codeOf(t, err))

	suv := VehicleSUV
	updated, err := svc.Update(ctx, b.ID, Patch{Passengers: &tooMany, VehicleType: &suv}, requester.UserID)
	require.NoError(t, err)
	assert.Equal(t, 6, updated.Passengers)
	assert.Equal(t, VehicleSUV, updated.VehicleType)

	got, err := svc.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, VehicleSUV, got.VehicleType)
	assert.Equal(t, []events.Type{events.TypeSubmitted, events.TypeUpdated}, rec.types())
}

func TestCancel_OnlyWhilePending(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	b, err := svc.Create(ctx, requester, validInput())
	require.NoError(t, err)

	cancelled, err := svc.Cancel(ctx, b.ID, requester.UserID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)

	_, err = svc.Cancel(ctx, b.ID, requester.UserID)
	assert.ErrorIs(t, err, ErrNotPending)

	dest := "Library"
	_, err = svc.Update(ctx, b.ID, Patch{Destination: &dest}, requester.UserID)
	assert.ErrorIs(t, err, ErrNotPending)
}

func TestUpdate_StaleCopyConflicts(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	b, err := svc.Create(ctx, requester, validInput())
	require.NoError(t, err)

	stale, err := svc.Repo.Get(ctx, b.ID)
	require.NoError(t, err)

	dest := "Library"
	_, err = svc.Update(ctx, b.ID, Patch{Destination: &dest}, requester.UserID)
	require.NoError(t, err)

	stale.Status = StatusCancelled
	assert.ErrorIs(t, svc.Repo.Update(ctx, stale), ErrConflict)
}

func TestGet_NotFound(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestList_SkipsCorruptRecords(t *testing.T) {
	svc, _, st := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, requester, validInput())
	require.NoError(t, err)
	_, err = st.Set(ctx, Key("broken"), []byte(`{"id":"broken","status":"archived","vehicleType":"Sedan"}`))
	require.NoError(t, err)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = svc.Get(ctx, "broken")
	assert.ErrorIs(t, err, ErrCorruptRecord)
}

func TestListByUser_NewestFirst(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	clock := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc.Cal.Now = func() time.Time { return clock }

	first, err := svc.Create(ctx, requester, validInput())
	require.NoError(t, err)
	clock = clock.Add(time.Minute)
	second, err := svc.Create(ctx, requester, validInput())
	require.NoError(t, err)
	clock = clock.Add(time.Minute)
	other := requester
	other.UserID = "u-emily"
	_, err = svc.Create(ctx, other, validInput())
	require.NoError(t, err)

	mine, err := svc.ListByUser(ctx, requester.UserID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, second.ID, mine[0].ID)
	assert.Equal(t, first.ID, mine[1].ID)
}

func TestCancel_ConcurrentEditConflicts(t *testing.T) {
	svc, rec, st := newTestService(t)
	ctx := context.Background()

	b, err := svc.Create(ctx, requester, validInput())
	require.NoError(t, err)

	svc.Repo = NewRepository(storetest.BeforeWrite(st, Key(b.ID), func(ctx context.Context, inner store.Store) {
		other := NewRepository(inner, nil)
		cur, err := other.Get(ctx, b.ID)
		require.NoError(t, err)
		cur.Destination = "Library"
		require.NoError(t, other.Update(ctx, cur))
	}), nil)

	_, err = svc.Cancel(ctx, b.ID, requester.UserID)
	assert.ErrorIs(t, err, ErrConflict)

	got, err := NewRepository(st, nil).Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got.Status)
	assert.Equal(t, "Library", got.Destination)
	assert.Equal(t, []events.Type{events.TypeSubmitted}, rec.types())
}

func TestStoreFailuresAreUnavailable(t *testing.T) {
	svc, _, st := newTestService(t)
	ctx := context.Background()

	b, err := svc.Create(ctx, requester, validInput())
	require.NoError(t, err)

	svc.Repo = NewRepository(storetest.FailKeys(st, Key(b.ID), KeyPrefix), nil)

	_, err = svc.Get(ctx, b.ID)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	_, err = svc.List(ctx)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	_, err = svc.Cancel(ctx, b.ID, requester.UserID)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestUpdate_LeavingOtherClearsOtherPurpose(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	in := validInput()
	in.Purpose = PurposeOther
	in.OtherPurpose = "Parent conference"
	b, err := svc.Create(ctx, requester, in)
	require.NoError(t, err)

	meeting := PurposeMeeting
	stale := "still here"
	updated, err := svc.Update(ctx, b.ID, Patch{Purpose: &meeting, OtherPurpose: &stale}, requester.UserID)
	require.NoError(t, err)
	assert.Equal(t, PurposeMeeting, updated.Purpose)
	assert.Empty(t, updated.OtherPurpose)
}
