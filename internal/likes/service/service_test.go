package service_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"ms-engagement/internal/apperrors"
	"ms-engagement/internal/database/dbtest"
	likedb "ms-engagement/internal/likes/db"
	"ms-engagement/internal/likes/service"
	"ms-engagement/internal/logger"
	"ms-engagement/internal/metrics"
	"ms-engagement/internal/models"
	"sync"
	"testing"

	"github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mock implementations
type MockDBLayer struct {
	mock.Mock
}

func (m *MockDBLayer) FindLike(ctx context.Context, userID, eventID string) (*models.Like, error) {
	args := m.Called(ctx, userID, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Like), args.Error(1)
}

func (m *MockDBLayer) CreateLike(ctx context.Context, like *models.Like) error {
	args := m.Called(ctx, like)
	return args.Error(0)
}

func (m *MockDBLayer) DeleteLike(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockDBLayer) GetLikesByEvent(ctx context.Context, eventID string) ([]models.Like, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Like), args.Error(1)
}

type MockEvents struct {
	mock.Mock
}

func (m *MockEvents) EventExists(ctx context.Context, eventID string) (bool, error) {
	args := m.Called(ctx, eventID)
	return args.Bool(0), args.Error(1)
}

type MockLock struct {
	mock.Mock
}

func (m *MockLock) Acquire(ctx context.Context, userID, eventID string) (string, bool, error) {
	args := m.Called(ctx, userID, eventID)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockLock) Release(ctx context.Context, userID, eventID, token string) error {
	args := m.Called(ctx, userID, eventID, token)
	return args.Error(0)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.EngagementEvent
}

func (p *recordingPublisher) PublishEngagement(_ context.Context, ev models.EngagementEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) Types() []models.EngagementEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.EngagementEventType, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

// mutexLock is an in-process stand-in for the Redis toggle lock.
type mutexLock struct {
	mu sync.Mutex
}

func (l *mutexLock) Acquire(context.Context, string, string) (string, bool, error) {
	l.mu.Lock()
	return "t", true, nil
}

func (l *mutexLock) Release(context.Context, string, string, string) error {
	l.mu.Unlock()
	return nil
}

func quietLogger() *logger.Logger {
	return logger.NewLoggerWithWriter(io.Discard)
}

func newSQLiteService(t *testing.T, lock service.ToggleLock) (*service.LikeService, *recordingPublisher) {
	bunDB := dbtest.Open(t)
	dbtest.SeedUser(t, bunDB, "userA", "User A", "a@example.com")
	dbtest.SeedUser(t, bunDB, "userB", "User B", "b@example.com")
	dbtest.SeedEvent(t, bunDB, "E1", "userB", "Event one")

	pub := &recordingPublisher{}
	svc := service.NewLikeService(&likedb.DB{Bun: bunDB}, nil, lock, pub, metrics.NewMetrics(prometheus.NewRegistry()), quietLogger())
	return svc, pub
}

func TestToggleLike_AddsWhenAbsent(t *testing.T) {
	mockDB := new(MockDBLayer)
	mockEvents := new(MockEvents)
	pub := &recordingPublisher{}
	svc := service.NewLikeService(mockDB, mockEvents, nil, pub, nil, quietLogger())

	mockEvents.On("EventExists", mock.Anything, "E1").Return(true, nil)
	mockDB.On("FindLike", mock.Anything, "userA", "E1").Return(nil, sql.ErrNoRows)
	mockDB.On("CreateLike", mock.Anything, mock.MatchedBy(func(l *models.Like) bool {
		return l.UserID == "userA" && l.EventID == "E1" && l.ID != "" && !l.CreatedAt.IsZero()
	})).Return(nil)

	action, err := svc.ToggleLike(context.Background(), "userA", "E1")

	require.NoError(t, err)
	assert.Equal(t, models.LikeAdded, action)
	assert.Equal(t, "Like added", action.Message())
	assert.Equal(t, []models.EngagementEventType{models.EngagementLikeAdded}, pub.Types())
	mockDB.AssertExpectations(t)
}

func TestToggleLike_RemovesWhenPresent(t *testing.T) {
	mockDB := new(MockDBLayer)
	svc := service.NewLikeService(mockDB, nil, nil, nil, nil, quietLogger())

	mockDB.On("FindLike", mock.Anything, "userA", "E1").Return(&models.Like{ID: "like-1", UserID: "userA", EventID: "E1"}, nil)
	mockDB.On("DeleteLike", mock.Anything, "like-1").Return(true, nil)

	action, err := svc.ToggleLike(context.Background(), "userA", "E1")

	require.NoError(t, err)
	assert.Equal(t, models.LikeRemoved, action)
	mockDB.AssertNotCalled(t, "CreateLike", mock.Anything, mock.Anything)
}

func TestToggleLike_UniqueViolationBecomesRemove(t *testing.T) {
	mockDB := new(MockDBLayer)
	svc := service.NewLikeService(mockDB, nil, nil, nil, nil, quietLogger())

	existing := &models.Like{ID: "like-concurrent", UserID: "userA", EventID: "E1"}
	mockDB.On("FindLike", mock.Anything, "userA", "E1").Return(nil, sql.ErrNoRows).Once()
	mockDB.On("CreateLike", mock.Anything, mock.Anything).Return(fmt.Errorf("insert: %w", &pq.Error{Code: "23505"})).Once()
	mockDB.On("FindLike", mock.Anything, "userA", "E1").Return(existing, nil).Once()
	mockDB.On("DeleteLike", mock.Anything, "like-concurrent").Return(true, nil).Once()

	action, err := svc.ToggleLike(context.Background(), "userA", "E1")

	require.NoError(t, err)
	assert.Equal(t, models.LikeRemoved, action)
	mockDB.AssertExpectations(t)
}

func TestToggleLike_LostDeleteRaceBecomesAdd(t *testing.T) {
	mockDB := new(MockDBLayer)
	svc := service.NewLikeService(mockDB, nil, nil, nil, nil, quietLogger())

	mockDB.On("FindLike", mock.Anything, "userA", "E1").Return(&models.Like{ID: "like-1"}, nil).Once()
	mockDB.On("DeleteLike", mock.Anything, "like-1").Return(false, nil).Once()
	mockDB.On("FindLike", mock.Anything, "userA", "E1").Return(nil, sql.ErrNoRows).Once()
	mockDB.On("CreateLike", mock.Anything, mock.Anything).Return(nil).Once()

	action, err := svc.ToggleLike(context.Background(), "userA", "E1")

	require.NoError(t, err)
	assert.Equal(t, models.LikeAdded, action)
	mockDB.AssertExpectations(t)
}

func TestToggleLike_StoreFailureIsPersistenceError(t *testing.T) {
	mockDB := new(MockDBLayer)
	svc := service.NewLikeService(mockDB, nil, nil, nil, nil, quietLogger())

	mockDB.On("FindLike", mock.Anything, "userA", "E1").Return(nil, errors.New("connection reset"))

	_, err := svc.ToggleLike(context.Background(), "userA", "E1")

	assert.ErrorIs(t, err, apperrors.ErrPersistence)
}

func TestToggleLike_InsertFailureIsPersistenceError(t *testing.T) {
	mockDB := new(MockDBLayer)
	svc := service.NewLikeService(mockDB, nil, nil, nil, nil, quietLogger())

	mockDB.On("FindLike", mock.Anything, "userA", "E1").Return(nil, sql.ErrNoRows)
	mockDB.On("CreateLike", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	_, err := svc.ToggleLike(context.Background(), "userA", "E1")

	assert.ErrorIs(t, err, apperrors.ErrPersistence)
}

func TestToggleLike_UnknownEvent(t *testing.T) {
	mockDB := new(MockDBLayer)
	mockEvents := new(MockEvents)
	svc := service.NewLikeService(mockDB, mockEvents, nil, nil, nil, quietLogger())

	mockEvents.On("EventExists", mock.Anything, "missing").Return(false, nil)

	_, err := svc.ToggleLike(context.Background(), "userA", "missing")

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	mockDB.AssertNotCalled(t, "FindLike", mock.Anything, mock.Anything, mock.Anything)
}

func TestToggleLike_RequiresUser(t *testing.T) {
	svc := service.NewLikeService(new(MockDBLayer), nil, nil, nil, nil, quietLogger())

	_, err := svc.ToggleLike(context.Background(), "  ", "E1")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestToggleLike_ReleasesLock(t *testing.T) {
	mockDB := new(MockDBLayer)
	mockLock := new(MockLock)
	svc := service.NewLikeService(mockDB, nil, mockLock, nil, nil, quietLogger())

	mockLock.On("Acquire", mock.Anything, "userA", "E1").Return("tok", true, nil)
	mockLock.On("Release", mock.Anything, "userA", "E1", "tok").Return(nil)
	mockDB.On("FindLike", mock.Anything, "userA", "E1").Return(nil, sql.ErrNoRows)
	mockDB.On("CreateLike", mock.Anything, mock.Anything).Return(nil)

	_, err := svc.ToggleLike(context.Background(), "userA", "E1")

	require.NoError(t, err)
	mockLock.AssertExpectations(t)
}

func TestToggleLike_LockErrorFallsBackToStore(t *testing.T) {
	mockDB := new(MockDBLayer)
	mockLock := new(MockLock)
	svc := service.NewLikeService(mockDB, nil, mockLock, nil, nil, quietLogger())

	mockLock.On("Acquire", mock.Anything, "userA", "E1").Return("", false, errors.New("redis down"))
	mockDB.On("FindLike", mock.Anything, "userA", "E1").Return(nil, sql.ErrNoRows)
	mockDB.On("CreateLike", mock.Anything, mock.Anything).Return(nil)

	action, err := svc.ToggleLike(context.Background(), "userA", "E1")

	require.NoError(t, err)
	assert.Equal(t, models.LikeAdded, action)
	mockLock.AssertNotCalled(t, "Release", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGetEventLikes_HidesEmail(t *testing.T) {
	mockDB := new(MockDBLayer)
	svc := service.NewLikeService(mockDB, nil, nil, nil, nil, quietLogger())

	mockDB.On("GetLikesByEvent", mock.Anything, "E1").Return([]models.Like{
		{ID: "l1", UserID: "userA", EventID: "E1", User: &models.User{ID: "userA", FullName: "User A", Email: "a@example.com", ProfilePic: "pic"}},
	}, nil)

	likes, err := svc.GetEventLikes(context.Background(), "E1")

	require.NoError(t, err)
	require.Len(t, likes, 1)
	assert.Equal(t, "User A", likes[0].User.FullName)
	assert.Equal(t, "pic", likes[0].User.ProfilePic)
	assert.Empty(t, likes[0].User.Email)
}

func TestGetEventLikes_StoreFailure(t *testing.T) {
	mockDB := new(MockDBLayer)
	svc := service.NewLikeService(mockDB, nil, nil, nil, nil, quietLogger())

	mockDB.On("GetLikesByEvent", mock.Anything, "E1").Return(nil, errors.New("timeout"))

	_, err := svc.GetEventLikes(context.Background(), "E1")
	assert.ErrorIs(t, err, apperrors.ErrPersistence)
}

// Scenario: like, list, unlike, list.
func TestToggleLike_LikeThenUnlike(t *testing.T) {
	svc, pub := newSQLiteService(t, nil)
	ctx := context.Background()

	action, err := svc.ToggleLike(ctx, "userA", "E1")
	require.NoError(t, err)
	assert.Equal(t, models.LikeAdded, action)

	likes, err := svc.GetEventLikes(ctx, "E1")
	require.NoError(t, err)
	require.Len(t, likes, 1)
	assert.Equal(t, "User A", likes[0].User.FullName)

	action, err = svc.ToggleLike(ctx, "userA", "E1")
	require.NoError(t, err)
	assert.Equal(t, models.LikeRemoved, action)

	likes, err = svc.GetEventLikes(ctx, "E1")
	require.NoError(t, err)
	assert.Len(t, likes, 0)

	assert.Equal(t, []models.EngagementEventType{models.EngagementLikeAdded, models.EngagementLikeRemoved}, pub.Types())
}

func TestToggleLike_Parity(t *testing.T) {
	svc, _ := newSQLiteService(t, nil)
	ctx := context.Background()

	for n := 1; n <= 7; n++ {
		_, err := svc.ToggleLike(ctx, "userB", "E1")
		require.NoError(t, err)

		likes, err := svc.GetEventLikes(ctx, "E1")
		require.NoError(t, err)
		if n%2 == 1 {
			assert.Len(t, likes, 1, "after %d toggles", n)
		} else {
			assert.Len(t, likes, 0, "after %d toggles", n)
		}
	}
}

func TestToggleLike_PairsAreIndependent(t *testing.T) {
	svc, _ := newSQLiteService(t, nil)
	ctx := context.Background()

	_, err := svc.ToggleLike(ctx, "userA", "E1")
	require.NoError(t, err)
	action, err := svc.ToggleLike(ctx, "userB", "E1")
	require.NoError(t, err)
	assert.Equal(t, models.LikeAdded, action, "another user's like must not be removed")

	likes, err := svc.GetEventLikes(ctx, "E1")
	require.NoError(t, err)
	assert.Len(t, likes, 2)
}

func TestToggleLike_ConcurrentTogglesKeepParity(t *testing.T) {
	for _, tc := range []struct {
		name    string
		lock    service.ToggleLock
		toggles int
	}{
		// Without the lock each toggle loses at most toggles-1 races, within the retry bound.
		{name: "store only", lock: nil, toggles: 5},
		{name: "with lock", lock: &mutexLock{}, toggles: 9},
	} {
		t.Run(tc.name, func(t *testing.T) {
			svc, _ := newSQLiteService(t, tc.lock)
			ctx := context.Background()

			toggles := tc.toggles
			var wg sync.WaitGroup
			errs := make(chan error, toggles)
			for i := 0; i < toggles; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if _, err := svc.ToggleLike(ctx, "userA", "E1"); err != nil {
						errs <- err
					}
				}()
			}
			wg.Wait()
			close(errs)

			for err := range errs {
				t.Fatalf("toggle failed: %v", err)
			}

			likes, err := svc.GetEventLikes(ctx, "E1")
			require.NoError(t, err)
			assert.Len(t, likes, 1, "odd number of toggles must leave exactly one like")
		})
	}
}
