package review

import (
	"context"
	"sync"
	"testing"

	"rawmart-be/internal/material"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// memoryRepository mimics the reviews table, including the one-active-review
// per user and material constraint.
type memoryRepository struct {
	mu      sync.Mutex
	nextID  uint
	reviews map[uint]*Review
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{reviews: map[uint]*Review{}}
}

func (m *memoryRepository) Create(ctx context.Context, userID, materialID uint, rating int, comment string) (*Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, rv := range m.reviews {
		if rv.IsActive && rv.UserID == userID && rv.MaterialID == materialID {
			return nil, ErrAlreadyReviewed
		}
	}
	m.nextID++
	rv := &Review{ID: m.nextID, UserID: userID, MaterialID: materialID, Rating: rating, Comment: comment, IsActive: true}
	m.reviews[rv.ID] = rv
	cp := *rv
	return &cp, nil
}

func (m *memoryRepository) GetByID(ctx context.Context, id uint) (*Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rv, ok := m.reviews[id]
	if !ok || !rv.IsActive {
		return nil, ErrReviewNotFound
	}
	cp := *rv
	return &cp, nil
}

func (m *memoryRepository) Update(ctx context.Context, id uint, rating int, comment string) (*Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rv, ok := m.reviews[id]
	if !ok || !rv.IsActive {
		return nil, ErrReviewNotFound
	}
	rv.Rating, rv.Comment = rating, comment
	cp := *rv
	return &cp, nil
}

func (m *memoryRepository) Deactivate(ctx context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rv, ok := m.reviews[id]
	if !ok || !rv.IsActive {
		return ErrReviewNotFound
	}
	rv.IsActive = false
	return nil
}

func (m *memoryRepository) ListByMaterial(ctx context.Context, materialID uint) ([]Review, error) {
	return nil, nil
}

func (m *memoryRepository) ListActiveRatings(ctx context.Context, materialID uint) ([]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []int{}
	for id := uint(1); id <= m.nextID; id++ {
		rv := m.reviews[id]
		if rv.IsActive && rv.MaterialID == materialID {
			out = append(out, rv.Rating)
		}
	}
	return out, nil
}

type MockMaterialStore struct {
	mock.Mock
}

func (m *MockMaterialStore) GetByID(ctx context.Context, id uint) (*material.Material, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*material.Material), args.Error(1)
}

func (m *MockMaterialStore) UpdateRating(ctx context.Context, id uint, ratings float64, numReviews int) error {
	return m.Called(ctx, id, ratings, numReviews).Error(0)
}

// lastRating returns the arguments of the most recent UpdateRating call.
func (m *MockMaterialStore) lastRating(t *testing.T) (float64, int) {
	t.Helper()
	var calls []mock.Call
	for _, c := range m.Calls {
		if c.Method == "UpdateRating" {
			calls = append(calls, c)
		}
	}
	require.NotEmpty(t, calls)
	last := calls[len(calls)-1]
	return last.Arguments.Get(2).(float64), last.Arguments.Int(3)
}

func TestService_RatingsRecomputedFromActiveReviews(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepository()
	materials := new(MockMaterialStore)
	svc := NewService(repo, materials)

	materials.On("GetByID", ctx, uint(1)).Return(&material.Material{ID: 1, IsActive: true}, nil)
	materials.On("UpdateRating", ctx, uint(1), mock.Anything, mock.Anything).Return(nil)

	var lowest *Review
	for user, rating := range map[uint]int{10: 5, 11: 4, 12: 3} {
		rv, err := svc.Create(ctx, user, 1, rating, "")
		require.NoError(t, err)
		if rating == 3 {
			lowest = rv
		}
	}

	ratings, count := materials.lastRating(t)
	assert.Equal(t, 4.0, ratings)
	assert.Equal(t, 3, count)

	require.NoError(t, svc.Delete(ctx, lowest.UserID, lowest.ID))

	ratings, count = materials.lastRating(t)
	assert.Equal(t, 4.5, ratings)
	assert.Equal(t, 2, count)
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Invalid rating", func(t *testing.T) {
		svc := NewService(newMemoryRepository(), new(MockMaterialStore))
		_, err := svc.Create(ctx, 1, 1, 6, "")
		assert.ErrorIs(t, err, ErrInvalidRating)
	})

	t.Run("Inactive material", func(t *testing.T) {
		materials := new(MockMaterialStore)
		svc := NewService(newMemoryRepository(), materials)
		materials.On("GetByID", ctx, uint(1)).Return(&material.Material{ID: 1, IsActive: false}, nil)

		_, err := svc.Create(ctx, 1, 1, 5, "")
		assert.ErrorIs(t, err, material.ErrMaterialNotFound)
	})

	t.Run("Second review by same user", func(t *testing.T) {
		materials := new(MockMaterialStore)
		svc := NewService(newMemoryRepository(), materials)
		materials.On("GetByID", ctx, uint(1)).Return(&material.Material{ID: 1, IsActive: true}, nil)
		materials.On("UpdateRating", ctx, uint(1), mock.Anything, mock.Anything).Return(nil)

		_, err := svc.Create(ctx, 1, 1, 5, "")
		require.NoError(t, err)
		_, err = svc.Create(ctx, 1, 1, 4, "")
		assert.ErrorIs(t, err, ErrAlreadyReviewed)
	})
}

func TestService_UpdateAndDelete_AuthorOnly(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepository()
	materials := new(MockMaterialStore)
	svc := NewService(repo, materials)

	materials.On("GetByID", ctx, uint(1)).Return(&material.Material{ID: 1, IsActive: true}, nil)
	materials.On("UpdateRating", ctx, uint(1), mock.Anything, mock.Anything).Return(nil)

	rv, err := svc.Create(ctx, 10, 1, 2, "meh")
	require.NoError(t, err)

	_, err = svc.Update(ctx, 11, rv.ID, 5, "hijack")
	assert.ErrorIs(t, err, ErrNotAuthor)
	assert.ErrorIs(t, svc.Delete(ctx, 11, rv.ID), ErrNotAuthor)

	updated, err := svc.Update(ctx, 10, rv.ID, 4, "better now")
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Rating)

	ratings, count := materials.lastRating(t)
	assert.Equal(t, 4.0, ratings)
	assert.Equal(t, 1, count)
}
