package items

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"campus-find/lostfound-backend/internal/apperrors"
	"campus-find/lostfound-backend/pkg/storage"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, item *Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id uint) (*Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Item), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, item *Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) List(ctx context.Context, params ListParams) ([]Item, int64, error) {
	args := m.Called(ctx, params)
	return args.Get(0).([]Item), args.Get(1).(int64), args.Error(2)
}

func (m *MockRepository) IncrementViews(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) CloseStale(ctx context.Context, retentionDays int) (int64, error) {
	args := m.Called(ctx, retentionDays)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) CountByStatus(ctx context.Context, status Status) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

func newTestService(t *testing.T, repo Repository) Service {
	t.Helper()
	store, err := storage.NewLocalStore(t.TempDir(), 5<<20, 10<<20)
	require.NoError(t, err)
	return NewService(repo, store, zap.NewNop())
}

func TestCreateValidatesInput(t *testing.T) {
	repo := new(MockRepository)
	service := newTestService(t, repo)
	ctx := context.Background()

	tests := []struct {
		name string
		req  CreateRequest
	}{
		{"bad type", CreateRequest{Type: "stolen", Title: "Wallet"}},
		{"missing title", CreateRequest{Type: TypeFound, Title: "  "}},
		{"bad date", CreateRequest{Type: TypeFound, Title: "Wallet", OccurredOn: "yesterday"}},
		{"empty question answer", CreateRequest{
			Type: TypeFound, Title: "Wallet",
			Questions: []Question{{Question: "What color?", Answer: ""}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Create(ctx, 1, tt.req)
			require.Error(t, err)
			assert.Equal(t, apperrors.CodeValidation, apperrors.From(err).Code)
		})
	}
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateStartsActiveAndUnverified(t *testing.T) {
	repo := new(MockRepository)
	service := newTestService(t, repo)
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*items.Item")).Return(nil)

	item, err := service.Create(ctx, 7, CreateRequest{
		Type:       TypeFound,
		Title:      " Black Wallet ",
		OccurredOn: "2026-08-20",
		Questions:  []Question{{Question: "Brand?", Answer: "fossil"}},
	})
	require.NoError(t, err)

	assert.Equal(t, StatusActive, item.Status)
	assert.False(t, item.Verified)
	assert.Equal(t, "Black Wallet", item.Title)
	assert.Equal(t, uint(7), item.ReporterID)
}

func TestGetHidesUnverifiedItemsFromOthers(t *testing.T) {
	repo := new(MockRepository)
	service := newTestService(t, repo)
	ctx := context.Background()

	repo.On("GetByID", ctx, uint(3)).Return(&Item{ID: 3, ReporterID: 1, Verified: false}, nil)

	_, err := service.Get(ctx, 3, 2, false)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.From(err).Code)

	// The reporter and admins still see it.
	repo.On("IncrementViews", ctx, uint(3)).Return(nil)
	_, err = service.Get(ctx, 3, 1, false)
	assert.NoError(t, err)
	_, err = service.Get(ctx, 3, 2, true)
	assert.NoError(t, err)
}

func TestGetCountsViewsForNonReporters(t *testing.T) {
	repo := new(MockRepository)
	service := newTestService(t, repo)
	ctx := context.Background()

	repo.On("GetByID", ctx, uint(3)).Return(&Item{ID: 3, ReporterID: 1, Verified: true, Views: 4}, nil).Once()
	repo.On("IncrementViews", ctx, uint(3)).Return(nil).Once()

	item, err := service.Get(ctx, 3, 2, false)
	require.NoError(t, err)
	assert.Equal(t, int64(5), item.Views)

	// The reporter's own views do not count.
	repo.On("GetByID", ctx, uint(3)).Return(&Item{ID: 3, ReporterID: 1, Verified: true, Views: 4}, nil).Once()
	item, err = service.Get(ctx, 3, 1, false)
	require.NoError(t, err)
	assert.Equal(t, int64(4), item.Views)
	repo.AssertNumberOfCalls(t, "IncrementViews", 1)
}

func TestUpdateRejectsIllegalStatusChange(t *testing.T) {
	repo := new(MockRepository)
	service := newTestService(t, repo)
	ctx := context.Background()

	repo.On("GetByID", ctx, uint(3)).Return(&Item{ID: 3, ReporterID: 1, Status: StatusReturned}, nil)

	_, err := service.Update(ctx, 3, 1, UpdateRequest{Status: StatusActive})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeStateConflict, apperrors.From(err).Code)
}

func TestUpdateByNonReporterDenied(t *testing.T) {
	repo := new(MockRepository)
	service := newTestService(t, repo)
	ctx := context.Background()

	repo.On("GetByID", ctx, uint(3)).Return(&Item{ID: 3, ReporterID: 1, Status: StatusActive}, nil)

	_, err := service.Update(ctx, 3, 2, UpdateRequest{Title: "hijacked"})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeAuthorization, apperrors.From(err).Code)
}

func TestDeleteAllowsReporterAndAdmin(t *testing.T) {
	repo := new(MockRepository)
	service := newTestService(t, repo)
	ctx := context.Background()

	repo.On("GetByID", ctx, uint(3)).Return(&Item{ID: 3, ReporterID: 1, Status: StatusActive}, nil)
	repo.On("Delete", ctx, uint(3)).Return(nil)

	err := service.Delete(ctx, 3, 2, false)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeAuthorization, apperrors.From(err).Code)

	assert.NoError(t, service.Delete(ctx, 3, 1, false))
	assert.NoError(t, service.Delete(ctx, 3, 2, true))
}

func TestPublicViewStripsAnswers(t *testing.T) {
	item := Item{
		ID:    3,
		Title: "Black Wallet",
		Questions: datatypes.NewJSONSlice([]Question{
			{Question: "Brand?", Answer: "fossil"},
			{Question: "Contents?", Answer: "bus pass"},
		}),
		Contact: datatypes.NewJSONType(ContactInfo{Email: "owner@campus.edu"}),
	}

	view := item.Public()
	assert.Equal(t, []string{"Brand?", "Contents?"}, view.QuestionPrompts)
}
