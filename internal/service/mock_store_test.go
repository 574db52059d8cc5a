package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"slotbook/internal/models"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) GetSlot(ctx context.Context, id int64) (*models.Slot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Slot), args.Error(1)
}

func (m *mockStore) CreateSlot(ctx context.Context, slot *models.Slot) error {
	return m.Called(ctx, slot).Error(0)
}

func (m *mockStore) GetOpenSlots(ctx context.Context, branchID int64, date time.Time) ([]*models.Slot, error) {
	args := m.Called(ctx, branchID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Slot), args.Error(1)
}

func (m *mockStore) SetSlotVisibility(ctx context.Context, id int64, opened, shown bool) error {
	return m.Called(ctx, id, opened, shown).Error(0)
}

func (m *mockStore) CreateReservation(ctx context.Context, res *models.Reservation) error {
	return m.Called(ctx, res).Error(0)
}

func (m *mockStore) GetReservation(ctx context.Context, id int64) (*models.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Reservation), args.Error(1)
}

func (m *mockStore) FindGuestReservation(ctx context.Context, number, bookerName, phoneNumber string) (*models.Reservation, error) {
	args := m.Called(ctx, number, bookerName, phoneNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Reservation), args.Error(1)
}

func (m *mockStore) ListByUser(ctx context.Context, userID int64, page, pageSize int) ([]*models.Reservation, int64, error) {
	args := m.Called(ctx, userID, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*models.Reservation), args.Get(1).(int64), args.Error(2)
}

func (m *mockStore) UpdateForMember(ctx context.Context, id, userID int64, bookerName, phoneNumber string) (int64, error) {
	args := m.Called(ctx, id, userID, bookerName, phoneNumber)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStore) UpdateForGuest(ctx context.Context, id int64, checkPhone, bookerName, phoneNumber string) (int64, error) {
	args := m.Called(ctx, id, checkPhone, bookerName, phoneNumber)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStore) SearchReservations(ctx context.Context, bookerName, phoneNumber *string, id *int64) ([]*models.Reservation, error) {
	args := m.Called(ctx, bookerName, phoneNumber, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Reservation), args.Error(1)
}

func (m *mockStore) CancelReservation(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockStore) GetBranch(ctx context.Context, id int64) (*models.Branch, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Branch), args.Error(1)
}

func (m *mockStore) GetTheme(ctx context.Context, id int64) (*models.Theme, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Theme), args.Error(1)
}

func (m *mockStore) GetPayment(ctx context.Context, id int64) (*models.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *mockStore) CreateUser(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockStore) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockStore) GetUserByLoginID(ctx context.Context, loginID string) (*models.User, error) {
	args := m.Called(ctx, loginID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockStore) FindUserByInfo(ctx context.Context, loginID, nickname, phoneNumber string) (*models.User, error) {
	args := m.Called(ctx, loginID, nickname, phoneNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockStore) DeactivateUser(ctx context.Context, id int64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

type fixedRand struct {
	n int
}

func (r fixedRand) Intn(int) int { return r.n }
