package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdc-cast/expense-approval/internal/models"
)

func TestStorage_RegisterUser(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	user := models.User{
		UID:              uuid.New().String(),
		Email:            "new@example.com",
		FullName:         "New User",
		PasswordHash:     "hashedpassword",
		Role:             models.RoleUser,
		Status:           models.UserStatusPending,
		IDNumber:         "",
		RegistrationDate: time.Now().UTC(),
	}

	err := storage.RegisterUser(context.Background(), user)
	require.NoError(t, err)

	verification := NewTestVerification(storage)
	verification.VerifyUserExists(t, user.UID)
	verification.VerifyUserStatus(t, user.UID, models.UserStatusPending)

	// Повторная регистрация с тем же email нарушает уникальность
	user.UID = uuid.New().String()
	err = storage.RegisterUser(context.Background(), user)
	require.ErrorIs(t, err, ErrDuplicate)
}

func TestStorage_GetUserByEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr error
		setup   func(t *testing.T, factory *TestDataFactory) string
	}{
		{
			name:    "successful get user by email",
			email:   "test@example.com",
			wantErr: nil,
			setup: func(t *testing.T, factory *TestDataFactory) string {
				userUID := uuid.New().String()
				factory.CreateUser(t, userUID, "test@example.com", "Test User", "hashedpassword",
					models.RoleUser, models.UserStatusApproved)
				return userUID
			},
		},
		{
			name:    "get non-existing user by email",
			email:   "ghost@example.com",
			wantErr: ErrNotFound,
			setup:   func(_ *testing.T, _ *TestDataFactory) string { return "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage, cleanup := setupTestDatabase(t)
			defer cleanup()

			factory := NewTestDataFactory(storage)
			userUID := tt.setup(t, factory)

			got, err := storage.GetUserByEmail(context.Background(), tt.email)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
			} else {
				require.NoError(t, err)
				require.NotNil(t, got)
				assert.Equal(t, userUID, got.UID)
				assert.Equal(t, tt.email, got.Email)
				assert.Equal(t, models.UserStatusApproved, got.Status)
			}
		})
	}
}

func TestStorage_ListUsers(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	approvedUID := uuid.New().String()
	pendingUID := uuid.New().String()
	factory.CreateUser(t, approvedUID, "old@example.com", "Old User", "hash",
		models.RoleUser, models.UserStatusApproved)
	factory.CreateUser(t, pendingUID, "fresh@example.com", "Fresh User", "hash",
		models.RoleUser, models.UserStatusPending)

	got, err := storage.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Ожидающие одобрения идут первыми
	assert.Equal(t, pendingUID, got[0].UID)
	assert.Equal(t, approvedUID, got[1].UID)
}

func TestStorage_ApproveUser(t *testing.T) {
	tests := []struct {
		name             string
		wantRowsAffected int
		setup            func(t *testing.T, factory *TestDataFactory) string
	}{
		{
			name:             "successful approve pending user",
			wantRowsAffected: 1,
			setup: func(t *testing.T, factory *TestDataFactory) string {
				userUID := uuid.New().String()
				factory.CreateUser(t, userUID, "pending@example.com", "Pending User", "hash",
					models.RoleUser, models.UserStatusPending)
				return userUID
			},
		},
		{
			name:             "approve non-existing user",
			wantRowsAffected: 0,
			setup:            func(_ *testing.T, _ *TestDataFactory) string { return uuid.New().String() },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage, cleanup := setupTestDatabase(t)
			defer cleanup()

			factory := NewTestDataFactory(storage)
			userUID := tt.setup(t, factory)

			gotRowsAffected, err := storage.ApproveUser(context.Background(), userUID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantRowsAffected, gotRowsAffected)

			if tt.wantRowsAffected > 0 {
				verification := NewTestVerification(storage)
				verification.VerifyUserStatus(t, userUID, models.UserStatusApproved)
			}
		})
	}
}

func TestStorage_DeleteUser(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	userUID := uuid.New().String()
	factory.CreateUser(t, userUID, "gone@example.com", "Gone User", "hash",
		models.RoleUser, models.UserStatusApproved)

	// Расходы удалённого пользователя остаются в таблице
	expenseUID := factory.CreateExpense(t, userUID, "gone@example.com", "Gone User",
		"Workshop materials", 125.50, time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC),
		models.ExpenseStatusApproved)

	gotRowsAffected, err := storage.DeleteUser(context.Background(), userUID)
	require.NoError(t, err)
	assert.Equal(t, 1, gotRowsAffected)

	_, err = storage.GetUser(context.Background(), userUID)
	require.ErrorIs(t, err, ErrNotFound)

	orphan, err := storage.ReadExpense(context.Background(), expenseUID)
	require.NoError(t, err)
	assert.Equal(t, "gone@example.com", orphan.UserEmail)
}

func TestStorage_UpdatePassword(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	userUID := uuid.New().String()
	factory.CreateUser(t, userUID, "test@example.com", "Test User", "oldhash",
		models.RoleUser, models.UserStatusApproved)

	gotRowsAffected, err := storage.UpdatePassword(context.Background(), userUID, "newhash")
	require.NoError(t, err)
	assert.Equal(t, 1, gotRowsAffected)

	got, err := storage.GetUser(context.Background(), userUID)
	require.NoError(t, err)
	assert.Equal(t, "newhash", got.PasswordHash)
}

func TestStorage_CreateAndReadExpense(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	userUID := uuid.New().String()
	factory.CreateUser(t, userUID, "test@example.com", "Test User", "hash",
		models.RoleUser, models.UserStatusApproved)

	expense := GetTestExpense(userUID)
	err := storage.CreateExpense(context.Background(), expense)
	require.NoError(t, err)

	got, err := storage.ReadExpense(context.Background(), expense.UID)
	require.NoError(t, err)
	assert.Equal(t, expense.UID, got.UID)
	assert.Equal(t, expense.UserUID, got.UserUID)
	assert.Equal(t, expense.ItemName, got.ItemName)
	assert.InDelta(t, expense.Amount, got.Amount, 0.001)
	assert.Equal(t, models.ExpenseStatusPending, got.Status)

	_, err = storage.ReadExpense(context.Background(), uuid.New().String())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStorage_SetExpenseStatus(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	userUID := uuid.New().String()
	factory.CreateUser(t, userUID, "test@example.com", "Test User", "hash",
		models.RoleUser, models.UserStatusApproved)
	expenseUID := factory.CreateExpense(t, userUID, "test@example.com", "Test User",
		"Workshop materials", 125.50, time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC),
		models.ExpenseStatusPending)

	gotRowsAffected, err := storage.SetExpenseStatus(context.Background(), expenseUID, models.ExpenseStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, 1, gotRowsAffected)

	verification := NewTestVerification(storage)
	verification.VerifyExpenseStatus(t, expenseUID, models.ExpenseStatusApproved)

	// Повторное решение по уже одобренной записи не затрагивает строк
	gotRowsAffected, err = storage.SetExpenseStatus(context.Background(), expenseUID, models.ExpenseStatusRejected)
	require.NoError(t, err)
	assert.Equal(t, 0, gotRowsAffected)
	verification.VerifyExpenseStatus(t, expenseUID, models.ExpenseStatusApproved)
}

func TestStorage_ExpenseListings(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	userUID1 := uuid.New().String()
	userUID2 := uuid.New().String()
	factory.CreateUser(t, userUID1, "user1@example.com", "User One", "hash",
		models.RoleUser, models.UserStatusApproved)
	factory.CreateUser(t, userUID2, "user2@example.com", "User Two", "hash",
		models.RoleUser, models.UserStatusApproved)

	date := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	factory.CreateExpense(t, userUID1, "user1@example.com", "User One", "Stationery", 42.00, date, models.ExpenseStatusApproved)
	factory.CreateExpense(t, userUID1, "user1@example.com", "User One", "Books", 80.00, date, models.ExpenseStatusPending)
	factory.CreateExpense(t, userUID2, "user2@example.com", "User Two", "Paint", 30.00, date, models.ExpenseStatusApproved)

	ownApproved, err := storage.ListOwnApproved(context.Background(), userUID1)
	require.NoError(t, err)
	require.Len(t, ownApproved, 1)
	assert.Equal(t, "Stationery", ownApproved[0].ItemName)

	allApproved, err := storage.ListAllApproved(context.Background())
	require.NoError(t, err)
	assert.Len(t, allApproved, 2)

	pending, err := storage.ListPending(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "Books", pending[0].ItemName)

	byOwner, err := storage.ListByOwner(context.Background(), userUID1)
	require.NoError(t, err)
	assert.Len(t, byOwner, 2)
}

func TestStorage_UpdateExpense(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	userUID := uuid.New().String()
	factory.CreateUser(t, userUID, "test@example.com", "Test User", "hash",
		models.RoleUser, models.UserStatusApproved)
	expenseUID := factory.CreateExpense(t, userUID, "test@example.com", "Test User",
		"Workshop materials", 125.50, time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC),
		models.ExpenseStatusPending)

	updated := models.Expense{
		Date:        time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC),
		ItemName:    "Stationery refill",
		Amount:      42.00,
		YearLevel:   "Year 3",
		Description: "restock",
	}
	gotRowsAffected, err := storage.UpdateExpense(context.Background(), updated, expenseUID)
	require.NoError(t, err)
	assert.Equal(t, 1, gotRowsAffected)

	got, err := storage.ReadExpense(context.Background(), expenseUID)
	require.NoError(t, err)
	assert.Equal(t, "Stationery refill", got.ItemName)
	assert.InDelta(t, 42.00, got.Amount, 0.001)
	// Снимок владельца правка не меняет
	assert.Equal(t, "test@example.com", got.UserEmail)
	assert.Equal(t, models.ExpenseStatusPending, got.Status)
}

func TestStorage_DeleteExpense(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	userUID := uuid.New().String()
	factory.CreateUser(t, userUID, "test@example.com", "Test User", "hash",
		models.RoleUser, models.UserStatusApproved)
	expenseUID := factory.CreateExpense(t, userUID, "test@example.com", "Test User",
		"Workshop materials", 125.50, time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC),
		models.ExpenseStatusPending)

	gotRowsAffected, err := storage.DeleteExpense(context.Background(), expenseUID)
	require.NoError(t, err)
	assert.Equal(t, 1, gotRowsAffected)

	verification := NewTestVerification(storage)
	verification.VerifyExpenseDeleted(t, expenseUID)

	gotRowsAffected, err = storage.DeleteExpense(context.Background(), expenseUID)
	require.NoError(t, err)
	assert.Equal(t, 0, gotRowsAffected)
}

func TestStorage_SummarizeApproved(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	userUID1 := uuid.New().String()
	userUID2 := uuid.New().String()
	factory.CreateUser(t, userUID1, "user1@example.com", "User One", "hash",
		models.RoleUser, models.UserStatusApproved)
	factory.CreateUser(t, userUID2, "user2@example.com", "User Two", "hash",
		models.RoleUser, models.UserStatusApproved)

	recent := time.Now().UTC().AddDate(0, 0, -2)
	old := time.Now().UTC().AddDate(-1, 0, 0)
	factory.CreateExpense(t, userUID1, "user1@example.com", "User One", "Stationery", 100.00, recent, models.ExpenseStatusApproved)
	factory.CreateExpense(t, userUID1, "user1@example.com", "User One", "Books", 50.00, old, models.ExpenseStatusApproved)
	factory.CreateExpense(t, userUID1, "user1@example.com", "User One", "Paint", 30.00, recent, models.ExpenseStatusPending)
	factory.CreateExpense(t, userUID2, "user2@example.com", "User Two", "Glue", 20.00, recent, models.ExpenseStatusApproved)

	since := time.Now().UTC().AddDate(0, 0, -7)

	// Агрегат по одному владельцу учитывает только его одобренные записи за период
	summary, err := storage.SummarizeApproved(context.Background(), userUID1, since)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Count)
	assert.InDelta(t, 100.00, summary.Total, 0.001)
	assert.InDelta(t, 100.00, summary.ByYear["Year 2"], 0.001)

	// Пустой userUID агрегирует по всем владельцам
	summary, err = storage.SummarizeApproved(context.Background(), "", since)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Count)
	assert.InDelta(t, 120.00, summary.Total, 0.001)
}

func TestStorage_Notifications(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	firstUID := factory.CreateNotification(t, "first", models.NotificationNewUser, false)
	secondUID := factory.CreateNotification(t, "second", models.NotificationExpensePending, false)
	factory.CreateNotification(t, "already read", models.NotificationSystem, true)

	// Самые свежие уведомления идут первыми
	got, err := storage.ListNotifications(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "already read", got[0].Message)
	assert.Equal(t, secondUID, got[1].UID)
	assert.Equal(t, firstUID, got[2].UID)

	count, err := storage.CountUnread(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	gotRowsAffected, err := storage.MarkNotificationRead(context.Background(), firstUID)
	require.NoError(t, err)
	assert.Equal(t, 1, gotRowsAffected)

	gotRowsAffected, err = storage.MarkAllNotificationsRead(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, gotRowsAffected)

	count, err = storage.CountUnread(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	gotRowsAffected, err = storage.DeleteNotification(context.Background(), secondUID)
	require.NoError(t, err)
	assert.Equal(t, 1, gotRowsAffected)

	gotRowsAffected, err = storage.DeleteAllNotifications(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, gotRowsAffected)
}

func TestStorage_CreateNotificationWithMetadata(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	n := models.Notification{
		UID:     uuid.New().String(),
		Message: "expense approved",
		Type:    models.NotificationExpenseApproved,
		Metadata: map[string]any{
			"expense_uid": "exp-1",
		},
		Read:      false,
		CreatedAt: time.Now().UTC(),
	}
	err := storage.CreateNotification(context.Background(), n)
	require.NoError(t, err)

	got, err := storage.ListNotifications(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, n.UID, got[0].UID)
	assert.Equal(t, "exp-1", got[0].Metadata["expense_uid"])
}
