// Package services содержит бизнес-логику для управления расходами:
// подачу, правку, односторонние переходы статуса и выборки по роли.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/mdc-cast/expense-approval/internal/models"
	"github.com/mdc-cast/expense-approval/internal/storage/repository"
)

// Ошибки уровня сервиса.
var (
	// ErrExpenseNotFound — расход не найден.
	ErrExpenseNotFound = errors.New("expense not found")
	// ErrForbidden — запись принадлежит другому пользователю.
	ErrForbidden = errors.New("expense belongs to another user")
	// ErrNotPending — по записи уже принято решение, правка запрещена.
	ErrNotPending = errors.New("only pending expenses can be modified")
	// ErrInvalidAmount — сумма не является конечным неотрицательным числом.
	ErrInvalidAmount = errors.New("amount must be a finite non-negative number")
)

// ExpenseRepository определяет методы для работы с расходами в хранилище.
type ExpenseRepository interface {
	CreateExpense(ctx context.Context, expense models.Expense) error
	ReadExpense(ctx context.Context, uid string) (*models.Expense, error)
	UpdateExpense(ctx context.Context, expense models.Expense, uid string) (int, error)
	DeleteExpense(ctx context.Context, uid string) (int, error)
	SetExpenseStatus(ctx context.Context, uid, status string) (int, error)
	ListOwnApproved(ctx context.Context, userUID string) ([]*models.Expense, error)
	ListAllApproved(ctx context.Context) ([]*models.Expense, error)
	ListPending(ctx context.Context) ([]*models.Expense, error)
	ListByOwner(ctx context.Context, userUID string) ([]*models.Expense, error)
	SummarizeApproved(ctx context.Context, userUID string, since time.Time) (*models.ExpenseSummary, error)
}

// UserReader отдаёт запись активного пользователя для снимка владельца.
type UserReader interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// ExpenseService реализует бизнес-логику работы с расходами.
type ExpenseService struct {
	repo  ExpenseRepository
	users UserReader
	cache Cache
	log   *slog.Logger
}

// NewExpenseService создает новый экземпляр ExpenseService.
func NewExpenseService(repo ExpenseRepository, users UserReader, cache Cache, log *slog.Logger) *ExpenseService {
	return &ExpenseService{
		repo:  repo,
		users: users,
		cache: cache,
		log:   log,
	}
}

func cacheKey(uid string) string {
	return fmt.Sprintf("expense:%s", uid)
}

// Submit создает расход от имени активного пользователя. Снимок владельца
// (имя, почта, табельный номер) фиксируется на момент создания. Расход
// администратора сразу approved; расход обычного пользователя pending и
// порождает событие expense-pending.
func (s *ExpenseService) Submit(ctx context.Context, userUID string, req models.DummyExpense) (*models.Expense, *models.Event, error) {
	if math.IsNaN(req.Amount) || math.IsInf(req.Amount, 0) || req.Amount < 0 {
		return nil, nil, ErrInvalidAmount
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid expense date: %w", err)
	}

	owner, err := s.users.GetUser(ctx, userUID)
	if err != nil {
		return nil, nil, err
	}

	idNumber := owner.IDNumber
	if idNumber == "" {
		idNumber = "N/A"
	}
	status := models.ExpenseStatusPending
	if owner.IsAdmin() {
		status = models.ExpenseStatusApproved
	}

	expense := models.Expense{
		UID:          uuid.NewString(),
		UserUID:      owner.UID,
		UserIDNumber: idNumber,
		UserEmail:    owner.Email,
		UserFullName: owner.FullName,
		Date:         date,
		ItemName:     req.ItemName,
		Amount:       req.Amount,
		YearLevel:    req.YearLevel,
		Description:  req.Description,
		CreatedAt:    time.Now().UTC(),
		Status:       status,
	}
	if err := s.repo.CreateExpense(ctx, expense); err != nil {
		return nil, nil, err
	}
	s.log.Info("created new expense", slog.String("uid", expense.UID), slog.String("status", status))

	if owner.IsAdmin() {
		return &expense, nil, nil
	}
	event := &models.Event{
		Type: models.NotificationExpensePending,
		Message: fmt.Sprintf("New expense pending approval: %s - $%.2f by %s",
			expense.ItemName, expense.Amount, owner.Email),
		Metadata: map[string]any{
			"expense_uid": expense.UID,
			"user_uid":    owner.UID,
			"user_email":  owner.Email,
		},
	}
	return &expense, event, nil
}

// Read возвращает расход по UID, используя кеш или репозиторий.
// Чужую запись видит только администратор, как и в выборках по роли.
func (s *ExpenseService) Read(ctx context.Context, userUID, role, uid string) (*models.Expense, error) {
	result, err := s.readCached(ctx, uid)
	if err != nil {
		return nil, err
	}
	if role != models.RoleAdmin && result.UserUID != userUID {
		return nil, ErrForbidden
	}
	return result, nil
}

func (s *ExpenseService) readCached(ctx context.Context, uid string) (*models.Expense, error) {
	var result *models.Expense
	key := cacheKey(uid)
	found, err := s.cache.Get(key, &result)
	if err != nil {
		return nil, err
	}
	if found {
		return result, nil
	}
	result, err = s.repo.ReadExpense(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExpenseNotFound
		}
		return nil, err
	}

	if err := s.cache.Set(key, result, time.Hour); err != nil {
		s.log.Warn("failed to cache expense", slog.String("key", key), slog.Any("err", err))
	}
	return result, nil
}

// Update правит редактируемые поля расхода. Разрешено только владельцу
// и только пока запись pending; нарушение — отдельная ошибка авторизации,
// а не тихий no-op.
func (s *ExpenseService) Update(ctx context.Context, userUID, uid string, req models.DummyExpense) error {
	if math.IsNaN(req.Amount) || math.IsInf(req.Amount, 0) || req.Amount < 0 {
		return ErrInvalidAmount
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return fmt.Errorf("invalid expense date: %w", err)
	}

	existing, err := s.repo.ReadExpense(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrExpenseNotFound
		}
		return err
	}
	if existing.UserUID != userUID {
		return ErrForbidden
	}
	if existing.Status != models.ExpenseStatusPending {
		return ErrNotPending
	}

	expense := models.Expense{
		Date:        date,
		ItemName:    req.ItemName,
		Amount:      req.Amount,
		YearLevel:   req.YearLevel,
		Description: req.Description,
	}
	if _, err := s.repo.UpdateExpense(ctx, expense, uid); err != nil {
		return err
	}
	if err := s.cache.Invalidate(cacheKey(uid)); err != nil {
		s.log.Warn("failed to invalidate cache", slog.String("uid", uid), slog.Any("err", err))
	}
	return nil
}

// Delete удаляет расход. Администратор удаляет безусловно, владелец —
// только пока запись pending.
func (s *ExpenseService) Delete(ctx context.Context, userUID, role, uid string) error {
	existing, err := s.repo.ReadExpense(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrExpenseNotFound
		}
		return err
	}
	if role != models.RoleAdmin {
		if existing.UserUID != userUID {
			return ErrForbidden
		}
		if existing.Status != models.ExpenseStatusPending {
			return ErrNotPending
		}
	}

	if _, err := s.repo.DeleteExpense(ctx, uid); err != nil {
		return err
	}
	if err := s.cache.Invalidate(cacheKey(uid)); err != nil {
		s.log.Warn("failed to invalidate cache", slog.String("uid", uid), slog.Any("err", err))
	}
	return nil
}

// Approve переводит расход pending -> approved. Уже решённая или
// отсутствующая запись — мягкий no-op без события.
func (s *ExpenseService) Approve(ctx context.Context, uid string) (*models.Event, error) {
	return s.adjudicate(ctx, uid, models.ExpenseStatusApproved, models.NotificationExpenseApproved, "approved")
}

// Reject переводит расход pending -> rejected.
func (s *ExpenseService) Reject(ctx context.Context, uid string) (*models.Event, error) {
	return s.adjudicate(ctx, uid, models.ExpenseStatusRejected, models.NotificationExpenseRejected, "rejected")
}

func (s *ExpenseService) adjudicate(ctx context.Context, uid, status, eventType, verb string) (*models.Event, error) {
	existing, err := s.repo.ReadExpense(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	rows, err := s.repo.SetExpenseStatus(ctx, uid, status)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		// Запись уже одобрена или отклонена, переход односторонний.
		return nil, nil
	}
	if err := s.cache.Invalidate(cacheKey(uid)); err != nil {
		s.log.Warn("failed to invalidate cache", slog.String("uid", uid), slog.Any("err", err))
	}
	s.log.Info("expense adjudicated", slog.String("uid", uid), slog.String("status", status))

	return &models.Event{
		Type: eventType,
		Message: fmt.Sprintf("Expense %q ($%.2f) by %s was %s",
			existing.ItemName, existing.Amount, existing.UserEmail, verb),
		Metadata: map[string]any{
			"expense_uid": uid,
			"user_uid":    existing.UserUID,
			"user_email":  existing.UserEmail,
		},
		Recipient: existing.UserEmail,
		FullName:  existing.UserFullName,
	}, nil
}

// OwnApproved возвращает одобренные расходы активного пользователя.
// Pending и rejected записи сюда не попадают никогда.
func (s *ExpenseService) OwnApproved(ctx context.Context, userUID string) ([]*models.Expense, error) {
	return s.repo.ListOwnApproved(ctx, userUID)
}

// AllVisible возвращает одобренные расходы в зависимости от роли:
// администратору — все, пользователю — только собственные.
func (s *ExpenseService) AllVisible(ctx context.Context, userUID, role string) ([]*models.Expense, error) {
	if role == models.RoleAdmin {
		return s.repo.ListAllApproved(ctx)
	}
	return s.repo.ListOwnApproved(ctx, userUID)
}

// PendingForAdmin возвращает очередь на одобрение. Для не-администратора
// выборка всегда пуста.
func (s *ExpenseService) PendingForAdmin(ctx context.Context, role string) ([]*models.Expense, error) {
	if role != models.RoleAdmin {
		return []*models.Expense{}, nil
	}
	return s.repo.ListPending(ctx)
}

// Own возвращает все записи активного пользователя независимо от статуса —
// представление «мои заявки».
func (s *ExpenseService) Own(ctx context.Context, userUID string) ([]*models.Expense, error) {
	return s.repo.ListByOwner(ctx, userUID)
}

// Summary агрегирует одобренные расходы за период week, month, year или all.
// Область видимости совпадает с AllVisible.
func (s *ExpenseService) Summary(ctx context.Context, userUID, role, timeRange string) (*models.ExpenseSummary, error) {
	now := time.Now().UTC()
	var since time.Time
	switch timeRange {
	case "week":
		since = now.AddDate(0, 0, -7)
	case "month":
		since = now.AddDate(0, -1, 0)
	case "year":
		since = now.AddDate(-1, 0, 0)
	default:
		timeRange = "all"
	}

	owner := userUID
	if role == models.RoleAdmin {
		owner = ""
	}
	summary, err := s.repo.SummarizeApproved(ctx, owner, since)
	if err != nil {
		return nil, err
	}
	summary.TimeRange = timeRange
	return summary, nil
}
