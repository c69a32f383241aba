// Package services содержит логику бизнес-уровня для работы с пользователями:
// регистрация, вход, одобрение учётных записей и жизненный цикл паролей.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mdc-cast/expense-approval/internal/lib/jwt"
	"github.com/mdc-cast/expense-approval/internal/lib/password"
	"github.com/mdc-cast/expense-approval/internal/models"
	"github.com/mdc-cast/expense-approval/internal/storage/repository"
)

// Ошибки уровня сервиса. Обработчики отображают их на HTTP-статусы.
var (
	// ErrEmailTaken — почта уже занята другой учётной записью.
	ErrEmailTaken = errors.New("email already exists")
	// ErrInvalidCredentials — пара email+пароль не совпала ни с одной записью.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrNotApproved — учётная запись существует, но ещё не одобрена.
	ErrNotApproved = errors.New("account is awaiting admin approval")
	// ErrWrongPassword — текущий пароль введён неверно.
	ErrWrongPassword = errors.New("current password is incorrect")
	// ErrNotAdmin — операция доступна только администратору.
	ErrNotAdmin = errors.New("admin role required")
	// ErrProtectedAccount — встроенную учётную запись администратора удалять нельзя.
	ErrProtectedAccount = errors.New("admin account cannot be deleted")
	// ErrUserNotFound — пользователь не найден.
	ErrUserNotFound = errors.New("user not found")
	// ErrIDNumberLocked — установленный табельный номер меняет только администратор.
	ErrIDNumberLocked = errors.New("id number can only be changed by admin")
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	RegisterUser(ctx context.Context, user models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	ApproveUser(ctx context.Context, userUID string) (int, error)
	DeleteUser(ctx context.Context, userUID string) (int, error)
	UpdateProfile(ctx context.Context, userUID, fullName, idNumber string) (int, error)
	UpdatePassword(ctx context.Context, userUID, passwordHash string) (int, error)
}

// AuthService отвечает за учётные записи: регистрацию, вход,
// одобрение и пароли. Мутаторы возвращают доменные события,
// доставку которых выполняет диспетчер.
type AuthService struct {
	users    UserRepository
	jwtMaker jwt.Maker
	log      *slog.Logger
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker, log *slog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		jwtMaker: jwtMaker,
		log:      log,
	}
}

// Register создает нового пользователя со статусом pending и ролью user.
// Возвращает событие new-user для ленты уведомлений администратора.
func (s *AuthService) Register(ctx context.Context, req models.DummyRegister) (*models.User, *models.Event, error) {
	if _, err := s.users.GetUserByEmail(ctx, req.Email); err == nil {
		return nil, nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, nil, err
	}

	hashed, err := password.GetHash(req.Password)
	if err != nil {
		return nil, nil, err
	}
	user := models.User{
		UID:              uuid.NewString(),
		Email:            req.Email,
		FullName:         req.FullName,
		PasswordHash:     hashed,
		Role:             models.RoleUser,
		Status:           models.UserStatusPending,
		RegistrationDate: time.Now().UTC(),
	}
	if err := s.users.RegisterUser(ctx, user); err != nil {
		// Проверка выше не атомарна: параллельная регистрация могла успеть раньше.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, nil, ErrEmailTaken
		}
		return nil, nil, err
	}

	event := &models.Event{
		Type:    models.NotificationNewUser,
		Message: fmt.Sprintf("New user registration from: %s (%s) - needs approval", user.FullName, user.Email),
		Metadata: map[string]any{
			"user_uid": user.UID,
			"email":    user.Email,
		},
	}
	return &user, event, nil
}

// Login проверяет пароль пользователя и генерирует JWT.
// Неодобренная учётная запись отличима от неверных учётных данных.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (string, *models.User, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if user.Status != models.UserStatusApproved {
		return "", nil, ErrNotApproved
	}
	token, err := s.jwtMaker.GenerateToken(user.UID, user.Email, user.Role)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// ListUsers возвращает все учётные записи для консоли администратора.
func (s *AuthService) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.users.ListUsers(ctx)
}

// Approve одобряет учётную запись. Неизвестный UID — мягкий no-op
// без события и без ошибки.
func (s *AuthService) Approve(ctx context.Context, userUID string) (*models.Event, error) {
	user, err := s.users.GetUser(ctx, userUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if _, err := s.users.ApproveUser(ctx, userUID); err != nil {
		return nil, err
	}
	s.log.Info("user approved", slog.String("user_uid", userUID))

	return &models.Event{
		Type:      models.NotificationSystem,
		Message:   fmt.Sprintf("Your account %q has been approved! You can now log in.", user.FullName),
		Metadata:  map[string]any{"user_uid": user.UID, "email": user.Email},
		Recipient: user.Email,
		FullName:  user.FullName,
	}, nil
}

// Reject отклоняет регистрацию: запись удаляется целиком, терминального
// статуса rejected у пользователей нет. Событие строится до удаления,
// чтобы сохранить почту и имя.
func (s *AuthService) Reject(ctx context.Context, userUID string) (*models.Event, error) {
	user, err := s.users.GetUser(ctx, userUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	event := &models.Event{
		Type:      models.NotificationSystem,
		Message:   fmt.Sprintf("Your account %q was rejected by admin.", user.FullName),
		Metadata:  map[string]any{"user_uid": user.UID, "email": user.Email},
		Recipient: user.Email,
		FullName:  user.FullName,
	}
	if _, err := s.users.DeleteUser(ctx, userUID); err != nil {
		return nil, err
	}
	s.log.Info("user rejected and removed", slog.String("user_uid", userUID))
	return event, nil
}

// DeleteUser удаляет учётную запись. Администраторов, включая встроенную
// учётную запись, удалять запрещено.
func (s *AuthService) DeleteUser(ctx context.Context, userUID string) error {
	user, err := s.users.GetUser(ctx, userUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if user.IsAdmin() {
		return ErrProtectedAccount
	}
	_, err = s.users.DeleteUser(ctx, userUID)
	return err
}

// UpdateProfile обновляет имя и табельный номер активного пользователя.
// Однажды установленный табельный номер не-администратор изменить не может.
// Отсутствующая запись — мягкий no-op, как в исходном поведении.
func (s *AuthService) UpdateProfile(ctx context.Context, userUID, actorRole string, req models.DummyProfile) error {
	user, err := s.users.GetUser(ctx, userUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}
	idNumber := req.IDNumber
	if actorRole != models.RoleAdmin && user.IDNumber != "" && idNumber != user.IDNumber {
		// Пропущенное поле означает "оставить как есть", иное значение — отказ.
		if idNumber != "" {
			return ErrIDNumberLocked
		}
		idNumber = user.IDNumber
	}
	_, err = s.users.UpdateProfile(ctx, userUID, req.FullName, idNumber)
	return err
}

// ChangePassword сверяет текущий пароль и перезаписывает его новым.
func (s *AuthService) ChangePassword(ctx context.Context, userUID, current, next string) error {
	user, err := s.users.GetUser(ctx, userUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if err := password.CompareHash(user.PasswordHash, current); err != nil {
		return ErrWrongPassword
	}
	hashed, err := password.GetHash(next)
	if err != nil {
		return err
	}
	_, err = s.users.UpdatePassword(ctx, userUID, hashed)
	return err
}

// ResetPassword выдаёт временный пароль по почте. Доставка вне зоны
// ответственности хранилища: значение только пишется в лог.
func (s *AuthService) ResetPassword(ctx context.Context, email string) error {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	temp, err := password.Temporary()
	if err != nil {
		return err
	}
	hashed, err := password.GetHash(temp)
	if err != nil {
		return err
	}
	if _, err := s.users.UpdatePassword(ctx, user.UID, hashed); err != nil {
		return err
	}
	s.log.Info("temporary password issued",
		slog.String("email", email), slog.String("temp_password", temp))
	return nil
}

// AdminChangePassword перезаписывает пароль указанного пользователя.
// Роль вызывающего перепроверяется, несмотря на фильтр на маршрутах.
func (s *AuthService) AdminChangePassword(ctx context.Context, actorRole, userUID, next string) error {
	if actorRole != models.RoleAdmin {
		return ErrNotAdmin
	}
	hashed, err := password.GetHash(next)
	if err != nil {
		return err
	}
	rows, err := s.users.UpdatePassword(ctx, userUID, hashed)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}

// AdminResetPassword выдаёт временный пароль указанному пользователю
// и возвращает его администратору.
func (s *AuthService) AdminResetPassword(ctx context.Context, actorRole, userUID string) (string, error) {
	if actorRole != models.RoleAdmin {
		return "", ErrNotAdmin
	}
	temp, err := password.Temporary()
	if err != nil {
		return "", err
	}
	hashed, err := password.GetHash(temp)
	if err != nil {
		return "", err
	}
	rows, err := s.users.UpdatePassword(ctx, userUID, hashed)
	if err != nil {
		return "", err
	}
	if rows == 0 {
		return "", ErrUserNotFound
	}
	s.log.Info("temporary password issued by admin", slog.String("user_uid", userUID))
	return temp, nil
}

// EnsureAdmin создаёт встроенную учётную запись администратора при первом
// запуске с пустым хранилищем. Пароль по умолчанию задокументирован в
// конфигурации и обязателен к смене.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, fullName, rawPassword string) error {
	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return err
	}
	admin := models.User{
		UID:              uuid.NewString(),
		Email:            email,
		FullName:         fullName,
		PasswordHash:     hashed,
		Role:             models.RoleAdmin,
		Status:           models.UserStatusApproved,
		RegistrationDate: time.Now().UTC(),
	}
	if err := s.users.RegisterUser(ctx, admin); err != nil {
		return err
	}
	s.log.Info("seeded default admin account", slog.String("email", email))
	return nil
}
