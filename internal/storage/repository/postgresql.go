// Package repository реализует хранилище данных на основе PostgreSQL
// для пользователей, расходов и уведомлений. Предоставляет методы
// создания, чтения, обновления, удаления и агрегирования записей.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// ErrNotFound возвращается методами чтения, когда запись отсутствует.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate возвращается при нарушении уникального ограничения.
var ErrDuplicate = errors.New("record already exists")

// Storage инкапсулирует соединение с базой данных PostgreSQL
// и реализует методы работы с пользователями, расходами и уведомлениями.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// CheckDatabaseReady проверяет готовность базы данных.
func CheckDatabaseReady(storage *Storage) error {
	var exists bool
	err := storage.DB.QueryRow(`SELECT EXISTS (
        SELECT FROM information_schema.tables
        WHERE table_name = 'expenses'
    )`).Scan(&exists)
	if err != nil || !exists {
		return fmt.Errorf("required table expenses missing or query error: %w", err)
	}
	return nil
}
