// Package models содержит доменные структуры, описывающие расход,
// а также вспомогательные типы для работы с данными из внешних источников
// (например, JSON-запросы).
package models

import "time"

// Статусы расхода. Переходы односторонние:
// pending -> approved и pending -> rejected, обратных переходов нет.
const (
	ExpenseStatusPending  = "pending"
	ExpenseStatusApproved = "approved"
	ExpenseStatusRejected = "rejected"
)

// Expense представляет собой основную модель расхода,
// используемую в бизнес-логике и хранилище.
//
// Поля UserIDNumber, UserEmail и UserFullName — снимок данных владельца
// на момент создания записи; последующие правки профиля их не меняют.
type Expense struct {
	UID          string    `json:"uid"`            // Уникальный идентификатор расхода
	UserUID      string    `json:"user_uid"`       // Идентификатор владельца
	UserIDNumber string    `json:"user_id_number"` // Табельный номер владельца на момент создания
	UserEmail    string    `json:"user_email"`     // Почта владельца на момент создания
	UserFullName string    `json:"user_full_name"` // Имя владельца на момент создания
	Date         time.Time `json:"date"`           // Дата расхода
	ItemName     string    `json:"item_name"`      // Название позиции
	Amount       float64   `json:"amount"`         // Сумма (неотрицательная)
	YearLevel    string    `json:"year_level"`     // Категория (учебный год)
	Description  string    `json:"description"`    // Произвольное описание
	CreatedAt    time.Time `json:"created_at"`     // Время создания записи
	Status       string    `json:"status"`         // pending, approved или rejected
}

// DummyExpense используется для приёма данных расхода из JSON-запроса,
// прежде чем конвертировать их в Expense.
// Дата приходит строкой в формате 2006-01-02, чтобы её можно было
// валидировать и парсить вручную.
type DummyExpense struct {
	Date        string  `json:"date" validate:"required,datetime=2006-01-02"` // Дата расхода
	ItemName    string  `json:"item_name" validate:"required,max=200"`        // Название позиции
	Amount      float64 `json:"amount" validate:"gte=0"`                      // Сумма (>= 0)
	YearLevel   string  `json:"year_level" validate:"required,max=50"`        // Категория
	Description string  `json:"description" validate:"max=1000"`             // Описание
}

// ExpenseSummary — агрегат по одобренным расходам для отчётов.
type ExpenseSummary struct {
	Total     float64            `json:"total"`      // Общая сумма
	Count     int                `json:"count"`      // Количество записей
	ByYear    map[string]float64 `json:"by_year"`    // Суммы по категориям
	TimeRange string             `json:"time_range"` // week, month, year или all
}
