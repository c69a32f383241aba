package models

import "time"

// Типы уведомлений. Закрытый перечень, новые значения добавляются здесь.
const (
	NotificationNewUser         = "new-user"
	NotificationNewExpense      = "new-expense"
	NotificationSystem          = "system"
	NotificationExpensePending  = "expense-pending"
	NotificationExpenseApproved = "expense-approved"
	NotificationExpenseRejected = "expense-rejected"
)

// Notification представляет системное уведомление.
// Новые записи встают в начало списка (самые свежие первыми).
type Notification struct {
	UID       string         `json:"uid"`        // Уникальный идентификатор
	Message   string         `json:"message"`    // Текст уведомления
	Type      string         `json:"type"`       // Тип из закрытого перечня
	Metadata  map[string]any `json:"metadata"`   // Произвольные данные для фильтрации
	Read      bool           `json:"read"`       // Флаг прочтения
	CreatedAt time.Time      `json:"created_at"` // Время создания
}
