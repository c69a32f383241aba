package models

// Event — доменное событие, возвращаемое мутаторами сервисов.
// Сервисы не обращаются друг к другу напрямую: событие доставляет
// диспетчер, который пишет уведомление и при необходимости публикует
// сообщение в брокер для отправки письма.
type Event struct {
	Type     string         `json:"type"`     // Тип уведомления из закрытого перечня
	Message  string         `json:"message"`  // Текст для ленты уведомлений
	Metadata map[string]any `json:"metadata"` // Сопутствующие данные (id записей, почта)

	// Recipient — почта пользователя, которому нужно отправить письмо.
	// Пустое значение означает, что событие остаётся только в ленте.
	Recipient string `json:"recipient,omitempty"`
	FullName  string `json:"full_name,omitempty"`
}
