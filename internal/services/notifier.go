package services

// События, которые уходят подключенным клиентам
const (
	EventNewMessage = "message.new"
	EventChatRead   = "chat.read"
	EventChatTyping = "chat.typing"
	EventTaskReply  = "task.reply"
)

// Notifier доставляет события пользователям, у которых открыт websocket.
// Доставка best-effort: офлайн-пользователи событие не получают.
type Notifier interface {
	Notify(userID int64, event string, payload any)
}

type noopNotifier struct{}

func (noopNotifier) Notify(int64, string, any) {}

func notifierOrNoop(n Notifier) Notifier {
	if n == nil {
		return noopNotifier{}
	}
	return n
}
