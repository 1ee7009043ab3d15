package contextkeys

// Используем кастомный тип, чтобы избежать коллизий
type contextKey string

// DBContextKey - ключ, по которому хранится *gorm.DB (пул или транзакция)
const DBContextKey = contextKey("db")

// Ключи gin.Context, которые выставляет auth middleware
const (
	UserKey         = "user"
	SessionTokenKey = "sessionToken"
)
