package models

type User struct {
	BaseModel
	Email      string   `gorm:"uniqueIndex;not null"`
	Password   string   `gorm:"not null" json:"-"`
	FirstName  string   `gorm:"not null"`
	LastName   string   `gorm:"not null"`
	Role       UserRole `gorm:"type:user_role;not null"`
	IsVerified bool     `gorm:"not null;default:false"`
	IsBanned   bool     `gorm:"not null;default:false"`
	AboutMe    *string
	Avatar     *string
	AvatarID   *string
}

// PublicUser - то, что отдается клиенту (без пароля)
type PublicUser struct {
	ID         int64    `json:"id"`
	Email      string   `json:"email"`
	FirstName  string   `json:"firstName"`
	LastName   string   `json:"lastName"`
	Role       UserRole `json:"role"`
	IsVerified bool     `json:"isVerified"`
	AboutMe    *string  `json:"aboutMe"`
	Avatar     *string  `json:"avatar"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:         u.ID,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Role:       u.Role,
		IsVerified: u.IsVerified,
		AboutMe:    u.AboutMe,
		Avatar:     u.Avatar,
	}
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// HasRole - входит ли роль пользователя в набор
func (u *User) HasRole(roles ...UserRole) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}
