package model

import "time"

// Customer 客户：email 全局唯一，电话与城市可选。
type Customer struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	LastName  string  `gorm:"size:128;not null" json:"last_name"`
	FirstName string  `gorm:"size:128;not null" json:"first_name"`
	Email     string  `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Phone     *string `gorm:"size:32" json:"phone,omitempty"`
	City      *string `gorm:"size:128;index" json:"city,omitempty"`
}

func (Customer) TableName() string { return "customers" }

// FullName mirrors the "last first" form used by the reporting views.
func (c Customer) FullName() string { return c.LastName + " " + c.FirstName }

// CustomerUpdate is a partial update; nil fields are left untouched.
type CustomerUpdate struct {
	LastName  *string `json:"last_name"`
	FirstName *string `json:"first_name"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	City      *string `json:"city"`
}

// Columns maps the set fields to their column names.
func (u CustomerUpdate) Columns() map[string]any {
	cols := map[string]any{}
	if u.LastName != nil {
		cols["last_name"] = *u.LastName
	}
	if u.FirstName != nil {
		cols["first_name"] = *u.FirstName
	}
	if u.Email != nil {
		cols["email"] = *u.Email
	}
	if u.Phone != nil {
		cols["phone"] = nullable(*u.Phone)
	}
	if u.City != nil {
		cols["city"] = nullable(*u.City)
	}
	return cols
}

// nullable 空串写成 NULL，与创建时一致。
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// CustomerFilter narrows List; zero value lists everything.
type CustomerFilter struct {
	City   string
	Search string
}
