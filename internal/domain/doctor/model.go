package doctor

import "time"

// Doctor maps to the doctors table.
type Doctor struct {
	ID         int64      `db:"id" json:"id"`
	Name       string     `db:"name" json:"name"`
	Age        *int       `db:"age" json:"age,omitempty"`
	Email      *string    `db:"email" json:"email,omitempty"`
	Phone      *string    `db:"phone" json:"phone,omitempty"`
	Address    *string    `db:"address" json:"address,omitempty"`
	IsResident bool       `db:"is_resident" json:"is_resident"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt  *time.Time `db:"deleted_at" json:"-"`
}

// ListFilter narrows a doctor listing. Query matches name or email.
type ListFilter struct {
	Query      string
	IsResident *bool
}
