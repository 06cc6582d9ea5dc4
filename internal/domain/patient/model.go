package patient

import "time"

// Patient maps to the patients table.
type Patient struct {
	ID              int64      `db:"id" json:"id"`
	Name            *string    `db:"name" json:"name,omitempty"`
	DNI             *string    `db:"dni" json:"dni,omitempty"`
	Phone           *string    `db:"phone" json:"phone,omitempty"`
	Address         *string    `db:"address" json:"address,omitempty"`
	HealthInsurance *string    `db:"health_insurance" json:"health_insurance,omitempty"`
	Email           *string    `db:"email" json:"email,omitempty"`
	Gender          string     `db:"gender" json:"gender"`
	BirthDate       *Date      `db:"birth_date" json:"birth_date,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt       *time.Time `db:"deleted_at" json:"-"`
}

// Pathology maps to the pathologies table. Protected rows can never be
// edited or deleted.
type Pathology struct {
	ID          int64      `db:"id" json:"id"`
	Name        string     `db:"name" json:"name"`
	Description string     `db:"description" json:"description"`
	IsProtected bool       `db:"is_protected" json:"is_protected"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt   *time.Time `db:"deleted_at" json:"-"`
}

var validGenders = map[string]bool{"male": true, "female": true}

// Date is a calendar day serialized as YYYY-MM-DD.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" || s == `""` {
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return &time.ParseError{Layout: dateLayout, Value: s}
	}
	t, err := time.Parse(dateLayout, s[1:len(s)-1])
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}
