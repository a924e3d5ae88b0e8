package types

import "time"

type CatSex string

const (
	CatSexMale   CatSex = "M"
	CatSexFemale CatSex = "F"
)

type Cat struct {
	ID        string     `db:"id"`
	Name      string     `db:"name"`
	RescuedOn *time.Time `db:"rescued_on"`
	BornOn    *time.Time `db:"born_on"`
	Sex       *string    `db:"sex"`
	Status    *string    `db:"status"`
	PhotoKey  *string    `db:"photo_key"`
	PhotoURL  *string    `db:"photo_url"`
	Notes     *string    `db:"notes"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
}

// CatForm is the registration form for the roster screen. Dates arrive as
// YYYY-MM-DD strings from date inputs.
type CatForm struct {
	Name      string `form:"name"`
	RescuedOn string `form:"rescued_on"`
	BornOn    string `form:"born_on"`
	Sex       string `form:"sex"`
	Status    string `form:"status"`
	Notes     string `form:"notes"`
}
