package member

import (
	"time"

	"github.com/uptrace/bun"
)

// Record is a row of the users table. Column names match membership
// databases created by earlier socman releases.
type Record struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           int64     `bun:"id,pk,autoincrement" json:"id"`
	Barcode      string    `bun:"barcode,type:varchar(255)" json:"barcode"`
	FirstName    string    `bun:"firstName,type:varchar(255)" json:"firstName"`
	LastName     string    `bun:"lastName,type:varchar(255)" json:"lastName"`
	Affiliation  string    `bun:"college,type:varchar(255)" json:"college"`
	DateJoined   time.Time `bun:"datejoined" json:"dateJoined"`
	CreatedAt    time.Time `bun:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `bun:"updated_at" json:"updatedAt"`
	LastAttended time.Time `bun:"last_attended" json:"lastAttended"`
}
