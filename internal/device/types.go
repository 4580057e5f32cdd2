package device

import "time"

// Device is a GPS unit registered to a user. It is identified by a
// sequential integer id and belongs to exactly one owner.
type Device struct {
	ID      int64  `json:"id"`
	Name    string `json:"nombre"`
	Active  bool   `json:"active"`
	OwnerID int64  `json:"usuario_id"`

	CreatedAt time.Time `json:"-"`
}
