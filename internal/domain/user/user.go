package user

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// User e a identidade autenticada pelo gateway: doador ou dono de projeto.
type User struct {
	Id        ulid.ULID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CreateRequest struct {
	Id    ulid.ULID
	Name  string
	Email string
}
