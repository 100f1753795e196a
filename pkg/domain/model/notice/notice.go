package notice

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// Notification is one message delivered by the provider over an
// authenticated session.
type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func (x *Notification) Validate() error {
	if x.ID == "" {
		return goerr.New("empty notification ID")
	}
	if x.Title == "" && x.Content == "" {
		return goerr.New("empty notification", goerr.V("id", x.ID))
	}
	return nil
}
