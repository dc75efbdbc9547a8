// Package history keeps the bounded log of successful calculations and the
// stores it can be persisted to.
package history

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TimestampLayout is how Entry.Timestamp is rendered for people.
const TimestampLayout = "2006-01-02 15:04:05"

// Entry records one successful calculation.
type Entry struct {
	ID         string    `json:"id"`
	Expression string    `json:"expression"`
	Result     string    `json:"result"`
	Timestamp  string    `json:"timestamp"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewEntry stamps a calculation with a time-ordered UUIDv7 identifier.
func NewEntry(expression, result string, now time.Time) (Entry, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return Entry{}, fmt.Errorf("generate history id: %w", err)
	}

	return Entry{
		ID:         id.String(),
		Expression: expression,
		Result:     result,
		Timestamp:  now.Local().Format(TimestampLayout),
		CreatedAt:  now.UTC(),
	}, nil
}
