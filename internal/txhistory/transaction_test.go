package txhistory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFeed_Fingerprint(t *testing.T) {
	a := Transaction{ID: "1-0xaa", Status: StatusConfirmed}
	b := Transaction{ID: "pending-0xbb", Status: StatusPending}
	c := Transaction{ID: "confirmed-0xcc", Status: StatusConfirmed}

	t.Run("is stable under reordering", func(t *testing.T) {
		assert.Equal(t, Feed{a, b, c}.Fingerprint(), Feed{c, a, b}.Fingerprint())
		assert.Equal(t, Feed{a, b, c}.Fingerprint(), Feed{b, c, a}.Fingerprint())
	})

	t.Run("changes with the status", func(t *testing.T) {
		rejected := b
		rejected.Status = StatusRejected
		assert.NotEqual(t, Feed{a, b}.Fingerprint(), Feed{a, rejected}.Fingerprint())
	})

	t.Run("ignores fields other than id and status", func(t *testing.T) {
		moved := a
		moved.Timestamp = 42
		moved.Amount = "1.000000"
		assert.Equal(t, Feed{a}.Fingerprint(), Feed{moved}.Fingerprint())
	})

	t.Run("empty feed", func(t *testing.T) {
		assert.Equal(t, "", Feed{}.Fingerprint())
		assert.Equal(t, "1-0xaa:confirmed|pending-0xbb:pending", Feed{b, a}.Fingerprint())
	})
}
