package session

import (
	"crypto/rand"
	"math/big"
)

const (
	roomIDDigits   = "0123456789"
	roomIDLength   = 4
	roomIDAttempts = 100
)

// generateRoomID returns a short numeric code players can type.
func generateRoomID() string {
	b := make([]byte, roomIDLength)
	limit := big.NewInt(int64(len(roomIDDigits)))
	for i := range b {
		idx, err := rand.Int(rand.Reader, limit)
		if err != nil {
			idx = big.NewInt(0)
		}
		b[i] = roomIDDigits[idx.Int64()]
	}
	return string(b)
}
