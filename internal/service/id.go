package service

import (
	"crypto/rand"
	"encoding/hex"
)

// NextID returns 16 random bytes as a 32 character lowercase hex string. It
// does not check the stores for collisions.
func NextID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b[:])
}
