package models

import (
	"fmt"
	"math/rand/v2"
	"time"
)

const (
	ProjectIDPrefix  = "PRJ"
	ProposalIDPrefix = "PRP"
	ProductIDPrefix  = "PRD"

	idAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// NewID generates a human-legible identifier: prefix, millisecond timestamp
// and a 5-character random suffix.
func NewID(prefix string) string {
	suffix := make([]byte, 5)
	for i := range suffix {
		suffix[i] = idAlphabet[rand.IntN(len(idAlphabet))]
	}
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixMilli(), suffix)
}
