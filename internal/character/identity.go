package character

import (
	"math/rand/v2"
	"time"
)

// Minter hands out ids for filler characters: the unix-millisecond clock
// followed by a three digit random suffix ("<millis><000-999>").
//
// Not cryptographic and not guaranteed unique: two mints in the same
// millisecond collide with probability 1/1000. Write volume is low enough
// that this is accepted; Put would silently overwrite on a collision.
type Minter struct {
	now    func() time.Time
	suffix func(n int) int
}

func NewMinter() *Minter {
	return &Minter{now: time.Now, suffix: rand.IntN}
}

func (m *Minter) Mint() int64 {
	// same value as parsing fmt.Sprintf("%d%03d", millis, suffix)
	return m.now().UnixMilli()*1000 + int64(m.suffix(1000))
}
