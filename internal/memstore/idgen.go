package memstore

import (
	"crypto/rand"
	"math/big"

	"github.com/arunjadaun2002/FlyPrep/internal/domain"
)

const idAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// IDGenerator produces candidate room ids; the repository retries on collision.
type IDGenerator func() (string, error)

func RandomID() (string, error) {
	b := make([]byte, domain.RoomIDLength)
	base := big.NewInt(int64(len(idAlphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, base)
		if err != nil {
			return "", err
		}
		b[i] = idAlphabet[n.Int64()]
	}
	return string(b), nil
}
