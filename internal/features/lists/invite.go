package lists

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	apperrors "github.com/maggie-app/maggie-api/pkg/errors"
)

// codeAlphabet excludes visually ambiguous characters (0/O, 1/I) so
// codes stay easy to read aloud and type.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const (
	codeLength      = 6
	maxCodeAttempts = 10
)

// allocateCode draws random codes until one is unused or the attempt
// budget runs out. The check-then-write window is not closed against
// list creation; two concurrent allocations could in theory pick the
// same code before either list is written. With 32^6 codes that race is
// accepted: lookup-by-code uses limit(1), so a duplicate degrades to
// most-recent-wins rather than corruption.
func (r *Repository) allocateCode(ctx context.Context) (string, error) {
	for i := 0; i < maxCodeAttempts; i++ {
		code, err := randomCode(codeLength)
		if err != nil {
			return "", err
		}
		existing, err := r.FindByCode(ctx, code)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return code, nil
		}
	}
	return "", fmt.Errorf("%w after %d attempts", apperrors.ErrCodeExhausted, maxCodeAttempts)
}

func randomCode(length int) (string, error) {
	out := make([]byte, length)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = codeAlphabet[n.Int64()]
	}
	return string(out), nil
}
