package usecase

import (
	"crypto/rand"
	"fmt"
	"io"
)

// codeAlphabet leaves out look-alike characters (O/0, I/1, l).
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateUniqueCodes returns n distinct random codes shaped XXXX-XXXX-XXXX,
// ready to provision the pool of a UNIQUE promo.
func GenerateUniqueCodes(n int) ([]string, error) {
	if n < 0 {
		return nil, fmt.Errorf("negative code count %d", n)
	}
	seen := make(map[string]struct{}, n)
	out := make([]string, 0, n)
	for len(out) < n {
		c, err := generateCode()
		if err != nil {
			return nil, err
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out, nil
}

func generateCode() (string, error) {
	const codeLength = 12

	buf := make([]byte, codeLength)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return "", err
	}
	for i := range buf {
		buf[i] = codeAlphabet[int(buf[i])%len(codeAlphabet)]
	}
	return string(buf[0:4]) + "-" + string(buf[4:8]) + "-" + string(buf[8:12]), nil
}
