package memory

import (
	"bytes"
	"io"
	"math"
)

func pow2(exp float64) float64 {
	return math.Exp2(exp)
}

func bytesReader(b []byte) io.Reader {
	return bytes.NewReader(b)
}
