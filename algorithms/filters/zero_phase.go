package filters

// ZeroPhase applies the cascade forward and then backward over data,
// canceling the filter's phase distortion. The input is extended at
// both ends with an odd reflection (rotated about the end samples) to
// suppress edge transients, then the extension is discarded.
//
// The effective magnitude response is the square of the cascade's.
// Returns a new slice; the input is never modified. Inputs too short
// to pad are filtered with whatever padding fits, down to none.
func ZeroPhase(c *Cascade, data []float64) []float64 {
	n := len(data)
	out := make([]float64, n)
	copy(out, data)
	if n < 2 {
		return out
	}

	padlen := 3 * (c.Order() + 1)
	if padlen > n-1 {
		padlen = n - 1
	}

	ext := make([]float64, 0, n+2*padlen)
	for i := padlen; i >= 1; i-- {
		ext = append(ext, 2*data[0]-data[i])
	}
	ext = append(ext, data...)
	for i := n - 2; i >= n-1-padlen; i-- {
		ext = append(ext, 2*data[n-1]-data[i])
	}

	c.Reset()
	forward := c.ProcessBuffer(ext)
	reverseInPlace(forward)

	c.Reset()
	backward := c.ProcessBuffer(forward)
	reverseInPlace(backward)

	copy(out, backward[padlen:padlen+n])
	c.Reset()

	return out
}

func reverseInPlace(data []float64) {
	for i, j := 0, len(data)-1; i < j; i, j = i+1, j-1 {
		data[i], data[j] = data[j], data[i]
	}
}
