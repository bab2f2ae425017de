package types

// IntLiteral renders a signed integer as the decimal digit string
// ClassifyLiteral's intLiteralRe accepts back (spec §4.2's literal grammar), adapted
// from the teacher's backend/xtoa.ItoA digit-peeling loop.
func IntLiteral(v int64) string {
	neg := v < 0
	if neg {
		v = -v
	}

	var buf [20]byte // max magnitude of int64 is 19 digits.
	i := len(buf)
	if v == 0 {
		i--
		buf[i] = '0'
	}
	for v != 0 {
		i--
		buf[i] = byte(v%10) + '0'
		v /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// FloatLiteral renders f with fixed 4-decimal precision, the format
// ClassifyLiteral's floatLiteralRe round-trips, adapted from the teacher's
// backend/xtoa.FtoA.
func FloatLiteral(f float64) string {
	neg := f < 0
	if neg {
		f = -f
	}

	ip := int64(f)
	fp := f - float64(ip)
	for i := 0; i < 4; i++ {
		fp *= 10
	}

	sb := make([]byte, 0, 24)
	if neg {
		sb = append(sb, '-')
	}
	fracVal := int64(fp + 0.5)
	if fracVal >= 10000 {
		ip++
		fracVal -= 10000
	}
	sb = append(sb, IntLiteral(ip)...)
	sb = append(sb, '.')
	frac := IntLiteral(fracVal)
	for len(frac) < 4 {
		frac = "0" + frac
	}
	sb = append(sb, frac...)
	return string(sb)
}
