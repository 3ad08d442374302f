package facts

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// fmtUSD renders a price the way humans quote it: sub-dollar values keep
// up to 8 decimals, everything else two decimals with thousands grouping.
func fmtUSD(n float64) string {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return "n/a"
	}
	if math.Abs(n) < 1 {
		s := strconv.FormatFloat(n, 'f', 8, 64)
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
		if s == "" || s == "-" {
			return "0"
		}
		return s
	}
	return group(strconv.FormatFloat(n, 'f', 2, 64))
}

// group inserts thousands separators into a fixed-point decimal string.
func group(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, d := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}

	out := b.String()
	if frac != "" {
		out += "." + frac
	}
	if neg {
		out = "-" + out
	}
	return out
}

func fmtPct(p float64) string {
	return fmt.Sprintf("%.2f%%", p)
}
