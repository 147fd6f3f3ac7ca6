package helpers

import (
	"math"
	"strconv"
	"strings"
)

// FormatEUR renders an amount in cents the way the German storefront shows it: "1.234,50 €".
func FormatEUR(cents float64) string {
	c := int64(math.Round(cents))
	neg := c < 0
	if neg {
		c = -c
	}
	euros := strconv.FormatInt(c/100, 10)
	rest := c % 100

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range euros {
		if i > 0 && (len(euros)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	b.WriteByte(',')
	if rest < 10 {
		b.WriteByte('0')
	}
	b.WriteString(strconv.FormatInt(rest, 10))
	b.WriteString(" €")
	return b.String()
}
