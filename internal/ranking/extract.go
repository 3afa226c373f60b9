package ranking

import (
	"regexp"
	"strconv"
)

var (
	megapixelPattern = regexp.MustCompile(`(?i)(\d+)\s*MP`)
	numberPattern    = regexp.MustCompile(`\d+`)
)

// cameraMegapixels reads the first "<n>MP" figure from a camera spec such as
// "108MP OIS Triple". Strings without one count as 0.
func cameraMegapixels(camera string) int {
	m := megapixelPattern.FindStringSubmatch(camera)
	if m == nil {
		return 0
	}
	return atoiOrZero(m[1])
}

// firstNumber reads the first run of digits anywhere in s ("512GB SSD" -> 512).
func firstNumber(s string) int {
	return atoiOrZero(numberPattern.FindString(s))
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
