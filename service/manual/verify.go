package manualsvc

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Numeric tokens in a pasted confirmation message, accepting thousands
// separators and decimals (e.g. "1,000.00").
// The separated form is tried first so "1,000" is not read as 1 and 000.
var amountRe = regexp.MustCompile(`(?:\d{1,3}(?:[,\s]\d{3})+|\d+)(?:\.\d+)?`)

// autoVerify checks a pasted M-Pesa confirmation against three heuristics:
// the business name must appear as a substring, the message must carry
// today's date in D/M/YY form (zero padding optional), and some numeric
// token must land within 0.5 of the expected amount. All three must hold.
func autoVerify(business, pasted string, expected int64, now time.Time) bool {
	biz := strings.ToUpper(strings.TrimSpace(business))
	msg := strings.ToUpper(pasted)
	if biz == "" || msg == "" {
		return false
	}
	if !strings.Contains(msg, biz) {
		return false
	}
	if !todayRe(now).MatchString(msg) {
		return false
	}
	return amountNear(msg, expected)
}

func todayRe(now time.Time) *regexp.Regexp {
	d := now.Day()
	m := int(now.Month())
	yy := now.Year() % 100
	return regexp.MustCompile(fmt.Sprintf(`\b(?:%d|0%d)/(?:%d|0%d)/%02d\b`, d, d, m, m, yy))
}

func amountNear(msg string, expected int64) bool {
	for _, tok := range amountRe.FindAllString(msg, -1) {
		cleaned := strings.NewReplacer(",", "", " ", "").Replace(tok)
		n, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			continue
		}
		if math.Abs(n-float64(expected)) < 0.5 {
			return true
		}
	}
	return false
}
