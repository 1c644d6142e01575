package agent

import (
	"strconv"
	"strings"

	"roulette-oracle/internal/wheel"
)

// InitState is the key for histories too short to encode.
const InitState = "INIT"

const trendWindow = 8

// Encode summarises recent history as
// <last 3 colour initials>|<last 3 dozens>|<red trend><even trend><hot dozen>.
func Encode(h []int) string {
	if len(h) < 3 {
		return InitState
	}
	var b strings.Builder
	last3 := h[len(h)-3:]
	for _, n := range last3 {
		b.WriteByte(string(wheel.ColorOf(n))[0])
	}
	b.WriteByte('|')
	for _, n := range last3 {
		b.WriteString(strconv.Itoa(wheel.Dozen(n)))
	}
	b.WriteByte('|')

	w := wheel.Tail(h, trendWindow)
	var reds, evens int
	var dz [4]int
	for _, n := range w {
		if wheel.IsRed(n) {
			reds++
		}
		if wheel.IsEven(n) {
			evens++
		}
		dz[wheel.Dozen(n)]++
	}
	if reds > 4 {
		b.WriteByte('H')
	} else {
		b.WriteByte('L')
	}
	if evens > 4 {
		b.WriteByte('E')
	} else {
		b.WriteByte('O')
	}
	hot := 1
	for d := 2; d <= 3; d++ {
		if dz[d] > dz[hot] {
			hot = d
		}
	}
	b.WriteString(strconv.Itoa(hot))
	return b.String()
}
