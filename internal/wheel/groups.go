package wheel

// Members returns every outcome in [1,36] for which pred holds, ascending.
func Members(pred func(int) bool) []int {
	out := make([]int, 0, 18)
	for n := 1; n <= Max; n++ {
		if pred(n) {
			out = append(out, n)
		}
	}
	return out
}

func ColorMembers(c Color) []int {
	if c == Green {
		return []int{0}
	}
	return Members(func(n int) bool { return ColorOf(n) == c })
}

func DozenMembers(d int) []int {
	return Members(func(n int) bool { return Dozen(n) == d })
}

func ColumnMembers(c int) []int {
	return Members(func(n int) bool { return Column(n) == c })
}

// Opposite is the reversal target used by streak logic: red flips to black,
// anything else flips to red.
func Opposite(c Color) Color {
	if c == Red {
		return Black
	}
	return Red
}

// Tally counts occurrences of each outcome in values.
func Tally(values []int) [Slots]int {
	var f [Slots]int
	for _, n := range values {
		if Valid(n) {
			f[n]++
		}
	}
	return f
}

// Tail returns the last n values of h without copying.
func Tail(h []int, n int) []int {
	if n >= len(h) {
		return h
	}
	return h[len(h)-n:]
}

func NonZero(h []int) []int {
	out := make([]int, 0, len(h))
	for _, n := range h {
		if n != 0 {
			out = append(out, n)
		}
	}
	return out
}
