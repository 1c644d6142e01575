package wheel

type Color string

const (
	Red   Color = "red"
	Black Color = "black"
	Green Color = "green"
)

const (
	Min   = 0
	Max   = 36
	Slots = 37
)

// Order is the European single-zero wheel, clockwise from zero.
var Order = [Slots]int{
	0, 32, 15, 19, 4, 21, 2, 25, 17, 34, 6, 27, 13, 36, 11, 30, 8, 23, 10,
	5, 24, 16, 33, 1, 20, 14, 31, 9, 22, 18, 29, 7, 28, 12, 35, 3, 26,
}

var reds = map[int]bool{
	1: true, 3: true, 5: true, 7: true, 9: true, 12: true, 14: true, 16: true, 18: true,
	19: true, 21: true, 23: true, 25: true, 27: true, 30: true, 32: true, 34: true, 36: true,
}

var positions = func() [Slots]int {
	var p [Slots]int
	for i, n := range Order {
		p[n] = i
	}
	return p
}()

func Valid(n int) bool {
	return n >= Min && n <= Max
}

func ColorOf(n int) Color {
	if n == 0 {
		return Green
	}
	if reds[n] {
		return Red
	}
	return Black
}

func IsRed(n int) bool   { return reds[n] }
func IsBlack(n int) bool { return n != 0 && !reds[n] }
func IsEven(n int) bool  { return n != 0 && n%2 == 0 }
func IsOdd(n int) bool   { return n%2 == 1 }
func IsLow(n int) bool   { return n >= 1 && n <= 18 }
func IsHigh(n int) bool  { return n >= 19 }

// Dozen returns 1..3, or 0 for zero.
func Dozen(n int) int {
	switch {
	case n == 0:
		return 0
	case n <= 12:
		return 1
	case n <= 24:
		return 2
	default:
		return 3
	}
}

// Column returns 1..3, or 0 for zero.
func Column(n int) int {
	if n == 0 {
		return 0
	}
	if n%3 == 0 {
		return 3
	}
	return n % 3
}

func Position(n int) int {
	return positions[n]
}

// Neighbours returns the 2*radius pockets around n, nearest-left first
// through nearest-right last, wrapping at both ends of the wheel.
func Neighbours(n, radius int) []int {
	if radius <= 0 {
		return nil
	}
	p := positions[n]
	out := make([]int, 0, 2*radius)
	for d := -radius; d <= radius; d++ {
		if d == 0 {
			continue
		}
		out = append(out, At(p+d))
	}
	return out
}

// At returns the pocket at wheel index i taken modulo the wheel size.
func At(i int) int {
	i %= Slots
	if i < 0 {
		i += Slots
	}
	return Order[i]
}
