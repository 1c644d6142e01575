package category

// Corners are the 22 four-number blocks of the table layout, scanned in
// this order.
var Corners = [][]int{
	{1, 2, 4, 5}, {2, 3, 5, 6}, {4, 5, 7, 8}, {5, 6, 8, 9}, {7, 8, 10, 11}, {8, 9, 11, 12},
	{10, 11, 13, 14}, {11, 12, 14, 15}, {13, 14, 16, 17}, {14, 15, 17, 18}, {16, 17, 19, 20}, {17, 18, 20, 21},
	{19, 20, 22, 23}, {20, 21, 23, 24}, {22, 23, 25, 26}, {23, 24, 26, 27}, {25, 26, 28, 29}, {26, 27, 29, 30},
	{28, 29, 31, 32}, {29, 30, 32, 33}, {31, 32, 34, 35}, {32, 33, 35, 36},
}

// Lines are the eleven six-number double streets starting at 1, 4, ..., 31.
func Lines() [][]int {
	out := make([][]int, 0, 11)
	for r := 1; r <= 31; r += 3 {
		out = append(out, []int{r, r + 1, r + 2, r + 3, r + 4, r + 5})
	}
	return out
}

// Splits are the horizontal pairs within a street followed by the vertical
// pairs between streets.
func Splits() [][]int {
	out := make([][]int, 0, 57)
	for n := 1; n <= 35; n++ {
		if n%3 != 0 {
			out = append(out, []int{n, n + 1})
		}
	}
	for n := 1; n <= 33; n++ {
		out = append(out, []int{n, n + 3})
	}
	return out
}
