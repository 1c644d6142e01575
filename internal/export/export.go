package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"roulette-oracle/internal/wheel"
)

const none = "—"

var Header = []string{"Spin", "Number", "Color", "OddEven", "Range", "Dozen", "Column"}

type Row struct {
	Spin   int    `json:"spin"`
	Number int    `json:"number"`
	Color  string `json:"color"`
	Parity string `json:"parity"`
	Range  string `json:"range"`
	Dozen  string `json:"dozen"`
	Column string `json:"column"`
}

func (r Row) record() []string {
	return []string{strconv.Itoa(r.Spin), strconv.Itoa(r.Number), r.Color, r.Parity, r.Range, r.Dozen, r.Column}
}

var colorLabels = map[wheel.Color]string{wheel.Red: "Red", wheel.Black: "Black", wheel.Green: "Green"}

var dozenLabels = [4]string{none, "1st", "2nd", "3rd"}

// Rows projects the classifier over h. Spin numbers start at 1.
func Rows(h []int) []Row {
	out := make([]Row, len(h))
	for i, n := range h {
		r := Row{
			Spin:   i + 1,
			Number: n,
			Color:  colorLabels[wheel.ColorOf(n)],
			Parity: none,
			Range:  none,
			Dozen:  dozenLabels[wheel.Dozen(n)],
			Column: none,
		}
		if n != 0 {
			r.Parity = "Odd"
			if wheel.IsEven(n) {
				r.Parity = "Even"
			}
			r.Range = "19-36"
			if wheel.IsLow(n) {
				r.Range = "1-18"
			}
			r.Column = "Col" + strconv.Itoa(wheel.Column(n))
		}
		out[i] = r
	}
	return out
}

func WriteCSV(w io.Writer, h []int) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range Rows(h) {
		if err := cw.Write(r.record()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV recovers the outcome column from a file written by WriteCSV.
// Rows whose number does not parse or is out of range are skipped.
func ReadCSV(r io.Reader) ([]int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	var out []int
	for i, rec := range records {
		if len(rec) < 2 {
			continue
		}
		if i == 0 && rec[0] == Header[0] {
			continue
		}
		n, err := strconv.Atoi(rec[1])
		if err != nil || !wheel.Valid(n) {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}
