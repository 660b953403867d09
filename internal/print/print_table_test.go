package print

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/bgunnarsson/sqltab/internal/db"
)

// fakeCursor replays fixed rows. A nil entry in rows is a NULL cell.
type fakeCursor struct {
	cols    []db.Column
	colsErr error
	rows    [][]*string
	cellErr map[[2]int]error
	iterErr error

	pos  int
	next int
}

func str(s string) *string { return &s }

func (f *fakeCursor) Columns() ([]db.Column, error) { return f.cols, f.colsErr }

func (f *fakeCursor) Next() bool {
	if f.next >= len(f.rows) {
		return false
	}
	f.pos = f.next
	f.next++
	return true
}

func (f *fakeCursor) Cell(i int) (db.Cell, error) {
	if err, ok := f.cellErr[[2]int{f.pos, i}]; ok {
		return db.Cell{}, err
	}
	v := f.rows[f.pos][i]
	if v == nil {
		return db.Cell{Null: true}, nil
	}
	return db.Cell{Value: *v}, nil
}

func (f *fakeCursor) Err() error   { return f.iterErr }
func (f *fakeCursor) Close() error { return nil }

func lines(s string) []string {
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}

func TestRenderTable_Scenario(t *testing.T) {
	g := NewWithT(t)

	cur := &fakeCursor{
		cols: []db.Column{{Name: "ID", DisplayWidth: 2}, {Name: "Name", DisplayWidth: 10}},
		rows: [][]*string{
			{str("1"), str("Alice")},
			{str("2"), nil},
		},
	}

	var buf bytes.Buffer
	g.Expect(RenderTable(&buf, cur)).To(Succeed())

	g.Expect(lines(buf.String())).To(Equal([]string{
		"----+------------+",
		" ID | Name       |",
		"----+------------+",
		" 1  | Alice      |",
		" 2  | NULL       |",
		"----+------------+",
	}))
}

func TestRenderTable_ZeroRows(t *testing.T) {
	g := NewWithT(t)

	cur := &fakeCursor{cols: []db.Column{{Name: "EmpleadoID", DisplayWidth: 11}}}

	var buf bytes.Buffer
	g.Expect(RenderTable(&buf, cur)).To(Succeed())

	out := lines(buf.String())
	g.Expect(out).To(HaveLen(4))
	g.Expect(out[0]).To(Equal("-------------+"))
	g.Expect(out[1]).To(Equal(" EmpleadoID  |"))
	g.Expect(out[2]).To(Equal(out[0]))
	g.Expect(out[3]).To(Equal(out[0]))
}

func TestRenderTable_NoColumns(t *testing.T) {
	g := NewWithT(t)

	var buf bytes.Buffer
	g.Expect(RenderTable(&buf, &fakeCursor{})).To(Succeed())
	g.Expect(buf.String()).To(Equal("(no columns)\n"))
}

func TestRenderTable_OverWidthValueNotClipped(t *testing.T) {
	g := NewWithT(t)

	cur := &fakeCursor{
		cols: []db.Column{{Name: "Code", DisplayWidth: 3}},
		rows: [][]*string{{str("ABCDEFGH")}},
	}

	var buf bytes.Buffer
	g.Expect(RenderTable(&buf, cur)).To(Succeed())
	g.Expect(lines(buf.String())[3]).To(Equal(" ABCDEFGH |"))
}

func TestRenderTable_Idempotent(t *testing.T) {
	g := NewWithT(t)

	newCursor := func() *fakeCursor {
		return &fakeCursor{
			cols: []db.Column{{Name: "a", DisplayWidth: 4}, {Name: "long_name", DisplayWidth: 2}},
			rows: [][]*string{{str("x"), nil}, {nil, str("yy")}},
		}
	}

	var first, second bytes.Buffer
	g.Expect(RenderTable(&first, newCursor())).To(Succeed())
	g.Expect(RenderTable(&second, newCursor())).To(Succeed())
	g.Expect(first.Bytes()).To(Equal(second.Bytes()))
}

func TestRenderTable_MetadataErrorWritesNothing(t *testing.T) {
	g := NewWithT(t)

	cause := errors.New("no metadata")
	var buf bytes.Buffer
	err := RenderTable(&buf, &fakeCursor{colsErr: cause})

	var me *db.MetadataError
	g.Expect(errors.As(err, &me)).To(BeTrue())
	g.Expect(errors.Is(err, cause)).To(BeTrue())
	g.Expect(buf.Len()).To(BeZero())
}

func TestRenderTable_CellErrorSkipsRestOfRow(t *testing.T) {
	g := NewWithT(t)

	cause := errors.New("conversion failed")
	cur := &fakeCursor{
		cols: []db.Column{{Name: "a", DisplayWidth: 1}, {Name: "b", DisplayWidth: 1}, {Name: "c", DisplayWidth: 1}},
		rows: [][]*string{
			{str("1"), str("2"), str("3")},
			{str("4"), str("5"), str("6")},
			{str("7"), str("8"), str("9")},
		},
		cellErr: map[[2]int]error{{1, 1}: cause},
	}

	var buf bytes.Buffer
	st, err := Render(&buf, cur)

	g.Expect(err).To(HaveOccurred())
	g.Expect(errors.Is(err, cause)).To(BeTrue())
	var ce *db.CellFetchError
	g.Expect(errors.As(err, &ce)).To(BeTrue())
	g.Expect(ce.Row).To(Equal(2))
	g.Expect(ce.Column).To(Equal(1))

	g.Expect(st).To(Equal(Stats{Rows: 3, CellErrors: 1}))
	g.Expect(lines(buf.String())).To(Equal([]string{
		"---+---+---+",
		" a | b | c |",
		"---+---+---+",
		" 1 | 2 | 3 |",
		" 4 |",
		" 7 | 8 | 9 |",
		"---+---+---+",
	}))
}

func TestRenderTable_FirstCellErrorOmitsRow(t *testing.T) {
	g := NewWithT(t)

	cur := &fakeCursor{
		cols: []db.Column{{Name: "a", DisplayWidth: 1}, {Name: "b", DisplayWidth: 1}},
		rows: [][]*string{
			{str("1"), str("2")},
			{str("3"), str("4")},
		},
		cellErr: map[[2]int]error{{0, 0}: errors.New("conversion failed")},
	}

	var buf bytes.Buffer
	st, err := Render(&buf, cur)

	var ce *db.CellFetchError
	g.Expect(errors.As(err, &ce)).To(BeTrue())
	g.Expect(ce.Row).To(Equal(1))
	g.Expect(ce.Column).To(Equal(0))
	g.Expect(st).To(Equal(Stats{Rows: 2, CellErrors: 1}))
	g.Expect(lines(buf.String())).To(Equal([]string{
		"---+---+",
		" a | b |",
		"---+---+",
		" 3 | 4 |",
		"---+---+",
	}))
}

func TestRenderTable_ControlCharactersEscaped(t *testing.T) {
	g := NewWithT(t)

	cur := &fakeCursor{
		cols: []db.Column{{Name: "note", DisplayWidth: 6}, {Name: "id", DisplayWidth: 2}},
		rows: [][]*string{{str("x\ny"), str("1")}, {str("a\tb\r\x00"), str("2")}},
	}

	var buf bytes.Buffer
	g.Expect(RenderTable(&buf, cur)).To(Succeed())
	g.Expect(lines(buf.String())).To(Equal([]string{
		"--------+----+",
		" note   | id |",
		"--------+----+",
		` x\ny   | 1  |`,
		` a\tb\r\x00 | 2  |`,
		"--------+----+",
	}))
}

func TestRenderTable_IterationErrorAfterBottomRule(t *testing.T) {
	g := NewWithT(t)

	cause := errors.New("connection reset")
	cur := &fakeCursor{
		cols:    []db.Column{{Name: "id"}},
		rows:    [][]*string{{str("1")}},
		iterErr: cause,
	}

	var buf bytes.Buffer
	err := RenderTable(&buf, cur)
	g.Expect(errors.Is(err, cause)).To(BeTrue())

	out := lines(buf.String())
	g.Expect(out).To(HaveLen(5))
	g.Expect(out[4]).To(Equal("----+"))
}

func TestColumnWidths(t *testing.T) {
	tests := []struct {
		name string
		cols []db.Column
		want []int
	}{
		{
			name: "name wider than declared",
			cols: []db.Column{{Name: "Departamento", DisplayWidth: 5}, {Name: "ID", DisplayWidth: 2}},
			want: []int{12, 2},
		},
		{
			name: "declared wider than name",
			cols: []db.Column{{Name: "ID", DisplayWidth: 11}, {Name: "Salario", DisplayWidth: 21}},
			want: []int{11, 21},
		},
		{
			name: "unbounded declared width",
			cols: []db.Column{{Name: "Notas", DisplayWidth: 0}},
			want: []int{5},
		},
		{
			name: "wide runes measured in cells",
			cols: []db.Column{{Name: "名前", DisplayWidth: 1}},
			want: []int{4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewWithT(t)
			g.Expect(ColumnWidths(tt.cols)).To(Equal(tt.want))
		})
	}
}
