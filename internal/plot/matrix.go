package plot

import (
	"fmt"
	"math"

	"github.com/fogleman/gg"
)

// MatrixOptions style the rendered matrix. CellLabels overrides the
// formatted values and must match the matrix shape when set.
type MatrixOptions struct {
	RowLabels   []string
	ColLabels   []string
	CellLabels  [][]string
	CellSize    int
	ValueFormat string
	HideValues  bool
	Colormap    *Colormap
}

// PrintMatrix renders a matrix as a colored grid with a value printed in
// each cell, black or white depending on the cell color. NaN cells are
// left blank. A nil colormap uses grayscale over the value range.
func PrintMatrix(values [][]float64, opts MatrixOptions, outPath string) error {
	rows := len(values)
	if rows == 0 {
		return fmt.Errorf("matrix has no rows")
	}
	cols := len(values[0])
	if cols == 0 {
		return fmt.Errorf("matrix has no columns")
	}
	for _, row := range values {
		if len(row) != cols {
			return fmt.Errorf("matrix rows have uneven lengths")
		}
	}
	if opts.RowLabels != nil && len(opts.RowLabels) != rows {
		return fmt.Errorf("got %d row labels for %d rows", len(opts.RowLabels), rows)
	}
	if opts.ColLabels != nil && len(opts.ColLabels) != cols {
		return fmt.Errorf("got %d column labels for %d columns", len(opts.ColLabels), cols)
	}
	if opts.CellLabels != nil {
		if len(opts.CellLabels) != rows {
			return fmt.Errorf("cell labels do not match the matrix shape")
		}
		for _, row := range opts.CellLabels {
			if len(row) != cols {
				return fmt.Errorf("cell labels do not match the matrix shape")
			}
		}
	}

	cm := opts.Colormap
	if cm == nil {
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, row := range values {
			for _, v := range row {
				if v != v {
					continue
				}
				lo = math.Min(lo, v)
				hi = math.Max(hi, v)
			}
		}
		if lo > hi {
			lo, hi = 0, 1
		}
		if lo == hi {
			hi = lo + 1
		}
		cm = Grayscale([2]float64{lo, hi})
	}

	cell := opts.CellSize
	if cell <= 0 {
		cell = 56
	}
	format := opts.ValueFormat
	if format == "" {
		format = "%.2f"
	}
	left, top := 10, 10
	if opts.RowLabels != nil {
		left = 90
	}
	if opts.ColLabels != nil {
		top = 30
	}

	dc := gg.NewContext(left+cols*cell+10, top+rows*cell+10)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			x, y := float64(left+c*cell), float64(top+r*cell)
			v := values[r][c]
			if v != v {
				continue
			}
			cr, cg, cb, _ := cm.At(v).RGBA()
			dc.SetRGB(float64(cr)/65535, float64(cg)/65535, float64(cb)/65535)
			dc.DrawRectangle(x, y, float64(cell), float64(cell))
			dc.Fill()

			if opts.HideValues {
				continue
			}
			label := fmt.Sprintf(format, v)
			if opts.CellLabels != nil {
				label = opts.CellLabels[r][c]
			}
			lum := (0.299*float64(cr) + 0.587*float64(cg) + 0.114*float64(cb)) / 65535
			if lum > 0.5 {
				dc.SetRGB(0, 0, 0)
			} else {
				dc.SetRGB(1, 1, 1)
			}
			dc.DrawStringAnchored(label, x+float64(cell)/2, y+float64(cell)/2, 0.5, 0.5)
		}
	}

	dc.SetRGBA(0, 0, 0, 0.3)
	dc.SetLineWidth(1)
	for r := 0; r <= rows; r++ {
		y := float64(top + r*cell)
		dc.DrawLine(float64(left), y, float64(left+cols*cell), y)
	}
	for c := 0; c <= cols; c++ {
		x := float64(left + c*cell)
		dc.DrawLine(x, float64(top), x, float64(top+rows*cell))
	}
	dc.Stroke()

	dc.SetRGB(0, 0, 0)
	for r, label := range opts.RowLabels {
		dc.DrawStringAnchored(label, float64(left)-6, float64(top+r*cell)+float64(cell)/2, 1, 0.5)
	}
	for c, label := range opts.ColLabels {
		dc.DrawStringAnchored(label, float64(left+c*cell)+float64(cell)/2, float64(top)/2, 0.5, 0.5)
	}

	if err := dc.SavePNG(outPath); err != nil {
		return fmt.Errorf("failed to save matrix render: %w", err)
	}
	return nil
}
