package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/piwi3910/ShapePacker/internal/engine"
)

// LabelInfo holds the data encoded into each shape label's QR code.
type LabelInfo struct {
	ShapeID  int    `json:"shape"`
	Path     string `json:"path"`
	Col      int    `json:"col"`
	Row      int    `json:"row"`
	Rotation int    `json:"rotation"`
	Cells    int    `json:"cells"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// Label layout constants for Avery 5160-compatible labels (3 columns, 10 rows per page).
const (
	labelMarginTop  = 12.7
	labelMarginLeft = 4.8
	labelWidth      = 66.7
	labelHeight     = 25.4
	labelCols       = 3
	labelRows       = 10
	labelsPerPage   = labelCols * labelRows
	qrSize          = 20.0
	labelPadding    = 2.0
)

// ExportLabels generates a sheet of QR-coded labels, one per placed shape.
// Each QR code holds the LabelInfo as JSON.
func ExportLabels(path string, ind *engine.Individual) error {
	if ind == nil {
		return fmt.Errorf("no solution to generate labels for")
	}
	labels := CollectLabelInfos(ind)
	if len(labels) == 0 {
		return fmt.Errorf("no shapes placed to generate labels for")
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)

	for i, label := range labels {
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}

		posOnPage := i % labelsPerPage
		x := labelMarginLeft + float64(posOnPage%labelCols)*labelWidth
		y := labelMarginTop + float64(posOnPage/labelCols)*labelHeight

		if err := renderLabel(pdf, x, y, label); err != nil {
			return fmt.Errorf("failed to render label for shape %d: %w", label.ShapeID, err)
		}
	}

	return pdf.OutputFileAndClose(path)
}

func renderLabel(pdf *fpdf.Fpdf, x, y float64, info LabelInfo) error {
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, labelWidth, labelHeight, "D")

	qrData, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal label info: %w", err)
	}
	qrPNG, err := qrcode.Encode(string(qrData), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	imgName := fmt.Sprintf("qr_shape_%d", info.ShapeID)
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))
	qrX := x + labelWidth - qrSize - labelPadding
	qrY := y + (labelHeight-qrSize)/2
	pdf.ImageOptions(imgName, qrX, qrY, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	textX := x + labelPadding
	textW := labelWidth - qrSize - 3*labelPadding

	col := colorFor(info.ShapeID)
	pdf.SetFillColor(col.R, col.G, col.B)
	pdf.Rect(textX, y+labelPadding+0.8, 3, 3, "F")

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX+4, y+labelPadding)
	pdf.CellFormat(textW-4, 4.5, fmt.Sprintf("Shape %d", info.ShapeID), "", 1, "L", false, 0, "")

	// Long paths are cut to the label width.
	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(textX, y+labelPadding+5)
	text := info.Path
	if pdf.GetStringWidth(text) > textW {
		for len(text) > 0 && pdf.GetStringWidth(text+"...") > textW {
			text = text[:len(text)-1]
		}
		text += "..."
	}
	pdf.CellFormat(textW, 3.5, text, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 6)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(textX, y+labelPadding+9)
	pdf.CellFormat(textW, 3, fmt.Sprintf("%d cells, %d x %d", info.Cells, info.Width, info.Height), "", 1, "L", false, 0, "")
	pdf.SetXY(textX, y+labelPadding+12.5)
	pdf.CellFormat(textW, 3, fmt.Sprintf("At (%d, %d), rotation %d", info.Col, info.Row, info.Rotation), "", 1, "L", false, 0, "")

	pdf.SetTextColor(0, 0, 0)
	return nil
}

// CollectLabelInfos extracts label data for every placement, ordered by
// shape id.
func CollectLabelInfos(ind *engine.Individual) []LabelInfo {
	var labels []LabelInfo
	for _, p := range ind.SortedPlacements() {
		b := p.Shape.Bounds(p.Rotation)
		labels = append(labels, LabelInfo{
			ShapeID:  p.ShapeID(),
			Path:     shapePath(p.Shape.Instructions()),
			Col:      p.Position.Col,
			Row:      p.Position.Row,
			Rotation: p.Rotation,
			Cells:    p.Shape.CellCount(),
			Width:    b.Width(),
			Height:   b.Height(),
		})
	}
	return labels
}
