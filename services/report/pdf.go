package report

import (
	"bytes"

	"github.com/jung-kurt/gofpdf"
)

// InstanceReport is the structured data handed to the PDF renderer.
type InstanceReport struct {
	InstanceID    int
	Status        string
	SubmittedAt   string
	DecidedAt     string
	Operator      string
	Leader        string
	Sector        string
	TemplateTitle string
	Items         []ReportItem
}

type ReportItem struct {
	Question string
	Answer   string
	Comment  string
}

// RenderInstancePDF renders one decided-or-pending instance as a printable
// report.
func RenderInstancePDF(r *InstanceReport) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Checklist Report", false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, "Checklist Report", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "", 11)
	meta := [][2]string{
		{"Checklist", r.TemplateTitle},
		{"Sector", r.Sector},
		{"Status", r.Status},
		{"Submitted by", r.Operator},
		{"Submitted at", r.SubmittedAt},
		{"Decided by", r.Leader},
		{"Decided at", r.DecidedAt},
	}
	for _, kv := range meta {
		if kv[1] == "" {
			continue
		}
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(40, 7, kv[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 11)
		pdf.CellFormat(0, 7, kv[1], "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 11)
	pdf.SetFillColor(230, 243, 255)
	pdf.CellFormat(110, 8, "Question", "1", 0, "L", true, 0, "")
	pdf.CellFormat(30, 8, "Answer", "1", 0, "C", true, 0, "")
	pdf.CellFormat(50, 8, "Comment", "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, item := range r.Items {
		pdf.CellFormat(110, 8, item.Question, "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 8, item.Answer, "1", 0, "C", false, 0, "")
		pdf.CellFormat(50, 8, item.Comment, "1", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
