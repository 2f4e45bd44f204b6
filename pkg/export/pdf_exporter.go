package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// ContractSheet holds the fields printed on a teacher contract cover page.
type ContractSheet struct {
	FullName       string
	ContractName   string
	PassportNumber string
	Address        string
	City           string
	PostalCode     string
	Country        string
	Languages      string
	WorkSince      string
	ContractEnd    string
}

// PDFExporter renders contract sheets into simple one-page PDFs.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates the contract cover page.
func (e *PDFExporter) Render(sheet ContractSheet) ([]byte, error) {
	if sheet.FullName == "" {
		return nil, fmt.Errorf("contract sheet requires a name")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 20, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, "TEACHER CONTRACT", "", 1, "C", false, 0, "")
	pdf.Ln(6)

	rows := [][2]string{
		{"Name", sheet.FullName},
		{"Contract name", sheet.ContractName},
		{"Passport number", sheet.PassportNumber},
		{"Address", sheet.Address},
		{"City", sheet.City},
		{"Postal code", sheet.PostalCode},
		{"Country", sheet.Country},
		{"Languages", sheet.Languages},
		{"Works since", sheet.WorkSince},
		{"Contract ends", sheet.ContractEnd},
	}
	for _, row := range rows {
		if row[1] == "" {
			continue
		}
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(50, 8, row[0], "1", 0, "", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(130, 8, tr(row[1]), "1", 1, "", false, 0, "")
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render contract pdf: %w", err)
	}
	return buf.Bytes(), nil
}
