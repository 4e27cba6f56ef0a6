package badge

import (
	"bytes"
	"fmt"
	"strings"

	"jesa-attendance/domain"

	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"
)

// QRPayload is the text encoded in a badge's QR code: the bare contact number.
// The check-in front end reads it and issues POST /user/mark/:contactNo itself.
func QRPayload(a domain.Attendee) string {
	return a.ContactNo
}

// GenerateBadgePDF renders a single A6 name badge for an attendee.
func GenerateBadgePDF(a domain.Attendee, eventName string) ([]byte, error) {
	qrBytes, err := qrcode.Encode(QRPayload(a), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("failed to encode badge QR code: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A6", "")
	pdf.SetMargins(8, 8, 8)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	// --- Header ---
	pdf.SetFillColor(20, 20, 20)
	pdf.Rect(0, 0, 105, 22, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(8, 7)
	pdf.CellFormat(89, 8, tr(strings.ToUpper(eventName)), "", 0, "C", false, 0, "")

	// --- Holder ---
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(8, 30)
	pdf.SetFont("Helvetica", "B", 20)
	pdf.MultiCell(89, 9, tr(a.Name), "", "C", false)

	pdf.SetFont("Helvetica", "", 12)
	if a.Category != "" {
		pdf.CellFormat(89, 7, tr(a.Category), "", 1, "C", false, 0, "")
	}
	if a.Award != "" {
		pdf.SetFont("Helvetica", "I", 12)
		pdf.CellFormat(89, 7, tr("Award: "+a.Award), "", 1, "C", false, 0, "")
	}

	// --- QR ---
	name := "qr-" + a.ID
	pdf.RegisterImageOptionsReader(name, gofpdf.ImageOptions{ImageType: "png"}, bytes.NewReader(qrBytes))
	pdf.ImageOptions(name, 27.5, 72, 50, 0, false, gofpdf.ImageOptions{ImageType: "png"}, 0, "")

	// --- Footer ---
	pdf.SetDrawColor(200, 200, 200)
	pdf.Line(8, 134, 97, 134)
	pdf.SetXY(8, 136)
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(89, 5, fmt.Sprintf("Attendee #%s", a.ID), "", 0, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render badge PDF: %w", err)
	}
	return buf.Bytes(), nil
}
