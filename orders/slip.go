package orders

import (
	"bytes"
	"fmt"

	"agroadmin/models"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
)

func money(v float64) string {
	return fmt.Sprintf("Rs. %.2f", v)
}

// Slip renders a packing slip for o as a one page A4 PDF with a QR code of the order id.
func Slip(o models.Order) ([]byte, error) {
	ref := o.OrderID
	if ref == "" {
		ref = o.ID
	}
	qrPNG, err := qrcode.Encode("order:"+ref, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("qr code: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Order #"+o.ShortID())
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 11)
	lines := []string{
		"Status: " + string(o.OrderStatus),
		"Payment: " + o.PaymentStatus,
		"Date: " + o.OrderDate.Format("02 Jan 2006 15:04"),
		"Customer: " + o.CustomerName,
		"Email: " + o.CustomerEmail,
		"Phone: " + o.CustomerPhone,
	}
	for _, l := range lines {
		pdf.Cell(0, 7, tr(l))
		pdf.Ln(7)
	}
	pdf.MultiCell(120, 6, tr("Ship to: "+o.ShippingAddress), "", "L", false)
	pdf.Ln(4)

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 155, 20, 40, 40, false, imageOpts, 0, "")

	pdf.SetFont("Arial", "B", 11)
	pdf.SetFillColor(230, 245, 233)
	widths := []float64{100, 20, 30, 30}
	for i, h := range []string{"Item", "Qty", "Unit", "Amount"} {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, it := range o.Items {
		pdf.CellFormat(widths[0], 7, tr(it.Title), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, fmt.Sprint(it.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 7, money(it.Price), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 7, money(it.Price*float64(it.Quantity)), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(widths[0]+widths[1]+widths[2], 8, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(widths[3], 8, money(o.TotalAmount), "1", 0, "R", false, 0, "")
	pdf.Ln(12)

	if o.SpecialInstructions != "" {
		pdf.SetFont("Arial", "I", 10)
		pdf.MultiCell(0, 6, tr("Instructions: "+o.SpecialInstructions), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render slip: %w", err)
	}
	return buf.Bytes(), nil
}
