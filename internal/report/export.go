package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/phpdave11/gofpdf"

	"fleetbooking/internal/booking"
)

var csvHeader = []string{
	"id",
	"employeeName",
	"department",
	"email",
	"phone",
	"date",
	"time",
	"destination",
	"passengers",
	"vehicleType",
	"purpose",
	"status",
}

func CSVFilename(date string) string {
	return "bookings-export-" + date + ".csv"
}

func PDFFilename(date string) string {
	return "bookings-summary-" + date + ".pdf"
}

// WriteCSV writes one row per booking. "Other" purposes are exported as their free text.
func WriteCSV(w io.Writer, bs []booking.Booking) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, b := range bs {
		purpose := string(b.Purpose)
		if b.Purpose == booking.PurposeOther && b.OtherPurpose != "" {
			purpose = b.OtherPurpose
		}
		row := []string{
			b.ID,
			b.EmployeeName,
			b.Department,
			b.Email,
			b.Phone,
			b.Date,
			b.Time,
			b.Destination,
			strconv.Itoa(b.Passengers),
			string(b.VehicleType),
			purpose,
			string(b.Status),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// RenderPDF lays out the three breakdowns as tables; gofpdf breaks pages automatically.
func RenderPDF(s Summary, loc string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Fleet booking summary", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "FLEET BOOKING SUMMARY")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, "Generated: "+s.GeneratedAt.Format("2006-01-02 15:04")+" "+loc)
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Total bookings: %d", s.Total))
	pdf.Ln(10)

	section := func(title string, shares []Share) {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.Cell(0, 8, title)
		pdf.Ln(9)

		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(100, 7, "Group", "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, "Count", "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 7, "Share %", "1", 1, "R", false, 0, "")

		pdf.SetFont("Helvetica", "", 11)
		if len(shares) == 0 {
			pdf.CellFormat(160, 7, "No bookings", "1", 1, "L", false, 0, "")
		}
		for _, sh := range shares {
			pdf.CellFormat(100, 7, sh.Key, "1", 0, "L", false, 0, "")
			pdf.CellFormat(30, 7, strconv.Itoa(sh.Count), "1", 0, "R", false, 0, "")
			pdf.CellFormat(30, 7, sh.Percent.StringFixed(2), "1", 1, "R", false, 0, "")
		}
		pdf.Ln(6)
	}
	section("By status", s.ByStatus)
	section("By department", s.ByDepartment)
	section("By vehicle type", s.ByVehicleType)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
