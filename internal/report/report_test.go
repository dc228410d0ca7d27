package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetbooking/internal/booking"
)

type staticSource []booking.Booking

func (s staticSource) List(context.Context) ([]booking.Booking, error) { return s, nil }

func sample() []booking.Booking {
	return []booking.Booking{
		{ID: "1", EmployeeName: "John Smith", Department: "Mathematics", Date: "2026-03-01", Time: "08:00", Destination: "Science Museum, Hall B", Passengers: 3, VehicleType: booking.VehicleSedan, Purpose: booking.PurposeFieldTrip, Status: booking.StatusApproved},
		{ID: "2", EmployeeName: "Michael Brown", Department: "Sports", Date: "2026-03-05", Time: "07:00", Destination: "Stadium", Passengers: 20, VehicleType: booking.VehicleBus, Purpose: booking.PurposeCompetition, Status: booking.StatusPending},
		{ID: "3", EmployeeName: "Emily Davis", Department: "Science", Date: "2026-03-09", Time: "10:00", Destination: "Lab", Passengers: 6, VehicleType: booking.VehicleSUV, Purpose: booking.PurposeOther, OtherPurpose: "Equipment pickup", Status: booking.StatusDenied},
		{ID: "4", EmployeeName: "John Smith", Department: "Mathematics", Date: "2026-03-12", Time: "09:00", Destination: "Olympiad", Passengers: 4, VehicleType: booking.VehicleSedan, Purpose: booking.PurposeCompetition, Status: booking.StatusApproved},
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(sample(), time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, 4, s.Total)
	require.Len(t, s.ByStatus, 3)
	assert.Equal(t, "approved", s.ByStatus[0].Key)
	assert.True(t, s.ByStatus[0].Percent.Equal(decimal.NewFromInt(50)))

	require.Len(t, s.ByDepartment, 3)
	assert.Equal(t, "Mathematics", s.ByDepartment[0].Key)
	assert.Equal(t, 2, s.ByDepartment[0].Count)

	sum := decimal.Zero
	for _, sh := range s.ByVehicleType {
		sum = sum.Add(sh.Percent)
	}
	assert.True(t, sum.Equal(decimal.NewFromInt(100)))
}

func TestService_Filter(t *testing.T) {
	svc := &Service{Source: staticSource(sample())}
	ctx := context.Background()

	got, err := svc.Bookings(ctx, Filter{Search: "john"})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = svc.Bookings(ctx, Filter{Status: booking.StatusApproved, From: "2026-03-02"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "4", got[0].ID)

	got, err = svc.Bookings(ctx, Filter{From: "2026-03-05", To: "2026-03-09"})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sample()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, "Science Museum, Hall B", rows[1][7])
	assert.Equal(t, "Equipment pickup", rows[3][10])
	assert.Equal(t, "20", rows[2][8])
}

func TestRenderPDF(t *testing.T) {
	out, err := RenderPDF(Summarize(sample(), time.Now()), "UTC")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestFilenames(t *testing.T) {
	assert.Equal(t, "bookings-export-2026-03-10.csv", CSVFilename("2026-03-10"))
	assert.Equal(t, "bookings-summary-2026-03-10.pdf", PDFFilename("2026-03-10"))
}
