package domain

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Booking statuses as stored on the bookings row.
const (
	StatusDraft     = "draft"
	StatusQuoted    = "quoted"
	StatusConfirmed = "confirmed"
	StatusPaid      = "paid"
	StatusVouchered = "vouchered"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

// Booking is the CRUD layer's record as read by the rendering core.
type Booking struct {
	ID               int64
	BookingReference string
	Status           string

	CustomerName    string
	CustomerPhone   string
	CustomerEmail   string
	CustomerCompany string
	PartyName       string

	Adults   int
	Children int
	Infants  int

	ArrivalDate   time.Time
	DepartureDate time.Time

	Description    string // rich text itinerary
	FlightInfo     string
	SpecialRequest string
	GuestListJSON  string

	Products      []Product
	VoucherRows   []VoucherRow
	VoucherImages []VoucherImage
	TotalAmount   decimal.Decimal

	HotelName string
	RoomType  string

	VehicleType  string
	PickupPoint  string
	Destination  string
	PickupTime   string
	ContactPhone string

	CurrentShareToken string
	ShareTokenVersion int
	ShareCount        int
	ViewCount         int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Product is one priced line on a booking.
type Product struct {
	Name      string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Amount    decimal.Decimal
}

// VoucherRow is one service line on a tour voucher.
type VoucherRow struct {
	Arrival   string `json:"arrival"`
	Departure string `json:"departure"`
	ServiceBy string `json:"service_by"`
	TypeClass string `json:"type"`
}

// VoucherImage is a staff-uploaded album image referenced by a voucher.
type VoucherImage struct {
	Path    string `json:"path"`
	Caption string `json:"caption"`
}

// TotalPax counts every traveller on the booking.
func (b Booking) TotalPax() int {
	return b.Adults + b.Children + b.Infants
}

// IsShareable reports whether a public share link may serve this booking.
func (b Booking) IsShareable() bool {
	switch b.Status {
	case StatusDraft, StatusCancelled:
		return false
	}
	return true
}

// GuestList decodes the guest list column. It accepts either a JSON array of
// names or a newline-separated plain list (older rows). The list is clamped
// to pax count plus two slots for name-pair rows.
func (b Booking) GuestList() []string {
	raw := strings.TrimSpace(b.GuestListJSON)
	if raw == "" {
		return nil
	}
	var names []string
	if strings.HasPrefix(raw, "[") {
		if err := json.Unmarshal([]byte(raw), &names); err != nil {
			return nil
		}
	} else {
		names = strings.Split(raw, "\n")
	}
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	if max := b.TotalPax() + 2; len(out) > max {
		out = out[:max]
	}
	return out
}

// GrandTotal recomputes the billed total from products when any exist,
// falling back to the stored total. Callers that care about a mismatch
// against TotalAmount should compare via TotalsDisagree.
func (b Booking) GrandTotal() decimal.Decimal {
	if len(b.Products) == 0 {
		return b.TotalAmount
	}
	sum := decimal.Zero
	for _, p := range b.Products {
		sum = sum.Add(p.Quantity.Mul(p.UnitPrice))
	}
	return sum
}

// TotalsDisagree reports whether the recomputed product total drifts from the
// stored total by more than one currency unit.
func (b Booking) TotalsDisagree() bool {
	if len(b.Products) == 0 || b.TotalAmount.IsZero() {
		return false
	}
	return b.GrandTotal().Sub(b.TotalAmount).Abs().GreaterThan(decimal.NewFromInt(1))
}
