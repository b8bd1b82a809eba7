package repositories

import (
	"database/sql"
	"strings"

	"backoffice/internal/config"
	"backoffice/internal/domain"

	"github.com/shopspring/decimal"
)

// BookingRepository reads and mutates booking rows plus their product,
// voucher-service and album child tables.
type BookingRepository struct {
	DB *sql.DB
}

func (r BookingRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return config.DB
}

const bookingColumns = `
	id, booking_reference, status,
	COALESCE(customer_name,''), COALESCE(customer_phone,''), COALESCE(customer_email,''),
	COALESCE(customer_company,''), COALESCE(party_name,''),
	COALESCE(adults,0), COALESCE(children,0), COALESCE(infants,0),
	arrival_date, departure_date,
	COALESCE(description,''), COALESCE(flight_info,''), COALESCE(special_request,''),
	COALESCE(guest_list,''),
	COALESCE(total_amount,0),
	COALESCE(hotel_name,''), COALESCE(room_type,''),
	COALESCE(vehicle_type,''), COALESCE(pickup_point,''), COALESCE(destination,''),
	COALESCE(pickup_time,''), COALESCE(contact_phone,''),
	COALESCE(current_share_token,''), COALESCE(share_token_version,0),
	COALESCE(share_count,0), COALESCE(view_count,0),
	created_at, updated_at`

// GetByID loads one booking with its child rows.
func (r BookingRepository) GetByID(id int64) (domain.Booking, error) {
	if id <= 0 {
		return domain.Booking{}, domain.ValidationError{Field: "id", Msg: "must be positive"}
	}
	row := r.db().QueryRow(`SELECT`+bookingColumns+` FROM bookings WHERE id=? LIMIT 1`, id)
	return r.scanBooking(row)
}

// GetByReference loads one booking by its human reference, case-insensitive.
func (r BookingRepository) GetByReference(reference string) (domain.Booking, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return domain.Booking{}, domain.ValidationError{Field: "reference", Msg: "required"}
	}
	row := r.db().QueryRow(`SELECT`+bookingColumns+` FROM bookings WHERE UPPER(booking_reference)=UPPER(?) LIMIT 1`, reference)
	return r.scanBooking(row)
}

func (r BookingRepository) scanBooking(row *sql.Row) (domain.Booking, error) {
	var (
		b           domain.Booking
		total       string
		arrivalRaw  sql.NullTime
		departRaw   sql.NullTime
		createdRaw  sql.NullTime
		updatedRaw  sql.NullTime
	)
	err := row.Scan(
		&b.ID, &b.BookingReference, &b.Status,
		&b.CustomerName, &b.CustomerPhone, &b.CustomerEmail,
		&b.CustomerCompany, &b.PartyName,
		&b.Adults, &b.Children, &b.Infants,
		&arrivalRaw, &departRaw,
		&b.Description, &b.FlightInfo, &b.SpecialRequest,
		&b.GuestListJSON,
		&total,
		&b.HotelName, &b.RoomType,
		&b.VehicleType, &b.PickupPoint, &b.Destination,
		&b.PickupTime, &b.ContactPhone,
		&b.CurrentShareToken, &b.ShareTokenVersion,
		&b.ShareCount, &b.ViewCount,
		&createdRaw, &updatedRaw,
	)
	if err == sql.ErrNoRows {
		return domain.Booking{}, domain.NotFoundError{Resource: "booking", Err: err}
	}
	if err != nil {
		return domain.Booking{}, err
	}

	if arrivalRaw.Valid {
		b.ArrivalDate = arrivalRaw.Time
	}
	if departRaw.Valid {
		b.DepartureDate = departRaw.Time
	}
	if createdRaw.Valid {
		b.CreatedAt = createdRaw.Time
	}
	if updatedRaw.Valid {
		b.UpdatedAt = updatedRaw.Time
	}
	if d, derr := decimal.NewFromString(strings.TrimSpace(total)); derr == nil {
		b.TotalAmount = d
	}

	if b.Products, err = r.loadProducts(b.ID); err != nil {
		return domain.Booking{}, err
	}
	if b.VoucherRows, err = r.loadVoucherRows(b.ID); err != nil {
		return domain.Booking{}, err
	}
	if b.VoucherImages, err = r.loadVoucherImages(b.ID); err != nil {
		return domain.Booking{}, err
	}
	return b, nil
}

func (r BookingRepository) loadProducts(bookingID int64) ([]domain.Product, error) {
	rows, err := r.db().Query(`
		SELECT COALESCE(name,''), COALESCE(quantity,0), COALESCE(unit_price,0), COALESCE(amount,0)
		FROM booking_products WHERE booking_id=? ORDER BY sort_order, id`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Product
	for rows.Next() {
		var p domain.Product
		var qty, price, amount string
		if err := rows.Scan(&p.Name, &qty, &price, &amount); err != nil {
			return nil, err
		}
		p.Quantity, _ = decimal.NewFromString(qty)
		p.UnitPrice, _ = decimal.NewFromString(price)
		p.Amount, _ = decimal.NewFromString(amount)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r BookingRepository) loadVoucherRows(bookingID int64) ([]domain.VoucherRow, error) {
	rows, err := r.db().Query(`
		SELECT COALESCE(arrival,''), COALESCE(departure,''), COALESCE(service_by,''), COALESCE(type_class,'')
		FROM voucher_services WHERE booking_id=? ORDER BY sort_order, id`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.VoucherRow
	for rows.Next() {
		var v domain.VoucherRow
		if err := rows.Scan(&v.Arrival, &v.Departure, &v.ServiceBy, &v.TypeClass); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r BookingRepository) loadVoucherImages(bookingID int64) ([]domain.VoucherImage, error) {
	rows, err := r.db().Query(`
		SELECT COALESCE(path,''), COALESCE(caption,'')
		FROM voucher_images WHERE booking_id=? ORDER BY sort_order, id`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.VoucherImage
	for rows.Next() {
		var v domain.VoucherImage
		if err := rows.Scan(&v.Path, &v.Caption); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// SaveShareToken persists a freshly issued token and counts the share.
func (r BookingRepository) SaveShareToken(id int64, token string) error {
	_, err := r.db().Exec(`
		UPDATE bookings
		SET current_share_token=?, share_count=share_count+1, updated_at=NOW()
		WHERE id=?`, token, id)
	return err
}

// ResetShareToken replaces the token and bumps the version so previously
// issued links stop being reused by the share API.
func (r BookingRepository) ResetShareToken(id int64, token string) error {
	_, err := r.db().Exec(`
		UPDATE bookings
		SET current_share_token=?, share_token_version=share_token_version+1,
		    share_count=share_count+1, updated_at=NOW()
		WHERE id=?`, token, id)
	return err
}

// IncrementViewCount counts one public gate view. Best effort; a failed
// update never blocks the render.
func (r BookingRepository) IncrementViewCount(id int64) error {
	_, err := r.db().Exec(`UPDATE bookings SET view_count=view_count+1 WHERE id=?`, id)
	return err
}
