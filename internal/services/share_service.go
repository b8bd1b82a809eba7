package services

import (
	"fmt"

	"backoffice/internal/config"
	"backoffice/internal/domain"
	"backoffice/internal/metrics"
	"backoffice/internal/repositories"
	"backoffice/internal/sharetoken"
	"backoffice/internal/utils"
)

// ShareService issues and resolves public share links. Issued tokens are
// persisted on the booking so repeated shares hand out the same URL until
// staff resets the link.
type ShareService struct {
	Bookings  repositories.BookingRepository
	Codec     sharetoken.Codec
	Cfg       config.Env
	RequestID string
	Loader    func(int64) (domain.Booking, error)
}

// ShareLink is the share API response payload.
type ShareLink struct {
	Token            string `json:"token"`
	SecureURL        string `json:"secure_url"`
	PDFURL           string `json:"pdf_url"`
	PNGURL           string `json:"png_url"`
	ExpiresDays      int    `json:"expires_days"`
	BookingReference string `json:"booking_reference"`
	Status           string `json:"status"`
}

func (s ShareService) load(bookingID int64) (domain.Booking, error) {
	if s.Loader != nil {
		return s.Loader(bookingID)
	}
	return s.Bookings.GetByID(bookingID)
}

// CreateLink returns the booking's share link, reusing a still-valid
// persisted token and issuing a fresh one otherwise.
func (s ShareService) CreateLink(bookingID int64) (ShareLink, error) {
	booking, err := s.load(bookingID)
	if err != nil {
		return ShareLink{}, err
	}
	if !booking.IsShareable() {
		return ShareLink{}, domain.ErrBookingNotShareable
	}

	token := booking.CurrentShareToken
	if id, err := s.Codec.Verify(token); err != nil || id != booking.ID {
		token = s.Codec.Issue(booking.ID, booking.DepartureDate)
		if err := s.Bookings.SaveShareToken(booking.ID, token); err != nil {
			return ShareLink{}, err
		}
		metrics.ShareIssued()
		utils.LogEvent(s.RequestID, "share", "issue_token",
			fmt.Sprintf("booking_id=%d ref=%s", booking.ID, booking.BookingReference))
	}
	return s.link(booking, token), nil
}

// ResetLink revokes the current link and issues a fresh token. The version
// bump makes previously shared URLs verify but fail the persisted-token
// comparison at the gate.
func (s ShareService) ResetLink(bookingID int64) (ShareLink, error) {
	booking, err := s.load(bookingID)
	if err != nil {
		return ShareLink{}, err
	}
	if !booking.IsShareable() {
		return ShareLink{}, domain.ErrBookingNotShareable
	}

	token := s.Codec.Issue(booking.ID, booking.DepartureDate)
	if err := s.Bookings.ResetShareToken(booking.ID, token); err != nil {
		return ShareLink{}, err
	}
	metrics.ShareIssued()
	utils.LogEvent(s.RequestID, "share", "reset_token",
		fmt.Sprintf("booking_id=%d ref=%s", booking.ID, booking.BookingReference))
	return s.link(booking, token), nil
}

func (s ShareService) link(booking domain.Booking, token string) ShareLink {
	base := s.Cfg.PublicBaseURL
	return ShareLink{
		Token:            token,
		SecureURL:        base + "/public/booking/" + token,
		PDFURL:           base + "/public/booking/" + token + "/pdf",
		PNGURL:           base + "/public/booking/" + token + "/png",
		ExpiresDays:      s.Codec.ExpiresIn(token),
		BookingReference: booking.BookingReference,
		Status:           booking.Status,
	}
}

// Resolve verifies a public token and returns the booking it grants access
// to. A token that verifies but no longer matches the persisted one has
// been revoked by a reset and is rejected.
func (s ShareService) Resolve(token string) (domain.Booking, error) {
	bookingID, err := s.Codec.Verify(token)
	if err != nil {
		return domain.Booking{}, err
	}
	booking, err := s.load(bookingID)
	if err != nil {
		return domain.Booking{}, err
	}
	if !booking.IsShareable() {
		return domain.Booking{}, domain.ErrBookingNotShareable
	}
	if booking.CurrentShareToken != "" && booking.CurrentShareToken != token {
		return domain.Booking{}, sharetoken.ErrBadSignature
	}
	return booking, nil
}

// RecordView counts a successful public view. Best effort.
func (s ShareService) RecordView(booking domain.Booking) {
	metrics.ShareView()
	if err := s.Bookings.IncrementViewCount(booking.ID); err != nil {
		utils.LogEvent(s.RequestID, "share", "view_count_failed",
			fmt.Sprintf("booking_id=%d err=%v", booking.ID, err))
	}
}
