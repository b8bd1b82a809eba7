package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"backoffice/internal/config"
	"backoffice/internal/document"
	"backoffice/internal/domain"
	"backoffice/internal/metrics"
	"backoffice/internal/pdf"
	"backoffice/internal/raster"
	"backoffice/internal/repositories"
	"backoffice/internal/utils"

	"github.com/google/uuid"
)

// DocsService renders booking documents to PDF/PNG and archives staff
// downloads. Loader overrides the repository lookup in tests.
type DocsService struct {
	Bookings  repositories.BookingRepository
	Builder   *document.Builder
	Renderer  *pdf.Renderer
	Raster    raster.Converter
	Cfg       config.Env
	RequestID string
	Loader    func(int64) (domain.Booking, error)
}

func (s DocsService) load(bookingID int64) (domain.Booking, error) {
	if s.Loader != nil {
		return s.Loader(bookingID)
	}
	return s.Bookings.GetByID(bookingID)
}

// RenderPDF builds and renders one document kind for a booking. Returns the
// PDF bytes and a download filename.
func (s DocsService) RenderPDF(bookingID int64, kind document.Kind) ([]byte, string, error) {
	booking, err := s.load(bookingID)
	if err != nil {
		return nil, "", err
	}
	return s.renderBooking(booking, kind)
}

func (s DocsService) renderBooking(booking domain.Booking, kind document.Kind) ([]byte, string, error) {
	doc, err := s.Builder.Build(booking, kind)
	if err != nil {
		metrics.RenderError()
		return nil, "", err
	}
	data, err := s.Renderer.Render(doc)
	if err != nil {
		metrics.RenderError()
		utils.LogEvent(s.RequestID, "docs", "render_failed",
			fmt.Sprintf("booking_id=%d kind=%s err=%v", booking.ID, kind, err))
		return nil, "", err
	}
	metrics.RenderPDF()
	utils.LogEvent(s.RequestID, "docs", "render_pdf",
		fmt.Sprintf("booking_id=%d kind=%s bytes=%d", booking.ID, kind, len(data)))

	filename := fmt.Sprintf("%s_%s.pdf", kind, utils.SafeFilenamePart(booking.BookingReference))
	return data, filename, nil
}

// RenderPNG renders the document and rasterizes every page into one tall
// bitmap. The context bounds the rasterizer subprocess.
func (s DocsService) RenderPNG(ctx context.Context, bookingID int64, kind document.Kind) ([]byte, string, error) {
	data, filename, err := s.RenderPDF(bookingID, kind)
	if err != nil {
		return nil, "", err
	}
	img, err := s.Raster.ToPNGAllPages(ctx, data)
	if err != nil {
		metrics.RenderError()
		utils.LogEvent(s.RequestID, "docs", "raster_failed",
			fmt.Sprintf("booking_id=%d kind=%s err=%v", bookingID, kind, err))
		return nil, "", err
	}
	metrics.RenderPNG()
	return img, filename[:len(filename)-len(".pdf")] + ".png", nil
}

// RenderForStatus picks the kind the booking's status calls for.
func (s DocsService) RenderForStatus(booking domain.Booking) ([]byte, string, error) {
	return s.renderBooking(booking, document.KindForStatus(booking.Status))
}

// Archive stores a staff download under the generated-documents directory
// with a collision-proof timestamped name, and returns the stored path.
// base is the download name without extension, e.g. "voucher_DCT-2024-001".
func (s DocsService) Archive(data []byte, base, ext string) (string, error) {
	now := time.Now()
	name := fmt.Sprintf("%s_%s_%06d.%s",
		utils.SafeFilenamePart(base),
		now.Format("20060102_150405"),
		now.Nanosecond()/1000,
		ext,
	)
	dir := s.Cfg.GeneratedDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)
	tmp := path + ".tmp-" + uuid.NewString()
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}
	utils.LogEvent(s.RequestID, "docs", "archive", "path="+path)
	return path, nil
}

// SweepArchive removes archived documents older than maxAge. Zero disables
// the sweep.
func (s DocsService) SweepArchive(maxAge time.Duration) (removed int, err error) {
	if maxAge <= 0 {
		return 0, nil
	}
	entries, err := os.ReadDir(s.Cfg.GeneratedDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	cutoff := time.Now().Add(-maxAge)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".pdf", ".png":
		default:
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if rmErr := os.Remove(filepath.Join(s.Cfg.GeneratedDir, e.Name())); rmErr == nil {
				removed++
			}
		}
	}
	return removed, nil
}
