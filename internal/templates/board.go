package templates

import (
	"fmt"
	"net/url"

	"livelink/internal/departure"
	"livelink/internal/service"
)

// Page carries data shared by every page.
type Page struct {
	Title   string
	Version string // static asset version for cache busting
}

// BoardData is the departure board view model. Board is nil when no pincode was given.
type BoardData struct {
	Page  Page
	Board *service.Board
}

func boardPincode(data BoardData) string {
	if data.Board == nil {
		return ""
	}
	return data.Board.Pincode
}

func streamURL(pincode string) string {
	return "/board/stream?pincode=" + url.QueryEscape(pincode)
}

func showActual(d departure.Projection) bool {
	return d.ActualDeparture != "" && d.ActualDeparture != d.ScheduledDeparture
}

func statusLabel(d departure.Projection) string {
	switch {
	case d.Status == departure.StatusCancelled:
		return "Cancelled"
	case d.DelayMinutes != nil:
		return fmt.Sprintf("+%d min", *d.DelayMinutes)
	default:
		return "On time"
	}
}
