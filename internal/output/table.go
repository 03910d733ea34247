package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"livelink/internal/alert"
	"livelink/internal/departure"
	"livelink/internal/stop"
)

// RenderDepartures writes one row per projection:
// TIME DELAY LINE PLATFORM DESTINATION NEXT.
func RenderDepartures(w io.Writer, deps []departure.Projection, c *Colors) {
	if len(deps) == 0 {
		_, _ = fmt.Fprintln(w, "No departures found.")
		return
	}
	if c == nil {
		c = NewColors(ColorNever)
	}

	for _, d := range deps {
		clock := d.ScheduledDeparture
		if d.ActualDeparture != "" && d.ActualDeparture != d.ScheduledDeparture {
			clock = d.ActualDeparture
		}

		platform := "       "
		if d.Platform != "" {
			p := d.Platform
			if len(p) > 3 {
				p = p[:3]
			}
			platform = fmt.Sprintf("Pl.%-3s ", p)
		}

		dest := d.Destination
		switch d.Status {
		case departure.StatusCancelled:
			dest = c.Canceled("%s [CANCELLED]", dest)
		case departure.StatusOnTime:
			dest = c.OnTime("%s", dest)
		}

		next := ""
		if len(d.NextDepartures) > 0 {
			next = c.Muted("then %s", strings.Join(d.NextDepartures, " "))
		}

		_, _ = fmt.Fprintf(w, "%s %s  %s %s %s %s  %s\n",
			c.Time("%-5s", clock),
			c.FormatDelay(d.DelayMinutes),
			c.Line("%-4s", truncate(d.TransportType, 4)),
			c.Line("%-6s", truncate(d.LineNumber, 6)),
			c.Platform("%s", platform),
			dest,
			next,
		)
	}
}

// RenderAlerts writes each alert as a header line followed by its description.
func RenderAlerts(w io.Writer, alerts []alert.Alert, c *Colors) {
	if len(alerts) == 0 {
		_, _ = fmt.Fprintln(w, "No active alerts.")
		return
	}
	if c == nil {
		c = NewColors(ColorNever)
	}

	for _, a := range alerts {
		sev := fmt.Sprintf("%-6s", strings.ToUpper(a.Severity.String()))
		switch a.Severity {
		case alert.SeverityHigh:
			sev = c.High("%s", sev)
		case alert.SeverityMedium:
			sev = c.Medium("%s", sev)
		default:
			sev = c.Muted("%s", sev)
		}

		_, _ = fmt.Fprintf(w, "%s %s %s\n", sev, c.Header("%s", a.Title), c.Muted("[%s]", a.Type))
		if len(a.AffectedLines) > 0 {
			_, _ = fmt.Fprintf(w, "       %s %s\n", c.Muted("lines:"), c.Line("%s", strings.Join(a.AffectedLines, ", ")))
		}
		_, _ = fmt.Fprintf(w, "       %s %s\n", c.Muted("since:"), a.StartTime.Local().Format("2006-01-02 15:04"))
		if a.EndTime != nil {
			_, _ = fmt.Fprintf(w, "       %s %s\n", c.Muted("until:"), a.EndTime.Local().Format("2006-01-02 15:04"))
		}
		if a.Description != "" {
			_, _ = fmt.Fprintf(w, "       %s\n", a.Description)
		}
	}
}

// RenderStops writes a stop list with the ids needed for `departures --stop`.
func RenderStops(w io.Writer, stops []stop.Stop, c *Colors) {
	if len(stops) == 0 {
		_, _ = fmt.Fprintln(w, "No stops found.")
		return
	}
	if c == nil {
		c = NewColors(ColorNever)
	}

	for _, s := range stops {
		_, _ = fmt.Fprintf(w, "  %s %s\n", c.Line("%s", s.Name), c.Muted("(%s)", s.StopType))
		_, _ = fmt.Fprintf(w, "    %s %s  %s %s\n", c.Muted("id:"), s.ID, c.Muted("pincode:"), s.Pincode)
		if s.Address != "" {
			_, _ = fmt.Fprintf(w, "    %s %s\n", c.Muted("address:"), s.Address)
		}
	}
}

// Footer prints the refresh line shown under watch-mode output.
func Footer(w io.Writer, c *Colors, at time.Time, every time.Duration) {
	if c == nil {
		c = NewColors(ColorNever)
	}
	_, _ = fmt.Fprintf(w, "\n%s\n", c.Muted("updated %s, refreshing every %s (ctrl-c to quit)", at.Format("15:04:05"), every))
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
