package timetable

// Timetable holds every record parsed from a timetable archive or directory.
type Timetable struct {
	Lines        []LineRecord
	Stops        []StopRecord
	Departures   []DepartureRecord
	Alerts       []AlertRecord
	LastModified string // From HTTP response header
	ETag         string // From HTTP response header
}

type LineRecord struct {
	LineID        string `csv:"line_id"`
	LineNumber    string `csv:"line_number"`
	TransportType string `csv:"transport_type"`
	Name          string `csv:"name"`
	Active        string `csv:"active"`
}

type StopRecord struct {
	StopID    string `csv:"stop_id"`
	Name      string `csv:"name"`
	StopType  string `csv:"stop_type"`
	Latitude  string `csv:"latitude"`
	Longitude string `csv:"longitude"`
	Pincode   string `csv:"pincode"`
	Address   string `csv:"address"`
	Active    string `csv:"active"`
}

type DepartureRecord struct {
	DepartureID   string `csv:"departure_id"`
	LineID        string `csv:"line_id"`
	StopID        string `csv:"stop_id"`
	Destination   string `csv:"destination"`
	DepartureTime string `csv:"departure_time"`
	Platform      string `csv:"platform"`
	Weekdays      string `csv:"weekdays"` // e.g. "12345" or "1|2|3|4|5"
	Active        string `csv:"active"`
}

type AlertRecord struct {
	AlertID     string `csv:"alert_id"`
	AlertType   string `csv:"alert_type"`
	Title       string `csv:"title"`
	Description string `csv:"description"`
	Severity    string `csv:"severity"`
	StartTime   string `csv:"start_time"` // RFC 3339
	EndTime     string `csv:"end_time"`
	Lines       string `csv:"lines"` // line numbers separated by '|' or ';'
	Active      string `csv:"active"`
}
