package stop

// Stop types.
const (
	TypeBus   = "bus"
	TypeTrain = "train"
	TypeTram  = "tram"
	TypeMixed = "mixed"
)

// Stop is a place where lines call, grouped geographically by pincode.
type Stop struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	StopType  string   `json:"stopType"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Pincode   string   `json:"pincode"`
	Address   string   `json:"address,omitempty"`
	IsActive  bool     `json:"isActive"`
}
