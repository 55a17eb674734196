package domain

// Site is one measurement location from the Cloudnet site registry.
// Latitude and longitude are guaranteed present: sites without coordinates
// are filtered out before extraction starts.
type Site struct {
	ID        string  `json:"id"`
	Name      string  `json:"humanReadableName"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
