package domain

import "strings"

// Posting is the provider-agnostic form of one open position.
// Fields the provider did not send are left at their zero value.
type Posting struct {
	Title       string `json:"title"`
	Location    string `json:"location"`
	URL         string `json:"url"`
	Department  string `json:"department"`
	Remote      bool   `json:"remote"`
	Description string `json:"description"`
}

// IsRemote reports whether a location string mentions remote work.
func IsRemote(location string) bool {
	return strings.Contains(strings.ToLower(location), "remote")
}
