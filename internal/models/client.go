package models

type Client struct {
	ID    string `json:"id"`
	Phone string `json:"phone"` // digits only, 4+
	Name  string `json:"name,omitempty"`
}
