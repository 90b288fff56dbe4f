package models

// Customer represents a customer invoices are billed to.
// Customers are read-only from the dashboard.
type Customer struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	ImageURL string `json:"image_url"`
}

// Validate performs basic validation on customer data
func (c *Customer) Validate() error {
	if c.Name == "" {
		return ErrInvalidInput("name is required")
	}
	if c.Email == "" {
		return ErrInvalidInput("email is required")
	}
	return nil
}
