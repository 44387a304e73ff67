package presentation

// Caption is the text shown over a photo
type Caption struct {
	Location string
	Date     string
	Path     string
	// Visible is false when neither location nor date is known
	Visible bool
}

// NewCaption builds the overlay text; a failed address lookup leaves the location empty
func NewCaption(address string, addressErr error, capturedAt *string, path string) Caption {
	c := Caption{Path: path}
	if addressErr == nil {
		c.Location = address
	}
	if capturedAt != nil {
		c.Date = *capturedAt
	}
	c.Visible = c.Location != "" || c.Date != ""
	return c
}
