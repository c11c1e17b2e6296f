// internal/pkg/email/types.go
package email

// EmailType represents the type of email being sent
type EmailType string

const (
	EmailTypeOrderConfirmation EmailType = "order_confirmation"
	EmailTypeOrderStatusUpdate EmailType = "order_status_update"
	EmailTypePaymentResult     EmailType = "payment_result"
	EmailTypeTemporaryPassword EmailType = "temporary_password"
)

// Email represents an email message
type Email struct {
	To          []string  `json:"to"`
	Subject     string    `json:"subject"`
	HTMLContent string    `json:"html_content"`
	TextContent string    `json:"text_content,omitempty"`
	Type        EmailType `json:"type"`
	// Attachments are file paths
	Attachments []string `json:"attachments,omitempty"`
}

// TemplateData contains common data for all email templates
type TemplateData struct {
	SiteName string
	SiteURL  string
	UserName string
	Year     int
}

// OrderData feeds the order confirmation and status templates
type OrderData struct {
	TemplateData
	OrderCode     string
	OrderURL      string
	Status        string
	PaymentMethod string
	TotalAmount   int64
	Items         []OrderItem
}

// OrderItem represents an item in the order
type OrderItem struct {
	Name     string
	Quantity int
	Price    int64
}

// PaymentData feeds the payment result template
type PaymentData struct {
	TemplateData
	OrderCode   string
	OrderURL    string
	Paid        bool
	TotalAmount int64
}

// TemporaryPasswordData feeds the forgot-password template
type TemporaryPasswordData struct {
	TemplateData
	Username string
	Password string
}
