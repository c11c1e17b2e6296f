// internal/domain/payment/entity.go
package payment

import (
	"time"

	"github.com/your-org/storefront-api/internal/domain/order"
)

// Gateway names a payment provider
type Gateway string

const (
	GatewayVNPay Gateway = "VNPAY"
	// GatewayManual marks a payment confirmed by staff, e.g. cash collected on delivery
	GatewayManual Gateway = "MANUAL"
)

// Attempt records one redirect to the gateway and what came back
type Attempt struct {
	ID            uint                `gorm:"primaryKey" json:"id"`
	OrderID       uint                `gorm:"not null;index" json:"orderId"`
	Gateway       Gateway             `gorm:"not null;size:20" json:"gateway"`
	TxnRef        string              `gorm:"uniqueIndex;not null;size:100" json:"txnRef"`
	Amount        int64               `gorm:"not null" json:"amount"`
	RedirectURL   string              `gorm:"type:text" json:"-"`
	ReturnParams  string              `gorm:"type:text" json:"-"`
	ResponseCode  string              `gorm:"size:10" json:"responseCode,omitempty"`
	TransactionNo string              `gorm:"size:50" json:"transactionNo,omitempty"`
	BankCode      string              `gorm:"size:20" json:"bankCode,omitempty"`
	Result        order.PaymentStatus `gorm:"not null;size:20;default:'PENDING'" json:"result"`
	VerifiedAt    *time.Time          `json:"verifiedAt,omitempty"`
	CreatedAt     time.Time           `json:"createdDate"`
	UpdatedAt     time.Time           `json:"lastModifiedDate"`
}

// TableName overrides the table name
func (Attempt) TableName() string {
	return "payment_attempts"
}

// PaymentURL is returned to the browser, which navigates to it
type PaymentURL struct {
	OrderID   uint      `json:"orderId"`
	TxnRef    string    `json:"txnRef"`
	Amount    int64     `json:"amount"`
	URL       string    `json:"paymentUrl"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Result is the verified outcome shown on the payment result page
type Result struct {
	OrderID       uint                `json:"orderId"`
	OrderCode     string              `json:"orderCode"`
	PaymentMethod string              `json:"paymentMethod"`
	PaymentStatus order.PaymentStatus `json:"paymentStatus"`
	TotalAmount   int64               `json:"totalAmount"`
	ResponseCode  string              `json:"responseCode,omitempty"`
	Message       string              `json:"message,omitempty"`
}

// IPNResponse is the body VNPAY expects from the notify endpoint
type IPNResponse struct {
	RspCode string `json:"RspCode"`
	Message string `json:"Message"`
}

var (
	ipnSuccess          = IPNResponse{RspCode: "00", Message: "Confirm Success"}
	ipnAlreadyConfirmed = IPNResponse{RspCode: "02", Message: "Order already confirmed"}
	ipnOrderNotFound    = IPNResponse{RspCode: "01", Message: "Order not found"}
	ipnInvalidAmount    = IPNResponse{RspCode: "04", Message: "Invalid amount"}
	ipnInvalidSignature = IPNResponse{RspCode: "97", Message: "Invalid signature"}
	ipnUnknownError     = IPNResponse{RspCode: "99", Message: "Unknown error"}
)

func resultFor(o *order.Order, responseCode string) *Result {
	r := &Result{
		OrderID:       o.ID,
		OrderCode:     o.OrderCode,
		PaymentMethod: string(o.PaymentMethod),
		PaymentStatus: o.PaymentStatus,
		TotalAmount:   o.TotalAmount,
		ResponseCode:  responseCode,
	}
	switch o.PaymentStatus {
	case order.PaymentStatusPaid:
		r.Message = "Thanh toán thành công"
	case order.PaymentStatusFailed:
		r.Message = responseMessage(responseCode)
	default:
		r.Message = "Đơn hàng chưa được thanh toán"
	}
	return r
}

// responseMessage translates the common vnp_ResponseCode values
func responseMessage(code string) string {
	switch code {
	case "07":
		return "Giao dịch bị nghi ngờ gian lận"
	case "09":
		return "Thẻ hoặc tài khoản chưa đăng ký InternetBanking"
	case "10":
		return "Xác thực thông tin thẻ không đúng quá 3 lần"
	case "11":
		return "Đã hết hạn chờ thanh toán"
	case "12":
		return "Thẻ hoặc tài khoản bị khóa"
	case "13":
		return "Sai mật khẩu xác thực giao dịch (OTP)"
	case "24":
		return "Khách hàng hủy giao dịch"
	case "51":
		return "Tài khoản không đủ số dư"
	case "65":
		return "Tài khoản đã vượt quá hạn mức giao dịch trong ngày"
	case "75":
		return "Ngân hàng thanh toán đang bảo trì"
	default:
		return "Thanh toán không thành công"
	}
}
