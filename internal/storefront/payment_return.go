// internal/storefront/payment_return.go
package storefront

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-api/internal/domain/order"
	"github.com/your-org/storefront-api/internal/domain/payment"
)

// ReturnAPI verifies a gateway return on the server
type ReturnAPI interface {
	VNPayReturn(ctx context.Context, rawQuery string) (*payment.Result, error)
}

// ResultView is what the payment result page renders. Failed means the
// outcome is unknown; it is never derived from the gateway's own fields.
type ResultView struct {
	Success       bool
	Failed        bool
	OrderID       uint
	OrderCode     string
	PaymentMethod string
	PaymentStatus order.PaymentStatus
	TotalAmount   int64
}

// PaymentReturn handles the browser coming back from the gateway
type PaymentReturn struct {
	api ReturnAPI
	log logrus.FieldLogger
}

// NewPaymentReturn creates the handler
func NewPaymentReturn(api ReturnAPI, log logrus.FieldLogger) *PaymentReturn {
	return &PaymentReturn{api: api, log: log}
}

// Resolve forwards the return query untouched and renders the server's verdict
func (p *PaymentReturn) Resolve(ctx context.Context, rawQuery string) ResultView {
	res, err := p.api.VNPayReturn(ctx, rawQuery)
	if err != nil {
		p.log.WithError(err).Warn("payment return could not be verified")
		return ResultView{Failed: true}
	}
	return ResultView{
		Success:       res.PaymentStatus == order.PaymentStatusPaid,
		OrderID:       res.OrderID,
		OrderCode:     res.OrderCode,
		PaymentMethod: res.PaymentMethod,
		PaymentStatus: res.PaymentStatus,
		TotalAmount:   res.TotalAmount,
	}
}
