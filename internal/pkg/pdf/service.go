// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/your-org/storefront-api/internal/config"
	"github.com/your-org/storefront-api/internal/pkg/money"
)

// Invoice is the VAT invoice content for one order
type Invoice struct {
	OrderCode      string
	OrderDate      time.Time
	BuyerName      string
	BuyerPhone     string
	BuyerEmail     string
	CompanyName    string
	CompanyTaxCode string
	CompanyAddress string
	PaymentMethod  string
	Lines          []InvoiceLine
	TotalAmount    int64
}

// InvoiceLine is one product row
type InvoiceLine struct {
	Name      string
	Quantity  int
	UnitPrice int64
}

// Amount is the line total
func (l InvoiceLine) Amount() int64 { return l.UnitPrice * int64(l.Quantity) }

type invoiceView struct {
	Invoice
	InvoiceNumber string
	IssuedAt      string
	OrderedAt     string
	Seller        config.InvoiceConfig
}

// Service handles PDF generation
type Service struct {
	config config.InvoiceConfig
	tmpl   *template.Template
	now    func() time.Time
}

// NewService creates a new PDF service
func NewService(cfg *config.Config) *Service {
	if cfg.Invoice.WkhtmltopdfPath != "" {
		wkhtmltopdf.SetPath(cfg.Invoice.WkhtmltopdfPath)
	}
	return &Service{
		config: cfg.Invoice,
		tmpl:   template.Must(template.New("invoice").Funcs(template.FuncMap{"vnd": money.FormatVND, "inc": func(i int) int { return i + 1 }}).Parse(invoiceTemplate)),
		now:    time.Now,
	}
}

// Enabled reports whether invoices should be rendered at all
func (s *Service) Enabled() bool { return s.config.Enabled }

// RenderInvoiceHTML renders the invoice markup
func (s *Service) RenderInvoiceHTML(inv Invoice) ([]byte, error) {
	view := invoiceView{
		Invoice:       inv,
		InvoiceNumber: "INV-" + inv.OrderCode,
		IssuedAt:      s.now().Format("02/01/2006"),
		OrderedAt:     inv.OrderDate.Format("02/01/2006 15:04"),
		Seller:        s.config,
	}

	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.Bytes(), nil
}

// GenerateInvoice renders the invoice to PDF bytes with wkhtmltopdf
func (s *Service) GenerateInvoice(inv Invoice) ([]byte, error) {
	html, err := s.RenderInvoiceHTML(inv)
	if err != nil {
		return nil, fmt.Errorf("failed to generate HTML: %w", err)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.PageSize.Set(wkhtmltopdf.PageSizeA4)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader(html))
	page.Encoding.Set("utf-8")
	page.FooterRight.Set("[page]/[topage]")
	page.FooterFontSize.Set(9)
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}
	return pdfg.Bytes(), nil
}

const invoiceTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>{{.InvoiceNumber}}</title>
<style>
body { font-family: "DejaVu Sans", Arial, sans-serif; font-size: 12px; color: #222; }
h1 { text-align: center; font-size: 20px; margin-bottom: 4px; }
.meta { text-align: center; margin-bottom: 16px; }
table { width: 100%; border-collapse: collapse; }
th, td { border: 1px solid #999; padding: 6px; }
td.num { text-align: right; }
.party { margin-bottom: 12px; }
</style>
</head>
<body>
<h1>HÓA ĐƠN GIÁ TRỊ GIA TĂNG</h1>
<div class="meta">Số: {{.InvoiceNumber}} | Ngày: {{.IssuedAt}}</div>

<div class="party">
<strong>Đơn vị bán hàng:</strong> {{.Seller.SellerName}}<br>
Mã số thuế: {{.Seller.SellerTaxCode}}<br>
Địa chỉ: {{.Seller.SellerAddress}}
</div>

<div class="party">
<strong>Đơn vị mua hàng:</strong> {{.CompanyName}}<br>
Mã số thuế: {{.CompanyTaxCode}}<br>
Địa chỉ: {{.CompanyAddress}}<br>
Người mua hàng: {{.BuyerName}} - {{.BuyerPhone}} - {{.BuyerEmail}}<br>
Đơn hàng: {{.OrderCode}} ({{.OrderedAt}}) - Thanh toán: {{.PaymentMethod}}
</div>

<table>
<thead><tr><th>STT</th><th>Tên hàng hóa</th><th>Số lượng</th><th>Đơn giá</th><th>Thành tiền</th></tr></thead>
<tbody>
{{range $i, $l := .Lines}}<tr><td>{{inc $i}}</td><td>{{$l.Name}}</td><td class="num">{{$l.Quantity}}</td><td class="num">{{vnd $l.UnitPrice}}</td><td class="num">{{vnd $l.Amount}}</td></tr>
{{end}}</tbody>
<tfoot><tr><td colspan="4"><strong>Tổng cộng</strong></td><td class="num"><strong>{{vnd .TotalAmount}}</strong></td></tr></tfoot>
</table>
</body>
</html>`
