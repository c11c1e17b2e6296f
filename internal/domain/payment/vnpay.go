// internal/domain/payment/vnpay.go
package payment

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/your-org/storefront-api/internal/config"
)

const (
	vnpDateLayout = "20060102150405"
	paramHash     = "vnp_SecureHash"
	paramHashType = "vnp_SecureHashType"
)

// vietnam is the gateway's clock. The fixed zone covers hosts without tzdata.
var vietnam = func() *time.Location {
	if loc, err := time.LoadLocation("Asia/Ho_Chi_Minh"); err == nil {
		return loc
	}
	return time.FixedZone("ICT", 7*60*60)
}()

// PayRequest is what the gateway needs to start a payment
type PayRequest struct {
	TxnRef    string
	Amount    int64
	OrderInfo string
	ClientIP  string
	CreatedAt time.Time
}

// Return is the parsed, verified gateway callback
type Return struct {
	TxnRef            string
	Amount            int64
	ResponseCode      string
	TransactionStatus string
	TransactionNo     string
	BankCode          string
}

// Succeeded reports whether both the response and the transaction status are "00"
func (r Return) Succeeded() bool {
	return r.ResponseCode == "00" && r.TransactionStatus == "00"
}

// VNPay signs payment URLs and verifies callbacks
type VNPay struct {
	cfg config.VNPayConfig
}

// NewVNPay creates a VNPAY signer
func NewVNPay(cfg config.VNPayConfig) *VNPay {
	return &VNPay{cfg: cfg}
}

// Enabled reports whether merchant credentials are configured
func (v *VNPay) Enabled() bool {
	return v.cfg.TmnCode != "" && v.cfg.HashSecret != ""
}

// BuildURL returns the signed redirect URL and its expiry
func (v *VNPay) BuildURL(req PayRequest) (string, time.Time, error) {
	if req.Amount <= 0 {
		return "", time.Time{}, fmt.Errorf("invalid amount %d", req.Amount)
	}
	created := req.CreatedAt.In(vietnam)
	expires := created.Add(v.cfg.ExpireAfter)
	ip := req.ClientIP
	if ip == "" {
		ip = "127.0.0.1"
	}

	params := url.Values{}
	params.Set("vnp_Version", v.cfg.Version)
	params.Set("vnp_Command", "pay")
	params.Set("vnp_TmnCode", v.cfg.TmnCode)
	// VND with two implied decimals
	params.Set("vnp_Amount", strconv.FormatInt(req.Amount*100, 10))
	params.Set("vnp_CurrCode", "VND")
	params.Set("vnp_TxnRef", req.TxnRef)
	params.Set("vnp_OrderInfo", req.OrderInfo)
	params.Set("vnp_OrderType", "other")
	params.Set("vnp_Locale", v.cfg.Locale)
	params.Set("vnp_ReturnUrl", v.cfg.ReturnURL)
	params.Set("vnp_IpAddr", ip)
	params.Set("vnp_CreateDate", created.Format(vnpDateLayout))
	params.Set("vnp_ExpireDate", expires.Format(vnpDateLayout))

	data := signingData(params)
	return v.cfg.PayURL + "?" + data + "&" + paramHash + "=" + v.sign(data), expires, nil
}

// Verify recomputes the signature over every vnp_ parameter except the hash itself
func (v *VNPay) Verify(query url.Values) bool {
	got := strings.ToLower(query.Get(paramHash))
	if got == "" {
		return false
	}
	want := v.sign(signingData(query))
	return hmac.Equal([]byte(got), []byte(want))
}

// ParseReturn reads the fields the service needs. Call Verify first.
func (v *VNPay) ParseReturn(query url.Values) (Return, error) {
	r := Return{
		TxnRef:            query.Get("vnp_TxnRef"),
		ResponseCode:      query.Get("vnp_ResponseCode"),
		TransactionStatus: query.Get("vnp_TransactionStatus"),
		TransactionNo:     query.Get("vnp_TransactionNo"),
		BankCode:          query.Get("vnp_BankCode"),
	}
	if r.TxnRef == "" {
		return Return{}, fmt.Errorf("missing vnp_TxnRef")
	}
	raw, err := strconv.ParseInt(query.Get("vnp_Amount"), 10, 64)
	if err != nil {
		return Return{}, fmt.Errorf("invalid vnp_Amount: %w", err)
	}
	r.Amount = raw / 100
	return r, nil
}

func (v *VNPay) sign(data string) string {
	mac := hmac.New(sha512.New, []byte(v.cfg.HashSecret))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

// signingData is the sorted, query-escaped key=value list of non-empty vnp_ fields
func signingData(query url.Values) string {
	filtered := url.Values{}
	for k, vs := range query {
		if k == paramHash || k == paramHashType || !strings.HasPrefix(k, "vnp_") {
			continue
		}
		if len(vs) == 0 || vs[0] == "" {
			continue
		}
		filtered.Set(k, vs[0])
	}
	return filtered.Encode()
}
