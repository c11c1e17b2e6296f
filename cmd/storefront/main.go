// cmd/storefront/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-api/internal/client"
	"github.com/your-org/storefront-api/internal/config"
	"github.com/your-org/storefront-api/internal/domain/checkout"
	"github.com/your-org/storefront-api/internal/pkg/logger"
	"github.com/your-org/storefront-api/internal/pkg/money"
	"github.com/your-org/storefront-api/internal/pkg/pagination"
	"github.com/your-org/storefront-api/internal/session"
	"github.com/your-org/storefront-api/internal/storefront"
)

const usage = `usage: storefront <command> [flags]

commands:
  login -u <username> -p <password>
  logout
  whoami
  products [-keyword k] [-page n] [-sort field] [-asc]
  cart
  add <productId> [quantity]
  checkout -name ... -email ... -phone ... -payment COD|VNPAY [-pickup | -address ...]
  payment-return <query string from the gateway redirect>
  page-size <n>
`

type app struct {
	api      *client.Client
	session  *session.Manager
	checkout *storefront.Checkout
	returns  *storefront.PaymentReturn
	visits   *storefront.VisitTracker
	log      logrus.FieldLogger

	minAmount int64
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.LoadClient()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	log := logger.NewWithOutput(cfg.Logging, os.Stderr)

	a, err := newApp(cfg, log)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	visited := a.visits.Track()
	err = a.run(ctx, os.Args[1], os.Args[2:])

	select {
	case <-visited:
	case <-time.After(time.Second):
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, a.describe(err))
		os.Exit(1)
	}
}

func newApp(cfg *config.Config, log logrus.FieldLogger) (*app, error) {
	store := session.NewFileTokenStore(cfg.Client.TokenFile)
	var mgr *session.Manager

	api, err := client.New(client.Config{
		BaseURL: cfg.Client.BaseURL,
		Timeout: cfg.Client.RequestTimeout,
		Token:   func() string { return mgr.AccessToken() },
	}, log)
	if err != nil {
		return nil, err
	}
	mgr = session.NewManager(store, api, log)

	return &app{
		api:      api,
		session:  mgr,
		checkout: storefront.NewCheckout(api, cfg.VNPay.MinAmount, log),
		returns:  storefront.NewPaymentReturn(api, log),
		visits:   storefront.NewVisitTracker(api, 0, log),
		log:      log,

		minAmount: cfg.VNPay.MinAmount,
	}, nil
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "login":
		return a.login(ctx, args)
	case "logout":
		if err := a.session.Logout(ctx); err != nil {
			return err
		}
		fmt.Println("Đã đăng xuất.")
		return nil
	case "whoami":
		return a.whoami(ctx)
	case "products":
		return a.products(ctx, args)
	case "cart":
		return a.cart(ctx)
	case "add":
		return a.add(ctx, args)
	case "checkout":
		return a.submitCheckout(ctx, args)
	case "payment-return":
		return a.paymentReturn(ctx, args)
	case "page-size":
		if len(args) != 1 {
			return errors.New("page-size needs one number")
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid page size %q", args[0])
		}
		return a.session.SetPageSize(n)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	username := fs.String("u", "", "username or email")
	password := fs.String("p", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" || *password == "" {
		return errors.New("login needs -u and -p")
	}

	pair, err := a.api.Login(ctx, *username, *password)
	if err != nil {
		return err
	}
	st, err := a.session.Login(ctx, pair.AccessToken, pair.RefreshToken)
	if err != nil {
		return err
	}
	if !st.Authenticated {
		return errors.New("login succeeded but the session could not be verified")
	}
	fmt.Printf("Xin chào, %s!\n", displayName(st))
	return nil
}

func (a *app) whoami(ctx context.Context) error {
	st := a.session.Bootstrap(ctx)
	if !st.Authenticated {
		fmt.Println("Khách (chưa đăng nhập)")
		return nil
	}
	fmt.Printf("%s <%s> %v\n", displayName(st), st.User.Email, st.User.Roles)
	return nil
}

func (a *app) products(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("products", flag.ContinueOnError)
	keyword := fs.String("keyword", "", "search keyword")
	page := fs.Int("page", 1, "page number")
	sortBy := fs.String("sort", "", "sort field")
	asc := fs.Bool("asc", false, "ascending order")
	if err := fs.Parse(args); err != nil {
		return err
	}

	res, err := a.api.GetProducts(ctx, pagination.Query{
		PageNum:     *page,
		PageSize:    a.session.PageSize(),
		SearchBy:    searchBy(*keyword),
		Keyword:     *keyword,
		SortBy:      *sortBy,
		IsAscending: *asc,
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTÊN\tGIÁ\tSLUG")
	for _, p := range res.Items {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", p.ID, p.Name, money.FormatVND(p.Price), p.Slug)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("Trang %d/%d, %d sản phẩm\n", *page, res.Meta.TotalPages, res.Meta.TotalElements)
	return nil
}

func (a *app) cart(ctx context.Context) error {
	ct, err := a.api.GetCart(ctx)
	if err != nil {
		return err
	}
	if ct.IsEmpty() {
		fmt.Println("Giỏ hàng trống.")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, l := range ct.Items {
		fmt.Fprintf(w, "%d\t%s\tx%d\t%s\n", l.ProductID, l.ProductName, l.Quantity, money.FormatVND(l.LineTotal))
	}
	fmt.Fprintf(w, "\tTổng cộng\t\t%s\n", money.FormatVND(ct.TotalAmount))
	return w.Flush()
}

func (a *app) add(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New("add needs a product id")
	}
	id, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid product id %q", args[0])
	}
	qty := 1
	if len(args) > 1 {
		if qty, err = strconv.Atoi(args[1]); err != nil || qty < 1 {
			return fmt.Errorf("invalid quantity %q", args[1])
		}
	}
	ct, err := a.api.AddToCart(ctx, uint(id), qty)
	if err != nil {
		return err
	}
	fmt.Printf("Đã thêm. Giỏ hàng: %d sản phẩm, %s\n", ct.TotalQuantity, money.FormatVND(ct.TotalAmount))
	return nil
}

func (a *app) submitCheckout(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("checkout", flag.ContinueOnError)
	var form checkout.Form
	fs.StringVar(&form.RecipientName, "name", "", "recipient full name")
	fs.StringVar(&form.RecipientEmail, "email", "", "recipient email")
	fs.StringVar(&form.RecipientPhone, "phone", "", "recipient phone")
	fs.StringVar(&form.ShippingAddress, "address", "", "shipping address")
	fs.StringVar(&form.Note, "note", "", "order note")
	pickup := fs.Bool("pickup", false, "collect in store")
	method := fs.String("payment", string(checkout.PaymentCOD), "COD or VNPAY")
	fs.BoolVar(&form.RequestInvoice, "invoice", false, "request a VAT invoice")
	fs.StringVar(&form.CompanyName, "company", "", "company name for the invoice")
	fs.StringVar(&form.CompanyTaxCode, "tax-code", "", "company tax code")
	fs.StringVar(&form.CompanyAddress, "company-address", "", "company address")
	if err := fs.Parse(args); err != nil {
		return err
	}
	form.PaymentMethod = checkout.PaymentMethod(*method)
	form.DeliveryMethod = checkout.DeliveryHome
	if *pickup {
		form.DeliveryMethod = checkout.DeliveryStorePickup
	}

	if st := a.session.Bootstrap(ctx); !st.Authenticated {
		return errors.New("please log in first")
	}
	ct, redirect, err := a.checkout.Enter(ctx)
	if err != nil {
		return err
	}
	if redirect != nil {
		fmt.Println("Giỏ hàng trống, quay về trang chủ:", redirect.To)
		return nil
	}
	fmt.Printf("Tạm tính: %s\n", money.FormatVND(ct.TotalAmount))

	redirect, err = a.checkout.Submit(ctx, form)
	if err != nil {
		return err
	}
	if redirect.External {
		fmt.Println("Mở liên kết sau để thanh toán qua VNPAY:")
	} else {
		fmt.Println("Đặt hàng thành công:")
	}
	fmt.Println(redirect.To)
	return nil
}

func (a *app) paymentReturn(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("payment-return needs the query string")
	}
	view := a.returns.Resolve(ctx, args[0])
	switch {
	case view.Failed:
		return errors.New("không xác minh được kết quả thanh toán, vui lòng kiểm tra lại đơn hàng")
	case view.Success:
		fmt.Printf("Thanh toán thành công đơn hàng %s (%s).\n", view.OrderCode, money.FormatVND(view.TotalAmount))
	default:
		fmt.Printf("Thanh toán chưa thành công cho đơn hàng %s (trạng thái %s).\n", view.OrderCode, view.PaymentStatus)
	}
	return nil
}

func displayName(st session.State) string {
	if st.User.FullName != "" {
		return st.User.FullName
	}
	return st.User.Username
}

func searchBy(keyword string) string {
	if keyword == "" {
		return ""
	}
	return "name"
}

// describe turns an error into the message shown to the user
func (a *app) describe(err error) string {
	var (
		verr *checkout.ValidationError
		oerr *storefront.OrderCreationError
		perr *storefront.PaymentInitError
		aerr *client.APIError
	)
	switch {
	case errors.As(err, &verr):
		msg := "Thông tin chưa hợp lệ:"
		for field, problem := range verr.Fields {
			msg += fmt.Sprintf("\n  %s %s", field, problem)
		}
		return msg
	case errors.As(err, &perr):
		if errors.Is(err, checkout.ErrAmountBelowMinimum) {
			return fmt.Sprintf("Đơn hàng %s đã được tạo. %s.", perr.OrderCode, checkout.MinimumMessage(a.minAmount))
		}
		return fmt.Sprintf("Đơn hàng %s đã được tạo nhưng chưa thể khởi tạo thanh toán: %v", perr.OrderCode, perr.Err)
	case errors.As(err, &oerr):
		return "Không thể tạo đơn hàng, vui lòng thử lại: " + oerr.Err.Error()
	case errors.Is(err, client.ErrTransport):
		return "Không kết nối được máy chủ, vui lòng thử lại sau."
	case errors.As(err, &aerr):
		return aerr.Message
	}
	return err.Error()
}
