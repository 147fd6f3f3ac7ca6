package templates

import (
	"strings"
	"time"

	"github.com/fittinglab/storefront/config"
	"github.com/fittinglab/storefront/internal/domain/entity"
	"github.com/fittinglab/storefront/pkg/helpers"
)

// Option pattern
type Option func(*EmailData)

var berlin = loadBerlin()

func loadBerlin() *time.Location {
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		return time.UTC
	}
	return loc
}

const germanLayout = "02.01.2006, 15:04 Uhr"

func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		d.TimeAt = t.UTC()
		d.Time = t.In(berlin).Format(germanLayout)
	}
}

func WithResetURL(url string) Option { return func(d *EmailData) { d.ResetURL = url } }

func WithExpiresIn(dur time.Duration) Option {
	return func(d *EmailData) {
		t := time.Now().Add(dur)
		d.ExpiresAt = t.UTC()
		d.ExpiresAtText = t.In(berlin).Format(germanLayout)
	}
}

// WithOrder fills the order table with amounts already formatted in EUR.
func WithOrder(o *entity.Order) Option {
	return func(d *EmailData) {
		if o == nil {
			return
		}
		d.OrderID = o.ID
		d.OrderDisplayID = o.DisplayID
		d.OrderSubtotal = helpers.FormatEUR(o.Subtotal)
		d.OrderShipping = helpers.FormatEUR(o.ShippingTotal)
		d.OrderTax = helpers.FormatEUR(o.TaxTotal)
		d.OrderTotal = helpers.FormatEUR(o.Total)
		d.OrderItems = make([]OrderLine, 0, len(o.Items))
		for _, it := range o.Items {
			title := it.Title
			if it.ProductTitle != "" && !strings.Contains(title, it.ProductTitle) {
				title = it.ProductTitle + " " + title
			}
			d.OrderItems = append(d.OrderItems, OrderLine{Title: title, Quantity: it.Quantity, Total: helpers.FormatEUR(it.Total)})
		}
	}
}

// NewBaseEmailData fills the company and link fields from config, then applies the options.
func NewBaseEmailData(cfg *config.Config, typ string, name, email string, opts ...Option) EmailData {
	d := EmailData{
		Name:           name,
		Email:          email,
		RecipientEmail: email,
		Type:           typ,

		CompanyName:    cfg.CompanyName,
		CompanyAddress: cfg.CompanyAddress,
		AppName:        cfg.AppName,

		LogoURL:       cfg.LogoURL,
		SupportURL:    cfg.SupportURL,
		PrivacyURL:    cfg.PrivacyURL,
		StorefrontURL: cfg.StorefrontURL,
		AccountURL:    strings.TrimRight(cfg.StorefrontURL, "/") + "/account",

		ResetURL: cfg.ResetPasswordURL,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

func NewWelcomeData(cfg *config.Config, name, email string, opts ...Option) map[string]any {
	return ToMap(NewBaseEmailData(cfg, Welcome, name, email, opts...))
}

func NewOrderConfirmationData(cfg *config.Config, name, email string, order *entity.Order, opts ...Option) map[string]any {
	opts = append([]Option{WithOrder(order)}, opts...)
	return ToMap(NewBaseEmailData(cfg, OrderConfirmation, name, email, opts...))
}

func NewForgotPasswordData(cfg *config.Config, name, email, resetURL string, opts ...Option) map[string]any {
	opts = append([]Option{WithResetURL(resetURL)}, opts...)
	return ToMap(NewBaseEmailData(cfg, ForgotPassword, name, email, opts...))
}
