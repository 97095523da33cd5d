package checkout

import (
	"html/template"
	"io"
	"net/url"

	"github.com/shopspring/decimal"

	"github.com/ersha-ecosystem/storefront/pkg/config"
)

// Field is one hidden input of the hosted-payment form.
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// PaymentForm describes the browser POST that hands the payer to the hosted
// payment page. Field order is stable.
type PaymentForm struct {
	Action string  `json:"action"`
	Method string  `json:"method"`
	TxRef  string  `json:"tx_ref"`
	Fields []Field `json:"fields"`
}

// paymentInput is everything the hosted form needs from a created order.
type paymentInput struct {
	OrderID      string
	TxRef        string
	Amount       decimal.Decimal
	Form         FormData
	ProviderName string
}

func buildPaymentForm(cfg config.PaymentConfig, appBaseURL string, in paymentInput) *PaymentForm {
	fields := []Field{
		{"public_key", cfg.PublicKey},
		{"tx_ref", in.TxRef},
		{"amount", in.Amount.StringFixed(2)},
		{"currency", cfg.Currency},
		{"email", in.Form.Email},
		{"first_name", in.Form.FirstName},
		{"last_name", in.Form.LastName},
		{"phone_number", in.Form.Phone},
		{"title", cfg.Title},
		{"description", cfg.Description},
		{"callback_url", cfg.CallbackURL},
		{"return_url", cfg.ReturnURL(appBaseURL)},
		{"meta[order_id]", in.OrderID},
		{"meta[logistics_provider]", in.ProviderName},
		{"meta[customer_phone]", in.Form.Phone},
	}
	return &PaymentForm{
		Action: cfg.CheckoutURL,
		Method: "POST",
		TxRef:  in.TxRef,
		Fields: fields,
	}
}

// Value returns the first field value with the given name.
func (p *PaymentForm) Value(name string) string {
	for _, f := range p.Fields {
		if f.Name == name {
			return f.Value
		}
	}
	return ""
}

// Values returns the fields url-encoded the way the browser would post them.
func (p *PaymentForm) Values() url.Values {
	out := url.Values{}
	for _, f := range p.Fields {
		out.Add(f.Name, f.Value)
	}
	return out
}

var paymentPage = template.Must(template.New("payment").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Redirecting to payment</title>
</head>
<body onload="document.forms[0].submit()">
<form method="{{.Method}}" action="{{.Action}}">
{{- range .Fields}}
<input type="hidden" name="{{.Name}}" value="{{.Value}}">
{{- end}}
<noscript><button type="submit">Continue to payment</button></noscript>
</form>
</body>
</html>
`))

// RenderHTML writes a self-submitting page that navigates to the payment gateway.
func (p *PaymentForm) RenderHTML(w io.Writer) error {
	return paymentPage.Execute(w, p)
}
