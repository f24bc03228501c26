package notify

import (
	"fmt"
	"html/template"
	"strings"
	texttemplate "text/template"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/localbasket/storefront/internal/domain/order"
)

// mailItem is one rendered order line.
type mailItem struct {
	Name  string
	Qty   int
	Total string
}

// mailData feeds the email templates.
type mailData struct {
	Shipping   order.Shipping
	Items      []mailItem
	GrandTotal string
	Discount   string
	CouponCode string
	PaymentID  string
	StoreName  string
}

var adminHTMLTmpl = template.Must(template.New("admin").Parse(`
<div style="font-family: Arial, sans-serif; max-width:600px; margin:auto; background:#f9f9f9; padding:20px; border-radius:8px;">
  <h2 style="color:#333; text-align:center;">New Order Received</h2>
  <p><strong>Customer Name:</strong> {{.Shipping.Name}}</p>
  <p><strong>Email:</strong> {{.Shipping.Email}}</p>
  <p><strong>Phone:</strong> {{.Shipping.Phone}}</p>
  <p><strong>Address:</strong> {{.Shipping.Address}} {{.Shipping.PostalCode}}</p>
  {{if .PaymentID}}<p><strong>Payment ID:</strong> {{.PaymentID}}</p>{{end}}

  <h3 style="margin-top:20px;">Order Details</h3>
  <table style="width:100%; border-collapse:collapse; margin-top:10px;">
    <thead>
      <tr style="background:#eee;">
        <th style="padding:8px;border:1px solid #ddd;text-align:left;">Item</th>
        <th style="padding:8px;border:1px solid #ddd;text-align:center;">Qty</th>
        <th style="padding:8px;border:1px solid #ddd;text-align:right;">Total</th>
      </tr>
    </thead>
    <tbody>
      {{range .Items}}
      <tr>
        <td style="padding:8px;border:1px solid #ddd;">{{.Name}}</td>
        <td style="padding:8px;border:1px solid #ddd;text-align:center;">{{.Qty}}</td>
        <td style="padding:8px;border:1px solid #ddd;text-align:right;">&#8377;{{.Total}}</td>
      </tr>
      {{end}}
    </tbody>
  </table>

  {{if .CouponCode}}
  <p style="margin-top:10px;">Coupon <strong>{{.CouponCode}}</strong> applied: -&#8377;{{.Discount}}</p>
  {{end}}

  <p style="font-size:16px; margin-top:20px; text-align:right;">
    <strong>Grand Total: &#8377;{{.GrandTotal}}</strong>
  </p>

  <hr style="margin:20px 0;">
  <p style="font-size:12px; color:#777; text-align:center;">
    This order was generated from your store system.
  </p>
</div>`))

var customerHTMLTmpl = template.Must(template.New("customer").Parse(`
<div style="font-family: Arial, sans-serif; max-width:600px; margin:auto; background:#ffffff; padding:20px; border-radius:8px; border:1px solid #eee;">
  <h2 style="color:#2c3e50; text-align:center;">Thank You for Your Order!</h2>
  <p style="font-size:15px;">Hi <strong>{{.Shipping.Name}}</strong>,</p>
  <p>We&rsquo;ve received your order and are preparing it for shipment. You&rsquo;ll receive another update when it&rsquo;s on the way.</p>

  <h3 style="margin-top:20px;">Your Order Summary</h3>
  <table style="width:100%; border-collapse:collapse; margin-top:10px;">
    <thead>
      <tr style="background:#f4f4f4;">
        <th style="padding:8px;border:1px solid #ddd;text-align:left;">Item</th>
        <th style="padding:8px;border:1px solid #ddd;text-align:center;">Qty</th>
        <th style="padding:8px;border:1px solid #ddd;text-align:right;">Total</th>
      </tr>
    </thead>
    <tbody>
      {{range .Items}}
      <tr>
        <td style="padding:8px;border:1px solid #ddd;">{{.Name}}</td>
        <td style="padding:8px;border:1px solid #ddd;text-align:center;">{{.Qty}}</td>
        <td style="padding:8px;border:1px solid #ddd;text-align:right;">&#8377;{{.Total}}</td>
      </tr>
      {{end}}
    </tbody>
  </table>

  {{if .CouponCode}}
  <p style="margin-top:10px; color:#198754;">Discount ({{.CouponCode}}): -&#8377;{{.Discount}}</p>
  {{end}}

  <p style="font-size:16px; margin-top:20px; text-align:right;">
    <strong>Grand Total: &#8377;{{.GrandTotal}}</strong>
  </p>

  <div style="margin-top:30px; text-align:center;">
    <p style="font-size:14px; color:#555;">
      Shipping to:<br>
      {{.Shipping.Address}} {{.Shipping.PostalCode}}<br>
      {{.Shipping.Phone}}
    </p>
  </div>

  <hr style="margin:20px 0;">
  <p style="font-size:13px; color:#777; text-align:center;">
    Thank you for shopping with <strong>{{.StoreName}}</strong>.<br>
    If you have any questions, reply to this email and we&rsquo;ll be happy to help.
  </p>
</div>`))

var textTmpl = texttemplate.Must(texttemplate.New("text").Parse(`NEW ORDER

Customer: {{.Shipping.Name}}
Email: {{.Shipping.Email}}
Phone: {{.Shipping.Phone}}
Address: {{.Shipping.Address}} {{.Shipping.PostalCode}}
{{if .PaymentID}}Payment ID: {{.PaymentID}}
{{end}}Total: Rs.{{.GrandTotal}}
Items:
{{range .Items}}- {{.Name}} x{{.Qty}} = Rs.{{.Total}}
{{end}}`))

// AdminMail renders the new-order notification for the store owner.
func AdminMail(o *order.Order, adminEmail string) (Message, error) {
	data := buildMailData(o, "")
	html, err := execHTML(adminHTMLTmpl, data)
	if err != nil {
		return Message{}, err
	}
	text, err := execText(data)
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:      adminEmail,
		Subject: fmt.Sprintf("New Order Received - ₹%s", data.GrandTotal),
		HTML:    html,
		Text:    text,
	}, nil
}

// CustomerMail renders the confirmation sent to the buyer.
func CustomerMail(o *order.Order, storeName string) (Message, error) {
	data := buildMailData(o, storeName)
	html, err := execHTML(customerHTMLTmpl, data)
	if err != nil {
		return Message{}, err
	}
	text, err := execText(data)
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:      o.Shipping.Email,
		Subject: fmt.Sprintf("Your Order Confirmation - ₹%s", data.GrandTotal),
		HTML:    html,
		Text:    text,
	}, nil
}

func buildMailData(o *order.Order, storeName string) mailData {
	items := make([]mailItem, len(o.Items))
	for i, line := range o.Items {
		items[i] = mailItem{
			Name:  line.Name,
			Qty:   line.Quantity,
			Total: line.LineTotal().StringFixed(2),
		}
	}

	data := mailData{
		Shipping:   o.Shipping,
		Items:      items,
		GrandTotal: o.GrandTotal.StringFixed(2),
		PaymentID:  o.PaymentID,
		StoreName:  storeName,
	}
	if o.Coupon != nil && o.Discount.GreaterThan(decimal.Zero) {
		data.CouponCode = o.Coupon.Code
		data.Discount = o.Discount.StringFixed(2)
	}
	return data
}

func execHTML(t *template.Template, data mailData) (string, error) {
	var sb strings.Builder
	if err := t.Execute(&sb, data); err != nil {
		return "", errors.Wrap(err, "execute html template")
	}
	return sb.String(), nil
}

func execText(data mailData) (string, error) {
	var sb strings.Builder
	if err := textTmpl.Execute(&sb, data); err != nil {
		return "", errors.Wrap(err, "execute text template")
	}
	return sb.String(), nil
}
