package notify

import (
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	fs "github.com/buildhub-th/procure-backend/internal/storage/firestore"
)

const (
	colorIncrease = "#E53935"
	colorDecrease = "#43A047"
	colorNeutral  = "#666666"
	colorHeaderPO = "#1E88E5"
	colorHeaderVO = "#FB8C00"
	colorLabel    = "#888888"
)

// Message is a LINE Flex message.
type Message struct {
	Type     string `json:"type"`
	AltText  string `json:"altText"`
	Contents Bubble `json:"contents"`
}

type Bubble struct {
	Type   string     `json:"type"`
	Header *Component `json:"header,omitempty"`
	Body   *Component `json:"body,omitempty"`
	Footer *Component `json:"footer,omitempty"`
}

// Component covers the box, text, separator and button kinds used by the
// approval cards.
type Component struct {
	Type            string      `json:"type"`
	Layout          string      `json:"layout,omitempty"`
	Contents        []Component `json:"contents,omitempty"`
	Text            string      `json:"text,omitempty"`
	Size            string      `json:"size,omitempty"`
	Weight          string      `json:"weight,omitempty"`
	Color           string      `json:"color,omitempty"`
	Align           string      `json:"align,omitempty"`
	Wrap            bool        `json:"wrap,omitempty"`
	Flex            *int        `json:"flex,omitempty"`
	Margin          string      `json:"margin,omitempty"`
	Spacing         string      `json:"spacing,omitempty"`
	Style           string      `json:"style,omitempty"`
	Height          string      `json:"height,omitempty"`
	BackgroundColor string      `json:"backgroundColor,omitempty"`
	PaddingAll      string      `json:"paddingAll,omitempty"`
	Action          *Action     `json:"action,omitempty"`
}

type Action struct {
	Type  string `json:"type"`
	Label string `json:"label"`
	URI   string `json:"uri"`
}

var printer = message.NewPrinter(language.English)

// FormatAmount renders a baht amount with grouping and two decimals.
func FormatAmount(v float64) string {
	d := decimal.NewFromFloat(v).Abs().Round(2)
	return "฿" + printer.Sprintf("%.2f", d.InexactFloat64())
}

// FormatImpact renders a signed budget impact and the colour for its sign.
func FormatImpact(v float64) (string, string) {
	d := decimal.NewFromFloat(v).Round(2)
	switch d.Sign() {
	case 1:
		return "+" + FormatAmount(v), colorIncrease
	case -1:
		return "-" + FormatAmount(v), colorDecrease
	default:
		return FormatAmount(0), colorNeutral
	}
}

func intp(v int) *int { return &v }

func row(label, value, color string) Component {
	if value == "" {
		value = "-"
	}
	if color == "" {
		color = "#111111"
	}
	return Component{
		Type:    "box",
		Layout:  "baseline",
		Spacing: "sm",
		Contents: []Component{
			{Type: "text", Text: label, Size: "sm", Color: colorLabel, Flex: intp(2)},
			{Type: "text", Text: value, Size: "sm", Color: color, Wrap: true, Flex: intp(5)},
		},
	}
}

func header(title, subtitle, bg string) *Component {
	return &Component{
		Type:            "box",
		Layout:          "vertical",
		BackgroundColor: bg,
		PaddingAll:      "16px",
		Contents: []Component{
			{Type: "text", Text: title, Weight: "bold", Size: "md", Color: "#FFFFFF"},
			{Type: "text", Text: subtitle, Size: "xs", Color: "#FFFFFF", Wrap: true},
		},
	}
}

func uriButton(label, uri, style string) Component {
	return Component{
		Type:   "button",
		Style:  style,
		Height: "sm",
		Action: &Action{Type: "uri", Label: label, URI: uri},
	}
}

// LiffURL links the card to the approval page inside LINE.
func LiffURL(liffID, docType, docID string) string {
	q := url.Values{}
	q.Set("type", strings.ToLower(docType))
	q.Set("id", docID)
	return "https://liff.line.me/" + liffID + "?" + q.Encode()
}

// MapURL prefers an explicit map link and falls back to an address search.
func MapURL(vendor map[string]any) string {
	if u := fs.String(vendor, "mapUrl"); u != "" {
		return u
	}
	if addr := fs.String(vendor, "address"); addr != "" {
		return "https://www.google.com/maps/search/?api=1&query=" + url.QueryEscape(addr)
	}
	return ""
}

// TelURL strips formatting from a phone number for a tel: link.
func TelURL(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if (r >= '0' && r <= '9') || (r == '+' && b.Len() == 0) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return ""
	}
	return "tel:" + b.String()
}

type CardInput struct {
	DocID       string
	Data        map[string]any
	Vendor      map[string]any
	ProjectName string
	CompanyName string
	LiffID      string
}

func (in CardInput) subtitle() string {
	if in.CompanyName != "" {
		return in.CompanyName
	}
	return "Approval notification"
}

// BuildPOCard renders an approved purchase order with vendor quick actions.
func BuildPOCard(in CardInput) Message {
	number := fs.String(in.Data, "poNumber")
	vendorName := fs.String(in.Vendor, "name")
	if vendorName == "" {
		vendorName = fs.String(in.Data, "vendorName")
	}

	body := []Component{
		{Type: "text", Text: fs.String(in.Data, "title"), Weight: "bold", Size: "lg", Wrap: true},
		{Type: "separator", Margin: "md"},
		row("PO No.", number, ""),
		row("Project", in.ProjectName, ""),
		row("Vendor", vendorName, ""),
		row("Total", FormatAmount(fs.Float(in.Data, "totalAmount")), ""),
	}
	if contact := fs.String(in.Vendor, "contactName"); contact != "" {
		body = append(body, row("Contact", contact, ""))
	}
	if phone := fs.String(in.Vendor, "phone"); phone != "" {
		body = append(body, row("Phone", phone, ""))
	}

	var buttons []Component
	if tel := TelURL(fs.String(in.Vendor, "phone")); tel != "" {
		buttons = append(buttons, uriButton("Call", tel, "secondary"))
	}
	if m := MapURL(in.Vendor); m != "" {
		buttons = append(buttons, uriButton("Map", m, "secondary"))
	}
	if in.LiffID != "" && in.DocID != "" {
		buttons = append(buttons, uriButton("Open", LiffURL(in.LiffID, "po", in.DocID), "primary"))
	}

	return Message{
		Type:    "flex",
		AltText: "Purchase order approved: " + number,
		Contents: Bubble{
			Type:   "bubble",
			Header: header("Purchase Order Approved", in.subtitle(), colorHeaderPO),
			Body:   &Component{Type: "box", Layout: "vertical", Spacing: "sm", Contents: body},
			Footer: footer(buttons),
		},
	}
}

// BuildVOCard renders an approved variation order with its signed budget
// impact coloured by direction.
func BuildVOCard(in CardInput) Message {
	number := fs.String(in.Data, "voNumber")
	impact, color := FormatImpact(fs.Float(in.Data, "totalAmount"))

	body := []Component{
		{Type: "text", Text: fs.String(in.Data, "title"), Weight: "bold", Size: "lg", Wrap: true},
		{Type: "separator", Margin: "md"},
		row("VO No.", number, ""),
		row("Project", in.ProjectName, ""),
		row("Impact", impact, color),
	}
	if reason := fs.String(in.Data, "reason"); reason != "" {
		body = append(body, row("Reason", reason, ""))
	}

	var buttons []Component
	if in.LiffID != "" && in.DocID != "" {
		buttons = append(buttons, uriButton("Open", LiffURL(in.LiffID, "vo", in.DocID), "primary"))
	}

	return Message{
		Type:    "flex",
		AltText: "Variation order approved: " + number,
		Contents: Bubble{
			Type:   "bubble",
			Header: header("Variation Order Approved", in.subtitle(), colorHeaderVO),
			Body:   &Component{Type: "box", Layout: "vertical", Spacing: "sm", Contents: body},
			Footer: footer(buttons),
		},
	}
}

func footer(buttons []Component) *Component {
	if len(buttons) == 0 {
		return nil
	}
	return &Component{Type: "box", Layout: "vertical", Spacing: "sm", Contents: buttons}
}
