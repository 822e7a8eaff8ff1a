package mail

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/gofiber/template/html/v2"
)

//go:embed templates
var templatesFS embed.FS

const baseLayout = "layouts/base"

type Template string

const (
	TemplateWelcome           Template = "welcome"
	TemplateListingApproved   Template = "listing_approved"
	TemplateListingRejected   Template = "listing_rejected"
	TemplateListingFeatured   Template = "listing_featured"
	TemplateListingDeleted    Template = "listing_deleted"
	TemplateReportValidated   Template = "report_validated"
	TemplateReportInvalidated Template = "report_invalidated"
	TemplateReportDeleted     Template = "report_deleted"
	TemplateAccountBanned     Template = "account_banned"
	TemplateAccountUpdated    Template = "account_updated"
	TemplateNewMessage        Template = "new_message"
)

var subjects = map[Template]string{
	TemplateWelcome:           "Welcome to %s",
	TemplateListingApproved:   "%s: your listing was approved",
	TemplateListingRejected:   "%s: your listing was rejected",
	TemplateListingFeatured:   "%s: your listing is featured",
	TemplateListingDeleted:    "%s: your listing was removed",
	TemplateReportValidated:   "%s: technical report validated",
	TemplateReportInvalidated: "%s: technical report invalidated",
	TemplateReportDeleted:     "%s: technical report removed",
	TemplateAccountBanned:     "%s: account suspended",
	TemplateAccountUpdated:    "%s: account updated",
	TemplateNewMessage:        "%s: new message",
}

// Valid reports whether t names an embedded template.
func (t Template) Valid() bool {
	_, ok := subjects[t]
	return ok
}

// Data is the binding every template receives. Unused fields render empty.
type Data struct {
	Name     string `json:"name"`
	Title    string `json:"title,omitempty"`
	Reason   string `json:"reason,omitempty"`
	Status   string `json:"status,omitempty"`
	Role     string `json:"role,omitempty"`
	Sender   string `json:"sender,omitempty"`
	Body     string `json:"body,omitempty"`
	EntityID uint   `json:"entity_id,omitempty"`

	AppName string `json:"-"`
	BaseURL string `json:"-"`
	Subject string `json:"-"`
}

// Renderer turns templates into subject and HTML body pairs.
type Renderer struct {
	engine  *html.Engine
	appName string
	baseURL string
}

func NewRenderer(appName, baseURL string) (*Renderer, error) {
	sub, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		return nil, err
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")
	if err := engine.Load(); err != nil {
		return nil, fmt.Errorf("load email templates: %w", err)
	}
	return &Renderer{engine: engine, appName: appName, baseURL: baseURL}, nil
}

func (r *Renderer) Render(tpl Template, to string, data Data) (Message, error) {
	format, ok := subjects[tpl]
	if !ok {
		return Message{}, fmt.Errorf("unknown email template %q", tpl)
	}

	data.AppName = r.appName
	data.BaseURL = r.baseURL
	data.Subject = fmt.Sprintf(format, r.appName)

	var buf bytes.Buffer
	if err := r.engine.Render(&buf, string(tpl), data, baseLayout); err != nil {
		return Message{}, fmt.Errorf("render %s: %w", tpl, err)
	}

	return Message{To: to, Subject: data.Subject, HTML: buf.String()}, nil
}
