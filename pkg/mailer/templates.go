package mailer

import (
	"bytes"
	"fmt"
	htmpl "html/template"
	texttpl "text/template"
)

// TemplateData feeds the lifecycle templates.
type TemplateData struct {
	Email       string
	CompanyName string
}

type template struct {
	subject *texttpl.Template
	text    *texttpl.Template
	html    *htmpl.Template
}

const layoutHTML = `<!doctype html><html><body style="font-family:sans-serif">
<h2>{{.CompanyName}}</h2>
{{template "body" .}}
<p style="color:#888;font-size:12px">This message was sent to {{.Email}}.</p>
</body></html>`

func mustTemplate(name, subject, text, body string) template {
	h := htmpl.Must(htmpl.New(name).Parse(layoutHTML))
	htmpl.Must(h.New("body").Parse(body))
	return template{
		subject: texttpl.Must(texttpl.New(name + "_subject").Parse(subject)),
		text:    texttpl.Must(texttpl.New(name).Parse(text)),
		html:    h,
	}
}

var registry = map[string]template{
	"welcome": mustTemplate("welcome",
		"Welcome to {{.CompanyName}}",
		"Hello,\n\nan account for {{.Email}} was created at {{.CompanyName}}.\n",
		`<p>Hello,</p><p>an account for <b>{{.Email}}</b> was created.</p>`,
	),
	"goodbye": mustTemplate("goodbye",
		"Your {{.CompanyName}} account was removed",
		"Hello,\n\nthe account for {{.Email}} has been deleted from {{.CompanyName}}.\n",
		`<p>Hello,</p><p>the account for <b>{{.Email}}</b> has been deleted.</p>`,
	),
}

// Render fills the named template for recipient data.Email.
func Render(name string, data TemplateData) (Message, error) {
	tpl, ok := registry[name]
	if !ok {
		return Message{}, fmt.Errorf("unknown template %q", name)
	}

	var sb, tb, hb bytes.Buffer
	if err := tpl.subject.Execute(&sb, data); err != nil {
		return Message{}, fmt.Errorf("render subject %s: %w", name, err)
	}
	if err := tpl.text.Execute(&tb, data); err != nil {
		return Message{}, fmt.Errorf("render text %s: %w", name, err)
	}
	if err := tpl.html.Execute(&hb, data); err != nil {
		return Message{}, fmt.Errorf("render html %s: %w", name, err)
	}
	return Message{To: data.Email, Subject: sb.String(), Text: tb.String(), HTML: hb.String()}, nil
}
