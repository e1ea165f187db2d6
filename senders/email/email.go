package email

import (
	_ "embed"
	"html/template"
	"strings"
)

var (
	//go:embed notification.html
	notificationHTML     string
	notificationTemplate = template.Must(template.New("notification.html").Parse(notificationHTML))
)

func mustFillTemplate(tmpl *template.Template, values any) string {
	buf := new(strings.Builder)
	err := tmpl.Execute(buf, values)
	if err != nil {
		return ""
	}
	return buf.String()
}

type NotificationEmailFormat struct {
	Text string
}

func (ef *NotificationEmailFormat) Subject() string {
	return "Streamwatch: a stream you follow is live"
}

func (ef *NotificationEmailFormat) Body() string {
	return mustFillTemplate(notificationTemplate, ef)
}
