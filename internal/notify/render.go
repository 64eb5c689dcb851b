package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"
)

// Message 是渲染好的邮件
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

var digestTmpl = template.Must(template.New("digest").Funcs(template.FuncMap{"join": strings.Join}).Parse(`<div style="font-family: Arial, sans-serif; max-width: 640px; margin: 0 auto;">
  <h2 style="color: #2c3e50;">Daily Tasks</h2>
  <p style="color: #6c757d;">{{.Day.Display}}</p>
  {{if .Day.HasTasks}}
  <table style="width: 100%; border-collapse: collapse;">
    <tr><th align="left">Code</th><th align="left">Task</th></tr>
    {{range .Day.Tasks}}<tr><td style="padding: 6px; font-weight: bold;">{{.Code}}</td><td style="padding: 6px;">{{.Description}}</td></tr>
    {{end}}
  </table>
  {{else}}
  <p>No tasks are scheduled for this day.</p>
  {{end}}
  {{with .Details}}
  <h3 style="color: #495057;">Task Details</h3>
  {{range .}}<div style="margin-bottom: 10px; padding: 10px; background-color: #f8f9fa;">
    <p style="margin: 0;"><strong>Task:</strong> {{.Description}}</p>
    <p style="margin: 5px 0 0 0; font-size: 12px;">Codes: {{join .Codes ", "}}</p>
  </div>
  {{end}}
  {{end}}
  {{range .Day.Warnings}}<p style="color: #856404; font-size: 12px;">Warning: {{.}}</p>
  {{end}}
  <p style="color: #6c757d; font-size: 12px; border-top: 1px solid #dee2e6; padding-top: 12px;">
    Automated reminder from {{.Sender}}. Generated at {{.Generated}}.
  </p>
</div>
`))

// Subject 是某天摘要邮件的标题
func Subject(d DayTasks) string {
	return "Daily Task Notification - " + d.Display
}

// Render 为 d 生成摘要邮件，generated 显示在页脚
func Render(d DayTasks, sender string, generated time.Time) (Message, error) {
	if sender == "" {
		sender = "Berdoz Management System"
	}
	var details []detail
	for _, t := range d.EmailTasks {
		if strings.TrimSpace(t.Description) != "" {
			details = append(details, detail{Description: t.Description, Codes: t.Codes})
		}
	}

	var buf bytes.Buffer
	err := digestTmpl.Execute(&buf, struct {
		Day       DayTasks
		Details   []detail
		Sender    string
		Generated string
	}{d, details, sender, generated.Format("2006-01-02 15:04 MST")})
	if err != nil {
		return Message{}, fmt.Errorf("render digest: %w", err)
	}

	return Message{
		Subject: Subject(d),
		HTML:    buf.String(),
		Text:    plainText(d),
	}, nil
}

type detail struct {
	Description string
	Codes       []string
}

func plainText(d DayTasks) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Daily tasks for %s\n\n", d.Display)
	if !d.HasTasks {
		b.WriteString("No tasks are scheduled for this day.\n")
	}
	for _, t := range d.Tasks {
		fmt.Fprintf(&b, "%s  %s\n", t.Code, t.Description)
	}
	return b.String()
}
