package notify

import (
	"bytes"
	"fmt"
	"html/template"
)

// Message is a rendered email.
type Message struct {
	Subject string
	HTML    string
}

var subjects = map[Kind]string{
	KindReceived: "Tin tuyển dụng của bạn đã được tiếp nhận",
	KindApproved: "Tin tuyển dụng của bạn đã được duyệt",
	KindRejected: "Tin tuyển dụng của bạn không được duyệt",
}

var bodies = template.Must(template.New("notify").Parse(`
{{define "received"}}<p>Xin chào,</p>
<p>Tin tuyển dụng <strong>{{.JobTitle}}</strong> đã được tiếp nhận và đang chờ kiểm duyệt.</p>
<p>Chúng tôi sẽ gửi email khi tin được duyệt.</p>{{end}}
{{define "approved"}}<p>Xin chào,</p>
<p>Tin tuyển dụng <strong>{{.JobTitle}}</strong> đã được duyệt và hiển thị công khai.</p>{{end}}
{{define "rejected"}}<p>Xin chào,</p>
<p>Tin tuyển dụng <strong>{{.JobTitle}}</strong> không được duyệt.</p>
{{if .Reason}}<p>Lý do: {{.Reason}}</p>{{end}}
<p>Bạn có thể chỉnh sửa nội dung và đăng lại.</p>{{end}}
`))

// Render builds the subject and HTML body of n.
func Render(n Notification) (Message, error) {
	subject, ok := subjects[n.Kind]
	if !ok {
		return Message{}, fmt.Errorf("%w: unknown kind %q", ErrInvalidNotification, n.Kind)
	}

	var buf bytes.Buffer
	if err := bodies.ExecuteTemplate(&buf, string(n.Kind), n); err != nil {
		return Message{}, fmt.Errorf("failed to render %s email: %w", n.Kind, err)
	}

	return Message{Subject: subject, HTML: buf.String()}, nil
}
