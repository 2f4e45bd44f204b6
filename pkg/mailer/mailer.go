package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"go.uber.org/zap"
)

// Mailer delivers HTML mail. Transport is owned by the deployment; the
// portal only renders bodies and hands them over.
type Mailer interface {
	SendHTML(ctx context.Context, to, subject, body string) error
}

// LogMailer writes outgoing mail to the log instead of delivering it. Used
// in development and whenever mail delivery is disabled.
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer constructs a LogMailer.
func NewLogMailer(logger *zap.Logger) *LogMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogMailer{logger: logger}
}

// SendHTML logs the message and reports success.
func (m *LogMailer) SendHTML(_ context.Context, to, subject, body string) error {
	m.logger.Info("outgoing mail",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.Int("body_bytes", len(body)),
	)
	return nil
}

// GreetingSubject is the subject line of the teacher greeting email.
const GreetingSubject = "Access to teacher's dashboard"

var greetingTemplate = template.Must(template.New("teacher_greeting").Parse(`<p>Здравствуйте, {{.Name}}!</p>
<p>Для вас создан личный кабинет преподавателя. Данные для входа:</p>
<p>Логин: {{.Email}}<br>Пароль: {{.Password}}</p>
{{if .Native}}<p>Вы отмечены как носитель языка.</p>{{end}}
<p>Пожалуйста, смените пароль после первого входа.</p>`))

// GreetingData feeds the greeting template.
type GreetingData struct {
	Name     string
	Email    string
	Password string
	Native   bool
}

// RenderGreeting renders the greeting email body.
func RenderGreeting(data GreetingData) (string, error) {
	buf := &bytes.Buffer{}
	if err := greetingTemplate.Execute(buf, data); err != nil {
		return "", fmt.Errorf("render greeting email: %w", err)
	}
	return buf.String(), nil
}
