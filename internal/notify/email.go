package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/wneessen/go-mail"

	"elo-welcoming/internal/models"
)

// Subject of every notification email
const Subject = "Você tem novos visitantes para acolher!"

var bodyTemplate = template.Must(template.New("body").Parse(`<html><body>
<p>Olá {{.Welcomer}},</p>
<p>Estes são os novos visitantes atribuídos a você para contato:</p>
<table border="1" style="border-collapse: collapse; text-align: left;">
<tr><th>Nome</th><th>Idade</th><th>Celular</th><th>Data da decisão</th></tr>
{{- range .Visitors}}
<tr><td>{{.Name}}</td><td>{{if .Age}}{{.Age}}{{end}}</td><td>{{.Phone}}</td><td>{{.DecisionDate}}</td></tr>
{{- end}}
</table>
<p>Por favor, responda a este e-mail informando o resultado do contato.</p>
</body></html>
`))

type visitorRow struct {
	Name         string
	Age          string
	Phone        string
	DecisionDate string
}

// RenderBody renders the HTML body sent to a welcomer
func RenderBody(welcomer models.Welcomer, visitors []models.Visitor) (string, error) {
	data := struct {
		Welcomer string
		Visitors []visitorRow
	}{Welcomer: DisplayName(welcomer)}

	for _, v := range visitors {
		row := visitorRow{Name: v.Name, Phone: v.Phone, DecisionDate: v.DecisionDate}
		if v.Age != nil {
			row.Age = strconv.Itoa(*v.Age)
		}
		data.Visitors = append(data.Visitors, row)
	}

	var buf bytes.Buffer
	if err := bodyTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render email: %w", err)
	}
	return buf.String(), nil
}

// DisplayName prefers the alias, falling back to the stored name key
func DisplayName(w models.Welcomer) string {
	if w.Alias != "" {
		return w.Alias
	}
	return w.Name
}

// SMTPConfig holds the sender account
type SMTPConfig struct {
	Host     string
	Port     int
	From     string
	Password string
	// Timeout bounds each connection and command; zero means 30s
	Timeout time.Duration
}

type sendFunc func(ctx context.Context, msg *mail.Msg) error

// EmailNotifier mails each welcomer their pending visitor list
type EmailNotifier struct {
	cfg  SMTPConfig
	log  zerolog.Logger
	send sendFunc
}

// NewEmailNotifier creates an SMTP notifier. Port 465 uses implicit TLS,
// any other port requires STARTTLS.
func NewEmailNotifier(cfg SMTPConfig, log zerolog.Logger) *EmailNotifier {
	n := &EmailNotifier{
		cfg: cfg,
		log: log.With().Str("component", "Email").Logger(),
	}
	n.send = n.dialAndSend
	return n
}

// Notify implements reconcile.Notifier
func (n *EmailNotifier) Notify(ctx context.Context, welcomer models.Welcomer, visitors []models.Visitor) error {
	if welcomer.Email == "" {
		return fmt.Errorf("welcomer %s has no email", welcomer.Name)
	}

	msg, err := n.message(welcomer, visitors)
	if err != nil {
		return err
	}

	if err := n.send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", welcomer.Email, err)
	}

	n.log.Info().Str("to", welcomer.Email).Int("visitors", len(visitors)).Msg("Email sent")
	return nil
}

func (n *EmailNotifier) message(welcomer models.Welcomer, visitors []models.Visitor) (*mail.Msg, error) {
	body, err := RenderBody(welcomer, visitors)
	if err != nil {
		return nil, err
	}

	msg := mail.NewMsg()
	if err := msg.From(n.cfg.From); err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(welcomer.Email); err != nil {
		return nil, fmt.Errorf("invalid welcomer address: %w", err)
	}
	msg.Subject(Subject)
	msg.SetDate()
	msg.SetBodyString(mail.TypeTextHTML, body)
	return msg, nil
}

func (n *EmailNotifier) dialAndSend(ctx context.Context, msg *mail.Msg) error {
	timeout := n.cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	opts := []mail.Option{
		mail.WithPort(n.cfg.Port),
		mail.WithTimeout(timeout),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(n.cfg.From),
		mail.WithPassword(n.cfg.Password),
	}
	if n.cfg.Port == 465 {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	}

	client, err := mail.NewClient(n.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("failed to create mail client: %w", err)
	}
	return client.DialAndSendWithContext(ctx, msg)
}
