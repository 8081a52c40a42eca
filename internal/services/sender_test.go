package services_test

import (
	"bytes"
	"encoding/json"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/crm-backoffice/internal/lib/sl"
	"github.com/magabrotheeeer/crm-backoffice/internal/lib/smtp"
	"github.com/magabrotheeeer/crm-backoffice/internal/models"
	"github.com/magabrotheeeer/crm-backoffice/internal/services"
)

// fakeClient собирает отправленное письмо в буфер.
type fakeClient struct {
	from string
	rcpt []string
	data bytes.Buffer
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

func (c *fakeClient) Mail(from string) error { c.from = from; return nil }
func (c *fakeClient) Rcpt(to string) error   { c.rcpt = append(c.rcpt, to); return nil }
func (c *fakeClient) Data() (io.WriteCloser, error) {
	return nopWriteCloser{&c.data}, nil
}
func (c *fakeClient) Quit() error  { return nil }
func (c *fakeClient) Close() error { return nil }

type fakeTransport struct {
	client *fakeClient
}

func (t *fakeTransport) Connect() (smtp.Client, error) { return t.client, nil }
func (t *fakeTransport) GetSMTPUser() string           { return "noreply@example.com" }

func TestSenderService_SendBroadcastEmail(t *testing.T) {
	client := &fakeClient{}
	svc := services.NewSenderService(&fakeTransport{client: client}, sl.DiscardLogger())

	body, err := json.Marshal(models.EmailJob{
		Email:   "ivan@example.com",
		Name:    "Иван",
		Subject: "Привет, {{name}}",
		Body:    "Здравствуйте, {{name}}! Новости месяца.",
	})
	require.NoError(t, err)

	require.NoError(t, svc.SendBroadcastEmail(body))

	sent := client.data.String()
	assert.Equal(t, []string{"ivan@example.com"}, client.rcpt)
	assert.Contains(t, sent, "Subject: Привет, Иван")
	assert.Contains(t, sent, "Здравствуйте, Иван!")
	assert.NotContains(t, sent, "{{name}}")
}

func TestSenderService_SendAccountEmail(t *testing.T) {
	client := &fakeClient{}
	svc := services.NewSenderService(&fakeTransport{client: client}, sl.DiscardLogger())

	body, err := json.Marshal(models.EmailJob{
		Email:   "new@example.com",
		Name:    "Мария",
		Subject: "Подтверждение регистрации в CRM",
		Body:    "Перейдите по ссылке.",
	})
	require.NoError(t, err)

	require.NoError(t, svc.SendAccountEmail(body))
	assert.Equal(t, "noreply@example.com", client.from)
	assert.Contains(t, client.data.String(), "Subject: Подтверждение регистрации в CRM")
}

func TestSenderService_BadPayload(t *testing.T) {
	svc := services.NewSenderService(&fakeTransport{client: &fakeClient{}}, sl.DiscardLogger())
	assert.Error(t, svc.SendAccountEmail([]byte("not-json")))
	assert.Error(t, svc.SendBroadcastEmail([]byte("{broken")))
}
