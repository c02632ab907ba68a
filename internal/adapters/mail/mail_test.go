package mail_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/letterpress/internal/adapters/mail"
	"go.trai.ch/letterpress/internal/core/domain"
	"go.trai.ch/letterpress/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func testMessage() domain.Message {
	return domain.Message{
		From:    "Letterpress <build@example.com>",
		To:      []domain.Recipient{{Email: "designer@example.com", Name: "Designer"}, {Email: "qa@example.com"}},
		Subject: "Welcome email",
		Text:    "Hello there",
		HTML:    "<p>Hello there</p>",
		Tag:     "welcome",
	}
}

func TestCompose(t *testing.T) {
	raw, err := mail.Compose(testMessage(), time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	s := string(raw)
	assert.Contains(t, s, "From: Letterpress <build@example.com>\r\n")
	assert.Contains(t, s, "To: \"Designer\" <designer@example.com>, qa@example.com\r\n")
	assert.Contains(t, s, "Subject: Welcome email\r\n")
	assert.Contains(t, s, "Date: Fri, 01 Mar 2024 12:00:00 +0000\r\n")
	assert.Contains(t, s, "X-Tag: welcome\r\n")
	assert.Contains(t, s, "multipart/alternative")
	assert.Contains(t, s, "text/plain; charset=utf-8")
	assert.Contains(t, s, "<p>Hello there</p>")
}

func TestCompose_SkipsEmptyParts(t *testing.T) {
	msg := testMessage()
	msg.Text = ""

	raw, err := mail.Compose(msg, time.Now())
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "text/plain")
	assert.Contains(t, string(raw), "text/html")
}

func TestPostmark_Send(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "server-token", r.Header.Get("X-Postmark-Server-Token"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"To":"designer@example.com","MessageID":"abc","ErrorCode":0,"Message":"OK"}`)
	}))
	defer server.Close()

	p, err := mail.NewPostmark("server-token", "account-token")
	require.NoError(t, err)

	require.NoError(t, p.WithBaseURL(server.URL).Send(context.Background(), testMessage()))
	assert.Equal(t, "Welcome email", got["Subject"])
	assert.Equal(t, "<p>Hello there</p>", got["HtmlBody"])
	assert.Equal(t, "welcome", got["Tag"])
}

func TestPostmark_SendRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = io.WriteString(w, `{"ErrorCode":300,"Message":"Invalid email request"}`)
	}))
	defer server.Close()

	p, err := mail.NewPostmark("server-token", "account-token")
	require.NoError(t, err)

	err = p.WithBaseURL(server.URL).Send(context.Background(), testMessage())
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrMailSendFailed.Error())
}

func TestNewPostmark_MissingTokens(t *testing.T) {
	_, err := mail.NewPostmark("", "account")
	require.ErrorContains(t, err, domain.ErrInvalidMailConfig.Error())

	_, err = mail.NewPostmark("server", "")
	require.ErrorContains(t, err, domain.ErrInvalidMailConfig.Error())
}

func TestSendmail_Send(t *testing.T) {
	ctrl := gomock.NewController(t)
	executor := mocks.NewMockExecutor(ctrl)

	executor.EXPECT().
		Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, cmd domain.Command, _, _ io.Writer) error {
			assert.Equal(t, []string{"/usr/bin/sendmail", "-t", "-i"}, cmd.Args)
			require.NotNil(t, cmd.Stdin)
			raw, err := io.ReadAll(cmd.Stdin)
			require.NoError(t, err)
			assert.Contains(t, string(raw), "Subject: Welcome email")
			return nil
		})

	s := mail.NewSendmail(executor, "/usr/bin/sendmail", nil, nil)
	require.NoError(t, s.Send(context.Background(), testMessage()))
}

func TestSendmail_SendFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	executor := mocks.NewMockExecutor(ctrl)
	executor.EXPECT().
		Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(domain.ErrCommandFailed)

	s := mail.NewSendmail(executor, "sendmail", []string{"-t"}, io.Discard)
	err := s.Send(context.Background(), testMessage())
	require.ErrorContains(t, err, domain.ErrMailSendFailed.Error())
}

func TestOutbox_Send(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "outbox")

	require.NoError(t, mail.NewOutbox(dir).Send(context.Background(), testMessage()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Regexp(t, `^\d{4}_\d{2}_\d{2}_\d{6}\.\d{3}_welcome\.eml$`, entries[0].Name())

	raw, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Subject: Welcome email")
}

func TestLoadSettings(t *testing.T) {
	root := t.TempDir()
	dotenv := "POSTMARK_SERVER_TOKEN=from-file\nMAIL_FROM=file@example.com\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, ".env"), []byte(dotenv), 0o600))

	t.Setenv("POSTMARK_SERVER_TOKEN", "from-env")
	t.Setenv("MAIL_FROM", "")
	t.Setenv("SENDMAIL_PATH", "")

	s, err := mail.LoadSettings(root)
	require.NoError(t, err)
	assert.Equal(t, "from-env", s.PostmarkServerToken)
	assert.Equal(t, "file@example.com", s.From)
	assert.Equal(t, "/usr/sbin/sendmail", s.SendmailPath)
	assert.Equal(t, "outbox", s.OutboxDir)
}

func TestLoadSettings_NoDotEnv(t *testing.T) {
	t.Setenv("MAIL_OUTBOX_DIR", "previews")

	s, err := mail.LoadSettings(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "previews", s.OutboxDir)
}

func TestFactory_New(t *testing.T) {
	t.Setenv("POSTMARK_SERVER_TOKEN", "")
	t.Setenv("POSTMARK_ACCOUNT_TOKEN", "")
	t.Setenv("MAIL_FROM", "")

	ctrl := gomock.NewController(t)
	factory := mail.NewFactory(mocks.NewMockExecutor(ctrl), io.Discard)
	env := domain.NewEnv(t.TempDir(), nil)

	tests := []struct {
		name      string
		transport string
		options   domain.Options
		want      any
		wantErr   error
	}{
		{name: "sendmail", transport: mail.TransportSendmail, want: &mail.Sendmail{}},
		{name: "dir", transport: mail.TransportDir, options: domain.Options{"path": "previews"}, want: &mail.Outbox{}},
		{
			name:      "postmark with tokens",
			transport: mail.TransportPostmark,
			options:   domain.Options{"serverToken": "s", "accountToken": "a"},
			want:      &mail.Postmark{},
		},
		{name: "postmark without tokens", transport: mail.TransportPostmark, wantErr: domain.ErrInvalidMailConfig},
		{name: "unknown", transport: "carrier-pigeon", wantErr: domain.ErrUnknownTransport},
		{
			name:      "invalid option",
			transport: mail.TransportSendmail,
			options:   domain.Options{"args": 42},
			wantErr:   domain.ErrInvalidOption,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := factory.New(env, tt.transport, tt.options)
			if tt.wantErr != nil {
				require.ErrorContains(t, err, tt.wantErr.Error())
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, m)
		})
	}
}

func TestFactory_DefaultSender(t *testing.T) {
	t.Setenv("MAIL_FROM", "Builds <builds@example.com>")

	root := t.TempDir()
	ctrl := gomock.NewController(t)
	factory := mail.NewFactory(mocks.NewMockExecutor(ctrl), io.Discard)

	m, err := factory.New(domain.NewEnv(root, nil), mail.TransportDir, domain.Options{"path": "outbox"})
	require.NoError(t, err)

	msg := testMessage()
	msg.From = ""
	require.NoError(t, m.Send(context.Background(), msg))

	entries, err := os.ReadDir(filepath.Join(root, "outbox"))
	require.NoError(t, err)
	require.Len(t, entries, 1)

	raw, err := os.ReadFile(filepath.Join(root, "outbox", entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "From: Builds <builds@example.com>\r\n")
}
