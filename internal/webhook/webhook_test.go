package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vensus137/coreness-go/internal/actionhub"
	"github.com/vensus137/coreness-go/internal/cache"
	"github.com/vensus137/coreness-go/internal/config"
	"github.com/vensus137/coreness-go/internal/repository"
	"github.com/vensus137/coreness-go/internal/scenario"
	"github.com/vensus137/coreness-go/internal/taskqueue"
	"github.com/vensus137/coreness-go/internal/tenant"
)

type fakeBotRepo struct {
	bots map[string]*repository.Bot
}

func (f fakeBotRepo) GetBotByTenantID(ctx context.Context, tenantID string) (*repository.Bot, error) {
	for _, b := range f.bots {
		if b.TenantID == tenantID {
			return b, nil
		}
	}
	return nil, nil
}

func (f fakeBotRepo) GetBot(ctx context.Context, botID string) (*repository.Bot, error) {
	return f.bots[botID], nil
}

type fakeTenantRepo struct{}

func (fakeTenantRepo) GetTenant(ctx context.Context, tenantID string) (*repository.Tenant, error) {
	return &repository.Tenant{TenantID: tenantID, Active: true}, nil
}
func (fakeTenantRepo) GetTenantConfig(ctx context.Context, tenantID string) (map[string]any, error) {
	return map[string]any{}, nil
}

func newTestServer(t *testing.T) (*Server, *SecretRegistry) {
	t.Helper()
	c := cache.New(cache.WithCleanupInterval(time.Hour))
	t.Cleanup(c.Shutdown)

	bots := fakeBotRepo{bots: map[string]*repository.Bot{
		"b1": {BotID: "b1", TenantID: "t1", Active: true},
	}}
	directory := tenant.New(c, fakeTenantRepo{}, bots)
	secrets := NewSecretRegistry(c)

	tasks := taskqueue.NewManager()
	t.Cleanup(func() { tasks.Shutdown(context.Background()) })
	hub := actionhub.New(tasks)
	store := scenario.NewStore(loaderStub{})
	eng := scenario.New(store, hub, tasks, nil)

	cfg := &config.Config{GinMode: "test", GithubWebhookSecret: "sshh"}
	srv := NewServer(cfg, eng, directory, secrets)
	return srv, secrets
}

type loaderStub struct{}

func (loaderStub) LoadScenarios(ctx context.Context, tenantID string) ([]scenario.Scenario, error) {
	return nil, nil
}

func TestHandleTelegram_UnknownSecretRejected(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/telegram", strings.NewReader(`{}`))
	req.Header.Set(telegramSecretHeader, "bogus")
	rec := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandleTelegram_ValidSecretReturns200(t *testing.T) {
	srv, secrets := newTestServer(t)
	token := secrets.IssueFor("b1")

	body := `{"message":{"text":"hi","chat":{"id":5,"type":"private"},"from":{"id":9}}}`
	req := httptest.NewRequest(http.MethodPost, "/webhooks/telegram", strings.NewReader(body))
	req.Header.Set(telegramSecretHeader, token)
	rec := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestHandleGithub_BadSignatureRejected(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/github", strings.NewReader(`{}`))
	req.Header.Set(githubSignatureHeader, "sha256=deadbeef")
	req.Header.Set(githubEventHeader, "push")
	rec := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandleGithub_ValidSignatureReturns200(t *testing.T) {
	srv, _ := newTestServer(t)
	body := []byte(`{"ref":"refs/heads/main","repository":{"full_name":"acme/widgets"},"pusher":{"name":"ada"}}`)

	mac := hmac.New(sha256.New, []byte("sshh"))
	mac.Write(body)
	sig := "sha256=" + hex.EncodeToString(mac.Sum(nil))

	req := httptest.NewRequest(http.MethodPost, "/webhooks/github", strings.NewReader(string(body)))
	req.Header.Set(githubSignatureHeader, sig)
	req.Header.Set(githubEventHeader, "push")
	rec := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestSecretRegistry_IssueThenResolve(t *testing.T) {
	c := cache.New(cache.WithCleanupInterval(time.Hour))
	defer c.Shutdown()
	r := NewSecretRegistry(c)

	token := r.IssueFor("bot-42")
	botID, ok := r.Resolve(token)
	require.True(t, ok)
	assert.Equal(t, "bot-42", botID)

	_, ok = r.Resolve("never-issued")
	assert.False(t, ok)
}
