package therapist

import (
	"net/http"
	"testing"
	"time"

	"github.com/eshaffer321/therapist-go/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_Defaults(t *testing.T) {
	client, err := NewClient(nil)

	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, client.baseURL)
	assert.Equal(t, DefaultTimeout, client.httpClient.Timeout)
	assert.NotNil(t, client.Auth)
	assert.NotNil(t, client.Appointments)
	assert.NotNil(t, client.Profile)
	assert.NotNil(t, client.Attendance)
	assert.NotNil(t, client.Feedback)
	assert.NotNil(t, client.Content)
	assert.NotNil(t, client.Uploads)
	assert.False(t, client.GetSession().IsLoggedIn)
	assert.Nil(t, client.metrics)
}

func TestNewClient_TimeoutOverride(t *testing.T) {
	client, err := NewClient(&ClientOptions{
		HTTPClient: &http.Client{},
		Timeout:    5 * time.Second,
	})

	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, client.httpClient.Timeout)
}

func TestNewClient_SuppliedHTTPClientGetsDefaultTimeout(t *testing.T) {
	client, err := NewClient(&ClientOptions{HTTPClient: &http.Client{}})

	require.NoError(t, err)
	assert.Equal(t, DefaultTimeout, client.httpClient.Timeout)
}

func TestNewClient_SuppliedHTTPClientKeepsItsTimeout(t *testing.T) {
	client, err := NewClient(&ClientOptions{HTTPClient: &http.Client{Timeout: 2 * time.Second}})

	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, client.httpClient.Timeout)
}

func TestNewClient_RestoresPersistedSession(t *testing.T) {
	dir := t.TempDir()

	first, err := NewClient(&ClientOptions{SessionDir: dir})
	require.NoError(t, err)
	first.SetToken("access-1")
	first.Store().SetUserData(UserData{"name": "Dana"})

	second, err := NewClient(&ClientOptions{SessionDir: dir})
	require.NoError(t, err)

	snap := second.GetSession()
	assert.True(t, snap.IsLoggedIn)
	assert.Equal(t, "access-1", snap.AccessToken)
	assert.Equal(t, "Dana", snap.UserData["name"])
}

func TestNewClient_UsesInjectedStore(t *testing.T) {
	store := session.New(session.NewMemoryPersister(), nil)
	store.SetToken("injected")

	client, err := NewClient(&ClientOptions{Store: store})

	require.NoError(t, err)
	assert.Equal(t, "injected", client.GetSession().AccessToken)
}

func TestNewRateLimiter(t *testing.T) {
	assert.Nil(t, NewRateLimiter(0, 5))
	assert.NotNil(t, NewRateLimiter(2, 0))
}

func TestNotifierFunc(t *testing.T) {
	var got notification
	n := NotifierFunc(func(message string, kind NotificationKind) {
		got = notification{Message: message, Kind: kind}
	})

	n.Notify("Saved", NotifySuccess)

	assert.Equal(t, notification{Message: "Saved", Kind: NotifySuccess}, got)
}
