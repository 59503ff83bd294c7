package backend

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"chatui/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientChat(t *testing.T) {
	mock := NewMockBackend(t)
	client := NewClient(mock.URL, 5*time.Second)

	resp, err := client.Chat(context.Background(), models.ChatRequest{
		Message:   "hello",
		Model:     "gpt-4o",
		MediaType: models.MediaLLM,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ResponseText, resp.Type)
	assert.Equal(t, "echo: hello", resp.Response)

	reqs := mock.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, models.ChatRequest{Message: "hello", Model: "gpt-4o", MediaType: models.MediaLLM}, reqs[0])
}

func TestClientChatErrorBodyWithOKStatus(t *testing.T) {
	mock := NewMockBackend(t)
	mock.SetChat(func(models.ChatRequest) (int, interface{}) {
		return http.StatusOK, map[string]string{"error": "quota exceeded"}
	})
	client := NewClient(mock.URL, 0)

	resp, err := client.Chat(context.Background(), models.ChatRequest{Message: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "quota exceeded", resp.Error)
}

func TestClientChatNonOKStatus(t *testing.T) {
	mock := NewMockBackend(t)
	client := NewClient(mock.URL, 0)

	mock.SetChat(func(models.ChatRequest) (int, interface{}) {
		return http.StatusBadGateway, map[string]string{"error": "upstream down"}
	})
	_, err := client.Chat(context.Background(), models.ChatRequest{Message: "hi"})
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadGateway, statusErr.Code)
	assert.Equal(t, "upstream down", err.Error())

	mock.SetChat(func(models.ChatRequest) (int, interface{}) {
		return http.StatusInternalServerError, "not an object"
	})
	_, err = client.Chat(context.Background(), models.ChatRequest{Message: "hi"})
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, "HTTP error! status: 500", err.Error())
}

func TestClientChatTransportError(t *testing.T) {
	mock := NewMockBackend(t)
	url := mock.URL
	mock.Close()

	client := NewClient(url, time.Second)
	_, err := client.Chat(context.Background(), models.ChatRequest{Message: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat request failed")
}

func TestClientCategorized(t *testing.T) {
	mock := NewMockBackend(t)
	client := NewClient(mock.URL+"/", 0)

	cat, err := client.Categorized(context.Background())
	require.NoError(t, err)
	assert.Equal(t, MockCatalog.Len(), cat.Len())
	assert.Equal(t, "Gemini 2.5 Flash", cat.LLM[0].ModelName)
	assert.Equal(t, 1, mock.CatalogCalls())

	mock.SetCatalogStatus(http.StatusServiceUnavailable)
	_, err = client.Categorized(context.Background())
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.Code)
}

func TestClientInfo(t *testing.T) {
	client := NewClient("http://backend.local/", 30*time.Second)
	info := client.GetInfo()
	assert.Equal(t, "http://backend.local", info.BaseURL)
	assert.Equal(t, 30, info.TimeoutSeconds)
}

func TestClientImplementsBackend(t *testing.T) {
	var _ Backend = NewClient("http://x", 0)
}
