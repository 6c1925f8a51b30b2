package browser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

const page = `<html><head><title>Going Deep</title><style>body{color:red}</style></head>
<body><script>var x = 1;</script><h1>Going Deep</h1><p>First paragraph.</p></body></html>`

func TestService_OpenExtractClose(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	defer server.Close()

	service := New(WithClient(server.Client()))
	ctx := context.Background()

	opened := &OpenOutput{}
	err := mustMethod(t, service, "open")(ctx, &OpenInput{URL: server.URL}, opened)
	assert.Nil(t, err)
	assert.NotEmpty(t, opened.SessionID)
	assert.Equal(t, http.StatusOK, opened.Status)

	extracted := &ExtractOutput{}
	err = mustMethod(t, service, "extract")(ctx, &ExtractInput{SessionID: opened.SessionID}, extracted)
	assert.Nil(t, err)
	assert.Equal(t, "Going Deep", extracted.Title)
	assert.Contains(t, extracted.Content, "First paragraph.")
	assert.NotContains(t, extracted.Content, "var x")
	assert.NotContains(t, extracted.Content, "color:red")

	err = mustMethod(t, service, "close")(ctx, &CloseInput{SessionID: opened.SessionID}, &CloseOutput{})
	assert.Nil(t, err)
	err = mustMethod(t, service, "extract")(ctx, &ExtractInput{SessionID: opened.SessionID}, &ExtractOutput{})
	assert.NotNil(t, err)
}

func TestService_OpenErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	service := New(WithClient(server.Client()))
	err := mustMethod(t, service, "open")(context.Background(), &OpenInput{URL: server.URL}, &OpenOutput{})
	assert.NotNil(t, err)
}

func mustMethod(t *testing.T, service *Service, name string) func(ctx context.Context, in, out interface{}) error {
	method, err := service.Method(name)
	assert.Nil(t, err)
	return method
}
