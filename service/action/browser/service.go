// Package browser is the content-fetch tool service. It opens a page over
// HTTP, keeps the fetched document in a short-lived session and extracts the
// title and readable text on demand.
package browser

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/viant/skillet/model/types"
)

const name = "browser"

// Service fetches and extracts web content.
type Service struct {
	client   *http.Client
	mux      sync.Mutex
	sessions map[string]*session
}

type session struct {
	url   string
	body  string
	state int
}

// Option customizes the browser service.
type Option func(*Service)

// WithClient overrides the HTTP client; tests inject a stub transport here.
func WithClient(client *http.Client) Option {
	return func(s *Service) {
		s.client = client
	}
}

// New creates a new browser service
func New(options ...Option) *Service {
	ret := &Service{
		client:   &http.Client{Timeout: 30 * time.Second},
		sessions: map[string]*session{},
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// Name returns the service name
func (s *Service) Name() string {
	return name
}

// Methods returns the service methods
func (s *Service) Methods() types.Signatures {
	return []types.Signature{
		{
			Name:        "open",
			Description: "Fetches the given URL and opens an extraction session.",
			Input:       reflect.TypeOf(&OpenInput{}),
			Output:      reflect.TypeOf(&OpenOutput{}),
		},
		{
			Name:        "extract",
			Description: "Extracts the title and readable text from an open session.",
			Input:       reflect.TypeOf(&ExtractInput{}),
			Output:      reflect.TypeOf(&ExtractOutput{}),
		},
		{
			Name:        "close",
			Description: "Closes an extraction session and releases its content.",
			Input:       reflect.TypeOf(&CloseInput{}),
			Output:      reflect.TypeOf(&CloseOutput{}),
		},
	}
}

// Method returns the specified method
func (s *Service) Method(name string) (types.Executable, error) {
	switch strings.ToLower(name) {
	case "open":
		return s.open, nil
	case "extract":
		return s.extract, nil
	case "close":
		return s.close, nil
	default:
		return nil, types.NewMethodNotFoundError(name)
	}
}

type OpenInput struct {
	URL string `json:"url"`
}

type OpenOutput struct {
	SessionID string `json:"sessionId"`
	Status    int    `json:"status"`
}

func (s *Service) open(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*OpenInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*OpenOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	if input.URL == "" {
		return fmt.Errorf("url was empty")
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, input.URL, nil)
	if err != nil {
		return err
	}
	response, err := s.client.Do(request)
	if err != nil {
		return fmt.Errorf("failed to fetch %v: %w", input.URL, err)
	}
	defer response.Body.Close()
	body, err := io.ReadAll(response.Body)
	if err != nil {
		return err
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("failed to fetch %v: status %v", input.URL, response.StatusCode)
	}

	id := uuid.New().String()
	s.mux.Lock()
	s.sessions[id] = &session{url: input.URL, body: string(body)}
	s.mux.Unlock()

	output.SessionID = id
	output.Status = response.StatusCode
	return nil
}

type ExtractInput struct {
	SessionID string `json:"sessionId"`
}

type ExtractOutput struct {
	URL     string `json:"url"`
	Title   string `json:"title,omitempty"`
	Content string `json:"content,omitempty"`
}

func (s *Service) extract(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*ExtractInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*ExtractOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	s.mux.Lock()
	current := s.sessions[input.SessionID]
	s.mux.Unlock()
	if current == nil {
		return fmt.Errorf("session %v not found", input.SessionID)
	}
	output.URL = current.url
	output.Title = extractTitle(current.body)
	output.Content = stripTags(current.body)
	return nil
}

type CloseInput struct {
	SessionID string `json:"sessionId"`
}

type CloseOutput struct{}

func (s *Service) close(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*CloseInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	s.mux.Lock()
	delete(s.sessions, input.SessionID)
	s.mux.Unlock()
	return nil
}

func extractTitle(body string) string {
	lower := strings.ToLower(body)
	start := strings.Index(lower, "<title")
	if start == -1 {
		return ""
	}
	open := strings.IndexByte(body[start:], '>')
	if open == -1 {
		return ""
	}
	rest := body[start+open+1:]
	end := strings.Index(strings.ToLower(rest), "</title>")
	if end == -1 {
		return ""
	}
	return strings.TrimSpace(rest[:end])
}

// stripTags reduces the document to its visible text; script and style
// bodies are dropped entirely.
func stripTags(body string) string {
	var b strings.Builder
	inTag := false
	skipUntil := ""
	lower := strings.ToLower(body)
	for i := 0; i < len(body); i++ {
		if skipUntil != "" {
			if strings.HasPrefix(lower[i:], skipUntil) {
				i += len(skipUntil) - 1
				skipUntil = ""
				inTag = true
			}
			continue
		}
		ch := body[i]
		if ch == '<' {
			if strings.HasPrefix(lower[i:], "<script") {
				skipUntil = "</script"
				continue
			}
			if strings.HasPrefix(lower[i:], "<style") {
				skipUntil = "</style"
				continue
			}
			inTag = true
			continue
		}
		if ch == '>' {
			inTag = false
			b.WriteByte(' ')
			continue
		}
		if !inTag {
			b.WriteByte(ch)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
