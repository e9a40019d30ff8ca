package yandexart

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"artbot/internal/domain"
)

const testOp = "fbvu9d0a8mk47l6jq2rs"

type scriptTransport struct {
	submitStatus int
	operations   []stub

	submits    int
	polls      int
	lastSubmit map[string]any
}

type stub struct {
	status int
	body   []byte
}

func (s *scriptTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	switch {
	case strings.HasSuffix(req.URL.Path, "/foundationModels/v1/imageGenerationAsync"):
		s.submits++
		raw, _ := io.ReadAll(req.Body)
		_ = json.Unmarshal(raw, &s.lastSubmit)
		status := s.submitStatus
		if status == 0 {
			status = http.StatusOK
		}
		body := []byte(`{"id":"` + testOp + `","done":false}`)
		if status != http.StatusOK {
			body = []byte(`{"message":"denied"}`)
		}
		return respond(status, body), nil

	case strings.Contains(req.URL.Path, "/operations/"):
		if s.polls >= len(s.operations) {
			return respond(http.StatusInternalServerError, []byte(`{}`)), nil
		}
		op := s.operations[s.polls]
		s.polls++
		return respond(op.status, op.body), nil
	}
	return respond(http.StatusNotFound, []byte("not found")), nil
}

func respond(status int, body []byte) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewReader(body)),
	}
}

func newTestClient(t *testing.T, transport *scriptTransport) *Client {
	t.Helper()
	client, err := NewClient(Options{
		APIKey:     "test-key",
		FolderID:   "folder-1",
		HTTPClient: &http.Client{Transport: transport},
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func runningOp() stub {
	return stub{status: http.StatusOK, body: []byte(`{"id":"` + testOp + `","done":false}`)}
}

func doneOp(t *testing.T, image []byte) stub {
	t.Helper()
	raw, err := json.Marshal(map[string]any{
		"id":       testOp,
		"done":     true,
		"response": map[string]any{"image": base64.StdEncoding.EncodeToString(image)},
	})
	if err != nil {
		t.Fatalf("marshal stub: %v", err)
	}
	return stub{status: http.StatusOK, body: raw}
}

func failedOp() stub {
	return stub{status: http.StatusOK, body: []byte(`{"id":"` + testOp + `","done":true,"error":{"code":13,"message":"internal"}}`)}
}

func TestNewClientRequiresCredentials(t *testing.T) {
	if _, err := NewClient(Options{APIKey: "key"}); !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("err = %v, want ErrMissingCredentials", err)
	}
}

func TestSubmitBuildsModelURI(t *testing.T) {
	transport := &scriptTransport{}
	client := newTestClient(t, transport)

	handle, err := client.Submit(context.Background(), "a lighthouse at dusk", domain.DefaultParams())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if handle != JobHandle(testOp) {
		t.Fatalf("handle = %q, want %q", handle, testOp)
	}
	if uri := transport.lastSubmit["modelUri"]; uri != "art://folder-1/yandex-art/latest" {
		t.Fatalf("modelUri = %v", uri)
	}
	msgs, ok := transport.lastSubmit["messages"].([]any)
	if !ok || len(msgs) != 1 {
		t.Fatalf("messages = %v", transport.lastSubmit["messages"])
	}
	if text := msgs[0].(map[string]any)["text"]; text != "a lighthouse at dusk" {
		t.Fatalf("text = %v", text)
	}
}

func TestSubmitRejectedCredentials(t *testing.T) {
	transport := &scriptTransport{submitStatus: http.StatusForbidden}
	client := newTestClient(t, transport)

	_, err := client.Submit(context.Background(), "prompt", domain.DefaultParams())
	if !errors.Is(err, domain.ErrAuth) {
		t.Fatalf("err = %v, want ErrAuth", err)
	}
}

func TestWaitForResultSucceeds(t *testing.T) {
	blob := []byte("jpeg-bytes")
	transport := &scriptTransport{operations: []stub{
		runningOp(),
		doneOp(t, blob),
	}}
	client := newTestClient(t, transport)

	asset, err := client.WaitForResult(context.Background(), testOp, 0, 10)
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if !bytes.Equal(asset.Data, blob) {
		t.Fatalf("asset = %q", asset.Data)
	}
	if transport.polls != 2 {
		t.Fatalf("polls = %d, want 2", transport.polls)
	}
}

func TestWaitForResultOperationError(t *testing.T) {
	transport := &scriptTransport{operations: []stub{failedOp()}}
	client := newTestClient(t, transport)

	_, err := client.WaitForResult(context.Background(), testOp, 0, 10)
	if !errors.Is(err, domain.ErrGeneration) {
		t.Fatalf("err = %v, want ErrGeneration", err)
	}
}

func TestWaitForResultTimeout(t *testing.T) {
	transport := &scriptTransport{operations: []stub{runningOp(), runningOp(), runningOp()}}
	client := newTestClient(t, transport)

	_, err := client.WaitForResult(context.Background(), testOp, 0, 3)
	if !errors.Is(err, domain.ErrTimeout) {
		t.Fatalf("err = %v, want ErrTimeout", err)
	}
	if transport.polls != 3 {
		t.Fatalf("polls = %d, want exactly 3", transport.polls)
	}
}

func TestPollDoneWithoutImage(t *testing.T) {
	transport := &scriptTransport{operations: []stub{{
		status: http.StatusOK,
		body:   []byte(`{"id":"` + testOp + `","done":true}`),
	}}}
	client := newTestClient(t, transport)

	_, _, err := client.Poll(context.Background(), testOp)
	if !errors.Is(err, domain.ErrBadResponse) {
		t.Fatalf("err = %v, want ErrBadResponse", err)
	}
}
