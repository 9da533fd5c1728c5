package helpers

import (
	"bufio"
	"bytes"
	"io/ioutil"
	"net/http"
	"sync"
)

// MockHTTP is http.RoundTripper for tests, records request bodies.
type MockHTTP struct {
	Fun    func(*http.Request) (*http.Response, error)
	Header []byte
	Body   []byte
	Err    error

	mu       sync.Mutex
	requests []MockRequest
}

type MockRequest struct {
	Method      string
	URL         string
	ContentType string
	Body        []byte
}

func (m *MockHTTP) Requests() []MockRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockRequest(nil), m.requests...)
}

func (m *MockHTTP) RoundTrip(req *http.Request) (*http.Response, error) {
	mr := MockRequest{
		Method:      req.Method,
		URL:         req.URL.String(),
		ContentType: req.Header.Get("Content-Type"),
	}
	if req.Body != nil {
		mr.Body, _ = ioutil.ReadAll(req.Body)
		_ = req.Body.Close()
	}
	m.mu.Lock()
	m.requests = append(m.requests, mr)
	m.mu.Unlock()

	if m.Fun != nil {
		return m.Fun(req)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	header := m.Header
	if header == nil {
		header = []byte("HTTP/1.0 200 OK\r\n\r\n")
	}
	rb := make([]byte, 0, len(header)+len(m.Body))
	rb = append(rb, header...)
	rb = append(rb, m.Body...)
	return http.ReadResponse(bufio.NewReader(bytes.NewReader(rb)), req)
}
