package forward

import (
	"bytes"
	"context"
	"io"
	"io/ioutil"
	"net/http"
	"time"

	"github.com/heatlink/hgi80/internal/telegram"
	"github.com/heatlink/hgi80/log2"
	"github.com/juju/errors"
)

const (
	DefaultHTTPTimeout = 5 * time.Second
	responseLogLimit   = 512
)

// HTTP posts readings to collector URL.
type HTTP struct {
	Client *http.Client
	URL    string
	log    *log2.Log
}

func NewHTTP(url string, timeout time.Duration, log *log2.Log) *HTTP {
	if timeout == 0 {
		timeout = DefaultHTTPTimeout
	}
	return &HTTP{
		Client: &http.Client{Timeout: timeout},
		URL:    url,
		log:    log,
	}
}

func (self *HTTP) Send(ctx context.Context, zt telegram.ZoneTemps) error {
	body, err := Encode(zt)
	if err != nil {
		return errors.Annotate(err, "encode")
	}
	self.log.Debugf("forward http url=%s payload=%s", self.URL, body)
	req, err := http.NewRequest(http.MethodPost, self.URL, bytes.NewReader(body))
	if err != nil {
		return errors.Annotatef(err, "forward http url=%s", self.URL)
	}
	req = req.WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")

	resp, err := self.Client.Do(req)
	if err != nil {
		return errors.Annotatef(err, "forward http url=%s", self.URL)
	}
	defer resp.Body.Close()
	text, _ := ioutil.ReadAll(io.LimitReader(resp.Body, responseLogLimit))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.Errorf("forward http url=%s status=%s response=%s", self.URL, resp.Status, text)
	}
	self.log.Debugf("forward http response=%s", text)
	return nil
}

func (self *HTTP) Forward(ctx context.Context, zt telegram.ZoneTemps) {
	if err := self.Send(ctx, zt); err != nil {
		self.log.Errorf("%v", err)
	}
}
