package config

import (
	"io/ioutil"
	"net/url"
	"time"

	"github.com/hashicorp/hcl"
	"github.com/heatlink/hgi80/helpers"
	"github.com/heatlink/hgi80/internal/forward"
	"github.com/heatlink/hgi80/internal/gateway"
	"github.com/heatlink/hgi80/internal/relay"
	"github.com/heatlink/hgi80/log2"
	"github.com/juju/errors"
)

type Config struct {
	Serial  SerialConfig  `hcl:"serial"`
	Forward ForwardConfig `hcl:"forward"`
	Relay   RelayConfig   `hcl:"relay"`
	Log     LogConfig     `hcl:"log"`
}

type SerialConfig struct {
	Device        string `hcl:"device"`
	Baud          int    `hcl:"baud"`
	ReadTimeoutMs int    `hcl:"read_timeout_ms"`
	MaxLine       int    `hcl:"max_line"`
}

type ForwardConfig struct { //nolint:maligned
	HttpUrl       string `hcl:"http_url"`
	HttpTimeoutMs int    `hcl:"http_timeout_ms"`
	QueuePath     string `hcl:"queue_path"`
	MqttBroker    string `hcl:"mqtt_broker"`
	MqttClientId  string `hcl:"mqtt_client_id"`
	MqttUsername  string `hcl:"mqtt_username"`
	MqttPassword  string `hcl:"mqtt_password"` // secret
	MqttTopic     string `hcl:"mqtt_topic"`
	MqttQos       int    `hcl:"mqtt_qos"`
	MqttRetain    bool   `hcl:"mqtt_retain"`
}

type RelayConfig struct {
	SignalMax int `hcl:"signal_max"`
}

type LogConfig struct {
	Level      string `hcl:"level"`
	File       string `hcl:"file"`
	MaxSizeMB  int    `hcl:"max_size_mb"`
	MaxBackups int    `hcl:"max_backups"`
}

func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func Parse(b []byte) (*Config, error) {
	c := &Config{}
	if err := hcl.Unmarshal(b, c); err != nil {
		return nil, errors.Annotatef(err, "config unmarshal content='%s'", string(b))
	}
	c.applyDefaults()
	return c, nil
}

func Read(log *log2.Log, path string) (*Config, error) {
	log.Debugf("config reading path=%s", path)
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Annotatef(err, "config path=%s", path)
	}
	c, err := Parse(b)
	return c, errors.Annotatef(err, "config path=%s", path)
}

func (c *Config) applyDefaults() {
	if c.Serial.Baud == 0 {
		c.Serial.Baud = gateway.DefaultBaud
	}
	if c.Serial.ReadTimeoutMs == 0 {
		c.Serial.ReadTimeoutMs = int(gateway.DefaultReadTimeout / time.Millisecond)
	}
	if c.Serial.MaxLine == 0 {
		c.Serial.MaxLine = gateway.DefaultMaxLine
	}
	if c.Forward.HttpTimeoutMs == 0 {
		c.Forward.HttpTimeoutMs = int(forward.DefaultHTTPTimeout / time.Millisecond)
	}
	if c.Forward.MqttTopic == "" {
		c.Forward.MqttTopic = forward.DefaultMQTTTopic
	}
	if c.Relay.SignalMax == 0 {
		c.Relay.SignalMax = relay.DefaultSignalMax
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = 10
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = 3
	}
}

// Validate reports all problems at once.
func (c *Config) Validate() error {
	c.applyDefaults()
	errs := make([]error, 0, 8)
	if c.Serial.Device == "" {
		errs = append(errs, errors.NotValidf("config serial.device empty"))
	}
	if c.Serial.Baud < 0 || c.Serial.ReadTimeoutMs < 0 || c.Serial.MaxLine < 0 {
		errs = append(errs, errors.NotValidf("config serial=%#v", c.Serial))
	}
	if c.Forward.HttpUrl == "" && c.Forward.MqttBroker == "" {
		errs = append(errs, errors.NotValidf("config no sink, set forward.http_url or forward.mqtt_broker"))
	}
	if c.Forward.HttpUrl != "" {
		if u, err := url.Parse(c.Forward.HttpUrl); err != nil {
			errs = append(errs, errors.Annotatef(err, "config forward.http_url"))
		} else if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, errors.NotValidf("config forward.http_url=%s", c.Forward.HttpUrl))
		}
	}
	if c.Forward.MqttQos < 0 || c.Forward.MqttQos > 2 {
		errs = append(errs, errors.NotValidf("config forward.mqtt_qos=%d", c.Forward.MqttQos))
	}
	if c.Relay.SignalMax < 1 || c.Relay.SignalMax > 0xffff {
		errs = append(errs, errors.NotValidf("config relay.signal_max=%d", c.Relay.SignalMax))
	}
	if _, err := log2.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, errors.Annotate(err, "config"))
	}
	return helpers.FoldErrors(errs)
}

func (c *Config) GatewayOptions() gateway.Options {
	return gateway.Options{
		Device:      c.Serial.Device,
		Baud:        c.Serial.Baud,
		ReadTimeout: helpers.IntMillisecondDefault(c.Serial.ReadTimeoutMs, gateway.DefaultReadTimeout),
		MaxLine:     c.Serial.MaxLine,
	}
}

func (c *Config) HTTPTimeout() time.Duration {
	return helpers.IntMillisecondDefault(c.Forward.HttpTimeoutMs, forward.DefaultHTTPTimeout)
}

func (c *Config) MQTTOptions() forward.MQTTOptions {
	return forward.MQTTOptions{
		Broker:   c.Forward.MqttBroker,
		ClientID: c.Forward.MqttClientId,
		Username: c.Forward.MqttUsername,
		Password: c.Forward.MqttPassword,
		Topic:    c.Forward.MqttTopic,
		Qos:      byte(c.Forward.MqttQos),
		Retain:   c.Forward.MqttRetain,
	}
}

func (c *Config) RelayConfig() relay.Config {
	return relay.Config{SignalMax: uint16(c.Relay.SignalMax)}
}

func (c *Config) LogFile() log2.FileConfig {
	return log2.FileConfig{
		Path:       c.Log.File,
		MaxSizeMB:  c.Log.MaxSizeMB,
		MaxBackups: c.Log.MaxBackups,
	}
}

func (c *Config) LogLevel() log2.Level {
	level, _ := log2.ParseLevel(c.Log.Level)
	return level
}
