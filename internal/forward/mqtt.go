package forward

import (
	"context"
	"fmt"
	"os"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/heatlink/hgi80/internal/telegram"
	"github.com/heatlink/hgi80/log2"
	"github.com/juju/errors"
)

const (
	DefaultMQTTTopic   = "hgi80/zone_temp"
	defaultMQTTTimeout = 5 * time.Second
)

type MQTTOptions struct {
	Broker   string
	ClientID string
	Username string
	Password string // secret
	Topic    string
	Qos      byte
	Retain   bool
	Timeout  time.Duration
}

// Publisher is subset of mqtt.Client used here.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTT publishes collector JSON document to a topic.
type MQTT struct {
	log    *log2.Log
	pub    Publisher
	client mqtt.Client
	opt    MQTTOptions
}

func NewMQTTPublisher(pub Publisher, opt MQTTOptions, log *log2.Log) *MQTT {
	if opt.Topic == "" {
		opt.Topic = DefaultMQTTTopic
	}
	if opt.Timeout == 0 {
		opt.Timeout = defaultMQTTTimeout
	}
	return &MQTT{log: log, pub: pub, opt: opt}
}

// NewMQTT connects in background with retry, publish before connect is queued by paho.
func NewMQTT(opt MQTTOptions, log *log2.Log) (*MQTT, error) {
	if opt.Broker == "" {
		return nil, errors.NotValidf("mqtt broker empty")
	}
	if opt.Qos > 2 {
		return nil, errors.NotValidf("mqtt qos=%d", opt.Qos)
	}
	if opt.ClientID == "" {
		host, _ := os.Hostname()
		opt.ClientID = fmt.Sprintf("hgi80-%s", host)
	}
	mlog := log.Clone(log2.LError)
	mlog.SetPrefix("mqtt: ")
	mqtt.ERROR = mlog
	mqtt.CRITICAL = mlog

	mopt := mqtt.NewClientOptions().
		AddBroker(opt.Broker).
		SetClientID(opt.ClientID).
		SetUsername(opt.Username).
		SetPassword(opt.Password).
		SetCleanSession(true).
		SetOrderMatters(true).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(10 * time.Second).
		SetOnConnectHandler(func(mqtt.Client) { log.Infof("mqtt connect broker=%s", opt.Broker) }).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) { log.Errorf("mqtt disconnect err=%v", err) })
	client := mqtt.NewClient(mopt)
	if token := client.Connect(); token.Error() != nil {
		return nil, errors.Annotatef(token.Error(), "mqtt connect broker=%s", opt.Broker)
	}

	self := NewMQTTPublisher(client, opt, log)
	self.client = client
	return self, nil
}

func (self *MQTT) Send(ctx context.Context, zt telegram.ZoneTemps) error {
	payload, err := Encode(zt)
	if err != nil {
		return errors.Annotate(err, "encode")
	}
	self.log.Debugf("forward mqtt topic=%s payload=%s", self.opt.Topic, payload)
	token := self.pub.Publish(self.opt.Topic, self.opt.Qos, self.opt.Retain, payload)
	if !token.WaitTimeout(self.opt.Timeout) {
		return errors.Timeoutf("forward mqtt topic=%s publish timeout=%s", self.opt.Topic, self.opt.Timeout)
	}
	return errors.Annotatef(token.Error(), "forward mqtt topic=%s", self.opt.Topic)
}

func (self *MQTT) Forward(ctx context.Context, zt telegram.ZoneTemps) {
	if err := self.Send(ctx, zt); err != nil {
		self.log.Errorf("%v", err)
	}
}

func (self *MQTT) Close() {
	if self.client != nil {
		self.client.Disconnect(250)
	}
}
