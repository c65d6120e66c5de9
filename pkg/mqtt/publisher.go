// Package mqtt publishes meter readings to an MQTT broker.
package mqtt

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strings"

	"github.com/denisbrodbeck/machineid"
	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"

	"github.com/thermolab/ut325f.go/pkg/meter"
)

// ReadingTopic is the topic, under the prefix, readings publish to.
const ReadingTopic = "reading"

// Publisher wraps an MQTT client publishing readings.
type Publisher struct {
	Client      paho.Client
	TopicPrefix string
}

// ClientOptionsFromURL creates ClientOptions from a broker URL. The
// URL path becomes the topic prefix, credentials map to username and
// password, and a client-id query parameter overrides the
// machine-derived default identity.
func ClientOptionsFromURL(brokerURL string) (*paho.ClientOptions, string, error) {
	u, err := url.Parse(brokerURL)
	if err != nil {
		return nil, "", err
	}
	scheme := u.Scheme
	if scheme == "" || scheme == "mqtt" {
		scheme = "tcp"
	}

	topicPrefix := strings.TrimPrefix(u.Path, "/")

	opts := paho.NewClientOptions()
	opts.AddBroker(scheme + "://" + u.Host).
		SetAutoReconnect(true).
		SetCleanSession(true)
	if u.User != nil {
		opts.SetUsername(u.User.Username())
		if pwd, ok := u.User.Password(); ok {
			opts.SetPassword(pwd)
		}
	}

	clientID := u.Query().Get("client-id")
	if clientID == "" {
		clientID = defaultClientID()
	}
	opts.SetClientID(clientID)

	return opts, topicPrefix, nil
}

func defaultClientID() string {
	id, err := machineid.ID()
	if err != nil {
		return "ut325f"
	}
	return "ut325f-" + id
}

// NewPublisherFromURL creates a Publisher from a broker URL.
func NewPublisherFromURL(brokerURL string) (*Publisher, error) {
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	p := &Publisher{TopicPrefix: topicPrefix}
	opts.SetOnConnectHandler(func(paho.Client) {
		glog.Info("connected")
	})
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		glog.Warningf("connection lost: %v", err)
	})
	p.Client = paho.NewClient(opts)
	return p, nil
}

// Connect connects to the broker and waits for the handshake.
func (p *Publisher) Connect() error {
	token := p.Client.Connect()
	token.Wait()
	return token.Error()
}

// Close implements io.Closer.
func (p *Publisher) Close() error {
	p.Client.Disconnect(250)
	return nil
}

// Publish sends one reading as JSON.
func (p *Publisher) Publish(r *meter.Reading) error {
	payload, err := encodeReading(r)
	if err != nil {
		return err
	}
	token := p.Client.Publish(p.TopicPrefix+ReadingTopic, 0, false, payload)
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish reading: %w", err)
	}
	return nil
}

// readingMessage is the JSON wire form of a Reading. encoding/json
// cannot represent NaN, so channels the device flagged as faulty
// encode as null.
type readingMessage struct {
	Time          float64    `json:"time"`
	CurrentTempsC []*float32 `json:"current_temps_c"`
	HeldTempsC    []*float32 `json:"held_temps_c"`
	HoldType      string     `json:"hold_type"`
	MeterTempC    float32    `json:"meter_temp_c"`
}

func nullableTemps(temps [meter.NumChannels]float32) []*float32 {
	out := make([]*float32, len(temps))
	for i := range temps {
		if !math.IsNaN(float64(temps[i])) {
			t := temps[i]
			out[i] = &t
		}
	}
	return out
}

func encodeReading(r *meter.Reading) ([]byte, error) {
	return json.Marshal(&readingMessage{
		Time:          r.UnixSeconds(),
		CurrentTempsC: nullableTemps(r.CurrentTempsC),
		HeldTempsC:    nullableTemps(r.HeldTempsC),
		HoldType:      r.HoldType.String(),
		MeterTempC:    r.MeterTempC,
	})
}
