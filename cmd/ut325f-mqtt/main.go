package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/thermolab/ut325f.go/pkg/meter"
	"github.com/thermolab/ut325f.go/pkg/mqtt"
)

var mqttURL = "mqtt://localhost:1883/ut325f/"

func init() {
	if val := os.Getenv("UT325F_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)
	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] SERIAL-PORT\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}

	pub, err := mqtt.NewPublisherFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}
	if err := pub.Connect(); err != nil {
		log.Fatalln(err)
	}
	defer pub.Close()

	session, err := meter.Open(flag.Arg(0))
	if err != nil {
		log.Fatalln(err)
	}
	defer session.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := meter.NewMeter(session)
	for ctx.Err() == nil {
		reading, err := m.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			log.Printf("read: %v", err)
			continue
		}
		if err := pub.Publish(reading); err != nil {
			log.Printf("publish: %v", err)
		}
	}
}
