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
)

var heldTemps = flag.Bool("held", false, "Print hold type and held temperatures as well.")

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)
	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] SERIAL-PORT\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}

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
		printReading(reading, *heldTemps)
	}
}

func printReading(r *meter.Reading, held bool) {
	fmt.Printf("%.3f", r.UnixSeconds())
	for _, temp := range r.CurrentTempsC {
		fmt.Printf(" %7.3f", temp)
	}
	if held {
		fmt.Printf(" %s", r.HoldType)
		for _, temp := range r.HeldTempsC {
			fmt.Printf(" %7.3f", temp)
		}
	}
	fmt.Println()
}
