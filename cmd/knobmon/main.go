package main

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/robotalks/knobbridge/pkg/diag"
)

var (
	mqttURL = "mqtt://localhost:1883/knob/"
	topic   = diag.StatsTopicPattern
)

func init() {
	if val := os.Getenv("KNOB_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
	flag.StringVar(&topic, "topic", topic, "Topic to subscribe.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	q, err := diag.NewQueueFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}
	q.Sub(topic, diag.Handler(func(topic string, payload []byte) {
		stats, err := diag.DecodeStats(payload)
		if err != nil {
			log.Printf("%s: bad message: %v", topic, err)
			return
		}
		log.Printf("%s: %s", topic, stats.String())
	}))
	if err := q.Connect(10 * time.Second); err != nil {
		log.Fatalln(err)
	}
	<-(chan struct{})(nil)
}
