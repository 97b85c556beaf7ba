// Package role senses whether this node is the leader or the follower.
package role

import (
	"github.com/golang/glog"

	"github.com/robotalks/knobbridge/pkg/gpio"
	"github.com/robotalks/knobbridge/pkg/telemetry"
)

// Sense reads the leader select pin: high is leader.
type Sense struct {
	Pin gpio.Pin
}

// Sample reads the pin and reports the role. A read error is logged
// and reported as follower.
func (s *Sense) Sample() telemetry.Message {
	leader, err := s.Pin.Read()
	if err != nil {
		glog.Warningf("leader select: read error: %v", err)
		leader = false
	}
	if leader {
		return telemetry.NewLocal(telemetry.ThisNodeIsLeader)
	}
	return telemetry.NewLocal(telemetry.ThisNodeIsFollower)
}
