// Package telemetry defines the fixed-size message exchanged between
// the host link, the CAN bus and the local inputs.
package telemetry

import "fmt"

// Domain tags the bus or subsystem a Message belongs to.
type Domain byte

// Domains
const (
	DomainCanBus Domain = 0x01
	DomainLocal  Domain = 0x02
)

// String implements fmt.Stringer.
func (d Domain) String() string {
	switch d {
	case DomainCanBus:
		return "can"
	case DomainLocal:
		return "local"
	}
	return fmt.Sprintf("domain(%d)", byte(d))
}

// LocalID enumerates the ids of DomainLocal messages.
type LocalID uint16

// Local message ids.
const (
	ThisNodeIsLeader       LocalID = 0x0001
	ThisNodeIsFollower     LocalID = 0x0002
	KnobIncrement          LocalID = 0x0003
	KnobDecrement          LocalID = 0x0004
	ButtonPress            LocalID = 0x0005
	ButtonRelease          LocalID = 0x0006
	IdentifyLeaderFollower LocalID = 0x0007
)

var localIDNames = map[LocalID]string{
	ThisNodeIsLeader:       "ThisNodeIsLeader",
	ThisNodeIsFollower:     "ThisNodeIsFollower",
	KnobIncrement:          "KnobIncrement",
	KnobDecrement:          "KnobDecrement",
	ButtonPress:            "ButtonPress",
	ButtonRelease:          "ButtonRelease",
	IdentifyLeaderFollower: "IdentifyLeaderFollower",
}

// String implements fmt.Stringer.
func (id LocalID) String() string {
	if name, ok := localIDNames[id]; ok {
		return name
	}
	return fmt.Sprintf("local(0x%04x)", uint16(id))
}

// PayloadSize is the fixed number of payload bytes.
const PayloadSize = 8

// Message is the telemetry record. It is a plain value and is always copied.
type Message struct {
	Domain Domain
	ID     uint16
	Data   [PayloadSize]byte
}

// NewLocal creates a DomainLocal message with a zeroed payload.
func NewLocal(id LocalID) Message {
	return Message{Domain: DomainLocal, ID: uint16(id)}
}

// NewCanBus creates a DomainCanBus message. At most PayloadSize bytes
// are copied, the rest of the payload stays zero.
func NewCanBus(id uint16, data []byte) Message {
	m := Message{Domain: DomainCanBus, ID: id}
	copy(m.Data[:], data)
	return m
}

// IsLocal checks the message is DomainLocal with the given id.
func (m Message) IsLocal(id LocalID) bool {
	return m.Domain == DomainLocal && m.ID == uint16(id)
}

// String implements fmt.Stringer.
func (m Message) String() string {
	if m.Domain == DomainLocal {
		return fmt.Sprintf("local %s", LocalID(m.ID))
	}
	return fmt.Sprintf("%s 0x%03x [% x]", m.Domain, m.ID, m.Data[:])
}
