package diag

import (
	"github.com/golang/protobuf/proto"
)

// Stats is a snapshot of the bridge counters.
type Stats struct {
	NodeID        string `protobuf:"bytes,1,opt,name=node_id,proto3" json:"node_id,omitempty"`
	Leader        bool   `protobuf:"varint,2,opt,name=leader,proto3" json:"leader,omitempty"`
	UptimeSeconds uint64 `protobuf:"varint,3,opt,name=uptime_seconds,proto3" json:"uptime_seconds,omitempty"`

	Host   *HostStats   `protobuf:"bytes,4,opt,name=host,proto3" json:"host,omitempty"`
	CAN    *CANStats    `protobuf:"bytes,5,opt,name=can,proto3" json:"can,omitempty"`
	Router *RouterStats `protobuf:"bytes,6,opt,name=router,proto3" json:"router,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *Stats) ProtoMessage() {}

// Reset implements proto.Message.
func (m *Stats) Reset() { *m = Stats{} }

// String implements proto.Message.
func (m *Stats) String() string { return proto.CompactTextString(m) }

// HostStats are the host link counters.
type HostStats struct {
	Received      uint64 `protobuf:"varint,1,opt,name=received,proto3" json:"received,omitempty"`
	Sent          uint64 `protobuf:"varint,2,opt,name=sent,proto3" json:"sent,omitempty"`
	SendErrors    uint64 `protobuf:"varint,3,opt,name=send_errors,proto3" json:"send_errors,omitempty"`
	FramingErrors uint64 `protobuf:"varint,4,opt,name=framing_errors,proto3" json:"framing_errors,omitempty"`
	Duplicates    uint64 `protobuf:"varint,5,opt,name=duplicates,proto3" json:"duplicates,omitempty"`
	QueueDropped  uint64 `protobuf:"varint,6,opt,name=queue_dropped,proto3" json:"queue_dropped,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *HostStats) ProtoMessage() {}

// Reset implements proto.Message.
func (m *HostStats) Reset() { *m = HostStats{} }

// String implements proto.Message.
func (m *HostStats) String() string { return proto.CompactTextString(m) }

// CANStats are the CAN adapter counters.
type CANStats struct {
	Received      uint64 `protobuf:"varint,1,opt,name=received,proto3" json:"received,omitempty"`
	Sent          uint64 `protobuf:"varint,2,opt,name=sent,proto3" json:"sent,omitempty"`
	SendErrors    uint64 `protobuf:"varint,3,opt,name=send_errors,proto3" json:"send_errors,omitempty"`
	ReceiveErrors uint64 `protobuf:"varint,4,opt,name=receive_errors,proto3" json:"receive_errors,omitempty"`
	Dropped       uint64 `protobuf:"varint,5,opt,name=dropped,proto3" json:"dropped,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *CANStats) ProtoMessage() {}

// Reset implements proto.Message.
func (m *CANStats) Reset() { *m = CANStats{} }

// String implements proto.Message.
func (m *CANStats) String() string { return proto.CompactTextString(m) }

// RouterStats are the routing counters.
type RouterStats struct {
	HostInbound  uint64 `protobuf:"varint,1,opt,name=host_inbound,proto3" json:"host_inbound,omitempty"`
	CanInbound   uint64 `protobuf:"varint,2,opt,name=can_inbound,proto3" json:"can_inbound,omitempty"`
	ToHost       uint64 `protobuf:"varint,3,opt,name=to_host,proto3" json:"to_host,omitempty"`
	ToCan        uint64 `protobuf:"varint,4,opt,name=to_can,proto3" json:"to_can,omitempty"`
	SendFailures uint64 `protobuf:"varint,5,opt,name=send_failures,proto3" json:"send_failures,omitempty"`
	Unroutable   uint64 `protobuf:"varint,6,opt,name=unroutable,proto3" json:"unroutable,omitempty"`
	Identify     uint64 `protobuf:"varint,7,opt,name=identify,proto3" json:"identify,omitempty"`
	LocalEvents  uint64 `protobuf:"varint,8,opt,name=local_events,proto3" json:"local_events,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *RouterStats) ProtoMessage() {}

// Reset implements proto.Message.
func (m *RouterStats) Reset() { *m = RouterStats{} }

// String implements proto.Message.
func (m *RouterStats) String() string { return proto.CompactTextString(m) }

// EncodeStats serializes stats.
func EncodeStats(s *Stats) ([]byte, error) {
	return proto.Marshal(s)
}

// DecodeStats parses a published payload.
func DecodeStats(payload []byte) (*Stats, error) {
	s := &Stats{}
	if err := proto.Unmarshal(payload, s); err != nil {
		return nil, err
	}
	return s, nil
}
