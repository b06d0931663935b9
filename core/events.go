package core

// DropReason tags why a propagation branch was cut.
type DropReason string

const (
	// DropDistance: the packet exceeded the maximum propagation distance.
	DropDistance DropReason = "distance"
	// DropIrrelevant: the information type weight fell at or below the
	// receiver's interest threshold.
	DropIrrelevant DropReason = "irrelevant"
	// DropUnknownSource: the packet's source province is not in the graph.
	DropUnknownSource DropReason = "unknown_source"
)

// DeliveryEvent is published once per province that successfully receives a
// packet. Packet is a branch-local snapshot; consumers may keep it.
type DeliveryEvent struct {
	Receiver      ProvinceID
	ReceiverRealm RealmID
	Packet        InformationPacket
	Relevance     RelevanceTier
	HopCount      uint32
	Accuracy      float64

	// CumulativeCost is the summed border-crossing cost along the path
	// taken. DelayDays estimates the days until the receiver acts on the
	// information: travel time over the path plus the relevance tier's
	// processing delay.
	CumulativeCost float64
	DelayDays      float64
}

// DropEvent records a cut branch for trace consumers. Blocked borders are
// not drops and never produce one.
type DropEvent struct {
	Reason   DropReason
	Province ProvinceID
	HopCount uint32
}
