package protocol

// Audience selects which room participants receive a relay broadcast.
type Audience int

const (
	// AudienceSender replies to the originating connection only.
	AudienceSender Audience = iota
	// AudienceOthers reaches every participant except the sender.
	AudienceOthers
	// AudienceRoom reaches every participant, sender included.
	AudienceRoom
)

// Route describes how the relay answers one inbound type.
type Route struct {
	Outbound Type
	Audience Audience
	// RoomScoped routes are dropped when the sender is not in a room.
	RoomScoped bool
}

var routes = map[Type]Route{
	TypeCreateRoom:        {Outbound: TypeRoomCreated, Audience: AudienceSender},
	TypeJoinRoom:          {Outbound: TypeRoomJoined, Audience: AudienceSender},
	TypePlayerUpdate:      {Outbound: TypePlayerState, Audience: AudienceOthers, RoomScoped: true},
	TypeFireBullet:        {Outbound: TypeBulletFired, Audience: AudienceOthers, RoomScoped: true},
	TypeDropBomb:          {Outbound: TypeBombDropped, Audience: AudienceOthers, RoomScoped: true},
	TypePlayerHit:         {Outbound: TypePlayerDamaged, Audience: AudienceRoom, RoomScoped: true},
	TypeBuildingDestroyed: {Outbound: TypeBuildingDestroyed, Audience: AudienceOthers, RoomScoped: true},
}

// Lookup returns the route for an inbound type. Unknown types report false
// and must be ignored.
func Lookup(t Type) (Route, bool) {
	route, ok := routes[t]
	return route, ok
}

// InboundTypes lists every type the relay accepts.
func InboundTypes() []Type {
	return []Type{
		TypeCreateRoom,
		TypeJoinRoom,
		TypePlayerUpdate,
		TypeFireBullet,
		TypeDropBomb,
		TypePlayerHit,
		TypeBuildingDestroyed,
	}
}
