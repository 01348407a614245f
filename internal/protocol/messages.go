package protocol

import "encoding/json"

// Type identifies the payload carried by an Envelope.
type Type string

// Client to relay message types.
const (
	TypeCreateRoom        Type = "create_room"
	TypeJoinRoom          Type = "join_room"
	TypePlayerUpdate      Type = "player_update"
	TypeFireBullet        Type = "fire_bullet"
	TypeDropBomb          Type = "drop_bomb"
	TypePlayerHit         Type = "player_hit"
	TypeBuildingDestroyed Type = "building_destroyed"
)

// Relay to client message types.
const (
	TypeRoomCreated   Type = "room_created"
	TypeRoomJoined    Type = "room_joined"
	TypePlayerJoined  Type = "player_joined"
	TypeGameStart     Type = "game_start"
	TypePlayerState   Type = "player_state"
	TypeBulletFired   Type = "bullet_fired"
	TypeBombDropped   Type = "bomb_dropped"
	TypePlayerDamaged Type = "player_damaged"
	TypePlayerKilled  Type = "player_killed"
	TypePlayerRespawn Type = "player_respawn"
	TypePlayerLeft    Type = "player_left"
	TypeError         Type = "error"
)

// TypeDisconnected never crosses the wire. Clients emit it locally when the
// transport closes.
const TypeDisconnected Type = "disconnected"

// Envelope is the single message unit exchanged between clients and the
// relay. Fields that do not apply to a type are omitted on the wire.
type Envelope struct {
	Type         Type            `json:"type"`
	PlayerID     string          `json:"playerId,omitempty"`
	RoomID       string          `json:"roomId,omitempty"`
	PlayerNumber int             `json:"playerNumber,omitempty"`
	Health       int             `json:"health,omitempty"`
	Message      string          `json:"message,omitempty"`
	Data         json.RawMessage `json:"data,omitempty"`
}

// Vec3 is a position or direction in world space.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Pose is the continuously streamed state of one aircraft. Rotation is the
// yaw in radians.
type Pose struct {
	Position Vec3    `json:"position"`
	Rotation float64 `json:"rotation"`
	Pitch    float64 `json:"pitch"`
	Speed    float64 `json:"speed"`
}

// BulletData describes a fired bullet.
type BulletData struct {
	Position  Vec3 `json:"position"`
	Direction Vec3 `json:"direction"`
}

// BombData describes a dropped bomb.
type BombData struct {
	Position Vec3 `json:"position"`
	Velocity Vec3 `json:"velocity"`
}

// HitData accompanies a hit claim. The relay ignores TargetID because a room
// has exactly one opponent.
type HitData struct {
	TargetID string `json:"targetId,omitempty"`
}

type DamagedData struct {
	Health     int    `json:"health"`
	AttackerID string `json:"attackerId"`
}

type KilledData struct {
	KillerID string `json:"killerId"`
	Score    int    `json:"score"`
}

type RespawnData struct {
	Health int `json:"health"`
}

type BuildingData struct {
	BuildingIndex int `json:"buildingIndex"`
	Score         int `json:"score"`
}
