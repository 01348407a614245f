package protocol

import "encoding/json"

func CreateRoom() Envelope {
	return Envelope{Type: TypeCreateRoom}
}

func JoinRoom(roomID string) Envelope {
	return Envelope{Type: TypeJoinRoom, RoomID: roomID}
}

func PlayerUpdate(pose Pose) Envelope {
	return Envelope{Type: TypePlayerUpdate, Data: mustData(pose)}
}

func FireBullet(data BulletData) Envelope {
	return Envelope{Type: TypeFireBullet, Data: mustData(data)}
}

func DropBomb(data BombData) Envelope {
	return Envelope{Type: TypeDropBomb, Data: mustData(data)}
}

func PlayerHit(targetID string) Envelope {
	return Envelope{Type: TypePlayerHit, Data: mustData(HitData{TargetID: targetID})}
}

func BuildingDestroyed(data BuildingData) Envelope {
	return Envelope{Type: TypeBuildingDestroyed, Data: mustData(data)}
}

func RoomCreated(roomID, playerID string, slot, health int) Envelope {
	return Envelope{Type: TypeRoomCreated, RoomID: roomID, PlayerID: playerID, PlayerNumber: slot, Health: health}
}

func RoomJoined(roomID, playerID string, slot, health int) Envelope {
	return Envelope{Type: TypeRoomJoined, RoomID: roomID, PlayerID: playerID, PlayerNumber: slot, Health: health}
}

func PlayerJoined(playerID string) Envelope {
	return Envelope{Type: TypePlayerJoined, PlayerID: playerID}
}

func GameStart() Envelope {
	return Envelope{Type: TypeGameStart}
}

func PlayerDamaged(targetID string, health int, attackerID string) Envelope {
	return Envelope{
		Type:     TypePlayerDamaged,
		PlayerID: targetID,
		Data:     mustData(DamagedData{Health: health, AttackerID: attackerID}),
	}
}

func PlayerKilled(targetID, killerID string, killerScore int) Envelope {
	return Envelope{
		Type:     TypePlayerKilled,
		PlayerID: targetID,
		Data:     mustData(KilledData{KillerID: killerID, Score: killerScore}),
	}
}

func PlayerRespawn(targetID string, health int) Envelope {
	return Envelope{Type: TypePlayerRespawn, PlayerID: targetID, Data: mustData(RespawnData{Health: health})}
}

func PlayerLeft(playerID string) Envelope {
	return Envelope{Type: TypePlayerLeft, PlayerID: playerID}
}

func Error(message string) Envelope {
	return Envelope{Type: TypeError, Message: message}
}

// Forward re-addresses a client payload as the relay broadcast of type t,
// stamped with the sender. Data is carried through byte for byte.
func Forward(t Type, senderID string, data json.RawMessage) Envelope {
	var copied json.RawMessage
	if len(data) > 0 {
		copied = append(json.RawMessage(nil), data...)
	}
	return Envelope{Type: t, PlayerID: senderID, Data: copied}
}
