package match

import (
	"city-bomber/internal/client"
	"city-bomber/internal/protocol"
	"city-bomber/internal/reconcile"
)

func (m *Match) onRoomCreated(env protocol.Envelope) {
	m.setStatus(client.StatusRoomID, env.RoomID)
	m.setStatus(client.StatusWaitingForOpponent)
	m.health = m.cfg.MaxHealth
	m.defeated = false
	m.respawnLocal()
}

func (m *Match) onRoomJoined(env protocol.Envelope) {
	m.setStatus(client.StatusRoomID, env.RoomID)
	m.setStatus(client.StatusJoinedWaiting)
	m.health = m.cfg.MaxHealth
	m.defeated = false
	m.respawnLocal()
}

func (m *Match) onPlayerJoined(env protocol.Envelope) {
	m.learnOpponent(env.PlayerID)
	m.setStatus(client.StatusOpponentJoined)
}

// onGameStart places the opponent at the spawn pose opposite ours.
func (m *Match) onGameStart(protocol.Envelope) {
	m.started = true
	m.sinceUpdate = 0
	if m.remote != nil {
		m.remote.Destroy()
	}
	m.remote = reconcile.NewEntity(m.remoteID, protocol.OpponentSlot(m.conn.Slot()), m.cfg.Reconcile)
}

func (m *Match) onPlayerState(env protocol.Envelope) {
	if m.self(env.PlayerID) {
		return
	}
	m.learnOpponent(env.PlayerID)
	if m.remote == nil {
		return
	}
	pose, err := protocol.DecodeData[protocol.Pose](env)
	if err != nil {
		m.cfg.Logger.Printf("discarding player_state: %v", err)
		return
	}
	m.remote.ApplyState(pose)
}

func (m *Match) onBulletFired(env protocol.Envelope) {
	data, err := protocol.DecodeData[protocol.BulletData](env)
	if err != nil {
		m.cfg.Logger.Printf("discarding bullet_fired: %v", err)
		return
	}
	if m.fx != nil {
		m.fx.RemoteBullet(data)
	}
}

func (m *Match) onBombDropped(env protocol.Envelope) {
	data, err := protocol.DecodeData[protocol.BombData](env)
	if err != nil {
		m.cfg.Logger.Printf("discarding bomb_dropped: %v", err)
		return
	}
	if m.fx != nil {
		m.fx.RemoteBomb(data)
	}
}

func (m *Match) onPlayerDamaged(env protocol.Envelope) {
	data, err := protocol.DecodeData[protocol.DamagedData](env)
	if err != nil {
		m.cfg.Logger.Printf("discarding player_damaged: %v", err)
		return
	}
	if m.self(env.PlayerID) {
		m.health = min(max(data.Health, 0), m.cfg.MaxHealth)
		return
	}
	m.learnOpponent(env.PlayerID)
	if m.remote != nil {
		m.remote.SetHealth(data.Health)
	}
	if m.self(data.AttackerID) {
		m.score += m.cfg.HitBonus
	}
}

func (m *Match) onPlayerKilled(env protocol.Envelope) {
	data, err := protocol.DecodeData[protocol.KilledData](env)
	if err != nil {
		m.cfg.Logger.Printf("discarding player_killed: %v", err)
		return
	}
	if m.self(data.KillerID) {
		// The relay's total includes the kill bonus.
		m.score = data.Score
	}
	if m.self(env.PlayerID) {
		m.health = 0
		m.defeated = true
		m.explode(m.localPose.Position)
		return
	}
	if m.remote != nil && m.remote.Kill() {
		m.explode(m.remote.Position())
	}
}

func (m *Match) onPlayerRespawn(env protocol.Envelope) {
	data, err := protocol.DecodeData[protocol.RespawnData](env)
	if err != nil {
		m.cfg.Logger.Printf("discarding player_respawn: %v", err)
		return
	}
	if m.self(env.PlayerID) {
		m.health = min(max(data.Health, 0), m.cfg.MaxHealth)
		m.defeated = false
		m.sinceUpdate = 0
		m.respawnLocal()
		return
	}
	if m.remote != nil {
		m.remote.Respawn(data.Health)
	}
}

// onPlayerLeft removes the opponent. The local session keeps running.
func (m *Match) onPlayerLeft(env protocol.Envelope) {
	if m.self(env.PlayerID) {
		return
	}
	if m.remote == nil && m.remoteID == "" {
		return
	}
	if m.remote != nil {
		m.remote.Destroy()
		m.remote = nil
	}
	m.remoteID = ""
	m.started = false
	m.setStatus(client.StatusOpponentLeft)
}

func (m *Match) onError(env protocol.Envelope) {
	m.setStatus(client.StatusError, env.Message)
}

func (m *Match) onDisconnected(protocol.Envelope) {
	m.started = false
	m.setStatus(client.StatusDisconnected)
}

func (m *Match) onBuildingDestroyed(env protocol.Envelope) {
	m.learnOpponent(env.PlayerID)
}

func (m *Match) explode(at protocol.Vec3) {
	if m.fx != nil {
		m.fx.Explosion(at)
	}
}

func (m *Match) respawnLocal() {
	if m.fx != nil {
		m.fx.LocalRespawn(protocol.SpawnPose(m.conn.Slot()))
	}
}
