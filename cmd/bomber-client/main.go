package main

import (
	"context"
	"flag"
	"log"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"city-bomber/internal/client"
	"city-bomber/internal/config"
	"city-bomber/internal/match"
	"city-bomber/internal/protocol"
	"city-bomber/internal/telemetry"
)

const (
	frameInterval = 16 * time.Millisecond
	reportEvery   = time.Second
	// hitRange is how close the opponent must be for the autopilot to claim a hit.
	hitRange = 40.0
)

type consoleEffects struct {
	logger *log.Logger
}

func (e consoleEffects) Status(text string) {
	e.logger.Printf("status: %s", text)
}

func (e consoleEffects) Explosion(at protocol.Vec3) {
	e.logger.Printf("explosion at (%.1f, %.1f, %.1f)", at.X, at.Y, at.Z)
}

func (e consoleEffects) RemoteBullet(data protocol.BulletData) {
	e.logger.Printf("opponent fired from (%.1f, %.1f, %.1f)", data.Position.X, data.Position.Y, data.Position.Z)
}

func (e consoleEffects) RemoteBomb(data protocol.BombData) {
	e.logger.Printf("opponent dropped a bomb at (%.1f, %.1f, %.1f)", data.Position.X, data.Position.Y, data.Position.Z)
}

func (e consoleEffects) LocalRespawn(pose protocol.Pose) {
	e.logger.Printf("respawning at (%.1f, %.1f, %.1f)", pose.Position.X, pose.Position.Y, pose.Position.Z)
}

// autopilot flies a circle starting from the spawn pose.
type autopilot struct {
	pose protocol.Pose
}

func (a *autopilot) reset(pose protocol.Pose) {
	a.pose = pose
}

func (a *autopilot) step(dt time.Duration) protocol.Pose {
	const turnRate = 0.6
	secs := dt.Seconds()
	a.pose.Rotation += turnRate * secs
	a.pose.Position.X += math.Sin(a.pose.Rotation) * a.pose.Speed * secs
	a.pose.Position.Z += math.Cos(a.pose.Rotation) * a.pose.Speed * secs
	return a.pose
}

type respawnHook struct {
	consoleEffects
	pilot *autopilot
}

func (h respawnHook) LocalRespawn(pose protocol.Pose) {
	h.consoleEffects.LocalRespawn(pose)
	h.pilot.reset(pose)
}

func main() {
	var roomID string
	flag.StringVar(&roomID, "join", "", "room id to join; creates a room when empty")
	flag.Parse()

	cfg, err := config.LoadClient()
	if err != nil {
		log.Fatalf("%v", err)
	}

	logger := log.New(os.Stdout, "[bomber] ", log.LstdFlags)
	status := client.NewStatus(cfg.Lang)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	manager := client.NewManager(client.Config{
		URL:    cfg.ServerURL,
		Logger: telemetry.WrapLogger(logger),
	})

	pilot := &autopilot{pose: protocol.SpawnPose(protocol.SlotHost)}
	fx := respawnHook{consoleEffects: consoleEffects{logger: logger}, pilot: pilot}
	matchCfg := match.DefaultConfig()
	matchCfg.UpdateInterval = cfg.UpdateInterval
	matchCfg.Logger = telemetry.WrapLogger(logger)
	game := match.New(manager, fx, status, matchCfg)
	defer game.Close()

	fx.Status(status.Text(client.StatusConnecting))
	if err := manager.Connect(ctx); err != nil {
		logger.Printf("%v", err)
		fx.Status(status.Text(client.StatusConnectFailed))
		os.Exit(1)
	}

	if roomID == "" {
		fx.Status(status.Text(client.StatusCreatingRoom))
		err = manager.CreateRoom()
	} else {
		fx.Status(status.Text(client.StatusJoiningRoom))
		err = manager.JoinRoom(roomID)
	}
	if err != nil {
		log.Fatalf("%v", err)
	}

	run(ctx, manager, game, pilot, logger)
	_ = manager.Disconnect()
}

func run(ctx context.Context, manager *client.Manager, game *match.Match, pilot *autopilot, logger *log.Logger) {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	last := time.Now()
	var sinceReport time.Duration
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now

			manager.DispatchPending()
			select {
			case <-manager.Done():
				manager.DispatchPending()
				return
			default:
			}

			local := pilot.step(dt)
			if err := game.Update(dt, local); err != nil {
				logger.Printf("pose update failed: %v", err)
			}

			sinceReport += dt
			if sinceReport < reportEvery {
				continue
			}
			sinceReport = 0
			report(game, local, logger)
		}
	}
}

func report(game *match.Match, local protocol.Pose, logger *log.Logger) {
	remote := game.Remote()
	if remote == nil {
		logger.Printf("health=%d score=%d, no opponent", game.Health(), game.Score())
		return
	}
	pos := remote.Position()
	logger.Printf("health=%d score=%d opponent=%s state=%s health=%d at (%.1f, %.1f, %.1f)",
		game.Health(), game.Score(), remote.ID, remote.State(), remote.Health(), pos.X, pos.Y, pos.Z)

	dx, dy, dz := pos.X-local.Position.X, pos.Y-local.Position.Y, pos.Z-local.Position.Z
	if math.Sqrt(dx*dx+dy*dy+dz*dz) <= hitRange {
		if _, err := game.ReportHit(); err != nil {
			logger.Printf("hit claim failed: %v", err)
		}
	}
}
