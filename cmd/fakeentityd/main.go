package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-echarts/statsview"
	statsviewer "github.com/go-echarts/statsview/viewer"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/fakeentity/entity"
	"github.com/oomph-ac/fakeentity/fake"
	"github.com/oomph-ac/fakeentity/omath"
	"github.com/oomph-ac/fakeentity/schedule"
	"github.com/oomph-ac/fakeentity/settings"
	"github.com/oomph-ac/fakeentity/tracker"
	"github.com/oomph-ac/fakeentity/virtual"
	"github.com/sandertv/gophertunnel/minecraft"
	"github.com/sandertv/gophertunnel/minecraft/protocol/packet"
)

const (
	// walkSpeed is the distance in blocks a walker covers each tick.
	walkSpeed = 0.2
	// spawnHeight is the height at which players and walkers are placed.
	spawnHeight = 64
)

var settingsPath = flag.String("settings", "settings.toml", "path to the settings file")

// The following program runs a server that shows fake entities walking in circles to every player that joins.
func main() {
	flag.Parse()

	if err := settings.SaveDefault(*settingsPath); err == nil {
		fmt.Printf("default settings written to %s\n", *settingsPath)
	}
	conf, err := settings.Load(*settingsPath)
	if err != nil {
		panic(err)
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: conf.Level()}))
	slog.SetDefault(log)

	if conf.Debug.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: conf.Debug.SentryDSN}); err != nil {
			log.Error("unable to initialize sentry", "error", err)
		}
		defer sentry.Flush(time.Second * 5)
	}
	if conf.Debug.StatsViewAddress != "" {
		statsviewer.SetConfiguration(statsviewer.WithTheme(statsviewer.ThemeWesteros), statsviewer.WithAddr(conf.Debug.StatsViewAddress))
		mgr := statsview.New()
		go mgr.Start()
		defer mgr.Stop()
	}

	listener, err := minecraft.ListenConfig{
		StatusProvider: minecraft.NewStatusProvider(conf.Network.Name, "Fake Entities"),
	}.Listen("raknet", conf.Network.Address)
	if err != nil {
		panic(err)
	}
	log.Info("listening for connections", "address", conf.Network.Address)

	t := tracker.New(log)
	tasks := spawnWalkers(t, conf, log)

	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		_ = listener.Close()
	}()

	for {
		c, err := listener.Accept()
		if err != nil {
			break
		}
		go handleConn(c.(*minecraft.Conn), listener, t, log)
	}

	for _, task := range tasks {
		task.Cancel()
		<-task.Done()
	}
	if err := t.Close(); err != nil {
		log.Warn("errors removing entities", "error", err)
	}
	log.Info("server closed")
}

// spawnWalkers adds the entities configured to the tracker and starts a task for each that walks it along a
// circle.
func spawnWalkers(t *tracker.Tracker, conf settings.Settings, log *slog.Logger) []*schedule.Task {
	radius := math.Max(conf.Entities.Radius, 1)
	// The yaw changes by the angle of the arc walked each tick.
	turn := float32(mgl64.RadToDeg(walkSpeed / radius))

	tasks := make([]*schedule.Task, 0, conf.Entities.Count)
	for i := range conf.Entities.Count {
		start := float64(i) * radius * 3
		e := fake.NewLiving(fake.Config{
			EntityType: conf.Entities.Type,
			Location: entity.Location{
				Position: mgl64.Vec3{start, spawnHeight, 0},
				Yaw:      float32(i * 90),
			},
			Metadata: []entity.Metadatum{
				{Index: entity.DataKeyName, Value: fmt.Sprintf("Walker #%d", i+1)},
				{Index: entity.DataKeyScale, Value: float32(1)},
			},
			Visible:       true,
			VelocityScale: conf.Entities.VelocityScale,
			Log:           log,
		})
		if err := t.Add(e, tracker.Options{Global: conf.Entities.Global, ViewDistance: conf.Entities.ViewDistance}); err != nil {
			log.Error("unable to add walker", "error", err)
			continue
		}

		id := e.ID()
		tasks = append(tasks, schedule.Repeat(conf.Tick(), func() bool {
			err := t.Update(id, func(e tracker.Trackable) error {
				loc := e.Location()
				dir := omath.Direction(loc.Rotation())
				return e.Move(entity.Delta{
					Position: dir.Mul(walkSpeed),
					Yaw:      omath.WrapDegrees(loc.Yaw+turn) - loc.Yaw,
				})
			})
			if err != nil {
				log.Debug("walker update failed", "entity", id, "error", err)
			}
			return false
		}))
	}
	// Range checks run at the same rate as movement.
	tasks = append(tasks, schedule.Repeat(conf.Tick(), func() bool {
		if err := t.Tick(); err != nil {
			log.Debug("tracker tick failed", "error", err)
		}
		return false
	}))
	return tasks
}

// handleConn handles a new incoming minecraft.Conn from the minecraft.Listener passed.
func handleConn(conn *minecraft.Conn, listener *minecraft.Listener, t *tracker.Tracker, log *slog.Logger) {
	spawn := mgl32.Vec3{0, spawnHeight + 2, 0}
	if err := conn.StartGame(minecraft.GameData{
		WorldName:       "fake entities",
		EntityUniqueID:  1,
		EntityRuntimeID: 1,
		PlayerGameMode:  1,
		PlayerPosition:  spawn,
	}); err != nil {
		log.Debug("unable to start game", "error", err)
		_ = listener.Disconnect(conn, "unable to start game")
		return
	}

	p := virtual.NewPlayer(conn, omath.Vec32To64(spawn), log)
	defer func() {
		t.Leave(p)
		p.Close()
		_ = listener.Disconnect(conn, "connection lost")
	}()
	log.Info("player joined", "player", p.Name())

	if err := t.Join(p); err != nil {
		log.Debug("errors rendering entities", "player", p.Name(), "error", err)
	}
	for {
		pk, err := conn.ReadPacket()
		if err != nil {
			var disconnect minecraft.DisconnectError
			if errors.As(err, &disconnect) {
				log.Info("player disconnected", "player", p.Name(), "reason", disconnect.Error())
			}
			return
		}
		if input, ok := pk.(*packet.PlayerAuthInput); ok {
			p.SetPosition(omath.Vec32To64(input.Position))
		}
	}
}
