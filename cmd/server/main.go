// Command server boots the Hex Throne PocketBase application: an
// embedded NATS/JetStream server for session storage and room
// broadcast, the event-log + snapshot persistence store, the game
// Manager (recovering any games still active from the last run), and
// the REST + SSE transport surface. Grounded on the teacher's main.go
// boot sequence.
package main

import (
	"context"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/delaneyj/toolbelt/embeddednats"
	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/plugins/migratecmd"

	"github.com/mark3labs/hexthrone/internal/aiclient"
	"github.com/mark3labs/hexthrone/internal/broadcast"
	"github.com/mark3labs/hexthrone/internal/config"
	"github.com/mark3labs/hexthrone/internal/manager"
	_ "github.com/mark3labs/hexthrone/migrations"
	"github.com/mark3labs/hexthrone/internal/persistence"
	"github.com/mark3labs/hexthrone/internal/session"
	"github.com/mark3labs/hexthrone/internal/transport"
)

func main() {
	cfg := config.Load()
	log.Info("loaded configuration", "port", cfg.Port, "dataDir", cfg.DatabaseURL, "defaultTurnTimerMs", cfg.DefaultTurnTimerMs)

	app := pocketbase.New()

	isGoRun := strings.HasPrefix(os.Args[0], "tmp/bin")
	migratecmd.MustRegister(app, app.RootCmd, migratecmd.Config{
		Automigrate: isGoRun,
	})

	log.Info("starting embedded NATS server")
	ns, err := embeddednats.New(
		context.Background(),
		embeddednats.WithDirectory(app.DataDir()+"/nats"),
		embeddednats.WithNATSServerOptions(&server.Options{
			JetStream: true,
		}),
	)
	if err != nil {
		log.Fatal("failed to create NATS server", "error", err)
	}
	ns.NatsServer.Start()
	ns.WaitForServer()
	log.Info("NATS server started")

	nc, err := nats.Connect(ns.NatsServer.ClientURL(),
		nats.Name("hexthrone-client"),
		nats.InProcessServer(ns.NatsServer),
	)
	if err != nil {
		log.Fatal("failed to connect to NATS", "error", err)
	}
	defer nc.Drain()
	log.Info("connected to NATS server", "url", ns.NatsServer.ClientURL())

	js, err := jetstream.New(nc)
	if err != nil {
		log.Fatal("failed to create JetStream context", "error", err)
	}
	log.Info("JetStream initialized")

	ctx := context.Background()
	sessions, err := session.NewStore(ctx, js, log.Default())
	if err != nil {
		log.Fatal("failed to initialize session store", "error", err)
	}
	log.Info("session store initialized")

	bus := broadcast.NewBus(nc, log.Default())
	store := persistence.NewStore(app, log.Default())
	aiGen := aiclient.NewBoundedRetry(aiclient.RandomMover{}, log.Default())

	gameManager := manager.New(store, bus, aiGen, log.Default())

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		recovered, err := gameManager.Recover()
		if err != nil {
			log.Error("failed to recover in-flight games", "error", err)
		} else {
			log.Info("recovered in-flight games", "count", recovered)
		}

		transport.RegisterRESTRoutes(se.Router, gameManager, sessions, cfg.DefaultTurnTimerMs)
		transport.RegisterStreamRoutes(se.Router, gameManager, sessions, bus)
		se.Router.GET("/static/{path...}", apis.Static(os.DirFS("./static"), false))

		return se.Next()
	})

	if err := app.Start(); err != nil {
		log.Fatal("application failed to start", "error", err)
	}
}
