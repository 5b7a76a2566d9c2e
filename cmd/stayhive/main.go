package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/stayhive/stayhive/internal/clock"
	"github.com/stayhive/stayhive/internal/config"
	"github.com/stayhive/stayhive/internal/logger"
	"github.com/stayhive/stayhive/internal/migration"
	"github.com/stayhive/stayhive/internal/observability"
	"github.com/stayhive/stayhive/internal/scheduler"
	"github.com/stayhive/stayhive/internal/server"
	"github.com/stayhive/stayhive/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
		scheduler.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
