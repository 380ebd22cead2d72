package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/sunterra/sunplan/internal/config"
	"github.com/sunterra/sunplan/internal/migration"
	"github.com/sunterra/sunplan/internal/observability"
	"github.com/sunterra/sunplan/internal/server"
	"github.com/sunterra/sunplan/pkg/db"
	"github.com/sunterra/sunplan/pkg/redisconn"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		redisconn.Module,
		migration.Module,
		server.Module,
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
