package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/partnerledger/internal/clock"
	"github.com/smallbiznis/partnerledger/internal/config"
	"github.com/smallbiznis/partnerledger/internal/migration"
	"github.com/smallbiznis/partnerledger/internal/observability"
	"github.com/smallbiznis/partnerledger/internal/server"
	"github.com/smallbiznis/partnerledger/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core Infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		// HTTP surface and the domain modules behind it
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.SnowflakeNode)
}
