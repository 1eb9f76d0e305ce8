package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/contentry/ledger/internal/account"
	"github.com/contentry/ledger/internal/clock"
	"github.com/contentry/ledger/internal/config"
	"github.com/contentry/ledger/internal/invoice"
	"github.com/contentry/ledger/internal/logger"
	"github.com/contentry/ledger/internal/matcher"
	"github.com/contentry/ledger/internal/migration"
	"github.com/contentry/ledger/internal/observability"
	"github.com/contentry/ledger/internal/payment"
	"github.com/contentry/ledger/internal/payment/adapters"
	"github.com/contentry/ledger/internal/payment/adapters/stripe"
	"github.com/contentry/ledger/internal/scheduler"
	"github.com/contentry/ledger/internal/server"
	"github.com/contentry/ledger/internal/settlement"
	"github.com/contentry/ledger/pkg/db"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		// Gateways
		stripe.Module,
		adapters.Module,

		// Functional domains
		invoice.Module,
		payment.Module,
		matcher.Module,
		account.Module,
		settlement.Module,

		scheduler.Module,
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
