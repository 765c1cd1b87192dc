// cmd/pos-service/main.go
package main

import (
	"context"
	"log"
	"strings"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"

	"till/internal/keylock"
	"till/internal/pkg/bootstrap"
	"till/internal/pkg/clock"
	"till/internal/pkg/mq"
	pkgredis "till/internal/pkg/redis"
	"till/internal/service/pos/application"
	"till/internal/service/pos/domain/port"
	"till/internal/service/pos/infrastructure/adapter"
	"till/internal/service/pos/infrastructure/archive"
	"till/internal/service/pos/infrastructure/memory"
	"till/internal/service/pos/interfaces"
)

const serviceName = "pos-service"

// main is the composition root: it builds and wires every dependency,
// then hands control to the shared bootstrap.
func main() {
	var kafkaWriter *kafka.Writer
	var redisClient *pkgredis.Client

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			cfg := appCtx.Config

			loc, err := cfg.ReportLocation()
			if err != nil {
				log.Fatalf("FATAL: %v", err)
			}

			tracer := otel.Tracer(serviceName)
			clk := clock.NewSystem()

			locks := keylock.NewRegistry(cfg.Locking.WaitTimeout.Std())
			holds := memory.NewReservationLedger()
			catalog := memory.NewCatalog(holds, locks)
			sales := memory.NewSaleStore()
			history := memory.NewHistoryLedger(loc)

			var mirror port.StockMirror
			if cfg.Redis.Enabled {
				redisClient, err = pkgredis.NewClient(cfg.Redis.Addrs)
				if err != nil {
					log.Fatalf("failed to initialize redis client: %v", err)
				}
				mirror = adapter.NewStockRedisAdapter(redisClient)
			}

			var notifier port.SettlementNotifier
			if cfg.Kafka.Enabled {
				kafkaWriter = mq.NewKafkaWriter(strings.Split(cfg.Kafka.Brokers, ","), cfg.Kafka.Topic)
				notifier = adapter.NewSettlementKafkaAdapter(kafkaWriter)
			}

			var historyArchive port.HistoryArchive
			if cfg.Database.Enabled {
				db, err := archive.OpenMySQL(cfg.Database.DSN)
				if err != nil {
					log.Fatalf("failed to open history archive: %v", err)
				}
				gormArchive := archive.NewGormHistoryArchive(db)
				historyArchive = gormArchive

				// Warm restart: replay the archived ledger so reports
				// cover sales settled before this process started.
				records, err := gormArchive.ListRecords(context.Background())
				if err != nil {
					log.Fatalf("failed to reload history archive: %v", err)
				}
				for i := range records {
					history.Append(records[i])
				}
				log.Printf("reloaded %d archived sales records", len(records))
			}

			catalogSvc := application.NewCatalogService(catalog, mirror, tracer)
			saleSvc := application.NewSaleService(sales, catalog, mirror, clk, tracer)
			settlementSvc := application.NewSettlementService(sales, catalog, history, notifier, historyArchive, mirror, clk, tracer)
			reportingSvc := application.NewReportingService(history, catalog, tracer)

			handler := interfaces.NewPosHandler(catalogSvc, saleSvc, settlementSvc, reportingSvc)
			handler.RegisterRoutes(appCtx.Mux)
		},
		Cleanup: func(ctx context.Context) {
			if kafkaWriter != nil {
				if err := kafkaWriter.Close(); err != nil {
					log.Printf("Error closing kafka writer: %v", err)
				}
			}
			if redisClient != nil {
				if err := redisClient.Close(); err != nil {
					log.Printf("Error closing redis client: %v", err)
				}
			}
		},
	})
}
