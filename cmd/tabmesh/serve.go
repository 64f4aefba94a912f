package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hupe1980/tabmesh"
	"github.com/hupe1980/tabmesh/engine"
	"github.com/hupe1980/tabmesh/host/bridge"
	"github.com/hupe1980/tabmesh/logging"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the extension bridge server",
	Long: `Starts the HTTP bridge the browser extension connects to. Every
organize trigger from the extension runs the full pipeline against the
connected browser. Run metrics are exported on /metrics.`,
	Run: func(cmd *cobra.Command, args []string) {
		addr := viper.GetString("server.addr")
		dryRun := viper.GetBool("engine.dry_run")

		logger := logging.NewLogger(&logging.LoggerConfig{
			Level:  logging.ParseLevel(viper.GetString("logging.level")),
			Format: viper.GetString("logging.format"),
			Output: os.Stdout,
		})

		registry := prometheus.NewRegistry()

		runsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tabmesh_runs_total",
			Help: "Organizer runs by outcome.",
		}, []string{"status"})
		stagesTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tabmesh_stages_total",
			Help: "Stage executions by stage and outcome.",
		}, []string{"stage", "status"})
		registry.MustRegister(runsTotal, stagesTotal)

		bridgeServer := bridge.NewServer(func(o *bridge.Options) {
			o.Logger = logger.WithComponent("bridge")
			o.Registry = registry
		})

		stageMetrics := engine.NewFunctionCallback(engine.CallbackAfterStage,
			func(_ context.Context, cc *engine.CallbackContext) error {
				status := "ok"
				if cc.Result != nil && cc.Result.Err != nil {
					status = "error"
					if cc.Result.Absorbed {
						status = "absorbed"
					}
				}
				stagesTotal.WithLabelValues(cc.Stage.Name(), status).Inc()
				return nil
			})

		mesh := tabmesh.New(func(o *tabmesh.Options) {
			o.Host = bridgeServer
			o.Logger = logger.WithComponent("engine")
			o.EngineConfig = engine.Config{DryRun: dryRun}
			o.Callbacks = []engine.Callback{stageMetrics}
		})

		srv := &http.Server{
			Addr:    addr,
			Handler: bridgeServer.Router(),
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			fmt.Printf("Starting TabMesh bridge on %s (dry-run: %v)\n", srv.Addr, dryRun)
			serverErrors <- srv.ListenAndServe()
		}()

		runCtx, cancelRuns := context.WithCancel(context.Background())
		defer cancelRuns()

		go func() {
			for range bridgeServer.Triggers() {
				report, err := mesh.Organize(runCtx)
				if err != nil {
					runsTotal.WithLabelValues("error").Inc()
					logger.Error("organize run failed", "error", err)
					continue
				}
				runsTotal.WithLabelValues("ok").Inc()
				logger.Info("organize run finished",
					"run_id", report.RunID,
					"tabs_moved", report.TabsMoved,
					"tabs_removed", report.TabsRemoved,
					"groups_created", report.GroupsCreated,
					"tabs_ungrouped", report.TabsUngrouped,
				)
			}
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)

		case sig := <-shutdown:
			fmt.Printf("\nStart shutdown... Signal: %v\n", sig)

			cancelRuns()
			bridgeServer.Close()

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				fmt.Printf("Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
				if err := srv.Close(); err != nil {
					fmt.Printf("Error killing server: %v\n", err)
				}
			}
			fmt.Println("TabMesh bridge stopped gracefully")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", ":8765", "Address to listen on")
	serveCmd.Flags().Bool("dry-run", false, "Preview mutations instead of applying them")
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("engine.dry_run", serveCmd.Flags().Lookup("dry-run"))
}
