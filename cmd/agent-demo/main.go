// Command agent-demo wires a concrete GOAP agent through
// goap.Controller and exposes an operator-facing observer surface, the
// way cmd/ai-gateway wires a NATS worker and cmd/game-server wires a
// chi+websocket server: env-var config, zerolog logging, graceful
// shutdown on SIGINT/SIGTERM.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"goap-runtime/cmd/agent-demo/observer"
	"goap-runtime/internal/goap"
	"goap-runtime/internal/logging"
	"goap-runtime/internal/transport/natssensor"
	"goap-runtime/internal/transport/redisfact"
)

func main() {
	logging.InitLogger()

	agentName := os.Getenv("AGENT_NAME")
	if agentName == "" {
		agentName = "scout-1"
	}

	tickInterval := envDuration("TICK_INTERVAL", time.Second)

	weather := &weatherSwitch{}
	world, sensors, actions, goals, err := buildDemoAgent(weather)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build demo agent declarations")
	}

	if natsURL := os.Getenv("NATS_URL"); natsURL != "" {
		wireNATSWeather(natsURL, weather, &sensors)
	}

	automaton, err := goap.NewAutomaton(agentName, world, sensors, actions)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to construct automaton")
	}

	controller, err := goap.NewController(agentName, automaton, goals)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to construct controller")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := observer.NewHub()

	var mirror *redisfact.Mirror
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: redisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Msg("redis fact mirror unavailable; continuing without it")
		} else {
			mirror = redisfact.NewMirror(client, 30*time.Second)
			log.Info().Str("addr", redisAddr).Msg("mirroring working memory to redis")
		}
	}

	router := hub.Router()
	router.Post("/storm", func(w http.ResponseWriter, req *http.Request) {
		weather.setStorm(true)
		w.WriteHeader(http.StatusAccepted)
	})
	router.Post("/clear", func(w http.ResponseWriter, req *http.Request) {
		weather.setStorm(false)
		w.WriteHeader(http.StatusAccepted)
	})

	port := os.Getenv("OBSERVER_PORT")
	if port == "" {
		port = "8090"
	}
	server := &http.Server{Addr: ":" + port, Handler: router}
	go func() {
		log.Info().Str("port", port).Msg("observer listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("observer server error")
		}
	}()

	tick := func() {
		if err := controller.Step(goap.StepDefault); err != nil {
			log.Warn().Err(err).Msg("controller step reported an error")
		}
		snapshotAndBroadcast(ctx, controller, hub, mirror)
	}

	// Each scheduling strategy calls tick() itself so that every Step is
	// followed by a broadcast/mirror, rather than driving
	// Controller.Start (which only calls Step) and losing that hook.
	stopSchedule := startSchedule(os.Getenv("SCHEDULE_CRON"), tick)
	if stopSchedule == nil {
		ticker := time.NewTicker(tickInterval)
		defer ticker.Stop()
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					tick()
				}
			}
		}()
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info().Msg("shutting down agent-demo")
	cancel()
	if stopSchedule != nil {
		stopSchedule()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("observer shutdown error")
	}
}

// startSchedule wires the controller to a cron expression instead of a
// fixed-interval ticker when SCHEDULE_CRON is set, exercising
// robfig/cron/v3 as a second scheduling strategy against the same
// Controller.Step. Returns nil (no cron scheduling started) when unset.
func startSchedule(expr string, tick func()) func() {
	if expr == "" {
		return nil
	}
	c := cron.New()
	if _, err := c.AddFunc(expr, tick); err != nil {
		log.Fatal().Err(err).Str("expr", expr).Msg("invalid SCHEDULE_CRON expression")
	}
	c.Start()
	log.Info().Str("expr", expr).Msg("driving controller from cron schedule instead of a fixed ticker")
	return func() { <-c.Stop().Done() }
}

// wireNATSWeather replaces the switch-backed WeatherSensor with a
// NATS-subscribed fact sensor on agent.weather when NATS_URL is
// configured. If connecting or subscribing fails, the switch-backed
// sensor stays in place; once the NATS sensor is wired, the weather
// switch (and the /storm and /clear endpoints that flip it) no longer
// feeds any sensor.
func wireNATSWeather(natsURL string, weather *weatherSwitch, sensors *[]*goap.Sensor) {
	nc, err := nats.Connect(natsURL)
	if err != nil {
		log.Warn().Err(err).Msg("nats unavailable; falling back to the in-process weather switch")
		return
	}
	listener, err := natssensor.NewListener(nc, "agent.weather")
	if err != nil {
		log.Warn().Err(err).Msg("failed to subscribe to agent.weather")
		return
	}
	for i, s := range *sensors {
		if s.Name == "WeatherSensor" {
			(*sensors)[i] = listener.Sensor("WeatherSensor", "weather", nil)
		}
	}
	log.Info().Str("url", natsURL).Msg("weather sensor now sourced from NATS subject agent.weather")
	_ = weather // no longer read by any sensor from here on
}

func snapshotAndBroadcast(ctx context.Context, controller *goap.Controller, hub *observer.Hub, mirror *redisfact.Mirror) {
	automaton := controller.Automaton()

	var goalName string
	if g := automaton.Goal(); g != nil {
		goalName = g.Name
	}

	plan := automaton.CurrentPlan()
	steps := make([]string, len(plan))
	for i, s := range plan {
		steps[i] = s.String()
	}

	hub.Broadcast(observer.Snapshot{
		Agent:    controller.Name,
		Phase:    automaton.Phase().String(),
		Goal:     goalName,
		Plan:     steps,
		StepIdx:  automaton.StepIndex(),
		World:    automaton.World().Clone(),
		SensedAt: time.Now(),
	})

	if mirror != nil {
		if err := mirror.Save(ctx, controller.Name, automaton.WorkingMemory()); err != nil {
			log.Warn().Err(err).Msg("failed to mirror working memory to redis")
		}
	}
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Millisecond
	}
	log.Warn().Str("key", key).Str("value", v).Msg("invalid duration env var; using default")
	return fallback
}
