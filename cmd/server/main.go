package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/codebuildervaibhav/meeting-recorder/internal/audio"
	"github.com/codebuildervaibhav/meeting-recorder/internal/cleanup"
	"github.com/codebuildervaibhav/meeting-recorder/internal/config"
	"github.com/codebuildervaibhav/meeting-recorder/internal/embed"
	"github.com/codebuildervaibhav/meeting-recorder/internal/handlers"
	"github.com/codebuildervaibhav/meeting-recorder/internal/session"
	"github.com/codebuildervaibhav/meeting-recorder/internal/store"
	"github.com/codebuildervaibhav/meeting-recorder/internal/summarize"
	"github.com/codebuildervaibhav/meeting-recorder/internal/transcribe"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	cfg, err := config.Load("config/config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("loading config")
	}

	for _, dir := range []string{cfg.Audio.RecordingsDir, cfg.Storage.ExportDir, cfg.Storage.TempDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatal().Err(err).Str("dir", dir).Msg("creating directory")
		}
	}

	db, err := store.Open(cfg.Storage.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("opening meeting store")
	}
	defer db.Close()

	devices, err := audio.NewDeviceManager()
	if err != nil {
		log.Fatal().Err(err).Msg("initializing audio subsystem")
	}
	defer devices.Close()

	recorder, err := audio.NewCaptureRecorder(devices, cfg.Audio.SampleRate, cfg.Audio.RecordingsDir, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initializing recorder")
	}

	processor := &session.Processor{
		WindowSeconds: cfg.Diarize.WindowSeconds,
		MaxSpeakers:   cfg.Diarize.MaxSpeakers,
		Transcriber:   transcribe.NewWhisperTranscriber(cfg.Whisper.Model, cfg.Whisper.Language, cfg.Storage.TempDir, log),
		Embedder:      embed.NewClient(cfg.Embedder.URL, time.Duration(cfg.Embedder.TimeoutSeconds)*time.Second),
		Summarizer:    summarize.NewClient(cfg.LLM.URL, cfg.LLM.Model, time.Duration(cfg.LLM.TimeoutSeconds)*time.Second),
		Store:         db,
		Log:           log,
	}
	sess := session.New(recorder, devices, processor, session.NewBroker(), log)

	cleaner := cleanup.NewScheduler(
		cfg.Audio.RecordingsDir,
		time.Duration(cfg.Cleanup.IntervalMinutes)*time.Minute,
		time.Duration(cfg.Cleanup.MaxAgeHours)*time.Hour,
		db,
		log,
	)
	cleaner.Start()
	defer cleaner.Stop()

	app := fiber.New(fiber.Config{
		BodyLimit: cfg.Limits.MaxFileSizeMB * 1024 * 1024,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	recording := handlers.NewRecordingHandler(sess)
	meetings := handlers.NewMeetingsHandler(db, cfg.Storage.ExportDir, log)
	upload := handlers.NewUploadHandler(sess, cfg.Storage.TempDir, cfg.Audio.SampleRate, cfg.Limits.MaxFileSizeMB, log)
	progress := handlers.NewProgressHandler(sess.Broker(), log)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	app.Get("/api/devices", recording.Devices)
	app.Post("/api/devices/select", recording.SelectDevice)

	app.Post("/api/recordings/start", recording.Start)
	app.Post("/api/recordings/stop", recording.Stop)
	app.Get("/api/recordings/status", recording.Status)
	app.Post("/api/recordings/upload", upload.Handle)
	app.Get("/ws/progress", websocket.New(progress.Handle))

	app.Get("/api/meetings", meetings.List)
	app.Get("/api/meetings/:id", meetings.Get)
	app.Delete("/api/meetings/:id", meetings.Delete)
	app.Get("/api/meetings/:id/audio", meetings.Audio)
	app.Get("/api/meetings/:id/export", meetings.Export)
	app.Post("/api/meetings/:id/tags", meetings.AddTag)
	app.Delete("/api/meetings/:id/tags/:tag", meetings.RemoveTag)
	app.Get("/api/tags", meetings.Tags)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Info().Str("addr", addr).Msg("server starting")

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint
		log.Info().Msg("shutting down")
		_ = app.Shutdown()
	}()

	if err := app.Listen(addr); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}
