package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	cli "github.com/spf13/pflag"

	"github.com/lmittmann/tint"
	log "log/slog"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"axylo/internal/agent"
	"axylo/internal/automate"
	"axylo/internal/bus"
	"axylo/internal/config"
	"axylo/internal/diag"
	"axylo/internal/ipc"
	"axylo/internal/listen"
	"axylo/internal/messaging"
	"axylo/internal/notify"
	"axylo/internal/proxy"
	"axylo/internal/session"
	"axylo/internal/tts"
	"axylo/internal/typing"
	"axylo/internal/voice"
	"axylo/internal/worker"
	"axylo/internal/writer"
)

var logLevelMap = map[string]log.Level{
	"debug": log.LevelDebug,
	"info":  log.LevelInfo,
	"warn":  log.LevelWarn,
	"error": log.LevelError,
}

func main() {
	envFile := cli.StringP("env", "e", ".env", "Env file path")
	logLevel := cli.StringP("log", "l", "info", "Log level")
	cli.Parse()

	log.SetDefault(log.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level: logLevelMap[*logLevel],
	})))

	log.Info("Booting up")

	godotenv.Load(*envFile)
	cfg, err := config.Load()
	if err != nil {
		log.Error("Bad configuration", "err", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("Daemon failed", "err", err)
		os.Exit(1)
	}
	log.Info("Bye")
}

func run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Reasoning and synthesis client, optionally through SOCKS.
	opts := []option.RequestOption{option.WithAPIKey(cfg.OpenAIKey)}
	if cfg.SocksProxy != "" {
		httpClient, err := proxy.NewSocksClient(cfg.SocksProxy)
		if err != nil {
			return fmt.Errorf("dial socks proxy %s: %w", cfg.SocksProxy, err)
		}
		log.Debug("Loaded proxy", "addr", cfg.SocksProxy)
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	client := openai.NewClient(opts...)

	// Speech output: OpenAI speech first, espeak as the offline fallback.
	player, err := voice.NewBeepPlayer()
	if err != nil {
		return fmt.Errorf("init playback: %w", err)
	}
	gate := voice.NewGate()
	channel := voice.NewChannel(gate,
		tts.NewOpenAI(client, cfg.TTSVoice),
		tts.NewEspeak(cfg.Language),
		player,
	)
	speaker := voice.NewMuted(channel)

	// Speech input.
	rec, err := listen.NewRecorder()
	if err != nil {
		return fmt.Errorf("init recorder: %w", err)
	}
	defer rec.Close()

	whisper, err := listen.NewTranscriber(cfg.WhisperModel, cfg.Language)
	if err != nil {
		return fmt.Errorf("init whisper: %w", err)
	}
	defer whisper.Close()

	listenOpts := []listen.Option{}
	if chime := notify.MaybeLoadChime(cfg.ChimePath, player); chime != nil {
		listenOpts = append(listenOpts, listen.WithChime(chime.Play))
	}
	if cfg.DebugCaptureDir != "" {
		listenOpts = append(listenOpts, listen.WithDebugCapture(cfg.DebugCaptureDir))
	}
	// Every recognition attempt goes through the gate; the sub-sessions
	// share the same wrapper so they can never listen over the main loop.
	mic := voice.NewGatedListener(gate, listen.NewListener(rec, whisper, listenOpts...))

	// Desktop control.
	keyboard := automate.NewXDoTool()
	launcher := automate.NewLauncher()

	contactsFile, err := config.LoadContacts(cfg.ContactsPath)
	if err != nil {
		log.Warn("Contacts unavailable", "err", err)
	}
	contacts := messaging.Contacts{
		Emails:   contactsFile.Emails,
		WhatsApp: contactsFile.WhatsApp,
	}

	// Intent endpoints.
	runner := agent.NewOpenAI(client, openai.ChatModel(cfg.OpenAIModel))
	brain := agent.New(runner)
	smartWriter := writer.New(runner, speaker, launcher)

	handlers := session.Handlers{
		SmartWrite: smartWriter.Handle,
		VoiceTyping: func(ctx context.Context) error {
			return typing.NewSession(mic, speaker, keyboard, launcher).Run(ctx)
		},
		Messaging: func(ctx context.Context, recipient string) error {
			return messaging.NewSession(mic, speaker, keyboard, launcher, contacts).Run(ctx, recipient)
		},
		Query: func(ctx context.Context, rid, text string) (string, error) {
			answer, err := brain.Answer(ctx, rid, text)
			if err != nil {
				return "", err
			}
			log.Info("Agent answer", "rid", rid, "text", answer)
			return agent.SpeechFriendly(answer), nil
		},
	}

	// Optional event bus for presentation layers.
	var events session.Events
	if cfg.BusURL != "" {
		b, err := bus.Dial(cfg.BusURL)
		if err != nil {
			log.Warn("Bus unavailable, continuing without it", "url", cfg.BusURL, "err", err)
		} else {
			defer b.Close()
			events = b
		}
	}

	sessCfg := session.DefaultConfig()
	sessCfg.ListenTimeout = cfg.ListenTimeout
	sessCfg.PhraseLimit = cfg.PhraseLimit
	controller := session.NewController(sessCfg, mic, speaker, handlers, events)

	workers := worker.NewRegistry()
	defer workers.StopAll()

	checks := diag.NewRegistry()
	registerChecks(checks, cfg, keyboard)

	if err := ipc.Serve(ctx, controlHandler(ctx, controller, speaker, workers, keyboard, checks)); err != nil {
		return err
	}

	log.Info("Boot up - successful")

	err = controller.Run(ctx)
	if errors.Is(err, context.Canceled) {
		// Best-effort notice on an external stop signal.
		notice, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		speaker.Say(notice, "Shutting down.")
		cancel()
	}
	return err
}

func registerChecks(r *diag.Registry, cfg config.Config, kb *automate.XDoTool) {
	r.Register("whisper-model", "recognition model file present", func(ctx context.Context) diag.Result {
		if _, err := os.Stat(cfg.WhisperModel); err != nil {
			return diag.Result{Status: diag.StatusError, Message: err.Error()}
		}
		return diag.Result{Status: diag.StatusOK, Message: cfg.WhisperModel}
	})
	r.Register("openai-key", "reasoning credentials configured", func(ctx context.Context) diag.Result {
		if cfg.OpenAIKey == "" {
			return diag.Result{Status: diag.StatusError, Message: "OPENAI_API_KEY missing"}
		}
		return diag.Result{Status: diag.StatusOK}
	})
	r.Register("keyboard", "keystroke injection available", func(ctx context.Context) diag.Result {
		if err := kb.Key(ctx, "shift"); err != nil {
			return diag.Result{Status: diag.StatusWarning, Message: err.Error()}
		}
		return diag.Result{Status: diag.StatusOK}
	})
	r.Register("bus", "event bus configured", func(ctx context.Context) diag.Result {
		if cfg.BusURL == "" {
			return diag.Result{Status: diag.StatusInfo, Message: "no bus configured"}
		}
		return diag.Result{Status: diag.StatusOK, Message: cfg.BusURL}
	})
}

func controlHandler(
	ctx context.Context,
	controller *session.Controller,
	speaker *voice.Muted,
	workers *worker.Registry,
	scroller worker.Scroller,
	checks *diag.Registry,
) ipc.Handler {
	return func(msg ipc.ControlMessage) ipc.Reply {
		switch msg.Cmd {
		case "dispatch":
			if err := controller.DispatchText(ctx, msg.Arg); err != nil {
				return ipc.Reply{Message: err.Error()}
			}
			return ipc.Reply{Ok: true}

		case "mic":
			controller.SetMicEnabled(msg.Arg != "off")
			return ipc.Reply{Ok: true, Message: "mic " + onOff(controller.MicEnabled())}

		case "mute":
			speaker.SetEnabled(msg.Arg == "off")
			return ipc.Reply{Ok: true, Message: "speech " + onOff(speaker.Enabled())}

		case "stop":
			controller.Shutdown()
			return ipc.Reply{Ok: true, Message: "shutting down"}

		case "diag":
			results := checks.RunAll(ctx)
			var b strings.Builder
			for _, r := range results {
				fmt.Fprintf(&b, "%-16s %-8s %s\n", r.ID, r.Status, r.Message)
			}
			b.WriteString(diag.Summary(results))
			return ipc.Reply{Ok: true, Message: b.String()}

		case "scroll-start":
			dir, speed, _ := strings.Cut(msg.Arg, " ")
			task, err := worker.AutoScroll(scroller, dir, speed)
			if err != nil {
				return ipc.Reply{Message: err.Error()}
			}
			if err := workers.Start(worker.ScrollName, task); err != nil {
				return ipc.Reply{Message: err.Error()}
			}
			return ipc.Reply{Ok: true, Message: "scrolling"}

		case "scroll-stop":
			if err := workers.Stop(worker.ScrollName); err != nil {
				return ipc.Reply{Message: err.Error()}
			}
			return ipc.Reply{Ok: true, Message: "stopped"}

		default:
			log.Warn("Unknown command", "cmd", msg.Cmd)
			return ipc.Reply{Message: "unknown command: " + msg.Cmd}
		}
	}
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
