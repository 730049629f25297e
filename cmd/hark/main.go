package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	cli "github.com/spf13/pflag"

	"github.com/lmittmann/tint"
	log "log/slog"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"hark/internal/audio"
	"hark/internal/config"
	"hark/internal/ipc"
	"hark/internal/listen"
	"hark/internal/llm"
	"hark/internal/notify"
	"hark/internal/proxy"
	"hark/internal/router"
	"hark/internal/tts"
	"hark/internal/workflow"
	"hark/pkg/stt"
)

var logLevelMap = map[string]log.Level{
	"debug": log.LevelDebug,
	"info":  log.LevelInfo,
	"warn":  log.LevelWarn,
	"error": log.LevelError,
}

func main() {
	envFile := cli.StringP("env", "e", ".env", "Env file path")
	configPath := cli.StringP("config", "c", "./config.json", "Configuration file path")
	mode := cli.StringP("mode", "m", "chunked", "Capture mode: chunked or stream")
	chunk := cli.DurationP("chunk", "d", 10*time.Second, "Chunk duration in chunked mode")
	sttKind := cli.StringP("stt", "s", "whisper", "Chunked-mode transcriber: whisper or deepgram")
	modelPath := cli.StringP("model", "w", "third_party/whisper.cpp/models/ggml-base.en.bin", "Whisper model path")
	proxyAddr := cli.StringP("proxy", "p", "", "SOCKS proxy address, empty for direct")
	endPhrase := cli.String("end", "thanks", "Stream mode end-of-utterance phrase")
	stopPhrase := cli.String("stop", "stop listening", "Stream mode shutdown phrase")
	logLevel := cli.StringP("log", "l", "info", "Log level")
	cli.Parse()

	log.SetDefault(log.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level: logLevelMap[*logLevel],
	})))

	log.Info("Booting up")

	godotenv.Load(*envFile)
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Error("OPENAI_API_KEY not set")
		os.Exit(1)
	}

	httpClient := http.DefaultClient
	if *proxyAddr != "" {
		var err error
		httpClient, err = proxy.NewSocksClient(*proxyAddr)
		if err != nil {
			log.Error("Failed to dial socks proxy", "proxy", *proxyAddr, "err", err)
			os.Exit(1)
		}
		log.Debug("Loaded proxy")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("Failed to load configuration", "path", *configPath, "err", err)
		os.Exit(1)
	}

	activation := os.Getenv("ACTIVATION_KEYWORD")
	if activation == "" {
		activation = cfg.AssistantName
	}

	api := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(httpClient),
	)
	model := llm.New(api, os.Getenv("OPENAI_MODEL"))

	speaker := buildSpeaker(httpClient)

	clip, err := workflow.SystemClipboard()
	if err != nil {
		log.Warn("No clipboard tool available", "err", err)
		clip = noClipboard{err: err}
	}

	env := &workflow.Env{
		ConfigPath: *configPath,
		Config:     &cfg,
		LLM:        model,
		Speaker:    speaker,
		Clipboard:  clip,
		Editor:     workflow.SystemEditor(),
		HTTP:       httpClient,
	}
	registry := workflow.NewRegistry(env)
	table := router.Default()

	rec := audio.NewRecorder()
	if err := rec.Init(); err != nil {
		log.Error("Failed to init audio", "err", err)
		os.Exit(1)
	}
	defer rec.Close()

	log.Info("Boot up - successful", "mode", *mode, "activation", activation)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := ipc.StartServer(func(msg ipc.ControlMessage) {
		switch msg.Cmd {
		case ipc.CmdTrigger:
			if err := notify.Cue(); err != nil {
				log.Warn("Cue failed", "err", err)
			}
		case ipc.CmdStop:
			cancel()
		case ipc.CmdSay:
			if err := speaker.Speak(ctx, msg.Text); err != nil {
				log.Error("Say failed", "err", err)
			}
		default:
			log.Warn("Unknown command", "cmd", msg.Cmd)
		}
	}); err != nil {
		log.Error("Failed ipc server", "err", err)
		os.Exit(1)
	}

	switch *mode {
	case "chunked":
		err = runChunked(ctx, rec, registry, table, activation, *chunk, *sttKind, *modelPath, httpClient)
	case "stream":
		err = runStream(ctx, cancel, rec, registry, table, activation, *endPhrase, *stopPhrase)
	default:
		log.Error("Unknown mode", "mode", *mode)
		os.Exit(1)
	}
	if err != nil && ctx.Err() == nil {
		log.Error("Listen loop failed", "err", err)
		os.Exit(1)
	}

	log.Info("Shut down")
}

// buildSpeaker prefers the hosted voice and falls back to the local
// synthesizer when the API is not configured. Speech is wrapped in audio
// ducking so music does not drown the assistant out.
func buildSpeaker(httpClient *http.Client) tts.Speaker {
	var speaker tts.Speaker

	voiceID := os.Getenv("ELEVENLABS_VOICE_ID")
	elKey := os.Getenv("ELEVENLABS_API_KEY")
	if elKey != "" && voiceID != "" {
		el, err := tts.NewElevenLabs(elKey, voiceID, tts.WithElevenLabsHTTPClient(httpClient))
		if err != nil {
			log.Error("Failed to init ElevenLabs", "err", err)
			os.Exit(1)
		}
		speaker = el
	} else {
		log.Warn("ElevenLabs not configured, using espeak")
		speaker = &tts.Espeak{}
	}

	ducker := audio.NewDucker([]string{"hark"}, 20)
	return duckedSpeaker{inner: speaker, duck: ducker}
}

func runChunked(ctx context.Context, rec *audio.Recorder, registry *workflow.Registry,
	table router.Table, activation string, chunk time.Duration,
	sttKind, modelPath string, httpClient *http.Client) error {

	var transcriber listen.Transcriber
	switch sttKind {
	case "whisper":
		w, err := stt.NewWhisper(modelPath, stt.Options{Language: "auto"})
		if err != nil {
			log.Error("Failed to init whisper", "model", modelPath, "err", err)
			os.Exit(1)
		}
		defer w.Close()
		transcriber = w
	case "deepgram":
		d, err := stt.NewDeepgram(os.Getenv("DEEPGRAM_API_KEY"), stt.WithHTTPClient(httpClient))
		if err != nil {
			log.Error("Failed to init deepgram", "err", err)
			os.Exit(1)
		}
		transcriber = d
	default:
		log.Error("Unknown transcriber", "stt", sttKind)
		os.Exit(1)
	}

	loop := &listen.ChunkLoop{
		Rec:        rec,
		STT:        transcriber,
		Dispatch:   registry,
		Table:      table,
		Activation: activation,
		Duration:   chunk,
	}
	return loop.Run(ctx)
}

func runStream(ctx context.Context, cancel context.CancelFunc, rec *audio.Recorder,
	registry *workflow.Registry, table router.Table,
	activation, endPhrase, stopPhrase string) error {

	live, err := stt.NewDeepgramLive(ctx, os.Getenv("DEEPGRAM_API_KEY"), "nova-2", "")
	if err != nil {
		log.Error("Failed to open live transcription", "err", err)
		os.Exit(1)
	}

	session := listen.NewSession(activation, endPhrase, stopPhrase, listen.ProcessorFunc(func(command string) {
		id, ok := table.Route(command)
		if !ok {
			log.Info("no workflow for command", "command", command)
			return
		}
		stop, err := registry.Dispatch(ctx, id, command)
		if err != nil {
			log.Error("workflow failed", "workflow", id, "err", err)
		}
		if stop {
			cancel()
		}
	}))

	loop := &listen.StreamLoop{Source: rec, Rec: live, Session: session}
	return loop.Run(ctx)
}

// duckedSpeaker lowers other playback streams while speaking.
type duckedSpeaker struct {
	inner tts.Speaker
	duck  *audio.Ducker
}

func (s duckedSpeaker) Speak(ctx context.Context, text string) error {
	if err := s.duck.Duck(ctx, 0.3); err != nil {
		log.Debug("duck failed", "err", err)
	}
	defer func() {
		if err := s.duck.Restore(ctx); err != nil {
			log.Debug("restore failed", "err", err)
		}
	}()
	return s.inner.Speak(ctx, text)
}

// noClipboard stands in when no clipboard tool is installed; workflows that
// need it fail with the probe error.
type noClipboard struct{ err error }

func (c noClipboard) Copy(string) error      { return c.err }
func (c noClipboard) Paste() (string, error) { return "", c.err }
