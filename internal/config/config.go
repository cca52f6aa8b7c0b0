package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Paths    PathsConfig   `mapstructure:"paths"`
	Runtime  RuntimeConfig `mapstructure:"runtime"`
	Server   ServerConfig  `mapstructure:"server"`
	TTS      TTSConfig     `mapstructure:"tts"`
	LogLevel string        `mapstructure:"log_level"`
}

type PathsConfig struct {
	ModelDir    string `mapstructure:"model_dir"`
	ModelFile   string `mapstructure:"model_file"`
	VoicesFile  string `mapstructure:"voices_file"`
	ModelConfig string `mapstructure:"model_config"`
}

type RuntimeConfig struct {
	Threads        int    `mapstructure:"threads"`
	ORTLibraryPath string `mapstructure:"ort_library_path"`
	ORTAPIVersion  uint32 `mapstructure:"ort_api_version"`
	Provider       string `mapstructure:"provider"`
}

type ServerConfig struct {
	ListenAddr      string `mapstructure:"listen_addr"`
	Workers         int    `mapstructure:"workers"`
	MaxTextBytes    int    `mapstructure:"max_text_bytes"`
	RequestTimeout  int    `mapstructure:"request_timeout"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"`
}

type TTSConfig struct {
	Voice      string  `mapstructure:"voice"`
	Speed      float64 `mapstructure:"speed"`
	Language   string  `mapstructure:"language"`
	Engine     string  `mapstructure:"engine"`
	EspeakPath string  `mapstructure:"espeak_path"`
}

type LoadOptions struct {
	Cmd        flagBinder
	ConfigFile string
	Defaults   Config
}

type flagBinder interface {
	Flags() *pflag.FlagSet
}

func DefaultConfig() Config {
	return Config{
		Paths: PathsConfig{
			ModelDir:    "models",
			ModelFile:   "",
			VoicesFile:  "",
			ModelConfig: "",
		},
		Runtime: RuntimeConfig{
			Threads:        4,
			ORTLibraryPath: "",
			ORTAPIVersion:  23,
			Provider:       "cpu",
		},
		Server: ServerConfig{
			ListenAddr:      ":8080",
			Workers:         2,
			MaxTextBytes:    4096,
			RequestTimeout:  60,
			ShutdownTimeout: 30,
		},
		TTS: TTSConfig{
			Voice:      "expr-voice-5-m",
			Speed:      1.0,
			Language:   "en-us",
			Engine:     EngineAuto,
			EspeakPath: "",
		},
		LogLevel: "info",
	}
}

func RegisterFlags(fs *pflag.FlagSet, defaults Config) {
	fs.String("model-dir", defaults.Paths.ModelDir, "Directory holding the model, voice archive and model config")
	fs.String("paths-model-file", defaults.Paths.ModelFile, "Override path to the ONNX model file")
	fs.String("paths-voices-file", defaults.Paths.VoicesFile, "Override path to the voices .npz archive")
	fs.String("paths-model-config", defaults.Paths.ModelConfig, "Override path to the model config.json")
	fs.Int("runtime-threads", defaults.Runtime.Threads, "ONNX Runtime intra-op thread count")
	fs.String("ort-lib", defaults.Runtime.ORTLibraryPath, "Path to ONNX Runtime shared library")
	fs.Uint32("runtime-ort-api-version", defaults.Runtime.ORTAPIVersion, "ONNX Runtime C API version to request")
	fs.String("provider", defaults.Runtime.Provider, "Execution provider (cpu|cuda|coreml|directml|tensorrt|rocm|openvino)")
	fs.String("server-listen-addr", defaults.Server.ListenAddr, "HTTP listen address")
	fs.Int("workers", defaults.Server.Workers, "Max concurrent synthesis requests served")
	fs.Int("server-max-text-bytes", defaults.Server.MaxTextBytes, "Maximum request text size in bytes")
	fs.Int("server-request-timeout", defaults.Server.RequestTimeout, "Per-request timeout in seconds")
	fs.Int("server-shutdown-timeout", defaults.Server.ShutdownTimeout, "Graceful shutdown timeout in seconds")
	fs.String("tts-voice", defaults.TTS.Voice, "Default voice name from the voice archive")
	fs.Float64("tts-speed", defaults.TTS.Speed, "Default speech speed (1.0 = normal)")
	fs.String("tts-language", defaults.TTS.Language, "Default phonemizer language code")
	fs.String("tts-engine", defaults.TTS.Engine, "Phonemizer engine (auto|rule|espeak)")
	fs.String("tts-espeak-path", defaults.TTS.EspeakPath, "Path to the espeak-ng executable")
	fs.String("log-level", defaults.LogLevel, "Log level (debug|info|warn|error)")
}

func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	setDefaults(v, opts.Defaults)
	if opts.Cmd != nil {
		if err := v.BindPFlags(opts.Cmd.Flags()); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}
	registerAliases(v)

	v.SetEnvPrefix("KITTENTTS")
	replacer := strings.NewReplacer("-", "_", ".", "_", "__", "_")
	v.SetEnvKeyReplacer(replacer)
	if err := v.BindEnv("runtime.ort_library_path", "KITTENTTS_ORT_LIB", "ORT_LIBRARY_PATH"); err != nil {
		return Config{}, fmt.Errorf("bind ort env vars: %w", err)
	}
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("kittentts")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("paths.model_dir", c.Paths.ModelDir)
	v.SetDefault("paths.model_file", c.Paths.ModelFile)
	v.SetDefault("paths.voices_file", c.Paths.VoicesFile)
	v.SetDefault("paths.model_config", c.Paths.ModelConfig)
	v.SetDefault("runtime.threads", c.Runtime.Threads)
	v.SetDefault("runtime.ort_library_path", c.Runtime.ORTLibraryPath)
	v.SetDefault("runtime.ort_api_version", c.Runtime.ORTAPIVersion)
	v.SetDefault("runtime.provider", c.Runtime.Provider)
	v.SetDefault("server.listen_addr", c.Server.ListenAddr)
	v.SetDefault("server.workers", c.Server.Workers)
	v.SetDefault("server.max_text_bytes", c.Server.MaxTextBytes)
	v.SetDefault("server.request_timeout", c.Server.RequestTimeout)
	v.SetDefault("server.shutdown_timeout", c.Server.ShutdownTimeout)
	v.SetDefault("tts.voice", c.TTS.Voice)
	v.SetDefault("tts.speed", c.TTS.Speed)
	v.SetDefault("tts.language", c.TTS.Language)
	v.SetDefault("tts.engine", c.TTS.Engine)
	v.SetDefault("tts.espeak_path", c.TTS.EspeakPath)
	v.SetDefault("log_level", c.LogLevel)
}

func registerAliases(v *viper.Viper) {
	v.RegisterAlias("paths.model_dir", "model-dir")
	v.RegisterAlias("paths.model_file", "paths-model-file")
	v.RegisterAlias("paths.voices_file", "paths-voices-file")
	v.RegisterAlias("paths.model_config", "paths-model-config")
	v.RegisterAlias("runtime.threads", "runtime-threads")
	v.RegisterAlias("runtime.ort_library_path", "ort-lib")
	v.RegisterAlias("runtime.ort_api_version", "runtime-ort-api-version")
	v.RegisterAlias("runtime.provider", "provider")
	v.RegisterAlias("server.listen_addr", "server-listen-addr")
	v.RegisterAlias("server.workers", "workers")
	v.RegisterAlias("server.max_text_bytes", "server-max-text-bytes")
	v.RegisterAlias("server.request_timeout", "server-request-timeout")
	v.RegisterAlias("server.shutdown_timeout", "server-shutdown-timeout")
	v.RegisterAlias("tts.voice", "tts-voice")
	v.RegisterAlias("tts.speed", "tts-speed")
	v.RegisterAlias("tts.language", "tts-language")
	v.RegisterAlias("tts.engine", "tts-engine")
	v.RegisterAlias("tts.espeak_path", "tts-espeak-path")
	v.RegisterAlias("log_level", "log-level")
}
