package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

const envPrefix = "CITYCAL_"

type Application struct {
	Server   Server   `koanf:"server"`
	Admin    Admin    `koanf:"admin"`
	Storage  Storage  `koanf:"storage"`
	Database Database `koanf:"db"`
	Cleanup  Cleanup  `koanf:"cleanup"`
	Feed     Feed     `koanf:"feed"`
}

type Server struct {
	Addr string `koanf:"addr"`
}

// Admin.Password is the shared secret for mutating endpoints. Empty disables the check.
type Admin struct {
	Password string `koanf:"password"`
}

// Storage.Backend is "file", "redis", "postgres" or empty to pick one from
// the configured connections.
type Storage struct {
	Backend  string          `koanf:"backend"`
	File     FileStorage     `koanf:"file"`
	Redis    RedisStorage    `koanf:"redis"`
	Postgres PostgresStorage `koanf:"postgres"`
}

type FileStorage struct {
	Path string `koanf:"path"`
}

type RedisStorage struct {
	URL string `koanf:"url"`
	Key string `koanf:"key"`
}

type PostgresStorage struct {
	Key string `koanf:"key"`
}

type Database struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
}

// Cleanup.Schedule is a standard cron expression evaluated in Pacific time.
// Empty disables scheduled cleanup.
type Cleanup struct {
	Schedule string `koanf:"schedule"`
}

type Feed struct {
	Name   string `koanf:"name"`
	Domain string `koanf:"domain"`
}

func Defaults() Application {
	return Application{
		Server: Server{
			Addr: ":8181",
		},
		Storage: Storage{
			File: FileStorage{
				Path: ".data/events.json",
			},
			Redis: RedisStorage{
				Key: "events:all",
			},
			Postgres: PostgresStorage{
				Key: "events:all",
			},
		},
		Database: Database{
			Host:   "localhost",
			Port:   5432,
			User:   "citycal",
			Pass:   "",
			Name:   "citycal",
			Schema: "public",
		},
		Feed: Feed{
			Name:   "What do I do in San Francisco?",
			Domain: "citycal.local",
		},
	}
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Defaults(), "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, envPrefix)), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	// Hosted deployments only export REDIS_URL.
	if app.Storage.Redis.URL == "" {
		app.Storage.Redis.URL = os.Getenv("REDIS_URL")
	}

	return app, nil
}
