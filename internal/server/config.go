package server

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"taskboard/internal/domain/errors"
)

type Config struct {
	Addr     string
	Port     int
	MongoURI string
	DBName   string
	DevLog   bool
}

const (
	defaultAddr     = "0.0.0.0"
	defaultPort     = 9000
	defaultMongoURI = "mongodb://localhost:27017"
	defaultDBName   = "taskboard"
)

var (
	addr       = flag.String("addr", defaultAddr, "адрес сервера (по умолчанию 0.0.0.0)")
	port       = flag.Int("port", defaultPort, "порт сервера (по умолчанию 9000)")
	mongoURI   = flag.String("mongouri", defaultMongoURI, "строка подключения к MongoDB")
	dbName     = flag.String("dbname", defaultDBName, "имя базы данных")
	devLog     = flag.Bool("devlog", true, "режим логирования для разработки")
	configFile = flag.String("c", "", "путь к файлу конфигурации JSON")
	parsed     = false
)

func ReadConfig() *Config {
	if !parsed {
		flag.Parse()
		parsed = true
	}

	cfg := &Config{
		Addr:     defaultAddr,
		Port:     defaultPort,
		MongoURI: defaultMongoURI,
		DBName:   defaultDBName,
		DevLog:   true,
	}

	jsonConfig := loadJSONConfig()
	if jsonConfig != nil {
		cfg = jsonConfig
	}

	cfg = applyEnvOverrides(cfg)
	cfg = applyFlagOverrides(cfg)

	return cfg
}

func (c *Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Addr, c.Port)
}

func loadJSONConfig() *Config {
	configPath := *configFile
	if configPath == "" {
		configPath = os.Getenv("CONFIG")
	}

	if configPath == "" {
		return nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		fmt.Printf("Warning: %s %s: %v\n", errors.ErrConfigFileReadFailed.Error(), configPath, err)
		return nil
	}

	var jsonConfig Config
	if err := json.Unmarshal(data, &jsonConfig); err != nil {
		fmt.Printf("Warning: %s: %v\n", errors.ErrConfigParseFailed.Error(), err)
		return nil
	}

	return &jsonConfig
}

func applyEnvOverrides(cfg *Config) *Config {
	if addr := os.Getenv("ADDR"); addr != "" {
		cfg.Addr = addr
	}
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err != nil {
			fmt.Printf("Warning: %s в переменной окружения PORT: %s\n", errors.ErrConfigInvalidFormat.Error(), port)
		} else if p < 1 || p > 65535 {
			fmt.Printf("Warning: %s - порт должен быть от 1 до 65535: %d\n", errors.ErrConfigInvalidFormat.Error(), p)
		} else {
			cfg.Port = p
		}
	}
	if uri := os.Getenv("MONGO_URI"); uri != "" {
		cfg.MongoURI = uri
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		cfg.DBName = name
	}

	return cfg
}

func applyFlagOverrides(cfg *Config) *Config {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			cfg.Addr = *addr
		case "port":
			cfg.Port = *port
		case "mongouri":
			cfg.MongoURI = *mongoURI
		case "dbname":
			cfg.DBName = *dbName
		case "devlog":
			cfg.DevLog = *devLog
		}
	})

	return cfg
}
