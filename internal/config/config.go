package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// AppConfig holds the application configuration
type AppConfig struct {
	ServerPort  string
	KafkaBroker string
	KafkaTopic  string
	GinMode     string
	Database    DatabaseConfig
	Logging     LoggerConfig
	Devices     DeviceConfig
	Runner      RunnerConfig
}

// LoggerConfig holds logger settings
type LoggerConfig struct {
	Enable     bool
	LogsDir    string
	Level      string
	SavingDays int
}

// DatabaseConfig holds the database connection settings
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	DBName   string
}

// DeviceConfig holds the serial endpoints of the bench hardware.
// Power and Loader are SCPI instruments, Dongle is the USB-CAN bridge.
type DeviceConfig struct {
	PowerPort  string
	PowerBaud  int
	LoaderPort string
	LoaderBaud int
	DonglePort string
	DongleBaud int

	// Bounded waits, milliseconds
	ConnectTimeoutMs   int
	TransportTimeoutMs int
	ReceiveTimeoutMs   int
}

// RunnerConfig holds settings for the external test interpreter
type RunnerConfig struct {
	RobotBin  string // interpreter executable
	OutputDir string // generated scripts and interpreter artifacts
	LibPath   string // keyword library search path passed to the interpreter
}

// LoadConfiguration loads configuration from a .env file or environment variables
func LoadConfiguration() (*AppConfig, error) {
	_ = godotenv.Load()

	config := &AppConfig{
		ServerPort:  getEnv("APP_PORT", "8082"),
		KafkaBroker: getEnv("KAFKA_BROKER", "localhost:9092"),
		KafkaTopic:  getEnv("KAFKA_TOPIC", "hil_progress"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			Username: getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "root"),
			DBName:   getEnv("DB_NAME", "hil_db"),
		},
		Logging: LoggerConfig{
			Enable:     getEnvAsBool("LOGGER_ENABLE", true),
			LogsDir:    getEnv("LOGGER_LOGS_DIR", "./logs"),
			Level:      getEnv("LOGGER_LOG_LEVEL", "DEBUG"),
			SavingDays: getEnvAsInt("LOGGER_SAVING_DAYS", 7),
		},
		Devices: DeviceConfig{
			PowerPort:          getEnv("POWER_PORT", "/dev/ttyUSB0"),
			PowerBaud:          getEnvAsInt("POWER_BAUD", 9600),
			LoaderPort:         getEnv("LOADER_PORT", "/dev/ttyUSB1"),
			LoaderBaud:         getEnvAsInt("LOADER_BAUD", 115200),
			DonglePort:         getEnv("DONGLE_PORT", "/dev/ttyACM0"),
			DongleBaud:         getEnvAsInt("DONGLE_BAUD", 921600),
			ConnectTimeoutMs:   getEnvAsInt("CONNECT_TIMEOUT_MS", 5000),
			TransportTimeoutMs: getEnvAsInt("TRANSPORT_TIMEOUT_MS", 2000),
			ReceiveTimeoutMs:   getEnvAsInt("RECEIVE_TIMEOUT_MS", 1000),
		},
		Runner: RunnerConfig{
			RobotBin:  getEnv("ROBOT_BIN", "robot"),
			OutputDir: getEnv("ROBOT_OUTPUT_DIR", "./output"),
			LibPath:   getEnv("ROBOT_LIB_PATH", "./Lib"),
		},
	}

	return config, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(name string, defaultValue int) int {
	valueStr := getEnv(name, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	val, _ := strconv.ParseBool(value)
	return val
}
