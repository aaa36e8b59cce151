package fx

import (
	"log"

	"Wildfund/config"
	"Wildfund/internal/logger"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

var ConfigModule = fx.Module("config",
	fx.Provide(
		loadConfig,
	),
	fx.Invoke(
		initLogger,
	),
)

// loadConfig carrega os arquivos .env antes de ler o ambiente.
func loadConfig() (*config.Config, error) {
	LoadEnvFiles()
	return config.Load()
}

// LoadEnvFiles tenta o .env do diretorio atual e o da raiz do repositorio.
// Arquivo ausente e apenas aviso.
func LoadEnvFiles() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Aviso: não foi possível carregar .env do diretório atual: %v", err)
	}
	if err := godotenv.Load("../../.env"); err != nil {
		log.Printf("Aviso: não foi possível carregar ../../.env: %v", err)
	}
}

func initLogger(cfg *config.Config) {
	logger.Init(cfg)
}
