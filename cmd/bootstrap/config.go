package bootstrap

import (
	"lablend/internal/pkg/config"

	"go.uber.org/fx"
)

var ConfigModule = fx.Module("config",
	fx.Provide(
		config.LoadConfig,
		func(cfg config.Config) config.LendingConfig { return cfg.Lending },
		func(cfg config.Config) config.JobsConfig { return cfg.Jobs },
	),
)
