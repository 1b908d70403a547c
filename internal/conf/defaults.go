package conf

import "github.com/spf13/viper"

// setDefaultConfig installs every setting's default before a config file or
// environment variable is applied on top.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.path", "")

	viper.SetDefault("audio.rate", 48000)
	viper.SetDefault("audio.buffer_size", 2048)

	viper.SetDefault("player.pool_size", 256) // voice.DefaultPoolSize
	viper.SetDefault("player.default_tempo", 120.0)
	viper.SetDefault("player.default_volume", 1.0)
	viper.SetDefault("player.random_seed", uint64(0))

	viper.SetDefault("telemetry.enabled", false)
	viper.SetDefault("telemetry.listen", "127.0.0.1:9121")
}
