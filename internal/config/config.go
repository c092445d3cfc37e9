package config

import (
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	Api struct {
		Port uint16
	}

	Storage struct {
		PostgresDSN string
	}

	Blob struct {
		Endpoint  string
		PublicURL string
		AccessKey string
		SecretKey string
		Bucket    string
		UseSSL    bool
	}

	Provider struct {
		Token string
	}

	Auth struct {
		SessionSecret string
	}

	Webhook struct {
		Secret string
	}

	Logging struct {
		Level zapcore.Level
	}
}

func Read() (*Config, error) {
	v := viper.New()
	configureEnv(v)
	configureLocation(v)
	return readUnmarshalConfig(v)
}

func configureEnv(v *viper.Viper) {
	v.AutomaticEnv()
	v.SetEnvPrefix("conf")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
}

func configureLocation(v *viper.Viper) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
}

func readUnmarshalConfig(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	c := &Config{}
	if err := v.Unmarshal(c, viper.DecodeHook(levelHook())); err != nil {
		return nil, err
	}
	return c, nil
}

var levelType = reflect.TypeOf(zapcore.InfoLevel)

// levelHook decodes "debug", "info" etc. into a zapcore.Level.
func levelHook() mapstructure.DecodeHookFuncType {
	return func(in reflect.Type, out reflect.Type, val interface{}) (interface{}, error) {
		if in.Kind() == reflect.String && out == levelType {
			l := zapcore.InfoLevel
			if err := l.UnmarshalText([]byte(val.(string))); err != nil {
				return nil, err
			}
			return l, nil
		}
		return val, nil
	}
}
