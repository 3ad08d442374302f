package config

import "os"

func IsDebug() bool {
	return os.Getenv("DAOBOT_DEBUG") == "1"
}
