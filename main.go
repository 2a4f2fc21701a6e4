package main

import (
	"fmt"

	"bitwise74/studio-api/app"
	"bitwise74/studio-api/config"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func main() {
	gin.SetMode(gin.ReleaseMode)

	err := config.Setup()
	if err != nil {
		panic(err)
	}

	router, err := app.NewRouter()
	if err != nil {
		panic(err)
	}

	addr := fmt.Sprintf(":%d", viper.GetInt("host.port"))
	zap.L().Info("Server starting", zap.String("addr", addr), zap.String("storage", viper.GetString("storage.type")))

	err = router.Run(addr)
	if err != nil {
		panic(err)
	}
}
