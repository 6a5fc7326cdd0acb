package api

import (
	"context"
	"log"
	"net/http"
	"shop-cart/config"
	"shop-cart/server"
	"sync"

	"github.com/gin-gonic/gin"
)

var (
	app     *server.App
	initErr error
	once    sync.Once
)

func initApp() {
	once.Do(func() {
		gin.SetMode(gin.ReleaseMode)

		cfg, err := config.LoadConfig()
		if err != nil {
			initErr = err
			return
		}

		logger, err := config.NewLogger(cfg)
		if err != nil {
			initErr = err
			return
		}

		app, initErr = server.New(context.Background(), cfg, logger)
	})
}

// Handler serves the cart engine as a serverless function.
func Handler(w http.ResponseWriter, r *http.Request) {
	initApp()
	if initErr != nil {
		log.Printf("cart engine failed to start: %v", initErr)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"success":false,"message":"Service unavailable"}`))
		return
	}
	app.Router.ServeHTTP(w, r)
}
