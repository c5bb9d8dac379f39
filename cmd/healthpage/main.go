package main

import (
	"healthpage/cmd/handlers"
	"healthpage/internal/logger"
)

func main() {
	logger.Init() // Initialize the logger
	handlers.Execute()
}
