package main

import "skillmarket_backend/internal/app"

func main() {
	app.Run()
}
