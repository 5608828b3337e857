package main

import "campus-exchange/internal/app"

func main() {
	app.Run()
}
