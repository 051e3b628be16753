package main

import (
	"github.com/nfrund/rollcall/internal/server"
)

func main() {
	s := server.New()
	s.RegisterRoutes()
	s.Start()
}
