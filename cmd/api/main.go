package main

import (
	"log"
	"net/http"

	"protoflow/internal/api"
	"protoflow/internal/config"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()
	h := api.NewServer(cfg)
	log.Printf("protoflow api listening on %s session_ttl=%dm", cfg.APIAddr, cfg.SessionTTLMinutes)
	if err := http.ListenAndServe(cfg.APIAddr, h.Routes()); err != nil {
		log.Fatal(err)
	}
}
