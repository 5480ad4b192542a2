package main

import (
	"context"
	"log"

	"github.com/bookworks/bookstore-api/internal/app/api"
)

func main() {
	if err := api.Run(context.Background()); err != nil {
		log.Fatalf("bookstore API exited: %v", err)
	}
}
