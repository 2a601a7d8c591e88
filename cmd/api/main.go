package main

import (
	"log"

	"github.com/joho/godotenv"

	"go-todo-list/backend/internal/database"
	"go-todo-list/backend/internal/routes"
)

func main() {
	// .env があれば読み込む（本番は環境変数で渡すため無くてもよい）
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	db := database.InitDB()
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Fatal: Failed to migrate database: %v", err)
	}

	r := routes.SetupRouter(db)

	log.Println("Server listening on port 8080...")
	if err := r.Run(":8080"); err != nil {
		log.Fatal(err)
	}
}
