package server

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	// Load env file into environments.
	_ "github.com/joho/godotenv/autoload"

	"JobQuest-backend/internal/controller/file"
	"JobQuest-backend/internal/database"
)

// MyServer holds the port, the database instance and the optional storage
// client shared by every route handler
type MyServer struct {
	port int

	DB      *database.DBinstanceStruct
	Storage file.StorageClient
}

// NewServer constructs the http.Server serving the API. Cloud storage is
// optional, file endpoints fail cleanly when BUCKET_NAME is not set.
func NewServer() *http.Server {
	port, _ := strconv.Atoi(os.Getenv("PORT"))
	if port == 0 {
		port = 8080
	}

	db, err := database.GetMainDB()
	if err != nil {
		log.Fatalf("Database failed to initialize: %s", err)
	}

	var storage file.StorageClient
	if bucket := os.Getenv("BUCKET_NAME"); bucket != "" {
		storage, err = file.NewCloudStorageClient(bucket)
		if err != nil {
			log.Fatalf("Cloud storage failed to initialize: %s", err)
		}
	}

	s := &MyServer{
		port:    port,
		DB:      db,
		Storage: storage,
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return server
}
