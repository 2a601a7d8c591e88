// Package routesはroutingを行います。
package routes

import (
	"database/sql"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"go-todo-list/backend/internal/handlers"
	"go-todo-list/backend/internal/repositories"
	"go-todo-list/backend/internal/services"
)

// SetupRouter はGinルーターをセットアップし、すべてのエンドポイントを登録します。
func SetupRouter(db *sql.DB) *gin.Engine {
	r := gin.Default()

	// CORS対策
	config := cors.DefaultConfig()
	config.AllowOrigins = []string{"http://localhost:3000"}
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	config.AllowCredentials = true
	r.Use(cors.New(config))

	// リポジトリ
	userRepo := repositories.NewUserRepository(db)
	categoryRepo := repositories.NewCategoryRepository(db)
	tagRepo := repositories.NewTagRepository(db)
	todoRepo := repositories.NewTodoRepository(db)

	// サービス
	userService := services.NewUserService(userRepo)
	categoryService := services.NewCategoryService(categoryRepo)
	tagService := services.NewTagService(tagRepo)
	todoService := services.NewTodoService(todoRepo, categoryRepo, tagRepo, userRepo)
	jwtService := services.NewJWTService()

	// ハンドラー
	userHandler := handlers.NewUserHandler(userService, jwtService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	tagHandler := handlers.NewTagHandler(tagService)
	todoHandler := handlers.NewTodoHandler(todoService)

	// ルーティング
	r.GET("/api/dbcheck", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Database connection failed", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Database connection is healthy"})
	})
	r.POST("/api/register", userHandler.RegisterHandler)
	r.POST("/api/login", userHandler.LoginHandler)

	authorized := r.Group("/")
	authorized.Use(AuthMiddleware(jwtService))
	{
		authorized.GET("/api/profile", userHandler.ProfileHandler)
		authorized.PUT("/api/profile", userHandler.UpdateProfileHandler)

		authorized.GET("/api/todos", todoHandler.GetTodosHandler)
		authorized.GET("/api/todos/:id", todoHandler.GetTodoByIDHandler)
		authorized.POST("/api/todos", todoHandler.CreateTodoHandler)
		authorized.PUT("/api/todos/:id", todoHandler.UpdateTodoHandler)
		authorized.DELETE("/api/todos/:id", todoHandler.DeleteTodoHandler)

		authorized.GET("/api/categories", categoryHandler.GetCategoriesHandler)
		authorized.GET("/api/categories/:id", categoryHandler.GetCategoryByIDHandler)
		authorized.POST("/api/categories", categoryHandler.CreateCategoryHandler)
		authorized.PUT("/api/categories/:id", categoryHandler.UpdateCategoryHandler)
		authorized.DELETE("/api/categories/:id", categoryHandler.DeleteCategoryHandler)

		authorized.GET("/api/tags", tagHandler.GetTagsHandler)
		authorized.GET("/api/tags/:id", tagHandler.GetTagByIDHandler)
		authorized.POST("/api/tags", tagHandler.CreateTagHandler)
		authorized.PUT("/api/tags/:id", tagHandler.UpdateTagHandler)
		authorized.DELETE("/api/tags/:id", tagHandler.DeleteTagHandler)
	}

	return r
}
