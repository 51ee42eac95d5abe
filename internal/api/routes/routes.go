// internal/api/routes/routes.go
package routes

import (
	"github.com/Doppler617492/MagacinTracker-sub000/internal/api/handlers"
	"github.com/Doppler617492/MagacinTracker-sub000/internal/api/middleware"
	"github.com/Doppler617492/MagacinTracker-sub000/internal/assignment"
	"github.com/Doppler617492/MagacinTracker-sub000/internal/execution"
	"github.com/Doppler617492/MagacinTracker-sub000/internal/scheduler"
	"github.com/Doppler617492/MagacinTracker-sub000/internal/socket"
	"github.com/Doppler617492/MagacinTracker-sub000/internal/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

// SetupRouter wires handlers to their dependencies and registers all routes.
func SetupRouter(
	st store.Store,
	db *mongo.Database,
	sched *scheduler.Scheduler,
	materializer *assignment.Materializer,
	engine *execution.Engine,
	wsHub *socket.Hub,
) *gin.Engine {
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(cors.Default())

	requisitionHandler := &handlers.RequisitionHandler{
		Store:        st,
		Scheduler:    sched,
		Materializer: materializer,
		Engine:       engine,
	}
	assignmentHandler := &handlers.AssignmentHandler{Store: st, Materializer: materializer}
	executionHandler := &handlers.ExecutionHandler{Engine: engine}
	userHandler := &handlers.UserHandler{DB: db}
	webSocketHandler := &handlers.WebSocketHandler{Hub: wsHub}

	apiV1 := router.Group("/api/v1")
	{
		// WebSocket feed for the live dashboard
		apiV1.GET("/ws", webSocketHandler.ServeWs)

		auth := apiV1.Group("/auth")
		{
			auth.POST("/login", userHandler.Login)
		}

		// Admin-only management routes
		admin := apiV1.Group("/admin")
		admin.Use(middleware.Authenticate())
		admin.Use(middleware.Authorize("admin"))
		{
			admin.POST("/workers", userHandler.CreateWorker)
		}

		// Main business routes
		businessRoutes := apiV1.Group("/")
		businessRoutes.Use(middleware.Authenticate())
		businessRoutes.Use(middleware.Authorize("admin", "worker"))
		{
			requisitions := businessRoutes.Group("/requisitions")
			{
				requisitions.GET("/", requisitionHandler.GetAll)
				requisitions.GET("/:id", requisitionHandler.GetByNumber)

				// Scheduling and materialization are admin actions
				adminRequisitions := requisitions.Group("/")
				adminRequisitions.Use(middleware.Authorize("admin"))
				{
					adminRequisitions.POST("/:id/suggest", requisitionHandler.Suggest)
					adminRequisitions.POST("/:id/suggest/cancel", requisitionHandler.CancelSuggestion)
					adminRequisitions.POST("/:id/assignments", requisitionHandler.CreateAssignments)
					adminRequisitions.POST("/:id/assignments/cancel", requisitionHandler.CancelAssignments)
				}

				requisitions.POST("/:id/complete", requisitionHandler.CompleteDocument)
			}

			assignments := businessRoutes.Group("/assignments")
			{
				assignments.GET("/:id", assignmentHandler.GetByID)
				assignments.PATCH("/:id/status", assignmentHandler.UpdateStatus)

				adminAssignments := assignments.Group("/")
				adminAssignments.Use(middleware.Authorize("admin"))
				{
					adminAssignments.POST("/:id/reassign", assignmentHandler.Reassign)
				}
			}

			assignmentItems := businessRoutes.Group("/assignment-items")
			{
				assignmentItems.POST("/:id/scan", executionHandler.Scan)
				assignmentItems.POST("/:id/manual", executionHandler.Manual)
			}

			requisitionItems := businessRoutes.Group("/requisition-items")
			{
				requisitionItems.POST("/:id/partial-complete", executionHandler.PartialComplete)
			}

			workers := businessRoutes.Group("/workers")
			{
				workers.GET("/", assignmentHandler.ListWorkers)
				workers.GET("/:id/tasks", assignmentHandler.GetWorkerTasks)
			}
		}
	}

	return router
}
