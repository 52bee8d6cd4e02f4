package connection

import (
	"os"
	"path/filepath"

	"sectorcheck/controller"
	"sectorcheck/controller/admin"
	"sectorcheck/controller/auth"
	checklistctl "sectorcheck/controller/checklist"
	"sectorcheck/controller/history"
	reportctl "sectorcheck/controller/report"
	"sectorcheck/controller/sector"
	"sectorcheck/controller/template"
	"sectorcheck/scheduler"
	"sectorcheck/services/catalog"
	"sectorcheck/services/checklist"
	"sectorcheck/services/mailer"
	"sectorcheck/services/notify"
	"sectorcheck/services/push"
	"sectorcheck/services/report"
	"sectorcheck/services/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StartServer wires every service explicitly and runs the HTTP API. Nothing
// here reaches into ambient globals; collaborators are constructed once and
// injected.
func StartServer() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	db, err := DBConnection()
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	uploadRoot := envOr("UPLOAD_DIR", "./uploads")
	signatures, err := storage.NewDiskStore(filepath.Join(uploadRoot, "signatures"))
	if err != nil {
		logger.Fatal("failed to prepare signature store", zap.Error(err))
	}
	evidence, err := storage.NewDiskStore(filepath.Join(uploadRoot, "evidence"))
	if err != nil {
		logger.Fatal("failed to prepare evidence store", zap.Error(err))
	}

	var mail notify.Mailer
	if config, err := mailer.LoadConfig(); err != nil {
		logger.Warn("mailer disabled", zap.Error(err))
	} else {
		mail = mailer.NewSMTPMailer(config)
	}
	var pusher notify.PushSender
	if sender, err := push.NewFCMSender(os.Getenv("FIREBASE_CREDENTIALS"), logger); err != nil {
		logger.Warn("push disabled", zap.Error(err))
	} else {
		pusher = sender
	}

	dispatcher := notify.NewDispatcher(db, mail, pusher, controller.BaseURL(), logger)
	catalogSvc := catalog.NewService(db)
	checklistSvc := checklist.NewService(db, signatures, evidence, dispatcher, logger)
	reportSvc := report.NewService(db)

	scheduler.StartReminderScheduler(dispatcher, logger)

	router := gin.Default()
	router.Use(cors.Default())

	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "Api is running!"})
	})

	auth.AuthController(router, db)
	admin.UserAdminController(router, db)
	sector.SectorController(router, db, catalogSvc)
	template.TemplateController(router, db, catalogSvc)
	checklistctl.FillChecklistController(router, db, checklistSvc)
	checklistctl.ReviewChecklistController(router, db, checklistSvc)
	history.HistoryController(router, db, reportSvc)
	reportctl.DashboardController(router, reportSvc)

	if err := router.Run(); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
