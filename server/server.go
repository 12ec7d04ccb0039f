package server

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/L4er70/ContactBook/server/auth/key"
	"github.com/L4er70/ContactBook/server/logger"
	"github.com/L4er70/ContactBook/server/models"
	"github.com/L4er70/ContactBook/server/work"
	"github.com/L4er70/ContactBook/shared"
	"github.com/gorilla/mux"
)

var (
	logg        = logger.NewLogger()
	validate    = newValidator()
	authKeyPair *key.KeyPair
	tokenTTL    = 24 * time.Hour
)

// Start runs the ContactBook server until it receives an interrupt or terminate signal
func Start(config *shared.ServerConfig, devMode bool) {
	var err error
	var backup *sqliteBackup

	configDir := ConfigDirectory(devMode)

	authKeyPair, err = key.NewKeyPairFromRSAPrivateKeyPem(config.ContactBook.PrivateKeyPem)
	fatalOnError(err)
	tokenTTL = tokenTTLFromHours(config.ContactBook.TokenTTLHours)

	if config.BackupEnabled() {
		backup, err = newSqliteBackup(config, configDir)
		fatalOnError(err)
		fatalOnError(backup.restore())
	}

	fatalOnError(models.AutoMigrate(config.Database, configDir, config.ContactBook.SeedAdmin))

	workerPool, err := work.NewWorkerAdapter(config.ContactBook.Cron.TimeZone)
	fatalOnError(err)
	fatalOnError(registerJobHandlers(workerPool, backup))
	fatalOnError(enqueueJobs(workerPool, config, backup))
	workerPool.Start()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%v", config.ContactBook.Listener.Port),
		Handler:           newRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go serve(server)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	cleanup(workerPool, server, backup)
}

func newRouter() *mux.Router {
	router := mux.NewRouter()
	router.Use(loggingMiddleware)
	router.HandleFunc("/health", health).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(initialContextMiddleware)
	api.HandleFunc("/jwks", jwks).Methods(http.MethodGet)
	api.HandleFunc("/login", logIn).Methods(http.MethodPost)

	// Admin only
	adminRouter := api.NewRoute().Subrouter()
	adminRouter.Use(adminRouteMiddleware)
	adminRouter.HandleFunc("/users", createUser).Methods(http.MethodPost)
	adminRouter.HandleFunc("/jobs", fetchJobs).Methods(http.MethodGet)
	adminRouter.HandleFunc("/jobs/stats", fetchJobsStats).Methods(http.MethodGet)

	// Users can only manage their own account, admins may view or delete others
	usersRouter := api.PathPrefix("/users/{uid:[0-9]+}").Subrouter()
	usersRouter.Use(protectedRouteMiddleware, userResourceMiddleware)
	usersRouter.HandleFunc("", findUser).Methods(http.MethodGet)
	usersRouter.HandleFunc("", updateUser).Methods(http.MethodPut)
	usersRouter.HandleFunc("", deleteUser).Methods(http.MethodDelete)

	contactsRouter := api.PathPrefix("/contacts").Subrouter()
	contactsRouter.Use(protectedRouteMiddleware)
	contactsRouter.HandleFunc("", fetchContacts).Methods(http.MethodGet)
	contactsRouter.HandleFunc("/export/{format}", exportContacts).Methods(http.MethodGet)
	contactsRouter.HandleFunc("/{id:[0-9]+}", findContact).Methods(http.MethodGet)

	editorsRouter := contactsRouter.NewRoute().Subrouter()
	editorsRouter.Use(roleRouteMiddleware(models.ADMIN_USER_ROLE, models.BASIC_USER_ROLE))
	editorsRouter.HandleFunc("", createContact).Methods(http.MethodPost)
	editorsRouter.HandleFunc("/{id:[0-9]+}", updateContact).Methods(http.MethodPut)

	contactAdminsRouter := contactsRouter.NewRoute().Subrouter()
	contactAdminsRouter.Use(roleRouteMiddleware(models.ADMIN_USER_ROLE))
	contactAdminsRouter.HandleFunc("/{id:[0-9]+}", deleteContact).Methods(http.MethodDelete)

	return router
}
