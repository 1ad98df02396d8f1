package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/vitalens/vitalens/internal/api"
	"github.com/vitalens/vitalens/internal/config"
	"github.com/vitalens/vitalens/internal/reminders"
	"github.com/vitalens/vitalens/internal/store"
	"go.uber.org/zap"
)

var (
	configPath = flag.String("config", "", "Path to config file")
	dataDir    = flag.String("data", "", "Path to data directory")
	serverMode = flag.Bool("server", true, "Run the API server")
	version    = "dev"
)

// App holds the application components
type App struct {
	config   *config.Config
	store    *store.Store
	logger   *zap.Logger
	reminder *reminders.Runner
}

func main() {
	// Handle subcommands before flag parsing
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "user":
			handleUserCommand(os.Args[2:])
			return
		case "help", "--help", "-h":
			printHelp()
			return
		case "version", "--version", "-v":
			fmt.Printf("Vitalens version %s\n", version)
			return
		}
	}

	flag.Parse()

	if !*serverMode {
		printHelp()
		return
	}

	// Initialize logger
	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Starting Vitalens", zap.String("version", version))

	// Load configuration
	cfg, err := config.Load(*configPath, *dataDir)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	// Initialize record store
	st := store.New(cfg, logger)
	defer st.Close()

	app := &App{
		config: cfg,
		store:  st,
		logger: logger,
	}

	app.runServer()
}

func (app *App) runServer() {
	server := api.New(app.config, app.store, app.logger)

	if app.config.Reminders.Enabled {
		app.reminder = reminders.New(app.store, app.config.Reminders, app.logger)
		if err := app.reminder.Start(); err != nil {
			app.logger.Error("Failed to start reminder scheduler", zap.Error(err))
			app.reminder = nil
		}
	}

	go func() {
		app.logger.Info("API server listening",
			zap.String("address", app.config.Server.Address),
			zap.Int("port", app.config.Server.Port),
		)
		if err := server.Start(); err != nil {
			app.logger.Fatal("Server error", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.logger.Info("Shutting down...")

	if app.reminder != nil {
		app.reminder.Stop()
	}

	if err := server.Shutdown(); err != nil {
		app.logger.Error("Server shutdown error", zap.Error(err))
	}
}

// handleUserCommand creates doctor accounts from the terminal.
func handleUserCommand(args []string) {
	if len(args) == 0 || args[0] != "add" {
		fmt.Println("Usage: vitalens user add <doctor-id>")
		os.Exit(1)
	}
	if len(args) < 2 {
		fmt.Println("Usage: vitalens user add <doctor-id>")
		os.Exit(1)
	}
	doctorID := args[1]

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	cfg, err := config.Load("", "")
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	fmt.Print("Password: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		fmt.Printf("Error reading password: %v\n", err)
		os.Exit(1)
	}
	if strings.TrimSpace(string(password)) == "" {
		fmt.Println("Password must not be empty")
		os.Exit(1)
	}

	st := store.New(cfg, logger)
	defer st.Close()

	user, err := st.AddUser(doctorID, string(password))
	if err != nil {
		fmt.Printf("Error creating account: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Created account %s (%s)\n", user.DoctorID, user.Name)
}

func printHelp() {
	fmt.Println("Vitalens - patient record and imaging analysis server")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  vitalens [flags]            Start the API server")
	fmt.Println("  vitalens user add <id>      Create a doctor account")
	fmt.Println("  vitalens version            Print version")
	fmt.Println()
	fmt.Println("Flags:")
	flag.PrintDefaults()
}
