package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/BernieSumption/webcam-wave/internal/app"
	"github.com/BernieSumption/webcam-wave/internal/server"
	"github.com/BernieSumption/webcam-wave/internal/store"
	"github.com/BernieSumption/webcam-wave/internal/tray"
	"github.com/BernieSumption/webcam-wave/internal/wave"
)

const listenAddr = ":8080"

func main() {
	fmt.Println("Webcam Wave - Repetitive Motion Detection")

	// Initialize the store
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("Failed to get home directory: %v", err)
	}

	dbDir := filepath.Join(homeDir, ".webcam-wave")
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	dbPath := filepath.Join(dbDir, "webcam-wave.db")
	st, err := store.New(dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	// Load tuned parameters, falling back to defaults on first run
	params, err := st.Settings().LoadParams()
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Printf("Failed to load parameters, using defaults: %v", err)
		}
		params = wave.DefaultParams()
	}

	a := app.New(app.Config{
		Store:    st,
		CameraID: 0,
		Params:   params,
	})

	if err := a.Start(); err != nil {
		log.Fatalf("Failed to start detection pipeline: %v", err)
	}
	defer a.Stop()

	// Configure and start the debug/tuning server
	srv := server.New(server.Config{
		StaticDir: findWebDir(),
		Store:     st,
		App:       a,
	})

	go func() {
		fmt.Printf("Starting server on %s\n", listenAddr)
		if err := srv.ListenAndServe(listenAddr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// The tray owns the main goroutine until quit
	tr := tray.New()
	tr.OnToggle(a.SetEnabled)
	tr.OnSettings(func() {
		openBrowser("http://localhost" + listenAddr)
	})
	a.Subscribe(func(status app.Status) {
		tr.SetWaving(status.Waving)
	})

	tr.Run()
}

// findWebDir searches for the web directory in common locations.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".webcam-wave", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}

// openBrowser opens the given URL in the default browser.
func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Printf("Failed to open browser: %v", err)
	}
}
