package app

import (
	"log"
	"time"
)

// runPipeline is the detection loop. It runs one full pipeline tick
// per timer fire and never suspends mid-computation; ticks are
// strictly sequential.
func (a *App) runPipeline() {
	a.mu.RLock()
	stopCh := a.stopCh
	a.mu.RUnlock()

	ticker := time.NewTicker(time.Second / TickFPS)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if !a.IsEnabled() {
				continue
			}

			mat, err := a.camera.ReadFrame()
			if err != nil {
				log.Printf("Error reading frame: %v", err)
				continue
			}

			_, _, err = a.processTick(mat)
			mat.Close()
			if err != nil {
				log.Printf("Error processing frame: %v", err)
			}
		}
	}
}
