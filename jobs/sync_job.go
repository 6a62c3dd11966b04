package jobs

import (
	"context"
	"log"
	"time"

	"customer-portal-server/servicem8"
)

// SyncJob periodically polls the ServiceM8 API so operators can see in
// the logs whether the integration is healthy. It never writes to the
// store and never surfaces errors to request handlers.
type SyncJob struct {
	client   *servicem8.Client
	interval time.Duration
	stopChan chan bool
}

// NewSyncJob creates a sync job over the given client.
func NewSyncJob(client *servicem8.Client, interval time.Duration) *SyncJob {
	return &SyncJob{
		client:   client,
		interval: interval,
		stopChan: make(chan bool),
	}
}

// Start begins polling. It is a no-op when ServiceM8 is not configured.
func (j *SyncJob) Start() {
	if !j.client.Configured() {
		log.Println("ServiceM8 sync job disabled: API key not configured")
		return
	}
	go j.run()
	log.Println("ServiceM8 sync job started")
}

// Stop stops the job.
func (j *SyncJob) Stop() {
	if !j.client.Configured() {
		return
	}
	j.stopChan <- true
	log.Println("ServiceM8 sync job stopped")
}

func (j *SyncJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.poll()
		case <-j.stopChan:
			return
		}
	}
}

func (j *SyncJob) poll() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	jobs, err := j.client.Jobs(ctx)
	if err != nil {
		log.Printf("ServiceM8 sync poll failed: %v", err)
		return
	}
	log.Printf("ServiceM8 sync poll: %d jobs available", len(jobs))
}
