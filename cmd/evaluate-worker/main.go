package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KhoaTranProgrammer/Common-Topics/app"
	"github.com/KhoaTranProgrammer/Common-Topics/app/config"
	"github.com/KhoaTranProgrammer/Common-Topics/app/models"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

func main() {
	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg.Logs.Apply()
	if cfg.QueueURL == "" {
		log.Fatal("QUEUE_URL environment variable is required")
	}

	p, err := app.OpenPipeline(baseCtx, cfg, false)
	if err != nil {
		log.Fatalf("failed to open pipeline: %v", err)
	}
	defer p.Close()

	// AWS config & SQS client
	awsCfg, err := awsconfig.LoadDefaultConfig(baseCtx)
	if err != nil {
		log.Printf("failed to load AWS config: %v", err)
		return
	}
	sqsClient := sqs.NewFromConfig(awsCfg)
	queueURL := cfg.QueueURL

	log.Printf("Worker started, listening on SQS queue: %s", queueURL)

	for baseCtx.Err() == nil {
		// Long-poll SQS
		recvCtx, cancel := context.WithTimeout(baseCtx, 30*time.Second)
		resp, err := sqsClient.ReceiveMessage(recvCtx, &sqs.ReceiveMessageInput{
			QueueUrl:            &queueURL,
			MaxNumberOfMessages: 5,
			WaitTimeSeconds:     20,  // enable long polling
			VisibilityTimeout:   600, // seconds; must be > max evaluation time
		})
		cancel()

		if err != nil {
			if baseCtx.Err() != nil {
				break
			}
			log.Printf("ReceiveMessage error: %v", err)
			time.Sleep(5 * time.Second)
			continue
		}

		for _, m := range resp.Messages {
			if m.Body == nil {
				log.Printf("received message with empty body, skipping: %#v", m)
				continue
			}

			var job models.JobMessage
			if err := json.Unmarshal([]byte(*m.Body), &job); err != nil || job.Path == "" {
				log.Printf("failed to unmarshal job message: %v, body=%s", err, *m.Body)
				// delete to avoid infinite retries on a poison pill
				deleteMessage(sqsClient, queueURL, m)
				continue
			}

			log.Printf("Received job: job_id=%s path=%s", job.JobID, job.Path)

			report, err := app.RunEvaluation(baseCtx, job.Path, p.Evaluator, p.Recorder)
			switch {
			case baseCtx.Err() != nil:
				// shutting down: leave the message for another worker
				log.Printf("job_id=%s interrupted, leaving it on the queue", job.JobID)
				return
			case errors.Is(err, app.ErrInputNotFound):
				log.Printf("job_id=%s: %v", job.JobID, err)
				deleteMessage(sqsClient, queueURL, m)
				continue
			case err != nil:
				// Games already annotated would be annotated again on retry,
				// so per-game failures are logged and the job is completed.
				log.Printf("job_id=%s finished with failures (evaluated=%d failed=%d): %v",
					job.JobID, len(report.Evaluated), len(report.Failed), err)
			}

			// Success: delete message from queue
			deleteMessage(sqsClient, queueURL, m)
		}
	}
}

func deleteMessage(sqsClient *sqs.Client, queueURL string, m sqstypes.Message) {
	if m.ReceiptHandle == nil {
		return
	}
	_, err := sqsClient.DeleteMessage(context.Background(), &sqs.DeleteMessageInput{
		QueueUrl:      &queueURL,
		ReceiptHandle: m.ReceiptHandle,
	})
	if err != nil {
		log.Printf("failed to delete SQS message: %v", err)
	}
}
