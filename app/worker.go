package app

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"example/chess-ingest/app/models"
)

const (
	receiveTimeout = 30 * time.Second
	jobRunTimeout  = 10 * time.Minute
	idleBackoff    = 2 * time.Second
	errorBackoff   = 5 * time.Second
)

type sqsPoller interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// JobHandler runs one decoded ingestion job.
type JobHandler func(ctx context.Context, job models.IngestJob) error

// Worker long-polls an SQS queue and hands each job to a JobHandler.
// Every message is deleted once handled, failed or not: the handler records
// the job's terminal state and jobs are never retried.
type Worker struct {
	client   sqsPoller
	queueURL string
	handle   JobHandler
	logger   *slog.Logger
}

func NewWorker(client sqsPoller, queueURL string, handle JobHandler, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{client: client, queueURL: queueURL, handle: handle, logger: logger.With("component", "worker")}
}

// Run polls until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("worker started", "queue", w.queueURL)
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		n, err := w.PollOnce(ctx)
		switch {
		case err != nil:
			w.logger.Error("ReceiveMessage failed", "err", err)
			sleep(ctx, errorBackoff)
		case n == 0:
			sleep(ctx, idleBackoff)
		}
	}
}

// PollOnce receives one batch of messages and processes them in order. It
// returns how many messages were received.
func (w *Worker) PollOnce(ctx context.Context) (int, error) {
	recvCtx, cancel := context.WithTimeout(ctx, receiveTimeout)
	resp, err := w.client.ReceiveMessage(recvCtx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(w.queueURL),
		MaxNumberOfMessages: 5,
		WaitTimeSeconds:     20,
		VisibilityTimeout:   900,
	})
	cancel()
	if err != nil {
		return 0, err
	}

	for _, m := range resp.Messages {
		w.process(ctx, m)
	}
	return len(resp.Messages), nil
}

func (w *Worker) process(ctx context.Context, m sqstypes.Message) {
	if m.Body == nil {
		w.logger.Warn("empty message body, deleting", "message_id", aws.ToString(m.MessageId))
		w.delete(ctx, m)
		return
	}

	var job models.IngestJob
	if err := json.Unmarshal([]byte(*m.Body), &job); err != nil {
		w.logger.Warn("undecodable job message, deleting", "err", err, "body", *m.Body)
		w.delete(ctx, m)
		return
	}

	w.logger.Info("received job", "job_id", job.JobID, "players", len(job.Players),
		"start", job.StartMonth, "end", job.EndMonth)

	jobCtx, cancel := context.WithTimeout(ctx, jobRunTimeout)
	err := w.handle(jobCtx, job)
	cancel()
	if err != nil {
		w.logger.Error("job failed", "job_id", job.JobID, "err", err)
	}
	w.delete(ctx, m)
}

func (w *Worker) delete(ctx context.Context, m sqstypes.Message) {
	if m.ReceiptHandle == nil {
		return
	}
	_, err := w.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(w.queueURL),
		ReceiptHandle: m.ReceiptHandle,
	})
	if err != nil {
		w.logger.Error("DeleteMessage failed", "err", err)
	}
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
